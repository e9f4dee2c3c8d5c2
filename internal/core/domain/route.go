package domain

// Logical application locations. Paths double as URL paths for the HTTP shell.
const (
	RouteLogin   = "/"
	RouteBills   = "/employee/bills"
	RouteNewBill = "/employee/bill/new"

	// RouteNotFound is never registered; the router falls back to it for unknown paths.
	RouteNotFound = "#not-found"
)

// DefaultRouteFor returns the landing route for a role. Unknown roles land on
// the login view.
func DefaultRouteFor(t UserType) string {
	switch t {
	case UserTypeEmployee:
		return RouteBills
	default:
		return RouteLogin
	}
}
