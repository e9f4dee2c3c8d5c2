package domain

// UserType is the role carried by the session context.
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
)

// User is the logged-in identity read from the session context.
// The core never writes it.
type User struct {
	Type  UserType `json:"type"`
	Email string   `json:"email"`
}
