// Package views renders the view region markup and the page layout around it.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"sort"

	"github.com/SscSPs/billed/internal/core/domain"
	portssvc "github.com/SscSPs/billed/internal/core/ports/services"
)

//go:embed templates/*.html templates/partials/*.html
var templateFS embed.FS

var templates = template.Must(template.New("views").ParseFS(templateFS, "templates/*.html", "templates/partials/*.html"))

// ExpenseTypes are the categories offered on the creation form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// BillsPayload feeds the list view.
type BillsPayload struct {
	Data    []domain.DisplayBill
	Error   string
	Loading bool
	Preview *domain.FilePreview
}

// NewBillPayload feeds the creation form.
type NewBillPayload struct {
	State         portssvc.NewBillState
	UploadFailure string
}

// ErrorPayload feeds the error view.
type ErrorPayload struct {
	Error string
}

// Page is a full document: the view region inside the layout.
type Page struct {
	Route  string
	Region template.HTML
	User   *domain.User
}

// BillsUI renders the list view. Loading and Error take precedence over the data,
// which is shown most recent first.
func BillsUI(p BillsPayload) template.HTML {
	if p.Loading {
		return LoadingPage()
	}
	if p.Error != "" {
		return ErrorPage(ErrorPayload{Error: p.Error})
	}
	return render("bills", struct {
		Bills   []domain.DisplayBill
		Preview *domain.FilePreview
	}{Bills: SortAntiChrono(p.Data), Preview: p.Preview})
}

// NewBillUI renders the creation form.
func NewBillUI(p NewBillPayload) template.HTML {
	return render("new_bill", struct {
		NewBillPayload
		ExpenseTypes []string
	}{NewBillPayload: p, ExpenseTypes: ExpenseTypes})
}

// LoginUI renders the login form.
func LoginUI() template.HTML { return render("login", nil) }

// LoadingPage renders the loading placeholder.
func LoadingPage() template.HTML { return render("loading", nil) }

// ErrorPage renders a failure message.
func ErrorPage(p ErrorPayload) template.HTML { return render("error", p) }

// NotFound renders the unknown route view.
func NotFound() template.HTML { return render("not_found", nil) }

// Layout wraps the region in the document. The vertical navigation is shown on
// every route but login, with the icon of the current route marked active.
func Layout(p Page) template.HTML {
	data := struct {
		Route   string
		Region  template.HTML
		WithNav bool
		Email   string
	}{Route: p.Route, Region: p.Region, WithNav: p.Route != domain.RouteLogin}
	if p.User != nil {
		data.Email = p.User.Email
	}
	return render("layout", data)
}

// SortAntiChrono returns a copy of bills ordered from latest to earliest date.
// Bills whose date did not parse keep their relative order at the end.
func SortAntiChrono(bills []domain.DisplayBill) []domain.DisplayBill {
	sorted := append([]domain.DisplayBill(nil), bills...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DateValid != b.DateValid {
			return a.DateValid
		}
		return a.SortDate.After(b.SortDate)
	})
	return sorted
}

func render(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Failed to render view", slog.String("view", name), slog.String("error", err.Error()))
		return template.HTML("<p>" + template.HTMLEscapeString(err.Error()) + "</p>")
	}
	return template.HTML(buf.String())
}
