// Package app ties one browser session to its router and pipelines.
package app

import (
	"context"
	"errors"
	"html/template"
	"sync"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/billed/internal/core/ports/services"
	"github.com/SscSPs/billed/internal/core/services"
	"github.com/SscSPs/billed/internal/router"
	"github.com/SscSPs/billed/internal/views"
)

// Session serializes the gestures of one employee and keeps the rendered view.
type Session struct {
	mu sync.Mutex

	user    *domain.User
	router  *router.Router
	bills   portssvc.BillsSvcFacade
	newBill portssvc.NewBillSvcFacade

	preview     *domain.FilePreview
	formFailure string
}

// NewSession wires a router and both pipelines to store. A nil user gives an
// anonymous session that only shows the login view. A nil store falls back to
// a session that lists nothing and refuses writes.
func NewSession(user *domain.User, store repositories.BillStoreFacade, observe router.NavigationObserver) *Session {
	s := &Session{user: user}

	routerOpts := []router.Option{
		router.WithNotFoundView(views.NotFound),
		router.WithErrorView(func(err error) template.HTML {
			return views.ErrorPage(views.ErrorPayload{Error: err.Error()})
		}),
	}
	if observe != nil {
		routerOpts = append(routerOpts, router.WithNavigationObserver(observe))
	}
	s.router = router.New(map[string]router.Action{
		domain.RouteLogin:   s.loginAction,
		domain.RouteBills:   s.billsAction,
		domain.RouteNewBill: s.newBillAction,
	}, routerOpts...)

	var svcOpts []services.Option
	if store != nil {
		svcOpts = append(svcOpts, services.WithBillStore(store))
	}
	if user != nil {
		svcOpts = append(svcOpts, services.WithUser(*user))
	}
	s.bills = services.NewBillsService(s.router.OnNavigate(), svcOpts...)
	s.newBill = services.NewNewBillService(s.router.OnNavigate(), svcOpts...)
	return s
}

// User returns the session identity, nil when anonymous.
func (s *Session) User() *domain.User {
	return s.user
}

// Start renders the landing view for the session's role.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router.Init(ctx, s.user)
}

// Navigate renders the view registered at path.
func (s *Session) Navigate(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router.Navigate(ctx, path)
}

// OnIconActivated opens the proof preview over the list view.
func (s *Session) OnIconActivated(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	preview, err := s.bills.HandleClickIconEye(ctx, fileURL)
	if err != nil {
		return err
	}
	s.preview = preview
	s.router.Navigate(ctx, domain.RouteBills)
	return nil
}

// OnCreateBillRequested moves to the creation form.
func (s *Session) OnCreateBillRequested(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bills.HandleClickNewBill(ctx)
	return nil
}

// OnFileSelected validates and uploads a proof, then re-renders the form.
func (s *Session) OnFileSelected(ctx context.Context, file domain.SelectedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.newBill.HandleChangeFile(ctx, file)
	if err != nil {
		s.formFailure = storeMessage(err)
	}
	s.router.Navigate(ctx, domain.RouteNewBill)
	return err
}

// OnFormRejected re-renders the form with a message when the posted values
// did not pass validation.
func (s *Session) OnFormRejected(ctx context.Context, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.formFailure = message
	s.router.Navigate(ctx, domain.RouteNewBill)
}

// OnFormSubmitted creates the bill. On success the router already shows the
// list; on failure the error view replaces the form.
func (s *Session) OnFormSubmitted(ctx context.Context, form portssvc.NewBillForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.newBill.HandleSubmit(ctx, form); err != nil {
		s.router.RenderError(ctx, errors.New(storeMessage(err)))
		return err
	}
	return nil
}

// Bills returns the display bills for the session without touching the view.
func (s *Session) Bills(ctx context.Context) ([]domain.DisplayBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bills.GetBills(ctx)
}

// Current returns the current route.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.router.Current()
}

// Page returns the full document for the current view and its HTTP status.
func (s *Session) Page() (template.HTML, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return views.Layout(views.Page{
		Route:  s.router.Current(),
		Region: s.router.View(),
		User:   s.user,
	}), s.router.Status()
}

func (s *Session) loginAction(_ context.Context, render router.RenderFunc) error {
	render(views.LoginUI())
	return nil
}

func (s *Session) billsAction(ctx context.Context, render router.RenderFunc) error {
	preview := s.preview
	s.preview = nil

	render(views.BillsUI(views.BillsPayload{Loading: true}))
	bills, err := s.bills.GetBills(ctx)
	if err != nil {
		return errors.New(storeMessage(err))
	}
	render(views.BillsUI(views.BillsPayload{Data: bills, Preview: preview}))
	return nil
}

func (s *Session) newBillAction(_ context.Context, render router.RenderFunc) error {
	failure := s.formFailure
	s.formFailure = ""

	render(views.NewBillUI(views.NewBillPayload{State: s.newBill.State(), UploadFailure: failure}))
	return nil
}

// storeMessage returns the store's own message when err carries one.
func storeMessage(err error) string {
	var se *apperrors.StoreError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}
