// Package router maps logical paths to view actions and owns the rendered view region.
package router

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/SscSPs/billed/internal/core/domain"
	portssvc "github.com/SscSPs/billed/internal/core/ports/services"
	"github.com/SscSPs/billed/internal/middleware"
)

// RenderFunc replaces the whole view region with markup.
type RenderFunc func(template.HTML)

// Action renders one route into the view region. It may render several times,
// e.g. a loading view before its data arrives; the last render wins.
type Action func(ctx context.Context, render RenderFunc) error

// NavigationObserver is told the outcome of every navigation: "ok", "not_found" or "error".
type NavigationObserver func(route, outcome string)

// Router holds the route registry and the current view region. It is not safe
// for concurrent use; its owner serializes calls.
type Router struct {
	registry map[string]Action
	notFound func() template.HTML
	errView  func(error) template.HTML
	observe  NavigationObserver

	current string
	view    template.HTML
	status  int
}

// Option configures a Router.
type Option func(*Router)

// WithNotFoundView sets the view rendered for unregistered paths.
func WithNotFoundView(view func() template.HTML) Option {
	return func(r *Router) { r.notFound = view }
}

// WithErrorView sets the view rendered when an action fails.
func WithErrorView(view func(error) template.HTML) Option {
	return func(r *Router) { r.errView = view }
}

// WithNavigationObserver registers a callback run after each navigation.
func WithNavigationObserver(observe NavigationObserver) Option {
	return func(r *Router) { r.observe = observe }
}

// New builds a Router over a fixed registry keyed by exact path.
func New(registry map[string]Action, opts ...Option) *Router {
	r := &Router{
		registry: make(map[string]Action, len(registry)),
		notFound: func() template.HTML { return template.HTML("<h1>404</h1>") },
		errView: func(err error) template.HTML {
			return template.HTML("<p>" + template.HTMLEscapeString(err.Error()) + "</p>")
		},
		observe: func(string, string) {},
		status:  http.StatusOK,
	}
	for path, action := range registry {
		r.registry[path] = action
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init renders the landing route for user. A nil user lands on the login view.
func (r *Router) Init(ctx context.Context, user *domain.User) {
	if user == nil {
		r.Navigate(ctx, domain.RouteLogin)
		return
	}
	r.Navigate(ctx, domain.DefaultRouteFor(user.Type))
}

// Navigate renders the action registered for path. Unknown paths render the
// not-found view; failing actions render the error view. Nothing is returned.
func (r *Router) Navigate(ctx context.Context, path string) {
	logger := middleware.GetLoggerFromCtx(ctx)
	r.current = path

	action, ok := r.registry[path]
	if !ok {
		logger.Warn("No route registered", slog.String("route", path))
		r.view = r.notFound()
		r.status = http.StatusNotFound
		r.observe(domain.RouteNotFound, "not_found")
		return
	}

	r.status = http.StatusOK
	if err := action(ctx, r.render); err != nil {
		logger.Error("Route action failed", slog.String("route", path), slog.String("error", err.Error()))
		r.view = r.errView(err)
		r.status = http.StatusInternalServerError
		r.observe(path, "error")
		return
	}
	r.observe(path, "ok")
}

// RenderError replaces the region with the error view for a failure that
// happened outside a route action, e.g. a rejected form submission.
func (r *Router) RenderError(ctx context.Context, err error) {
	middleware.GetLoggerFromCtx(ctx).Error("Rendering error view", slog.String("route", r.current), slog.String("error", err.Error()))
	r.view = r.errView(err)
	r.status = http.StatusInternalServerError
}

// OnNavigate returns the navigation callback handed to pipelines.
func (r *Router) OnNavigate() portssvc.Navigator {
	return r.Navigate
}

// Current returns the path of the last navigation.
func (r *Router) Current() string { return r.current }

// View returns the markup currently in the view region.
func (r *Router) View() template.HTML { return r.view }

// Status returns the HTTP status matching the last navigation outcome.
func (r *Router) Status() int { return r.status }

func (r *Router) render(html template.HTML) {
	r.view = html
}
