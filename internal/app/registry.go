package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/SscSPs/billed/internal/router"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry keeps the live sessions, evicting the least recently used.
type Registry struct {
	mu       sync.Mutex // serializes lookup-then-build in Get
	sessions *lru.Cache[string, *Session]
	store    repositories.BillStoreFacade
	observe  router.NavigationObserver
}

// NewRegistry creates a registry holding at most size sessions.
func NewRegistry(size int, store repositories.BillStoreFacade, observe router.NavigationObserver) (*Registry, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, err
	}
	return &Registry{sessions: cache, store: store, observe: observe}, nil
}

// Get returns the session for sessionID, building it when it is missing or was
// built for another identity. A new session has rendered nothing yet.
func (r *Registry) Get(ctx context.Context, sessionID string, user domain.User) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions.Get(sessionID); ok && s.user != nil && *s.user == user {
		return s
	}

	middleware.GetLoggerFromCtx(ctx).Debug("Building session", slog.String("session_id", sessionID), slog.String("email", user.Email))
	s := NewSession(&user, r.store, r.observe)
	r.sessions.Add(sessionID, s)
	return s
}

// Anonymous returns an unregistered session showing the login view.
func (r *Registry) Anonymous(ctx context.Context) *Session {
	s := NewSession(nil, r.store, r.observe)
	s.Start(ctx)
	return s
}

// Remove drops the session, e.g. on logout.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions.Remove(sessionID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}
