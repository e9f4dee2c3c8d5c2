package middleware

import (
	"context"

	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is the type for values stored in the request context.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey    = contextKey("logger")
	userCtxKey      = contextKey("user")
	sessionIDCtxKey = contextKey("sessionID")
)

// WithSession returns a copy of ctx carrying the session identity.
func WithSession(ctx context.Context, sessionID string, user domain.User) context.Context {
	ctx = context.WithValue(ctx, sessionIDCtxKey, sessionID)
	return context.WithValue(ctx, userCtxKey, user)
}

// GetUserFromContext retrieves the session user from the Gin request context.
// It returns the user and a boolean indicating if it was found.
func GetUserFromContext(c *gin.Context) (domain.User, bool) {
	return UserFromCtx(c.Request.Context())
}

// UserFromCtx retrieves the session user from a standard context.
func UserFromCtx(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userCtxKey).(domain.User)
	return user, ok
}

// GetSessionIDFromContext retrieves the session identifier from the Gin request context.
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	id, ok := c.Request.Context().Value(sessionIDCtxKey).(string)
	return id, ok && id != ""
}
