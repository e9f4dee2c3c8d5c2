package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/billed/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionMiddleware creates a Gin middleware handler that reads the session
// cookie and, when it is valid, puts the session user into the request context.
// Requests without a usable cookie continue anonymously.
func SessionMiddleware(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		sessionID, user, err := utils.ParseSessionToken(raw, secret)
		if err != nil {
			msg := "Invalid session cookie"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Session cookie has expired"
			}
			logger.Warn(msg, slog.String("error", err.Error()))
			c.Next()
			return
		}

		enrichedLogger := logger.With(slog.String("user_email", user.Email), slog.String("session_id", sessionID))
		ctx := WithSession(c.Request.Context(), sessionID, user)
		c.Request = c.Request.WithContext(WithLogger(ctx, enrichedLogger))

		c.Next()
	}
}

// RequireSession aborts anonymous requests by sending them back to the login view.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetSessionIDFromContext(c); !ok {
			GetLoggerFromCtx(c.Request.Context()).Warn("No session on protected route")
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
