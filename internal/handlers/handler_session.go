package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/billed/internal/app"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/dto"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/SscSPs/billed/internal/platform/config"
	"github.com/SscSPs/billed/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler opens and closes employee sessions. Credentials are checked
// upstream; the login form only names the employee.
type SessionHandler struct {
	sessions *app.Registry
	cfg      *config.Config
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *app.Registry, cfg *config.Config) *SessionHandler {
	return &SessionHandler{sessions: sessions, cfg: cfg}
}

func registerSessionRoutes(r *gin.Engine, cfg *config.Config, sessions *app.Registry) {
	h := NewSessionHandler(sessions, cfg)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
}

// Login signs a session cookie for the employee and redirects to their landing route.
func (h *SessionHandler) Login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn("Failed to bind login form", slog.String("error", err.Error()))
		writePage(c, h.sessions.Anonymous(c.Request.Context()), http.StatusBadRequest)
		return
	}

	user := domain.User{Type: domain.UserTypeEmployee, Email: req.Email}
	sessionID := uuid.NewString()
	token, err := utils.GenerateSessionToken(user, sessionID, h.cfg.SessionSecret, h.cfg.SessionTTL, h.cfg.SessionIssuer)
	if err != nil {
		logger.Error("Failed to sign session token", slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "Internal server error")
		return
	}

	logger.Info("Session opened", slog.String("email", user.Email), slog.String("session_id", sessionID))
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, token, int(h.cfg.SessionTTL.Seconds()), "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusSeeOther, domain.DefaultRouteFor(user.Type))
}

// Logout drops the session and clears its cookie.
func (h *SessionHandler) Logout(c *gin.Context) {
	if id, ok := middleware.GetSessionIDFromContext(c); ok {
		h.sessions.Remove(id)
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("Session closed", slog.String("session_id", id))
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.SessionCookieName, "", -1, "/", "", h.cfg.IsProduction, true)
	c.Redirect(http.StatusSeeOther, domain.RouteLogin)
}
