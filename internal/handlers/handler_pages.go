package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/billed/internal/app"
	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/domain"
	"github.com/SscSPs/billed/internal/dto"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/SscSPs/billed/internal/views"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// maxProofSize bounds an uploaded proof.
const maxProofSize = 10 << 20

// pageHandler serves the employee views and turns form posts into session gestures.
type pageHandler struct {
	sessions *app.Registry
}

func newPageHandler(sessions *app.Registry) *pageHandler {
	return &pageHandler{sessions: sessions}
}

// registerPageRoutes registers the server-rendered employee routes.
func registerPageRoutes(r *gin.Engine, sessions *app.Registry, uploadLimiter *limiter.Limiter) {
	h := newPageHandler(sessions)

	r.GET(domain.RouteLogin, h.start)

	employee := r.Group("/employee", middleware.RequireSession())
	{
		employee.GET("/bills", h.navigate)
		employee.GET("/bill/new", h.navigate)
		employee.POST("/bills/preview", h.openPreview)
		employee.POST("/bills/new", h.requestNewBill)
		employee.POST("/bill/new", h.submitBill)

		upload := []gin.HandlerFunc{h.uploadProof}
		if uploadLimiter != nil {
			upload = append([]gin.HandlerFunc{middleware.RateLimit(uploadLimiter)}, upload...)
		}
		employee.POST("/bill/new/file", upload...)
	}
}

// session returns the registry session for the request. RequireSession
// guarantees the identity is present on /employee routes.
func (h *pageHandler) session(c *gin.Context) (*app.Session, bool) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		return nil, false
	}
	id, ok := middleware.GetSessionIDFromContext(c)
	if !ok {
		return nil, false
	}
	return h.sessions.Get(c.Request.Context(), id, user), true
}

func (h *pageHandler) start(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		writePage(c, h.sessions.Anonymous(c.Request.Context()), 0)
		return
	}
	sess.Start(c.Request.Context())
	writePage(c, sess, 0)
}

func (h *pageHandler) navigate(c *gin.Context) {
	sess, _ := h.session(c)
	sess.Navigate(c.Request.Context(), c.Request.URL.Path)
	writePage(c, sess, 0)
}

func (h *pageHandler) openPreview(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sess, _ := h.session(c)

	var req dto.PreviewRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn("Failed to bind preview form", slog.String("error", err.Error()))
	}
	if err := sess.OnIconActivated(c.Request.Context(), req.BillURL); err != nil {
		logger.Warn("Preview refused", slog.String("error", err.Error()))
		sess.Navigate(c.Request.Context(), domain.RouteBills)
		writePage(c, sess, http.StatusBadRequest)
		return
	}
	writePage(c, sess, 0)
}

func (h *pageHandler) requestNewBill(c *gin.Context) {
	sess, _ := h.session(c)
	if err := sess.OnCreateBillRequested(c.Request.Context()); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("New bill request failed", slog.String("error", err.Error()))
	}
	writePage(c, sess, 0)
}

func (h *pageHandler) uploadProof(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sess, _ := h.session(c)

	file, err := readProof(c)
	if err != nil {
		logger.Warn("Failed to read uploaded proof", slog.String("error", err.Error()))
		sess.OnFormRejected(c.Request.Context(), "Veuillez choisir un justificatif.")
		writePage(c, sess, http.StatusBadRequest)
		return
	}

	if err := sess.OnFileSelected(c.Request.Context(), file); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		writePage(c, sess, status)
		return
	}
	writePage(c, sess, 0)
}

func (h *pageHandler) submitBill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sess, _ := h.session(c)

	var req dto.NewBillRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Warn("Failed to bind new bill form", slog.String("error", err.Error()))
		sess.OnFormRejected(c.Request.Context(), "Formulaire invalide : vérifiez le type, la date et les montants.")
		writePage(c, sess, http.StatusBadRequest)
		return
	}

	if err := sess.OnFormSubmitted(c.Request.Context(), req.ToForm()); err != nil {
		logger.Error("Failed to submit new bill", slog.String("error", err.Error()))
	}
	writePage(c, sess, 0)
}

// notFound renders the unknown route view inside the layout.
func notFound(c *gin.Context) {
	page := views.Layout(views.Page{Route: c.Request.URL.Path, Region: views.NotFound()})
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(page))
}

// writePage writes the session's current document. A non-zero status overrides
// the one derived from the last navigation.
func writePage(c *gin.Context, sess *app.Session, status int) {
	page, routeStatus := sess.Page()
	if status == 0 {
		status = routeStatus
	}
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}

func readProof(c *gin.Context) (domain.SelectedFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return domain.SelectedFile{}, err
	}
	if header.Size > maxProofSize {
		return domain.SelectedFile{}, fmt.Errorf("proof %s is %d bytes, limit is %d", header.Filename, header.Size, maxProofSize)
	}
	f, err := header.Open()
	if err != nil {
		return domain.SelectedFile{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxProofSize))
	if err != nil {
		return domain.SelectedFile{}, err
	}
	return domain.SelectedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
