package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/billed/internal/app"
	"github.com/SscSPs/billed/internal/dto"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/SscSPs/billed/internal/views"
	"github.com/gin-gonic/gin"
)

// billAPIHandler mirrors the bills list as JSON for scripted clients.
type billAPIHandler struct {
	sessions *app.Registry
}

func registerBillAPIRoutes(rg *gin.RouterGroup, sessions *app.Registry) {
	h := &billAPIHandler{sessions: sessions}
	rg.GET("/bills", h.listBills)
}

// listBills godoc
// @Summary List the employee's bills
// @Description Returns the bills of the session in the list view's display form, most recent first.
// @Tags bills
// @Produce json
// @Success 200 {object} dto.ListBillsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /bills [get]
func (h *billAPIHandler) listBills(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	user, ok := middleware.GetUserFromContext(c)
	id, hasID := middleware.GetSessionIDFromContext(c)
	if !ok || !hasID {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	bills, err := h.sessions.Get(c.Request.Context(), id, user).Bills(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list bills", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.ToListBillsResponse(views.SortAntiChrono(bills)))
}
