package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/billed/internal/apperrors"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/gin-gonic/gin"
)

// registerFileRoutes serves proofs kept by database-backed stores. The remote
// API store hands out its own file URLs, so files is nil there.
func registerFileRoutes(r *gin.Engine, files repositories.FileReader) {
	r.GET("/files/:id", func(c *gin.Context) {
		if files == nil {
			c.Status(http.StatusNotFound)
			return
		}

		file, err := files.ReadFile(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.Status(http.StatusNotFound)
				return
			}
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to read proof", slog.String("file_id", c.Param("id")), slog.String("error", err.Error()))
			c.Status(http.StatusInternalServerError)
			return
		}

		contentType := file.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(file.Content)
		}
		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.FileName))
		c.Data(http.StatusOK, contentType, file.Content)
	})
}
