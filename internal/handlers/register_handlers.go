package handlers

import (
	"net/http"

	"github.com/SscSPs/billed/cmd/docs"
	"github.com/SscSPs/billed/internal/app"
	"github.com/SscSPs/billed/internal/core/ports/repositories"
	"github.com/SscSPs/billed/internal/middleware"
	"github.com/SscSPs/billed/internal/platform/config"
	"github.com/SscSPs/billed/internal/platform/metrics"
	"github.com/SscSPs/billed/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// Dependencies are the collaborators the routes need.
type Dependencies struct {
	Sessions      *app.Registry
	Files         repositories.FileReader // nil when the store does not keep proof contents
	Metrics       *metrics.Metrics
	UploadLimiter *limiter.Limiter
	Posthog       *utils.PosthogClientWrapper
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.Use(
		middleware.SessionMiddleware(cfg.SessionSecret, cfg.SessionCookieName),
		middleware.PosthogMiddleware(deps.Posthog),
	)

	registerSessionRoutes(r, cfg, deps.Sessions)
	registerPageRoutes(r, deps.Sessions, deps.UploadLimiter)
	registerFileRoutes(r, deps.Files)
	setupAPIV1Routes(r, cfg, deps.Sessions)
	setupSwaggerRoutes(r, cfg)

	r.NoRoute(notFound)
}

// setupAPIV1Routes configures the /api/v1 JSON mirror of the list view
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, sessions *app.Registry) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowCredentials = true
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}

	v1 := r.Group("/api/v1", cors.New(corsConfig))
	registerBillAPIRoutes(v1, sessions)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
