package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"whisprdraw-backend/internal/config"
	"whisprdraw-backend/internal/handlers"
	"whisprdraw-backend/internal/middleware"
)

type Handlers struct {
	Projects   *handlers.ProjectsHandler
	ImagePairs *handlers.ImagePairsHandler
	Generate   *handlers.GenerateHandler
}

// New builds the HTTP routes. The generation endpoints share one per-client
// rate limiter.
func New(cfg *config.Config, logger zerolog.Logger, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Only configured proxies may set the client IP the rate limiter keys on.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("invalid TRUSTED_PROXIES, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	r.GET("/status", handlers.StatusHandler)

	api := r.Group("/api")
	api.Use(middleware.Auth(cfg))

	limited := middleware.RateLimit(cfg.GenerationRatePerMin)

	api.GET("/projects/:user_id", h.Projects.ListProjects)
	api.POST("/projects", h.Projects.CreateProject)
	api.PUT("/projects/:project_id", h.Projects.UpdateProject)
	api.POST("/projects/generate-icon", limited, h.Projects.GenerateIcon)

	api.GET("/image-pairs/:project_id", h.ImagePairs.ListImagePairs)

	api.POST("/generate-image", limited, h.Generate.GenerateImage)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
		c.AllowCredentials = false
	}
	return c
}
