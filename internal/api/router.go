package api

import (
	"net/http"

	"transit-lc/internal/api/handlers"
	"transit-lc/internal/api/middleware"
	"transit-lc/internal/api/models"
	"transit-lc/internal/config"
	"transit-lc/internal/data"
	"transit-lc/internal/harness"
	"transit-lc/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server bundles the router with resources that need closing.
type Server struct {
	Router *gin.Engine
	cache  *data.ResponseCache[models.LightCurveResponse]
}

func (s *Server) Close() {
	s.cache.Close()
}

// NewServer wires handlers and middleware from the environment config.
func NewServer(cfg config.Server, logger zerolog.Logger) *Server {
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	observability.RegisterMetrics()
	router := gin.New()

	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.NoRoute(middleware.NotFound())

	cache := data.NewResponseCache[models.LightCurveResponse](cfg.CacheEnabled, cfg.CacheTTL, cfg.CacheTTL)
	store := handlers.NewSystemStore(cfg.SystemDir, logger)
	logger.Info().
		Str("system_dir", store.Dir()).
		Bool("cache", cache != nil).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("api configured")

	modelHandler := handlers.NewModelHandler()
	systemHandler := handlers.NewSystemHandler(store)
	lightCurveHandler := handlers.NewLightCurveHandler(store, cache, logger)
	checkHandler := handlers.NewCheckHandler(store, harness.Options{
		Workers: cfg.Workers,
		Timeout: cfg.CheckTimeout,
	}, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/models", modelHandler.ListModels)
		v1.GET("/systems", systemHandler.ListSystems)
		v1.GET("/systems/:id", systemHandler.GetSystem)
		v1.POST("/lightcurve", lightCurveHandler.Compute)
		v1.POST("/check", checkHandler.Run)
	}

	return &Server{Router: router, cache: cache}
}
