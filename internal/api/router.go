package api

import (
	"logistics-route-service/internal/api/handlers"
	"logistics-route-service/internal/config"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Dependencies struct {
	Config  *config.Config
	Service handlers.RouteService
	Store   handlers.Pinger
	Log     *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	var (
		defaultCountry string
		rateLimit      config.RateLimitConfig
	)
	if deps.Config != nil {
		defaultCountry = deps.Config.Gateway.DefaultCountry
		rateLimit = deps.Config.Server.RateLimit
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(
		requestContextMiddleware(defaultCountry),
		loggingMiddleware(log.Named("http")),
		recoveryMiddleware(log),
		rateLimitMiddleware(rateLimit, log),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": handlers.CodeNotFound})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed", "code": "method_not_allowed"})
	})

	health := &handlers.HealthHandler{Store: deps.Store}
	routes := &handlers.RouteHandler{Service: deps.Service}

	engine.GET("/health", health.Health)

	v1 := engine.Group("/v1/logistics")
	{
		v1.POST("/routes/generate", routes.Generate)
		v1.GET("/routes", routes.ListByDate)
		v1.GET("/routes/:id", routes.Get)
		v1.PATCH("/stops/:id/status", routes.UpdateStopStatus)
	}

	return engine
}
