package handlers

import (
	"net/http"

	"water_tank/internal/logger"
	"water_tank/internal/models"
	"water_tank/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Subscriber delivers one reading per driver tick.
type Subscriber interface {
	Subscribe() (<-chan models.TankReading, func())
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	stream   Subscriber
	metrics  http.Handler
}

// Option configures optional HTTP surfaces.
type Option func(*Handler)

// WithStream enables push updates on /ws.
func WithStream(s Subscriber) Option {
	return func(h *Handler) { h.stream = s }
}

// WithMetrics mounts a Prometheus handler on /metrics.
func WithMetrics(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics))
	}

	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerTankRoutes(api)
		h.registerSimulationRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerTankRoutes(api *gin.RouterGroup) {
	tank := api.Group("/tank")
	{
		tank.GET("/state", h.getState)
		// Body example: {"on":true}
		tank.POST("/pump", h.setPump)
		// Body example: {"auto_cutoff":true,"night_limit":false,"threshold":25}
		tank.PUT("/config", h.setConfig)
	}
}

func (h *Handler) registerSimulationRoutes(api *gin.RouterGroup) {
	sim := api.Group("/simulation")
	{
		sim.POST("/start", h.startSimulation)
		sim.POST("/stop", h.stopSimulation)
		sim.GET("/status", h.simulationStatus)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	api.GET("/logs", h.getLogs)
}
