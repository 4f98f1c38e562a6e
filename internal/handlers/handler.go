package handlers

import (
	"switchbot_dashboard/internal/logger"
	"switchbot_dashboard/internal/metrics"
	"switchbot_dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger

	collector *metrics.Collector
	gatherer  prometheus.Gatherer
	broker    BrokerStatus
}

// BrokerStatus reports the MQTT connection on /health.
type BrokerStatus interface {
	IsConnected() bool
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// WithMetrics enables request counting and the /metrics endpoint.
func (h *Handler) WithMetrics(collector *metrics.Collector, gatherer prometheus.Gatherer) *Handler {
	h.collector = collector
	h.gatherer = gatherer
	return h
}

// WithBroker adds the MQTT connection state to /health.
func (h *Handler) WithBroker(b BrokerStatus) *Handler {
	h.broker = b
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if h.collector != nil {
		router.Use(metrics.GinMiddleware(h.collector))
	}
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Meter stream (HTTP upgrade) on the same port
	router.GET("/ws", h.operatorMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		h.registerSettingsRoutes(api)
		h.registerDeviceRoutes(api)
		h.registerControlRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerSettingsRoutes(api *gin.RouterGroup) {
	settings := api.Group("/settings")
	{
		settings.GET("", h.getSettings)
		settings.PUT("", h.saveSettings)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.GET("", h.listDevices)
		// Body example: {"command":"turnOn","parameter":"default","commandType":"command"}
		devices.POST("/:id/commands", h.sendDeviceCommand)
	}
}

func (h *Handler) registerControlRoutes(api *gin.RouterGroup) {
	// Body example: {"temperature":26,"mode":"cool","fan_speed":"auto","power":"on"}
	api.POST("/ac/apply", h.applyAirConditioner)
	api.POST("/tv/command", h.sendTVCommand)
	api.POST("/light/command", h.sendLightCommand)
	api.GET("/meter/status", h.meterStatus)
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
