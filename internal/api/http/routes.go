package http

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/framerelay/internal/infrastructure/monitoring"
)

// RegisterRoutes mounts the relay surface on router
func RegisterRoutes(router gin.IRouter, h *Handlers, metrics *monitoring.Metrics) {
	router.GET("/health", h.Health)

	// Relay
	router.POST("/rest", h.Rest)
	router.POST("/fetch", h.Fetch)
	router.POST("/request/:kind", h.Request)

	// Bridge control
	router.POST("/bridge/reconnect", h.Reconnect)

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
}
