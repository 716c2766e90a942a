package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains dependencies shared by route groups.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// MetricsHandler exposes the Prometheus registry.
func (h *Handler) MetricsHandler(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}
