package analytics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timerkit/countdown-api/internal/middleware"
	timerService "github.com/timerkit/countdown-api/internal/service/timer"
)

type Handler struct {
	service *timerService.Service
}

func NewHandler(service *timerService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetSummary(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	summary, err := h.service.Analytics(c.Request.Context(), shop)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": summary})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("/summary", h.GetSummary)
	}
}
