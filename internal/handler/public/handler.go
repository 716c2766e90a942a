package public

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timerkit/countdown-api/internal/middleware"
	"github.com/timerkit/countdown-api/internal/model"
	timerService "github.com/timerkit/countdown-api/internal/service/timer"
	"github.com/timerkit/countdown-api/pkg/clock"
	"github.com/timerkit/countdown-api/pkg/worker"
)

// Handler serves the storefront-facing resolve endpoint.
type Handler struct {
	service *timerService.Service
	tracker *worker.ImpressionTracker
	clock   clock.Clock
}

func NewHandler(service *timerService.Service, tracker *worker.ImpressionTracker, clk clock.Clock) *Handler {
	return &Handler{service: service, tracker: tracker, clock: clk}
}

// GetActiveTimer resolves the single timer to display for a
// product/collection context. No match is a normal outcome, answered
// with an explicit empty result rather than a server error.
func (h *Handler) GetActiveTimer(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	productID := c.Query("productId")
	collectionID := c.Query("collectionId")
	if productID == "" && collectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "productId or collectionId is required"})
		return
	}

	timer, err := h.service.FindMatching(c.Request.Context(), shop, productID, collectionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if timer == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "no active timer found"})
		return
	}

	// Counted off the request path; a full queue drops the increment
	// rather than delaying the response.
	h.tracker.Track(timer.ID)

	payload := gin.H{
		"id":            timer.ID.String(),
		"kind":          timer.Kind,
		"customization": timer.Customization,
	}
	if timer.Kind == model.TimerKindFixed {
		payload["end_date"] = timer.EndDate.UTC().Format(time.RFC3339)
		payload["remaining_seconds"] = timer.RemainingSeconds(h.clock.Now())
	} else {
		payload["duration"] = timer.Duration
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{"timer": payload}})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	pub := r.Group("/public")
	{
		pub.GET("/timer", h.GetActiveTimer)
	}
}
