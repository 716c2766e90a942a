package scheduler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timerkit/countdown-api/internal/worker"
)

// StatusReporter is the slice of the reconciler the handler needs.
type StatusReporter interface {
	Status() worker.Status
}

type Handler struct {
	reconciler StatusReporter
}

func NewHandler(reconciler StatusReporter) *Handler {
	return &Handler{reconciler: reconciler}
}

func (h *Handler) GetStatus(c *gin.Context) {
	status := h.reconciler.Status()
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"running":      status.Running,
			"interval":     status.Interval.String(),
			"last_run_at":  status.LastRunAt,
			"last_checked": status.LastChecked,
			"last_updated": status.LastUpdated,
			"last_failed":  status.LastFailed,
		},
	})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/scheduler/status", h.GetStatus)
}
