package timer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/timerkit/countdown-api/internal/middleware"
	"github.com/timerkit/countdown-api/internal/model"
	timerService "github.com/timerkit/countdown-api/internal/service/timer"
	apperrors "github.com/timerkit/countdown-api/pkg/errors"
)

type Handler struct {
	service *timerService.Service
}

func NewHandler(service *timerService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListTimers(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	timers, err := h.service.List(c.Request.Context(), shop)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": timers})
}

func (h *Handler) GetTimer(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid timer ID"})
		return
	}

	timer, err := h.service.Get(c.Request.Context(), id, shop)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": timer})
}

func (h *Handler) CreateTimer(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	var req model.CreateTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	timer, err := h.service.Create(c.Request.Context(), shop, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": timer})
}

func (h *Handler) UpdateTimer(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid timer ID"})
		return
	}

	var req model.UpdateTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	timer, err := h.service.Update(c.Request.Context(), id, shop, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": timer})
}

func (h *Handler) DeleteTimer(c *gin.Context) {
	shop := middleware.ShopFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid timer ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, shop); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	timers := r.Group("/timers")
	{
		timers.GET("", h.ListTimers)
		timers.POST("", h.CreateTimer)
		timers.GET("/:id", h.GetTimer)
		timers.PUT("/:id", h.UpdateTimer)
		timers.DELETE("/:id", h.DeleteTimer)
	}
}

func respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": err.Error()})
	case apperrors.IsBadRequest(err):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
	}
}
