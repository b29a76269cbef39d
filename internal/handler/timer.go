package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readingroom/backend/internal/service"
)

type TimerHandler struct {
	timers *service.TimerManager
}

func NewTimerHandler(timers *service.TimerManager) *TimerHandler {
	return &TimerHandler{timers: timers}
}

// RegisterRoutes 注册计时会话路由
func (h *TimerHandler) RegisterRoutes(router *gin.RouterGroup) {
	timers := router.Group("/timers")
	{
		timers.POST("", h.Create)
		timers.GET("/:id", h.Get)
		timers.POST("/:id/start", h.action(h.timers.Start))
		timers.POST("/:id/pause", h.action(h.timers.Pause))
		timers.POST("/:id/reset", h.action(h.timers.Reset))
		timers.POST("/:id/transcript", h.AppendTranscript)
		timers.DELETE("/:id", h.Delete)
	}
}

func (h *TimerHandler) Create(c *gin.Context) {
	var req service.CreateTimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	session, err := h.timers.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgServerError)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *TimerHandler) Get(c *gin.Context) {
	session, err := h.timers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, msgServerError)
		return
	}
	c.JSON(http.StatusOK, session)
}

// action 包装 start / pause / reset
func (h *TimerHandler) action(fn func(ctx context.Context, id string) (*service.TimerSession, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := fn(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, msgServerError)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func (h *TimerHandler) AppendTranscript(c *gin.Context) {
	var req service.AppendTranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	session, err := h.timers.AppendTranscript(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err, msgServerError)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *TimerHandler) Delete(c *gin.Context) {
	if err := h.timers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, msgServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
