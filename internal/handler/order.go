package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readingroom/backend/internal/service"
)

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(service *service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Pick POST /api/order
func (h *OrderHandler) Pick(c *gin.Context) {
	var req service.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	resp, err := h.service.PickOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgOrderFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}
