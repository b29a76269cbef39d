package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/readingroom/backend/internal/service"
)

type DiscussionHandler struct {
	service *service.DiscussionService
}

func NewDiscussionHandler(service *service.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{service: service}
}

// Upload POST /api/discussions/upload
func (h *DiscussionHandler) Upload(c *gin.Context) {
	var req service.UploadDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": service.MsgMissingData})
		return
	}

	discussion, err := h.service.Upload(c.Request.Context(), &req)
	if err != nil {
		status, body := errorResponse(err, msgSaveFailed)
		body["success"] = false
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      discussion.ID,
		"message": msgUploadSuccess,
	})
}

// Create POST /api/discussions
func (h *DiscussionHandler) Create(c *gin.Context) {
	var req service.CreateBookDiscussionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	discussion, err := h.service.CreateBookDiscussion(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msgDiscussionCreated,
		"id":      discussion.ID,
	})
}

// List GET /api/discussions?bookTitle=
func (h *DiscussionHandler) List(c *gin.Context) {
	discussions, err := h.service.List(c.Request.Context(), c.Query("bookTitle"))
	if err != nil {
		respondError(c, err, msgServerError)
		return
	}
	c.JSON(http.StatusOK, discussions)
}

// Get GET /api/discussions/:id
func (h *DiscussionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgDiscussionNotFound})
		return
	}

	discussion, err := h.service.Get(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err, msgServerError)
		return
	}
	c.JSON(http.StatusOK, discussion)
}
