package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readingroom/backend/internal/service"
)

type MaterialHandler struct {
	service *service.MaterialService
}

func NewMaterialHandler(service *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

type materialQuery struct {
	BookTitle string `form:"bookTitle" binding:"required"`
	Type      string `form:"type" binding:"required,material_type"`
	FileName  string `form:"fileName"`
}

type fileQuery struct {
	BookTitle string `form:"book_title" binding:"required"`
	Type      string `form:"type" binding:"required,material_type"`
}

// Books GET /api/books
func (h *MaterialHandler) Books(c *gin.Context) {
	titles, err := h.service.BookTitles(c.Request.Context())
	if err != nil {
		respondError(c, err, msgBooksFailed)
		return
	}
	c.JSON(http.StatusOK, titles)
}

// Materials GET /api/materials
func (h *MaterialHandler) Materials(c *gin.Context) {
	var q materialQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	materials, err := h.service.Search(c.Request.Context(), q.BookTitle, q.Type, q.FileName)
	if err != nil {
		respondError(c, err, msgMaterialsFailed)
		return
	}
	c.JSON(http.StatusOK, materials)
}

// Files GET /api/files
func (h *MaterialHandler) Files(c *gin.Context) {
	var q fileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	files, err := h.service.Files(c.Request.Context(), q.BookTitle, q.Type)
	if err != nil {
		respondError(c, err, msgFilesFailed)
		return
	}
	c.JSON(http.StatusOK, files)
}
