package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readingroom/backend/internal/service"
)

type AnalysisHandler struct {
	service *service.AnalysisService
}

func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// Analyze POST /api/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req service.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	resp, err := h.service.Analyze(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgAnalyzeFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Advanced POST /api/analyze/advanced
func (h *AnalysisHandler) Advanced(c *gin.Context) {
	var req service.KeywordAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	resp, err := h.service.AnalyzeAdvanced(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgAdvancedFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Compare POST /api/analyze/compare
func (h *AnalysisHandler) Compare(c *gin.Context) {
	var req service.KeywordAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	resp, err := h.service.AnalyzeCompare(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgCompareFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transcript POST /api/analyze/transcript
func (h *AnalysisHandler) Transcript(c *gin.Context) {
	var req service.TranscriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	resp, err := h.service.AnalyzeTranscript(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgTranscriptFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Speech POST /api/speech
func (h *AnalysisHandler) Speech(c *gin.Context) {
	var req service.SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgBadRequest})
		return
	}

	resp, err := h.service.Speak(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, msgSpeechFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}
