package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/readingroom/backend/internal/pkg/llm"
	"github.com/readingroom/backend/internal/repository"
	"github.com/readingroom/backend/internal/service"
	"github.com/readingroom/backend/internal/service/statemachine"
	"k8s.io/klog/v2"
)

// 各接口失败时返回的提示信息
const (
	msgBadRequest         = "잘못된 요청 형식입니다."
	msgSaveFailed         = "파일 저장 중 오류가 발생했습니다."
	msgBooksFailed        = "책 목록 조회 중 오류가 발생했습니다."
	msgMaterialsFailed    = "자료 검색 중 오류가 발생했습니다."
	msgFilesFailed        = "파일 목록 조회 중 오류가 발생했습니다."
	msgAnalyzeFailed      = "AI 분석 중 오류가 발생했습니다."
	msgAdvancedFailed     = "고급 분석 중 오류가 발생했습니다."
	msgCompareFailed      = "비교 분석 중 오류가 발생했습니다."
	msgTranscriptFailed   = "토론 분석 중 오류가 발생했습니다."
	msgSpeechFailed       = "음성 변환 중 오류가 발생했습니다."
	msgOrderFailed        = "순서 정하기 중 오류가 발생했습니다."
	msgServerError        = "서버 오류가 발생했습니다."
	msgDiscussionNotFound = "해당 독서 토론을 찾을 수 없습니다."
	msgTimerNotFound      = "타이머를 찾을 수 없습니다."
	msgTimerClosed        = "발언 시간이 종료되어 내용을 추가할 수 없습니다."
	msgTimerInvalidState  = "현재 타이머 상태에서는 처리할 수 없는 요청입니다."
	msgUploadSuccess      = "토론이 성공적으로 저장되었습니다."
	msgDiscussionCreated  = "독서 토론이 성공적으로 등록되었습니다."
)

// errorResponse 把服务层错误映射为状态码和响应体，message 为该接口的通用失败提示
func errorResponse(err error, message string) (int, gin.H) {
	var validationErr *service.ValidationError
	var aiErr *llm.Error
	var transitionErr *statemachine.InvalidStateTransitionError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, gin.H{"error": validationErr.Message}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": msgDiscussionNotFound}
	case errors.Is(err, service.ErrTimerNotFound):
		return http.StatusNotFound, gin.H{"error": msgTimerNotFound}
	case errors.Is(err, service.ErrTranscriptClosed):
		return http.StatusConflict, gin.H{"error": msgTimerClosed, "details": err.Error()}
	case errors.As(err, &transitionErr):
		return http.StatusConflict, gin.H{"error": msgTimerInvalidState, "details": err.Error()}
	case errors.As(err, &aiErr):
		return http.StatusInternalServerError, gin.H{
			"error":     message,
			"details":   aiErr.Err.Error(),
			"stage":     aiErr.Stage,
			"kind":      aiErr.Kind,
			"retryable": llm.IsTransient(err),
		}
	default:
		return http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()}
	}
}

func respondError(c *gin.Context, err error, message string) {
	status, body := errorResponse(err, message)
	if status >= http.StatusInternalServerError {
		klog.Errorf("%s %s 失败: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, body)
}
