package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"

	"github.com/sashabaranov/go-openai"
)

// 管道阶段
const (
	StageChat   = "chat"
	StageSpeech = "speech"
)

// Kind 错误分类，只有 transient 会重试
type Kind string

const (
	KindTransient Kind = "transient"
	KindPermanent Kind = "permanent"
)

// Error 外部 AI 调用失败，带阶段和分类
type Error struct {
	Stage    string
	Kind     Kind
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s stage failed (%s, attempts=%d): %v", e.Stage, e.Kind, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrEmptyAudio 语音接口返回了空内容
var ErrEmptyAudio = errors.New("empty audio response")

// eino-ext 使用的 openai 分支只暴露错误文本
var statusCodePattern = regexp.MustCompile(`status code: (\d{3})`)

// Classify 判定错误是否可重试
func Classify(err error) Kind {
	if err == nil {
		return KindPermanent
	}

	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	if errors.Is(err, context.Canceled) {
		return KindPermanent
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}

	if m := statusCodePattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return kindForStatus(code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindTransient
	}
	return KindPermanent
}

func kindForStatus(code int) Kind {
	if code == 429 || code >= 500 {
		return KindTransient
	}
	return KindPermanent
}

// IsTransient 便于调用方判断
func IsTransient(err error) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Kind == KindTransient
}
