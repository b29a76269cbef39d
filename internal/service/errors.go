package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation 请求参数不合法，handler 映射为 400
	ErrValidation = errors.New("validation failed")
	// ErrTimerNotFound 计时会话不存在或已删除
	ErrTimerNotFound = errors.New("timer session not found")
	// ErrTranscriptClosed 计时已结束，不再收录发言
	ErrTranscriptClosed = errors.New("timer is not accepting transcript")
)

// ValidationError 带面向用户的提示信息
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StorageError 数据库操作失败
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// 面向用户的提示信息
const (
	MsgMissingData        = "필수 데이터가 누락되었습니다."
	MsgMissingBookTitle   = "책 제목을 입력해주세요."
	MsgMissingContent     = "파일 내용이 필요합니다."
	MsgMissingFileName    = "파일 이름이 필요합니다."
	MsgUnknownType        = "자료 유형은 요약 또는 적용이어야 합니다."
	MsgMissingParticipant = "참여자 이름을 입력해주세요."
	MsgMissingTranscript  = "토론 내용을 입력해주세요."
	MsgMissingText        = "음성으로 변환할 텍스트가 필요합니다."
	MsgInvalidDuration    = "발언 시간은 1초 이상이어야 합니다."
)
