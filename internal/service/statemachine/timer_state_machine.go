package statemachine

import (
	"fmt"

	"k8s.io/klog/v2"
)

// TimerState 讨论计时会话的状态
type TimerState string

const (
	TimerStateIdle      TimerState = "idle"      // 已创建或已重置，尚未开始
	TimerStateRunning   TimerState = "running"   // 计时中，可追加发言记录
	TimerStatePaused    TimerState = "paused"    // 暂停，可追加发言记录
	TimerStateExpired   TimerState = "expired"   // 时间到，停止收录
	TimerStateAnalyzing TimerState = "analyzing" // 正在分析发言记录
	TimerStateFinished  TimerState = "finished"  // 分析完成（或失败）
)

// TimerTransition 定义计时状态迁移
type TimerTransition struct {
	From TimerState
	To   TimerState
}

// TimerStateMachine 计时状态机
type TimerStateMachine struct {
	allowedTransitions map[TimerTransition]bool
}

// NewTimerStateMachine 创建计时状态机
func NewTimerStateMachine() *TimerStateMachine {
	sm := &TimerStateMachine{
		allowedTransitions: make(map[TimerTransition]bool),
	}

	// idle -> running -> expired -> analyzing -> finished
	// running <-> paused
	// expired -> running（还有额外发言权）
	// running/paused/expired/finished -> idle（reset）
	transitions := []TimerTransition{
		{TimerStateIdle, TimerStateRunning},
		{TimerStateRunning, TimerStatePaused},
		{TimerStatePaused, TimerStateRunning},
		{TimerStateRunning, TimerStateExpired},

		{TimerStateExpired, TimerStateRunning},
		{TimerStateExpired, TimerStateAnalyzing},
		{TimerStateAnalyzing, TimerStateFinished},

		{TimerStateRunning, TimerStateIdle},
		{TimerStatePaused, TimerStateIdle},
		{TimerStateExpired, TimerStateIdle},
		{TimerStateFinished, TimerStateIdle},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查状态迁移是否合法
func (sm *TimerStateMachine) CanTransition(from, to TimerState) bool {
	if from == to {
		return false
	}
	return sm.allowedTransitions[TimerTransition{From: from, To: to}]
}

// ValidateTransition 验证状态迁移并返回错误
func (sm *TimerStateMachine) ValidateTransition(from, to TimerState) error {
	if !sm.CanTransition(from, to) {
		return &InvalidStateTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 执行状态迁移（带日志）
func (sm *TimerStateMachine) Transition(from, to TimerState, sessionID string) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("计时状态迁移被拒绝: session=%s, %s -> %s, error=%v",
			sessionID, from, to, err)
		return err
	}

	klog.V(6).Infof("计时状态迁移成功: session=%s, %s -> %s", sessionID, from, to)
	return nil
}

// InvalidStateTransitionError 无效的状态迁移错误
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// AcceptsTranscript 只有计时中或暂停时收录发言
func AcceptsTranscript(state TimerState) bool {
	return state == TimerStateRunning || state == TimerStatePaused
}
