package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/readingroom/backend/internal/eventbus"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/service/statemachine"
	"k8s.io/klog/v2"
)

const (
	extraTurnNotice = "추가 발언 기회가 있습니다."
	extraMinute     = 60 * time.Second
)

// Clock 便于测试替换计时器
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

type Stopper interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// TranscriptAnalyzer 计时结束后分析发言记录
type TranscriptAnalyzer interface {
	AnalyzeTranscript(ctx context.Context, req *TranscriptRequest) (*AnalysisResponse, error)
}

type CreateTimerRequest struct {
	DurationSeconds int              `json:"durationSeconds"`
	Character       *model.Character `json:"character"`
}

type AppendTranscriptRequest struct {
	Text string `json:"text"`
}

// TimerSession 对外返回的会话快照
type TimerSession struct {
	ID               string                  `json:"id"`
	Character        *model.Character        `json:"character,omitempty"`
	DurationSeconds  int                     `json:"durationSeconds"`
	RemainingSeconds int                     `json:"remainingSeconds"`
	ExtraTurns       int                     `json:"extraTurns"`
	State            statemachine.TimerState `json:"state"`
	Transcript       string                  `json:"transcript"`
	Notice           string                  `json:"notice,omitempty"`
	Analysis         string                  `json:"analysis,omitempty"`
	AudioURL         string                  `json:"audioUrl,omitempty"`
	Error            string                  `json:"error,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
}

type timerSession struct {
	TimerSession
	duration   time.Duration
	remaining  time.Duration
	deadline   time.Time
	baseTurns  int
	timer      Stopper
	generation uint64 // 过期回调与当前计时不匹配时忽略
}

// TimerManager 持有全部计时会话，所有修改在同一把锁下进行
type TimerManager struct {
	mu              sync.Mutex
	sessions        map[string]*timerSession
	sm              *statemachine.TimerStateMachine
	analyzer        TranscriptAnalyzer
	bus             *eventbus.TimerEventBus
	clock           Clock
	analysisTimeout time.Duration
	wg              sync.WaitGroup
	closed          bool
}

func NewTimerManager(analyzer TranscriptAnalyzer, bus *eventbus.TimerEventBus, analysisTimeout time.Duration) *TimerManager {
	return &TimerManager{
		sessions:        make(map[string]*timerSession),
		sm:              statemachine.NewTimerStateMachine(),
		analyzer:        analyzer,
		bus:             bus,
		clock:           realClock{},
		analysisTimeout: analysisTimeout,
	}
}

// WithClock 测试用
func (m *TimerManager) WithClock(clock Clock) *TimerManager {
	m.clock = clock
	return m
}

func (m *TimerManager) Create(ctx context.Context, req *CreateTimerRequest) (*TimerSession, error) {
	if req == nil || req.DurationSeconds <= 0 {
		return nil, invalid("durationSeconds", MsgInvalidDuration)
	}

	duration := time.Duration(req.DurationSeconds) * time.Second
	turns := 0
	if req.Character != nil {
		switch req.Character.SpecialEffect {
		case model.EffectExtraMinute:
			duration += extraMinute
		case model.EffectExtraTurn:
			turns = 1
		}
	}

	s := &timerSession{
		TimerSession: TimerSession{
			ID:        uuid.NewString(),
			Character: req.Character,
			State:     statemachine.TimerStateIdle,
			CreatedAt: m.clock.Now(),
		},
		duration:  duration,
		remaining: duration,
		baseTurns: turns,
	}
	s.ExtraTurns = turns

	m.mu.Lock()
	m.sessions[s.ID] = s
	snapshot := m.snapshot(s)
	m.mu.Unlock()

	klog.V(6).Infof("创建计时会话: session=%s, duration=%v, extraTurns=%d", s.ID, duration, turns)
	return snapshot, nil
}

func (m *TimerManager) Get(ctx context.Context, id string) (*TimerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrTimerNotFound
	}
	return m.snapshot(s), nil
}

func (m *TimerManager) Start(ctx context.Context, id string) (*TimerSession, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, ErrTimerNotFound
	}
	if err := m.sm.Transition(s.State, statemachine.TimerStateRunning, id); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	s.State = statemachine.TimerStateRunning
	s.Notice = ""
	m.schedule(s)
	snapshot := m.snapshot(s)
	m.mu.Unlock()

	m.publish(ctx, eventbus.TimerEventStarted, snapshot, "")
	return snapshot, nil
}

func (m *TimerManager) Pause(ctx context.Context, id string) (*TimerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrTimerNotFound
	}
	if err := m.sm.Transition(s.State, statemachine.TimerStatePaused, id); err != nil {
		return nil, err
	}
	s.remaining = s.deadline.Sub(m.clock.Now())
	if s.remaining < 0 {
		s.remaining = 0
	}
	m.stop(s)
	s.State = statemachine.TimerStatePaused
	return m.snapshot(s), nil
}

// Reset 回到初始状态，清空发言记录与分析结果
func (m *TimerManager) Reset(ctx context.Context, id string) (*TimerSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrTimerNotFound
	}
	if err := m.sm.Transition(s.State, statemachine.TimerStateIdle, id); err != nil {
		return nil, err
	}
	m.stop(s)
	s.State = statemachine.TimerStateIdle
	s.remaining = s.duration
	s.ExtraTurns = s.baseTurns
	s.Transcript = ""
	s.Notice = ""
	s.Analysis = ""
	s.AudioURL = ""
	s.Error = ""
	return m.snapshot(s), nil
}

// AppendTranscript 只在计时中或暂停时接受，过期后返回 ErrTranscriptClosed
func (m *TimerManager) AppendTranscript(ctx context.Context, id string, req *AppendTranscriptRequest) (*TimerSession, error) {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, invalid("text", MsgMissingTranscript)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrTimerNotFound
	}
	if !statemachine.AcceptsTranscript(s.State) {
		return nil, fmt.Errorf("%w: state=%s", ErrTranscriptClosed, s.State)
	}
	s.Transcript = strings.TrimSpace(s.Transcript + " " + strings.TrimSpace(req.Text))
	return m.snapshot(s), nil
}

func (m *TimerManager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrTimerNotFound
	}
	m.stop(s)
	delete(m.sessions, id)
	klog.V(6).Infof("删除计时会话: session=%s", id)
	return nil
}

// Close 停止全部计时器并等待进行中的分析结束
func (m *TimerManager) Close() {
	m.mu.Lock()
	m.closed = true
	for _, s := range m.sessions {
		m.stop(s)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

// schedule 调用方持有锁
func (m *TimerManager) schedule(s *timerSession) {
	m.stop(s)
	s.deadline = m.clock.Now().Add(s.remaining)
	gen := s.generation
	id := s.ID
	s.timer = m.clock.AfterFunc(s.remaining, func() {
		m.expire(id, gen)
	})
}

// stop 调用方持有锁
func (m *TimerManager) stop(s *timerSession) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

func (m *TimerManager) expire(id string, gen uint64) {
	ctx := context.Background()

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.generation != gen || s.State != statemachine.TimerStateRunning || m.closed {
		m.mu.Unlock()
		return
	}
	if err := m.sm.Transition(s.State, statemachine.TimerStateExpired, id); err != nil {
		m.mu.Unlock()
		return
	}
	s.timer = nil
	s.generation++
	s.State = statemachine.TimerStateExpired
	s.remaining = 0
	expired := m.snapshot(s)

	if s.ExtraTurns > 0 {
		// 还有额外发言权，重新计时
		s.ExtraTurns--
		s.remaining = s.duration
		s.Notice = extraTurnNotice
		if err := m.sm.Transition(s.State, statemachine.TimerStateRunning, id); err == nil {
			s.State = statemachine.TimerStateRunning
			m.schedule(s)
		}
		m.mu.Unlock()
		m.publish(ctx, eventbus.TimerEventExpired, expired, "")
		return
	}

	s.Notice = timeUpNotice(s.Character)
	_ = m.sm.Transition(s.State, statemachine.TimerStateAnalyzing, id)
	s.State = statemachine.TimerStateAnalyzing
	transcript := s.Transcript
	m.wg.Add(1)
	m.mu.Unlock()

	defer m.wg.Done()
	m.publish(ctx, eventbus.TimerEventExpired, expired, "")
	m.analyze(ctx, id, transcript)
}

// analyze 在锁外调用模型，结果写回时会话可能已被删除
func (m *TimerManager) analyze(ctx context.Context, id, transcript string) {
	var result *AnalysisResponse
	var errMsg string

	if strings.TrimSpace(transcript) == "" {
		errMsg = MsgMissingTranscript
	} else {
		if m.analysisTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.analysisTimeout)
			defer cancel()
		}
		res, err := m.analyzer.AnalyzeTranscript(ctx, &TranscriptRequest{Transcript: transcript})
		if err != nil {
			klog.Errorf("讨论记录分析失败: session=%s, err=%v", id, err)
			errMsg = err.Error()
		} else {
			result = res
		}
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok || s.State != statemachine.TimerStateAnalyzing {
		m.mu.Unlock()
		return
	}
	if result != nil {
		s.Analysis = result.Analysis
		s.AudioURL = result.AudioURL
	}
	s.Error = errMsg
	_ = m.sm.Transition(s.State, statemachine.TimerStateFinished, id)
	s.State = statemachine.TimerStateFinished
	finished := m.snapshot(s)
	m.mu.Unlock()

	m.publish(ctx, eventbus.TimerEventAnalyzed, finished, errMsg)
}

func (m *TimerManager) publish(ctx context.Context, eventType eventbus.TimerEventType, s *TimerSession, errMsg string) {
	name := ""
	if s.Character != nil {
		name = s.Character.Name
	}
	if err := m.bus.Publish(ctx, eventType, eventbus.TimerEvent{
		Type:          eventType,
		SessionID:     s.ID,
		CharacterName: name,
		State:         string(s.State),
		TranscriptLen: len(s.Transcript),
		Error:         errMsg,
	}); err != nil {
		klog.Warningf("发布计时事件失败: session=%s, type=%s, err=%v", s.ID, eventType, err)
	}
}

// snapshot 调用方持有锁
func (m *TimerManager) snapshot(s *timerSession) *TimerSession {
	out := s.TimerSession
	if s.Character != nil {
		c := *s.Character
		out.Character = &c
	}
	out.DurationSeconds = int(s.duration / time.Second)
	remaining := s.remaining
	if s.State == statemachine.TimerStateRunning {
		remaining = s.deadline.Sub(m.clock.Now())
		if remaining < 0 {
			remaining = 0
		}
	}
	out.RemainingSeconds = int(math.Ceil(remaining.Seconds()))
	return &out
}

func timeUpNotice(c *model.Character) string {
	if c == nil || c.Name == "" {
		return "시간이 종료되었습니다."
	}
	return c.Name + "님의 시간이 종료되었습니다."
}
