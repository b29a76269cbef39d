package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readingroom/backend/internal/eventbus"
	"github.com/readingroom/backend/internal/model"
	"github.com/readingroom/backend/internal/service/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTimerManager(analyzer TranscriptAnalyzer) (*TimerManager, *fakeClock, *eventbus.TimerEventBus) {
	clock := newFakeClock()
	bus := eventbus.NewTimerEventBus()
	return NewTimerManager(analyzer, bus, time.Minute).WithClock(clock), clock, bus
}

func TestTimerExtraMinuteEffect(t *testing.T) {
	m, _, _ := newTestTimerManager(&fakeAnalyzer{})
	ctx := context.Background()

	s, err := m.Create(ctx, &CreateTimerRequest{
		DurationSeconds: 180,
		Character:       &model.Character{Name: "민수", SpecialEffect: model.EffectExtraMinute},
	})
	require.NoError(t, err)
	assert.Equal(t, 240, s.DurationSeconds)
	assert.Equal(t, 240, s.RemainingSeconds)
	assert.Equal(t, statemachine.TimerStateIdle, s.State)
	assert.Zero(t, s.ExtraTurns)
}

func TestTimerExpiryRunsAnalysisAndClosesTranscript(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	m, clock, bus := newTestTimerManager(analyzer)
	ctx := context.Background()

	var events []eventbus.TimerEventType
	record := func(ctx context.Context, e eventbus.TimerEvent) error {
		events = append(events, e.Type)
		return nil
	}
	bus.Subscribe(eventbus.TimerEventExpired, record)
	bus.Subscribe(eventbus.TimerEventAnalyzed, record)

	s, err := m.Create(ctx, &CreateTimerRequest{DurationSeconds: 60, Character: &model.Character{Name: "민수"}})
	require.NoError(t, err)
	_, err = m.Start(ctx, s.ID)
	require.NoError(t, err)

	_, err = m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "가치 창출이 핵심입니다."})
	require.NoError(t, err)
	clock.Advance(30 * time.Second)
	got, err := m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "고객이 우선입니다."})
	require.NoError(t, err)
	assert.Equal(t, "가치 창출이 핵심입니다. 고객이 우선입니다.", got.Transcript)
	assert.Equal(t, 30, got.RemainingSeconds)

	clock.Advance(31 * time.Second)

	got, err = m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.TimerStateFinished, got.State)
	assert.Equal(t, "토론 분석", got.Analysis)
	assert.NotEmpty(t, got.AudioURL)
	assert.Equal(t, "민수님의 시간이 종료되었습니다.", got.Notice)
	assert.Equal(t, []string{"가치 창출이 핵심입니다. 고객이 우선입니다."}, analyzer.transcripts)
	assert.Equal(t, []eventbus.TimerEventType{eventbus.TimerEventExpired, eventbus.TimerEventAnalyzed}, events)

	_, err = m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "늦은 발언"})
	assert.True(t, errors.Is(err, ErrTranscriptClosed))
}

func TestTimerExtraTurnRestartsOnce(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	m, clock, _ := newTestTimerManager(analyzer)
	ctx := context.Background()

	s, err := m.Create(ctx, &CreateTimerRequest{
		DurationSeconds: 10,
		Character:       &model.Character{Name: "지영", SpecialEffect: model.EffectExtraTurn},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.ExtraTurns)

	_, err = m.Start(ctx, s.ID)
	require.NoError(t, err)
	_, err = m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "첫 발언"})
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.TimerStateRunning, got.State)
	assert.Zero(t, got.ExtraTurns)
	assert.Equal(t, 10, got.RemainingSeconds)
	assert.Equal(t, "추가 발언 기회가 있습니다.", got.Notice)
	assert.Empty(t, analyzer.transcripts)

	_, err = m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "두번째 발언"})
	require.NoError(t, err)

	clock.Advance(10 * time.Second)
	got, err = m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.TimerStateFinished, got.State)
	assert.Equal(t, []string{"첫 발언 두번째 발언"}, analyzer.transcripts)
}

func TestTimerEmptyTranscriptSkipsAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	m, clock, _ := newTestTimerManager(analyzer)
	ctx := context.Background()

	s, _ := m.Create(ctx, &CreateTimerRequest{DurationSeconds: 5})
	_, err := m.Start(ctx, s.ID)
	require.NoError(t, err)
	clock.Advance(5 * time.Second)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.TimerStateFinished, got.State)
	assert.Equal(t, MsgMissingTranscript, got.Error)
	assert.Equal(t, "시간이 종료되었습니다.", got.Notice)
	assert.Empty(t, analyzer.transcripts)
}

func TestTimerAnalysisFailureRecordedOnSession(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("chat stage failed")}
	m, clock, _ := newTestTimerManager(analyzer)
	ctx := context.Background()

	s, _ := m.Create(ctx, &CreateTimerRequest{DurationSeconds: 5})
	m.Start(ctx, s.ID)
	m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "발언"})
	clock.Advance(5 * time.Second)

	got, _ := m.Get(ctx, s.ID)
	assert.Equal(t, statemachine.TimerStateFinished, got.State)
	assert.Equal(t, "chat stage failed", got.Error)
	assert.Empty(t, got.AudioURL)
}

func TestTimerPauseStopsCountdown(t *testing.T) {
	m, clock, _ := newTestTimerManager(&fakeAnalyzer{})
	ctx := context.Background()

	s, _ := m.Create(ctx, &CreateTimerRequest{DurationSeconds: 60})
	m.Start(ctx, s.ID)
	clock.Advance(20 * time.Second)

	paused, err := m.Pause(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.TimerStatePaused, paused.State)
	assert.Equal(t, 40, paused.RemainingSeconds)

	clock.Advance(5 * time.Minute)
	got, _ := m.Get(ctx, s.ID)
	assert.Equal(t, statemachine.TimerStatePaused, got.State)

	_, err = m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "일시정지 중 발언"})
	require.NoError(t, err)

	_, err = m.Start(ctx, s.ID)
	require.NoError(t, err)
	clock.Advance(39 * time.Second)
	got, _ = m.Get(ctx, s.ID)
	assert.Equal(t, statemachine.TimerStateRunning, got.State)
	clock.Advance(time.Second)
	got, _ = m.Get(ctx, s.ID)
	assert.Equal(t, statemachine.TimerStateFinished, got.State)
}

func TestTimerResetAndInvalidTransitions(t *testing.T) {
	m, clock, _ := newTestTimerManager(&fakeAnalyzer{})
	ctx := context.Background()

	s, _ := m.Create(ctx, &CreateTimerRequest{DurationSeconds: 30})

	_, err := m.Pause(ctx, s.ID)
	var invalidTransition *statemachine.InvalidStateTransitionError
	assert.True(t, errors.As(err, &invalidTransition))

	_, err = m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "시작 전"})
	assert.ErrorIs(t, err, ErrTranscriptClosed)

	m.Start(ctx, s.ID)
	m.AppendTranscript(ctx, s.ID, &AppendTranscriptRequest{Text: "발언"})
	clock.Advance(10 * time.Second)

	reset, err := m.Reset(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, statemachine.TimerStateIdle, reset.State)
	assert.Empty(t, reset.Transcript)
	assert.Equal(t, 30, reset.RemainingSeconds)

	// 重置后旧计时器不再触发
	clock.Advance(time.Minute)
	got, _ := m.Get(ctx, s.ID)
	assert.Equal(t, statemachine.TimerStateIdle, got.State)
}

func TestTimerNotFoundAndDelete(t *testing.T) {
	m, clock, _ := newTestTimerManager(&fakeAnalyzer{})
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrTimerNotFound)

	s, _ := m.Create(ctx, &CreateTimerRequest{DurationSeconds: 5})
	m.Start(ctx, s.ID)
	require.NoError(t, m.Delete(ctx, s.ID))
	clock.Advance(time.Minute)

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrTimerNotFound)
	assert.ErrorIs(t, m.Delete(ctx, s.ID), ErrTimerNotFound)
}

func TestTimerCreateValidation(t *testing.T) {
	m, _, _ := newTestTimerManager(&fakeAnalyzer{})
	_, err := m.Create(context.Background(), &CreateTimerRequest{DurationSeconds: 0})
	assert.ErrorIs(t, err, ErrValidation)
}
