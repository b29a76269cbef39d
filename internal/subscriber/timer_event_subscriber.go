package subscriber

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/readingroom/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

var timerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "timer_events_total",
	Help: "Discussion timer lifecycle events.",
}, []string{"type"})

type TimerEventSubscriber struct{}

func NewTimerEventSubscriber() *TimerEventSubscriber {
	return &TimerEventSubscriber{}
}

func (s *TimerEventSubscriber) Register(bus *eventbus.TimerEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.TimerEventStarted, s.handleStarted)
	bus.Subscribe(eventbus.TimerEventExpired, s.handleExpired)
	bus.Subscribe(eventbus.TimerEventAnalyzed, s.handleAnalyzed)
}

func (s *TimerEventSubscriber) handleStarted(ctx context.Context, event eventbus.TimerEvent) error {
	timerEvents.WithLabelValues(string(event.Type)).Inc()
	klog.V(6).Infof("计时开始: session=%s, name=%s", event.SessionID, event.CharacterName)
	return nil
}

// handleExpired 对应原先前端的“时间结束”提示
func (s *TimerEventSubscriber) handleExpired(ctx context.Context, event eventbus.TimerEvent) error {
	timerEvents.WithLabelValues(string(event.Type)).Inc()
	klog.V(6).Infof("计时结束: session=%s, name=%s, state=%s, transcript=%d", event.SessionID, event.CharacterName, event.State, event.TranscriptLen)
	return nil
}

func (s *TimerEventSubscriber) handleAnalyzed(ctx context.Context, event eventbus.TimerEvent) error {
	timerEvents.WithLabelValues(string(event.Type)).Inc()
	if event.Error != "" {
		klog.Warningf("讨论记录分析失败: session=%s, err=%s", event.SessionID, event.Error)
		return nil
	}
	klog.V(6).Infof("讨论记录分析完成: session=%s", event.SessionID)
	return nil
}
