package subscriber

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/readingroom/backend/internal/eventbus"
)

func TestTimerEventSubscriberCountsEvents(t *testing.T) {
	bus := eventbus.NewTimerEventBus()
	NewTimerEventSubscriber().Register(bus)

	before := testutil.ToFloat64(timerEvents.WithLabelValues(string(eventbus.TimerEventExpired)))
	if err := bus.Publish(context.Background(), eventbus.TimerEventExpired, eventbus.TimerEvent{
		Type:      eventbus.TimerEventExpired,
		SessionID: "s1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := testutil.ToFloat64(timerEvents.WithLabelValues(string(eventbus.TimerEventExpired)))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestRegisterNilBus(t *testing.T) {
	NewTimerEventSubscriber().Register(nil)
	NewDiscussionEventSubscriber().Register(nil)
}
