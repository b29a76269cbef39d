package subscriber

import (
	"context"

	"github.com/readingroom/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

type DiscussionEventSubscriber struct{}

func NewDiscussionEventSubscriber() *DiscussionEventSubscriber {
	return &DiscussionEventSubscriber{}
}

func (s *DiscussionEventSubscriber) Register(bus *eventbus.DiscussionEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.DiscussionEventRegistered, s.handleRegistered)
	bus.Subscribe(eventbus.DiscussionEventMigrated, s.handleMigrated)
}

func (s *DiscussionEventSubscriber) handleRegistered(ctx context.Context, event eventbus.DiscussionEvent) error {
	klog.V(6).Infof("讨论登记成功: discussionID=%d, book=%s", event.DiscussionID, event.BookTitle)
	return nil
}

func (s *DiscussionEventSubscriber) handleMigrated(ctx context.Context, event eventbus.DiscussionEvent) error {
	klog.V(6).Infof("旧讨论记录已迁移: legacyID=%d, discussionID=%d", event.LegacyID, event.DiscussionID)
	return nil
}
