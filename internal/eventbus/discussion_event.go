package eventbus

type DiscussionEventType string

const (
	DiscussionEventRegistered DiscussionEventType = "DiscussionRegistered"
	DiscussionEventMigrated   DiscussionEventType = "DiscussionMigrated"
)

type DiscussionEvent struct {
	Type         DiscussionEventType
	DiscussionID uint
	BookTitle    string
	LegacyID     uint
}

type DiscussionEventHandler = Handler[DiscussionEvent]
type DiscussionEventBus = Bus[DiscussionEventType, DiscussionEvent]

func NewDiscussionEventBus() *DiscussionEventBus {
	return NewBus[DiscussionEventType, DiscussionEvent]()
}
