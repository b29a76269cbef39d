package eventbus

type TimerEventType string

const (
	TimerEventStarted  TimerEventType = "TimerStarted"
	TimerEventExpired  TimerEventType = "TimerExpired"
	TimerEventAnalyzed TimerEventType = "TimerAnalyzed"
)

type TimerEvent struct {
	Type          TimerEventType
	SessionID     string
	CharacterName string
	State         string
	TranscriptLen int
	Error         string
}

type TimerEventHandler = Handler[TimerEvent]
type TimerEventBus = Bus[TimerEventType, TimerEvent]

func NewTimerEventBus() *TimerEventBus {
	return NewBus[TimerEventType, TimerEvent]()
}
