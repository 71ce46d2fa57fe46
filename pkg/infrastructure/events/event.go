package events

import (
	"time"
)

// Event is one entry in an optimization run log
type Event interface {
	Type() string
	StreamID() string
	Detail() string
	Timestamp() time.Time
	Version() int
}

// EventStore records and replays run events. The engine itself owns no
// cross-run state; the store exists so front-ends can show what a run did.
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string) ([]Event, error)
	ReadAllEvents() ([]Event, error)
}

// BaseEvent is the standard Event implementation
type BaseEvent struct {
	EventType    string
	Stream       string
	EventDetail  string
	EventTime    time.Time
	EventVersion int
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Detail() string {
	return e.EventDetail
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// NewEvent creates a run event stamped with the current time
func NewEvent(eventType, streamID, detail string) Event {
	return BaseEvent{
		EventType:   eventType,
		Stream:      streamID,
		EventDetail: detail,
		EventTime:   time.Now(),
	}
}
