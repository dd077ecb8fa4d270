package events

import "time"

// Event types emitted by the workout orchestration flow.
const (
	WorkoutGenerated = "WORKOUT_GENERATED"
	WorkoutRevised   = "WORKOUT_REVISED"
	WorkoutFinalized = "WORKOUT_FINALIZED"
	WorkoutFailed    = "WORKOUT_FAILED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "WORKOUT_GENERATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation services publish.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
