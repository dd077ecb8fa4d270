package dto

import (
	"trainers-ally-be/pkg/conversation"
	"trainers-ally-be/pkg/workout"

	"github.com/google/uuid"
)

// GenerateWorkoutRequest starts a new plan-generation session. ChatId is
// optional: when present the chat id (and thus the remote thread id) is
// reused, otherwise a fresh one is minted.
type GenerateWorkoutRequest struct {
	ChatId *uuid.UUID    `json:"chat_id,omitempty"`
	Input  workout.Input `json:"input" validate:"required"`
}

// AdvanceWorkoutRequest continues an existing session: revise the current
// day (empty feedback or feedback text) or move on to the next one (the
// CONTINUE sentinel). Selections carry the user's alternative-exercise
// picks and are folded into the outgoing workout before the agent resumes;
// CurrentWorkout, when present, replaces the workout wholesale instead.
type AdvanceWorkoutRequest struct {
	ChatId         uuid.UUID          `json:"chat_id" validate:"required"`
	UserFeedback   string             `json:"user_feedback" validate:"max=500"`
	Selections     workout.Selections `json:"selections,omitempty"`
	CurrentWorkout workout.Workout    `json:"current_workout,omitempty"`
}

// ProgressDTO is the snapshot of a progress channel a client can render or
// poll.
type ProgressDTO struct {
	ThreadId string `json:"thread_id"`
	Text     string `json:"text"`
	Sealed   bool   `json:"sealed"`
	Error    string `json:"error,omitempty"`
}

// GenerateWorkoutResponse returns the addressable progress handle plus the
// view entry for the chat feed.
type GenerateWorkoutResponse struct {
	ChatId   uuid.UUID               `json:"chat_id"`
	Entry    *conversation.ViewEntry `json:"entry"`
	Progress ProgressDTO             `json:"progress"`
}

// WorkoutEventMessage is the in-process bus payload emitted after each
// completed orchestrator turn. The consumer fans it out to live websocket
// clients and, on finalization, to the mailer.
type WorkoutEventMessage struct {
	Type           string    `json:"type"`
	ChatId         uuid.UUID `json:"chat_id"`
	UserId         uuid.UUID `json:"user_id"`
	Email          string    `json:"email,omitempty"`
	Day            int       `json:"day"`
	WorkoutsInWeek int       `json:"workouts_in_week"`
	Done           bool      `json:"done"`
}
