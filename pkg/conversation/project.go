package conversation

import (
	"fmt"

	"trainers-ally-be/pkg/workout"
)

// Display kinds. Each kind tells the client which interactive component to
// mount for a view entry.
const (
	DisplayWorkoutReviser = "workoutReviser"
	DisplayWorkoutFinal   = "workoutFinal"
	DisplayUserMessage    = "userMessage"
	DisplayBotMessage     = "botMessage"
)

// Display is the renderable payload of a view entry. Exactly the fields for
// the entry's Kind are populated.
type Display struct {
	Kind string `json:"kind"`

	// DisplayWorkoutReviser
	Day     int             `json:"day,omitempty"`
	Workout workout.Workout `json:"workout,omitempty"`
	// Inert marks replayed history: every reviser except the newest entry
	// is rendered read-only.
	Inert bool `json:"inert,omitempty"`

	// DisplayWorkoutFinal
	Workouts []workout.Workout `json:"workouts,omitempty"`

	// DisplayUserMessage / DisplayBotMessage
	Text string `json:"text,omitempty"`
}

// ViewEntry is one renderable, addressable element of the projected view.
// Entries are derived, never stored.
type ViewEntry struct {
	ID      string         `json:"id"`
	Index   int            `json:"index"`
	Stage   string         `json:"stage"`
	Input   *workout.Input `json:"input,omitempty"`
	Display *Display       `json:"display"`
}

// Canned texts echoed for the reserved feedback values.
const (
	continueText      = "Continue with the workout for the next day."
	reviseWithoutText = "Revise the workout without any feedback."
)

// FeedbackText resolves the user_feedback field into the text the view
// echoes back.
func FeedbackText(feedback string) string {
	switch feedback {
	case workout.FeedbackContinue:
		return continueText
	case "":
		return reviseWithoutText
	default:
		return feedback
	}
}

// Project maps the conversation log into the ordered view entries a client
// renders. It is a pure function of its arguments: system turns are
// dropped, tool turns with an unrecognized tool name emit nothing, and
// every reviser entry except the newest is marked inert.
func Project(chatID string, turns []Turn) []ViewEntry {
	entries := make([]ViewEntry, 0, len(turns))
	last := len(turns) - 1
	for index, turn := range turns {
		if turn.Role == RoleSystem {
			continue
		}

		entry := ViewEntry{
			ID:    fmt.Sprintf("%s-%d", chatID, index),
			Index: index,
		}

		if payload := turn.ToolPayload(); payload != nil {
			entry.Stage = payload.ToolName
			if payload.State.Input != nil {
				input := *payload.State.Input
				entry.Input = &input
			}
			switch payload.ToolName {
			case ToolGeneratedWorkout:
				entry.Display = &Display{
					Kind:    DisplayWorkoutReviser,
					Day:     payload.State.Day,
					Workout: payload.State.CurrentWorkout,
					Inert:   index < last,
				}
			case ToolFinalWorkouts:
				entry.Display = &Display{
					Kind:     DisplayWorkoutFinal,
					Workouts: payload.State.CreatedWorkouts,
				}
			case ToolUserMessage:
				entry.Display = &Display{
					Kind: DisplayUserMessage,
					Text: FeedbackText(payload.State.UserFeedback),
				}
			default:
				continue
			}
			entries = append(entries, entry)
			continue
		}

		switch turn.Role {
		case RoleUser:
			entry.Stage = RoleUser
			entry.Display = &Display{Kind: DisplayUserMessage, Text: turn.Content.Text}
		case RoleAssistant:
			entry.Stage = RoleAssistant
			entry.Display = &Display{Kind: DisplayBotMessage, Text: turn.Content.Text}
		default:
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
