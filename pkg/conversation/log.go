// Package conversation models the append-only log a plan-generation session
// is reconstructed from, and the projection of that log into renderable
// view entries.
package conversation

import (
	"encoding/json"
	"fmt"

	"trainers-ally-be/pkg/workout"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// Tool names carried by tool turns. Anything else is ignored by the
// projector.
const (
	ToolGeneratedWorkout = "generatedWorkout"
	ToolUserMessage      = "userMessage"
	ToolFinalWorkouts    = "finalWorkouts"
)

// ToolContent is the single payload of a tool turn: which tool produced it
// and the full session state at that point.
type ToolContent struct {
	ToolName string        `json:"toolName"`
	State    workout.State `json:"state"`
}

// UnmarshalJSON narrows the stored state through the schema migration so
// historical log entries written by older versions stay readable.
func (tc *ToolContent) UnmarshalJSON(data []byte) error {
	var raw struct {
		ToolName string          `json:"toolName"`
		State    json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tc.ToolName = raw.ToolName
	if len(raw.State) == 0 {
		tc.State = workout.DefaultState()
		return nil
	}
	state, err := workout.NarrowState(raw.State)
	if err != nil {
		return fmt.Errorf("tool content state: %w", err)
	}
	tc.State = state
	return nil
}

// Content holds either plain text (user/assistant/system turns) or the
// singleton tool payload list (tool turns). On the wire it is a bare JSON
// string or an array of tool contents, matching the stored log format.
type Content struct {
	Text  string
	Tools []ToolContent
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Tools != nil {
		return json.Marshal(c.Tools)
	}
	return json.Marshal(c.Text)
}

func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Tools = nil
		return nil
	}
	var tools []ToolContent
	if err := json.Unmarshal(data, &tools); err != nil {
		return fmt.Errorf("turn content: %w", err)
	}
	c.Tools = tools
	c.Text = ""
	return nil
}

// Turn is one immutable entry in the conversation log. The log is only ever
// appended to; each logical update produces a new log value.
type Turn struct {
	ID      string  `json:"id"`
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// NewToolTurn builds a tool turn carrying the given state.
func NewToolTurn(id, toolName string, state workout.State) Turn {
	return Turn{
		ID:   id,
		Role: RoleTool,
		Content: Content{
			Tools: []ToolContent{{ToolName: toolName, State: state}},
		},
	}
}

// ToolPayload returns the tool payload of a tool turn, or nil for plain
// turns.
func (t Turn) ToolPayload() *ToolContent {
	if t.Role != RoleTool || len(t.Content.Tools) == 0 {
		return nil
	}
	return &t.Content.Tools[0]
}

// LastState returns the session state recorded by the newest tool turn.
func LastState(turns []Turn) (workout.State, bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if payload := turns[i].ToolPayload(); payload != nil {
			return payload.State, true
		}
	}
	return workout.State{}, false
}
