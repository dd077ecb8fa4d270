package conversation

import (
	"encoding/json"
	"testing"

	"trainers-ally-be/pkg/workout"
)

func TestContentWireFormat(t *testing.T) {
	// Plain turns serialize their content as a bare string.
	plain := Turn{ID: "t1", Role: RoleUser, Content: Content{Text: "looks good"}}
	raw, err := json.Marshal(plain)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if string(m["content"]) != `"looks good"` {
		t.Errorf("plain content on wire = %s", m["content"])
	}

	// Tool turns serialize as an array of tool payloads.
	state := workout.DefaultState()
	state.Day = 1
	tool := NewToolTurn("t2", ToolGeneratedWorkout, state)
	raw, err = json.Marshal(tool)
	if err != nil {
		t.Fatalf("marshal tool turn: %v", err)
	}

	var back Turn
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal tool turn: %v", err)
	}
	payload := back.ToolPayload()
	if payload == nil {
		t.Fatal("ToolPayload() = nil after round trip")
	}
	if payload.ToolName != ToolGeneratedWorkout {
		t.Errorf("ToolName = %q", payload.ToolName)
	}
	if payload.State.Day != 1 {
		t.Errorf("State.Day = %d", payload.State.Day)
	}
}

func TestToolContentNarrowsHistoricalState(t *testing.T) {
	// A log entry written by an older build: untagged state with stray keys.
	raw := []byte(`{
		"id": "t1",
		"role": "tool",
		"content": [{"toolName": "generatedWorkout", "state": {"day": 2, "obsolete_flag": true}}]
	}`)

	var turn Turn
	if err := json.Unmarshal(raw, &turn); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	payload := turn.ToolPayload()
	if payload == nil {
		t.Fatal("ToolPayload() = nil")
	}
	if payload.State.Day != 2 {
		t.Errorf("Day = %d", payload.State.Day)
	}
	if payload.State.SchemaVersion != workout.SchemaVersion {
		t.Errorf("SchemaVersion = %d, migration skipped", payload.State.SchemaVersion)
	}
	if payload.State.CurrentWorkout == nil {
		t.Error("CurrentWorkout nil after narrowing")
	}
}

func TestToolPayloadOnPlainTurn(t *testing.T) {
	turn := Turn{ID: "t1", Role: RoleUser, Content: Content{Text: "hello"}}
	if turn.ToolPayload() != nil {
		t.Error("plain turn returned a tool payload")
	}
}

func TestLastState(t *testing.T) {
	first := workout.DefaultState()
	first.Day = 0
	second := workout.DefaultState()
	second.Day = 1

	turns := []Turn{
		NewToolTurn("t1", ToolGeneratedWorkout, first),
		{ID: "t2", Role: RoleUser, Content: Content{Text: "nice"}},
		NewToolTurn("t3", ToolUserMessage, second),
	}

	state, ok := LastState(turns)
	if !ok {
		t.Fatal("LastState not found")
	}
	if state.Day != 1 {
		t.Errorf("Day = %d, want newest tool turn's state", state.Day)
	}

	if _, ok := LastState(nil); ok {
		t.Error("LastState on empty log reported ok")
	}
	if _, ok := LastState([]Turn{{ID: "x", Role: RoleUser}}); ok {
		t.Error("LastState with no tool turns reported ok")
	}
}
