package conversation

import (
	"testing"

	"trainers-ally-be/pkg/workout"
)

func stateForDay(day int) workout.State {
	s := workout.DefaultState()
	s.Day = day
	s.CurrentWorkout = workout.Workout{
		"1. Warm up": workout.Section{{Exercise: "Jog"}},
	}
	return s
}

func TestProjectRevisersInertExceptNewest(t *testing.T) {
	turns := []Turn{
		NewToolTurn("t1", ToolGeneratedWorkout, stateForDay(0)),
		NewToolTurn("t2", ToolUserMessage, stateForDay(0)),
		NewToolTurn("t3", ToolGeneratedWorkout, stateForDay(1)),
	}

	entries := Project("chat42", turns)
	if len(entries) != 3 {
		t.Fatalf("entries = %d", len(entries))
	}

	if !entries[0].Display.Inert {
		t.Error("older reviser not inert")
	}
	if entries[2].Display.Inert {
		t.Error("newest entry marked inert")
	}
	if entries[2].Display.Kind != DisplayWorkoutReviser {
		t.Errorf("Kind = %q", entries[2].Display.Kind)
	}
	if entries[2].Display.Day != 1 {
		t.Errorf("Day = %d", entries[2].Display.Day)
	}
}

func TestProjectEntryIDs(t *testing.T) {
	turns := []Turn{
		{ID: "sys", Role: RoleSystem, Content: Content{Text: "prompt"}},
		NewToolTurn("t1", ToolGeneratedWorkout, stateForDay(0)),
	}

	entries := Project("chat42", turns)
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	// IDs derive from the log index, so dropped turns leave gaps instead of
	// renumbering what's left.
	if entries[0].ID != "chat42-1" {
		t.Errorf("ID = %q", entries[0].ID)
	}
	if entries[0].Index != 1 {
		t.Errorf("Index = %d", entries[0].Index)
	}
}

func TestProjectUserMessageFeedbackTexts(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		want     string
	}{
		{"continue sentinel", workout.FeedbackContinue, continueText},
		{"empty feedback", "", reviseWithoutText},
		{"literal feedback", "More legs please", "More legs please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := workout.DefaultState()
			s.UserFeedback = tt.feedback
			entries := Project("c", []Turn{NewToolTurn("t1", ToolUserMessage, s)})
			if len(entries) != 1 {
				t.Fatalf("entries = %d", len(entries))
			}
			if entries[0].Display.Kind != DisplayUserMessage {
				t.Errorf("Kind = %q", entries[0].Display.Kind)
			}
			if entries[0].Display.Text != tt.want {
				t.Errorf("Text = %q, want %q", entries[0].Display.Text, tt.want)
			}
		})
	}
}

func TestProjectFinalWorkouts(t *testing.T) {
	s := workout.DefaultState()
	s.Done = true
	s.CreatedWorkouts = []workout.Workout{
		{"1. Warm up": workout.Section{{Exercise: "Jog"}}},
		{"1. Warm up": workout.Section{{Exercise: "Row"}}},
	}

	entries := Project("c", []Turn{NewToolTurn("t1", ToolFinalWorkouts, s)})
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	d := entries[0].Display
	if d.Kind != DisplayWorkoutFinal {
		t.Errorf("Kind = %q", d.Kind)
	}
	if len(d.Workouts) != 2 {
		t.Errorf("Workouts = %d", len(d.Workouts))
	}
}

func TestProjectSkipsUnknownToolNames(t *testing.T) {
	turns := []Turn{
		NewToolTurn("t1", "futureTool", stateForDay(0)),
		NewToolTurn("t2", ToolGeneratedWorkout, stateForDay(0)),
	}

	entries := Project("c", turns)
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Stage != ToolGeneratedWorkout {
		t.Errorf("Stage = %q", entries[0].Stage)
	}
}

func TestProjectPlainTurns(t *testing.T) {
	turns := []Turn{
		{ID: "t1", Role: RoleUser, Content: Content{Text: "hi"}},
		{ID: "t2", Role: RoleAssistant, Content: Content{Text: "hello"}},
	}

	entries := Project("c", turns)
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Display.Kind != DisplayUserMessage || entries[0].Display.Text != "hi" {
		t.Errorf("user entry = %+v", entries[0].Display)
	}
	if entries[1].Display.Kind != DisplayBotMessage || entries[1].Display.Text != "hello" {
		t.Errorf("assistant entry = %+v", entries[1].Display)
	}
}

func TestProjectCarriesInput(t *testing.T) {
	s := stateForDay(0)
	s.Input = &workout.Input{Title: "Cut plan", Phase: "2"}

	entries := Project("c", []Turn{NewToolTurn("t1", ToolGeneratedWorkout, s)})
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Input == nil || entries[0].Input.Title != "Cut plan" {
		t.Errorf("Input = %+v", entries[0].Input)
	}
	// The projected input is a copy, not an alias into the log.
	entries[0].Input.Title = "mutated"
	if s.Input.Title != "Cut plan" {
		t.Error("projection aliased the log state")
	}
}
