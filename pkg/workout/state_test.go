package workout

import (
	"encoding/json"
	"testing"
)

func TestApplyDeltaMergesKnownKeys(t *testing.T) {
	s := DefaultState()

	delta := map[string]json.RawMessage{
		"day":              json.RawMessage(`2`),
		"workouts_in_week": json.RawMessage(`3`),
		"current_workout":  json.RawMessage(`{"1. Warm up":[{"exercise":"Jog","alternatives":[]}]}`),
	}
	if err := s.ApplyDelta(delta); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	if s.Day != 2 {
		t.Errorf("Day = %d, want 2", s.Day)
	}
	if s.WorkoutsInWeek != 3 {
		t.Errorf("WorkoutsInWeek = %d, want 3", s.WorkoutsInWeek)
	}
	if got := s.CurrentWorkout["1. Warm up"][0].Exercise; got != "Jog" {
		t.Errorf("CurrentWorkout = %q, want Jog", got)
	}
}

func TestApplyDeltaDropsUnknownKeys(t *testing.T) {
	s := DefaultState()
	s.Day = 1

	delta := map[string]json.RawMessage{
		"brand_new_field": json.RawMessage(`"surprise"`),
		"internal_trace":  json.RawMessage(`{"nested":true}`),
	}
	if err := s.ApplyDelta(delta); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if s.Day != 1 {
		t.Errorf("Day changed to %d", s.Day)
	}
}

func TestApplyDeltaPartialUpdateKeepsRest(t *testing.T) {
	s := DefaultState()
	s.ClientInfo = "Weight: 80kg"
	s.Day = 4

	delta := map[string]json.RawMessage{"day": json.RawMessage(`5`)}
	if err := s.ApplyDelta(delta); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if s.Day != 5 {
		t.Errorf("Day = %d, want 5", s.Day)
	}
	if s.ClientInfo != "Weight: 80kg" {
		t.Errorf("ClientInfo lost: %q", s.ClientInfo)
	}
}

func TestApplyDeltaMalformedValue(t *testing.T) {
	s := DefaultState()
	delta := map[string]json.RawMessage{"day": json.RawMessage(`"not a number"`)}
	if err := s.ApplyDelta(delta); err == nil {
		t.Fatal("expected error for type-mismatched delta")
	}
}

func TestNarrowStateFiltersAndMigrates(t *testing.T) {
	// A historical payload from before the version tag, carrying keys the
	// schema no longer knows.
	raw := json.RawMessage(`{
		"day": 3,
		"phase": 2,
		"legacy_notes": "dropped",
		"user_feedback": "CONTINUE"
	}`)

	s, err := NarrowState(raw)
	if err != nil {
		t.Fatalf("NarrowState: %v", err)
	}

	if s.Day != 3 || s.Phase != 2 {
		t.Errorf("Day/Phase = %d/%d", s.Day, s.Phase)
	}
	if s.UserFeedback != FeedbackContinue {
		t.Errorf("UserFeedback = %q", s.UserFeedback)
	}
	if s.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", s.SchemaVersion, SchemaVersion)
	}
	if s.CurrentWorkout == nil || s.CreatedWorkouts == nil {
		t.Error("collections not initialized by migration")
	}
}

func TestNarrowStateIncludesInput(t *testing.T) {
	raw := json.RawMessage(`{
		"schema_version": 1,
		"input": {"title": "Bulk season", "phase": "1"}
	}`)

	s, err := NarrowState(raw)
	if err != nil {
		t.Fatalf("NarrowState: %v", err)
	}
	if s.Input == nil || s.Input.Title != "Bulk season" {
		t.Fatalf("Input = %+v", s.Input)
	}
}

func TestNarrowStateRejectsNonObject(t *testing.T) {
	if _, err := NarrowState(json.RawMessage(`[1,2,3]`)); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := DefaultState()
	s.Day = 1
	s.WorkoutsInWeek = 4
	s.CreatedWorkouts = []Workout{{"1. Warm up": Section{{Exercise: "Jog"}}}}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := NarrowState(raw)
	if err != nil {
		t.Fatalf("NarrowState: %v", err)
	}
	if got.Day != s.Day || got.WorkoutsInWeek != s.WorkoutsInWeek {
		t.Errorf("got Day/WorkoutsInWeek = %d/%d", got.Day, got.WorkoutsInWeek)
	}
	if len(got.CreatedWorkouts) != 1 {
		t.Errorf("CreatedWorkouts = %d entries", len(got.CreatedWorkouts))
	}
}
