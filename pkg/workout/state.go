package workout

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Exercise is a single prescribed exercise plus the interchangeable
// alternatives the agent proposed for it. The main exercise is never
// duplicated inside its own alternatives list.
type Exercise struct {
	Exercise     string   `json:"exercise"`
	Alternatives []string `json:"alternatives"`
}

// Section is the ordered list of exercises under one section label.
type Section []Exercise

// Workout maps a section label (e.g. "1. Warm up") to its exercises.
// Labels are opaque ordered-sortable strings, not a closed enum: the agent
// is free to introduce new sections and we only rely on lexical ordering
// of the ordinal prefix.
type Workout map[string]Section

// SectionLabels returns the workout's section labels in display order.
func (w Workout) SectionLabels() []string {
	labels := make([]string, 0, len(w))
	for label := range w {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Clone returns a deep copy. MergeAlternatives mutates in place, so callers
// that need to keep the original intact clone first.
func (w Workout) Clone() Workout {
	if w == nil {
		return nil
	}
	out := make(Workout, len(w))
	for label, section := range w {
		cloned := make(Section, len(section))
		for i, ex := range section {
			alts := make([]string, len(ex.Alternatives))
			copy(alts, ex.Alternatives)
			cloned[i] = Exercise{Exercise: ex.Exercise, Alternatives: alts}
		}
		out[label] = cloned
	}
	return out
}

// Input holds the user-supplied session parameters. Bounds mirror the
// client form: enumerated phase/workoutsInWeek/sex, length-bounded free text.
type Input struct {
	Title             string `json:"title" validate:"required,max=100"`
	Phase             string `json:"phase" validate:"required,oneof=1 2 3"`
	WorkoutsInWeek    string `json:"workoutsInWeek" validate:"required,oneof=1 2 3 4 5 6 7"`
	WorkoutLength     string `json:"workoutLength" validate:"required,max=50"`
	GymEquipment      string `json:"gymEquipment" validate:"required,max=200"`
	PreferredWorkouts string `json:"preferredWorkouts" validate:"required,max=200"`
	Weight            string `json:"weight" validate:"required,max=50"`
	Height            string `json:"height" validate:"required,max=50"`
	Sex               string `json:"sex" validate:"required,oneof=male female"`
	Goals             string `json:"goals" validate:"required,max=200"`
}

// FeedbackContinue is the reserved user_feedback value meaning "advance to
// the next day without revision". Any other non-empty value is literal
// feedback text; empty means "revise silently".
const FeedbackContinue = "CONTINUE"

// SchemaVersion tags persisted states so the narrowing of historical
// payloads is an explicit migration step instead of silent key dropping.
const SchemaVersion = 1

// State is the canonical record of one plan-generation session. Field names
// match the remote graph's state schema; the agent streams partial updates
// against these keys.
type State struct {
	SchemaVersion   int       `json:"schema_version"`
	Day             int       `json:"day"`
	Phase           int       `json:"phase"`
	WorkoutsInWeek  int       `json:"workouts_in_week"`
	WorkoutLength   string    `json:"workout_length"`
	ExtraCriteria   string    `json:"extra_criteria"`
	CurrentWorkout  Workout   `json:"current_workout"`
	CreatedWorkouts []Workout `json:"created_workouts"`
	ClientInfo      string    `json:"client_info"`
	UserFeedback    string    `json:"user_feedback"`
	Done            bool      `json:"done"`
	ThreadID        string    `json:"thread_id"`
	Input           *Input    `json:"input,omitempty"`
}

// DefaultState returns the zero session record.
func DefaultState() State {
	return State{
		SchemaVersion:   SchemaVersion,
		CurrentWorkout:  Workout{},
		CreatedWorkouts: []Workout{},
	}
}

// stateKeys is the closed set of keys a delta or historical payload may
// populate. Anything else is dropped (forward/backward compatibility).
var stateKeys = func() map[string]struct{} {
	raw, err := json.Marshal(DefaultState())
	if err != nil {
		panic(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	keys := make(map[string]struct{}, len(m)+1)
	for k := range m {
		keys[k] = struct{}{}
	}
	// omitempty hides it from the marshalled default
	keys["input"] = struct{}{}
	return keys
}()

// ApplyDelta shallow-merges a remote output payload into the state,
// keeping only keys that exist on the state schema. Unknown keys from the
// agent are ignored on purpose.
func (s *State) ApplyDelta(output map[string]json.RawMessage) error {
	if len(output) == 0 {
		return nil
	}
	filtered := make(map[string]json.RawMessage, len(output))
	for k, v := range output {
		if _, ok := stateKeys[k]; ok {
			filtered[k] = v
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	// The remote sends whole values for these keys. Reset them first:
	// json.Unmarshal merges into existing maps and reuses slice elements,
	// which would leak the new content into aliased earlier snapshots.
	if _, ok := filtered["current_workout"]; ok {
		s.CurrentWorkout = nil
	}
	if _, ok := filtered["created_workouts"]; ok {
		s.CreatedWorkouts = nil
	}
	raw, err := json.Marshal(filtered)
	if err != nil {
		return fmt.Errorf("marshal delta: %w", err)
	}
	if err := json.Unmarshal(raw, s); err != nil {
		return fmt.Errorf("apply delta: %w", err)
	}
	return nil
}

// NarrowState rebuilds a State from an arbitrarily-shaped historical
// payload: defaults first, then only recognized keys overlaid, then the
// schema migration. This is how prior log entries survive schema drift.
func NarrowState(raw json.RawMessage) (State, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return State{}, fmt.Errorf("narrow state: %w", err)
	}
	s := DefaultState()
	// Payloads recorded before the version tag existed carry no
	// schema_version key at all.
	if _, tagged := m["schema_version"]; !tagged {
		s.SchemaVersion = 0
	}
	if err := s.ApplyDelta(m); err != nil {
		return State{}, err
	}
	return migrateState(s), nil
}

// migrateState upgrades a state loaded from an older schema version.
// Version 0 payloads predate the version tag itself.
func migrateState(s State) State {
	if s.SchemaVersion >= SchemaVersion {
		return s
	}
	if s.CurrentWorkout == nil {
		s.CurrentWorkout = Workout{}
	}
	if s.CreatedWorkouts == nil {
		s.CreatedWorkouts = []Workout{}
	}
	s.SchemaVersion = SchemaVersion
	return s
}
