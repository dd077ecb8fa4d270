package workout

import (
	"testing"
)

func sampleWorkout() Workout {
	return Workout{
		"1. Warm up": Section{
			{Exercise: "Jumping Jacks", Alternatives: []string{"High Knees", "Jump Rope"}},
		},
		"2. Main workout": Section{
			{Exercise: "Bench Press", Alternatives: []string{"Dumbbell Press", "Push Ups"}},
			{Exercise: "Squats", Alternatives: []string{"Leg Press"}},
		},
	}
}

func TestSplitSelectionKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		wantLabel string
		wantIndex int
		wantOk    bool
	}{
		{
			name:      "simple key",
			key:       "1. Warm up-0",
			wantLabel: "1. Warm up",
			wantIndex: 0,
			wantOk:    true,
		},
		{
			name:      "label containing hyphens",
			key:       "3. Cool-down stretches-2",
			wantLabel: "3. Cool-down stretches",
			wantIndex: 2,
			wantOk:    true,
		},
		{
			name:   "no hyphen",
			key:    "warmup",
			wantOk: false,
		},
		{
			name:   "trailing hyphen",
			key:    "1. Warm up-",
			wantOk: false,
		},
		{
			name:   "non-numeric index",
			key:    "1. Warm up-first",
			wantOk: false,
		},
		{
			name:   "empty label",
			key:    "-1",
			wantOk: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, index, ok := splitSelectionKey(tt.key)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			if index != tt.wantIndex {
				t.Errorf("index = %d, want %d", index, tt.wantIndex)
			}
		})
	}
}

func TestMergeAlternativesSwapsInPlace(t *testing.T) {
	w := sampleWorkout()

	MergeAlternatives(w, Selections{"2. Main workout-0": "Push Ups"})

	slot := w["2. Main workout"][0]
	if slot.Exercise != "Push Ups" {
		t.Errorf("Exercise = %q, want %q", slot.Exercise, "Push Ups")
	}
	// The displaced exercise takes the alternative's former index.
	if slot.Alternatives[1] != "Bench Press" {
		t.Errorf("Alternatives[1] = %q, want %q", slot.Alternatives[1], "Bench Press")
	}
	if slot.Alternatives[0] != "Dumbbell Press" {
		t.Errorf("Alternatives[0] = %q, want %q", slot.Alternatives[0], "Dumbbell Press")
	}

	// untouched slots stay intact
	if w["2. Main workout"][1].Exercise != "Squats" {
		t.Errorf("unrelated slot changed: %q", w["2. Main workout"][1].Exercise)
	}
}

func TestMergeAlternativesNotIdempotent(t *testing.T) {
	w := sampleWorkout()
	sel := Selections{"1. Warm up-0": "High Knees"}

	MergeAlternatives(w, sel)
	if got := w["1. Warm up"][0].Exercise; got != "High Knees" {
		t.Fatalf("after first merge: %q", got)
	}

	// Selecting the old exercise (now an alternative) swaps back.
	MergeAlternatives(w, Selections{"1. Warm up-0": "Jumping Jacks"})
	if got := w["1. Warm up"][0].Exercise; got != "Jumping Jacks" {
		t.Fatalf("after swap back: %q", got)
	}
}

func TestMergeAlternativesSkipsBadSelections(t *testing.T) {
	tests := []struct {
		name string
		sel  Selections
	}{
		{"unknown section", Selections{"9. Mystery-0": "Anything"}},
		{"index out of range", Selections{"1. Warm up-5": "High Knees"}},
		{"pick equals current", Selections{"1. Warm up-0": "Jumping Jacks"}},
		{"pick not an alternative", Selections{"1. Warm up-0": "Deadlift"}},
		{"malformed key", Selections{"warmup": "High Knees"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := sampleWorkout()
			MergeAlternatives(w, tt.sel)

			if got := w["1. Warm up"][0].Exercise; got != "Jumping Jacks" {
				t.Errorf("workout mutated: %q", got)
			}
		})
	}
}

func TestValidateSelections(t *testing.T) {
	w := sampleWorkout()

	tests := []struct {
		name    string
		sel     Selections
		wantErr bool
	}{
		{"valid alternative pick", Selections{"2. Main workout-1": "Leg Press"}, false},
		{"pick equals current exercise", Selections{"1. Warm up-0": "Jumping Jacks"}, false},
		{"empty selections", Selections{}, false},
		{"malformed key", Selections{"nope": "x"}, true},
		{"unknown section", Selections{"4. Extra-0": "Leg Press"}, true},
		{"index out of range", Selections{"1. Warm up-3": "High Knees"}, true},
		{"pick outside alternative set", Selections{"1. Warm up-0": "Deadlift"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSelections(w, tt.sel)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWorkoutClone(t *testing.T) {
	w := sampleWorkout()
	c := w.Clone()

	MergeAlternatives(c, Selections{"1. Warm up-0": "High Knees"})

	if got := w["1. Warm up"][0].Exercise; got != "Jumping Jacks" {
		t.Errorf("original mutated through clone: %q", got)
	}
	if got := c["1. Warm up"][0].Exercise; got != "High Knees" {
		t.Errorf("clone not merged: %q", got)
	}
}

func TestSectionLabelsOrdered(t *testing.T) {
	w := sampleWorkout()
	w["3. Cool down"] = Section{{Exercise: "Stretching"}}

	labels := w.SectionLabels()
	want := []string{"1. Warm up", "2. Main workout", "3. Cool down"}
	if len(labels) != len(want) {
		t.Fatalf("labels = %v", labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}
