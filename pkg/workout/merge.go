package workout

import (
	"fmt"
	"strconv"
	"strings"
)

// Selections maps a "<sectionLabel>-<index>" form key to the exercise the
// user picked for that slot.
type Selections map[string]string

// splitSelectionKey recovers the section label and exercise index from a
// form key. The split is on the last hyphen: the index suffix never
// contains one, so labels that themselves contain hyphens stay unambiguous.
func splitSelectionKey(key string) (label string, index int, ok bool) {
	i := strings.LastIndex(key, "-")
	if i <= 0 || i == len(key)-1 {
		return "", 0, false
	}
	index, err := strconv.Atoi(key[i+1:])
	if err != nil || index < 0 {
		return "", 0, false
	}
	return key[:i], index, true
}

// MergeAlternatives folds user-picked alternatives back into the workout.
// For each selection that names an existing slot and picks a value found in
// that slot's alternatives, the pick and the main exercise swap places: the
// old exercise takes the alternative's former index. Everything else
// (unknown section, index out of range, pick equal to the current exercise,
// pick not in the alternatives) is a no-op for that key.
//
// The workout is mutated and returned; clone first to keep the original.
// Note the swap is deliberately not idempotent: applying the same selection
// twice swaps back.
func MergeAlternatives(original Workout, selections Selections) Workout {
	for key, selected := range selections {
		label, index, ok := splitSelectionKey(key)
		if !ok {
			continue
		}
		section, ok := original[label]
		if !ok || index >= len(section) {
			continue
		}
		slot := &section[index]
		if selected == slot.Exercise {
			continue
		}
		for altIndex, alt := range slot.Alternatives {
			if alt == selected {
				slot.Alternatives[altIndex] = slot.Exercise
				slot.Exercise = selected
				break
			}
		}
	}
	return original
}

// ValidateSelections checks every selection against the closed alternative
// set the workout itself defines: a pick must be either the slot's current
// exercise or one of its alternatives, and the key must address an existing
// slot. Unlike MergeAlternatives it reports instead of skipping, so callers
// can surface bad form input before mutating anything.
func ValidateSelections(w Workout, selections Selections) error {
	for key, selected := range selections {
		label, index, ok := splitSelectionKey(key)
		if !ok {
			return fmt.Errorf("selection %q: malformed key", key)
		}
		section, ok := w[label]
		if !ok {
			return fmt.Errorf("selection %q: unknown section %q", key, label)
		}
		if index >= len(section) {
			return fmt.Errorf("selection %q: index %d out of range", key, index)
		}
		slot := section[index]
		if selected == slot.Exercise {
			continue
		}
		found := false
		for _, alt := range slot.Alternatives {
			if alt == selected {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("selection %q: %q is not an alternative", key, selected)
		}
	}
	return nil
}
