package domain

import "maps"

// SnapshotDiff represents the changes between two snapshots of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// ID is always present to identify the target.
	ID string `json:"id"`

	RawInput        *string   `json:"raw_input,omitempty"`
	CanonicalMarkup *string   `json:"canonical_markup,omitempty"`
	Notation        *Notation `json:"notation,omitempty"`
	FocusedNodeID   *string   `json:"focused_node_id,omitempty"`
	SpeechText      *string   `json:"speech_text,omitempty"`
	BrailleText     *string   `json:"braille_text,omitempty"`
	OtherBraille    *string   `json:"other_braille_text,omitempty"`
	Flags           *Flags    `json:"flags,omitempty"`

	// Preferences contains only changed or added keys.
	// Clients should merge these updates into their local copy.
	Preferences map[string]string `json:"preferences,omitempty"`
}

// Diff calculates the difference between prev and next.
// If prev is nil, it returns a diff representing the entire next snapshot (initial load).
// It returns nil when nothing changed.
func Diff(prev *Snapshot, next Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{ID: next.ID}
	if prev == nil {
		prev = &Snapshot{}
	}

	diff.RawInput = changed(prev.RawInput, next.RawInput)
	diff.CanonicalMarkup = changed(prev.CanonicalMarkup, next.CanonicalMarkup)
	diff.Notation = changed(prev.Notation, next.Notation)
	diff.FocusedNodeID = changed(prev.FocusedNodeID, next.FocusedNodeID)
	diff.SpeechText = changed(prev.SpeechText, next.SpeechText)
	diff.BrailleText = changed(prev.BrailleText, next.BrailleText)
	diff.OtherBraille = changed(prev.OtherBraille, next.OtherBraille)
	diff.Flags = changed(prev.Flags, next.Flags)
	diff.Preferences = diffPreferences(prev.Preferences, next.Preferences)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func changed[T comparable](prev, next T) *T {
	if prev == next {
		return nil
	}
	return &next
}

// diffPreferences assumes the key set never shrinks.
func diffPreferences(prev, next map[string]string) map[string]string {
	delta := make(map[string]string)
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			delta[k] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

// Apply merges the diff into snap.
func (d *SnapshotDiff) Apply(snap *Snapshot) {
	snap.ID = d.ID
	apply(&snap.RawInput, d.RawInput)
	apply(&snap.CanonicalMarkup, d.CanonicalMarkup)
	apply(&snap.Notation, d.Notation)
	apply(&snap.FocusedNodeID, d.FocusedNodeID)
	apply(&snap.SpeechText, d.SpeechText)
	apply(&snap.BrailleText, d.BrailleText)
	apply(&snap.OtherBraille, d.OtherBraille)
	apply(&snap.Flags, d.Flags)
	if len(d.Preferences) > 0 {
		if snap.Preferences == nil {
			snap.Preferences = make(map[string]string, len(d.Preferences))
		}
		maps.Copy(snap.Preferences, d.Preferences)
	}
}

func apply[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.RawInput == nil &&
		d.CanonicalMarkup == nil &&
		d.Notation == nil &&
		d.FocusedNodeID == nil &&
		d.SpeechText == nil &&
		d.BrailleText == nil &&
		d.OtherBraille == nil &&
		d.Flags == nil &&
		len(d.Preferences) == 0
}
