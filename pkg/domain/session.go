package domain

// Notation identifies the input syntax an expression was written in.
type Notation string

const (
	NotationTeX       Notation = "TeX"
	NotationASCIIMath Notation = "ASCIIMath"
	NotationMathML    Notation = "MathML"
)

// Flags tracks which derived artifacts must be recomputed before the next read.
type Flags struct {
	// SpeechStale is set when SpeechText no longer reflects markup, focus and speech preferences.
	SpeechStale bool `json:"speech_stale"`
	// BrailleStale is set when BrailleText no longer reflects markup, focus and braille preferences.
	BrailleStale bool `json:"braille_stale"`
	// SpeakNow is edge-triggered: it is consumed by exactly one regeneration pass.
	SpeakNow bool `json:"speak_now"`
}

// Mark sets the stale flag of every artifact in a.
func (f *Flags) Mark(a Artifact) {
	if a&ArtifactSpeech != 0 {
		f.SpeechStale = true
	}
	if a&ArtifactBraille != 0 {
		f.BrailleStale = true
	}
}

// Clean reports whether no artifact is stale.
func (f Flags) Clean() bool {
	return !f.SpeechStale && !f.BrailleStale
}

// Session is the root entity owned by one controller.
type Session struct {
	// ID identifies the running instance in logs and events.
	ID string
	// RawInput is the last submitted, unparsed user text.
	RawInput string
	// CanonicalMarkup is the id-annotated MathML of the current expression; empty until
	// something was recognized.
	CanonicalMarkup string
	// Notation records how CanonicalMarkup was obtained.
	Notation Notation
	// FocusedNodeID is the navigation cursor; empty means the whole expression.
	FocusedNodeID string
	SpeechText    string
	BrailleText   string
	// OtherBrailleText is the braille of the code not selected by braille_code.
	// It stays empty unless the controller renders both codes.
	OtherBrailleText string
	Flags            Flags
	Preferences      Preferences
}

// NewSession creates a session with default preferences. Both artifacts start
// stale because nothing has been computed yet.
func NewSession(id string) *Session {
	return &Session{
		ID:          id,
		Flags:       Flags{SpeechStale: true, BrailleStale: true},
		Preferences: DefaultPreferences(),
	}
}

// HasMarkup reports whether a valid expression has been entered.
func (s *Session) HasMarkup() bool {
	return s.CanonicalMarkup != ""
}

// Snapshot is a read-only copy of a session, safe to hand to hosts.
type Snapshot struct {
	ID              string            `json:"id"`
	RawInput        string            `json:"raw_input"`
	CanonicalMarkup string            `json:"canonical_markup,omitempty"`
	Notation        Notation          `json:"notation,omitempty"`
	FocusedNodeID   string            `json:"focused_node_id,omitempty"`
	SpeechText      string            `json:"speech_text"`
	BrailleText     string            `json:"braille_text"`
	OtherBraille    string            `json:"other_braille_text,omitempty"`
	Flags           Flags             `json:"flags"`
	Preferences     map[string]string `json:"preferences"`
}

// Snapshot copies the session.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:              s.ID,
		RawInput:        s.RawInput,
		CanonicalMarkup: s.CanonicalMarkup,
		Notation:        s.Notation,
		FocusedNodeID:   s.FocusedNodeID,
		SpeechText:      s.SpeechText,
		BrailleText:     s.BrailleText,
		OtherBraille:    s.OtherBrailleText,
		Flags:           s.Flags,
		Preferences:     s.Preferences.Map(),
	}
}
