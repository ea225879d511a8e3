package domain

import (
	"fmt"
	"slices"
	"strings"
)

// PreferenceKey names one user-editable preference.
type PreferenceKey string

const (
	PrefNavigationMode      PreferenceKey = "navigation_mode"
	PrefNavigationVerbosity PreferenceKey = "navigation_verbosity"
	PrefSpeechStyle         PreferenceKey = "speech_style"
	PrefSpeechVerbosity     PreferenceKey = "speech_verbosity"
	PrefTextToSpeech        PreferenceKey = "text_to_speech"
	PrefBrailleCode         PreferenceKey = "braille_code"
	PrefBrailleDisplay      PreferenceKey = "braille_display"
	PrefBrailleNavHighlight PreferenceKey = "braille_nav_highlight"
)

// Values the controller branches on. Every other value is only passed through.
const (
	TextToSpeechOff     = "Off"
	TextToSpeechSSML    = "SSML"
	BrailleDisplayDots  = "Dots"
	BrailleDisplayASCII = "ASCIIBraille"
)

const (
	preferenceSeparator  = ";"
	preferenceAssignment = "="
	engineTTSNone        = "None"
)

// Artifact is a bit set of derived artifacts a change can invalidate.
type Artifact uint8

const (
	ArtifactSpeech Artifact = 1 << iota
	ArtifactBraille

	ArtifactNone Artifact = 0
)

type preferenceSpec struct {
	key        PreferenceKey
	values     []string
	def        string
	engineName string // empty: the engine never sees this preference
	affects    Artifact
}

// preferenceTable is the fixed key set in serialization order.
var preferenceTable = []preferenceSpec{
	{PrefNavigationMode, []string{"Enhanced", "Simple", "Character"}, "Enhanced", "NavMode", ArtifactNone},
	{PrefNavigationVerbosity, []string{"Terse", "Medium", "Verbose"}, "Medium", "NavVerbosity", ArtifactNone},
	{PrefSpeechStyle, []string{"ClearSpeak", "SimpleSpeak"}, "ClearSpeak", "SpeechStyle", ArtifactSpeech},
	{PrefSpeechVerbosity, []string{"Terse", "Medium", "Verbose"}, "Medium", "Verbosity", ArtifactSpeech},
	{PrefTextToSpeech, []string{TextToSpeechOff, "Plain", TextToSpeechSSML}, TextToSpeechOff, "TTS", ArtifactSpeech},
	{PrefBrailleCode, []string{"Nemeth", "UEB"}, "Nemeth", "BrailleCode", ArtifactBraille},
	{PrefBrailleDisplay, []string{BrailleDisplayDots, BrailleDisplayASCII}, BrailleDisplayDots, "", ArtifactBraille},
	{PrefBrailleNavHighlight, []string{"Off", "FirstChar", "EndPoints", "All"}, "EndPoints", "BrailleNavHighlight", ArtifactBraille},
}

func lookupPreference(key PreferenceKey) (preferenceSpec, bool) {
	for _, entry := range preferenceTable {
		if entry.key == key {
			return entry, true
		}
	}
	return preferenceSpec{}, false
}

// PreferenceKeys returns the fixed key set in serialization order.
func PreferenceKeys() []PreferenceKey {
	keys := make([]PreferenceKey, len(preferenceTable))
	for i, entry := range preferenceTable {
		keys[i] = entry.key
	}
	return keys
}

// PreferenceValues returns the closed domain of a key, or nil if the key is unknown.
func PreferenceValues(key PreferenceKey) []string {
	entry, ok := lookupPreference(key)
	if !ok {
		return nil
	}
	return slices.Clone(entry.values)
}

// IsPreferenceKey reports whether key belongs to the fixed set.
func IsPreferenceKey(key PreferenceKey) bool {
	_, ok := lookupPreference(key)
	return ok
}

// Affects reports which artifacts go stale when key changes.
func (k PreferenceKey) Affects() Artifact {
	entry, _ := lookupPreference(k)
	return entry.affects
}

// EngineName is the name the accessibility engine knows the preference by.
// Preferences the engine never sees return "".
func (k PreferenceKey) EngineName() string {
	entry, _ := lookupPreference(k)
	return entry.engineName
}

// EngineValue translates a preference value into the engine's vocabulary.
func (k PreferenceKey) EngineValue(value string) string {
	if k != PrefTextToSpeech {
		return value
	}
	if value == TextToSpeechSSML {
		return TextToSpeechSSML
	}
	return engineTTSNone
}

// OtherBrailleCode returns the braille code that code is not.
func OtherBrailleCode(code string) string {
	if code == "UEB" {
		return "Nemeth"
	}
	return "UEB"
}

// Preferences is the in-memory preference mapping.
// The zero value is not usable; create it with DefaultPreferences.
type Preferences struct {
	values map[PreferenceKey]string
}

// DefaultPreferences returns a mapping with every key set to its default.
func DefaultPreferences() Preferences {
	p := Preferences{values: make(map[PreferenceKey]string, len(preferenceTable))}
	for _, entry := range preferenceTable {
		p.values[entry.key] = entry.def
	}
	return p
}

// Clone returns an independent copy.
func (p Preferences) Clone() Preferences {
	out := Preferences{values: make(map[PreferenceKey]string, len(p.values))}
	for k, v := range p.values {
		out.values[k] = v
	}
	return out
}

// Get returns the value of key, or "" for an unknown key.
func (p Preferences) Get(key PreferenceKey) string {
	return p.values[key]
}

// Validate checks key and value against the fixed table without mutating anything.
func (p Preferences) Validate(key PreferenceKey, value string) error {
	entry, ok := lookupPreference(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreference, key)
	}
	if !slices.Contains(entry.values, value) {
		return fmt.Errorf("%w: %s=%q (want one of %s)", ErrInvalidPreferenceValue, key, value, strings.Join(entry.values, ", "))
	}
	return nil
}

// Set stores value under key and reports whether the stored value changed.
// An unknown key is a no-op; an out-of-domain value keeps the prior value.
func (p Preferences) Set(key PreferenceKey, value string) (bool, error) {
	if err := p.Validate(key, value); err != nil {
		return false, err
	}
	if p.values[key] == value {
		return false, nil
	}
	p.values[key] = value
	return true, nil
}

// Map returns a copy keyed by the plain key strings.
func (p Preferences) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[string(k)] = v
	}
	return out
}

// Serialize renders the persisted form: key=value; for every key, in table order.
func (p Preferences) Serialize() string {
	var b strings.Builder
	for _, entry := range preferenceTable {
		b.WriteString(string(entry.key))
		b.WriteString(preferenceAssignment)
		b.WriteString(p.values[entry.key])
		b.WriteString(preferenceSeparator)
	}
	return b.String()
}

// SkippedEntry describes a persisted entry that Load ignored.
type SkippedEntry struct {
	Entry  string
	Reason error
}

// Load overlays entries from a persisted blob. Malformed entries, unknown keys
// and out-of-domain values are skipped individually and returned to the caller.
func (p Preferences) Load(blob string) []SkippedEntry {
	var skipped []SkippedEntry
	for _, entry := range strings.Split(blob, preferenceSeparator) {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		key, value, ok := strings.Cut(entry, preferenceAssignment)
		if !ok {
			skipped = append(skipped, SkippedEntry{Entry: entry, Reason: ErrMalformedEntry})
			continue
		}
		if _, err := p.Set(PreferenceKey(strings.TrimSpace(key)), strings.TrimSpace(value)); err != nil {
			skipped = append(skipped, SkippedEntry{Entry: entry, Reason: err})
		}
	}
	return skipped
}

// ParsePreferences builds defaults overlaid by blob.
func ParsePreferences(blob string) (Preferences, []SkippedEntry) {
	p := DefaultPreferences()
	skipped := p.Load(blob)
	return p, skipped
}
