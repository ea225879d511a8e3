package domain

import "strings"

// Key codes accepted for math navigation.
const (
	KeyCodeBackspace  = 8
	KeyCodeEnter      = 13
	KeyCodeSpace      = 32
	KeyCodeEnd        = 35
	KeyCodeHome       = 36
	KeyCodeArrowLeft  = 37
	KeyCodeArrowUp    = 38
	KeyCodeArrowRight = 39
	KeyCodeArrowDown  = 40
	KeyCodeDigit0     = 48
	KeyCodeDigit9     = 57
)

// KeyEvent is a raw key press delivered by a host.
type KeyEvent struct {
	// Key is the logical key name (e.g. "ArrowRight", "Escape").
	Key   string `json:"key"`
	Code  int    `json:"code"`
	Shift bool   `json:"shift,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
}

// IsEscape reports whether the event asks to leave the math.
func (k KeyEvent) IsEscape() bool {
	return k.Key == "Escape" || k.Key == "Esc"
}

// IsNavigation reports whether the key code is on the navigation allow-list.
func (k KeyEvent) IsNavigation() bool {
	switch k.Code {
	case KeyCodeEnter, KeyCodeSpace, KeyCodeHome, KeyCodeEnd, KeyCodeBackspace,
		KeyCodeArrowLeft, KeyCodeArrowUp, KeyCodeArrowRight, KeyCodeArrowDown:
		return true
	}
	return k.Code >= KeyCodeDigit0 && k.Code <= KeyCodeDigit9
}

var namedKeyCodes = map[string]int{
	"backspace":  KeyCodeBackspace,
	"enter":      KeyCodeEnter,
	"space":      KeyCodeSpace,
	" ":          KeyCodeSpace,
	"end":        KeyCodeEnd,
	"home":       KeyCodeHome,
	"arrowleft":  KeyCodeArrowLeft,
	"arrowup":    KeyCodeArrowUp,
	"arrowright": KeyCodeArrowRight,
	"arrowdown":  KeyCodeArrowDown,
	"left":       KeyCodeArrowLeft,
	"up":         KeyCodeArrowUp,
	"right":      KeyCodeArrowRight,
	"down":       KeyCodeArrowDown,
	"escape":     27,
	"esc":        27,
}

var canonicalKeyNames = map[int]string{
	KeyCodeBackspace:  "Backspace",
	KeyCodeEnter:      "Enter",
	KeyCodeSpace:      "Space",
	KeyCodeEnd:        "End",
	KeyCodeHome:       "Home",
	KeyCodeArrowLeft:  "ArrowLeft",
	KeyCodeArrowUp:    "ArrowUp",
	KeyCodeArrowRight: "ArrowRight",
	KeyCodeArrowDown:  "ArrowDown",
	27:                "Escape",
}

// KeyFromName builds an event from a logical key name such as "ArrowRight",
// "Home" or "7". Unknown names produce an event with code 0, which is never
// a navigation key.
func KeyFromName(name string) KeyEvent {
	if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
		return KeyEvent{Key: name, Code: KeyCodeDigit0 + int(name[0]-'0')}
	}
	code, ok := namedKeyCodes[strings.ToLower(name)]
	if !ok {
		return KeyEvent{Key: name}
	}
	return KeyEvent{Key: canonicalKeyNames[code], Code: code}
}

// NavOutcome tells the host whether a key press was consumed by the math.
type NavOutcome int

const (
	// Ignored means the host keeps its default behavior for the key.
	Ignored NavOutcome = iota
	// Consumed means the host must suppress its default behavior.
	Consumed
)

func (o NavOutcome) String() string {
	if o == Consumed {
		return "consumed"
	}
	return "ignored"
}

// NavResult is what the engine reports after a successful move.
type NavResult struct {
	Speech string
	NodeID string
	Offset int
}
