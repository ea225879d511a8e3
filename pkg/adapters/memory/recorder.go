package memory

import (
	"context"
	"sync"
)

// Display keeps what a headless host would have shown and spoken. It
// implements both ports.Typesetter and ports.Effects.
type Display struct {
	mu          sync.Mutex
	markup      string
	message     string
	spoken      []string
	highlighted string
	cleared     []string
}

// DisplayState is a copy of everything a Display has recorded.
type DisplayState struct {
	Markup      string   `json:"markup,omitempty"`
	Message     string   `json:"message,omitempty"`
	Spoken      []string `json:"spoken,omitempty"`
	Highlighted string   `json:"highlighted,omitempty"`
	Cleared     []string `json:"cleared,omitempty"`
}

// NewDisplay creates an empty Display.
func NewDisplay() *Display {
	return &Display{}
}

func (d *Display) Typeset(_ context.Context, markup string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.markup = markup
	d.message = ""
	d.highlighted = ""
	return nil
}

func (d *Display) ShowMessage(_ context.Context, msg string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.message = msg
	return nil
}

func (d *Display) Speak(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spoken = append(d.spoken, text)
}

func (d *Display) Highlight(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.highlighted = id
}

func (d *Display) ClearFocus(target string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cleared = append(d.cleared, target)
}

// State returns a copy of the recorded output.
func (d *Display) State() DisplayState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DisplayState{
		Markup:      d.markup,
		Message:     d.message,
		Spoken:      append([]string(nil), d.spoken...),
		Highlighted: d.highlighted,
		Cleared:     append([]string(nil), d.cleared...),
	}
}

// Drain returns the recorded speech and forgets it.
func (d *Display) Drain() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.spoken
	d.spoken = nil
	return out
}
