// Package testutils provides scripted collaborators for controller tests.
package testutils

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/mathview/pkg/domain"
)

// Call records one engine invocation.
type Call struct {
	Method string
	Args   []string
}

// FakeEngine is a scriptable ports.AccessibilityEngine that records every call.
// Unset hooks fall back to simple deterministic behavior.
type FakeEngine struct {
	Calls []Call

	ConvertFn  func(text string, notation domain.Notation) (string, error)
	RegisterFn func(markup string) (string, error)
	SpeechFn   func(focusID string) (string, error)
	BrailleFn  func(focusID string) (string, error)
	NavigateFn func(key domain.KeyEvent) (domain.NavResult, error)

	// Prefs holds engine preferences by engine name.
	Prefs map[string]string
	// RejectPrefs lists engine names whose SetPreference fails.
	RejectPrefs map[string]bool
	// RuleFiles holds overridden rule files by path.
	RuleFiles map[string]string
	// RuleErr makes OverrideRuleFile fail.
	RuleErr error
}

// NewFakeEngine creates an engine with empty preference and rule maps.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Prefs:       make(map[string]string),
		RejectPrefs: make(map[string]bool),
		RuleFiles:   make(map[string]string),
	}
}

func (f *FakeEngine) record(method string, args ...string) {
	f.Calls = append(f.Calls, Call{Method: method, Args: args})
}

// CallsTo returns the recorded calls of one method, in order.
func (f *FakeEngine) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Methods returns the recorded method names, in order.
func (f *FakeEngine) Methods() []string {
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.Method
	}
	return out
}

// Called reports whether method was invoked at least once.
func (f *FakeEngine) Called(method string) bool {
	return slices.ContainsFunc(f.Calls, func(c Call) bool { return c.Method == method })
}

// ResetCalls forgets the recorded calls.
func (f *FakeEngine) ResetCalls() {
	f.Calls = nil
}

func (f *FakeEngine) ConvertNotation(_ context.Context, text string, notation domain.Notation) (string, error) {
	f.record("ConvertNotation", text, string(notation))
	if f.ConvertFn != nil {
		return f.ConvertFn(text, notation)
	}
	return "<math><mi>" + text + "</mi></math>", nil
}

func (f *FakeEngine) RegisterMarkup(_ context.Context, markup string) (string, error) {
	f.record("RegisterMarkup", markup)
	if f.RegisterFn != nil {
		return f.RegisterFn(markup)
	}
	return markup + "\n", nil
}

func (f *FakeEngine) SetPreference(_ context.Context, name, value string) error {
	f.record("SetPreference", name, value)
	if f.RejectPrefs[name] {
		return fmt.Errorf("engine rejected %s", name)
	}
	f.Prefs[name] = value
	return nil
}

func (f *FakeEngine) GetPreference(_ context.Context, name string) (string, error) {
	f.record("GetPreference", name)
	v, ok := f.Prefs[name]
	if !ok {
		return "", errors.New("unset preference " + name)
	}
	return v, nil
}

func (f *FakeEngine) SpokenText(_ context.Context, focusID string) (string, error) {
	f.record("SpokenText", focusID)
	if f.SpeechFn != nil {
		return f.SpeechFn(focusID)
	}
	return "speech(" + focusID + ")/" + f.Prefs["SpeechStyle"], nil
}

func (f *FakeEngine) Braille(_ context.Context, focusID string) (string, error) {
	f.record("Braille", focusID)
	if f.BrailleFn != nil {
		return f.BrailleFn(focusID)
	}
	return "⠁⠃", nil
}

func (f *FakeEngine) Navigate(_ context.Context, key domain.KeyEvent) (domain.NavResult, error) {
	f.record("Navigate", key.Key, fmt.Sprint(key.Code), fmt.Sprint(key.Shift, key.Ctrl, key.Alt, key.Meta))
	if f.NavigateFn != nil {
		return f.NavigateFn(key)
	}
	return domain.NavResult{}, errors.New("no navigation scripted")
}

func (f *FakeEngine) OverrideRuleFile(_ context.Context, path, contents string) error {
	f.record("OverrideRuleFile", path, contents)
	if f.RuleErr != nil {
		return f.RuleErr
	}
	f.RuleFiles[path] = contents
	return nil
}

func (f *FakeEngine) Version() string { return "0.0.0-fake" }

// RecordingEffects captures side effects.
type RecordingEffects struct {
	Spoken      []string
	Highlighted []string
	Cleared     []string
}

func (r *RecordingEffects) Speak(text string)        { r.Spoken = append(r.Spoken, text) }
func (r *RecordingEffects) Highlight(id string)      { r.Highlighted = append(r.Highlighted, id) }
func (r *RecordingEffects) ClearFocus(target string) { r.Cleared = append(r.Cleared, target) }

// RecordingTypesetter captures what would be displayed. Setting Fail makes
// every call return it.
type RecordingTypesetter struct {
	Rendered []string
	Messages []string
	Fail     error
}

func (r *RecordingTypesetter) Typeset(_ context.Context, markup string) error {
	if r.Fail != nil {
		return r.Fail
	}
	r.Rendered = append(r.Rendered, markup)
	return nil
}

func (r *RecordingTypesetter) ShowMessage(_ context.Context, msg string) error {
	if r.Fail != nil {
		return r.Fail
	}
	r.Messages = append(r.Messages, msg)
	return nil
}
