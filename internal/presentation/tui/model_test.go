package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
)

func newModel(t *testing.T, initial string) (Model, *mathview.Controller) {
	t.Helper()
	display := memory.NewDisplay()
	ctrl := mathview.New(
		mathview.WithSessionID("tui"),
		mathview.WithTypesetter(display),
		mathview.WithEffects(display),
	)
	ctrl.Start(context.Background())
	return NewModel(context.Background(), ctrl, display, initial), ctrl
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_InitialInputEntersMathMode(t *testing.T) {
	m, ctrl := newModel(t, "$x+y$")
	require.NotNil(t, m.Init())

	m = send(t, m, submitMsg{text: "$x+y$"})
	assert.Equal(t, modeMath, m.mode)
	assert.Equal(t, "x plus y", ctrl.Snapshot().SpeechText)
	assert.Contains(t, m.View(), "x plus y")
	assert.Contains(t, m.View(), "MathView (using engine v")
}

func TestModel_Navigation(t *testing.T) {
	m, ctrl := newModel(t, "")
	m = send(t, m, submitMsg{text: "$x+y$"})

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "id-2", ctrl.Snapshot().FocusedNodeID)
	assert.Equal(t, "plus", ctrl.Snapshot().SpeechText)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnd}, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "Error in navigation: already at the end of the expression", m.notice)
	assert.Equal(t, "id-3", ctrl.Snapshot().FocusedNodeID)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, modeInput, m.mode)
}

func TestModel_RejectedInputStaysInInputMode(t *testing.T) {
	m, _ := newModel(t, "")
	m = send(t, m, submitMsg{text: "$x^$"})
	assert.Equal(t, modeInput, m.mode)
	assert.Contains(t, m.View(), domain.UnrecognizedMathMessage)
}

func TestModel_LettersCyclePreferences(t *testing.T) {
	m, ctrl := newModel(t, "")
	m = send(t, m, submitMsg{text: "$x^2$"})
	require.Equal(t, "x squared", ctrl.Snapshot().SpeechText)

	m = send(t, m, runes("s"))
	assert.Equal(t, "SimpleSpeak", ctrl.Snapshot().Preferences["speech_style"])
	assert.Equal(t, "x superscript 2", ctrl.Snapshot().SpeechText)
	assert.Equal(t, "speech_style: SimpleSpeak", m.notice)

	m = send(t, m, runes("s"))
	assert.Equal(t, "ClearSpeak", ctrl.Snapshot().Preferences["speech_style"])

	send(t, m, runes("t"), tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "Plain", ctrl.Snapshot().Preferences["text_to_speech"])
}

func TestModel_SpokenTextIsShown(t *testing.T) {
	m, _ := newModel(t, "")
	m = send(t, m, submitMsg{text: "$x$"}, runes("t"), tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, "x", m.spoken)
}

func TestModel_TypingInInputMode(t *testing.T) {
	m, ctrl := newModel(t, "")
	m = send(t, m, runes("`"), runes("a"), runes("`"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, domain.NotationASCIIMath, ctrl.Snapshot().Notation)
	assert.Equal(t, modeMath, m.mode)
}

type failingController struct{ Controller }

func (failingController) Dispatch(context.Context, domain.Command) (domain.Result, error) {
	return domain.Result{}, &domain.DisplayError{Err: errors.New("gone")}
}

func TestModel_DisplayErrorQuits(t *testing.T) {
	m := NewModel(context.Background(), failingController{}, memory.NewDisplay(), "")
	next, cmd := m.Update(submitMsg{text: "$x$"})
	require.NotNil(t, cmd)
	var displayErr *domain.DisplayError
	assert.ErrorAs(t, next.(Model).Err(), &displayErr)
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want domain.KeyEvent
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyLeft}, domain.KeyEvent{Key: "ArrowLeft", Code: domain.KeyCodeArrowLeft}, true},
		{tea.KeyMsg{Type: tea.KeyShiftRight}, domain.KeyEvent{Key: "ArrowRight", Code: domain.KeyCodeArrowRight, Shift: true}, true},
		{tea.KeyMsg{Type: tea.KeyCtrlUp}, domain.KeyEvent{Key: "ArrowUp", Code: domain.KeyCodeArrowUp, Ctrl: true}, true},
		{tea.KeyMsg{Type: tea.KeySpace}, domain.KeyEvent{Key: "Space", Code: domain.KeyCodeSpace}, true},
		{runes("3"), domain.KeyEvent{Key: "3", Code: domain.KeyCodeDigit0 + 3}, true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3"), Alt: true}, domain.KeyEvent{Key: "3", Code: domain.KeyCodeDigit0 + 3, Ctrl: true}, true},
		{tea.KeyMsg{Type: tea.KeyEsc}, domain.KeyEvent{Key: "Escape", Code: 27}, true},
		{tea.KeyMsg{Type: tea.KeyF1}, domain.KeyEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			got, ok := keyEvent(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextValue(t *testing.T) {
	assert.Equal(t, "UEB", nextValue(domain.PrefBrailleCode, "Nemeth"))
	assert.Equal(t, "Nemeth", nextValue(domain.PrefBrailleCode, "UEB"))
	assert.Equal(t, "Nemeth", nextValue(domain.PrefBrailleCode, "bogus"))
}

func TestRenderBraille(t *testing.T) {
	assert.Equal(t, "X+Y", renderBraille("X+Y"))
	out := renderBraille("X<span style='font-weight:bold'>+</span>Y")
	assert.NotContains(t, out, "span")
	assert.Contains(t, out, "X")
	assert.Contains(t, out, "Y")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "0.1.0\n")
	assert.Contains(t, buf.String(), "v0.1.0")
}

func TestModel_RuleFileMessage(t *testing.T) {
	m, ctrl := newModel(t, "")
	m = send(t, m,
		ruleFileMsg{Name: "/rules/ClearSpeak_Rules.yaml", Contents: `"+": "and"`},
		submitMsg{text: "$x+y$"},
	)
	assert.Equal(t, "x and y", ctrl.Snapshot().SpeechText)

	m = send(t, m, ruleFileMsg{Name: "broken.yaml", Contents: "key: [unterminated"})
	assert.NotEmpty(t, m.notice)
	assert.NotContains(t, m.notice, "loaded")
}
