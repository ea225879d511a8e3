// Package tui is the interactive terminal host for a mathview controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/braille"
	"github.com/aretw0/mathview/pkg/domain"
)

// Controller is the part of mathview.Controller the TUI drives.
type Controller interface {
	Dispatch(ctx context.Context, cmd domain.Command) (domain.Result, error)
	Snapshot() domain.Snapshot
	Header() string
}

type mode int

const (
	modeInput mode = iota
	modeMath
)

func (m mode) String() string {
	if m == modeMath {
		return "MATH"
	}
	return "INPUT"
}

type submitMsg struct {
	text string
}

type ruleFileMsg domain.RuleFileLoaded

// Model is the bubbletea model. The controller must typeset and speak
// through display.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	display *memory.Display
	input   textinput.Model

	mode     mode
	notice   string
	spoken   string
	showHelp bool
	help     string
	width    int
	err      error
}

// NewModel creates the model. initial, when not empty, is submitted on start.
func NewModel(ctx context.Context, ctrl Controller, display *memory.Display, initial string) Model {
	in := textinput.New()
	in.Prompt = "math> "
	in.Placeholder = "$TeX$, `ASCIIMath` or <math>…</math>"
	in.SetValue(initial)
	in.Focus()

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		display: display,
		input:   in,
	}
}

// Err is the fatal error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	initial := strings.TrimSpace(m.input.Value())
	if initial == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, func() tea.Msg { return submitMsg{text: initial} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case submitMsg:
		return m.submit(msg.text)

	case ruleFileMsg:
		res, err := m.ctrl.Dispatch(m.ctx, domain.RuleFileLoaded(msg))
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.collect(res)
		if res.Err == nil {
			m.notice = "rule file " + filepath.Base(msg.Name) + " loaded"
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.mode == modeMath {
			return m.handleMathKey(msg)
		}
		switch msg.Type {
		case tea.KeyEnter:
			return m.submit(m.input.Value())
		case tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			if m.ctrl.Snapshot().CanonicalMarkup != "" {
				m.enterMath()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	res, err := m.ctrl.Dispatch(m.ctx, domain.SubmitInput{Text: text})
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.collect(res)
	if res.Err == nil {
		m.enterMath()
	} else if m.display.State().Message != "" {
		m.notice = ""
	}
	return m, nil
}

func (m *Model) enterMath() {
	m.mode = modeMath
	m.input.Blur()
}

func (m Model) handleMathKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt {
		r := msg.Runes[0]
		switch r {
		case 'q':
			return m, tea.Quit
		case '?':
			if m.help == "" {
				m.help = renderHelp()
			}
			m.showHelp = true
			return m, nil
		}
		if key, ok := preferenceKeys[r]; ok {
			return m.cyclePreference(key)
		}
	}

	ev, ok := keyEvent(msg)
	if !ok {
		return m, nil
	}
	res, err := m.ctrl.Dispatch(m.ctx, domain.KeyPress{Event: ev})
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.collect(res)
	if ev.IsEscape() {
		m.mode = modeInput
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) cyclePreference(key domain.PreferenceKey) (tea.Model, tea.Cmd) {
	current := m.ctrl.Snapshot().Preferences[string(key)]
	value := nextValue(key, current)
	res, err := m.ctrl.Dispatch(m.ctx, domain.SetPreference{Key: key, Value: value})
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.collect(res)
	if res.Err == nil {
		m.notice = fmt.Sprintf("%s: %s", key, value)
	}
	return m, nil
}

// collect picks up the notice of a result and anything spoken since the last key.
func (m *Model) collect(res domain.Result) {
	m.notice = res.Notice
	if spoken := m.display.Drain(); len(spoken) > 0 {
		m.spoken = spoken[len(spoken)-1]
	}
}

func (m Model) View() string {
	if m.showHelp {
		return m.help + hintStyle.Render("press any key to return")
	}

	snap := m.ctrl.Snapshot()
	state := m.display.State()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.Header()))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	var panel strings.Builder
	switch {
	case state.Message != "":
		panel.WriteString(messageStyle.Render(state.Message))
	case snap.CanonicalMarkup == "":
		panel.WriteString(hintStyle.Render("enter some math to begin"))
	default:
		row(&panel, "Notation", string(snap.Notation))
		row(&panel, "Markup", markupStyle.Render(trimMarkup(state.Markup, m.width)))
		row(&panel, "Focus", focusLabel(snap.FocusedNodeID))
		row(&panel, "Speech", snap.SpeechText)
		row(&panel, "Braille", renderBraille(snap.BrailleText))
		if snap.OtherBraille != "" {
			row(&panel, domain.OtherBrailleCode(snap.Preferences[string(domain.PrefBrailleCode)]), renderBraille(snap.OtherBraille))
		}
		if m.spoken != "" {
			row(&panel, "Spoken", m.spoken)
		}
	}
	b.WriteString(panelStyle.Render(strings.TrimRight(panel.String(), "\n")))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(modeStyle.Render(m.mode.String()))
	b.WriteString(" ")
	b.WriteString(hintStyle.Render(m.hints()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) hints() string {
	if m.mode == modeMath {
		return "arrows/home/end/digits navigate · m v s w t b d h cycle preferences · esc edit · ? help · q quit"
	}
	return "enter submit · tab navigate · esc quit"
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func focusLabel(id string) string {
	if id == "" {
		return "whole expression"
	}
	return id
}

func trimMarkup(markup string, width int) string {
	markup = strings.TrimSpace(markup)
	limit := width - 14
	if limit < 20 {
		limit = 60
	}
	if r := []rune(markup); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return markup
}

// renderBraille styles emphasized ASCII braille spans. Unicode braille shows
// emphasis through dots 7 and 8 and is returned as-is.
func renderBraille(text string) string {
	if !strings.Contains(text, braille.BoldOpen) {
		return text
	}
	var b strings.Builder
	for {
		before, rest, found := strings.Cut(text, braille.BoldOpen)
		b.WriteString(before)
		if !found {
			return b.String()
		}
		inner, after, _ := strings.Cut(rest, braille.BoldClose)
		b.WriteString(emphasis.Render(inner))
		text = after
	}
}

// Run drives the model until the user quits. Rule files arriving on rules are
// applied between key presses. A display failure ends the program and is returned.
func Run(ctx context.Context, ctrl Controller, display *memory.Display, initial string, rules <-chan domain.RuleFileLoaded) error {
	p := tea.NewProgram(NewModel(ctx, ctrl, display, initial), tea.WithContext(ctx), tea.WithAltScreen())
	if rules != nil {
		go func() {
			for ev := range rules {
				p.Send(ruleFileMsg(ev))
			}
		}()
	}
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}
