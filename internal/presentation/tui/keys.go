package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/aretw0/mathview/pkg/domain"
)

// preferenceKeys binds letters to the preference they cycle in math mode.
var preferenceKeys = map[rune]domain.PreferenceKey{
	'm': domain.PrefNavigationMode,
	'v': domain.PrefNavigationVerbosity,
	's': domain.PrefSpeechStyle,
	'w': domain.PrefSpeechVerbosity,
	't': domain.PrefTextToSpeech,
	'b': domain.PrefBrailleCode,
	'd': domain.PrefBrailleDisplay,
	'h': domain.PrefBrailleNavHighlight,
}

// keyEvent translates a terminal key into the controller's key model.
// Terminals rarely deliver Ctrl+digit, so Alt+digit stands in for it.
// ok is false for keys with no counterpart.
func keyEvent(msg tea.KeyMsg) (domain.KeyEvent, bool) {
	var ev domain.KeyEvent
	switch msg.Type {
	case tea.KeyLeft:
		ev = domain.KeyFromName("ArrowLeft")
	case tea.KeyRight:
		ev = domain.KeyFromName("ArrowRight")
	case tea.KeyUp:
		ev = domain.KeyFromName("ArrowUp")
	case tea.KeyDown:
		ev = domain.KeyFromName("ArrowDown")
	case tea.KeyShiftLeft:
		ev = domain.KeyFromName("ArrowLeft")
		ev.Shift = true
	case tea.KeyShiftRight:
		ev = domain.KeyFromName("ArrowRight")
		ev.Shift = true
	case tea.KeyShiftUp:
		ev = domain.KeyFromName("ArrowUp")
		ev.Shift = true
	case tea.KeyShiftDown:
		ev = domain.KeyFromName("ArrowDown")
		ev.Shift = true
	case tea.KeyCtrlLeft:
		ev = domain.KeyFromName("ArrowLeft")
		ev.Ctrl = true
	case tea.KeyCtrlRight:
		ev = domain.KeyFromName("ArrowRight")
		ev.Ctrl = true
	case tea.KeyCtrlUp:
		ev = domain.KeyFromName("ArrowUp")
		ev.Ctrl = true
	case tea.KeyCtrlDown:
		ev = domain.KeyFromName("ArrowDown")
		ev.Ctrl = true
	case tea.KeyHome:
		ev = domain.KeyFromName("Home")
	case tea.KeyEnd:
		ev = domain.KeyFromName("End")
	case tea.KeyEnter:
		ev = domain.KeyFromName("Enter")
	case tea.KeySpace:
		ev = domain.KeyFromName("Space")
	case tea.KeyBackspace:
		ev = domain.KeyFromName("Backspace")
	case tea.KeyEsc:
		ev = domain.KeyFromName("Escape")
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return domain.KeyEvent{}, false
		}
		r := msg.Runes[0]
		if r == ' ' {
			ev = domain.KeyFromName("Space")
			break
		}
		ev = domain.KeyFromName(string(r))
		if r >= '0' && r <= '9' && msg.Alt {
			ev.Ctrl = true
		}
	default:
		return domain.KeyEvent{}, false
	}
	if msg.Alt && !ev.Ctrl {
		ev.Alt = true
	}
	return ev, true
}

// nextValue returns the value after current in the key's domain, wrapping around.
func nextValue(key domain.PreferenceKey, current string) string {
	values := domain.PreferenceValues(key)
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
