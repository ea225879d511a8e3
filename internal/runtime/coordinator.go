package runtime

import (
	"context"
	"time"

	"github.com/aretw0/mathview/pkg/braille"
	"github.com/aretw0/mathview/pkg/domain"
)

// Trigger is an event that may invalidate derived artifacts.
type Trigger int

const (
	TriggerInputNormalized Trigger = iota
	TriggerInputRejected
	TriggerSpeechPreference
	TriggerBraillePreference
	TriggerNavigationMoved
	TriggerNavigationRejected
	TriggerRulesChanged
)

func (t Trigger) String() string {
	switch t {
	case TriggerInputNormalized:
		return "input_normalized"
	case TriggerInputRejected:
		return "input_rejected"
	case TriggerSpeechPreference:
		return "speech_preference"
	case TriggerBraillePreference:
		return "braille_preference"
	case TriggerNavigationMoved:
		return "navigation_moved"
	case TriggerNavigationRejected:
		return "navigation_rejected"
	case TriggerRulesChanged:
		return "rules_changed"
	}
	return "unknown"
}

// Transition applies a trigger to the flags. A trigger never clears a flag and
// never touches a flag it does not name.
func Transition(f domain.Flags, t Trigger) domain.Flags {
	switch t {
	case TriggerInputNormalized:
		f.SpeechStale = true
		f.BrailleStale = true
		f.SpeakNow = true
	case TriggerSpeechPreference:
		f.SpeechStale = true
	case TriggerBraillePreference:
		f.BrailleStale = true
	case TriggerNavigationMoved:
		f.BrailleStale = true
		f.SpeakNow = true
	case TriggerRulesChanged:
		f.SpeechStale = true
		f.BrailleStale = true
	}
	return f
}

// TriggerForPreference maps a changed preference to its trigger. Navigation
// preferences invalidate nothing and report false.
func TriggerForPreference(key domain.PreferenceKey) (Trigger, bool) {
	a := key.Affects()
	switch {
	case a&domain.ArtifactSpeech != 0:
		return TriggerSpeechPreference, true
	case a&domain.ArtifactBraille != 0:
		return TriggerBraillePreference, true
	}
	return 0, false
}

var (
	speechPreferences     = []domain.PreferenceKey{domain.PrefSpeechStyle, domain.PrefSpeechVerbosity, domain.PrefTextToSpeech}
	braillePreferences    = []domain.PreferenceKey{domain.PrefBrailleCode, domain.PrefBrailleNavHighlight}
	navigationPreferences = []domain.PreferenceKey{domain.PrefNavigationMode, domain.PrefNavigationVerbosity}
)

// Regenerate recomputes every stale artifact. It is a no-op until an expression
// has been entered. After it returns with markup present, no flag is set.
func (e *Engine) Regenerate(ctx context.Context) {
	s := e.session
	if !s.HasMarkup() {
		return
	}

	if s.Flags.SpeechStale {
		e.pushPreferences(ctx, speechPreferences...)
		start := time.Now()
		text, err := e.engine.SpokenText(ctx, s.FocusedNodeID)
		if err != nil {
			e.logger.Warn("speech generation failed", "focus_id", s.FocusedNodeID, "err", err)
			text = err.Error()
		}
		s.SpeechText = text
		s.Flags.SpeechStale = false
		e.emitRegenerate(ctx, "speech", err != nil, time.Since(start))
	}

	// Edge-triggered: consumed even when this pass produced no new speech.
	if s.Flags.SpeakNow {
		if s.Preferences.Get(domain.PrefTextToSpeech) != domain.TextToSpeechOff {
			e.effects.Speak(s.SpeechText)
		}
		s.Flags.SpeakNow = false
	}

	if s.Flags.BrailleStale {
		e.pushPreferences(ctx, braillePreferences...)
		start := time.Now()
		cells, err := e.engine.Braille(ctx, s.FocusedNodeID)
		if err != nil {
			e.logger.Warn("braille generation failed", "focus_id", s.FocusedNodeID, "err", err)
			cells = err.Error()
		} else if s.Preferences.Get(domain.PrefBrailleDisplay) == domain.BrailleDisplayASCII {
			cells = braille.ToASCII(cells)
		}
		s.BrailleText = cells
		if e.dual {
			s.OtherBrailleText = e.otherBraille(ctx)
		}
		s.Flags.BrailleStale = false
		e.emitRegenerate(ctx, "braille", err != nil, time.Since(start))
	}
}

// otherBraille renders the focus in the code braille_code does not select and
// then hands the selected code back to the engine.
func (e *Engine) otherBraille(ctx context.Context) string {
	s := e.session
	name := domain.PrefBrailleCode.EngineName()
	code := s.Preferences.Get(domain.PrefBrailleCode)
	if err := e.engine.SetPreference(ctx, name, domain.OtherBrailleCode(code)); err != nil {
		e.logger.Warn("engine rejected braille code", "value", domain.OtherBrailleCode(code), "err", err)
		return ""
	}
	defer func() {
		if err := e.engine.SetPreference(ctx, name, code); err != nil {
			e.logger.Warn("engine rejected braille code", "value", code, "err", err)
		}
	}()

	cells, err := e.engine.Braille(ctx, s.FocusedNodeID)
	if err != nil {
		return err.Error()
	}
	if s.Preferences.Get(domain.PrefBrailleDisplay) == domain.BrailleDisplayASCII {
		cells = braille.ToASCII(cells)
	}
	return cells
}

// pushPreferences hands preference values to the engine, skipping those the
// engine already holds. Rejections are logged; the local value stays.
func (e *Engine) pushPreferences(ctx context.Context, keys ...domain.PreferenceKey) {
	for _, key := range keys {
		name := key.EngineName()
		if name == "" {
			continue
		}
		value := key.EngineValue(e.session.Preferences.Get(key))
		if current, err := e.engine.GetPreference(ctx, name); err == nil && current == value {
			continue
		}
		if err := e.engine.SetPreference(ctx, name, value); err != nil {
			e.logger.Warn("engine rejected preference", "name", name, "value", value, "err", err)
		}
	}
}

func (e *Engine) emitRegenerate(ctx context.Context, artifact string, isErr bool, d time.Duration) {
	e.logger.Debug("artifact regenerated", "artifact", artifact, "focus_id", e.session.FocusedNodeID, "duration", d)
	if e.hooks.OnRegenerate == nil {
		return
	}
	e.hooks.OnRegenerate(ctx, &domain.RegenerateEvent{
		EventBase: e.eventBase(),
		Artifact:  artifact,
		FocusID:   e.session.FocusedNodeID,
		IsError:   isErr,
		Duration:  d,
	})
}
