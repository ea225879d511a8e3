package runtime

import (
	"context"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
)

// handleKey routes a key aimed at the rendered math. Escape drops focus from the
// output region; navigation keys go to the engine; anything else is ignored so
// the host can apply its default handling.
func (e *Engine) handleKey(ctx context.Context, ev domain.KeyEvent) domain.Result {
	res := domain.Result{Kind: domain.CommandKeyPress}

	if ev.IsEscape() {
		e.effects.ClearFocus(ports.MathOutputTarget)
		res.Outcome = domain.Consumed
		return res
	}
	if !ev.IsNavigation() {
		res.Outcome = domain.Ignored
		return res
	}
	res.Outcome = domain.Consumed

	s := e.session
	if !s.HasMarkup() {
		nerr := &domain.NavError{Key: ev, Err: domain.ErrNoMath}
		res.Notice = nerr.Error()
		res.Err = nerr
		return res
	}

	e.pushPreferences(ctx, navigationPreferences...)
	moved, err := e.engine.Navigate(ctx, ev)
	e.emitNavigate(ctx, ev, moved.NodeID, err != nil)
	if err != nil {
		nerr := &domain.NavError{Key: ev, Err: err}
		e.logger.Debug("navigation rejected", "key", ev.Key, "err", err)
		s.Flags = Transition(s.Flags, TriggerNavigationRejected)
		res.Notice = nerr.Error()
		res.Err = nerr
		return res
	}

	s.SpeechText = moved.Speech
	s.FocusedNodeID = moved.NodeID
	e.effects.Highlight(moved.NodeID)
	s.Flags = Transition(s.Flags, TriggerNavigationMoved)
	e.logger.Debug("navigated", "key", ev.Key, "node_id", moved.NodeID, "offset", moved.Offset)
	res.Changed = true
	return res
}

func (e *Engine) emitNavigate(ctx context.Context, ev domain.KeyEvent, nodeID string, rejected bool) {
	if e.hooks.OnNavigate == nil {
		return
	}
	e.hooks.OnNavigate(ctx, &domain.NavigateEvent{
		EventBase: e.eventBase(),
		Key:       ev.Key,
		NodeID:    nodeID,
		Rejected:  rejected,
	})
}
