package domain

import (
	"context"
	"time"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// CommandEvent is emitted once per dispatched command.
type CommandEvent struct {
	EventBase
	Kind     CommandKind   `json:"kind"`
	Changed  bool          `json:"changed"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// RegenerateEvent is emitted each time an artifact is recomputed.
type RegenerateEvent struct {
	EventBase
	Artifact string        `json:"artifact"` // "speech" or "braille"
	FocusID  string        `json:"focus_id,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// NavigateEvent is emitted for every navigation key handed to the engine.
type NavigateEvent struct {
	EventBase
	Key      string `json:"key"`
	NodeID   string `json:"node_id,omitempty"`
	Rejected bool   `json:"rejected,omitempty"`
}

// LifecycleHooks defines callbacks for controller observability.
type LifecycleHooks struct {
	OnCommand    func(context.Context, *CommandEvent)
	OnRegenerate func(context.Context, *RegenerateEvent)
	OnNavigate   func(context.Context, *NavigateEvent)
}
