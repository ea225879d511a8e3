package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/mathview/internal/logging"
	"github.com/aretw0/mathview/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger. Debug wins over level.
// Without either, logging is off so the terminal stays clean.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	if level == "" {
		return logging.NewNop(), nil
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl), nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, e *domain.CommandEvent) {
			logger.Debug("Command", "kind", e.Kind, "changed", e.Changed, "duration", e.Duration)
		},
		OnRegenerate: func(ctx context.Context, e *domain.RegenerateEvent) {
			if e.IsError {
				logger.Debug("Regenerate (Error)", "artifact", e.Artifact, "focus_id", e.FocusID)
			} else {
				logger.Debug("Regenerate", "artifact", e.Artifact, "focus_id", e.FocusID)
			}
		},
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			logger.Debug("Navigate", "key", e.Key, "node_id", e.NodeID, "rejected", e.Rejected)
		},
	}
}

// combineHooks calls every set hook of each argument in order.
func combineHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		if h.OnCommand != nil {
			prev := out.OnCommand
			out.OnCommand = func(ctx context.Context, e *domain.CommandEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnCommand(ctx, e)
			}
		}
		if h.OnRegenerate != nil {
			prev := out.OnRegenerate
			out.OnRegenerate = func(ctx context.Context, e *domain.RegenerateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnRegenerate(ctx, e)
			}
		}
		if h.OnNavigate != nil {
			prev := out.OnNavigate
			out.OnNavigate = func(ctx context.Context, e *domain.NavigateEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNavigate(ctx, e)
			}
		}
	}
	return out
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(w io.Writer, quiet bool, sig os.Signal) {
	if quiet {
		return
	}
	switch {
	case sig == os.Interrupt:
		fmt.Fprintf(w, "[CTRL+C]\n")
		printSystemMessage(w, "Interrupted.")
	case sig != nil:
		fmt.Fprintln(w)
		printSystemMessage(w, "Terminated.")
	default:
		printSystemMessage(w, "Bye.")
	}
}
