package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/internal/config"
	"github.com/aretw0/mathview/internal/presentation/tui"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
)

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunSession runs one local session in the TUI or the line REPL.
func RunSession(opts RunOptions, cfg config.Config) error {
	logger, err := createLogger(opts.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	p, err := openStore(sigCtx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("failed to close store", "err", err)
		}
	}()

	if opts.Fresh {
		if err := p.Store.Delete(sigCtx, cfg.Profile); err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return fmt.Errorf("reset profile %s: %w", cfg.Profile, err)
		}
	}

	hooks := domain.LifecycleHooks{}
	if opts.Debug {
		hooks = createDebugHooks(logger)
	}
	display := memory.NewDisplay()
	ctrl := newController(cfg, p, display, hooks, logger, "")
	ctrl.Start(sigCtx)
	logger.Info("Session Created", "session_id", ctrl.SessionID(), "profile", cfg.Profile)

	rulesCh := startRuleWatcher(sigCtx, cfg.Rules, logger)

	if !opts.Plain && !opts.Headless && !opts.JSON && isInteractive() {
		return handleExecutionError(tui.Run(sigCtx, ctrl, display, cfg.InitialInput, rulesCh))
	}

	runErr := runLines(sigCtx, opts, cfg, ctrl, display, rulesCh, os.Stdin, os.Stdout)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}
	logCompletion(os.Stdout, opts.Headless || opts.JSON, sigCtx.Signal())
	return handleExecutionError(runErr)
}

// runLines drives the controller with the line REPL. The initial input is
// submitted first; headless sessions only submit an explicit --input.
func runLines(ctx context.Context, opts RunOptions, cfg config.Config, ctrl *mathview.Controller, display *memory.Display, rulesCh <-chan domain.RuleFileLoaded, in io.Reader, out io.Writer) error {
	initial := cfg.InitialInput
	if opts.Headless || opts.JSON {
		initial = opts.Input
	}
	if initial = strings.TrimSpace(initial); initial != "" {
		if opts.JSON {
			req, err := json.Marshal(mathview.JSONRequest{Type: "input", Text: initial})
			if err != nil {
				return err
			}
			initial = string(req)
		}
		in = io.MultiReader(strings.NewReader(initial+"\n"), in)
	}

	r := &mathview.Runner{
		Input:    in,
		Output:   out,
		Headless: opts.Headless || opts.JSON,
		JSON:     opts.JSON,
		Display:  display,
		Rules:    rulesCh,
	}
	if !r.Headless {
		tui.PrintBanner(out, mathview.Version)
		r.Renderer = tui.NewRenderer()
	}
	return r.Run(ctx, ctrl)
}
