package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/mathview/internal/config"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
)

// PrefsAction names a 'prefs' subcommand.
type PrefsAction string

const (
	PrefsShow  PrefsAction = "show"
	PrefsSet   PrefsAction = "set"
	PrefsReset PrefsAction = "reset"
	PrefsList  PrefsAction = "list"
)

// Prefs edits saved preferences directly in the configured store.
func Prefs(opts RunOptions, action PrefsAction, args []string, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := createLogger(opts.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	return runPrefs(ctx, p.Store, cfg, action, args, out, logger)
}

func runPrefs(ctx context.Context, store ports.PreferenceStore, cfg config.Config, action PrefsAction, args []string, out io.Writer, logger *slog.Logger) error {
	switch action {
	case PrefsList:
		profiles, err := store.List(ctx)
		if err != nil {
			return err
		}
		for _, profile := range profiles {
			fmt.Fprintln(out, profile)
		}
		return nil

	case PrefsReset:
		if err := store.Delete(ctx, cfg.Profile); err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
			return err
		}
		printSystemMessage(out, "Preferences of '%s' reset.", cfg.Profile)
		return nil
	}

	prefs, err := loadPreferences(ctx, store, cfg.Profile, logger)
	if err != nil {
		return err
	}

	switch action {
	case PrefsShow:
		for _, key := range domain.PreferenceKeys() {
			fmt.Fprintf(out, "%-22s %s\n", key, prefs.Get(key))
		}
		return nil

	case PrefsSet:
		if len(args) != 2 {
			return fmt.Errorf("usage: prefs set <key> <value>")
		}
		key := domain.PreferenceKey(args[0])
		if _, err := prefs.Set(key, args[1]); err != nil {
			return err
		}
		if err := store.Save(ctx, cfg.Profile, prefs.Serialize()); err != nil {
			return fmt.Errorf("save preferences: %w", err)
		}
		printSystemMessage(out, "%s = %s", key, args[1])
		return nil
	}
	return fmt.Errorf("unknown prefs action %q", action)
}

func loadPreferences(ctx context.Context, store ports.PreferenceStore, profile string, logger *slog.Logger) (domain.Preferences, error) {
	blob, err := store.Load(ctx, profile)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return domain.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	prefs, skipped := domain.ParsePreferences(blob)
	for _, s := range skipped {
		logger.Warn("skipped saved preference", "entry", s.Entry, "err", s.Reason)
	}
	return prefs, nil
}
