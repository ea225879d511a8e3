package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/mathview/internal/config"
	"github.com/aretw0/mathview/pkg/adapters/rules"
	"github.com/aretw0/mathview/pkg/domain"
)

// watchDir is the language directory the engine reads rule files from.
func watchDir(cfg config.Rules) string {
	return filepath.Join(cfg.Dir, "Languages", cfg.Language)
}

// startRuleWatcher streams edited rule files of the configured language.
// It returns nil when watching is disabled or the directory cannot be watched;
// the session still runs without live reloads.
func startRuleWatcher(ctx context.Context, cfg config.Rules, logger *slog.Logger) <-chan domain.RuleFileLoaded {
	if !cfg.Watch {
		return nil
	}
	dir := watchDir(cfg)
	ch, err := rules.NewWatcher(dir, rules.WithLogger(logger)).Watch(ctx)
	if err != nil {
		logger.Warn("rule watcher disabled", "dir", dir, "err", err)
		return nil
	}
	logger.Info("watching rule files", "dir", dir)
	return ch
}
