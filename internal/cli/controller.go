package cli

import (
	"log/slog"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/internal/config"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
)

// newController builds a controller with the standard CLI conventions.
// display may be nil for hosts that never typeset.
func newController(cfg config.Config, p *persistence, display *memory.Display, hooks domain.LifecycleHooks, logger *slog.Logger, sessionID string) *mathview.Controller {
	opts := []mathview.Option{
		mathview.WithLogger(logger),
		mathview.WithStore(p.Store),
		mathview.WithProfile(cfg.Profile),
		mathview.WithRules(cfg.Rules.Dir, cfg.Rules.Language),
		mathview.WithLifecycleHooks(hooks),
	}
	if p.Locker != nil {
		opts = append(opts, mathview.WithProfileLocker(p.Locker))
	}
	if cfg.BothBraille {
		opts = append(opts, mathview.WithBothBrailleCodes())
	}
	if display != nil {
		opts = append(opts, mathview.WithTypesetter(display), mathview.WithEffects(display))
	}
	if sessionID != "" {
		opts = append(opts, mathview.WithSessionID(sessionID))
	}
	return mathview.New(opts...)
}
