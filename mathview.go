package mathview

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/mathview/internal/runtime"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
	"github.com/google/uuid"
)

// DefaultProfile is the profile preferences are saved under when none is given.
const DefaultProfile = "default"

// Controller is the high-level entry point of the library. It wraps the
// internal runtime and exposes one method per UI event.
//
// A Controller is not safe for concurrent use. Hosts that serve several
// callers serialize access per session (see pkg/session).
type Controller struct {
	runtime    *runtime.Engine
	engine     ports.AccessibilityEngine
	store      ports.PreferenceStore
	locker     ports.DistributedLocker
	typesetter ports.Typesetter
	effects    ports.Effects
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	profile    string
	rulesDir   string
	language   string
	sessionID  string
	dual       bool
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithEngine injects the accessibility engine. Without it the built-in
// reference engine is used.
func WithEngine(engine ports.AccessibilityEngine) Option {
	return func(c *Controller) {
		c.engine = engine
	}
}

// WithStore persists preferences through store.
func WithStore(store ports.PreferenceStore) Option {
	return func(c *Controller) {
		c.store = store
	}
}

// WithProfileLocker serializes preference saves of one profile across
// processes sharing the store.
func WithProfileLocker(locker ports.DistributedLocker) Option {
	return func(c *Controller) {
		c.locker = locker
	}
}

// WithBothBrailleCodes renders Nemeth and UEB side by side. The code not
// selected by braille_code lands in Snapshot.OtherBraille.
func WithBothBrailleCodes() Option {
	return func(c *Controller) {
		c.dual = true
	}
}

// WithProfile selects the profile preferences are saved under.
func WithProfile(profile string) Option {
	return func(c *Controller) {
		c.profile = profile
	}
}

// WithTypesetter sets the display surface.
func WithTypesetter(t ports.Typesetter) Option {
	return func(c *Controller) {
		c.typesetter = t
	}
}

// WithEffects sets the speech, highlight and focus side effects.
func WithEffects(fx ports.Effects) Option {
	return func(c *Controller) {
		c.effects = fx
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithRules sets the rules directory and language used for rule file overrides.
func WithRules(dir, language string) Option {
	return func(c *Controller) {
		c.rulesDir = dir
		c.language = language
	}
}

// WithSessionID fixes the session id. A random one is generated otherwise.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// New creates a Controller. Call Start before dispatching commands.
func New(opts ...Option) *Controller {
	c := &Controller{profile: DefaultProfile}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	if c.engine == nil {
		c.engine = memory.NewEngine(memory.WithEngineLogger(c.logger))
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithTypesetter(c.typesetter),
		runtime.WithEffects(c.effects),
		runtime.WithRules(c.rulesDir, c.language),
		runtime.WithSessionID(c.sessionID),
	}
	if c.store != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithStore(c.store, c.profile))
	}
	if c.locker != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithProfileLocker(c.locker))
	}
	if c.dual {
		runtimeOpts = append(runtimeOpts, runtime.WithBothBrailleCodes())
	}
	c.runtime = runtime.NewEngine(c.engine, runtimeOpts...)
	return c
}

// Start restores persisted preferences and syncs them to the engine.
func (c *Controller) Start(ctx context.Context) {
	c.runtime.Start(ctx)
}

// Dispatch applies any command. The error is non-nil only for display
// failures; see domain.DisplayError.
func (c *Controller) Dispatch(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	return c.runtime.Dispatch(ctx, cmd)
}

// Submit hands freshly typed math to the controller.
func (c *Controller) Submit(ctx context.Context, text string) (domain.Result, error) {
	return c.runtime.Dispatch(ctx, domain.SubmitInput{Text: text})
}

// SetPreference changes one preference.
func (c *Controller) SetPreference(ctx context.Context, key domain.PreferenceKey, value string) (domain.Result, error) {
	return c.runtime.Dispatch(ctx, domain.SetPreference{Key: key, Value: value})
}

// Press delivers a key event aimed at the rendered math. The result's Outcome
// tells the host whether to suppress its default handling.
func (c *Controller) Press(ctx context.Context, ev domain.KeyEvent) (domain.Result, error) {
	return c.runtime.Dispatch(ctx, domain.KeyPress{Event: ev})
}

// LoadRuleFile overrides an engine rule file.
func (c *Controller) LoadRuleFile(ctx context.Context, name, contents string) (domain.Result, error) {
	return c.runtime.Dispatch(ctx, domain.RuleFileLoaded{Name: name, Contents: contents})
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() domain.Snapshot {
	return c.runtime.Snapshot()
}

// Preferences returns a copy of the current preferences.
func (c *Controller) Preferences() domain.Preferences {
	return c.runtime.Preferences()
}

// SessionID identifies this controller in logs and events.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Profile is the profile preferences are saved under.
func (c *Controller) Profile() string {
	return c.profile
}

// Header is the title line hosts show above the math.
func (c *Controller) Header() string {
	return fmt.Sprintf("MathView (using engine v%s)", c.runtime.EngineVersion())
}
