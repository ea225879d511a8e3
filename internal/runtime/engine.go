package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/mathview/internal/notation"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
)

// DefaultRulesDir and DefaultLanguage locate rule overrides when no option says otherwise.
const (
	DefaultRulesDir = "Rules"
	DefaultLanguage = "en"
)

// Engine is the controller core. It owns one Session and is not safe for
// concurrent use: hosts deliver commands one at a time.
type Engine struct {
	engine     ports.AccessibilityEngine
	detector   *notation.Detector
	typesetter ports.Typesetter
	effects    ports.Effects
	store      ports.PreferenceStore
	locker     ports.DistributedLocker
	profile    string
	rulesDir   string
	language   string
	dual       bool
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	session    *domain.Session
	// dirty holds the preference keys changed since the last save.
	dirty []domain.PreferenceKey
}

// Controllers sharing a store and profile merge their saves under this lock.
var persistMu sync.Mutex

const profileLockTTL = 5 * time.Second

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithTypesetter sets the display surface for math and messages.
func WithTypesetter(t ports.Typesetter) EngineOption {
	return func(e *Engine) {
		if t != nil {
			e.typesetter = t
		}
	}
}

// WithEffects sets the speech, highlight and focus side effects.
func WithEffects(fx ports.Effects) EngineOption {
	return func(e *Engine) {
		if fx != nil {
			e.effects = fx
		}
	}
}

// WithStore persists preferences under profile.
func WithStore(store ports.PreferenceStore, profile string) EngineOption {
	return func(e *Engine) {
		e.store = store
		e.profile = profile
	}
}

// WithProfileLocker guards preference saves across replicas sharing the store.
func WithProfileLocker(locker ports.DistributedLocker) EngineOption {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithBothBrailleCodes also renders the braille code braille_code does not
// select, into Session.OtherBrailleText.
func WithBothBrailleCodes() EngineOption {
	return func(e *Engine) {
		e.dual = true
	}
}

// WithRules sets where rule file overrides are placed.
func WithRules(dir, language string) EngineOption {
	return func(e *Engine) {
		if dir != "" {
			e.rulesDir = dir
		}
		if language != "" {
			e.language = language
		}
	}
}

// WithSessionID fixes the session id used in logs and events.
func WithSessionID(id string) EngineOption {
	return func(e *Engine) {
		e.session.ID = id
	}
}

// NewEngine creates a controller around the accessibility engine.
func NewEngine(engine ports.AccessibilityEngine, opts ...EngineOption) *Engine {
	e := &Engine{
		engine:     engine,
		typesetter: ports.NopTypesetter{},
		effects:    ports.NopEffects{},
		rulesDir:   DefaultRulesDir,
		language:   DefaultLanguage,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		session:    domain.NewSession(""),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.session.ID != "" {
		e.logger = e.logger.With("session_id", e.session.ID)
	}
	e.detector = notation.New(engine, notation.WithLogger(e.logger))
	return e
}

// Start restores persisted preferences and hands every engine preference to
// the engine. A store failure is logged and the defaults stay in effect.
func (e *Engine) Start(ctx context.Context) {
	if e.store != nil {
		blob, err := e.store.Load(ctx, e.profile)
		switch {
		case err == nil:
			for _, s := range e.session.Preferences.Load(blob) {
				e.logger.Warn("skipping persisted preference", "entry", s.Entry, "err", s.Reason)
			}
		case errors.Is(err, domain.ErrProfileNotFound):
			e.logger.Debug("no persisted preferences", "profile", e.profile)
		default:
			e.logger.Warn("failed to load preferences", "profile", e.profile, "err", err)
		}
	}
	e.pushPreferences(ctx, domain.PreferenceKeys()...)
	e.logger.Info("controller started", "engine_version", e.engine.Version())
}

// Dispatch applies one command and then runs a regeneration pass. Recovered
// errors are reported in Result.Err. The returned error is non-nil only when
// the display failed, which hosts treat as fatal.
func (e *Engine) Dispatch(ctx context.Context, cmd domain.Command) (domain.Result, error) {
	start := time.Now()

	var (
		res domain.Result
		err error
	)
	switch c := cmd.(type) {
	case domain.SubmitInput:
		res, err = e.submit(ctx, c)
	case domain.SetPreference:
		res = e.setPreference(ctx, c)
	case domain.KeyPress:
		res = e.handleKey(ctx, c.Event)
	case domain.RuleFileLoaded:
		res = e.loadRuleFile(ctx, c)
	default:
		return domain.Result{}, fmt.Errorf("unsupported command %T", cmd)
	}
	res.Kind = cmd.Kind()

	if err == nil {
		e.Regenerate(ctx)
		if res.Changed {
			e.persist(ctx)
		}
	}

	if e.hooks.OnCommand != nil {
		reported := err
		if reported == nil {
			reported = res.Err
		}
		e.hooks.OnCommand(ctx, &domain.CommandEvent{
			EventBase: e.eventBase(),
			Kind:      res.Kind,
			Changed:   res.Changed,
			Err:       reported,
			Duration:  time.Since(start),
		})
	}
	return res, err
}

// Snapshot returns a copy of the session.
func (e *Engine) Snapshot() domain.Snapshot {
	return e.session.Snapshot()
}

// Preferences returns a copy of the current preferences.
func (e *Engine) Preferences() domain.Preferences {
	return e.session.Preferences.Clone()
}

// EngineVersion reports the accessibility engine build.
func (e *Engine) EngineVersion() string {
	return e.engine.Version()
}

func (e *Engine) submit(ctx context.Context, c domain.SubmitInput) (domain.Result, error) {
	norm, err := e.detector.Normalize(ctx, c.Text)
	if err != nil {
		e.logger.Info("input not recognized", "err", err)
		if derr := e.typesetter.ShowMessage(ctx, domain.UnrecognizedMathMessage); derr != nil {
			return domain.Result{}, &domain.DisplayError{Err: derr}
		}
		e.session.Flags = Transition(e.session.Flags, TriggerInputRejected)
		return domain.Result{Notice: domain.UnrecognizedMathMessage, Err: err}, nil
	}

	if err := e.typesetter.Typeset(ctx, norm.Markup); err != nil {
		return domain.Result{}, &domain.DisplayError{Err: err}
	}

	s := e.session
	s.RawInput = c.Text
	s.CanonicalMarkup = norm.Markup
	s.Notation = norm.Notation
	s.FocusedNodeID = ""
	s.Flags = Transition(s.Flags, TriggerInputNormalized)
	e.logger.Debug("expression accepted", "notation", norm.Notation)
	return domain.Result{Changed: true}, nil
}

func (e *Engine) setPreference(ctx context.Context, c domain.SetPreference) domain.Result {
	prefs := e.session.Preferences
	if err := prefs.Validate(c.Key, c.Value); err != nil {
		perr := &domain.PreferenceError{Key: c.Key, Value: c.Value, Err: err}
		e.logger.Warn("preference rejected", "key", c.Key, "value", c.Value, "err", err)
		return domain.Result{Notice: perr.Error(), Err: perr}
	}
	if prefs.Get(c.Key) == c.Value {
		return domain.Result{}
	}

	if name := c.Key.EngineName(); name != "" {
		if err := e.engine.SetPreference(ctx, name, c.Key.EngineValue(c.Value)); err != nil {
			perr := &domain.PreferenceError{Key: c.Key, Value: c.Value, Err: err}
			e.logger.Warn("engine rejected preference", "key", c.Key, "value", c.Value, "err", err)
			return domain.Result{Notice: perr.Error(), Err: perr}
		}
	}

	if _, err := prefs.Set(c.Key, c.Value); err != nil {
		return domain.Result{Err: err}
	}
	if trigger, ok := TriggerForPreference(c.Key); ok {
		e.session.Flags = Transition(e.session.Flags, trigger)
	}
	e.dirty = append(e.dirty, c.Key)
	e.logger.Debug("preference changed", "key", c.Key, "value", c.Value)
	return domain.Result{Changed: true}
}

// loadRuleFile places contents under the rules directory of the configured
// language. Only the base name of the delivered file is used.
func (e *Engine) loadRuleFile(ctx context.Context, c domain.RuleFileLoaded) domain.Result {
	name := filepath.Base(filepath.Clean(c.Name))
	if name == "." || name == string(filepath.Separator) || name == ".." {
		err := fmt.Errorf("invalid rule file name %q", c.Name)
		return domain.Result{Notice: err.Error(), Err: err}
	}
	path := filepath.Join(e.rulesDir, "Languages", e.language, name)
	if err := e.engine.OverrideRuleFile(ctx, path, c.Contents); err != nil {
		e.logger.Warn("rule file rejected", "path", path, "err", err)
		return domain.Result{Notice: err.Error(), Err: err}
	}
	e.session.Flags = Transition(e.session.Flags, TriggerRulesChanged)
	e.logger.Info("rule file loaded", "path", path)
	return domain.Result{Changed: true}
}

// persist writes the keys this controller changed over the stored blob, so
// controllers on the same profile do not undo each other's changes.
func (e *Engine) persist(ctx context.Context) {
	if e.store == nil || len(e.dirty) == 0 {
		return
	}
	persistMu.Lock()
	defer persistMu.Unlock()
	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, ports.ProfileLockKey(e.profile), profileLockTTL)
		if err != nil {
			e.logger.Warn("preferences not saved: profile lock unavailable", "profile", e.profile, "err", err)
			return
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				e.logger.Warn("failed to release profile lock (will expire via TTL)", "profile", e.profile, "err", err)
			}
		}()
	}

	merged := e.session.Preferences.Clone()
	blob, err := e.store.Load(ctx, e.profile)
	switch {
	case err == nil:
		merged, _ = domain.ParsePreferences(blob)
		for _, key := range e.dirty {
			_, _ = merged.Set(key, e.session.Preferences.Get(key))
		}
	case errors.Is(err, domain.ErrProfileNotFound):
	default:
		e.logger.Warn("failed to reload preferences before saving", "profile", e.profile, "err", err)
	}

	if err := e.store.Save(ctx, e.profile, merged.Serialize()); err != nil {
		e.logger.Warn("failed to persist preferences", "profile", e.profile, "err", err)
		return
	}
	e.dirty = e.dirty[:0]
}

func (e *Engine) eventBase() domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), SessionID: e.session.ID}
}
