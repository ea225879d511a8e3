package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"sync"

	"github.com/aretw0/mathview/pkg/domain"
	"gopkg.in/yaml.v3"
)

// EngineVersion identifies the reference engine build.
const EngineVersion = "0.1.0"

var errNoExpression = errors.New("no expression registered")

// engineOptions lists the preferences the reference engine understands and
// the values it accepts. The first value is the default.
var engineOptions = map[string][]string{
	"NavMode":             {"Enhanced", "Simple", "Character"},
	"NavVerbosity":        {"Medium", "Terse", "Verbose"},
	"SpeechStyle":         {"ClearSpeak", "SimpleSpeak"},
	"Verbosity":           {"Medium", "Terse", "Verbose"},
	"TTS":                 {"None", "SSML"},
	"BrailleCode":         {"Nemeth", "UEB"},
	"BrailleNavHighlight": {"EndPoints", "Off", "FirstChar", "All"},
}

var structureNames = map[string]string{
	"mfrac": "fraction", "msqrt": "square root", "msup": "power",
	"msub": "subscript", "msubsup": "subscript and superscript", "mrow": "group",
}

// Engine is an in-process ports.AccessibilityEngine. It understands a practical
// subset of TeX and ASCIIMath, speaks in a ClearSpeak or SimpleSpeak flavor and
// brailles in Nemeth or UEB. Rule files are YAML maps from symbols to the words
// used for them in speech.
//
// Safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	prefs     map[string]string
	root      *node
	nav       *navigator
	rules     map[string]string
	overrides map[string]string
	logger    *slog.Logger
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a reference engine with default preferences.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		prefs:     make(map[string]string, len(engineOptions)),
		rules:     make(map[string]string),
		overrides: make(map[string]string),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for name, values := range engineOptions {
		e.prefs[name] = values[0]
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) ConvertNotation(_ context.Context, text string, notation domain.Notation) (string, error) {
	if notation != domain.NotationTeX && notation != domain.NotationASCIIMath {
		return "", fmt.Errorf("cannot convert from %s", notation)
	}
	root, err := convert(text, notation)
	if err != nil {
		return "", fmt.Errorf("%s: %w", notation, err)
	}
	return root.String(), nil
}

func (e *Engine) RegisterMarkup(_ context.Context, markup string) (string, error) {
	root, err := parseMarkup(markup)
	if err != nil {
		return "", err
	}
	root.assignIDs()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.root = root
	e.nav = newNavigator(root)
	return root.String() + "\n", nil
}

func (e *Engine) SetPreference(_ context.Context, name, value string) error {
	values, ok := engineOptions[name]
	if !ok {
		return fmt.Errorf("unknown preference %q", name)
	}
	if !slices.Contains(values, value) {
		return fmt.Errorf("invalid value %q for %s", value, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prefs[name] = value
	return nil
}

func (e *Engine) GetPreference(_ context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.prefs[name]
	if !ok {
		return "", fmt.Errorf("unknown preference %q", name)
	}
	return v, nil
}

func (e *Engine) SpokenText(_ context.Context, focusID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, err := e.lookup(focusID)
	if err != nil {
		return "", err
	}
	return e.voice(e.speaker().speak(target)), nil
}

func (e *Engine) Braille(_ context.Context, focusID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.lookup(focusID); err != nil {
		return "", err
	}
	b := &brailler{
		code:      e.prefs["BrailleCode"],
		highlight: e.prefs["BrailleNavHighlight"],
		focus:     focusID,
	}
	return b.render(e.root), nil
}

func (e *Engine) Navigate(_ context.Context, key domain.KeyEvent) (domain.NavResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == nil {
		return domain.NavResult{}, errNoExpression
	}
	target, err := e.nav.move(key, e.prefs["NavMode"])
	if err != nil {
		return domain.NavResult{}, err
	}

	speech := e.speaker().speak(target)
	if e.prefs["NavVerbosity"] == "Verbose" {
		if kind, ok := structureNames[target.Name]; ok && target != e.root {
			speech = kind + ", " + speech
		}
	}
	e.logger.Debug("navigated", "key", key.Key, "node_id", target.ID)
	return domain.NavResult{
		Speech: e.voice(speech),
		NodeID: target.ID,
		Offset: target.index(),
	}, nil
}

// OverrideRuleFile replaces a rule file. Contents must be YAML; a mapping (or a
// list of single-entry mappings) from symbols to words takes effect at once.
func (e *Engine) OverrideRuleFile(_ context.Context, path, contents string) error {
	var doc any
	if err := yaml.Unmarshal([]byte(contents), &doc); err != nil {
		return fmt.Errorf("rule file %s: %w", filepath.Base(path), err)
	}
	words := symbolWords(doc)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[path] = contents
	maps.Copy(e.overrides, words)
	e.logger.Debug("rule file overridden", "path", path, "symbols", len(words))
	return nil
}

// RuleFile returns the contents last installed at path.
func (e *Engine) RuleFile(path string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.rules[path]
	return c, ok
}

func (e *Engine) Version() string {
	return EngineVersion
}

func (e *Engine) lookup(focusID string) (*node, error) {
	if e.root == nil {
		return nil, errNoExpression
	}
	if focusID == "" {
		return e.root, nil
	}
	n := e.root.find(focusID)
	if n == nil {
		return nil, fmt.Errorf("unknown node id %q", focusID)
	}
	return n, nil
}

func (e *Engine) speaker() speaker {
	return speaker{
		style:     e.prefs["SpeechStyle"],
		verbosity: e.prefs["Verbosity"],
		overrides: e.overrides,
	}
}

func (e *Engine) voice(text string) string {
	if e.prefs["TTS"] == "SSML" {
		return ssml(text)
	}
	return text
}

func symbolWords(doc any) map[string]string {
	out := make(map[string]string)
	var collect func(any)
	collect = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			for k, w := range t {
				if s, ok := w.(string); ok {
					out[k] = s
				}
			}
		case []any:
			for _, item := range t {
				collect(item)
			}
		}
	}
	collect(doc)
	return out
}
