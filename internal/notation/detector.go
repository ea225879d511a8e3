// Package notation recognizes the syntax of typed math and normalizes it into
// canonical, id-annotated MathML through the accessibility engine.
package notation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/ports"
)

// InputPrompt is the placeholder text hosts pre-fill the input area with.
// It is removed before detection.
const InputPrompt = "Auto-detect format: override using $...$ for TeX, `...` for ASCIIMath, <math>...</math> for MathML\n"

// StartFormula is the expression interactive hosts start with.
const StartFormula = `$x = {-b \pm \sqrt{b^2-4ac} \over 2a}$`

var (
	texPattern       = regexp.MustCompile("^\\$(.+?)\\$$")
	asciiMathPattern = regexp.MustCompile("^`(.+?)`$")
	mathMLPattern    = regexp.MustCompile("^<(.+?)>$")

	mathRootPattern = regexp.MustCompile(`<((?:[A-Za-z_][\w.-]*:)?math)\b[^>]*>`)
	displayAttr     = regexp.MustCompile(`\sdisplay\s*=\s*("[^"]*"|'[^']*')`)
)

// Normalized is the outcome of a successful normalization.
type Normalized struct {
	Notation domain.Notation
	// Source is the text handed to the engine (the delimited sub-text, or the
	// whole input for auto-detection and MathML).
	Source string
	Markup string
}

// Detector classifies input and drives the engine's conversion primitives.
type Detector struct {
	engine ports.AccessibilityEngine
	logger *slog.Logger
}

// Option configures the Detector.
type Option func(*Detector)

// WithLogger configures a logger for the Detector.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// New creates a Detector backed by engine.
func New(engine ports.AccessibilityEngine, opts ...Option) *Detector {
	d := &Detector{
		engine: engine,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Clean strips the input prompt, folds newlines into spaces and trims.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, InputPrompt, "")
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// Detect returns the notation of already cleaned text and the part of it the
// engine should see.
func Detect(text string) (domain.Notation, string) {
	if m := texPattern.FindStringSubmatch(text); m != nil {
		return domain.NotationTeX, m[1]
	}
	if m := asciiMathPattern.FindStringSubmatch(text); m != nil {
		return domain.NotationASCIIMath, m[1]
	}
	if mathMLPattern.MatchString(text) {
		return domain.NotationMathML, text
	}
	// ASCIIMath tolerates most plain TeX, so braces are the only reliable TeX tell.
	if strings.Contains(text, "{") {
		return domain.NotationTeX, text
	}
	return domain.NotationASCIIMath, text
}

// Normalize turns raw user text into canonical markup. Every failure wraps
// domain.ErrNoMatch.
func (d *Detector) Normalize(ctx context.Context, raw string) (Normalized, error) {
	text := Clean(raw)
	if text == "" {
		return Normalized{}, fmt.Errorf("%w: empty input", domain.ErrNoMatch)
	}

	kind, source := Detect(text)
	d.logger.Debug("notation detected", "notation", kind, "source", source)

	markup := source
	if kind != domain.NotationMathML {
		converted, err := d.engine.ConvertNotation(ctx, source, kind)
		if err != nil {
			return Normalized{}, fmt.Errorf("%w: %w", domain.ErrNoMatch, &domain.ConversionError{Stage: "convert", Err: err})
		}
		markup = converted
	}

	registered, err := d.engine.RegisterMarkup(ctx, ForceBlockDisplay(markup))
	if err != nil {
		d.logger.Debug("markup rejected", "err", err)
		return Normalized{}, fmt.Errorf("%w: %w", domain.ErrNoMatch, &domain.ConversionError{Stage: "register", Err: err})
	}

	return Normalized{
		Notation: kind,
		Source:   source,
		// The typesetter hangs on a trailing newline.
		Markup: strings.TrimRight(registered, " \t\r\n"),
	}, nil
}

// ForceBlockDisplay adds display='block' to the root math element unless the
// markup already asks for block display.
func ForceBlockDisplay(markup string) string {
	if strings.Contains(markup, `display="block"`) || strings.Contains(markup, `display='block'`) {
		return markup
	}
	loc := mathRootPattern.FindStringSubmatchIndex(markup)
	if loc == nil {
		return markup
	}
	tag := markup[loc[0]:loc[1]]
	if displayAttr.MatchString(tag) {
		tag = displayAttr.ReplaceAllString(tag, " display='block'")
		return markup[:loc[0]] + tag + markup[loc[1]:]
	}
	nameEnd := loc[3]
	return markup[:nameEnd] + " display='block'" + markup[nameEnd:]
}
