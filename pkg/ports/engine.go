package ports

import (
	"context"

	"github.com/aretw0/mathview/pkg/domain"
)

// AccessibilityEngine is the external collaborator that understands math: it
// converts notations, canonicalizes markup, produces speech and braille, and
// owns the navigation grammar. Calls are synchronous and expected to return promptly.
type AccessibilityEngine interface {
	// ConvertNotation turns TeX or ASCIIMath text into MathML.
	ConvertNotation(ctx context.Context, text string, notation domain.Notation) (string, error)

	// RegisterMarkup canonicalizes MathML, assigns structural ids and makes it
	// the engine's current expression.
	RegisterMarkup(ctx context.Context, markup string) (string, error)

	// SetPreference sets an engine preference by its engine name.
	SetPreference(ctx context.Context, name, value string) error

	// GetPreference reads an engine preference by its engine name.
	GetPreference(ctx context.Context, name string) (string, error)

	// SpokenText speaks the node with the given id, or the whole expression for "".
	SpokenText(ctx context.Context, focusID string) (string, error)

	// Braille renders the expression as Unicode braille, scoped to focusID when set.
	Braille(ctx context.Context, focusID string) (string, error)

	// Navigate applies a navigation key and reports the new position and its speech.
	Navigate(ctx context.Context, key domain.KeyEvent) (domain.NavResult, error)

	// OverrideRuleFile replaces the contents of a rule file at path.
	OverrideRuleFile(ctx context.Context, path, contents string) error

	// Version identifies the engine build.
	Version() string
}
