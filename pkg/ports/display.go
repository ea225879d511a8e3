package ports

import "context"

// MathOutputTarget names the display region that receives typeset math.
const MathOutputTarget = "mathml-output"

// Typesetter renders canonical markup on the host's display surface.
// An error means the output could not be attached and is fatal to the host.
type Typesetter interface {
	Typeset(ctx context.Context, markup string) error
	ShowMessage(ctx context.Context, msg string) error
}

// Effects are fire-and-forget side effects requested by the controller.
type Effects interface {
	// Speak vocalizes text.
	Speak(text string)
	// Highlight marks the node with the given structural id in the rendered math.
	Highlight(id string)
	// ClearFocus removes keyboard focus from the target region.
	ClearFocus(target string)
}

// NopTypesetter discards everything.
type NopTypesetter struct{}

func (NopTypesetter) Typeset(context.Context, string) error     { return nil }
func (NopTypesetter) ShowMessage(context.Context, string) error { return nil }

// NopEffects discards everything.
type NopEffects struct{}

func (NopEffects) Speak(string)      {}
func (NopEffects) Highlight(string)  {}
func (NopEffects) ClearFocus(string) {}
