/*
Package mathview makes typeset mathematics accessible. It turns TeX, ASCIIMath or
MathML input into canonical MathML and keeps spoken text and braille for it in
sync with the reader's preferences and navigation focus.

# Concept

A Controller owns one session. Hosts (a terminal, an HTTP API, a test) hand it
UI events: submitted input, preference changes, key presses and rule-file
overrides. The controller asks an AccessibilityEngine for markup, speech,
braille and navigation, and tells the host what to typeset, highlight and speak
through the Typesetter and Effects ports. Preferences persist through a
PreferenceStore.

Only the artifacts a change invalidates are recomputed: a speech preference
leaves braille alone, a braille preference leaves speech alone, and a navigation
move refreshes braille and speaks the new focus.

# Usage

	display := memory.NewDisplay()
	c := mathview.New(
		mathview.WithStore(file.New("")),
		mathview.WithTypesetter(display),
		mathview.WithEffects(display),
	)
	c.Start(ctx)

	c.Submit(ctx, `$x^2$`)
	fmt.Println(c.Snapshot().SpeechText) // x squared

	res, _ := c.Press(ctx, domain.KeyFromName("ArrowRight"))
	if res.Outcome == domain.Consumed {
		// suppress the host's own handling of the key
	}

# Hosts

Runner is a line-oriented host suitable for pipes. The mathview command adds an
interactive terminal UI and an HTTP server (see cmd/mathview).
*/
package mathview
