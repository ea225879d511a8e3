package mathview_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mathview"
	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/braille"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/aretw0/mathview/pkg/sanitize"
)

func newRunner(input string) (*mathview.Runner, *mathview.Controller, *bytes.Buffer) {
	display := memory.NewDisplay()
	c := mathview.New(mathview.WithTypesetter(display), mathview.WithEffects(display))
	c.Start(context.Background())

	var out bytes.Buffer
	r := &mathview.Runner{
		Input:    bytes.NewBufferString(input),
		Output:   &out,
		Headless: true,
		Display:  display,
	}
	return r, c, &out
}

func TestRunner_Script(t *testing.T) {
	r, c, out := newRunner("$x+y$\n:key Right\n:key Right\n:set braille_display ASCIIBraille\n:prefs\n:quit\n$z$\n")

	require.NoError(t, r.Run(context.Background(), c))

	got := out.String()
	assert.Contains(t, got, "speech:  x plus y\n")
	assert.Contains(t, got, "braille: "+braille.FromASCII("X+Y")+"\n")
	assert.Contains(t, got, "speech:  x\n")
	assert.Contains(t, got, "speech:  plus\n")
	assert.Contains(t, got, "braille: X"+braille.BoldOpen+"+"+braille.BoldClose+"Y\n")
	assert.Contains(t, got, "braille_display        ASCIIBraille\n")
	assert.NotContains(t, got, "speech:  z", ":quit stops the loop")
}

func TestRunner_BothBrailleCodes(t *testing.T) {
	display := memory.NewDisplay()
	c := mathview.New(mathview.WithTypesetter(display), mathview.WithEffects(display), mathview.WithBothBrailleCodes())
	c.Start(context.Background())

	var out bytes.Buffer
	r := &mathview.Runner{Input: bytes.NewBufferString("$x+y$\n"), Output: &out, Headless: true, Display: display}
	require.NoError(t, r.Run(context.Background(), c))

	got := out.String()
	assert.Contains(t, got, "braille: "+braille.FromASCII("X+Y")+"\n")
	assert.Contains(t, got, "UEB:     "+braille.FromASCII(`X"6Y`)+"\n")
}

func TestRunner_Diagnostics(t *testing.T) {
	r, c, out := newRunner(":key Right\n$x^$\n:key Right\n:key q\n:set speech_style Loud\n:set\n:bogus\n:rules /does/not/exist.yaml\n")

	require.NoError(t, r.Run(context.Background(), c))

	got := out.String()
	assert.Contains(t, got, domain.UnrecognizedMathMessage)
	assert.Equal(t, 2, strings.Count(got, "! Error in navigation: no math to navigate\n"), "rejected input leaves no math behind")
	assert.Contains(t, got, "key q ignored")
	assert.Contains(t, got, `! preference speech_style="Loud" rejected`)
	assert.Contains(t, got, "usage: :set <key> <value>")
	assert.Contains(t, got, "unknown command :bogus")
	assert.Contains(t, got, "cannot read /does/not/exist.yaml")
}

func TestRunner_Show(t *testing.T) {
	r, c, out := newRunner(":show\n`a/b`\n:show\n")

	require.NoError(t, r.Run(context.Background(), c))

	got := out.String()
	assert.Contains(t, got, "no math entered")
	assert.Contains(t, got, "notation: ASCIIMath")
	assert.Contains(t, got, "focus:    (whole expression)")
}

func TestRunner_RuleFileCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ClearSpeak_Rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`"+": "and"`), 0o644))

	r, c, out := newRunner(":rules " + path + "\n$x+y$\n")
	require.NoError(t, r.Run(context.Background(), c))

	assert.Contains(t, out.String(), "rule file ClearSpeak_Rules.yaml loaded")
	assert.Contains(t, out.String(), "speech:  x and y")
}

func TestRunner_RulesChannel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	rules := make(chan domain.RuleFileLoaded)
	r, c, out := newRunner("")
	r.Input = pr
	r.Rules = rules

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background(), c) }()

	rules <- domain.RuleFileLoaded{Name: "/watched/ClearSpeak_Rules.yaml", Contents: `"+": "and"`}
	_, err := io.WriteString(pw, "$x+y$\n:quit\n")
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Contains(t, out.String(), "rule file ClearSpeak_Rules.yaml loaded")
	assert.Contains(t, out.String(), "speech:  x and y")
}

func TestRunner_Interactive(t *testing.T) {
	r, c, out := newRunner(":help\nquit\n")
	r.Headless = false
	r.Renderer = func(s string) (string, error) { return "rendered help", nil }

	require.NoError(t, r.Run(context.Background(), c))

	got := out.String()
	assert.Contains(t, got, "MathView (using engine v0.1.0)\n> ")
	assert.Contains(t, got, "rendered help")
}

func TestRunner_RequiresIO(t *testing.T) {
	c := mathview.New()
	assert.Error(t, (&mathview.Runner{Output: io.Discard}).Run(context.Background(), c))
	assert.Error(t, (&mathview.Runner{Input: bytes.NewReader(nil)}).Run(context.Background(), c))
}

func TestRunner_SanitizesInput(t *testing.T) {
	t.Setenv(sanitize.EnvMaxInputSize, "16")
	r, c, out := newRunner("$x\x1b^2$\n$a+b+c+d+e+f+g+h$\n")

	require.NoError(t, r.Run(context.Background(), c))

	got := out.String()
	assert.Contains(t, got, "speech:  x squared\n")
	assert.Contains(t, got, "! "+sanitize.ErrInputTooLarge.Error())
	assert.Equal(t, "$x^2$", c.Snapshot().RawInput)
}
