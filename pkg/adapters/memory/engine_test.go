package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/mathview/pkg/adapters/memory"
	"github.com/aretw0/mathview/pkg/braille"
	"github.com/aretw0/mathview/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bold(s string) string {
	return braille.BoldOpen + s + braille.BoldClose
}

func register(t *testing.T, e *memory.Engine, markup string) {
	t.Helper()
	_, err := e.RegisterMarkup(context.Background(), markup)
	require.NoError(t, err)
}

func registerTeX(t *testing.T, e *memory.Engine, tex string) {
	t.Helper()
	mathml, err := e.ConvertNotation(context.Background(), tex, domain.NotationTeX)
	require.NoError(t, err)
	register(t, e, mathml)
}

func TestConvertNotation(t *testing.T) {
	tests := []struct {
		name     string
		notation domain.Notation
		in       string
		want     string
	}{
		{"tex power", domain.NotationTeX, "x^2", "<math><msup><mi>x</mi><mn>2</mn></msup></math>"},
		{"tex frac", domain.NotationTeX, `\frac{1}{2}`, "<math><mfrac><mn>1</mn><mn>2</mn></mfrac></math>"},
		{"tex over", domain.NotationTeX, `{a \over b}`, "<math><mfrac><mi>a</mi><mi>b</mi></mfrac></math>"},
		{"tex symbol", domain.NotationTeX, `a \pm b`, "<math><mi>a</mi><mo>±</mo><mi>b</mi></math>"},
		{"tex sqrt", domain.NotationTeX, `\sqrt{x}`, "<math><msqrt><mi>x</mi></msqrt></math>"},
		{"tex subsup", domain.NotationTeX, `x_1^2`, "<math><msubsup><mi>x</mi><mn>1</mn><mn>2</mn></msubsup></math>"},
		{"ascii sum", domain.NotationASCIIMath, "2+2", "<math><mn>2</mn><mo>+</mo><mn>2</mn></math>"},
		{"ascii decimal", domain.NotationASCIIMath, "3.14", "<math><mn>3.14</mn></math>"},
		{"ascii slash", domain.NotationASCIIMath, "(a+b)/2", "<math><mfrac><mrow><mi>a</mi><mo>+</mo><mi>b</mi></mrow><mn>2</mn></mfrac></math>"},
		{"ascii power group", domain.NotationASCIIMath, "x^(n+1)", "<math><msup><mi>x</mi><mrow><mi>n</mi><mo>+</mo><mn>1</mn></mrow></msup></math>"},
		{"ascii words", domain.NotationASCIIMath, "pi <= oo", "<math><mi>π</mi><mo>≤</mo><mi>∞</mi></math>"},
		{"ascii sqrt", domain.NotationASCIIMath, "sqrt x", "<math><msqrt><mi>x</mi></msqrt></math>"},
	}
	e := memory.NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ConvertNotation(context.Background(), tt.in, tt.notation)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertNotation_StartFormula(t *testing.T) {
	e := memory.NewEngine()
	got, err := e.ConvertNotation(context.Background(), `x = {-b \pm \sqrt{b^2-4ac} \over 2a}`, domain.NotationTeX)
	require.NoError(t, err)
	assert.Contains(t, got, "<mfrac><mrow><mo>-</mo><mi>b</mi><mo>±</mo><msqrt>")
	assert.Contains(t, got, "<mrow><mn>2</mn><mi>a</mi></mrow></mfrac>")
}

func TestConvertNotation_Errors(t *testing.T) {
	tests := []struct {
		name     string
		notation domain.Notation
		in       string
	}{
		{"unknown command", domain.NotationTeX, `\foo x`},
		{"open brace", domain.NotationTeX, "{x"},
		{"stray brace", domain.NotationTeX, "x}"},
		{"missing script", domain.NotationTeX, "x^"},
		{"stray paren", domain.NotationASCIIMath, "x)"},
		{"empty", domain.NotationASCIIMath, "   "},
		{"mathml", domain.NotationMathML, "<math/>"},
	}
	e := memory.NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ConvertNotation(context.Background(), tt.in, tt.notation)
			assert.Error(t, err)
		})
	}
}

func TestRegisterMarkup(t *testing.T) {
	e := memory.NewEngine()

	got, err := e.RegisterMarkup(context.Background(), "<math display='block'><mi>x</mi><mo>+</mo><mi>y</mi></math>")
	require.NoError(t, err)
	assert.Equal(t, "<math display='block' id='id-0'><mi id='id-1'>x</mi><mo id='id-2'>+</mo><mi id='id-3'>y</mi></math>\n", got)

	got, err = e.RegisterMarkup(context.Background(), `<math xmlns="http://www.w3.org/1998/Math/MathML">
	  <mn id="old">1</mn>
	</math>`)
	require.NoError(t, err)
	assert.Equal(t, "<math id='id-0'><mn id='id-1'>1</mn></math>\n", got)
}

func TestRegisterMarkup_Rejects(t *testing.T) {
	e := memory.NewEngine()
	for _, in := range []string{
		"<mrow><mi>x</mi></mrow>",
		"<math><mi>x</math>",
		"not markup",
		"",
	} {
		_, err := e.RegisterMarkup(context.Background(), in)
		assert.Error(t, err, in)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	e := memory.NewEngine()

	v, err := e.GetPreference(ctx, "SpeechStyle")
	require.NoError(t, err)
	assert.Equal(t, "ClearSpeak", v)

	require.NoError(t, e.SetPreference(ctx, "SpeechStyle", "SimpleSpeak"))
	v, _ = e.GetPreference(ctx, "SpeechStyle")
	assert.Equal(t, "SimpleSpeak", v)

	assert.Error(t, e.SetPreference(ctx, "SpeechStyle", "LoudSpeak"))
	assert.Error(t, e.SetPreference(ctx, "Colour", "red"))
	_, err = e.GetPreference(ctx, "Colour")
	assert.Error(t, err)
}

func TestSpokenText(t *testing.T) {
	tests := []struct {
		tex   string
		prefs map[string]string
		want  string
	}{
		{"x+y", nil, "x plus y"},
		{"x^2", nil, "x squared"},
		{"x^n", nil, "x to the n power"},
		{"x^2", map[string]string{"SpeechStyle": "SimpleSpeak"}, "x superscript 2"},
		{`\frac{1}{2}`, nil, "the fraction with numerator 1 and denominator 2"},
		{`\frac{1}{2}`, map[string]string{"Verbosity": "Terse"}, "1 over 2"},
		{`\frac{1}{x+1}`, map[string]string{"SpeechStyle": "SimpleSpeak"}, "fraction 1 over x plus 1 end fraction"},
		{`\sqrt{x}`, nil, "the square root of x"},
		{`\sqrt{x+1}`, map[string]string{"SpeechStyle": "SimpleSpeak"}, "square root of x plus 1 end root"},
		{`x_1`, nil, "x sub 1"},
		{`a \pm \pi`, nil, "a plus or minus pi"},
		{"x+y", map[string]string{"TTS": "SSML"}, "<speak>x plus y</speak>"},
	}
	for _, tt := range tests {
		t.Run(tt.tex, func(t *testing.T) {
			e := memory.NewEngine()
			for k, v := range tt.prefs {
				require.NoError(t, e.SetPreference(context.Background(), k, v))
			}
			registerTeX(t, e, tt.tex)

			got, err := e.SpokenText(context.Background(), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSpokenText_Focus(t *testing.T) {
	e := memory.NewEngine()
	_, err := e.SpokenText(context.Background(), "")
	assert.Error(t, err, "nothing registered yet")

	registerTeX(t, e, "x+y")
	got, err := e.SpokenText(context.Background(), "id-2")
	require.NoError(t, err)
	assert.Equal(t, "plus", got)

	_, err = e.SpokenText(context.Background(), "id-99")
	assert.Error(t, err)
}

func TestBraille(t *testing.T) {
	tests := []struct {
		name  string
		tex   string
		prefs map[string]string
		focus string
		want  string // ASCII braille with emphasized cells in bold
	}{
		{"nemeth sum", "x+y", nil, "", "X+Y"},
		{"ueb sum", "x+y", map[string]string{"BrailleCode": "UEB"}, "", "X\"6Y"},
		{"nemeth number", "12", nil, "", "#12"},
		{"ueb number", "12", map[string]string{"BrailleCode": "UEB"}, "", "#AB"},
		{"capital", "A", nil, "", ",A"},
		{"nemeth power", "x^2", nil, "", "X^#2\""},
		{"nemeth frac", `\frac{1}{2}`, nil, "", "?#1/#2#"},
		{"endpoints single cell", "x+y", nil, "id-2", "X" + bold("+") + "Y"},
		{"endpoints", "x=y", nil, "id-2", "X" + bold(" ") + ".K" + bold(" ") + "Y"},
		{"first char", "x=y", map[string]string{"BrailleNavHighlight": "FirstChar"}, "id-2", "X" + bold(" ") + ".K Y"},
		{"all", "x=y", map[string]string{"BrailleNavHighlight": "All"}, "id-2", "X" + bold(" ") + bold(".") + bold("K") + bold(" ") + "Y"},
		{"off", "x=y", map[string]string{"BrailleNavHighlight": "Off"}, "id-2", "X .K Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := memory.NewEngine()
			for k, v := range tt.prefs {
				require.NoError(t, e.SetPreference(context.Background(), k, v))
			}
			registerTeX(t, e, tt.tex)

			got, err := e.Braille(context.Background(), tt.focus)
			require.NoError(t, err)
			for _, r := range got {
				assert.True(t, braille.IsCell(r), "non-cell %q", r)
			}
			assert.Equal(t, tt.want, braille.ToASCII(got))
		})
	}
}

func TestOverrideRuleFile(t *testing.T) {
	ctx := context.Background()
	e := memory.NewEngine()
	registerTeX(t, e, "x+y")

	path := "Rules/Languages/en/unicode.yaml"
	require.NoError(t, e.OverrideRuleFile(ctx, path, `"+": "added to"`))
	got, err := e.SpokenText(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "x added to y", got)

	contents, ok := e.RuleFile(path)
	assert.True(t, ok)
	assert.Equal(t, `"+": "added to"`, contents)

	require.NoError(t, e.OverrideRuleFile(ctx, path, "- \"x\": \"ex\"\n- \"y\": \"why\"\n"))
	got, _ = e.SpokenText(ctx, "")
	assert.Equal(t, "ex added to why", got)

	assert.Error(t, e.OverrideRuleFile(ctx, path, "key: [unterminated"))
}

func TestVersion(t *testing.T) {
	assert.Equal(t, memory.EngineVersion, memory.NewEngine().Version())
}
