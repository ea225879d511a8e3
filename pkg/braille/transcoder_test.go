package braille_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aretw0/mathview/pkg/braille"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullTable = " A1B'K2L@CIF/MSP\"E3H9O6R^DJG>NTQ,*5<-U8V.%[$+X!&;:4\\0Z7(_?W]#Y)="

func allCells() string {
	var b strings.Builder
	for i := 0; i < 64; i++ {
		b.WriteRune(rune(braille.Base + i))
	}
	return b.String()
}

func TestToASCII_FullDomain(t *testing.T) {
	got := braille.ToASCII(allCells())
	assert.Equal(t, fullTable, got)
	assert.Equal(t, 64, len(got), "one glyph per cell")
}

func TestToASCII_KnownCells(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"⠁", "A"},
		{"⠃", "B"},
		{"⠼", "#"},
		{"⠏⠞", "PT"},
		{"⠠", ","},
		{"⠿", "="},
		{"⠀", " "},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, braille.ToASCII(tt.in))
		})
	}
}

func TestToASCII_Emphasis(t *testing.T) {
	for i := 0; i < 64; i++ {
		base := rune(braille.Base + i)
		plain := braille.ToASCII(string(base))
		require.Len(t, plain, 1)

		for _, mask := range []rune{0x40, 0x80, 0xC0} {
			emphasized := braille.ToASCII(string(base | mask))
			assert.Equal(t, braille.BoldOpen+plain+braille.BoldClose, emphasized,
				"cell %U with mask %#x", base, mask)
		}
	}
}

func TestGlyphs_LengthMatchesCells(t *testing.T) {
	in := allCells() + braille.Emphasize(allCells())
	cells := braille.Glyphs(in)
	assert.Len(t, cells, utf8.RuneCountInString(in))
	for i, c := range cells {
		assert.Equal(t, i >= 64, c.Emphasized, "cell %d", i)
		assert.Equal(t, cells[i%64].Glyph, c.Glyph)
	}
}

func TestToASCII_PassesThroughOtherRunes(t *testing.T) {
	assert.Equal(t, "AéB", braille.ToASCII("⠁é⠃"))
	assert.Equal(t, "x²"+braille.BoldOpen+"A"+braille.BoldClose, braille.ToASCII("x²"+string(rune(0x2841))))

	cells := braille.Glyphs("⠁→")
	require.Len(t, cells, 2)
	assert.Equal(t, braille.Cell{Glyph: '→'}, cells[1])
}

func TestToASCII_IdempotentOnASCII(t *testing.T) {
	once := braille.ToASCII("⠼⠁⠃" + string(rune(0x2841)))
	assert.Equal(t, once, braille.ToASCII(once))
}

func TestFromASCII(t *testing.T) {
	assert.Equal(t, allCells(), braille.FromASCII(fullTable))
	assert.Equal(t, "⠁⠃", braille.FromASCII("ab"))
	assert.Equal(t, "⠀", braille.FromASCII("~"), "unmapped characters become blank cells")
	assert.Equal(t, "#A", braille.ToASCII(braille.FromASCII("#a")))
}

func TestEmphasize(t *testing.T) {
	out := braille.Emphasize("⠁x")
	r, _ := utf8.DecodeRuneInString(out)
	assert.Equal(t, rune(0x28C1), r)
	assert.True(t, strings.HasSuffix(out, "x"))
}
