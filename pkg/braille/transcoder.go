// Package braille converts Unicode braille cells to and from North American
// ASCII braille.
package braille

import "strings"

const (
	// Base is the first code point of the Unicode braille block (no dots raised).
	Base = 0x2800
	// Last is the final code point of the block (all eight dots raised).
	Last = 0x28FF

	dots1to6 = 0x3F
)

// Emphasis markers wrapped around a glyph whose cell has dot 7 or dot 8 raised.
const (
	BoldOpen  = "<span style='font-weight:bold'>"
	BoldClose = "</span>"
)

// asciiTable maps dots 1-6 (the low six bits of a cell) to ASCII braille.
const asciiTable = " A1B'K2L@CIF/MSP\"E3H9O6R^DJG>NTQ,*5<-U8V.%[$+X!&;:4\\0Z7(_?W]#Y)="

var asciiToCell = func() map[rune]rune {
	m := make(map[rune]rune, len(asciiTable))
	for i, ch := range asciiTable {
		m[ch] = rune(Base + i)
	}
	return m
}()

// Cell is one transcoded braille cell.
type Cell struct {
	Glyph      rune
	Emphasized bool
}

// IsCell reports whether r lies in the Unicode braille block.
func IsCell(r rune) bool {
	return r >= Base && r <= Last
}

// Glyphs transcodes each braille cell of s. Runes outside the braille block are
// out of domain and are returned as-is, unemphasized.
func Glyphs(s string) []Cell {
	cells := make([]Cell, 0, len(s)/3)
	for _, r := range s {
		if !IsCell(r) {
			cells = append(cells, Cell{Glyph: r})
			continue
		}
		cells = append(cells, Cell{
			Glyph:      rune(asciiTable[(r-Base)&dots1to6]),
			Emphasized: r > Base+dots1to6,
		})
	}
	return cells
}

// ToASCII converts Unicode braille to ASCII braille, one glyph per cell. Cells
// with dot 7 or dot 8 raised are wrapped in BoldOpen/BoldClose.
func ToASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range Glyphs(s) {
		if c.Emphasized {
			b.WriteString(BoldOpen)
			b.WriteRune(c.Glyph)
			b.WriteString(BoldClose)
			continue
		}
		b.WriteRune(c.Glyph)
	}
	return b.String()
}

// FromASCII converts ASCII braille to Unicode braille cells. Lowercase letters
// are folded to uppercase; characters without a braille meaning become blank cells.
func FromASCII(s string) string {
	var b strings.Builder
	for _, ch := range strings.ToUpper(s) {
		cell, ok := asciiToCell[ch]
		if !ok {
			cell = Base
		}
		b.WriteRune(cell)
	}
	return b.String()
}

// Emphasize raises dots 7 and 8 on every cell of s.
func Emphasize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if IsCell(r) {
			r |= 0xC0
		}
		b.WriteRune(r)
	}
	return b.String()
}
