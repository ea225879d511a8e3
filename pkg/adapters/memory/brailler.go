package memory

import (
	"strings"
	"unicode"

	"github.com/aretw0/mathview/pkg/braille"
)

// ASCII braille for each supported code.
var (
	nemethOperators = map[string]string{
		"+": "+", "-": "-", "=": " .K ", "±": "+-", "∓": "-+", "×": "@*", "⋅": "*",
		"*": "*", "÷": "./", "/": "_/", "(": "(", ")": ")", ",": "_", "<": " \"K ",
		">": " .1 ", "≤": " \"K:", "≥": " .1:", "≠": " ./K ", "!": "&", "|": "\\",
	}
	uebOperators = map[string]string{
		"+": "\"6", "-": "\"-", "=": "\"7", "±": "@+", "∓": "@-", "×": "\"8", "⋅": "\"4",
		"*": "\"9", "÷": "\"/", "/": "_/", "(": "\"<", ")": "\">", ",": "1", "<": "@<",
		">": "@>", "≤": "_@<", "≥": "_@>", "≠": "\"7@:", "!": "6", "|": "_\\",
	}
	greekLetters = map[string]string{
		"α": "A", "β": "B", "γ": "G", "δ": "D", "ε": "E", "θ": "?", "λ": "L", "μ": "M",
		"π": "P", "σ": "S", "φ": "F", "ω": "W", "Δ": ",D", "Σ": ",S", "Ω": ",W",
	}
	uebDigits = map[rune]byte{'1': 'A', '2': 'B', '3': 'C', '4': 'D', '5': 'E', '6': 'F', '7': 'G', '8': 'H', '9': 'I', '0': 'J'}
)

// unknownCell marks symbols the reference tables do not cover.
const unknownCell = "="

type brailler struct {
	code      string
	highlight string
	focus     string

	out        strings.Builder
	focusStart int
	focusEnd   int
}

// render returns Unicode braille for root, emphasizing the focused node's cells
// according to the highlight mode.
func (b *brailler) render(root *node) string {
	b.focusStart, b.focusEnd = -1, -1
	b.node(root)

	cells := []rune(braille.FromASCII(b.out.String()))
	if b.focusStart < 0 || b.focusEnd <= b.focusStart {
		return string(cells)
	}
	last := b.focusEnd - 1
	for i := b.focusStart; i <= last; i++ {
		var mark bool
		switch b.highlight {
		case "All":
			mark = true
		case "FirstChar":
			mark = i == b.focusStart
		case "EndPoints":
			mark = i == b.focusStart || i == last
		}
		if mark {
			cells[i] = []rune(braille.Emphasize(string(cells[i])))[0]
		}
	}
	return string(cells)
}

func (b *brailler) nemeth() bool {
	return b.code != "UEB"
}

func (b *brailler) node(n *node) {
	focused := b.focus != "" && n.ID == b.focus
	if focused {
		b.focusStart = b.out.Len()
	}
	b.contents(n)
	if focused {
		b.focusEnd = b.out.Len()
	}
}

func (b *brailler) contents(n *node) {
	kids := n.Children
	switch n.Name {
	case "mi", "mtext":
		b.identifier(n.Text)
		return
	case "mn":
		b.number(n.Text)
		return
	case "mo":
		b.operator(n.Text)
		return
	case "mspace":
		return
	case "msup", "msub", "msubsup":
		if len(kids) < 2 {
			break
		}
		b.node(kids[0])
		if n.Name != "msup" {
			b.script(kids[1], ";", "5")
		}
		if n.Name == "msup" {
			b.script(kids[1], "^", "9")
		} else if len(kids) == 3 {
			b.script(kids[2], "^", "9")
		}
		if b.nemeth() {
			b.out.WriteString("\"")
		}
		return
	case "mfrac":
		if len(kids) != 2 {
			break
		}
		if b.nemeth() {
			b.out.WriteString("?")
			b.node(kids[0])
			b.out.WriteString("/")
			b.node(kids[1])
			b.out.WriteString("#")
		} else {
			b.out.WriteString("(")
			b.node(kids[0])
			b.out.WriteString("./")
			b.node(kids[1])
			b.out.WriteString(")")
		}
		return
	case "msqrt":
		if b.nemeth() {
			b.out.WriteString(">")
			b.children(kids)
			b.out.WriteString("]")
		} else {
			b.out.WriteString("%")
			b.children(kids)
			b.out.WriteString("+")
		}
		return
	}
	b.children(kids)
}

func (b *brailler) children(kids []*node) {
	for _, k := range kids {
		b.node(k)
	}
}

func (b *brailler) script(n *node, nemeth, ueb string) {
	if b.nemeth() {
		b.out.WriteString(nemeth)
		b.node(n)
		return
	}
	b.out.WriteString(ueb)
	if n.isLeaf() {
		b.node(n)
		return
	}
	b.out.WriteString("\"<")
	b.node(n)
	b.out.WriteString("\">")
}

func (b *brailler) identifier(text string) {
	for _, r := range text {
		switch {
		case r < unicode.MaxASCII && unicode.IsUpper(r):
			b.out.WriteByte(',')
			b.out.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			b.out.WriteRune(unicode.ToUpper(r))
		default:
			if g, ok := greekLetters[string(r)]; ok {
				b.out.WriteString(".")
				b.out.WriteString(g)
				continue
			}
			if r == '∞' {
				b.out.WriteString(",=")
				continue
			}
			b.out.WriteString(unknownCell)
		}
	}
}

func (b *brailler) number(text string) {
	b.out.WriteByte('#')
	for _, r := range text {
		switch {
		case r == '.':
			b.out.WriteByte('4')
		case b.nemeth():
			b.out.WriteRune(r)
		default:
			b.out.WriteByte(uebDigits[r])
		}
	}
}

func (b *brailler) operator(text string) {
	table := uebOperators
	if b.nemeth() {
		table = nemethOperators
	}
	if cells, ok := table[text]; ok {
		b.out.WriteString(cells)
		return
	}
	b.out.WriteString(unknownCell)
}
