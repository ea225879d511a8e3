package memory

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aretw0/mathview/pkg/domain"
)

var texSymbols = map[string]string{
	"pm": "±", "mp": "∓", "times": "×", "cdot": "⋅", "div": "÷",
	"le": "≤", "leq": "≤", "ge": "≥", "geq": "≥", "ne": "≠", "neq": "≠",
	"approx": "≈", "to": "→", "infty": "∞", "sum": "∑", "int": "∫",
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"theta": "θ", "lambda": "λ", "mu": "μ", "pi": "π", "sigma": "σ",
	"phi": "φ", "omega": "ω", "Delta": "Δ", "Sigma": "Σ", "Omega": "Ω",
	",": " ", ";": " ", "quad": " ",
}

// ASCIIMath words, longest first so that prefixes do not shadow them.
var asciiWords = []struct{ word, symbol string }{
	{"lambda", "λ"}, {"epsilon", "ε"}, {"alpha", "α"}, {"gamma", "γ"},
	{"delta", "δ"}, {"theta", "θ"}, {"sigma", "σ"}, {"omega", "ω"},
	{"beta", "β"}, {"sqrt", "sqrt"}, {"frac", "frac"}, {"oo", "∞"},
	{"pi", "π"}, {"mu", "μ"}, {"phi", "φ"}, {"xx", "×"},
	{"+-", "±"}, {"-+", "∓"}, {"<=", "≤"}, {">=", "≥"}, {"!=", "≠"}, {"->", "→"},
}

var operatorSymbols = "+-=<>*/,!|±∓×⋅÷≤≥≠≈→∑∫"

type converter struct {
	src      []rune
	pos      int
	notation domain.Notation
}

// convert parses TeX or ASCIIMath into a MathML tree rooted at <math>.
func convert(text string, notation domain.Notation) (*node, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty %s expression", notation)
	}
	c := &converter{src: []rune(text), notation: notation}
	row, err := c.expr(0)
	if err != nil {
		return nil, err
	}
	if c.pos < len(c.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d", c.src[c.pos], c.pos)
	}
	root := elem("math")
	for _, n := range unwrap(row) {
		root.append(n)
	}
	return root, nil
}

func unwrap(row *node) []*node {
	kids := row.Children
	row.Children = nil
	return kids
}

func (c *converter) peek() rune {
	if c.pos >= len(c.src) {
		return 0
	}
	return c.src[c.pos]
}

func (c *converter) skipSpace() {
	for c.pos < len(c.src) && unicode.IsSpace(c.src[c.pos]) {
		c.pos++
	}
}

func (c *converter) closer() rune {
	if c.notation == domain.NotationTeX {
		return '}'
	}
	return ')'
}

// expr reads terms until end of input or the closing delimiter, which is left
// unread. TeX \over splits the row into a fraction.
func (c *converter) expr(depth int) (*node, error) {
	row := elem("mrow")
	var numerator *node
	for {
		c.skipSpace()
		r := c.peek()
		if r == 0 || (depth > 0 && r == c.closer()) {
			break
		}
		if c.notation == domain.NotationTeX && c.hasPrefix(`\over`) && !c.isLetterAt(c.pos+5) {
			if numerator != nil {
				return nil, fmt.Errorf("ambiguous \\over at offset %d", c.pos)
			}
			c.pos += 5
			numerator = row
			row = elem("mrow")
			continue
		}
		t, err := c.term(depth)
		if err != nil {
			return nil, err
		}
		row.append(t)
	}
	if numerator != nil {
		return elem("mrow", elem("mfrac", single(numerator), single(row))), nil
	}
	return row, nil
}

// single collapses a one-child row into that child.
func single(row *node) *node {
	if len(row.Children) == 1 {
		only := row.Children[0]
		only.Parent = nil
		return only
	}
	return row
}

func (c *converter) term(depth int) (*node, error) {
	base, err := c.atom(depth)
	if err != nil {
		return nil, err
	}
	c.skipSpace()
	var sub, sup *node
	for r := c.peek(); r == '_' || r == '^'; r = c.peek() {
		c.pos++
		arg, err := c.script(depth)
		if err != nil {
			return nil, err
		}
		if r == '_' {
			sub = arg
		} else {
			sup = arg
		}
		c.skipSpace()
	}
	switch {
	case sub != nil && sup != nil:
		base = elem("msubsup", base, sub, sup)
	case sub != nil:
		base = elem("msub", base, sub)
	case sup != nil:
		base = elem("msup", base, sup)
	}

	if c.notation == domain.NotationASCIIMath && c.peek() == '/' {
		c.pos++
		c.skipSpace()
		den, err := c.term(depth)
		if err != nil {
			return nil, err
		}
		return elem("mfrac", stripParens(base), stripParens(den)), nil
	}
	return base, nil
}

func (c *converter) script(depth int) (*node, error) {
	c.skipSpace()
	if c.peek() == 0 {
		return nil, fmt.Errorf("missing script at offset %d", c.pos)
	}
	arg, err := c.atom(depth)
	if err != nil {
		return nil, err
	}
	if c.notation == domain.NotationASCIIMath {
		return stripParens(arg), nil
	}
	return arg, nil
}

// stripParens turns an ASCIIMath (...) group into a bare row.
func stripParens(n *node) *node {
	if n.Name != "mrow" || len(n.Children) < 2 {
		return n
	}
	first, last := n.Children[0], n.Children[len(n.Children)-1]
	if first.Text != "(" || last.Text != ")" {
		return n
	}
	inner := elem("mrow")
	for _, k := range n.Children[1 : len(n.Children)-1] {
		inner.append(k)
	}
	return single(inner)
}

func (c *converter) atom(depth int) (*node, error) {
	c.skipSpace()
	r := c.peek()
	switch {
	case r == 0:
		return nil, fmt.Errorf("unexpected end of input")
	case c.notation == domain.NotationTeX && r == '{':
		c.pos++
		return c.group(depth, "")
	case c.notation == domain.NotationASCIIMath && r == '(':
		c.pos++
		return c.group(depth, "(")
	case r == '}' || (c.notation == domain.NotationASCIIMath && r == ')'):
		return nil, fmt.Errorf("unbalanced %q at offset %d", r, c.pos)
	case c.notation == domain.NotationTeX && r == '\\':
		return c.command(depth)
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(c.at(c.pos+1))):
		return c.number(), nil
	}

	if c.notation == domain.NotationASCIIMath {
		for _, w := range asciiWords {
			if !c.hasPrefix(w.word) {
				continue
			}
			c.pos += len([]rune(w.word))
			switch w.symbol {
			case "sqrt":
				arg, err := c.script(depth)
				if err != nil {
					return nil, err
				}
				return elem("msqrt", arg), nil
			case "frac":
				num, err := c.script(depth)
				if err != nil {
					return nil, err
				}
				den, err := c.script(depth)
				if err != nil {
					return nil, err
				}
				return elem("mfrac", num, den), nil
			}
			return symbolToken(w.symbol), nil
		}
	}

	c.pos++
	if unicode.IsLetter(r) {
		return token("mi", string(r)), nil
	}
	return token("mo", string(r)), nil
}

func (c *converter) group(depth int, open string) (*node, error) {
	inner, err := c.expr(depth + 1)
	if err != nil {
		return nil, err
	}
	if c.peek() != c.closer() {
		return nil, fmt.Errorf("missing %q", c.closer())
	}
	c.pos++
	if open == "" {
		return single(inner), nil
	}
	row := elem("mrow", token("mo", open))
	for _, k := range unwrap(inner) {
		row.append(k)
	}
	row.append(token("mo", string(c.closer())))
	return row, nil
}

func (c *converter) command(depth int) (*node, error) {
	c.pos++ // backslash
	start := c.pos
	for c.pos < len(c.src) && unicode.IsLetter(c.src[c.pos]) {
		c.pos++
	}
	if c.pos == start && c.pos < len(c.src) {
		c.pos++
	}
	name := string(c.src[start:c.pos])

	switch name {
	case "frac":
		num, err := c.atom(depth)
		if err != nil {
			return nil, err
		}
		den, err := c.atom(depth)
		if err != nil {
			return nil, err
		}
		return elem("mfrac", num, den), nil
	case "sqrt":
		arg, err := c.atom(depth)
		if err != nil {
			return nil, err
		}
		return elem("msqrt", arg), nil
	case "left", "right":
		return c.atom(depth)
	}
	sym, ok := texSymbols[name]
	if !ok {
		return nil, fmt.Errorf("unknown command \\%s", name)
	}
	if sym == " " {
		return token("mspace", ""), nil
	}
	return symbolToken(sym), nil
}

func (c *converter) number() *node {
	start := c.pos
	for c.pos < len(c.src) && (unicode.IsDigit(c.src[c.pos]) || c.src[c.pos] == '.') {
		c.pos++
	}
	return token("mn", string(c.src[start:c.pos]))
}

func symbolToken(sym string) *node {
	if strings.Contains(operatorSymbols, sym) {
		return token("mo", sym)
	}
	return token("mi", sym)
}

func (c *converter) at(i int) rune {
	if i >= len(c.src) {
		return 0
	}
	return c.src[i]
}

func (c *converter) isLetterAt(i int) bool {
	return unicode.IsLetter(c.at(i))
}

func (c *converter) hasPrefix(s string) bool {
	return strings.HasPrefix(string(c.src[c.pos:]), s)
}
