package memory

import (
	"strings"
)

var operatorWords = map[string]string{
	"+": "plus", "-": "minus", "=": "equals", "±": "plus or minus", "∓": "minus or plus",
	"×": "times", "⋅": "times", "*": "times", "÷": "divided by", "/": "divided by",
	"<": "is less than", ">": "is greater than", "≤": "is less than or equal to",
	"≥": "is greater than or equal to", "≠": "is not equal to", "≈": "is approximately equal to",
	"→": "approaches", "(": "open paren", ")": "close paren", ",": "comma", "!": "factorial",
	"|": "vertical bar", "∑": "sum", "∫": "integral",
}

var identifierWords = map[string]string{
	"α": "alpha", "β": "beta", "γ": "gamma", "δ": "delta", "ε": "epsilon",
	"θ": "theta", "λ": "lambda", "μ": "mu", "π": "pi", "σ": "sigma",
	"φ": "phi", "ω": "omega", "Δ": "cap delta", "Σ": "cap sigma", "Ω": "cap omega",
	"∞": "infinity",
}

var powerWords = map[string]string{"2": "squared", "3": "cubed"}

type speaker struct {
	style     string
	verbosity string
	overrides map[string]string
}

func (s speaker) the() string {
	if s.verbosity == "Terse" {
		return ""
	}
	return "the "
}

func (s speaker) word(text string, table map[string]string) string {
	if w, ok := s.overrides[text]; ok {
		return w
	}
	if w, ok := table[text]; ok {
		return w
	}
	return text
}

func (s speaker) speak(n *node) string {
	return strings.Join(strings.Fields(s.render(n)), " ")
}

func (s speaker) render(n *node) string {
	switch n.Name {
	case "mi", "mtext":
		return s.word(n.Text, identifierWords)
	case "mn":
		return n.Text
	case "mo":
		return s.word(n.Text, operatorWords)
	case "mspace":
		return ""
	}

	kids := n.Children
	switch {
	case n.Name == "msup" && len(kids) == 2:
		return s.power(kids[0], kids[1])
	case n.Name == "msub" && len(kids) == 2:
		return s.render(kids[0]) + " sub " + s.render(kids[1])
	case n.Name == "msubsup" && len(kids) == 3:
		return s.render(kids[0]) + " sub " + s.render(kids[1]) + " " + s.power(token("mspace", ""), kids[2])
	case n.Name == "mfrac" && len(kids) == 2:
		return s.fraction(kids[0], kids[1])
	case n.Name == "msqrt":
		return s.root(elemView(kids))
	}

	parts := make([]string, 0, len(kids))
	for _, k := range kids {
		if w := s.render(k); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}

// elemView treats a child list as one row without reparenting it.
func elemView(kids []*node) *node {
	if len(kids) == 1 {
		return kids[0]
	}
	return &node{Name: "mrow", Children: kids}
}

func (s speaker) power(base, exp *node) string {
	b, e := s.render(base), s.render(exp)
	if s.style == "SimpleSpeak" {
		if exp.isLeaf() {
			return b + " superscript " + e
		}
		return b + " superscript " + e + " end superscript"
	}
	if w, ok := powerWords[e]; ok && exp.Name == "mn" {
		return b + " " + w
	}
	return b + " to the " + e + " power"
}

func (s speaker) fraction(num, den *node) string {
	n, d := s.render(num), s.render(den)
	if s.style == "SimpleSpeak" {
		if num.isLeaf() && den.isLeaf() {
			return n + " over " + d
		}
		return "fraction " + n + " over " + d + " end fraction"
	}
	if s.verbosity == "Terse" {
		return n + " over " + d
	}
	return s.the() + "fraction with numerator " + n + " and denominator " + d
}

func (s speaker) root(arg *node) string {
	a := s.render(arg)
	if s.style == "SimpleSpeak" {
		if arg.isLeaf() {
			return "square root of " + a
		}
		return "square root of " + a + " end root"
	}
	return s.the() + "square root of " + a
}

// ssml wraps plain speech for engines configured with TTS=SSML.
func ssml(text string) string {
	return "<speak>" + escape(text) + "</speak>"
}
