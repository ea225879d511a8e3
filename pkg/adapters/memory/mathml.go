package memory

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// node is one MathML element. Token elements (mi, mn, mo, mtext) carry Text.
type node struct {
	Name     string
	Attrs    []xml.Attr
	Text     string
	Children []*node
	Parent   *node
	ID       string
}

func elem(name string, children ...*node) *node {
	n := &node{Name: name}
	for _, c := range children {
		n.append(c)
	}
	return n
}

func token(name, text string) *node {
	return &node{Name: name, Text: text}
}

func (n *node) append(c *node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

func (n *node) isLeaf() bool {
	return len(n.Children) == 0
}

// index returns the position of n among its siblings.
func (n *node) index() int {
	if n.Parent == nil {
		return 0
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *node) walk(fn func(*node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

func (n *node) leaves() []*node {
	var out []*node
	n.walk(func(c *node) {
		if c.isLeaf() {
			out = append(out, c)
		}
	})
	return out
}

func (n *node) find(id string) *node {
	var found *node
	n.walk(func(c *node) {
		if found == nil && c.ID == id {
			found = c
		}
	})
	return found
}

// assignIDs numbers every element in document order, replacing any ids
// the markup came with.
func (n *node) assignIDs() {
	next := 0
	n.walk(func(c *node) {
		c.ID = "id-" + strconv.Itoa(next)
		next++
		attrs := c.Attrs[:0]
		for _, a := range c.Attrs {
			if a.Name.Local != "id" {
				attrs = append(attrs, a)
			}
		}
		c.Attrs = attrs
	})
}

func (n *node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *node) write(b *strings.Builder) {
	b.WriteByte('<')
	b.WriteString(n.Name)
	for _, a := range n.Attrs {
		fmt.Fprintf(b, " %s='%s'", a.Name.Local, escape(a.Value))
	}
	if n.ID != "" {
		fmt.Fprintf(b, " id='%s'", n.ID)
	}
	b.WriteByte('>')
	if n.isLeaf() {
		b.WriteString(escape(n.Text))
	}
	for _, c := range n.Children {
		c.write(b)
	}
	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// parseMarkup reads MathML into a tree. Namespace prefixes are dropped and
// whitespace between elements is ignored. The root must be a math element.
func parseMarkup(markup string) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true

	var root, cur *node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid markup: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value})
			}
			if cur == nil {
				if root != nil {
					return nil, errors.New("invalid markup: more than one root element")
				}
				root = n
			} else {
				cur.append(n)
			}
			cur = n
		case xml.EndElement:
			if cur == nil {
				return nil, errors.New("invalid markup: unbalanced end tag")
			}
			cur = cur.Parent
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" {
				continue
			}
			if cur == nil {
				return nil, errors.New("invalid markup: text outside the root element")
			}
			cur.Text += text
		}
	}
	if root == nil {
		return nil, errors.New("invalid markup: no elements")
	}
	if root.Name != "math" {
		return nil, fmt.Errorf("invalid markup: root is <%s>, want <math>", root.Name)
	}
	return root, nil
}
