package memory

import (
	"errors"
	"fmt"

	"github.com/aretw0/mathview/pkg/domain"
)

var (
	errAtStart      = errors.New("already at the start of the expression")
	errAtEnd        = errors.New("already at the end of the expression")
	errAtTop        = errors.New("already at the whole expression")
	errAtBottom     = errors.New("no smaller part to move into")
	errNoPlacemark  = errors.New("placemarker is not set")
	errNoHistory    = errors.New("nothing to go back to")
	errCharacterNav = errors.New("not available in character mode")
)

// navigator moves a cursor over the registered expression. The cursor is nil
// when the whole expression is in focus.
type navigator struct {
	root       *node
	cur        *node
	history    []*node
	placemarks [10]*node
}

func newNavigator(root *node) *navigator {
	return &navigator{root: root}
}

func (n *navigator) focus() *node {
	if n.cur == nil {
		return n.root
	}
	return n.cur
}

// move applies key under mode and returns the new focus.
func (n *navigator) move(key domain.KeyEvent, mode string) (*node, error) {
	if key.Code >= domain.KeyCodeDigit0 && key.Code <= domain.KeyCodeDigit9 {
		return n.placemark(key.Code-domain.KeyCodeDigit0, key.Ctrl)
	}

	var (
		next *node
		err  error
	)
	switch key.Code {
	case domain.KeyCodeEnter, domain.KeyCodeSpace:
		return n.focus(), nil
	case domain.KeyCodeBackspace:
		if len(n.history) == 0 {
			return nil, errNoHistory
		}
		n.cur = n.history[len(n.history)-1]
		n.history = n.history[:len(n.history)-1]
		return n.focus(), nil
	case domain.KeyCodeHome:
		next, err = n.edge(true, mode)
	case domain.KeyCodeEnd:
		next, err = n.edge(false, mode)
	case domain.KeyCodeArrowRight:
		next, err = n.sideways(1, mode)
	case domain.KeyCodeArrowLeft:
		next, err = n.sideways(-1, mode)
	case domain.KeyCodeArrowUp:
		next, err = n.up(mode)
	case domain.KeyCodeArrowDown:
		next, err = n.down(mode)
	default:
		return nil, fmt.Errorf("unsupported key %q", key.Key)
	}
	if err != nil {
		return nil, err
	}
	n.history = append(n.history, n.cur)
	n.setCursor(next)
	return next, nil
}

// setCursor stores target, folding the root into the nil cursor.
func (n *navigator) setCursor(target *node) {
	if target == n.root {
		target = nil
	}
	n.cur = target
}

func (n *navigator) placemark(slot int, set bool) (*node, error) {
	if set {
		n.placemarks[slot] = n.focus()
		return n.focus(), nil
	}
	target := n.placemarks[slot]
	if target == nil {
		return nil, errNoPlacemark
	}
	n.history = append(n.history, n.cur)
	n.setCursor(target)
	return target, nil
}

func (n *navigator) edge(first bool, mode string) (*node, error) {
	if mode == "Character" {
		leaves := n.root.leaves()
		if first {
			return leaves[0], nil
		}
		return leaves[len(leaves)-1], nil
	}
	siblings := n.root.Children
	if n.cur != nil && n.cur.Parent != nil {
		siblings = n.cur.Parent.Children
	}
	if len(siblings) == 0 {
		return nil, errAtBottom
	}
	if first {
		return siblings[0], nil
	}
	return siblings[len(siblings)-1], nil
}

func (n *navigator) sideways(dir int, mode string) (*node, error) {
	if mode == "Character" {
		return n.nextLeaf(dir)
	}
	cur := n.cur
	if cur == nil {
		if len(n.root.Children) == 0 {
			return nil, errAtBottom
		}
		if dir > 0 {
			return n.root.Children[0], nil
		}
		return nil, errAtStart
	}
	for cur.Parent != nil {
		i := cur.index() + dir
		if i >= 0 && i < len(cur.Parent.Children) {
			return cur.Parent.Children[i], nil
		}
		// Simple mode stays within the current row.
		if mode == "Simple" {
			break
		}
		cur = cur.Parent
	}
	if dir > 0 {
		return nil, errAtEnd
	}
	return nil, errAtStart
}

func (n *navigator) nextLeaf(dir int) (*node, error) {
	leaves := n.root.leaves()
	if n.cur == nil {
		if dir > 0 {
			return leaves[0], nil
		}
		return nil, errAtStart
	}
	var pos int
	if n.cur.isLeaf() {
		pos = indexOf(leaves, n.cur)
	} else {
		// An interior focus continues from its outermost leaf in the direction of travel.
		own := n.cur.leaves()
		if dir > 0 {
			pos = indexOf(leaves, own[len(own)-1])
		} else {
			pos = indexOf(leaves, own[0])
		}
	}
	next := pos + dir
	switch {
	case next < 0:
		return nil, errAtStart
	case next >= len(leaves):
		return nil, errAtEnd
	}
	return leaves[next], nil
}

func indexOf(list []*node, n *node) int {
	for i, c := range list {
		if c == n {
			return i
		}
	}
	return -1
}

func (n *navigator) up(mode string) (*node, error) {
	if mode == "Character" {
		return nil, errCharacterNav
	}
	if n.cur == nil {
		return nil, errAtTop
	}
	return n.cur.Parent, nil
}

func (n *navigator) down(mode string) (*node, error) {
	if mode == "Character" {
		return nil, errCharacterNav
	}
	f := n.focus()
	if f.isLeaf() {
		return nil, errAtBottom
	}
	return f.Children[0], nil
}
