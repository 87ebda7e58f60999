package dom

import (
	"fmt"
	"sync"

	"github.com/andybalholm/cascadia"
)

// Selector is a compiled CSS selector group.
type Selector struct {
	src   string
	group cascadia.SelectorGroup
}

var compiled sync.Map // string -> Selector

// Compile parses sel with cascadia. Invalid selectors return an error.
func Compile(sel string) (Selector, error) {
	if s, ok := compiled.Load(sel); ok {
		return s.(Selector), nil
	}
	group, err := cascadia.ParseGroup(sel)
	if err != nil {
		return Selector{}, fmt.Errorf("dom: selector %q: %w", sel, err)
	}
	s := Selector{src: sel, group: group}
	compiled.Store(sel, s)
	return s, nil
}

// MustCompile is like Compile but panics on invalid selectors. The string
// helpers on Element use it, so they are meant for selector literals.
func MustCompile(sel string) Selector {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the source selector.
func (s Selector) String() string { return s.src }

// Match reports whether e matches s in the context of its tree.
func (s Selector) Match(e *Element) bool {
	if e == nil || e.IsText() || s.group == nil {
		return false
	}
	return s.group.Match(e.n)
}

// Matches reports whether e matches the selector.
func (e *Element) Matches(sel string) bool {
	return MustCompile(sel).Match(e)
}

// Closest returns the nearest inclusive ancestor matching sel.
func (e *Element) Closest(sel string) *Element {
	return e.ClosestSel(MustCompile(sel))
}

// ClosestSel is Closest with a compiled selector.
func (e *Element) ClosestSel(s Selector) *Element {
	for cur := e; cur != nil; cur = cur.parent {
		if s.Match(cur) {
			return cur
		}
	}
	return nil
}

// Query returns the first descendant (excluding e) matching sel in document order.
func (e *Element) Query(sel string) *Element {
	return e.QuerySel(MustCompile(sel))
}

// QuerySel is Query with a compiled selector.
func (e *Element) QuerySel(s Selector) *Element {
	var found *Element
	e.descendants(func(n *Element) bool {
		if s.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// QueryAll returns every descendant (excluding e) matching sel in document order.
func (e *Element) QueryAll(sel string) []*Element {
	return e.QueryAllSel(MustCompile(sel))
}

// QueryAllSel is QueryAll with a compiled selector.
func (e *Element) QueryAllSel(s Selector) []*Element {
	var out []*Element
	e.descendants(func(n *Element) bool {
		if s.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// ByID returns the first descendant whose id attribute equals id. Unlike
// Query("#"+id) it accepts ids that are not valid CSS identifiers.
func (e *Element) ByID(id string) *Element {
	if id == "" {
		return nil
	}
	var found *Element
	e.descendants(func(n *Element) bool {
		if !n.IsText() && n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func (e *Element) descendants(fn func(*Element) bool) {
	for _, c := range e.children {
		if !c.walk(fn) {
			return
		}
	}
}
