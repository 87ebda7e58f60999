// Package dom is a small headless element tree. Each element wraps a
// golang.org/x/net/html node holding its tag, attributes and tree links, and
// adds event listeners on the side. Elements are queried with CSS selectors
// compiled by cascadia and render through html.Render.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HiddenClass is the utility class used to hide elements.
const HiddenClass = "hidden"

// Attrs configures an element built with El.
//
//	"class"                  string, assigned to the class attribute
//	"data"                   map[string]string, each key becomes data-<kebab-key>
//	"on<Event>"              Handler or func(*Event), registered as a listener
//	anything else            plain attribute; bool true renders a bare attribute
type Attrs map[string]any

// Element is either an element node or a text node. The wrapped node and the
// parent/children links below always describe the same tree.
type Element struct {
	n         *html.Node
	children  []*Element
	parent    *Element
	listeners map[string][]Handler
}

// El builds an element. Children may be strings (text nodes), *Element, slices of
// either, or nil (skipped).
func El(tag string, attrs Attrs, children ...any) *Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	e := &Element{n: &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.applyAttr(k, attrs[k])
	}
	e.Append(children...)
	return e
}

// Text returns a text node.
func Text(s string) *Element {
	return &Element{n: &html.Node{Type: html.TextNode, Data: s}}
}

func (e *Element) applyAttr(key string, v any) {
	if v == nil {
		return
	}
	switch key {
	case "class", "className":
		if s := fmt.Sprint(v); s != "" {
			e.SetAttr("class", s)
		}
		return
	case "data", "dataset":
		if m, ok := v.(map[string]string); ok {
			dk := make([]string, 0, len(m))
			for k := range m {
				dk = append(dk, k)
			}
			sort.Strings(dk)
			for _, k := range dk {
				e.SetData(k, m[k])
			}
			return
		}
	}
	if len(key) > 2 && strings.HasPrefix(key, "on") {
		event := strings.ToLower(key[2:])
		switch h := v.(type) {
		case Handler:
			e.On(event, h)
			return
		case func(*Event):
			e.On(event, h)
			return
		}
	}
	switch val := v.(type) {
	case string:
		e.SetAttr(key, val)
	case bool:
		if val {
			e.SetAttr(key, "")
		}
	default:
		e.SetAttr(key, fmt.Sprint(val))
	}
}

// Tag returns the lower-cased tag name, or "" for text nodes.
func (e *Element) Tag() string {
	if e.IsText() {
		return ""
	}
	return e.n.Data
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool { return e.n.Type == html.TextNode }

// Parent returns the parent element, nil for roots.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the direct children, text nodes included.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

// Append adds children to e. See El for accepted values.
func (e *Element) Append(children ...any) *Element {
	for _, c := range children {
		switch v := c.(type) {
		case nil:
		case string:
			e.appendChild(Text(v))
		case *Element:
			if v != nil {
				e.appendChild(v)
			}
		case []*Element:
			for _, child := range v {
				if child != nil {
					e.appendChild(child)
				}
			}
		case []any:
			e.Append(v...)
		case fmt.Stringer:
			e.appendChild(Text(v.String()))
		}
	}
	return e
}

func (e *Element) appendChild(child *Element) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.n.AppendChild(child.n)
}

func (e *Element) removeChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			e.n.RemoveChild(child.n)
			child.parent = nil
			return
		}
	}
}

// Clear removes every child.
func (e *Element) Clear() {
	for _, c := range e.children {
		e.n.RemoveChild(c.n)
		c.parent = nil
	}
	e.children = nil
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or "" when absent.
func (e *Element) AttrOr(name string) string {
	v, _ := e.Attr(name)
	return v
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	if e.IsText() {
		return
	}
	name = strings.ToLower(name)
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the id attribute.
func (e *Element) ID() string { return e.AttrOr("id") }

// Data returns data-<key>; key may be camelCase like the DOM dataset.
func (e *Element) Data(key string) string { return e.AttrOr("data-" + kebab(key)) }

// SetData sets data-<key>.
func (e *Element) SetData(key, value string) { e.SetAttr("data-"+kebab(key), value) }

// Classes returns the class list.
func (e *Element) Classes() []string { return strings.Fields(e.AttrOr("class")) }

// HasClass reports whether class is in the class list.
func (e *Element) HasClass(class string) bool {
	for _, c := range e.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// SetClass adds or removes class.
func (e *Element) SetClass(class string, on bool) {
	classes := e.Classes()
	out := classes[:0]
	found := false
	for _, c := range classes {
		if c == class {
			found = true
			if !on {
				continue
			}
		}
		out = append(out, c)
	}
	if on && !found {
		out = append(out, class)
	}
	if len(out) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(out, " "))
}

// ToggleClass flips class and returns whether it is now present.
func (e *Element) ToggleClass(class string) bool {
	on := !e.HasClass(class)
	e.SetClass(class, on)
	return on
}

// Hidden reports whether the element carries the hidden utility class.
func (e *Element) Hidden() bool { return e.HasClass(HiddenClass) }

// Visible reports whether neither e nor any ancestor is hidden.
func (e *Element) Visible() bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.Hidden() {
			return false
		}
	}
	return true
}

// TextContent returns the concatenated text of e and its descendants.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.n.Data
	}
	var b strings.Builder
	e.walk(func(n *Element) bool {
		if n.IsText() {
			b.WriteString(n.n.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(s string) {
	if e.IsText() {
		e.n.Data = s
		return
	}
	e.Clear()
	if s != "" {
		e.appendChild(Text(s))
	}
}

// Value returns the form value: the selected option for <select>, the value attribute otherwise.
func (e *Element) Value() string {
	if e.Tag() != "select" {
		return e.AttrOr("value")
	}
	options := e.QueryAll("option")
	for _, o := range options {
		if o.HasAttr("selected") {
			return o.AttrOr("value")
		}
	}
	if len(options) > 0 {
		return options[0].AttrOr("value")
	}
	return ""
}

// SetValue sets the value attribute, or marks the matching option of a <select>.
func (e *Element) SetValue(v string) {
	if e.Tag() != "select" {
		e.SetAttr("value", v)
		return
	}
	for _, o := range e.QueryAll("option") {
		if o.AttrOr("value") == v {
			o.SetAttr("selected", "")
		} else {
			o.RemoveAttr("selected")
		}
	}
}

// walk visits e and its descendants depth-first until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Render writes e as HTML.
func (e *Element) Render(w io.Writer) error {
	return html.Render(w, e.n)
}

// HTML returns the rendered markup, or "" on render errors.
func (e *Element) HTML() string {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func kebab(key string) string {
	var b strings.Builder
	for i, r := range key {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
