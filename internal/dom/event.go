package dom

import "context"

// Handler reacts to an event dispatched on an element or one of its descendants.
type Handler func(ev *Event)

// Event is dispatched on a target and bubbles up through its ancestors.
type Event struct {
	Type  string
	Key   string
	Value string
	Ctx   context.Context

	Target        *Element
	CurrentTarget *Element

	defaultPrevented bool
	stopped          bool
}

// NewEvent returns an event of the given type bound to ctx.
func NewEvent(ctx context.Context, typ string) *Event {
	return &Event{Type: typ, Ctx: ctx}
}

// Context returns the event context, never nil.
func (ev *Event) Context() context.Context {
	if ev == nil || ev.Ctx == nil {
		return context.Background()
	}
	return ev.Ctx
}

// PreventDefault marks the default action as cancelled.
func (ev *Event) PreventDefault() { ev.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (ev *Event) DefaultPrevented() bool { return ev.defaultPrevented }

// StopPropagation prevents the event from reaching further ancestors.
func (ev *Event) StopPropagation() { ev.stopped = true }

// On registers h for events of type typ on e.
func (e *Element) On(typ string, h Handler) {
	if h == nil || e.IsText() {
		return
	}
	if e.listeners == nil {
		e.listeners = map[string][]Handler{}
	}
	e.listeners[typ] = append(e.listeners[typ], h)
}

// HasListener reports whether e has at least one listener for typ.
func (e *Element) HasListener(typ string) bool {
	return len(e.listeners[typ]) > 0
}

// Dispatch delivers ev to e and then bubbles it to the ancestors. The ancestor
// chain is captured before any listener runs. It reports whether the default
// action was not prevented.
func (e *Element) Dispatch(ev *Event) bool {
	if ev == nil {
		return true
	}
	ev.Target = e
	var path []*Element
	for cur := e; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for _, cur := range path {
		handlers := append([]Handler(nil), cur.listeners[ev.Type]...)
		ev.CurrentTarget = cur
		for _, h := range handlers {
			h(ev)
		}
		if ev.stopped {
			break
		}
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}
