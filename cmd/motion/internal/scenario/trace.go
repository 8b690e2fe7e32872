package scenario

import (
	"fmt"
	"strings"

	"github.com/go-drift/motion/pkg/geometry"
	"github.com/go-drift/motion/pkg/observe"
)

// EventKind classifies a trace event.
type EventKind string

const (
	EventCycle    EventKind = "cycle"
	EventCommit   EventKind = "commit"
	EventSnapshot EventKind = "snapshot"
	EventAdd      EventKind = "add"
	EventFlush    EventKind = "flush"
	EventRegister EventKind = "register"
	EventRemove   EventKind = "remove"
	EventSync     EventKind = "sync"
	EventMeasure  EventKind = "measure"
	EventReady    EventKind = "ready"
	EventSkip     EventKind = "skip"
)

// Event is one line of a replay trace.
type Event struct {
	Cycle   int
	Kind    EventKind
	Element string
	Group   string
	Detail  string
}

func (e Event) String() string {
	parts := make([]string, 0, 4)
	if e.Group != "" {
		parts = append(parts, e.Group)
	}
	parts = append(parts, string(e.Kind))
	if e.Element != "" {
		parts = append(parts, e.Element)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	return strings.Join(parts, " ")
}

// Trace records collaborator activity as observe hooks.
type Trace struct {
	cycle  int
	Events []Event
}

var _ observe.Hooks = (*Trace)(nil)

func (t *Trace) add(e Event) {
	e.Cycle = t.cycle
	t.Events = append(t.Events, e)
}

func (t *Trace) beginCycle(n int) {
	t.cycle = n
	t.add(Event{Kind: EventCycle, Detail: fmt.Sprint(n)})
}

// Cycles returns the number of cycles the trace covers.
func (t *Trace) Cycles() int {
	return t.cycle
}

// Kinds returns the event kinds in order, useful for compact assertions.
func (t *Trace) Kinds() []EventKind {
	kinds := make([]EventKind, len(t.Events))
	for i, e := range t.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (t *Trace) OnSnapshot(element string, box geometry.Rect) {
	t.add(Event{Kind: EventSnapshot, Element: element, Detail: formatRect(box)})
}

func (t *Trace) OnMeasure(element string, box geometry.Rect) {
	t.add(Event{Kind: EventMeasure, Element: element, Detail: formatRect(box)})
}

func (t *Trace) OnLayoutReady(element string, delta geometry.Delta) {
	detail := "in place"
	if !delta.IsIdentity() {
		detail = fmt.Sprintf("from translate(%g, %g) scale(%g, %g)",
			delta.Translate.X, delta.Translate.Y, delta.Scale.X, delta.Scale.Y)
	}
	t.add(Event{Kind: EventReady, Element: element, Detail: detail})
}

func (t *Trace) OnBatchAdd(element string) {
	t.add(Event{Kind: EventAdd, Element: element})
}

func (t *Trace) OnBatchFlush(count int) {
	t.add(Event{Kind: EventFlush, Detail: fmt.Sprintf("%d measured", count)})
}

func (t *Trace) OnRegister(group, element string, order int) {
	t.add(Event{Kind: EventRegister, Group: group, Element: element, Detail: fmt.Sprintf("order=%d", order)})
}

func (t *Trace) OnRemove(group, element string) {
	t.add(Event{Kind: EventRemove, Group: group, Element: element})
}

func (t *Trace) OnSyncUpdate(group string, members int) {
	t.add(Event{Kind: EventSync, Group: group, Detail: fmt.Sprintf("%d members", members)})
}

func formatRect(r geometry.Rect) string {
	return fmt.Sprintf("[%g %g %g %g]", r.Left, r.Top, r.Width(), r.Height())
}
