// Package shared coordinates layout measurement across elements that take
// part in one shared layout transition.
package shared

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/go-drift/motion/pkg/batch"
	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/measure"
	"github.com/go-drift/motion/pkg/observe"
)

// Element is what a Group coordinates.
type Element interface {
	batch.Element
	measure.Handle
}

// record is one element's membership. layoutID is captured at registration;
// a changed id is picked up by the element's scheduler re-registering it.
type record[E Element] struct {
	element  E
	layoutID string
	order    int
	seq      int
}

// Group is a shared layout group. Members are kept in registration order;
// members with a layout id also belong to that id's stack, ordered by layout
// order and then by registration.
//
// Per cycle, the first SyncUpdate snapshots every member before the commit
// and Flush measures them after it. The host calls Flush once all
// after-commit callbacks of the cycle have run.
//
// Group is NOT thread-safe. It is driven from the UI thread.
type Group[E Element] struct {
	name    string
	records map[E]*record[E]
	stacks  map[string][]*record[E]
	seq     int
	pending bool
	batcher *batch.Batcher[E]

	// Logger receives debug output for membership changes. Nil disables
	// logging.
	Logger *log.Logger
}

// New creates an empty group. name labels the group in traces.
func New[E Element](name string) *Group[E] {
	return &Group[E]{
		name:    name,
		records: make(map[E]*record[E]),
		stacks:  make(map[string][]*record[E]),
		batcher: batch.New[E](),
	}
}

// Name returns the group's label.
func (g *Group[E]) Name() string {
	return g.name
}

// Register adds element to the group. Registering an element twice is
// reported and ignored.
func (g *Group[E]) Register(element E, order *measure.OrderConfig) {
	if _, ok := g.records[element]; ok {
		g.report("shared.Group.Register", element, false)
		return
	}
	g.seq++
	r := &record[E]{element: element, layoutID: element.LayoutID(), seq: g.seq}
	if order != nil {
		r.order = order.LayoutOrder
	}
	g.records[element] = r

	if r.layoutID != "" {
		stack := append(g.stacks[r.layoutID], r)
		slices.SortStableFunc(stack, compareRecords[E])
		g.stacks[r.layoutID] = stack
	}

	observe.Get().OnRegister(g.name, nameOf(element), r.order)
	g.debug("register", element, "layoutOrder", r.order)
}

// Remove drops element from the group. Removing an element that is not
// registered is reported and ignored.
func (g *Group[E]) Remove(element E) {
	r, ok := g.records[element]
	if !ok {
		g.report("shared.Group.Remove", element, true)
		return
	}
	delete(g.records, element)

	if r.layoutID != "" {
		stack := slices.DeleteFunc(g.stacks[r.layoutID], func(other *record[E]) bool {
			return other == r
		})
		if len(stack) == 0 {
			delete(g.stacks, r.layoutID)
		} else {
			g.stacks[r.layoutID] = stack
		}
	}

	observe.Get().OnRemove(g.name, nameOf(element))
	g.debug("remove", element)
}

// SyncUpdate snapshots every member ahead of the commit. Only the first call
// of a cycle does work.
func (g *Group[E]) SyncUpdate() {
	if g.pending {
		return
	}
	g.pending = true
	members := g.Members()
	for _, e := range members {
		e.SnapshotBoundingBox()
	}
	observe.Get().OnSyncUpdate(g.name, len(members))
}

// Flush measures every member after the commit, if a sync is pending.
func (g *Group[E]) Flush() {
	if !g.pending {
		return
	}
	g.pending = false
	for _, e := range g.Members() {
		g.batcher.Add(e)
	}
	g.batcher.Flush()
}

// Abort drops a pending sync without measuring, so the next SyncUpdate
// snapshots again. Hosts call it when a commit fails.
func (g *Group[E]) Abort() {
	g.pending = false
}

// Pending reports whether a sync is waiting for Flush.
func (g *Group[E]) Pending() bool {
	return g.pending
}

// Len returns the number of registered members.
func (g *Group[E]) Len() int {
	return len(g.records)
}

// Has reports whether element is registered.
func (g *Group[E]) Has(element E) bool {
	_, ok := g.records[element]
	return ok
}

// Members returns the registered elements in registration order.
func (g *Group[E]) Members() []E {
	records := make([]*record[E], 0, len(g.records))
	for _, r := range g.records {
		records = append(records, r)
	}
	slices.SortFunc(records, func(a, b *record[E]) int {
		return a.seq - b.seq
	})
	members := make([]E, len(records))
	for i, r := range records {
		members[i] = r.element
	}
	return members
}

// Stack returns the elements sharing layoutID, lowest layout order first.
func (g *Group[E]) Stack(layoutID string) []E {
	stack := g.stacks[layoutID]
	elements := make([]E, len(stack))
	for i, r := range stack {
		elements[i] = r.element
	}
	return elements
}

// Lead returns the element at the top of layoutID's stack: the highest
// layout order, latest registration winning ties.
func (g *Group[E]) Lead(layoutID string) (E, bool) {
	stack := g.stacks[layoutID]
	if len(stack) == 0 {
		var zero E
		return zero, false
	}
	return stack[len(stack)-1].element, true
}

func compareRecords[E Element](a, b *record[E]) int {
	if a.order != b.order {
		return a.order - b.order
	}
	return a.seq - b.seq
}

func (g *Group[E]) report(op string, element E, stale bool) {
	name := nameOf(element)
	errors.Report(&errors.MotionError{
		Op:      op,
		Kind:    errors.KindRegistration,
		Element: name,
		Err:     &errors.RegistrationError{Element: name, Stale: stale},
	})
}

func (g *Group[E]) debug(msg string, element E, keyvals ...any) {
	if g.Logger == nil {
		return
	}
	kv := []any{"group", g.name, "element", nameOf(element), "layoutID", element.LayoutID()}
	g.Logger.Debug(msg, append(kv, keyvals...)...)
}

func nameOf(e any) string {
	if n, ok := e.(interface{ Name() string }); ok {
		return n.Name()
	}
	if h, ok := e.(measure.Handle); ok {
		return h.LayoutID()
	}
	return ""
}
