package testing

import (
	"fmt"

	"github.com/go-drift/motion/pkg/measure"
)

// Call is one recorded collaborator call.
type Call struct {
	// Target names the receiver (element, group or batcher).
	Target string
	// Op is the operation: snapshot, add, flush, register, remove or sync.
	Op string
	// Element names the element argument, if any.
	Element string
	// Order is the layout order passed to register, if HasOrder.
	Order    int
	HasOrder bool
}

// String formats the call as Target.op(args), e.g. "G.register(E, 2)".
func (c Call) String() string {
	switch {
	case c.Op == "":
		return c.Target
	case c.Element == "":
		return c.Target + "." + c.Op
	case c.HasOrder:
		return fmt.Sprintf("%s.%s(%s, %d)", c.Target, c.Op, c.Element, c.Order)
	default:
		return fmt.Sprintf("%s.%s(%s)", c.Target, c.Op, c.Element)
	}
}

// Recorder collects calls from the fakes it creates.
type Recorder struct {
	calls []Call
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(c Call) {
	r.calls = append(r.calls, c)
}

// Mark records a host event, such as a commit, between collaborator calls.
func (r *Recorder) Mark(label string) {
	r.record(Call{Target: label})
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []Call {
	return append([]Call(nil), r.calls...)
}

// Ops returns the recorded calls formatted with Call.String.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.String()
	}
	return ops
}

// Count returns how many calls target received for op.
func (r *Recorder) Count(target, op string) int {
	n := 0
	for _, c := range r.calls {
		if c.Target == target && c.Op == op {
			n++
		}
	}
	return n
}

// Reset forgets all recorded calls.
func (r *Recorder) Reset() {
	r.calls = nil
}

// FakeElement is a measure.Handle that records snapshots.
type FakeElement struct {
	rec      *Recorder
	name     string
	layoutID string
}

// Element creates a fake element with the given name and layout id.
func (r *Recorder) Element(name, layoutID string) *FakeElement {
	return &FakeElement{rec: r, name: name, layoutID: layoutID}
}

// Name returns the element's name.
func (e *FakeElement) Name() string { return e.name }

// LayoutID returns the current layout id.
func (e *FakeElement) LayoutID() string { return e.layoutID }

// SetLayoutID changes the layout id, as a re-render would.
func (e *FakeElement) SetLayoutID(id string) { e.layoutID = id }

// SnapshotBoundingBox records a snapshot.
func (e *FakeElement) SnapshotBoundingBox() {
	e.rec.record(Call{Target: e.name, Op: "snapshot"})
}

// FakeGroup is a measure.Group that records calls and tracks membership.
// Contract violations are collected in Violations instead of failing.
type FakeGroup struct {
	rec        *Recorder
	name       string
	members    map[*FakeElement]bool
	Violations []string
}

// Group creates a fake shared layout group.
func (r *Recorder) Group(name string) *FakeGroup {
	return &FakeGroup{rec: r, name: name, members: make(map[*FakeElement]bool)}
}

// Register records a registration.
func (g *FakeGroup) Register(e *FakeElement, order *measure.OrderConfig) {
	c := Call{Target: g.name, Op: "register", Element: e.name}
	if order != nil {
		c.Order, c.HasOrder = order.LayoutOrder, true
	}
	g.rec.record(c)
	if g.members[e] {
		g.Violations = append(g.Violations, "duplicate register "+e.name)
	}
	g.members[e] = true
}

// Remove records a removal.
func (g *FakeGroup) Remove(e *FakeElement) {
	g.rec.record(Call{Target: g.name, Op: "remove", Element: e.name})
	if !g.members[e] {
		g.Violations = append(g.Violations, "stale remove "+e.name)
	}
	delete(g.members, e)
}

// SyncUpdate records a sync request.
func (g *FakeGroup) SyncUpdate() {
	g.rec.record(Call{Target: g.name, Op: "sync"})
}

// Has reports whether e is currently registered.
func (g *FakeGroup) Has(e *FakeElement) bool {
	return g.members[e]
}

// FakeBatcher is a measure.Batcher that records calls. Flush empties the
// queue and counts a measurement per queued element.
type FakeBatcher struct {
	rec      *Recorder
	name     string
	queue    []*FakeElement
	Measured int
}

// Batcher creates a fake batcher.
func (r *Recorder) Batcher(name string) *FakeBatcher {
	return &FakeBatcher{rec: r, name: name}
}

// Add records an addition and queues e once.
func (b *FakeBatcher) Add(e *FakeElement) {
	b.rec.record(Call{Target: b.name, Op: "add", Element: e.name})
	for _, queued := range b.queue {
		if queued == e {
			return
		}
	}
	b.queue = append(b.queue, e)
}

// Flush records a flush and measures the queued elements.
func (b *FakeBatcher) Flush() {
	b.rec.record(Call{Target: b.name, Op: "flush"})
	b.Measured += len(b.queue)
	b.queue = nil
}

// Pending returns the number of queued elements.
func (b *FakeBatcher) Pending() int {
	return len(b.queue)
}
