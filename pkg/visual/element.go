// Package visual provides a reference animatable element for layout
// measurement.
package visual

import (
	"github.com/google/uuid"

	"github.com/go-drift/motion/pkg/geometry"
	"github.com/go-drift/motion/pkg/observe"
)

// Element is a minimal animatable node handle. It owns no geometry logic of
// its own: a measure function supplies its current box, and the element
// remembers the box at snapshot time and at measurement time.
//
// Element is NOT thread-safe; it belongs to the UI thread like the rest of
// the tree.
type Element struct {
	id       string
	name     string
	layoutID string
	depth    int
	measure  func() geometry.Rect

	snapshot    geometry.Rect
	hasSnapshot bool
	layout      geometry.Rect
	hasLayout   bool
	projecting  bool
	detached    bool

	listeners      map[int]func(geometry.Delta)
	nextListenerID int
}

// Option configures an Element.
type Option func(*Element)

// WithLayoutID sets the identity shared across renders.
func WithLayoutID(id string) Option {
	return func(e *Element) { e.layoutID = id }
}

// WithDepth sets the element's depth in the tree (root is 0).
func WithDepth(depth int) Option {
	return func(e *Element) { e.depth = depth }
}

// WithMeasure sets the function that reports the element's current box.
func WithMeasure(fn func() geometry.Rect) Option {
	return func(e *Element) { e.measure = fn }
}

// New creates an element. An empty name falls back to the element's id.
func New(name string, opts ...Option) *Element {
	e := &Element{
		id:        uuid.NewString(),
		name:      name,
		listeners: make(map[int]func(geometry.Delta)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.name == "" {
		e.name = e.id
	}
	return e
}

// ID returns the element's unique id.
func (e *Element) ID() string { return e.id }

// Name returns the element's display name.
func (e *Element) Name() string { return e.name }

// LayoutID returns the identity shared across renders, or "".
func (e *Element) LayoutID() string { return e.layoutID }

// SetLayoutID changes the identity. Takes effect at the next after-commit.
func (e *Element) SetLayoutID(id string) { e.layoutID = id }

// Depth returns the element's depth in the tree.
func (e *Element) Depth() int { return e.depth }

// SetMeasure replaces the measure function.
func (e *Element) SetMeasure(fn func() geometry.Rect) { e.measure = fn }

func (e *Element) current() geometry.Rect {
	if e.measure == nil {
		return geometry.Rect{}
	}
	return e.measure()
}

// SnapshotBoundingBox captures the box before the tree mutates.
func (e *Element) SnapshotBoundingBox() {
	e.snapshot = e.current()
	e.hasSnapshot = true
	observe.Get().OnSnapshot(e.name, e.snapshot)
}

// Snapshot returns the last captured pre-mutation box.
func (e *Element) Snapshot() (geometry.Rect, bool) {
	return e.snapshot, e.hasSnapshot
}

// ResetTransform drops any projection applied from the previous animation so
// the next measurement reads the true layout.
func (e *Element) ResetTransform() {
	e.projecting = false
}

// MeasureLayout reads the box after the tree mutated.
func (e *Element) MeasureLayout() {
	e.layout = e.current()
	e.hasLayout = true
	observe.Get().OnMeasure(e.name, e.layout)
}

// Layout returns the last measured post-mutation box.
func (e *Element) Layout() (geometry.Rect, bool) {
	return e.layout, e.hasLayout
}

// Delta returns the projection from the layout box back onto the snapshot.
// Without both boxes the delta is the identity.
func (e *Element) Delta() geometry.Delta {
	if !e.hasSnapshot || !e.hasLayout {
		return geometry.IdentityDelta
	}
	return geometry.DeltaBetween(e.snapshot, e.layout)
}

// Projecting reports whether a layout animation is applying a delta.
func (e *Element) Projecting() bool {
	return e.projecting
}

// AddLayoutReadyListener adds a callback that fires once measurement of a
// cycle is complete, with the delta to animate from.
// Returns an unsubscribe function.
func (e *Element) AddLayoutReadyListener(fn func(geometry.Delta)) func() {
	id := e.nextListenerID
	e.nextListenerID++
	e.listeners[id] = fn
	return func() {
		delete(e.listeners, id)
	}
}

// NotifyLayoutReady hands the snapshot-to-layout delta to listeners.
func (e *Element) NotifyLayoutReady() {
	delta := e.Delta()
	e.projecting = !delta.IsIdentity()
	observe.Get().OnLayoutReady(e.name, delta)
	for _, listener := range e.listeners {
		listener(delta)
	}
}

// Detach marks the element as unmounted. Pending measurement is dropped.
func (e *Element) Detach() {
	e.detached = true
	clear(e.listeners)
}

// Attach marks a detached element as mounted again.
func (e *Element) Attach() {
	e.detached = false
}

// Detached reports whether the element has been unmounted.
func (e *Element) Detached() bool {
	return e.detached
}
