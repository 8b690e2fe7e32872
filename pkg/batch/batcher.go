// Package batch queues standalone elements for layout measurement within one
// update cycle.
package batch

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/go-drift/motion/pkg/observe"
)

// Element is what a Batcher measures. Elements are compared by identity,
// so implementations are usually pointers.
type Element interface {
	comparable
	Depth() int
	ResetTransform()
	MeasureLayout()
	NotifyLayoutReady()
}

// Batcher tracks elements pending measurement.
//
// Elements are queued once per cycle in insertion order. Flush measures them
// parents first, in three passes so that no element is measured while an
// earlier element still carries a projection from its previous animation:
//
//  1. ResetTransform on every element
//  2. MeasureLayout on every element
//  3. NotifyLayoutReady on every element
//
// Flushing an empty queue does nothing, so every element sharing a batcher
// may flush it after commit and only the first one does work.
//
// Batcher is NOT thread-safe. It is driven from the UI thread.
type Batcher[E Element] struct {
	queue    []E
	queueSet map[E]bool

	// Logger receives debug output for each flush. Nil disables logging.
	Logger *log.Logger

	flushes  int
	measured int
}

// New creates an empty Batcher.
func New[E Element]() *Batcher[E] {
	return &Batcher[E]{}
}

// Add queues element for the next flush. Repeated additions within a cycle
// are ignored.
func (b *Batcher[E]) Add(element E) {
	if b.queueSet[element] {
		return
	}
	if b.queueSet == nil {
		b.queueSet = make(map[E]bool)
	}
	b.queueSet[element] = true
	b.queue = append(b.queue, element)
	observe.Get().OnBatchAdd(nameOf(element))
}

// Len returns the number of queued elements.
func (b *Batcher[E]) Len() int {
	return len(b.queue)
}

// Flush measures all queued elements and empties the queue. Elements that
// were detached while queued are discarded.
func (b *Batcher[E]) Flush() {
	if len(b.queue) == 0 {
		return
	}

	queue := b.queue
	b.queue = nil
	clear(b.queueSet)

	queue = slices.DeleteFunc(queue, func(e E) bool {
		d, ok := any(e).(interface{ Detached() bool })
		return ok && d.Detached()
	})
	// Stable so siblings keep insertion order.
	slices.SortStableFunc(queue, func(a, b E) int {
		return a.Depth() - b.Depth()
	})

	for _, e := range queue {
		e.ResetTransform()
	}
	for _, e := range queue {
		e.MeasureLayout()
	}
	for _, e := range queue {
		e.NotifyLayoutReady()
	}

	b.flushes++
	b.measured += len(queue)
	observe.Get().OnBatchFlush(len(queue))
	if b.Logger != nil {
		b.Logger.Debug("flushed batch", "measured", len(queue))
	}
}

// Stats reports how many non-empty flushes ran and how many elements they
// measured in total.
func (b *Batcher[E]) Stats() (flushes, measured int) {
	return b.flushes, b.measured
}

func nameOf(e any) string {
	if n, ok := e.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
