package measure

// Handle is the element side of a scheduler: something that can capture its
// current bounding box and may carry a layout id.
type Handle interface {
	// SnapshotBoundingBox captures the pre-mutation geometry.
	SnapshotBoundingBox()
	// LayoutID returns the identity shared across renders, or "" for none.
	LayoutID() string
}

// Group coordinates measurement across elements that share a layout
// transition. Implementations own the registration records.
type Group[E Handle] interface {
	Register(element E, order *OrderConfig)
	Remove(element E)
	SyncUpdate()
}

// Batcher queues standalone elements for measurement within one cycle.
// Flush on an empty queue must have no effect.
type Batcher[E Handle] interface {
	Add(element E)
	Flush()
}

// OrderConfig places an element within a nested animated tree. It is owned
// by the tree and shared by pointer; schedulers read it each cycle.
type OrderConfig struct {
	LayoutOrder int
}

type targetKind int

const (
	targetStandalone targetKind = iota
	targetGrouped
)

// SyncTarget is either a shared layout group or a standalone batcher.
// Construct it with [Grouped] or [Standalone].
type SyncTarget[E Handle] struct {
	kind    targetKind
	group   Group[E]
	batcher Batcher[E]
}

// Grouped returns a target that synchronizes through a shared layout group.
func Grouped[E Handle](group Group[E]) SyncTarget[E] {
	if group == nil {
		panic("measure: Grouped requires a non-nil group")
	}
	return SyncTarget[E]{kind: targetGrouped, group: group}
}

// Standalone returns a target that synchronizes through a batcher.
func Standalone[E Handle](batcher Batcher[E]) SyncTarget[E] {
	if batcher == nil {
		panic("measure: Standalone requires a non-nil batcher")
	}
	return SyncTarget[E]{kind: targetStandalone, batcher: batcher}
}

// IsGrouped reports whether the target is a shared layout group.
func (t SyncTarget[E]) IsGrouped() bool {
	return t.kind == targetGrouped
}

// Group returns the shared layout group, if this is a grouped target.
func (t SyncTarget[E]) Group() (Group[E], bool) {
	return t.group, t.kind == targetGrouped
}

// Batcher returns the batcher, if this is a standalone target.
func (t SyncTarget[E]) Batcher() (Batcher[E], bool) {
	return t.batcher, t.kind == targetStandalone
}
