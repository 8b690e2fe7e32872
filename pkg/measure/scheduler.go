package measure

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/go-drift/motion/pkg/errors"
)

// Controller is the phase interface a host drives for one bound element.
type Controller interface {
	OnAttach()
	OnBeforeCommit()
	OnAfterCommit()
	OnDetach()
}

// state tracks where a scheduler is in its element's lifecycle.
//
//	unattached ──OnAttach──► attached ──OnBeforeCommit──► before-commit
//	                                          ▲                  │
//	                                          │            OnAfterCommit
//	                                          └── after-commit ◄─┘
//
// OnDetach moves any state to detached, which is terminal.
type state int

const (
	stateUnattached state = iota
	stateAttached
	stateBeforeCommit
	stateAfterCommit
	stateDetached
)

func (s state) String() string {
	switch s {
	case stateUnattached:
		return "unattached"
	case stateAttached:
		return "attached"
	case stateBeforeCommit:
		return "before-commit"
	case stateAfterCommit:
		return "after-commit"
	case stateDetached:
		return "detached"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used for debug output. Schedulers without a
// logger stay silent.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Scheduler decides, for one element, which collaborator runs at each
// lifecycle phase. It is not safe for concurrent use; hosts drive it from a
// single goroutine.
type Scheduler[E Handle] struct {
	element E
	target  SyncTarget[E]
	order   *OrderConfig
	logger  *log.Logger

	state      state
	registered bool

	previousLayoutID    string
	previousLayoutOrder int
	hasPreviousOrder    bool
}

// New binds a scheduler to element. order may be nil, in which case only
// layout id changes re-register a grouped element.
func New[E Handle](element E, target SyncTarget[E], order *OrderConfig, opts ...Option) *Scheduler[E] {
	if target.kind == targetStandalone && target.batcher == nil {
		panic("measure: New requires a SyncTarget from Grouped or Standalone")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler[E]{
		element: element,
		target:  target,
		order:   order,
		logger:  o.logger,
	}
}

// Element returns the bound element.
func (s *Scheduler[E]) Element() E {
	return s.element
}

// Registered reports whether the scheduler currently holds a registration
// in its group.
func (s *Scheduler[E]) Registered() bool {
	return s.registered
}

// PreviousLayoutOrder returns the layout order seen at the last registration
// decision. ok is false before any decision or when no order config is bound.
func (s *Scheduler[E]) PreviousLayoutOrder() (order int, ok bool) {
	return s.previousLayoutOrder, s.hasPreviousOrder
}

// OnAttach registers the element with its group. Standalone elements need
// no attach-time work.
func (s *Scheduler[E]) OnAttach() {
	if s.state != stateUnattached {
		s.misordered(errors.PhaseAttach)
		return
	}
	s.state = stateAttached

	group, ok := s.target.Group()
	if !ok {
		return
	}
	group.Register(s.element, s.order)
	s.registered = true
	s.remember(s.element.LayoutID())
	s.debug("registered")
}

// OnBeforeCommit runs before the cycle's mutation commits. Grouped elements
// hand snapshotting to the group; standalone elements snapshot themselves
// and join the batch.
func (s *Scheduler[E]) OnBeforeCommit() {
	switch s.state {
	case stateAttached, stateAfterCommit:
	case stateDetached:
		s.misordered(errors.PhaseBeforeCommit)
		return
	default:
		s.misordered(errors.PhaseBeforeCommit)
	}
	s.state = stateBeforeCommit

	if group, ok := s.target.Group(); ok {
		group.SyncUpdate()
		return
	}
	s.element.SnapshotBoundingBox()
	s.target.batcher.Add(s.element)
}

// OnAfterCommit runs after the cycle's mutation commits. A grouped element
// whose layout id or layout order changed is removed and registered again so
// the group can re-home it; a standalone element flushes its batcher.
func (s *Scheduler[E]) OnAfterCommit() {
	switch s.state {
	case stateBeforeCommit:
	case stateDetached:
		s.misordered(errors.PhaseAfterCommit)
		return
	default:
		s.misordered(errors.PhaseAfterCommit)
	}
	s.state = stateAfterCommit

	group, ok := s.target.Group()
	if !ok {
		s.target.batcher.Flush()
		return
	}

	layoutID := s.element.LayoutID()
	changed := layoutID != s.previousLayoutID
	if s.order != nil && (!s.hasPreviousOrder || s.order.LayoutOrder != s.previousLayoutOrder) {
		changed = true
	}
	if changed && s.registered {
		group.Remove(s.element)
		group.Register(s.element, s.order)
		s.debug("re-registered", "previousLayoutID", s.previousLayoutID)
	}
	s.remember(layoutID)
}

// OnDetach removes a grouped element from its group. After OnDetach the
// scheduler never calls its collaborators again.
func (s *Scheduler[E]) OnDetach() {
	if s.state == stateDetached {
		s.misordered(errors.PhaseDetach)
		return
	}
	s.state = stateDetached

	if !s.registered {
		return
	}
	group, _ := s.target.Group()
	group.Remove(s.element)
	s.registered = false
	s.debug("removed")
}

func (s *Scheduler[E]) remember(layoutID string) {
	s.previousLayoutID = layoutID
	if s.order != nil {
		s.previousLayoutOrder = s.order.LayoutOrder
		s.hasPreviousOrder = true
	}
}

func (s *Scheduler[E]) misordered(phase errors.Phase) {
	errors.Report(&errors.MotionError{
		Op:      "measure.Scheduler." + phase.String(),
		Kind:    errors.KindLifecycle,
		Element: s.label(),
		Err:     &errors.LifecycleError{Phase: phase, State: s.state.String()},
	})
}

func (s *Scheduler[E]) debug(msg string, keyvals ...any) {
	if s.logger == nil {
		return
	}
	kv := []any{"element", s.label(), "layoutID", s.element.LayoutID()}
	if s.order != nil {
		kv = append(kv, "layoutOrder", s.order.LayoutOrder)
	}
	s.logger.Debug(msg, append(kv, keyvals...)...)
}

// label names the element for logs and errors.
func (s *Scheduler[E]) label() string {
	if named, ok := any(s.element).(interface{ Name() string }); ok {
		return named.Name()
	}
	if id := s.element.LayoutID(); id != "" {
		return id
	}
	return fmt.Sprintf("%T", s.element)
}
