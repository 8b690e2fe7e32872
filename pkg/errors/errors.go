// Package errors provides structured error handling for motion.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLifecycle indicates a phase callback invoked out of order.
	KindLifecycle
	// KindRegistration indicates a shared layout group membership fault.
	KindRegistration
	// KindCommit indicates the host's tree mutation failed.
	KindCommit
	// KindConfig indicates a configuration or scenario loading error.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindLifecycle:
		return "lifecycle"
	case KindRegistration:
		return "registration"
	case KindCommit:
		return "commit"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MotionError represents a structured error reported by motion.
type MotionError struct {
	// Op is the operation that failed (e.g., "measure.Scheduler.after-commit").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Element names the visual element involved, if any.
	Element string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MotionError) Error() string {
	if e.Element != "" {
		return fmt.Sprintf("%s [%s] element=%s: %v", e.Op, e.Kind, e.Element, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MotionError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "frame.Owner.Pump").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Phase names a lifecycle callback of a layout scheduler.
type Phase int

const (
	PhaseAttach Phase = iota
	PhaseBeforeCommit
	PhaseAfterCommit
	PhaseDetach
)

func (p Phase) String() string {
	switch p {
	case PhaseAttach:
		return "attach"
	case PhaseBeforeCommit:
		return "before-commit"
	case PhaseAfterCommit:
		return "after-commit"
	case PhaseDetach:
		return "detach"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// LifecycleError is a phase callback invoked outside the
// attach, before-commit, after-commit sequence.
type LifecycleError struct {
	// Phase is the callback that was invoked.
	Phase Phase
	// State describes where the scheduler was when it was invoked.
	State string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("misordered lifecycle: %s called while %s", e.Phase, e.State)
}

// RegistrationError is a group membership operation that would
// duplicate or drop a record.
type RegistrationError struct {
	// Element names the element involved.
	Element string
	// Stale is true when removing an element that is not registered,
	// false when registering an element that already is.
	Stale bool
}

func (e *RegistrationError) Error() string {
	if e.Stale {
		return fmt.Sprintf("stale registration: %s is not registered", e.Element)
	}
	return fmt.Sprintf("duplicate registration: %s is already registered", e.Element)
}

// ErrorHandler receives errors reported by motion.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MotionError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
