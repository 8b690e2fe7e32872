package testing

import (
	"testing"

	"github.com/go-drift/motion/pkg/errors"
)

// ErrorSink collects errors reported through the global handler.
type ErrorSink struct {
	Errors []*errors.MotionError
	Panics []*errors.PanicError
}

// HandleError records err.
func (s *ErrorSink) HandleError(err *errors.MotionError) {
	s.Errors = append(s.Errors, err)
}

// HandlePanic records err.
func (s *ErrorSink) HandlePanic(err *errors.PanicError) {
	s.Panics = append(s.Panics, err)
}

// Kinds returns the kinds of the collected errors in order.
func (s *ErrorSink) Kinds() []errors.ErrorKind {
	kinds := make([]errors.ErrorKind, len(s.Errors))
	for i, err := range s.Errors {
		kinds[i] = err.Kind
	}
	return kinds
}

// CaptureErrors installs a sink as the global error handler and restores
// the previous handler when the test ends.
func CaptureErrors(t testing.TB) *ErrorSink {
	t.Helper()
	sink := &ErrorSink{}
	prev := errors.DefaultHandler
	errors.SetHandler(sink)
	t.Cleanup(func() { errors.SetHandler(prev) })
	return sink
}
