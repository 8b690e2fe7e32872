package errors

import (
	"github.com/charmbracelet/log"
)

// LogHandler is an ErrorHandler that writes errors through a charmbracelet logger.
type LogHandler struct {
	// Logger receives the records. Nil uses log.Default().
	Logger *log.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return log.Default()
}

// HandleError logs a MotionError at error level.
func (h *LogHandler) HandleError(err *MotionError) {
	if err == nil {
		return
	}
	kv := []any{"op", err.Op, "kind", err.Kind}
	if err.Element != "" {
		kv = append(kv, "element", err.Element)
	}
	if h.Verbose && err.StackTrace != "" {
		kv = append(kv, "stack", err.StackTrace)
	}
	h.logger().Error(err.Err, kv...)
}

// HandlePanic logs a PanicError at error level.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	kv := []any{"value", err.Value}
	if err.Op != "" {
		kv = append(kv, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		kv = append(kv, "stack", err.StackTrace)
	}
	h.logger().Error("recovered panic", kv...)
}
