// Package observe provides hooks for tracing layout synchronization.
//
// Collaborators (batchers, shared layout groups, visual elements) report
// what they do through the registered [Hooks]. The default is a no-op, so
// libraries call hooks unconditionally:
//
//	observe.Get().OnSnapshot(e.Name(), e.snapshot)
//
// Tools that want a trace register their own implementation at startup:
//
//	observe.Set(&traceHooks{})
//	defer observe.Reset()
package observe

import (
	"sync"

	"github.com/go-drift/motion/pkg/geometry"
)

// Hooks receives layout synchronization events.
type Hooks interface {
	// Element events
	OnSnapshot(element string, box geometry.Rect)
	OnMeasure(element string, box geometry.Rect)
	OnLayoutReady(element string, delta geometry.Delta)

	// Batcher events
	OnBatchAdd(element string)
	OnBatchFlush(count int)

	// Shared layout group events
	OnRegister(group, element string, order int)
	OnRemove(group, element string)
	OnSyncUpdate(group string, members int)
}

// NoopHooks is a no-op implementation of Hooks.
type NoopHooks struct{}

func (NoopHooks) OnSnapshot(string, geometry.Rect)     {}
func (NoopHooks) OnMeasure(string, geometry.Rect)      {}
func (NoopHooks) OnLayoutReady(string, geometry.Delta) {}
func (NoopHooks) OnBatchAdd(string)                    {}
func (NoopHooks) OnBatchFlush(int)                     {}
func (NoopHooks) OnRegister(string, string, int)       {}
func (NoopHooks) OnRemove(string, string)              {}
func (NoopHooks) OnSyncUpdate(string, int)             {}

var (
	hooks   Hooks = NoopHooks{}
	hooksMu sync.RWMutex
)

// Set registers custom hooks. Nil is ignored.
func Set(h Hooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		hooks = h
	}
}

// Get returns the registered hooks.
func Get() Hooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hooks
}

// Reset restores the no-op default.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = NoopHooks{}
}
