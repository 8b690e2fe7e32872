// Package frame drives layout schedulers through update cycles.
//
// An [Owner] plays the part of the host rendering lifecycle. Each call to
// [Owner.Pump] is one update cycle:
//
//  1. OnBeforeCommit for every live controller, in mount order
//  2. the commit function, which mutates the tree
//  3. OnAfterCommit for every live controller, in mount order
//  4. OnAttach for controllers mounted this cycle, OnDetach for controllers
//     unmounted this cycle
//  5. post-commit hooks, such as shared layout group flushes
//
// No after-commit call starts before the commit returns, and the next
// cycle's before-commit calls cannot start before this cycle's after-commit
// calls finish, since Pump runs synchronously.
package frame

import (
	stderrors "errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/measure"
)

// Stats counts the work an Owner has done.
type Stats struct {
	Cycles        int
	FailedCommits int
	Live          int
	LastDuration  time.Duration
}

type hook struct {
	id int
	fn func()
}

// Owner tracks bound controllers and runs update cycles for them.
//
// Owner is NOT thread-safe. Like the tree it drives, it belongs to the UI
// thread.
type Owner struct {
	live       []measure.Controller
	liveSet    map[measure.Controller]bool
	mounting   []measure.Controller
	unmounting []measure.Controller
	postCommit []hook
	aborted    []hook
	nextHookID int
	inCycle    bool
	stats      Stats

	// Logger receives debug output for each cycle. Nil disables logging.
	Logger *log.Logger
}

// NewOwner creates an Owner with no controllers.
func NewOwner() *Owner {
	return &Owner{liveSet: make(map[measure.Controller]bool)}
}

// Mount schedules c to attach at the end of the next cycle, after the
// commit that inserts its element. It joins the before and after phases
// from the following cycle on.
func (o *Owner) Mount(c measure.Controller) {
	if o.liveSet[c] || slices.Contains(o.mounting, c) {
		return
	}
	o.mounting = append(o.mounting, c)
}

// Unmount schedules c to detach at the end of the next cycle. It still takes
// part in that cycle's before and after phases.
func (o *Owner) Unmount(c measure.Controller) {
	if slices.Contains(o.mounting, c) {
		o.mounting = deleteController(o.mounting, c)
		return
	}
	if !o.liveSet[c] || slices.Contains(o.unmounting, c) {
		return
	}
	o.unmounting = append(o.unmounting, c)
}

// AddPostCommit registers fn to run at the end of every cycle, after all
// after-commit callbacks. Returns a function that removes it.
func (o *Owner) AddPostCommit(fn func()) func() {
	return o.addHook(&o.postCommit, fn)
}

// AddAbort registers fn to run when a cycle's commit fails, in place of the
// post-commit hooks. Collaborators use it to drop work prepared in the
// before phase. Returns a function that removes it.
func (o *Owner) AddAbort(fn func()) func() {
	return o.addHook(&o.aborted, fn)
}

func (o *Owner) addHook(list *[]hook, fn func()) func() {
	id := o.nextHookID
	o.nextHookID++
	*list = append(*list, hook{id: id, fn: fn})
	return func() {
		*list = slices.DeleteFunc(*list, func(h hook) bool {
			return h.id == id
		})
	}
}

// NeedsWork reports whether the next cycle has anything to do besides the
// commit itself.
func (o *Owner) NeedsWork() bool {
	return len(o.live) > 0 || len(o.mounting) > 0 || len(o.unmounting) > 0
}

// Live returns the number of controllers taking part in cycles.
func (o *Owner) Live() int {
	return len(o.live)
}

// Stats returns a copy of the owner's counters.
func (o *Owner) Stats() Stats {
	s := o.stats
	s.Live = len(o.live)
	return s
}

// Pump runs one update cycle. commit may be nil for a cycle that mutates
// nothing. If commit fails or panics, the after phase is skipped, abort
// hooks run instead of post-commit hooks, pending
// mounts and unmounts stay queued for the next cycle, and the failure is
// returned as a *errors.MotionError of kind KindCommit.
func (o *Owner) Pump(commit func() error) error {
	if o.inCycle {
		err := &errors.MotionError{
			Op:   "frame.Owner.Pump",
			Kind: errors.KindLifecycle,
			Err:  stderrors.New("nested pump"),
		}
		errors.Report(err)
		return err
	}
	o.inCycle = true
	defer func() { o.inCycle = false }()

	start := time.Now()
	o.stats.Cycles++

	// Snapshot the live set so controllers mounted by the commit wait for
	// the next cycle.
	live := slices.Clone(o.live)
	for _, c := range live {
		c.OnBeforeCommit()
	}

	if err := runCommit(commit); err != nil {
		o.stats.FailedCommits++
		merr := &errors.MotionError{
			Op:   "frame.Owner.Pump",
			Kind: errors.KindCommit,
			Err:  err,
		}
		errors.Report(merr)
		for _, h := range slices.Clone(o.aborted) {
			h.fn()
		}
		return merr
	}

	for _, c := range live {
		c.OnAfterCommit()
	}

	mounting := o.mounting
	o.mounting = nil
	for _, c := range mounting {
		o.live = append(o.live, c)
		o.liveSet[c] = true
		c.OnAttach()
	}

	unmounting := o.unmounting
	o.unmounting = nil
	for _, c := range unmounting {
		c.OnDetach()
		o.live = deleteController(o.live, c)
		delete(o.liveSet, c)
	}

	for _, h := range slices.Clone(o.postCommit) {
		h.fn()
	}

	o.stats.LastDuration = time.Since(start)
	if o.Logger != nil {
		o.Logger.Debug("cycle complete",
			"cycle", o.stats.Cycles,
			"live", len(o.live),
			"attached", len(mounting),
			"detached", len(unmounting),
			"duration", o.stats.LastDuration.Round(time.Microsecond),
		)
	}
	return nil
}

// runCommit runs commit, turning a panic into an error.
func runCommit(commit func() error) (err error) {
	if commit == nil {
		return nil
	}
	defer errors.RecoverWithCallback("frame.Owner.Pump", func(r any) {
		err = &errors.PanicError{Op: "frame.Owner.Pump", Value: r}
	})
	return commit()
}

func deleteController(list []measure.Controller, c measure.Controller) []measure.Controller {
	return slices.DeleteFunc(list, func(other measure.Controller) bool {
		return other == c
	})
}
