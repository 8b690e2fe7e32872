package scenario

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/go-drift/motion/pkg/batch"
	"github.com/go-drift/motion/pkg/frame"
	"github.com/go-drift/motion/pkg/geometry"
	"github.com/go-drift/motion/pkg/measure"
	"github.com/go-drift/motion/pkg/observe"
	"github.com/go-drift/motion/pkg/shared"
	"github.com/go-drift/motion/pkg/visual"
)

type element = *visual.Element

// Runner replays a scenario on a frame.Owner with the reference collaborators:
// one batcher for standalone elements and one shared group per group name.
type Runner struct {
	scenario *Scenario
	logger   *log.Logger

	owner       *frame.Owner
	batcher     *batch.Batcher[element]
	groups      map[string]*shared.Group[element]
	trees       map[string]*measure.OrderConfig
	elements    map[string]element
	boxes       map[string]*geometry.Rect
	controllers map[string]measure.Controller
	bindings    map[string]binding
	opts        []measure.Option
}

// binding keeps what a controller was built from, so a remounted element
// gets a fresh one.
type binding struct {
	target measure.SyncTarget[element]
	order  *measure.OrderConfig
}

// NewRunner builds the element tree described by s. logger may be nil.
func NewRunner(s *Scenario, logger *log.Logger) *Runner {
	r := &Runner{
		scenario:    s,
		logger:      logger,
		owner:       frame.NewOwner(),
		batcher:     batch.New[element](),
		groups:      make(map[string]*shared.Group[element]),
		trees:       make(map[string]*measure.OrderConfig),
		elements:    make(map[string]element),
		boxes:       make(map[string]*geometry.Rect),
		controllers: make(map[string]measure.Controller),
		bindings:    make(map[string]binding),
	}
	r.owner.Logger = logger
	r.batcher.Logger = logger

	for name, order := range s.Trees {
		r.trees[name] = &measure.OrderConfig{LayoutOrder: order}
	}

	if logger != nil {
		r.opts = append(r.opts, measure.WithLogger(logger))
	}

	for _, decl := range s.Elements {
		box := rectOf(decl.Box)
		r.boxes[decl.Name] = &box
		e := visual.New(decl.Name,
			visual.WithLayoutID(decl.LayoutID),
			visual.WithDepth(decl.Depth),
			visual.WithMeasure(func() geometry.Rect { return *r.boxes[decl.Name] }),
		)
		r.elements[decl.Name] = e

		props := measure.Props{Drag: decl.Drag, Layout: decl.Layout, LayoutID: decl.LayoutID}
		b := binding{target: r.targetFor(decl), order: r.trees[decl.Tree]}
		c, ok := measure.Bind(props, e, b.target, b.order, r.opts...)
		if !ok {
			continue
		}
		r.controllers[decl.Name] = c
		r.bindings[decl.Name] = b
	}
	return r
}

func (r *Runner) targetFor(decl ElementSpec) measure.SyncTarget[element] {
	if decl.Group == "" {
		return measure.Standalone[element](r.batcher)
	}
	g, ok := r.groups[decl.Group]
	if !ok {
		g = shared.New[element](decl.Group)
		g.Logger = r.logger
		r.groups[decl.Group] = g
		r.owner.AddPostCommit(g.Flush)
		r.owner.AddAbort(g.Abort)
	}
	return measure.Grouped[element](g)
}

// Group returns the named shared layout group.
func (r *Runner) Group(name string) (*shared.Group[element], bool) {
	g, ok := r.groups[name]
	return g, ok
}

// Element returns the named element.
func (r *Runner) Element(name string) (element, bool) {
	e, ok := r.elements[name]
	return e, ok
}

// Run replays up to maxCycles cycles and returns the trace. maxCycles <= 0
// means no limit. Observe hooks are redirected to the trace for the duration
// of the run.
func (r *Runner) Run(ctx context.Context, maxCycles int) (*Trace, error) {
	trace := &Trace{}
	observe.Set(trace)
	defer observe.Reset()

	for i, cycle := range r.scenario.Cycles {
		if maxCycles > 0 && i >= maxCycles {
			if r.logger != nil {
				r.logger.Warn("cycle limit reached", "limit", maxCycles, "remaining", len(r.scenario.Cycles)-i)
			}
			break
		}
		if err := ctx.Err(); err != nil {
			return trace, err
		}

		trace.beginCycle(i + 1)
		for _, name := range cycle.Mount {
			if c, ok := r.mountable(name); ok {
				r.owner.Mount(c)
			} else {
				trace.add(Event{Kind: EventSkip, Element: name, Detail: "not animated"})
			}
		}
		for _, name := range cycle.Unmount {
			if c, ok := r.controllers[name]; ok {
				r.owner.Unmount(c)
			}
		}

		if err := r.owner.Pump(func() error {
			r.commit(cycle)
			trace.add(Event{Kind: EventCommit})
			return nil
		}); err != nil {
			return trace, fmt.Errorf("cycle %d: %w", i+1, err)
		}
	}
	return trace, nil
}

// mountable returns the controller to mount for name. An element that was
// unmounted gets a fresh controller, since a detached one ignores every call.
func (r *Runner) mountable(name string) (measure.Controller, bool) {
	c, ok := r.controllers[name]
	if !ok {
		return nil, false
	}
	if e := r.elements[name]; e.Detached() {
		b := r.bindings[name]
		c = measure.Instantiate(e, b.target, b.order, r.opts...)
		r.controllers[name] = c
	}
	return c, true
}

// commit applies a cycle's mutations to the tree.
func (r *Runner) commit(cycle CycleSpec) {
	for _, name := range cycle.Mount {
		if e := r.elements[name]; e.Detached() {
			e.Attach()
		}
	}
	for name, order := range cycle.Trees {
		r.trees[name].LayoutOrder = order
	}
	for _, change := range cycle.Set {
		e := r.elements[change.Element]
		if change.LayoutID != nil {
			e.SetLayoutID(*change.LayoutID)
		}
		if len(change.Box) == 4 {
			*r.boxes[change.Element] = rectOf(change.Box)
		}
	}
	for _, name := range cycle.Unmount {
		r.elements[name].Detach()
	}
}

func rectOf(box []float64) geometry.Rect {
	if len(box) != 4 {
		return geometry.Rect{}
	}
	return geometry.RectFromLTWH(box[0], box[1], box[2], box[3])
}
