package measure_test

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/go-drift/motion/pkg/errors"
	"github.com/go-drift/motion/pkg/measure"
	mtesting "github.com/go-drift/motion/pkg/testing"
)

type fake = *mtesting.FakeElement

func cycle(c measure.Controller) {
	c.OnBeforeCommit()
	c.OnAfterCommit()
}

func assertOps(t *testing.T, rec *mtesting.Recorder, want ...string) {
	t.Helper()
	if got := rec.Ops(); !slices.Equal(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
}

func TestStandaloneScenario(t *testing.T) {
	errs := mtesting.CaptureErrors(t)
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "")
	b := rec.Batcher("B")

	s := measure.New(el, measure.Standalone[fake](b), nil)
	s.OnAttach()
	assertOps(t, rec)

	cycle(s)
	assertOps(t, rec, "E.snapshot", "B.add(E)", "B.flush")
	if b.Measured != 1 {
		t.Errorf("Measured = %d, want 1", b.Measured)
	}
	if len(errs.Errors) != 0 {
		t.Errorf("unexpected errors: %v", errs.Errors)
	}
}

func TestStandaloneRepeatedUpdates(t *testing.T) {
	const n = 5
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "")
	b := rec.Batcher("B")

	s := measure.New(el, measure.Standalone[fake](b), nil)
	s.OnAttach()
	for range n {
		cycle(s)
	}

	if got := rec.Count("E", "snapshot"); got != n {
		t.Errorf("snapshots = %d, want %d", got, n)
	}
	if got := rec.Count("B", "add"); got != n {
		t.Errorf("adds = %d, want %d", got, n)
	}

	// Every add is followed by a flush before the next add.
	pending := false
	for _, c := range rec.Calls() {
		switch c.Op {
		case "add":
			if pending {
				t.Fatalf("add without an intervening flush in %v", rec.Ops())
			}
			pending = true
		case "flush":
			pending = false
		}
	}
	if pending {
		t.Error("last add was never flushed")
	}
}

func TestStandaloneSharedBatcherFlushesOnce(t *testing.T) {
	rec := mtesting.NewRecorder()
	b := rec.Batcher("B")
	a := measure.New(rec.Element("A", ""), measure.Standalone[fake](b), nil)
	c := measure.New(rec.Element("C", ""), measure.Standalone[fake](b), nil)
	a.OnAttach()
	c.OnAttach()

	a.OnBeforeCommit()
	c.OnBeforeCommit()
	a.OnAfterCommit()
	c.OnAfterCommit()

	assertOps(t, rec, "A.snapshot", "B.add(A)", "C.snapshot", "B.add(C)", "B.flush", "B.flush")
	if b.Measured != 2 {
		t.Errorf("Measured = %d, want 2 (second flush finds an empty queue)", b.Measured)
	}
}

func TestGroupedScenario(t *testing.T) {
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "")
	g := rec.Group("G")
	order := &measure.OrderConfig{LayoutOrder: 1}

	s := measure.New(el, measure.Grouped[fake](g), order)
	s.OnAttach()
	assertOps(t, rec, "G.register(E, 1)")
	if prev, ok := s.PreviousLayoutOrder(); !ok || prev != 1 {
		t.Errorf("PreviousLayoutOrder() = %d, %v; want 1, true", prev, ok)
	}

	rec.Reset()
	order.LayoutOrder = 2
	cycle(s)
	assertOps(t, rec, "G.sync", "G.remove(E)", "G.register(E, 2)")
	if prev, ok := s.PreviousLayoutOrder(); !ok || prev != 2 {
		t.Errorf("PreviousLayoutOrder() = %d, %v; want 2, true", prev, ok)
	}
	if len(g.Violations) != 0 {
		t.Errorf("violations: %v", g.Violations)
	}
}

func TestGroupedStableRegistersOnce(t *testing.T) {
	const m = 6
	rec := mtesting.NewRecorder()
	g := rec.Group("G")
	s := measure.New(rec.Element("E", "card"), measure.Grouped[fake](g), &measure.OrderConfig{LayoutOrder: 3})

	s.OnAttach()
	for range m {
		cycle(s)
	}

	if got := rec.Count("G", "register"); got != 1 {
		t.Errorf("registers = %d, want 1", got)
	}
	if got := rec.Count("G", "remove"); got != 0 {
		t.Errorf("removes = %d, want 0", got)
	}
	if got := rec.Count("G", "sync"); got != m {
		t.Errorf("syncs = %d, want %d", got, m)
	}
	if got := rec.Count("E", "snapshot"); got != 0 {
		t.Errorf("grouped element snapshotted itself %d times", got)
	}
}

func TestGroupedIdentityChange(t *testing.T) {
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "a")
	g := rec.Group("G")
	order := &measure.OrderConfig{LayoutOrder: 1}
	s := measure.New(el, measure.Grouped[fake](g), order)

	s.OnAttach()
	cycle(s)
	rec.Reset()

	el.SetLayoutID("b")
	cycle(s)
	assertOps(t, rec, "G.sync", "G.remove(E)", "G.register(E, 1)")

	rec.Reset()
	cycle(s)
	assertOps(t, rec, "G.sync")
}

func TestGroupedSimultaneousChangeReregistersOnce(t *testing.T) {
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "a")
	g := rec.Group("G")
	order := &measure.OrderConfig{LayoutOrder: 1}
	s := measure.New(el, measure.Grouped[fake](g), order)
	s.OnAttach()
	rec.Reset()

	el.SetLayoutID("b")
	order.LayoutOrder = 4
	cycle(s)
	assertOps(t, rec, "G.sync", "G.remove(E)", "G.register(E, 4)")
}

func TestGroupedWithoutOrderConfig(t *testing.T) {
	errs := mtesting.CaptureErrors(t)
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "a")
	g := rec.Group("G")
	s := measure.New(el, measure.Grouped[fake](g), nil)

	s.OnAttach()
	cycle(s)
	assertOps(t, rec, "G.register(E)", "G.sync")
	if _, ok := s.PreviousLayoutOrder(); ok {
		t.Error("PreviousLayoutOrder should be unset without an order config")
	}

	rec.Reset()
	el.SetLayoutID("b")
	cycle(s)
	assertOps(t, rec, "G.sync", "G.remove(E)", "G.register(E)")
	if len(errs.Errors) != 0 {
		t.Errorf("missing order config should not be an error: %v", errs.Errors)
	}
}

func TestGroupedDetach(t *testing.T) {
	errs := mtesting.CaptureErrors(t)
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "a")
	g := rec.Group("G")
	s := measure.New(el, measure.Grouped[fake](g), &measure.OrderConfig{})

	s.OnAttach()
	cycle(s)
	s.OnDetach()
	if g.Has(el) || s.Registered() {
		t.Fatal("detach should remove the element from its group")
	}

	rec.Reset()
	el.SetLayoutID("b")
	cycle(s)
	s.OnAttach()
	s.OnDetach()
	assertOps(t, rec)

	if got := len(errs.Errors); got != 4 {
		t.Fatalf("reported %d errors, want 4", got)
	}
	for _, err := range errs.Errors {
		if err.Kind != errors.KindLifecycle {
			t.Errorf("kind = %v, want lifecycle", err.Kind)
		}
		if err.Element != "E" {
			t.Errorf("element = %q, want E", err.Element)
		}
	}
}

func TestStandaloneDetachTouchesNothing(t *testing.T) {
	rec := mtesting.NewRecorder()
	b := rec.Batcher("B")
	s := measure.New(rec.Element("E", ""), measure.Standalone[fake](b), nil)
	s.OnAttach()
	s.OnBeforeCommit()
	s.OnDetach()
	assertOps(t, rec, "E.snapshot", "B.add(E)")
	if b.Pending() != 1 {
		t.Errorf("Pending() = %d; the batcher owns discarding unflushed entries", b.Pending())
	}
}

func TestDoubleAttachRegistersOnce(t *testing.T) {
	errs := mtesting.CaptureErrors(t)
	rec := mtesting.NewRecorder()
	g := rec.Group("G")
	s := measure.New(rec.Element("E", ""), measure.Grouped[fake](g), nil)

	s.OnAttach()
	s.OnAttach()
	if got := rec.Count("G", "register"); got != 1 {
		t.Errorf("registers = %d, want 1", got)
	}
	if len(g.Violations) != 0 {
		t.Errorf("violations: %v", g.Violations)
	}
	if got := errs.Kinds(); !slices.Equal(got, []errors.ErrorKind{errors.KindLifecycle}) {
		t.Errorf("kinds = %v", got)
	}
}

func TestMisorderedPhasesAreReportedAndRun(t *testing.T) {
	errs := mtesting.CaptureErrors(t)
	rec := mtesting.NewRecorder()
	b := rec.Batcher("B")
	s := measure.New(rec.Element("E", ""), measure.Standalone[fake](b), nil)

	s.OnAttach()
	s.OnAfterCommit()
	s.OnBeforeCommit()
	s.OnBeforeCommit()
	s.OnAfterCommit()

	assertOps(t, rec, "B.flush", "E.snapshot", "B.add(E)", "E.snapshot", "B.add(E)", "B.flush")
	if got := len(errs.Errors); got != 2 {
		t.Fatalf("reported %d errors, want 2", got)
	}
	if !strings.Contains(errs.Errors[0].Error(), "after-commit called while attached") {
		t.Errorf("first error = %v", errs.Errors[0])
	}
	if got, want := errs.Errors[0].Op, "measure.Scheduler.after-commit"; got != want {
		t.Errorf("first error op = %q, want %q", got, want)
	}
	if got, want := errs.Errors[1].Op, "measure.Scheduler.before-commit"; got != want {
		t.Errorf("second error op = %q, want %q", got, want)
	}
}

func TestUnattachedGroupedNeverRemoves(t *testing.T) {
	mtesting.CaptureErrors(t)
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "a")
	g := rec.Group("G")
	s := measure.New(el, measure.Grouped[fake](g), &measure.OrderConfig{LayoutOrder: 1})

	el.SetLayoutID("b")
	cycle(s)
	assertOps(t, rec, "G.sync")
	if len(g.Violations) != 0 {
		t.Errorf("violations: %v", g.Violations)
	}
}

func TestSchedulerLogsReregistration(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	rec := mtesting.NewRecorder()
	el := rec.Element("E", "a")
	s := measure.New(el, measure.Grouped[fake](rec.Group("G")), nil, measure.WithLogger(logger))

	s.OnAttach()
	el.SetLayoutID("b")
	cycle(s)

	out := buf.String()
	for _, want := range []string{"registered", "re-registered", "previousLayoutID=a", "layoutID=b"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}

func TestSyncTarget(t *testing.T) {
	rec := mtesting.NewRecorder()
	g := measure.Grouped[fake](rec.Group("G"))
	if !g.IsGrouped() {
		t.Error("Grouped target should report IsGrouped")
	}
	if _, ok := g.Batcher(); ok {
		t.Error("Grouped target should not expose a batcher")
	}

	b := measure.Standalone[fake](rec.Batcher("B"))
	if b.IsGrouped() {
		t.Error("Standalone target should not report IsGrouped")
	}
	if _, ok := b.Group(); ok {
		t.Error("Standalone target should not expose a group")
	}
}

func TestConstructorsRejectNil(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"grouped nil", func() { measure.Grouped[fake](nil) }},
		{"standalone nil", func() { measure.Standalone[fake](nil) }},
		{"zero target", func() { measure.New[fake](nil, measure.SyncTarget[fake]{}, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}
