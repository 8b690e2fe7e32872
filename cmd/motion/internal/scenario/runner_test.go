package scenario

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-drift/motion/pkg/observe"
	mtesting "github.com/go-drift/motion/pkg/testing"
)

func load(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("Load(%s): %v", name, err)
	}
	return s
}

func cycleKinds(trace *Trace, cycle int) []EventKind {
	var kinds []EventKind
	for _, e := range trace.Events {
		if e.Cycle == cycle {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

func TestRun_StandaloneReorder(t *testing.T) {
	trace, err := NewRunner(load(t, "reorder.yaml"), nil).Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []EventKind{EventCycle, EventSkip, EventCommit}
	if got := cycleKinds(trace, 1); !slices.Equal(got, want) {
		t.Errorf("cycle 1 = %v, want %v", got, want)
	}

	want = []EventKind{
		EventCycle,
		EventSnapshot, EventAdd, EventSnapshot, EventAdd,
		EventCommit,
		EventMeasure, EventMeasure, EventReady, EventReady,
		EventFlush,
	}
	if got := cycleKinds(trace, 2); !slices.Equal(got, want) {
		t.Errorf("cycle 2 = %v, want %v", got, want)
	}

	var ready []string
	for _, e := range trace.Events {
		if e.Kind == EventReady {
			ready = append(ready, e.String())
		}
	}
	wantReady := []string{
		"ready a from translate(0, -40) scale(1, 1)",
		"ready b from translate(0, 40) scale(1, 1)",
	}
	if !slices.Equal(ready, wantReady) {
		t.Errorf("ready events = %q, want %q", ready, wantReady)
	}
}

func TestRun_SharedHandover(t *testing.T) {
	r := NewRunner(load(t, "handover.toml"), nil)
	trace, err := r.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []EventKind{EventCycle, EventCommit, EventRegister, EventRegister}
	if got := cycleKinds(trace, 1); !slices.Equal(got, want) {
		t.Errorf("cycle 1 = %v, want %v", got, want)
	}

	// Both elements changed identity, so each is removed and registered once.
	want = []EventKind{
		EventCycle,
		EventSnapshot, EventSnapshot, EventSync,
		EventCommit,
		EventRemove, EventRegister, EventRemove, EventRegister,
		EventAdd, EventAdd, EventMeasure, EventMeasure, EventReady, EventReady,
		EventFlush,
	}
	if got := cycleKinds(trace, 2); !slices.Equal(got, want) {
		t.Errorf("cycle 2 = %v, want %v", got, want)
	}

	want = []EventKind{
		EventCycle,
		EventSnapshot, EventSnapshot, EventSync,
		EventCommit,
		EventRemove,
		EventAdd, EventMeasure, EventReady,
		EventFlush,
	}
	if got := cycleKinds(trace, 3); !slices.Equal(got, want) {
		t.Errorf("cycle 3 = %v, want %v", got, want)
	}

	g, ok := r.Group("cards")
	if !ok {
		t.Fatal("expected group cards")
	}
	if g.Len() != 1 {
		t.Errorf("group holds %d members, want 1", g.Len())
	}
	if lead, ok := g.Lead("card"); !ok {
		t.Error("expected a lead for card")
	} else if lead.Name() != "detail" {
		t.Errorf("lead for card = %s, want detail", lead.Name())
	}
	if thumb, _ := r.Element("thumb"); !thumb.Detached() {
		t.Error("thumb should be detached")
	}
}

func TestRun_RemountBindsFreshController(t *testing.T) {
	errs := mtesting.CaptureErrors(t)
	s, err := Parse([]byte(`version: v1.0.0
elements:
  - name: a
    layout: true
    box: [0, 0, 10, 10]
cycles:
  - mount: [a]
  - unmount: [a]
  - mount: [a]
  - set:
      - element: a
        box: [20, 0, 10, 10]
`), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	r := NewRunner(s, nil)
	trace, err := r.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []EventKind{
		EventCycle,
		EventSnapshot, EventAdd,
		EventCommit,
		EventMeasure, EventReady,
		EventFlush,
	}
	if got := cycleKinds(trace, 4); !slices.Equal(got, want) {
		t.Errorf("cycle 4 = %v, want %v", got, want)
	}
	if a, _ := r.Element("a"); a.Detached() {
		t.Error("a should be mounted again")
	}
	if len(errs.Errors) != 0 {
		t.Errorf("unexpected errors: %v", errs.Errors)
	}
}

func TestRun_MaxCycles(t *testing.T) {
	trace, err := NewRunner(load(t, "handover.toml"), nil).Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, e := range trace.Events {
		if e.Cycle > 1 {
			t.Fatalf("event from cycle %d past the limit: %s", e.Cycle, e)
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trace, err := NewRunner(load(t, "reorder.yaml"), nil).Run(ctx, 0)
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(trace.Events) != 0 {
		t.Errorf("expected no events, got %d", len(trace.Events))
	}
}

func TestRun_RestoresHooks(t *testing.T) {
	if _, err := NewRunner(load(t, "reorder.yaml"), nil).Run(context.Background(), 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := observe.Get().(*Trace); ok {
		t.Error("hooks still point at the trace after Run")
	}
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{Event{Kind: EventCycle, Detail: "1"}, "cycle 1"},
		{Event{Kind: EventAdd, Element: "a"}, "add a"},
		{Event{Kind: EventSync, Group: "cards", Detail: "2 members"}, "cards sync 2 members"},
		{Event{Kind: EventRegister, Group: "cards", Element: "a", Detail: "order=1"}, "cards register a order=1"},
	}
	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatRect(t *testing.T) {
	if got := formatRect(rectOf([]float64{1, 2, 3, 4})); got != "[1 2 3 4]" {
		t.Errorf("formatRect = %q", got)
	}
	if got := formatRect(rectOf(nil)); got != "[0 0 0 0]" {
		t.Errorf("formatRect(empty) = %q", got)
	}
}
