// Package testing provides recording fakes for layout synchronization tests.
//
// A [Recorder] collects every collaborator call in order, so tests can
// assert on the exact sequence a scheduler produced:
//
//	func TestStandalone(t *testing.T) {
//	    rec := mtesting.NewRecorder()
//	    el := rec.Element("E", "")
//	    b := rec.Batcher("B")
//
//	    s := measure.New(el, measure.Standalone[*mtesting.FakeElement](b), nil)
//	    s.OnAttach()
//	    s.OnBeforeCommit()
//	    s.OnAfterCommit()
//
//	    want := []string{"E.snapshot", "B.add(E)", "B.flush"}
//	    if got := rec.Ops(); !slices.Equal(got, want) {
//	        t.Errorf("ops = %v, want %v", got, want)
//	    }
//	}
//
// # Reported Errors
//
// [CaptureErrors] swaps the global error handler for the duration of a test
// and collects every reported error.
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import mtesting "github.com/go-drift/motion/pkg/testing"
package testing
