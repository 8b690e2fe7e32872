// Package measure schedules when an animated element snapshots its
// pre-update geometry and when post-update measurement is flushed.
//
// A [Scheduler] is bound to one element for that element's lifetime. The host
// drives it through three phases per update cycle:
//
//   - OnAttach, once, after the element's first commit.
//   - OnBeforeCommit, before the cycle's tree mutation is committed.
//   - OnAfterCommit, after the commit completes.
//
// OnDetach ends the binding when the element unmounts.
//
// # Sync Targets
//
// Every scheduler synchronizes through a [SyncTarget], which is either a
// shared layout group or a standalone batcher:
//
//	grouped := measure.New(card, measure.Grouped[*visual.Element](group), &order)
//	standalone := measure.New(box, measure.Standalone[*visual.Element](batcher), nil)
//
// In grouped mode the scheduler registers the element on attach, asks the
// group to synchronize before commit, and re-registers the element after
// commit whenever its layout id or layout order changed. The group does the
// snapshotting and measuring itself.
//
// In standalone mode the scheduler snapshots the element and queues it on
// the batcher before commit, then flushes the batcher after commit. Several
// elements may share one batcher; the first flush of a cycle measures them
// all and the rest find an empty queue.
//
// # Lifecycle Faults
//
// Calls made out of order are reported through [errors.Report] as a
// [errors.LifecycleError]. A scheduler never registers an element twice and
// never touches its collaborators after OnDetach.
package measure
