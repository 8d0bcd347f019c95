package output

import "context"

// SearchFunc is one file's worth of engine work, already scoped to that
// file by the caller (the engine collaborator's RunSearch bound to a
// single target). Worker just needs somewhere to write the result.
type SearchFunc func(ctx context.Context, w *Writer) error

// Worker is a per-file search task: it runs the external grep engine
// (via fn), directs output through its own Writer, and announces
// begin/end to the Synchronizer (spec.md §4 "Worker").
type Worker struct {
	sync   *Synchronizer
	writer *Writer
	fn     SearchFunc
	slot   int64
}

// NewWorker creates a Worker with a fresh Writer over sink. Its slot is
// assigned immediately, in creation order, exactly as ugrep's own
// Workers are (spec.md §3: "a counter next assigning slots to Workers
// in creation order") — this is what lets callers spawn many goroutines
// without racing on slot order.
func NewWorker(sync *Synchronizer, sink Sink, maxWidth, hexColumns int, fn SearchFunc) *Worker {
	wk := &Worker{
		sync:   sync,
		writer: NewWriter(sink, sync, maxWidth, hexColumns),
		fn:     fn,
	}
	if sync != nil {
		wk.slot = sync.NextSlot()
	}
	return wk
}

// Writer exposes the Worker's output facade, e.g. so a caller can set
// FLUSH/HOLD/BINARY modes before Run.
func (wk *Worker) Writer() *Writer {
	return wk.writer
}

// Slot reports the slot this Worker was assigned at creation.
func (wk *Worker) Slot() int64 {
	return wk.slot
}

// Run runs fn and always announces completion to the Synchronizer, even
// on error or cancellation (spec.md §5 "Cancellation").
func (wk *Worker) Run(ctx context.Context) error {
	wk.writer.Begin(wk.slot)

	err := wk.fn(ctx, wk.writer)

	wk.writer.Hex.Done()
	wk.writer.End()
	return err
}
