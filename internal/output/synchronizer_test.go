package output

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestOrderedTwoWorkersOutOfOrderCompletion(t *testing.T) {
	sink := NewMemSink()
	s := NewSynchronizer(Ordered)

	release0 := make(chan struct{})

	w0 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.Str("A\n")
		<-release0
		return nil
	})
	w1 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.Str("B\n")
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = w0.Run(context.Background()) }()

	// Give w0 time to buffer A and block on release0 before w1 starts.
	time.Sleep(10 * time.Millisecond)

	go func() { defer wg.Done(); _ = w1.Run(context.Background()) }()

	// Let w1 buffer B and reach its Acquire wait for slot 0 before
	// releasing w0.
	time.Sleep(10 * time.Millisecond)
	close(release0)

	wg.Wait()

	if got := sink.String(); got != "A\nB\n" {
		t.Fatalf("got %q, want %q", got, "A\nB\n")
	}
}

func TestOrderedThreeWorkersEmptyMiddle(t *testing.T) {
	sink := NewMemSink()
	s := NewSynchronizer(Ordered)

	w0 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.Str("A\n")
		return nil
	})
	w1 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		return nil // empty output
	})
	w2 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.Str("C\n")
		return nil
	})

	// completion order 1, 2, 0: w1 (empty) marks its slot done, w2
	// buffers C and waits in Acquire for slot 2, then w0 emits A and its
	// Finish advances last past the completed slot 1 to release w2.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); _ = w1.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	go func() { defer wg.Done(); _ = w2.Run(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	go func() { defer wg.Done(); _ = w0.Run(context.Background()) }()
	wg.Wait()

	if got := sink.String(); got != "A\nC\n" {
		t.Fatalf("got %q, want %q", got, "A\nC\n")
	}
}

func TestSynchronizerCancelIsAbsorbing(t *testing.T) {
	s := NewSynchronizer(Ordered)

	const waiters = 4
	done := make(chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		slot := int64(i + 5) // nobody ever advances `last` to these
		go func() {
			var l Lock
			s.Acquire(&l, slot) // blocks until cancelled
			s.Release(&l)
			s.Finish(&l, slot) // ORDERED keeps the mutex until Finish, as a Worker's End does
			done <- struct{}{}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	s.Cancel()

	for i := 0; i < waiters; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("waiter did not wake within bound after cancel")
		}
	}

	if !s.Cancelled() {
		t.Fatal("expected Cancelled() true after Cancel()")
	}

	// A further Finish after cancel must not panic and must not block.
	var l2 Lock
	s.Finish(&l2, 5)
}

// TestOrderedEmitsAscendingBySlotRegardlessOfCompletionOrder is the
// general form of the two scenarios above: for any permutation of
// completion order across N workers, ORDERED mode must still emit
// blocks 0..N-1 in ascending slot order (spec.md §8).
func TestOrderedEmitsAscendingBySlotRegardlessOfCompletionOrder(t *testing.T) {
	sink := NewMemSink()
	s := NewSynchronizer(Ordered)

	const n = 6
	completionOrder := []int{4, 1, 5, 0, 3, 2}

	workers := make([]*Worker, n)
	for i := 0; i < n; i++ {
		i := i
		workers[i] = NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
			w.Str(string(rune('A' + i)))
			w.Newline(true)
			return nil
		})
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for _, idx := range completionOrder {
		idx := idx
		go func() {
			defer wg.Done()
			_ = workers[idx].Run(context.Background())
		}()
		// Stagger starts slightly so slower-to-schedule workers with
		// smaller slots are still in flight when later ones complete.
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	want := "A\nB\nC\nD\nE\nF\n"
	if got := sink.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnorderedSerializesEmitBlocks(t *testing.T) {
	s := NewSynchronizer(Unordered)
	sink := NewMemSink()

	const n = 8
	workers := make([]*Worker, n)
	for i := 0; i < n; i++ {
		i := i
		workers[i] = NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
			w.Str("x")
			w.Str("\n")
			return nil
		})
	}
	errs := RunWorkers(context.Background(), workers)
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected worker error: %v", err)
		}
	}

	got := sink.String()
	if len(got) != n*2 {
		t.Fatalf("expected %d bytes, got %d (%q)", n*2, len(got), got)
	}
	for i := 0; i < len(got); i += 2 {
		if got[i] != 'x' || got[i+1] != '\n' {
			t.Fatalf("interleaved output at byte %d: %q", i, got)
		}
	}
}
