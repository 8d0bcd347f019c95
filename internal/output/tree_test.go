package output

import (
	"context"
	"testing"
)

func TestTreeEntryPrefixesNestedDirectories(t *testing.T) {
	sink := NewMemSink()
	s := NewSynchronizer(Ordered)

	w0 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.EmitTreeEntry("root", true, true, nil)
		w.Newline(true)
		return nil
	})
	w1 := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.EmitTreeEntry("child.go", false, true, []bool{false})
		w.Newline(true)
		return nil
	})

	errs := RunWorkers(context.Background(), []*Worker{w0, w1})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected worker error: %v", err)
		}
	}

	want := "└── root\n    └── child.go\n"
	if got := sink.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTreeEntryEntersAndLeavesUnderLock(t *testing.T) {
	sink := NewMemSink()
	s := NewSynchronizer(Unordered)
	w := NewWorker(s, sink, 0, 16, func(ctx context.Context, w *Writer) error {
		w.EmitTreeEntry("dir", true, false, nil)
		if got := w.TreePath(); got != "dir" {
			t.Fatalf("expected Tree to have entered \"dir\", got %q", got)
		}
		w.LeaveTreeDir()
		if got := w.TreePath(); got != "" {
			t.Fatalf("expected Tree to have left \"dir\", got %q", got)
		}
		return nil
	})
	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("unexpected worker error: %v", err)
	}
}
