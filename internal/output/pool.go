package output

import (
	"context"
	"sync"
)

// RunWorkers launches one goroutine per Worker — the "pool of per-file
// worker threads" of spec.md §5 — and waits for all of them to finish.
// Cancelling ctx propagates to every in-flight Worker; RunWorkers
// itself never cancels ctx, that is the caller's job (e.g. the engine
// cancellation hook of spec.md §6).
func RunWorkers(ctx context.Context, workers []*Worker) []error {
	errs := make([]error, len(workers))
	var wg sync.WaitGroup
	wg.Add(len(workers))
	for i, wk := range workers {
		i, wk := i, wk
		go func() {
			defer wg.Done()
			errs[i] = wk.Run(ctx)
		}()
	}
	wg.Wait()
	return errs
}
