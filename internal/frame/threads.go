package frame

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunThreads runs n independent ThreadStates concurrently, each handed to
// work. It backs `pyvm run --workers N`, which replays the same code
// object across N goroutines to exercise frame/thread-state isolation —
// no Python-level threading primitive is implemented, only this host-side
// harness for confirming nothing is shared between ThreadStates that
// shouldn't be (spec.md section 4.6, "Thread-state model").
func RunThreads(ctx context.Context, n int, work func(ctx context.Context, ts *ThreadState) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			ts := NewThreadState()
			return work(gctx, ts)
		})
	}
	return g.Wait()
}
