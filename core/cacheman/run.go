package cacheman

import (
	"context"
	"sync"

	"seqcache/core/streamreader"
)

// WorkerFunc is the per-worker callback Run invokes once for each of the n
// workers, concurrently. Implementations drive a record parser against h
// until HasMoreData returns false, and should return ctx.Err() promptly if
// ctx is canceled mid-run.
type WorkerFunc func(ctx context.Context, h *Handle) error

// Run builds a Manager over reader sized for n workers and bufferSize total
// bytes, then starts n goroutines each calling fn with their own Handle. It
// blocks until every worker returns, and returns the non-nil error of the
// lowest-numbered worker that failed (the rest are discarded).
//
// Run is the external entry point that supplies the "thread id" a Handle's
// methods are keyed on; callers never construct a Handle directly.
func Run(ctx context.Context, reader streamreader.Reader, n, bufferSize int, fn WorkerFunc) (*Manager, error) {
	m, err := NewManager(reader, n, bufferSize)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id int) {
			defer wg.Done()
			errs[id] = fn(ctx, m.Handle(id))
		}(i)
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return m, e
		}
	}
	return m, nil
}
