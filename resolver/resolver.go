// Package resolver turns a batch of artwork ids into constructed artifacts
// using a fixed size worker pool, tolerating per item failures.
package resolver

import (
	"runtime"
	"sync"

	pikax "github.com/Akashic-y/Pikax"
)

// ProgressFunc is called once per completed item with the number of items
// finished so far and the batch total.
type ProgressFunc func(done, total int)

// Options tune one Resolve invocation.
type Options struct {
	// Concurrency is the worker pool size, defaulting to the available
	// parallelism when zero or negative.
	Concurrency int
	// OnProgress, when set, is invoked after every completion. Calls are
	// serialized by the resolver, the callback needs no locking of its own.
	OnProgress ProgressFunc
	// Log receives per item failure logs, defaulting to a null logger.
	Log pikax.Logger
}

// Result partitions a batch into constructed artifacts and failed ids.
// Successes are in completion order, which is not the input order.
type Result[T any] struct {
	Successes []T
	Failures  []pikax.ArtworkID
}

// Resolve runs construct for every id on a worker pool and collects the
// outcomes. The input is treated as a multiset of work items, duplicate ids
// are processed once per occurrence. A failing construct only moves that id
// into Failures, it never aborts the batch. There is no per item timeout
// here, bounding an item's wall clock time is the constructor's job.
func Resolve[T any](ids []pikax.ArtworkID, construct func(pikax.ArtworkID) (T, error), opts Options) Result[T] {
	log := opts.Log
	if log == nil {
		log = &pikax.NullLogger{}
	}

	total := len(ids)
	res := Result[T]{}
	if total == 0 {
		return res
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > total {
		concurrency = total
	}

	work := make(chan pikax.ArtworkID)

	// the result slices and the progress counter are the only shared
	// state, guarded by one mutex
	var mu sync.Mutex
	var done int

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for id := range work {
				item, err := construct(id)

				mu.Lock()
				if err != nil {
					log.WithError(err).Warnf("failed resolving artwork %s", id)
					res.Failures = append(res.Failures, id)
				} else {
					res.Successes = append(res.Successes, item)
				}

				done++
				if opts.OnProgress != nil {
					opts.OnProgress(done, total)
				}
				mu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		work <- id
	}
	close(work)
	wg.Wait()

	return res
}
