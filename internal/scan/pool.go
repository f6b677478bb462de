package scan

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// DefaultWorkers caps the digest pool at four workers: full-content hashing
// is disk bound, and more concurrent readers just thrash seeks.
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	return workers
}

// Precompute warms the digests of every file using a bounded goroutine pool.
// Per-file read errors are not returned here; they stay sticky on the file
// and surface when the matcher asks for its digests. Precompute only fails
// on pool construction or context cancellation.
func Precompute(ctx context.Context, files []*File, workers int) error {
	if len(files) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create digest pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			break
		}
		file := f
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			_, _ = file.Digests()
		}); err != nil {
			wg.Done()
			wg.Wait()
			return fmt.Errorf("submit digest task: %w", err)
		}
	}
	wg.Wait()
	return ctx.Err()
}
