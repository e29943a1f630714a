package rawpipe

import (
	"log/slog"

	"golang.org/x/sync/errgroup"

	"rawpipe/pkg/envconfig"
)

// forEachRow runs fn once for every row index in [0, n). Rows are handed out
// in contiguous chunks to at most RAWPIPE_NUM_THREADS workers. fn must only
// write to output owned by its row.
func forEachRow(n int, fn func(y int)) {
	if n <= 0 {
		return
	}
	workers := min(envconfig.NumThreads(), n)
	if workers <= 1 {
		for y := 0; y < n; y++ {
			fn(y)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	slog.Debug("row fan-out", "rows", n, "workers", workers, "chunk", chunk)

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for y := start; y < end; y++ {
				fn(y)
			}
			return nil
		})
	}
	// Row functions cannot fail; Wait only joins.
	_ = g.Wait()
}
