package aggregate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/NielsBongers/rust-orbital-debris/internal/series"
)

// loadJob is a unit of work for the reader pool.
type loadJob struct {
	index  int
	source series.Source
}

// loadResult is the outcome of reading one source.
type loadResult struct {
	index  int
	series series.Series
	err    error
}

// ReaderPool reads entity sources on a fixed number of goroutines.
type ReaderPool struct {
	workers int
	logger  *slog.Logger
	load    func(series.Source) (series.Series, error)
}

// NewReaderPool creates a pool with the given number of workers.
func NewReaderPool(workers int, logger *slog.Logger) *ReaderPool {
	if workers < 1 {
		workers = 1
	}
	return &ReaderPool{
		workers: workers,
		logger:  logger,
		load:    series.Load,
	}
}

// LoadBatch reads every source. The returned slice is indexed like srcs,
// whatever order the reads finish in. On cancellation the remaining slots
// are left zero and ctx.Err() is returned.
func (rp *ReaderPool) LoadBatch(ctx context.Context, srcs []series.Source) ([]loadResult, error) {
	out := make([]loadResult, len(srcs))
	if len(srcs) == 0 {
		return out, nil
	}

	jobs := make(chan loadJob, rp.workers*2)
	results := make(chan loadResult, rp.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < rp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				s, err := rp.load(job.source)
				select {
				case results <- loadResult{index: job.index, series: s, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, src := range srcs {
			select {
			case jobs <- loadJob{index: i, source: src}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		out[res.index] = res
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	rp.logger.Debug("sources loaded", "count", len(srcs), "workers", rp.workers)
	return out, nil
}
