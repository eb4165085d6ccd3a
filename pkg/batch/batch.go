package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Config holds worker pool configuration
type Config struct {
	// MaxConcurrency is the maximum number of inputs processed in parallel
	MaxConcurrency int
	// Timeout per input (0 disables the per-input deadline)
	Timeout time.Duration
}

// DefaultConfig returns the default configuration: five workers, no per-input timeout.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 5,
	}
}

// Func processes a single input.
type Func[I, O any] func(ctx context.Context, in I) (O, error)

// Result holds the outcome for the input at Index.
type Result[O any] struct {
	Index int
	Value O
	Err   error
}

// Map applies fn to every input and returns the results in input order.
func Map[I, O any](ctx context.Context, cfg Config, inputs []I, fn Func[I, O]) []Result[O] {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}

	results := make([]Result[O], len(inputs))
	if len(inputs) == 0 {
		return results
	}

	workers := cfg.MaxConcurrency
	if workers > len(inputs) {
		workers = len(inputs)
	}

	start := time.Now()
	queue := make(chan int, len(inputs))
	for i := range inputs {
		queue <- i
	}
	close(queue)

	// Each index is written by exactly one worker.
	done := make([]bool, len(inputs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			processed := 0

			for i := range queue {
				if ctx.Err() != nil {
					log.Debug().
						Int("worker_id", workerID).
						Int("processed", processed).
						Msg("Worker stopping (context cancelled)")
					return
				}

				itemCtx, cancel := ctx, context.CancelFunc(func() {})
				if cfg.Timeout > 0 {
					itemCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				}
				value, err := fn(itemCtx, inputs[i])
				cancel()

				results[i] = Result[O]{Index: i, Value: value, Err: err}
				done[i] = true
				processed++
			}
		}(w)
	}
	wg.Wait()

	failed := 0
	for i := range results {
		if !done[i] {
			results[i] = Result[O]{Index: i, Err: ctx.Err()}
		}
		if results[i].Err != nil {
			failed++
		}
	}

	log.Debug().
		Int("inputs", len(inputs)).
		Int("failed", failed).
		Int("workers", workers).
		Dur("duration", time.Since(start)).
		Msg("Batch complete")

	return results
}

// Errors returns the non-nil errors of results in input order.
func Errors[O any](results []Result[O]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
