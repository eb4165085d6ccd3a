// Package batch runs a function over a list of inputs with a bounded worker pool.
//
// Catalog lookups for many products (favorites enrichment, cache warm-up) go
// through the same rate-limited client, so the pool keeps the number of
// in-flight requests small while still overlapping network waits.
//
// Example usage:
//
//	results := batch.Map(ctx, batch.DefaultConfig(), ids, func(ctx context.Context, id int) (*catalog.Item, error) {
//		return catalogClient.GetByID(ctx, id)
//	})
//
// The pool:
//   - Starts at most MaxConcurrency workers
//   - Returns one Result per input, in input order
//   - Keeps going when single inputs fail
//   - Stops handing out work once ctx is done and marks the rest with ctx.Err()
package batch
