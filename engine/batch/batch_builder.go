package batch

// BatcherOption is a functional option used to configure a Batcher during construction.
type BatcherOption func(*batcher)

// WithWorkers sets the number of packing workers.
// Values <= 0 keep the default (NumCPU - 1, minimum 1).
//
// Parameters:
//   - n: the number of worker goroutines for parallel packing
//
// Returns:
//   - BatcherOption: a function that sets the worker count
func WithWorkers(n int) BatcherOption {
	return func(b *batcher) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithParallelThreshold sets the minimum run length that is packed on the
// worker pool instead of inline. Small frames pack faster without the
// hand-off overhead.
//
// Parameters:
//   - n: the minimum run length for parallel packing
//
// Returns:
//   - BatcherOption: a function that sets the threshold
func WithParallelThreshold(n int) BatcherOption {
	return func(b *batcher) {
		if n > 0 {
			b.parallelThreshold = n
		}
	}
}
