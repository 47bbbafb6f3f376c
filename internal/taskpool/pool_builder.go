package taskpool

// PoolOption configures a Pool at construction time, mirroring the engine
// builder's functional-option pattern.
type PoolOption func(*pool)

// WithRingSize sets the slot-ring capacity (rounded up to the next power of
// two). Defaults to 4096 when unset.
func WithRingSize(size int) PoolOption {
	return func(p *pool) {
		p.ring = newSlotRing(size)
	}
}

// WithQueueCapacity sets the worker job queue's buffer size. Defaults to
// 4096 when unset.
func WithQueueCapacity(capacity int) PoolOption {
	return func(p *pool) {
		if capacity <= 0 {
			capacity = 1
		}
		p.queue = make(chan job, capacity)
	}
}

// WithThreadNamer registers a callback invoked once per worker goroutine at
// startup with its worker index, so callers can tag goroutines for
// profiling the way the original pool tagged its worker threads.
func WithThreadNamer(namer func(workerIndex int)) PoolOption {
	return func(p *pool) {
		p.threadNamer = namer
	}
}
