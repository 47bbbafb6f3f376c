package taskpool

import "time"

// ParallelForOptions mirrors the original engine's ParallelForDescriptor:
// knobs controlling how a partitioned range is scheduled and awaited.
type ParallelForOptions struct {
	// Priority is applied to every partition Task.
	Priority Priority

	// UseCurrentThread runs the last partition inline on the calling
	// goroutine instead of submitting it to the pool, saving one
	// round-trip through the queue.
	UseCurrentThread bool

	// WaitForFinish blocks the call until every partition completes. When
	// false, ParallelFor returns immediately after submitting all
	// partitions and the caller is responsible for synchronizing (e.g. via
	// its own parent Task).
	WaitForFinish bool

	// AllowPoolIdle, when WaitForFinish is set, lets the waiting goroutine
	// cooperatively execute other queued tasks (ThreadWaiting) instead of
	// parking. When false the wait is a plain bounded poll that never
	// steals work — appropriate when the caller's own task must not be
	// reentered from inside the wait.
	AllowPoolIdle bool

	// AllowRunInIdle is propagated to each partition Task's allowInIdle
	// flag, permitting partitions to run from another goroutine's
	// ThreadWaiting call.
	AllowRunInIdle bool
}

// ParallelFor partitions [0, iterCount) into chunks of at most
// partitionSize and runs body(start, end) for each chunk, per opts.
func (p *pool) ParallelFor(iterCount, partitionSize int, opts ParallelForOptions, body func(start, end int)) {
	if iterCount <= 0 {
		return
	}
	if partitionSize <= 0 {
		partitionSize = iterCount
	}

	partitionCount := (iterCount + partitionSize - 1) / partitionSize
	if partitionCount == 1 {
		body(0, iterCount)
		return
	}

	lastInline := opts.UseCurrentThread
	submitCount := partitionCount
	if lastInline {
		submitCount--
	}

	parent, err := p.CreateTask(nil, nil, opts.AllowRunInIdle)
	if err != nil {
		// Ring exhausted: degrade to fully sequential execution rather than
		// losing work.
		for start := 0; start < iterCount; start += partitionSize {
			end := start + partitionSize
			if end > iterCount {
				end = iterCount
			}
			body(start, end)
		}
		return
	}

	for i := 0; i < submitCount; i++ {
		start := i * partitionSize
		end := start + partitionSize
		if end > iterCount {
			end = iterCount
		}
		child, err := p.CreateTask(parent, func(*Task) { body(start, end) }, opts.AllowRunInIdle)
		if err != nil {
			// Out of slots mid-submission: run the remainder inline so no
			// partition is silently dropped.
			body(start, end)
			continue
		}
		_ = p.Start(child, opts.Priority, nil)
	}

	if lastInline {
		start := submitCount * partitionSize
		end := start + partitionSize
		if end > iterCount {
			end = iterCount
		}
		if start < iterCount {
			body(start, end)
		}
	}

	// Release the aggregator's own unit of work now that every partition
	// has been submitted; Finished() becomes true once all children land.
	parent.children.Add(-1)

	if !opts.WaitForFinish {
		return
	}
	if opts.AllowPoolIdle {
		p.Wait(parent)
		return
	}
	for !parent.Finished() {
		time.Sleep(2 * time.Millisecond)
	}
}
