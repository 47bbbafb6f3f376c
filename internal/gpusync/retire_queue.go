package gpusync

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// FenceRetireQueue is a bounded FIFO of in-flight fences. Push blocks once
// maxInFlight fences are outstanding — the "block on the oldest fence
// rather than overwrite its ring slot" boundary behavior from spec.md §8 —
// rather than growing unbounded. DrainSignaled pops every fence at the
// front of the queue that has already retired.
type FenceRetireQueue struct {
	mu     sync.Mutex
	items  []*Fence
	sem    *semaphore.Weighted
	closed bool
}

// NewFenceRetireQueue creates a queue admitting at most maxInFlight
// concurrently outstanding fences (MAX_FRAMES_IN_FLIGHT in spec.md terms).
func NewFenceRetireQueue(maxInFlight int) *FenceRetireQueue {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &FenceRetireQueue{sem: semaphore.NewWeighted(int64(maxInFlight))}
}

// Push admits a fence into the queue, blocking until a slot is free if
// maxInFlight fences are already outstanding. Returns ErrRetireQueueClosed
// if Close has been called.
func (q *FenceRetireQueue) Push(ctx context.Context, f *Fence) error {
	if err := q.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.sem.Release(1)
		return ErrRetireQueueClosed
	}
	q.items = append(q.items, f)
	return nil
}

// DrainSignaled pops every already-retired fence from the front of the
// queue (stopping at the first unsignaled one, preserving FIFO order) and
// releases its semaphore slot. Returns the drained fences.
func (q *FenceRetireQueue) DrainSignaled() []*Fence {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := 0
	for i < len(q.items) && q.items[i].Signaled() {
		i++
	}
	if i == 0 {
		return nil
	}
	drained := make([]*Fence, i)
	copy(drained, q.items[:i])
	q.items = q.items[i:]
	q.sem.Release(int64(i))
	return drained
}

// Len returns the number of currently outstanding (un-drained) fences.
func (q *FenceRetireQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// WaitAll blocks until every outstanding fence has signaled, used when
// draining the queue during device-lost recovery or shutdown (spec.md §7,
// §8 S6). It does not remove the fences; call DrainSignaled afterward.
func (q *FenceRetireQueue) WaitAll() {
	q.mu.Lock()
	items := make([]*Fence, len(q.items))
	copy(items, q.items)
	q.mu.Unlock()

	for _, f := range items {
		f.Wait(0)
	}
}

// Close marks the queue closed; subsequent Push calls fail.
func (q *FenceRetireQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
