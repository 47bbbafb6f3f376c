package gpusync

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// RingIndex is the paired read/write monotonic counter pair from spec.md
// §3's Ring-Buffered Resource: write advances when the CPU stages new data,
// read advances only after the fence covering the previously-written slot
// has retired. The semaphore enforces write-read <= R by construction —
// AdvanceWrite blocks once R writes are outstanding past the last
// AdvanceRead.
type RingIndex struct {
	slots uint64
	read  atomic.Uint64
	write atomic.Uint64
	sem   *semaphore.Weighted
}

// NewRingIndex creates a RingIndex with the given slot count R.
func NewRingIndex(slots int) *RingIndex {
	if slots <= 0 {
		slots = 1
	}
	return &RingIndex{
		slots: uint64(slots),
		sem:   semaphore.NewWeighted(int64(slots)),
	}
}

// Slots returns R, the number of ring slots.
func (r *RingIndex) Slots() uint64 {
	return r.slots
}

// AdvanceWrite claims the next write slot, blocking until a slot is free
// (i.e. until AdvanceRead has retired an old one) if all R slots are
// currently outstanding. Returns the slot index (write index mod R).
func (r *RingIndex) AdvanceWrite(ctx context.Context) (uint64, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return 0, err
	}
	idx := r.write.Add(1) - 1
	return idx % r.slots, nil
}

// AdvanceRead retires the oldest outstanding write slot, freeing capacity
// for a future AdvanceWrite. Must be called only after the fence covering
// that slot has retired.
func (r *RingIndex) AdvanceRead() {
	r.read.Add(1)
	r.sem.Release(1)
}

// CurrentWriteSlot returns the slot index of the most recent AdvanceWrite
// without claiming a new one.
func (r *RingIndex) CurrentWriteSlot() uint64 {
	w := r.write.Load()
	if w == 0 {
		return 0
	}
	return (w - 1) % r.slots
}

// CurrentReadSlot returns the slot index of the most recently retired read.
func (r *RingIndex) CurrentReadSlot() uint64 {
	rd := r.read.Load()
	if rd == 0 {
		return 0
	}
	return (rd - 1) % r.slots
}

// Outstanding returns write - read, the number of slots currently in
// flight.
func (r *RingIndex) Outstanding() uint64 {
	return r.write.Load() - r.read.Load()
}
