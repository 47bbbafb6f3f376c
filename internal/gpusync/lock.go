package gpusync

import (
	"sync"
	"time"
)

// BufferID identifies a GPU-visible buffer resource for locking purposes.
type BufferID uint64

// Range is a byte range [Offset, Offset+Length) within a buffer.
type Range struct {
	Offset uint64
	Length uint64
}

// Overlaps reports whether r and o describe intersecting byte ranges.
func (r Range) Overlaps(o Range) bool {
	return r.Offset < o.Offset+o.Length && o.Offset < r.Offset+r.Length
}

// BufferLock is a claim that the GPU may still be reading a byte range of a
// buffer; the CPU must not overwrite it until Fence retires.
type BufferLock struct {
	Buffer BufferID
	Range  Range
	Fence  *Fence
	Frame  FrameIndex
}

// LockManager owns all outstanding BufferLocks, keyed per buffer. Locks on
// a given buffer are totally ordered by creation (== submission order,
// since a buffer is single-writer); retirement is checked in that order.
type LockManager struct {
	mu                sync.Mutex
	locks             map[BufferID][]*BufferLock
	maxFramesInFlight int
}

// NewLockManager creates a LockManager that garbage-collects locks older
// than maxFramesInFlight frames once their fence has retired.
func NewLockManager(maxFramesInFlight int) *LockManager {
	return &LockManager{
		locks:             make(map[BufferID][]*BufferLock),
		maxFramesInFlight: maxFramesInFlight,
	}
}

// LockRange records a claim that fence must retire before rng of buffer can
// be safely overwritten by the CPU.
func (m *LockManager) LockRange(buffer BufferID, rng Range, fence *Fence) *BufferLock {
	lock := &BufferLock{Buffer: buffer, Range: rng, Fence: fence, Frame: fence.Frame()}
	m.mu.Lock()
	m.locks[buffer] = append(m.locks[buffer], lock)
	m.mu.Unlock()
	return lock
}

// WaitForLockedRange blocks until every outstanding lock overlapping rng on
// buffer has retired, in their total creation order. Returns
// ErrLockWaitTimeout if timeout elapses first; a non-positive timeout waits
// indefinitely.
func (m *LockManager) WaitForLockedRange(buffer BufferID, rng Range, timeout time.Duration) error {
	m.mu.Lock()
	overlapping := make([]*BufferLock, 0, len(m.locks[buffer]))
	for _, lock := range m.locks[buffer] {
		if lock.Range.Overlaps(rng) {
			overlapping = append(overlapping, lock)
		}
	}
	m.mu.Unlock()

	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for _, lock := range overlapping {
		remaining := timeout
		if timeout > 0 {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return ErrLockWaitTimeout
			}
		}
		if err := lock.Fence.Wait(remaining); err != nil {
			return err
		}
	}
	return nil
}

// GC removes locks on every buffer whose fence has retired and whose frame
// is more than maxFramesInFlight behind currentFrame. Returns the number of
// locks removed.
func (m *LockManager) GC(currentFrame FrameIndex) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for buffer, locks := range m.locks {
		kept := locks[:0]
		for _, lock := range locks {
			stale := currentFrame > FrameIndex(m.maxFramesInFlight) &&
				lock.Frame < currentFrame-FrameIndex(m.maxFramesInFlight)
			if stale && lock.Fence.Signaled() {
				removed++
				continue
			}
			kept = append(kept, lock)
		}
		m.locks[buffer] = kept
	}
	return removed
}
