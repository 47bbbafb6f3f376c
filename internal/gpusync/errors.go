// Package gpusync implements the frame-in-flight synchronization layer:
// fences tagged with a frame index, a bounded retire queue, a buffer-lock
// manager enforcing total retirement order per buffer, and the paired
// read/write ring index used by the transient buffer allocator.
package gpusync

import "errors"

var (
	// ErrFenceTimeout is returned by Fence.Wait when the fence has not
	// signaled within the given timeout.
	ErrFenceTimeout = errors.New("gpusync: fence wait timed out")

	// ErrLockWaitTimeout is returned by LockManager.WaitForLockedRange when
	// an overlapping lock's fence has not retired within the timeout.
	ErrLockWaitTimeout = errors.New("gpusync: lock wait timed out")

	// ErrRetireQueueClosed is returned by FenceRetireQueue.Push once the
	// queue has been closed (engine shutdown).
	ErrRetireQueueClosed = errors.New("gpusync: retire queue is closed")
)
