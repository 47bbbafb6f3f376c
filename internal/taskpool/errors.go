package taskpool

import "errors"

var (
	// ErrSlotRingExhausted is returned by CreateTask when no slot ring entry
	// freed up within the bounded retry count. Fatal per spec — callers
	// should not retry indefinitely; implementations needing more headroom
	// should allocate a larger ring instead.
	ErrSlotRingExhausted = errors.New("taskpool: slot ring exhausted after bounded retry")

	// ErrPoolClosed names use of a pool after Shutdown. Start and CreateTask
	// do not check for shutdown, so no function of this package returns it.
	ErrPoolClosed = errors.New("taskpool: pool is shut down")

	// ErrNotOwningThread names a WaitForAll call from a goroutine other
	// than the one that constructed the Pool. Spec.md restricts
	// wait_for_all to the owning/driver thread; Go can't enforce goroutine
	// identity, so WaitForAll does not check its caller and never returns
	// this error.
	ErrNotOwningThread = errors.New("taskpool: wait_for_all called off the owning goroutine")
)
