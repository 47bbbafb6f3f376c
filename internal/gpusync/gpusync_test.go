package gpusync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFenceWaitUnblocksOnSignal(t *testing.T) {
	f := NewFence(1)
	require.False(t, f.Signaled())

	go func() {
		time.Sleep(5 * time.Millisecond)
		f.Signal()
	}()

	require.NoError(t, f.Wait(time.Second))
	require.True(t, f.Signaled())
}

func TestFenceWaitTimesOut(t *testing.T) {
	f := NewFence(1)
	err := f.Wait(5 * time.Millisecond)
	require.ErrorIs(t, err, ErrFenceTimeout)
}

func TestFenceSignalIdempotent(t *testing.T) {
	f := NewFence(1)
	f.Signal()
	require.NotPanics(t, func() { f.Signal() })
}

func TestFenceRetireQueueBlocksPastMaxInFlight(t *testing.T) {
	q := NewFenceRetireQueue(2)
	ctx := context.Background()

	f1, f2 := NewFence(1), NewFence(2)
	require.NoError(t, q.Push(ctx, f1))
	require.NoError(t, q.Push(ctx, f2))

	pushed := make(chan struct{})
	f3 := NewFence(3)
	go func() {
		require.NoError(t, q.Push(ctx, f3))
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("Push should have blocked past maxInFlight until a fence retires")
	case <-time.After(20 * time.Millisecond):
	}

	f1.Signal()
	drained := q.DrainSignaled()
	require.Len(t, drained, 1)
	require.Same(t, f1, drained[0])

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("Push should have unblocked after a slot freed")
	}
}

func TestFenceRetireQueueDrainSignaledStopsAtFirstUnsignaled(t *testing.T) {
	q := NewFenceRetireQueue(3)
	ctx := context.Background()
	f1, f2, f3 := NewFence(1), NewFence(2), NewFence(3)
	require.NoError(t, q.Push(ctx, f1))
	require.NoError(t, q.Push(ctx, f2))
	require.NoError(t, q.Push(ctx, f3))

	f1.Signal()
	f3.Signal() // retired out of order, but f2 still blocks draining it

	drained := q.DrainSignaled()
	require.Len(t, drained, 1)
	require.Equal(t, 2, q.Len())
}

func TestLockManagerWaitForLockedRange(t *testing.T) {
	m := NewLockManager(3)
	fence := NewFence(1)
	lock := m.LockRange(BufferID(1), Range{Offset: 0, Length: 64}, fence)
	require.NotNil(t, lock)

	go func() {
		time.Sleep(5 * time.Millisecond)
		fence.Signal()
	}()

	err := m.WaitForLockedRange(BufferID(1), Range{Offset: 32, Length: 16}, time.Second)
	require.NoError(t, err)
}

func TestLockManagerWaitForNonOverlappingRangeReturnsImmediately(t *testing.T) {
	m := NewLockManager(3)
	fence := NewFence(1) // never signaled
	m.LockRange(BufferID(1), Range{Offset: 0, Length: 16}, fence)

	err := m.WaitForLockedRange(BufferID(1), Range{Offset: 100, Length: 16}, 10*time.Millisecond)
	require.NoError(t, err)
}

func TestLockManagerGCRemovesOnlyStaleSignaledLocks(t *testing.T) {
	m := NewLockManager(2)
	staleFence := NewFence(1)
	staleFence.Signal()
	m.LockRange(BufferID(1), Range{Offset: 0, Length: 16}, staleFence)

	freshFence := NewFence(10)
	m.LockRange(BufferID(1), Range{Offset: 0, Length: 16}, freshFence)

	removed := m.GC(10)
	require.Equal(t, 1, removed)
}

func TestRingIndexEnforcesWriteReadInvariant(t *testing.T) {
	r := NewRingIndex(2)
	ctx := context.Background()

	slot0, err := r.AdvanceWrite(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), slot0)

	slot1, err := r.AdvanceWrite(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), slot1)

	blocked := make(chan struct{})
	go func() {
		_, _ = r.AdvanceWrite(ctx)
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("AdvanceWrite should block once R slots are outstanding")
	case <-time.After(20 * time.Millisecond):
	}

	r.AdvanceRead()
	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("AdvanceWrite should unblock after a read retires")
	}
}
