package taskpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateTaskAndStartRunsCallback(t *testing.T) {
	p := New(2)
	defer p.Shutdown()

	var ran atomic.Bool
	task, err := p.CreateTask(nil, func(*Task) { ran.Store(true) }, false)
	require.NoError(t, err)

	require.NoError(t, p.Start(task, PriorityDontCare, nil))
	p.Wait(task)

	require.True(t, ran.Load())
	require.True(t, task.Finished())
}

func TestStartRealtimeRunsInline(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	var ran bool
	task, err := p.CreateTask(nil, func(*Task) { ran = true }, false)
	require.NoError(t, err)

	require.NoError(t, p.Start(task, PriorityRealtime, nil))
	require.True(t, ran)
	require.True(t, task.Finished())
}

func TestParentWaitsForChildren(t *testing.T) {
	p := New(4)
	defer p.Shutdown()

	var childRuns atomic.Int32
	parent, err := p.CreateTask(nil, func(*Task) {}, false)
	require.NoError(t, err)

	const childCount = 8
	children := make([]*Task, 0, childCount)
	for i := 0; i < childCount; i++ {
		c, err := p.CreateTask(parent, func(*Task) {
			time.Sleep(time.Millisecond)
			childRuns.Add(1)
		}, false)
		require.NoError(t, err)
		children = append(children, c)
	}
	for _, c := range children {
		require.NoError(t, p.Start(c, PriorityDontCare, nil))
	}
	require.NoError(t, p.Start(parent, PriorityDontCare, nil))

	p.Wait(parent)
	require.Equal(t, int32(childCount), childRuns.Load())
}

func TestFlushCallbackQueueInvokesCompletion(t *testing.T) {
	p := New(2)
	defer p.Shutdown()

	done := make(chan struct{}, 1)
	task, err := p.CreateTask(nil, func(*Task) {}, false)
	require.NoError(t, err)

	require.NoError(t, p.Start(task, PriorityDontCare, func() { done <- struct{}{} }))
	p.Wait(task)

	n := p.FlushCallbackQueue()
	require.Equal(t, 1, n)

	select {
	case <-done:
	default:
		t.Fatal("completion callback was not invoked by FlushCallbackQueue")
	}
}

func TestWaitForAllDrainsRunningTasks(t *testing.T) {
	p := New(4)

	var completed atomic.Int32
	for i := 0; i < 20; i++ {
		task, err := p.CreateTask(nil, func(*Task) { completed.Add(1) }, false)
		require.NoError(t, err)
		require.NoError(t, p.Start(task, PriorityDontCare, nil))
	}

	p.WaitForAll(false)
	require.Equal(t, int32(20), completed.Load())
	require.Equal(t, int32(0), p.RunningCount())

	p.Shutdown()
}

func TestSlotRingExhaustionIsBounded(t *testing.T) {
	r := newSlotRing(4)
	held := make([]*Task, 0, 4)
	for i := 0; i < 4; i++ {
		task, err := r.claim()
		require.NoError(t, err)
		held = append(held, task)
	}

	_, err := r.claim()
	require.ErrorIs(t, err, ErrSlotRingExhausted)

	held[0].children.Store(0)
	freed, err := r.claim()
	require.NoError(t, err)
	require.Same(t, held[0], freed)
}
