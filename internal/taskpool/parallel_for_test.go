package taskpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParallelForCoversFullRange(t *testing.T) {
	p := New(4)
	defer p.Shutdown()

	const n = 97
	var hits [n]atomic.Int32

	p.ParallelFor(n, 10, ParallelForOptions{
		WaitForFinish: true,
		AllowPoolIdle: true,
	}, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i].Add(1)
		}
	})

	for i := 0; i < n; i++ {
		require.Equal(t, int32(1), hits[i].Load(), "index %d covered %d times", i, hits[i].Load())
	}
}

func TestParallelForUseCurrentThreadRunsLastPartitionInline(t *testing.T) {
	p := New(2)
	defer p.Shutdown()

	// Two partitions and no WaitForFinish: only an inline run guarantees the
	// last partition [5, 10) has completed by the time ParallelFor returns.
	var lastRan atomic.Bool
	p.ParallelFor(10, 5, ParallelForOptions{
		UseCurrentThread: true,
	}, func(start, end int) {
		if start == 5 {
			lastRan.Store(true)
		}
	})

	require.True(t, lastRan.Load())
}

func TestParallelForSinglePartitionRunsSynchronously(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	ran := false
	p.ParallelFor(3, 10, ParallelForOptions{}, func(start, end int) {
		ran = true
		require.Equal(t, 0, start)
		require.Equal(t, 3, end)
	})
	require.True(t, ran)
}
