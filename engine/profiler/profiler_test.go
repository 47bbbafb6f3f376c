package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBeginScopeAccumulatesPerCategory(t *testing.T) {
	p := NewProfiler()

	stop := p.BeginScope(CategoryGraphics)
	time.Sleep(time.Millisecond)
	stop()

	p.categoryMu.Lock()
	d := p.categoryTime[CategoryGraphics]
	p.categoryMu.Unlock()

	require.Greater(t, d, time.Duration(0))
}

func TestTickResetsCategoryAccumulators(t *testing.T) {
	p := NewProfiler()
	p.updateInterval = 0

	stop := p.BeginScope(CategoryScene)
	stop()

	require.True(t, p.Tick())

	p.categoryMu.Lock()
	defer p.categoryMu.Unlock()
	require.Empty(t, p.categoryTime)
}
