package engine

import (
	"github.com/Mara-Voss/glimmer-core/engine/scene"
	"github.com/Mara-Voss/glimmer-core/internal/gpusync"
)

// FrameContext carries the state threaded through a single frame's stage
// pipeline: the frame index, the delta time since the previous frame, and
// the active scenes snapshotted once at frame start so concurrent stage
// work sees a stable view even if a scene is added or removed mid-frame.
type FrameContext struct {
	Index     gpusync.FrameIndex
	DeltaTime float32
	Scenes    []scene.Scene

	cancel chan struct{}
}

// Cancelled reports whether Quit was called after this frame began.
// Stages check this between (never mid-) stage boundaries: a stage already
// running is allowed to finish its in-flight recording, but no further
// stage in the DAG starts once this returns true.
func (f *FrameContext) Cancelled() bool {
	select {
	case <-f.cancel:
		return true
	default:
		return false
	}
}
