package renderer

import "github.com/Mara-Voss/glimmer-core/internal/cmdbuffer"

// barrierAction classifies what, if anything, a MemoryBarrier transition
// requires on a backend with wgpu's implicit synchronization model. wgpu
// tracks resource usage per command-buffer submission itself and has no
// Vulkan-style explicit pipeline-barrier call; a barrier recorded here is
// therefore a bookkeeping/validation signal rather than a literal GPU
// command, matching how the teacher's backend never issues one either.
type barrierAction int

const (
	// barrierNone means the transition is implicit under wgpu's automatic
	// hazard tracking and needs no handling.
	barrierNone barrierAction = iota
	// barrierRequiresFlush means the source usage may still be in flight on
	// the GPU timeline and a caller reading the result on the CPU (a
	// ReadBufferData/ReadTexture) must wait on the frame's fence first.
	barrierRequiresFlush
)

// bufferBarrierTable classifies BufferLockIntent transitions by
// (SourceUsage, TargetUsage) pair. Entries absent from the table default to
// barrierNone.
var bufferBarrierTable = map[[2]cmdbuffer.MemoryUsage]barrierAction{
	{cmdbuffer.MemoryUsageGPUWrite, cmdbuffer.MemoryUsageCPURead}: barrierRequiresFlush,
	{cmdbuffer.MemoryUsageGPUWrite, cmdbuffer.MemoryUsageGPURead}: barrierRequiresFlush,
}

// textureBarrierTable classifies TextureTransition layout changes the same
// way, keyed by (OldLayout, NewLayout).
var textureBarrierTable = map[[2]cmdbuffer.TextureLayout]barrierAction{
	{cmdbuffer.TextureLayoutColorAttachment, cmdbuffer.TextureLayoutShaderReadOnly}: barrierRequiresFlush,
	{cmdbuffer.TextureLayoutDepthStencilAttachment, cmdbuffer.TextureLayoutShaderReadOnly}: barrierRequiresFlush,
}

// lowerBarrier classifies every transition in c. It returns true if any
// transition requires the caller to synchronize with the GPU timeline
// before proceeding (a CPU readback after a GPU write, most commonly).
// Callers that need to act on this (e.g. ReadBufferData's implementation)
// consult the return value; Submit itself only records the classification
// for now since no command in the current set performs a CPU readback
// inline with a barrier.
func lowerBarrier(c cmdbuffer.MemoryBarrier) bool {
	requiresFlush := false
	for _, l := range c.BufferLocks {
		if bufferBarrierTable[[2]cmdbuffer.MemoryUsage{l.SourceUsage, l.TargetUsage}] == barrierRequiresFlush {
			requiresFlush = true
		}
	}
	for _, t := range c.TextureTransitions {
		if textureBarrierTable[[2]cmdbuffer.TextureLayout{t.OldLayout, t.NewLayout}] == barrierRequiresFlush {
			requiresFlush = true
		}
	}
	return requiresFlush
}
