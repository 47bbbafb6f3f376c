package cmdbuffer

import "github.com/Mara-Voss/glimmer-core/internal/gpusync"

// ByteRange is a byte range within a buffer resource.
type ByteRange = gpusync.Range

// Rect is an integer 2D rectangle (scissor regions, blit/copy regions).
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Viewport is a floating-point viewport rectangle with depth range.
type Viewport struct {
	X, Y               float32
	Width, Height      float32
	MinDepth, MaxDepth float32
}

// LoadStoreOp is a render-target attachment load or store operation.
type LoadStoreOp int

const (
	LoadStoreDontCare LoadStoreOp = iota
	LoadStoreLoad
	LoadStoreClear
	LoadStoreStore
)

// ClearDescriptor is the per-attachment clear value recorded by a
// BeginRenderPass, per spec.md §3's RenderPassSpec.
type ClearDescriptor struct {
	Color        [4]float32
	Depth        float32
	Stencil      uint32
	ClearColor   bool
	ClearDepth   bool
	ClearStencil bool
}

// MaxClipPlanes bounds the active-plane mask width, matching the original
// engine's ClipPlaneList (see SPEC_FULL.md §9 supplemented features).
const MaxClipPlanes = 6

// ClipPlaneList is the active-plane mask plus plane-equation array
// supplemented from the original engine's ClipPlanes type.
type ClipPlaneList struct {
	ActiveMask uint8
	Equations  [MaxClipPlanes][4]float32
}

// RenderPassSpec describes the target(s) and behavior of one render pass,
// per spec.md §3. Its lifetime is one frame.
type RenderPassSpec struct {
	Targets        []Handle
	Clears         []ClearDescriptor
	SourceNodeHint uint64
	ClipPlanes     ClipPlaneList
	DrawMask       uint32
	ColorLoadOp    LoadStoreOp
	ColorStoreOp   LoadStoreOp
	DepthLoadOp    LoadStoreOp
	DepthStoreOp   LoadStoreOp
}

// UsageClass is the DescriptorSet binding hierarchy from spec.md §3:
// per-draw sets are the hottest, per-frame the coldest.
type UsageClass int

const (
	UsagePerDraw UsageClass = iota
	UsagePerBatch
	UsagePerPass
	UsagePerFrame
)

// ResourceBinding is one tagged-union binding-set entry (PER_DRAW class is
// bounded to 16 entries per spec.md §6).
type ResourceBinding struct {
	Slot        uint32
	UniformView *ByteRange // uniform-buffer-range, if set
	StorageView *ByteRange // storage-buffer-range, if set
	Texture     Handle     // combined-image-sampler texture view, if Valid
	Sampler     Handle     // combined-image-sampler sampler, if Valid
	StorageImg  Handle     // storage-image, if Valid
}

// Topology is the primitive topology of a draw call.
type Topology int

const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyLineStrip
	TopologyPointList
)

// IndirectDescriptor points at a buffer-resident indirect draw argument
// struct.
type IndirectDescriptor struct {
	Buffer Handle
	Offset uint64
}

// DrawCall is the generic draw descriptor from spec.md §4.C5: indexed vs.
// non-indexed, instance count, base-vertex/base-index, topology, and an
// optional indirect-buffer descriptor.
type DrawCall struct {
	Mesh          Handle // vertex/index buffer provider for this draw
	Indexed       bool
	Count         uint32 // vertex or index count
	InstanceCount uint32
	BaseVertex    int32
	BaseIndex     uint32
	Topology      Topology
	Indirect      *IndirectDescriptor
}

// MemoryUsage tags which side of a resource transition produced or
// consumes a write, driving the memory-barrier lowering table in C5.
type MemoryUsage int

const (
	MemoryUsageCPUWrite MemoryUsage = iota
	MemoryUsageCPURead
	MemoryUsageGPURead
	MemoryUsageGPUWrite
)

// BufferLockIntent is one buffer-side transition carried by a
// MemoryBarrier command.
type BufferLockIntent struct {
	Buffer      Handle
	Range       ByteRange
	SourceUsage MemoryUsage
	TargetUsage MemoryUsage
}

// TextureLayout is a GPU image layout, driving the texture-side half of the
// memory-barrier lowering table in C5.
type TextureLayout int

const (
	TextureLayoutUndefined TextureLayout = iota
	TextureLayoutShaderReadOnly
	TextureLayoutColorAttachment
	TextureLayoutDepthStencilAttachment
	TextureLayoutTransferSrc
	TextureLayoutTransferDst
	TextureLayoutPresent
)

// TextureTransition is one texture-side layout transition carried by a
// MemoryBarrier command.
type TextureTransition struct {
	Texture   Handle
	OldLayout TextureLayout
	NewLayout TextureLayout
}
