package transient

import (
	"context"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Mara-Voss/glimmer-core/internal/gpusync"
)

// Allocator creates and owns transient buffers. All buffers it allocates
// share one frame-level ring index and lock manager: the ring is advanced
// once per frame by the frame engine (spec.md §4.C3 "advancing the ring
// happens between frames"), not once per individual write.
type Allocator struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	limits wgpu.Limits

	ring  *gpusync.RingIndex
	locks *gpusync.LockManager

	nextBufferID atomic.Uint64
}

// NewAllocator creates an Allocator backed by device/queue, using limits for
// device alignment floors (uniform vs. storage — spec.md §4.C3) and sized
// for maxFramesInFlight ring slots (R).
func NewAllocator(device *wgpu.Device, queue *wgpu.Queue, limits wgpu.Limits, maxFramesInFlight int) *Allocator {
	return &Allocator{
		device: device,
		queue:  queue,
		limits: limits,
		ring:   gpusync.NewRingIndex(maxFramesInFlight),
		locks:  gpusync.NewLockManager(maxFramesInFlight),
	}
}

// Allocate creates a buffer with R frame-slots (not mapped at creation), each
// element_count*element_size bytes, aligned to the device's minimum
// alignment floor for desc.Usage.
func (a *Allocator) Allocate(desc Descriptor) (*Buffer, error) {
	align := alignmentFor(desc.Usage, a.limits)
	slotSize := roundUp(desc.byteSize(), align)
	total := slotSize * a.ring.Slots()

	raw, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            desc.Label,
		Size:             total,
		Usage:            wgpuUsage(desc.Usage),
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}

	return &Buffer{
		desc:        desc,
		raw:         raw,
		queue:       a.queue,
		device:      a.device,
		alignedSize: slotSize,
		ring:        a.ring,
		locks:       a.locks,
		id:          gpusync.BufferID(a.nextBufferID.Add(1)),
	}, nil
}

// AdvanceFrame claims the next write slot across every buffer this
// allocator owns, blocking if R writes are already outstanding — the
// "block on the oldest fence" boundary from spec.md §8.
func (a *Allocator) AdvanceFrame(ctx context.Context) (uint64, error) {
	return a.ring.AdvanceWrite(ctx)
}

// RetireFrame advances the read index once the frame's fence has retired,
// freeing the oldest ring slot for reuse.
func (a *Allocator) RetireFrame() {
	a.ring.AdvanceRead()
}

// GC removes stale, signaled buffer locks older than maxFramesInFlight
// frames. Returns the number removed.
func (a *Allocator) GC(currentFrame gpusync.FrameIndex) int {
	return a.locks.GC(currentFrame)
}

func alignmentFor(usage Usage, limits wgpu.Limits) uint64 {
	switch usage {
	case UsageUniform:
		return limits.MinUniformBufferOffsetAlignment
	case UsageStorage:
		return limits.MinStorageBufferOffsetAlignment
	default:
		return 1
	}
}

func roundUp(size, align uint64) uint64 {
	if align <= 1 {
		return size
	}
	return (size + align - 1) / align * align
}

func wgpuUsage(u Usage) wgpu.BufferUsage {
	switch u {
	case UsageUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case UsageStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	case UsageVertex:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case UsageIndex:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	case UsageStaging:
		return wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	case UsageIndirect:
		return wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageCopyDst
	}
}
