package transient

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Mara-Voss/glimmer-core/internal/gpusync"
)

// Buffer is a ring-backed GPU buffer with R frame-slots. It is not kept
// mapped: WriteBytes goes through the queue, and ReadBytes maps the range
// only for the duration of the read.
type Buffer struct {
	desc        Descriptor
	raw         *wgpu.Buffer
	queue       *wgpu.Queue
	device      *wgpu.Device
	alignedSize uint64

	ring  *gpusync.RingIndex
	locks *gpusync.LockManager
	id    gpusync.BufferID
}

// Raw returns the underlying wgpu buffer, for binding into descriptor sets.
func (b *Buffer) Raw() *wgpu.Buffer {
	return b.raw
}

// ID returns this buffer's lock-manager identity.
func (b *Buffer) ID() gpusync.BufferID {
	return b.id
}

// SlotSize returns the aligned per-frame-slot byte size.
func (b *Buffer) SlotSize() uint64 {
	return b.alignedSize
}

// CurrentWriteOffset returns the byte offset of the current write slot,
// i.e. where the next WriteBytes call (with elementOffset 0) will land.
func (b *Buffer) CurrentWriteOffset() uint64 {
	return b.ring.CurrentWriteSlot() * b.alignedSize
}

// WriteBytes writes data into the current write slot at byteOffset within
// that slot, and records a BufferLock tagged with fence covering the
// written range. The allocator never blocks on write; callers must respect
// the returned lock before reusing the slot (spec.md §4.C3).
func (b *Buffer) WriteBytes(byteOffset uint64, data []byte, fence *gpusync.Fence) (*gpusync.BufferLock, error) {
	if byteOffset+uint64(len(data)) > b.alignedSize {
		return nil, ErrRangeOutOfBounds
	}
	absolute := b.CurrentWriteOffset() + byteOffset
	b.queue.WriteBuffer(b.raw, absolute, data)
	rng := gpusync.Range{Offset: absolute, Length: uint64(len(data))}
	return b.locks.LockRange(b.id, rng, fence), nil
}

// ReadBytes reads back a byte range from the current read slot. Only legal
// for UsageStaging buffers, and blocks until every outstanding write
// overlapping the range has its fence retired.
func (b *Buffer) ReadBytes(byteOffset uint64, length uint64) ([]byte, error) {
	if b.desc.Usage != UsageStaging {
		return nil, ErrNotHostReadable
	}
	if byteOffset+length > b.alignedSize {
		return nil, ErrRangeOutOfBounds
	}
	absolute := b.ring.CurrentReadSlot()*b.alignedSize + byteOffset
	rng := gpusync.Range{Offset: absolute, Length: length}
	if err := b.locks.WaitForLockedRange(b.id, rng, 0); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	b.raw.MapAsync(wgpu.MapModeRead, absolute, length, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- ErrRangeOutOfBounds
			return
		}
		done <- nil
	})
	b.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}
	defer b.raw.Unmap()

	mapped := b.raw.GetMappedRange(absolute, length)
	out := make([]byte, length)
	copy(out, mapped)
	return out, nil
}
