package transient

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Mara-Voss/glimmer-core/engine/renderer/shader"
	"github.com/Mara-Voss/glimmer-core/internal/gpusync"
)

// BlockField is one named, sized entry within a reflected uniform block —
// one per binding in the group, laid out back-to-back in upload order.
type BlockField struct {
	Name   string
	Offset uint64
	Size   uint64
}

// BlockLayout is a uniform block layout reflected from a shader's parsed
// bind group, per spec.md §4.C3's Uniform Block Uploader.
type BlockLayout struct {
	Key       string
	Fields    []BlockField
	TotalSize uint64
}

// SameLayout reports whether two layouts are byte-identical (same field
// names, offsets, and sizes in the same order) — the condition spec.md §4.C3
// requires before two shader programs can share an uploader/buffer.
func (l BlockLayout) SameLayout(o BlockLayout) bool {
	if l.TotalSize != o.TotalSize || len(l.Fields) != len(o.Fields) {
		return false
	}
	for i, f := range l.Fields {
		if f != o.Fields[i] {
			return false
		}
	}
	return true
}

// ReflectUniformBlock builds a BlockLayout for bind group `group` of s by
// reusing the already-parsed bind group layout descriptor and variable-name
// map (engine/renderer/shader's WGSL parser) instead of re-parsing source.
func ReflectUniformBlock(s shader.Shader, group int) (BlockLayout, error) {
	descriptor := s.BindGroupLayoutDescriptor(group)
	names := s.BindGroupVarNames()[group]

	layout := BlockLayout{Key: fmt.Sprintf("%s#%d", s.Key(), group)}
	var offset uint64
	for _, entry := range descriptor.Entries {
		if entry.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			continue
		}
		name := names[int(entry.Binding)]
		if name == "" {
			name = fmt.Sprintf("binding%d", entry.Binding)
		}
		size := entry.Buffer.MinBindingSize
		layout.Fields = append(layout.Fields, BlockField{Name: name, Offset: offset, Size: size})
		offset += size
	}
	layout.TotalSize = offset
	return layout, nil
}

// UniformBlockUploader is the higher-level façade from spec.md §4.C3: it
// accepts an unordered name->value mapping matching a reflected layout,
// stages the encoded bytes into a transient buffer, and returns the byte
// range bound to the descriptor set.
type UniformBlockUploader struct {
	layout BlockLayout
	buffer *Buffer
}

// NewUniformBlockUploader allocates a transient uniform buffer sized for
// layout and wraps it in an uploader.
func NewUniformBlockUploader(alloc *Allocator, layout BlockLayout) (*UniformBlockUploader, error) {
	buf, err := alloc.Allocate(Descriptor{
		Label:           layout.Key,
		ElementSize:     layout.TotalSize,
		ElementCount:    1,
		Usage:           UsageUniform,
		UpdateFrequency: UpdateFrequent,
	})
	if err != nil {
		return nil, err
	}
	return &UniformBlockUploader{layout: layout, buffer: buf}, nil
}

// Layout returns the reflected layout this uploader was built for.
func (u *UniformBlockUploader) Layout() BlockLayout {
	return u.layout
}

// Buffer returns the backing transient buffer, for binding into a
// descriptor set.
func (u *UniformBlockUploader) Buffer() *Buffer {
	return u.buffer
}

// Upload encodes values against the reflected layout and writes them into
// the current write slot in one call, returning the byte range to bind. A
// value supplied under a name the reflected layout doesn't recognize is a
// shader/caller mismatch: with strictDebug set it is fatal (ErrUnknownField),
// matching EnableAPIDebugging; otherwise the extra value is silently
// dropped, so a release build never crashes over stale caller code
// calling an updated shader.
func (u *UniformBlockUploader) Upload(values map[string]any, fence *gpusync.Fence, strictDebug bool) (gpusync.Range, error) {
	if strictDebug {
		for name := range values {
			if !u.layout.hasField(name) {
				return gpusync.Range{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
			}
		}
	}

	blob := make([]byte, u.layout.TotalSize)
	for _, field := range u.layout.Fields {
		v, ok := values[field.Name]
		if !ok {
			return gpusync.Range{}, fmt.Errorf("%w: %s", ErrFieldMissing, field.Name)
		}
		if err := encodeField(blob[field.Offset:field.Offset+field.Size], v); err != nil {
			return gpusync.Range{}, fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	lock, err := u.buffer.WriteBytes(0, blob, fence)
	if err != nil {
		return gpusync.Range{}, err
	}
	return lock.Range, nil
}

// hasField reports whether name appears in the reflected layout.
func (l BlockLayout) hasField(name string) bool {
	for _, f := range l.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func encodeField(dst []byte, v any) error {
	switch val := v.(type) {
	case float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(val))
	case uint32:
		binary.LittleEndian.PutUint32(dst, val)
	case int32:
		binary.LittleEndian.PutUint32(dst, uint32(val))
	case [3]float32:
		for i, f := range val {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
		}
	case [4]float32:
		for i, f := range val {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
		}
	case [16]float32: // 4x4 matrix, column-major
		for i, f := range val {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
		}
	case []float32:
		for i, f := range val {
			binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(f))
		}
	default:
		return ErrUnsupportedFieldType
	}
	return nil
}
