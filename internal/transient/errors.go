// Package transient implements the per-frame transient GPU memory
// allocator: a ring-backed buffer, written through the queue, that amortizes many
// small per-draw uniform/storage writes into a few large mapped ranges, plus
// a uniform-block uploader façade built on top of the renderer's shader
// reflection.
package transient

import "errors"

var (
	// ErrNotHostReadable is returned by Buffer.ReadBytes when the buffer's
	// usage is not Staging.
	ErrNotHostReadable = errors.New("transient: buffer usage is not host-readable")

	// ErrRangeOutOfBounds is returned when a requested byte range exceeds a
	// single slot's aligned size.
	ErrRangeOutOfBounds = errors.New("transient: byte range exceeds slot bounds")

	// ErrFieldMissing is returned by UniformBlockUploader.Upload when a
	// required layout field has no corresponding value in the supplied map.
	ErrFieldMissing = errors.New("transient: uniform block value missing for reflected field")

	// ErrUnsupportedFieldType is returned when a supplied value's Go type
	// has no known WGSL-compatible byte encoding.
	ErrUnsupportedFieldType = errors.New("transient: unsupported uniform field value type")

	// ErrUnknownField is returned by UniformBlockUploader.Upload in strict
	// debug mode when values contains a name absent from the reflected
	// layout — a caller/shader drift signal.
	ErrUnknownField = errors.New("transient: uniform block value supplied for unreflected field")
)
