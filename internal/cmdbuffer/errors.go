package cmdbuffer

import "errors"

var (
	// ErrNestedRenderPass is returned by Validate when a BeginRenderPass
	// appears while the buffer is already TARGET_BOUND or PIPELINE_BOUND.
	ErrNestedRenderPass = errors.New("cmdbuffer: nested render pass not permitted")

	// ErrUnmatchedScope is returned when a buffer ends with an open
	// Begin/Push scope (render pass, GPU query, debug scope, viewport,
	// camera) that was never matched by its End/Pop counterpart, or when an
	// End/Pop is recorded with no matching open scope.
	ErrUnmatchedScope = errors.New("cmdbuffer: unmatched begin/end or push/pop scope")

	// ErrOutOfStateCommand is returned by Validate when a command appears
	// outside the buffer state it requires (e.g. BindPipeline before
	// BeginRenderPass, a draw before BindPipeline). Record does not check it.
	ErrOutOfStateCommand = errors.New("cmdbuffer: command issued outside its required state")

	// ErrStaleHandle is returned when a command references a resource
	// handle the supplied ResourceLiveness reports as not live.
	ErrStaleHandle = errors.New("cmdbuffer: referenced resource handle is not live")

	// ErrPipelineIncompatible is returned when the pipeline bound at draw
	// time is incompatible with the current render target's attachment
	// layout.
	ErrPipelineIncompatible = errors.New("cmdbuffer: bound pipeline incompatible with current render target")

	// ErrPushConstantsOutOfScope is returned when SendPushConstants appears
	// outside a bound-pipeline scope.
	ErrPushConstantsOutOfScope = errors.New("cmdbuffer: push constants sent outside a bound-pipeline scope")
)
