package cmdbuffer

import "fmt"

// passState tracks the render-pass state machine from spec.md §4.C4:
//
//	IDLE -BeginRenderPass-> TARGET_BOUND -BindPipeline-> PIPELINE_BOUND
//	PIPELINE_BOUND -BindPipeline-> PIPELINE_BOUND (collapsed rebind, allowed)
//	TARGET_BOUND|PIPELINE_BOUND -EndRenderPass-> IDLE
type passState int

const (
	stateIdle passState = iota
	stateTargetBound
	statePipelineBound
)

// ResourceLiveness reports whether a resource handle is still live in its
// pool, used for Validate's check 2 (all referenced handles are live).
type ResourceLiveness interface {
	IsLive(h Handle) bool
}

// PipelineCompatibility reports whether a bound pipeline's attachment
// layout is compatible with the current render target, used for Validate's
// check 3.
type PipelineCompatibility interface {
	Compatible(pipeline, target Handle) bool
}

// Validate walks the buffer once, implementing the four submit-time checks
// from spec.md §4.C4:
//  1. every Begin* has a matching End*
//  2. all referenced resource handles are live (if liveness is non-nil)
//  3. the pipeline bound at draw time is compatible with the current
//     render-target attachment layout (if compat is non-nil)
//  4. push-constant sends only appear inside a bound-pipeline scope
//
// liveness and compat may be nil to skip those checks (e.g. unit tests
// exercising only the state machine).
func (b *Buffer) Validate(liveness ResourceLiveness, compat PipelineCompatibility) error {
	state := stateIdle
	var currentTargets []Handle
	var currentPipeline Handle = InvalidHandle

	queryDepth, debugDepth, viewportDepth, cameraDepth := 0, 0, 0, 0

	for i, cmd := range b.commands {
		if liveness != nil {
			for _, h := range cmd.ReferencedHandles() {
				if h.Valid() && !liveness.IsLive(h) {
					return fmt.Errorf("cmdbuffer: command %d: %w (handle %08x)", i, ErrStaleHandle, uint32(h))
				}
			}
		}

		switch v := cmd.(type) {
		case BeginRenderPass:
			if state != stateIdle {
				return fmt.Errorf("cmdbuffer: command %d: %w", i, ErrNestedRenderPass)
			}
			state = stateTargetBound
			currentTargets = v.Spec.Targets
			currentPipeline = InvalidHandle

		case BindPipeline:
			if state == stateIdle {
				return fmt.Errorf("cmdbuffer: command %d: %w (BindPipeline outside a render pass)", i, ErrOutOfStateCommand)
			}
			state = statePipelineBound
			currentPipeline = v.Pipeline

		case EndRenderPass:
			if state == stateIdle {
				return fmt.Errorf("cmdbuffer: command %d: %w (EndRenderPass without BeginRenderPass)", i, ErrUnmatchedScope)
			}
			state = stateIdle
			currentTargets = nil
			currentPipeline = InvalidHandle

		case SendPushConstants:
			if state != statePipelineBound {
				return fmt.Errorf("cmdbuffer: command %d: %w", i, ErrPushConstantsOutOfScope)
			}

		case DrawCommands:
			if state != statePipelineBound {
				return fmt.Errorf("cmdbuffer: command %d: %w (draw without a bound pipeline)", i, ErrOutOfStateCommand)
			}
			if compat != nil && len(currentTargets) > 0 {
				for _, target := range currentTargets {
					if !compat.Compatible(currentPipeline, target) {
						return fmt.Errorf("cmdbuffer: command %d: %w", i, ErrPipelineIncompatible)
					}
				}
			}

		case DispatchShaderTask:
			if state != statePipelineBound {
				return fmt.Errorf("cmdbuffer: command %d: %w (dispatch without a bound pipeline)", i, ErrOutOfStateCommand)
			}

		case BeginGPUQuery:
			queryDepth++
		case EndGPUQuery:
			if queryDepth == 0 {
				return fmt.Errorf("cmdbuffer: command %d: %w (EndGPUQuery without BeginGPUQuery)", i, ErrUnmatchedScope)
			}
			queryDepth--

		case BeginDebugScope:
			debugDepth++
		case EndDebugScope:
			if debugDepth == 0 {
				return fmt.Errorf("cmdbuffer: command %d: %w (EndDebugScope without BeginDebugScope)", i, ErrUnmatchedScope)
			}
			debugDepth--

		case PushViewport:
			viewportDepth++
		case PopViewport:
			if viewportDepth == 0 {
				return fmt.Errorf("cmdbuffer: command %d: %w (PopViewport without PushViewport)", i, ErrUnmatchedScope)
			}
			viewportDepth--

		case PushCamera:
			cameraDepth++
		case PopCamera:
			if cameraDepth == 0 {
				return fmt.Errorf("cmdbuffer: command %d: %w (PopCamera without PushCamera)", i, ErrUnmatchedScope)
			}
			cameraDepth--
		}
	}

	if state != stateIdle {
		return fmt.Errorf("cmdbuffer: %w (render pass left open)", ErrUnmatchedScope)
	}
	if queryDepth != 0 || debugDepth != 0 || viewportDepth != 0 || cameraDepth != 0 {
		return fmt.Errorf("cmdbuffer: %w (scope left open at end of buffer)", ErrUnmatchedScope)
	}
	return nil
}
