package renderer

import (
	"fmt"

	"github.com/Mara-Voss/glimmer-core/engine/renderer/bind_group_provider"
	"github.com/Mara-Voss/glimmer-core/internal/cmdbuffer"
)

// Submit validates and replays a recorded cmdbuffer.Buffer against this
// Renderer. Unlike the teacher's direct BeginFrame/DrawCall/EndFrame trio,
// which a caller drives by hand, Submit is the single entry point the
// frame engine's stages use: they record into a cmdbuffer.Buffer and hand
// it here once, and Submit drives BeginFrame/BeginShadowFrame/DrawCall/
// EndFrame/Present itself in command order.
//
// reg resolves the handles the buffer references; it is also the
// liveness and pipeline-compatibility oracle Validate checks against.
// Submit does not start a render pass of its own â€” BeginRenderPass in the
// stream selects between the main swapchain frame and a shadow pass based
// on whether its target resolves through reg.ShadowTargetView.
func (r *renderer) Submit(buf *cmdbuffer.Buffer, reg ResourceRegistry) error {
	if err := buf.Validate(reg, reg); err != nil {
		return fmt.Errorf("renderer: submit rejected: %w", err)
	}

	if r.lruCache == nil {
		r.lruCache = newPipelineCache(r)
	}
	s := &submitState{r: r, reg: reg, pc: r.lruCache, dirty: newDescriptorDirtyTracker()}
	defer s.flushCoalescedBinds()

	for i, cmd := range buf.Commands() {
		if err := s.dispatch(cmd); err != nil {
			return fmt.Errorf("renderer: submit: command %d: %w", i, err)
		}
	}
	return nil
}

// submitState carries the bookkeeping a single Submit call accumulates as
// it walks a command stream: which kind of pass is open, the pending
// texture-bind batch waiting to be coalesced, and descriptor dirty flags.
type submitState struct {
	r   *renderer
	reg ResourceRegistry
	pc  *pipelineCache

	inShadowPass bool
	pipelineKey  string
	pendingBinds []pendingTextureBind
	dirty        *descriptorDirtyTracker

	// lastBound remembers, per usage class, the provider list most recently
	// sent to a draw call — resent when that class is dirty but has no
	// fresh bind queued (see flushCoalescedBinds).
	lastBound [4][]bind_group_provider.BindGroupProvider
}

func (s *submitState) dispatch(cmd cmdbuffer.Command) error {
	switch c := cmd.(type) {
	case cmdbuffer.BeginRenderPass:
		return s.beginRenderPass(c)
	case cmdbuffer.EndRenderPass:
		return s.endRenderPass()
	case cmdbuffer.BindPipeline:
		return s.bindPipeline(c)
	case cmdbuffer.BindShaderResources:
		s.queueTextureBind(c)
		s.dirty.markDirty(c.UsageClass)
		return nil
	case cmdbuffer.DrawCommands:
		return s.draw(c)
	case cmdbuffer.MemoryBarrier:
		lowerBarrier(c)
		return nil
	case cmdbuffer.SetClipPlanes:
		s.r.setActiveClipPlanes(c.Planes)
		return nil
	case cmdbuffer.SendPushConstants,
		cmdbuffer.SetViewport, cmdbuffer.PushViewport, cmdbuffer.PopViewport,
		cmdbuffer.SetScissor, cmdbuffer.SetCamera, cmdbuffer.PushCamera, cmdbuffer.PopCamera,
		cmdbuffer.BeginDebugScope, cmdbuffer.EndDebugScope,
		cmdbuffer.AddDebugMessage, cmdbuffer.BeginGPUQuery, cmdbuffer.EndGPUQuery,
		cmdbuffer.Blit, cmdbuffer.CopyTexture, cmdbuffer.ClearTexture, cmdbuffer.ReadTexture,
		cmdbuffer.ReadBufferData, cmdbuffer.ClearBufferData, cmdbuffer.ComputeMipmaps,
		cmdbuffer.DispatchShaderTask:
		// Recognized but carry no direct wgpu-native equivalent on this
		// backend yet; recorded for validation and replay ordering only.
		return nil
	default:
		return fmt.Errorf("unhandled command type %T", cmd)
	}
}

func (s *submitState) beginRenderPass(c cmdbuffer.BeginRenderPass) error {
	if len(c.Spec.Targets) == 0 {
		return fmt.Errorf("render pass with no targets")
	}
	target := c.Spec.Targets[0]

	if view, ok := s.reg.ShadowTargetView(target); ok {
		s.inShadowPass = true
		if err := s.r.BeginShadowFrame(); err != nil {
			return err
		}
		s.r.BeginShadowPass(view)
		return nil
	}

	s.inShadowPass = false
	return s.r.BeginFrame()
}

func (s *submitState) endRenderPass() error {
	s.flushCoalescedBinds()
	if s.inShadowPass {
		s.r.EndShadowPass()
		s.r.EndShadowFrame()
	} else {
		s.r.EndFrame()
		s.r.Present()
	}
	s.pipelineKey = ""
	return nil
}

func (s *submitState) bindPipeline(c cmdbuffer.BindPipeline) error {
	key, ok := s.reg.PipelineKey(c.Pipeline)
	if !ok {
		return fmt.Errorf("pipeline handle %08x not registered", uint32(c.Pipeline))
	}
	s.pipelineKey = key
	s.pc.touch(key)
	s.dirty.markDirty(cmdbuffer.UsagePerPass)
	return nil
}

func (s *submitState) draw(c cmdbuffer.DrawCommands) error {
	groups := s.flushCoalescedBinds()

	mesh, ok := s.reg.Mesh(c.Draw.Mesh)
	if !ok {
		return fmt.Errorf("mesh handle %08x not registered", uint32(c.Draw.Mesh))
	}

	if c.Draw.Indirect != nil {
		buf, ok := s.reg.IndirectBuffer(c.Draw.Indirect.Buffer)
		if !ok {
			return fmt.Errorf("indirect buffer handle %08x not registered", uint32(c.Draw.Indirect.Buffer))
		}
		if s.inShadowPass {
			return s.r.ShadowDrawCallIndirect(s.pipelineKey, mesh, buf, groups)
		}
		return s.r.DrawCallIndirect(s.pipelineKey, mesh, buf, groups)
	}

	if s.inShadowPass {
		return s.r.ShadowDrawCall(s.pipelineKey, mesh, c.Draw.InstanceCount, groups)
	}
	return s.r.DrawCall(s.pipelineKey, mesh, c.Draw.InstanceCount, groups)
}
