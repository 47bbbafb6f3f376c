package renderer

import (
	"github.com/Mara-Voss/glimmer-core/engine/renderer/bind_group_provider"
	"github.com/Mara-Voss/glimmer-core/internal/cmdbuffer"
	"github.com/cogentcore/webgpu/wgpu"
)

// ResourceRegistry bridges cmdbuffer.Handle values recorded into a
// cmdbuffer.Buffer back to the key- and provider-based objects the
// teacher's immediate-mode renderer API already understands. A scene or
// frame engine owns the registry and keeps it in sync as resources are
// created, bound to handles, and released.
//
// It also satisfies cmdbuffer.ResourceLiveness and
// cmdbuffer.PipelineCompatibility so the same object can be passed
// straight into Buffer.Validate before Submit replays the buffer.
type ResourceRegistry interface {
	cmdbuffer.ResourceLiveness
	cmdbuffer.PipelineCompatibility

	// PipelineKey resolves a pipeline handle to the cache key RegisterPipelines
	// registered it under.
	PipelineKey(h cmdbuffer.Handle) (string, bool)

	// Mesh resolves a handle to the BindGroupProvider holding its vertex and
	// index buffers, used as DrawCall's meshProvider argument.
	Mesh(h cmdbuffer.Handle) (bind_group_provider.BindGroupProvider, bool)

	// BindGroup resolves a handle bound via BindShaderResources to the
	// provider whose BindGroup is set on the pass.
	BindGroup(h cmdbuffer.Handle) (bind_group_provider.BindGroupProvider, bool)

	// IndirectBuffer resolves a handle to the raw GPU buffer backing an
	// indirect draw's argument data.
	IndirectBuffer(h cmdbuffer.Handle) (*wgpu.Buffer, bool)

	// ShadowTargetView resolves a render-target handle (from
	// RenderPassSpec.Targets) to a shadow-style depth view, when the target
	// is a depth attachment rather than the main swapchain. ok is false for
	// the swapchain's own color target, which BeginFrame already handles.
	ShadowTargetView(h cmdbuffer.Handle) (view *wgpu.TextureView, ok bool)
}
