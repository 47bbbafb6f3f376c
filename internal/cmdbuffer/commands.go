package cmdbuffer

// Command is the closed set of record types a Buffer may hold. Every
// implementation is an immutable value with no behavior beyond reporting
// the resource handles it touches, which submit-time Validate uses to
// check handle liveness (spec.md §4.C4 Validation, check 2).
type Command interface {
	isCommand()
	ReferencedHandles() []Handle
}

type BeginRenderPass struct{ Spec RenderPassSpec }

func (BeginRenderPass) isCommand() {}
func (c BeginRenderPass) ReferencedHandles() []Handle { return c.Spec.Targets }

type EndRenderPass struct{}

func (EndRenderPass) isCommand()                    {}
func (EndRenderPass) ReferencedHandles() []Handle { return nil }

type Blit struct {
	Src, Dst             Handle
	SrcRegion, DstRegion Rect
}

func (Blit) isCommand() {}
func (c Blit) ReferencedHandles() []Handle { return []Handle{c.Src, c.Dst} }

type BeginGPUQuery struct {
	Query Handle
	Label string
}

func (BeginGPUQuery) isCommand() {}
func (c BeginGPUQuery) ReferencedHandles() []Handle { return []Handle{c.Query} }

type EndGPUQuery struct{ Query Handle }

func (EndGPUQuery) isCommand() {}
func (c EndGPUQuery) ReferencedHandles() []Handle { return []Handle{c.Query} }

type CopyTexture struct{ Src, Dst Handle }

func (CopyTexture) isCommand() {}
func (c CopyTexture) ReferencedHandles() []Handle { return []Handle{c.Src, c.Dst} }

type ClearTexture struct {
	Target Handle
	Color  [4]float32
}

func (ClearTexture) isCommand() {}
func (c ClearTexture) ReferencedHandles() []Handle { return []Handle{c.Target} }

type ReadTexture struct {
	Target Handle
	Region Rect
}

func (ReadTexture) isCommand() {}
func (c ReadTexture) ReferencedHandles() []Handle { return []Handle{c.Target} }

type BindPipeline struct {
	Pipeline Handle
	Hash     uint64
}

func (BindPipeline) isCommand() {}
func (c BindPipeline) ReferencedHandles() []Handle { return []Handle{c.Pipeline} }

type BindShaderResources struct {
	UsageClass UsageClass
	Binding    ResourceBinding
}

func (BindShaderResources) isCommand() {}
func (c BindShaderResources) ReferencedHandles() []Handle {
	return []Handle{c.Binding.Texture, c.Binding.Sampler, c.Binding.StorageImg}
}

type SendPushConstants struct{ Data []byte }

func (SendPushConstants) isCommand()                    {}
func (SendPushConstants) ReferencedHandles() []Handle { return nil }

type SetViewport struct{ Viewport Viewport }

func (SetViewport) isCommand()                    {}
func (SetViewport) ReferencedHandles() []Handle { return nil }

type PushViewport struct{ Viewport Viewport }

func (PushViewport) isCommand()                    {}
func (PushViewport) ReferencedHandles() []Handle { return nil }

type PopViewport struct{}

func (PopViewport) isCommand()                    {}
func (PopViewport) ReferencedHandles() []Handle { return nil }

type SetScissor struct{ Rect Rect }

func (SetScissor) isCommand()                    {}
func (SetScissor) ReferencedHandles() []Handle { return nil }

type SetCamera struct{ Camera Handle }

func (SetCamera) isCommand() {}
func (c SetCamera) ReferencedHandles() []Handle { return []Handle{c.Camera} }

type PushCamera struct{ Camera Handle }

func (PushCamera) isCommand() {}
func (c PushCamera) ReferencedHandles() []Handle { return []Handle{c.Camera} }

type PopCamera struct{}

func (PopCamera) isCommand()                    {}
func (PopCamera) ReferencedHandles() []Handle { return nil }

type SetClipPlanes struct{ Planes ClipPlaneList }

func (SetClipPlanes) isCommand()                    {}
func (SetClipPlanes) ReferencedHandles() []Handle { return nil }

type ReadBufferData struct {
	Buffer Handle
	Range  ByteRange
}

func (ReadBufferData) isCommand() {}
func (c ReadBufferData) ReferencedHandles() []Handle { return []Handle{c.Buffer} }

type ClearBufferData struct {
	Buffer Handle
	Range  ByteRange
}

func (ClearBufferData) isCommand() {}
func (c ClearBufferData) ReferencedHandles() []Handle { return []Handle{c.Buffer} }

type BeginDebugScope struct{ Label string }

func (BeginDebugScope) isCommand()                    {}
func (BeginDebugScope) ReferencedHandles() []Handle { return nil }

type EndDebugScope struct{}

func (EndDebugScope) isCommand()                    {}
func (EndDebugScope) ReferencedHandles() []Handle { return nil }

type AddDebugMessage struct{ Message string }

func (AddDebugMessage) isCommand()                    {}
func (AddDebugMessage) ReferencedHandles() []Handle { return nil }

type ComputeMipmaps struct{ Target Handle }

func (ComputeMipmaps) isCommand() {}
func (c ComputeMipmaps) ReferencedHandles() []Handle { return []Handle{c.Target} }

type DrawCommands struct{ Draw DrawCall }

func (DrawCommands) isCommand() {}
func (c DrawCommands) ReferencedHandles() []Handle {
	handles := []Handle{c.Draw.Mesh}
	if c.Draw.Indirect != nil {
		handles = append(handles, c.Draw.Indirect.Buffer)
	}
	return handles
}

type DispatchShaderTask struct{ GroupsX, GroupsY, GroupsZ uint32 }

func (DispatchShaderTask) isCommand()                    {}
func (DispatchShaderTask) ReferencedHandles() []Handle { return nil }

type MemoryBarrier struct {
	BufferLocks        []BufferLockIntent
	TextureTransitions []TextureTransition
}

func (MemoryBarrier) isCommand() {}
func (c MemoryBarrier) ReferencedHandles() []Handle {
	handles := make([]Handle, 0, len(c.BufferLocks)+len(c.TextureTransitions))
	for _, l := range c.BufferLocks {
		handles = append(handles, l.Buffer)
	}
	for _, t := range c.TextureTransitions {
		handles = append(handles, t.Texture)
	}
	return handles
}
