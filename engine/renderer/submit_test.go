package renderer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Mara-Voss/glimmer-core/common"
	"github.com/Mara-Voss/glimmer-core/engine/renderer/bind_group_provider"
	"github.com/Mara-Voss/glimmer-core/engine/renderer/pipeline"
	"github.com/Mara-Voss/glimmer-core/internal/cmdbuffer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a no-op RendererBackend double used to exercise Submit's
// command-dispatch ordering without a real GPU device.
type fakeBackend struct {
	calls []string

	// drawBindGroups records the bind-group list passed to each DrawCall,
	// in call order, so tests can assert on what Submit actually resent.
	drawBindGroups [][]bind_group_provider.BindGroupProvider

	deviceLost bool
}

func (f *fakeBackend) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeBackend) Device() *wgpu.Device       { return nil }
func (f *fakeBackend) Queue() *wgpu.Queue         { return nil }
func (f *fakeBackend) Limits() wgpu.Limits        { return wgpu.Limits{} }
func (f *fakeBackend) Instance() *wgpu.Instance   { return nil }
func (f *fakeBackend) Adapter() *wgpu.Adapter     { return nil }
func (f *fakeBackend) Surface() *wgpu.Surface     { return nil }
func (f *fakeBackend) SetDevice(*wgpu.Device)     {}
func (f *fakeBackend) SetQueue(*wgpu.Queue)       {}
func (f *fakeBackend) SetInstance(*wgpu.Instance) {}
func (f *fakeBackend) SetAdapter(*wgpu.Adapter)   {}
func (f *fakeBackend) SetSurface(*wgpu.Surface)   {}
func (f *fakeBackend) DeviceLost() bool           { return f.deviceLost }

func (f *fakeBackend) ConfigureSurface(width, height int)     {}
func (f *fakeBackend) SetPresentMode(mode PresentMode)        {}
func (f *fakeBackend) BeginComputeFrame() error               { return nil }
func (f *fakeBackend) EndComputeFrame()                       {}
func (f *fakeBackend) DispatchCompute(pipeline.Pipeline, bind_group_provider.BindGroupProvider, [3]uint32) {
}
func (f *fakeBackend) RegisterRenderPipeline(pipeline.Pipeline) error  { return nil }
func (f *fakeBackend) RegisterComputePipeline(pipeline.Pipeline) error { return nil }
func (f *fakeBackend) InitMeshBuffers(bind_group_provider.BindGroupProvider, []byte, []byte, int) error {
	return nil
}
func (f *fakeBackend) InitBindGroup(bind_group_provider.BindGroupProvider, wgpu.BindGroupLayoutDescriptor, map[int]wgpu.BufferUsage, map[int]uint64) error {
	return nil
}
func (f *fakeBackend) InitTextureView(bind_group_provider.BindGroupProvider, int, common.TextureStagingData) error {
	return nil
}
func (f *fakeBackend) InitSampler(bind_group_provider.BindGroupProvider, int, common.SamplerStagingData) error {
	return nil
}
func (f *fakeBackend) WriteBuffers([]bind_group_provider.BufferWrite) {}

func (f *fakeBackend) BeginFrame() error { f.record("BeginFrame"); return nil }
func (f *fakeBackend) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	f.record("DrawCall")
	f.drawBindGroups = append(f.drawBindGroups, bindGroups)
}
func (f *fakeBackend) DrawCallIndirect(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bind_group_provider.BindGroupProvider) {
	f.record("DrawCallIndirect")
}
func (f *fakeBackend) EndFrame() { f.record("EndFrame") }
func (f *fakeBackend) Present()  { f.record("Present") }

func (f *fakeBackend) CreateShadowDepthTexture(width, height int) (*wgpu.TextureView, *wgpu.Texture, error) {
	return nil, nil, nil
}
func (f *fakeBackend) CreateComparisonSampler() (*wgpu.Sampler, error)  { return nil, nil }
func (f *fakeBackend) RegisterShadowPipeline(pipeline.Pipeline) error   { return nil }
func (f *fakeBackend) BeginShadowFrame() error                         { f.record("BeginShadowFrame"); return nil }
func (f *fakeBackend) BeginShadowPass(depthView *wgpu.TextureView)      { f.record("BeginShadowPass") }
func (f *fakeBackend) ShadowDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	f.record("ShadowDrawCall")
}
func (f *fakeBackend) ShadowDrawCallIndirect(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, bindGroups []bind_group_provider.BindGroupProvider) {
	f.record("ShadowDrawCallIndirect")
}
func (f *fakeBackend) EndShadowPass()  { f.record("EndShadowPass") }
func (f *fakeBackend) EndShadowFrame() { f.record("EndShadowFrame") }

var _ RendererBackend = &fakeBackend{}

// fakeRegistry implements ResourceRegistry entirely from in-memory maps,
// with no wgpu resources behind it.
type fakeRegistry struct {
	pipelines    map[cmdbuffer.Handle]string
	meshes       map[cmdbuffer.Handle]bind_group_provider.BindGroupProvider
	bindGroups   map[cmdbuffer.Handle]bind_group_provider.BindGroupProvider
	shadowViews  map[cmdbuffer.Handle]*wgpu.TextureView
	live         map[cmdbuffer.Handle]bool
	incompatible bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		pipelines:   make(map[cmdbuffer.Handle]string),
		meshes:      make(map[cmdbuffer.Handle]bind_group_provider.BindGroupProvider),
		bindGroups:  make(map[cmdbuffer.Handle]bind_group_provider.BindGroupProvider),
		shadowViews: make(map[cmdbuffer.Handle]*wgpu.TextureView),
		live:        make(map[cmdbuffer.Handle]bool),
	}
}

func (f *fakeRegistry) IsLive(h cmdbuffer.Handle) bool { return f.live[h] }
func (f *fakeRegistry) Compatible(pipeline, target cmdbuffer.Handle) bool {
	return !f.incompatible
}
func (f *fakeRegistry) PipelineKey(h cmdbuffer.Handle) (string, bool) {
	v, ok := f.pipelines[h]
	return v, ok
}
func (f *fakeRegistry) Mesh(h cmdbuffer.Handle) (bind_group_provider.BindGroupProvider, bool) {
	v, ok := f.meshes[h]
	return v, ok
}
func (f *fakeRegistry) BindGroup(h cmdbuffer.Handle) (bind_group_provider.BindGroupProvider, bool) {
	v, ok := f.bindGroups[h]
	return v, ok
}
func (f *fakeRegistry) IndirectBuffer(h cmdbuffer.Handle) (*wgpu.Buffer, bool) { return nil, false }
func (f *fakeRegistry) ShadowTargetView(h cmdbuffer.Handle) (*wgpu.TextureView, bool) {
	v, ok := f.shadowViews[h]
	return v, ok
}

var _ ResourceRegistry = &fakeRegistry{}

func newTestRenderer(backend RendererBackend) *renderer {
	return &renderer{
		mu:               &sync.Mutex{},
		pipelineCache:    make(map[string]pipeline.Pipeline),
		backendType:      BackendTypeWGPU,
		backend:          backend,
		usePipelineCache: true,
	}
}

func TestDeviceLostForwardsToBackend(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)

	require.False(t, r.DeviceLost())
	backend.deviceLost = true
	require.True(t, r.DeviceLost())
}

func TestSubmitReplaysColorPassInOrder(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)

	rt := cmdbuffer.NewHandle(0, 1)
	pl := cmdbuffer.NewHandle(0, 2)
	mesh := cmdbuffer.NewHandle(0, 3)

	reg := newFakeRegistry()
	reg.live[rt] = true
	reg.live[pl] = true
	reg.live[mesh] = true
	reg.pipelines[pl] = "forward-lit"
	reg.meshes[mesh] = bind_group_provider.NewBindGroupProvider("mesh")

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.BeginRenderPass{Spec: cmdbuffer.RenderPassSpec{Targets: []cmdbuffer.Handle{rt}}}))
	require.NoError(t, buf.Record(cmdbuffer.BindPipeline{Pipeline: pl}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Mesh: mesh, Count: 3, InstanceCount: 1}}))
	require.NoError(t, buf.Record(cmdbuffer.EndRenderPass{}))

	require.NoError(t, r.Submit(buf, reg))
	require.Equal(t, []string{"BeginFrame", "DrawCall", "EndFrame", "Present"}, backend.calls)
}

func TestSubmitReplaysShadowPassWhenTargetResolvesToShadowView(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)

	rt := cmdbuffer.NewHandle(0, 1)
	pl := cmdbuffer.NewHandle(0, 2)
	mesh := cmdbuffer.NewHandle(0, 3)

	reg := newFakeRegistry()
	reg.live[rt] = true
	reg.live[pl] = true
	reg.live[mesh] = true
	reg.pipelines[pl] = "shadow-depth"
	reg.meshes[mesh] = bind_group_provider.NewBindGroupProvider("mesh")
	reg.shadowViews[rt] = &wgpu.TextureView{}

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.BeginRenderPass{Spec: cmdbuffer.RenderPassSpec{Targets: []cmdbuffer.Handle{rt}}}))
	require.NoError(t, buf.Record(cmdbuffer.BindPipeline{Pipeline: pl}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Mesh: mesh, Count: 3, InstanceCount: 1}}))
	require.NoError(t, buf.Record(cmdbuffer.EndRenderPass{}))

	require.NoError(t, r.Submit(buf, reg))
	require.Equal(t, []string{"BeginShadowFrame", "BeginShadowPass", "ShadowDrawCall", "EndShadowPass", "EndShadowFrame"}, backend.calls)
}

func TestSubmitAppliesSetClipPlanesToRendererState(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)
	reg := newFakeRegistry()

	planes := cmdbuffer.ClipPlaneList{ActiveMask: 0x3}
	planes.Equations[0] = [4]float32{0, 1, 0, -1}

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.SetClipPlanes{Planes: planes}))

	require.NoError(t, r.Submit(buf, reg))
	require.Equal(t, planes, r.ActiveClipPlanes())
}

func TestSubmitRejectsBufferFailingValidation(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)
	reg := newFakeRegistry()

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.EndRenderPass{}))

	err := r.Submit(buf, reg)
	require.Error(t, err)
	require.Empty(t, backend.calls)
}

func TestSubmitRejectsUnresolvedPipelineHandle(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)

	rt := cmdbuffer.NewHandle(0, 1)
	pl := cmdbuffer.NewHandle(0, 9)
	reg := newFakeRegistry()
	reg.live[rt] = true
	reg.live[pl] = true

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.BeginRenderPass{Spec: cmdbuffer.RenderPassSpec{Targets: []cmdbuffer.Handle{rt}}}))
	require.NoError(t, buf.Record(cmdbuffer.BindPipeline{Pipeline: pl}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Count: 1, InstanceCount: 1}}))
	require.NoError(t, buf.Record(cmdbuffer.EndRenderPass{}))

	err := r.Submit(buf, reg)
	require.Error(t, err)
}

func TestSubmitSkipsUnchangedBindGroupOnSecondDraw(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)

	rt := cmdbuffer.NewHandle(0, 1)
	pl := cmdbuffer.NewHandle(0, 2)
	mesh := cmdbuffer.NewHandle(0, 3)
	tex := cmdbuffer.NewHandle(0, 4)

	reg := newFakeRegistry()
	reg.live[rt] = true
	reg.live[pl] = true
	reg.live[mesh] = true
	reg.live[tex] = true
	reg.pipelines[pl] = "forward-lit"
	reg.meshes[mesh] = bind_group_provider.NewBindGroupProvider("mesh")
	reg.bindGroups[tex] = bind_group_provider.NewBindGroupProvider("material")

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.BeginRenderPass{Spec: cmdbuffer.RenderPassSpec{Targets: []cmdbuffer.Handle{rt}}}))
	require.NoError(t, buf.Record(cmdbuffer.BindPipeline{Pipeline: pl}))
	require.NoError(t, buf.Record(cmdbuffer.BindShaderResources{UsageClass: cmdbuffer.UsagePerDraw, Binding: cmdbuffer.ResourceBinding{Texture: tex}}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Mesh: mesh, Count: 3, InstanceCount: 1}}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Mesh: mesh, Count: 3, InstanceCount: 1}}))
	require.NoError(t, buf.Record(cmdbuffer.EndRenderPass{}))

	require.NoError(t, r.Submit(buf, reg))
	require.Len(t, backend.drawBindGroups, 2)
	require.Len(t, backend.drawBindGroups[0], 1, "first draw after the bind must send the material bind group")
	require.Empty(t, backend.drawBindGroups[1], "second draw with nothing rebound must skip the unchanged bind group")
}

func TestSubmitResendsBindGroupAfterCoarserRebindMarksItDirty(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)

	rt := cmdbuffer.NewHandle(0, 1)
	pl := cmdbuffer.NewHandle(0, 2)
	mesh := cmdbuffer.NewHandle(0, 3)
	tex := cmdbuffer.NewHandle(0, 4)

	reg := newFakeRegistry()
	reg.live[rt] = true
	reg.live[pl] = true
	reg.live[mesh] = true
	reg.live[tex] = true
	reg.pipelines[pl] = "forward-lit"
	reg.meshes[mesh] = bind_group_provider.NewBindGroupProvider("mesh")
	reg.bindGroups[tex] = bind_group_provider.NewBindGroupProvider("material")

	buf := cmdbuffer.NewPool().Get()
	require.NoError(t, buf.Record(cmdbuffer.BeginRenderPass{Spec: cmdbuffer.RenderPassSpec{Targets: []cmdbuffer.Handle{rt}}}))
	require.NoError(t, buf.Record(cmdbuffer.BindPipeline{Pipeline: pl}))
	require.NoError(t, buf.Record(cmdbuffer.BindShaderResources{UsageClass: cmdbuffer.UsagePerDraw, Binding: cmdbuffer.ResourceBinding{Texture: tex}}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Mesh: mesh, Count: 3, InstanceCount: 1}}))
	// Rebinding the pipeline marks every finer usage class dirty again, even
	// with no fresh BindShaderResources queued for UsagePerDraw.
	require.NoError(t, buf.Record(cmdbuffer.BindPipeline{Pipeline: pl}))
	require.NoError(t, buf.Record(cmdbuffer.DrawCommands{Draw: cmdbuffer.DrawCall{Mesh: mesh, Count: 3, InstanceCount: 1}}))
	require.NoError(t, buf.Record(cmdbuffer.EndRenderPass{}))

	require.NoError(t, r.Submit(buf, reg))
	require.Len(t, backend.drawBindGroups, 2)
	require.Len(t, backend.drawBindGroups[0], 1)
	require.Len(t, backend.drawBindGroups[1], 1, "a coarser rebind must force the bind group to be resent")
	require.Equal(t, backend.drawBindGroups[0], backend.drawBindGroups[1], "resend must replay the same last-bound provider")
}

func TestPipelineCacheEvictsColdestEntriesPastHighWatermark(t *testing.T) {
	backend := &fakeBackend{}
	r := newTestRenderer(backend)
	pc := newPipelineCache(r)

	for i := 0; i < evictHighWatermark+10; i++ {
		key := fmt.Sprintf("pipeline-%d", i)
		r.mu.Lock()
		r.pipelineCache[key] = nil
		r.mu.Unlock()
		pc.touch(key)
	}

	r.mu.Lock()
	size := len(r.pipelineCache)
	r.mu.Unlock()
	require.LessOrEqual(t, size, evictHighWatermark)
}
