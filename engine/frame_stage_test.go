package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Mara-Voss/glimmer-core/engine/renderer"
	"github.com/Mara-Voss/glimmer-core/engine/scene"
	"github.com/Mara-Voss/glimmer-core/internal/gpusync"
	"github.com/stretchr/testify/require"
)

// stageScene is a minimal scene.Scene stub: embedding the nil interface lets
// it satisfy scene.Scene without implementing every method, panicking only
// if an unoverridden one is called.
type stageScene struct {
	scene.Scene

	mu            sync.Mutex
	shadowsCalled bool
	cullCalled    bool
	drawCalled    bool
}

func (s *stageScene) PrepareShadows() {
	s.mu.Lock()
	s.shadowsCalled = true
	s.mu.Unlock()
}

func (s *stageScene) PrepareLightCulling() {
	s.mu.Lock()
	s.cullCalled = true
	s.mu.Unlock()
}

func (s *stageScene) DrawCalls() error {
	s.mu.Lock()
	s.drawCalled = true
	s.mu.Unlock()
	return nil
}

func (s *stageScene) Renderer() renderer.Renderer { return nil }

func (s *stageScene) Name() string { return "stage-test-scene" }

func TestRunStagePipelineRunsBuiltInStageWork(t *testing.T) {
	e := &engine{}
	s := &stageScene{}
	ctx := &FrameContext{Index: 1, Scenes: []scene.Scene{s}, cancel: make(chan struct{})}

	require.NoError(t, e.runStagePipeline(ctx))

	require.True(t, s.shadowsCalled)
	require.True(t, s.cullCalled)
	// Renderer() returns nil, so runDisplayStage bails before DrawCalls.
	require.False(t, s.drawCalled)
}

func TestRunStagePipelineInvokesRegisteredCallbacksInDependencyOrder(t *testing.T) {
	e := &engine{}
	var mu sync.Mutex
	var order []StageName
	record := func(name StageName) func(*FrameContext) {
		return func(*FrameContext) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		}
	}
	e.SetStageCallback(StageReflection, record(StageReflection))
	e.SetStageCallback(StageRefraction, record(StageRefraction))
	e.SetStageCallback(StagePost, record(StagePost))

	ctx := &FrameContext{Index: 1, cancel: make(chan struct{})}
	require.NoError(t, e.runStagePipeline(ctx))

	require.Len(t, order, 3)
	require.Equal(t, StagePost, order[len(order)-1])

	seenReflection, seenRefraction := false, false
	for _, name := range order[:len(order)-1] {
		switch name {
		case StageReflection:
			seenReflection = true
		case StageRefraction:
			seenRefraction = true
		}
	}
	require.True(t, seenReflection)
	require.True(t, seenRefraction)
}

func TestRunStagePipelineSkipsRemainingStagesOnceCancelled(t *testing.T) {
	e := &engine{}
	cancel := make(chan struct{})
	close(cancel)

	var called bool
	e.SetStageCallback(StagePost, func(*FrameContext) { called = true })

	ctx := &FrameContext{Index: 1, cancel: cancel}
	require.NoError(t, e.runStagePipeline(ctx))

	require.False(t, called)
}

// fakeStageRenderer is a minimal renderer.Renderer stub: embedding the nil
// interface lets it satisfy renderer.Renderer without implementing every
// method, same trick as stageScene above. Only BeginFrame/EndFrame/Present
// and DeviceLost are ever invoked by runDisplayStage.
type fakeStageRenderer struct {
	renderer.Renderer
}

func (f *fakeStageRenderer) BeginFrame() error { return nil }
func (f *fakeStageRenderer) EndFrame()         {}
func (f *fakeStageRenderer) Present()          {}
func (f *fakeStageRenderer) DeviceLost() bool  { return false }

var errStageTestDrawFailed = fmt.Errorf("stage test: draw failed")

// failingRendererScene fails DrawCalls so runDisplayStage's error return can
// be asserted on without a real backend.
type failingRendererScene struct {
	stageScene
	r renderer.Renderer
}

func (s *failingRendererScene) Renderer() renderer.Renderer { return s.r }

func (s *failingRendererScene) DrawCalls() error {
	s.stageScene.DrawCalls()
	return errStageTestDrawFailed
}

func TestRunStagePipelinePropagatesFirstStageError(t *testing.T) {
	e := &engine{}
	s := &failingRendererScene{r: &fakeStageRenderer{}}
	ctx := &FrameContext{Index: 1, Scenes: []scene.Scene{s}, cancel: make(chan struct{})}

	err := e.runStagePipeline(ctx)
	require.ErrorIs(t, err, errStageTestDrawFailed)
}

// deviceLostRenderer simulates a device lost at the end of a frame: Present
// runs normally, but DeviceLost reports true afterward and
// RecoverFromDeviceLoss records that it was called instead of touching a
// real backend.
type deviceLostRenderer struct {
	renderer.Renderer

	lost       bool
	recovered  bool
	recoverErr error
}

func (f *deviceLostRenderer) BeginFrame() error { return nil }
func (f *deviceLostRenderer) EndFrame()         {}
func (f *deviceLostRenderer) Present()          {}
func (f *deviceLostRenderer) DeviceLost() bool  { return f.lost }
func (f *deviceLostRenderer) RecoverFromDeviceLoss() error {
	f.recovered = true
	return f.recoverErr
}

// deviceLostScene pairs stageScene with a renderer whose identity the test
// controls, the same pattern failingRendererScene uses above.
type deviceLostScene struct {
	stageScene
	r renderer.Renderer
}

func (s *deviceLostScene) Renderer() renderer.Renderer { return s.r }

func TestRunDisplayStageRecoversFromDeviceLoss(t *testing.T) {
	e := &engine{fenceQueue: gpusync.NewFenceRetireQueue(3)}
	r := &deviceLostRenderer{lost: true}
	s := &deviceLostScene{r: r}

	ctx := &FrameContext{Index: 1, Scenes: []scene.Scene{s}, cancel: make(chan struct{})}
	err := e.runDisplayStage(ctx)

	require.NoError(t, err)
	require.True(t, r.recovered, "a device-lost frame must trigger RecoverFromDeviceLoss")
}

func TestRunDisplayStagePropagatesDeviceLossRecoveryFailure(t *testing.T) {
	e := &engine{}
	r := &deviceLostRenderer{lost: true, recoverErr: fmt.Errorf("backend recreation failed")}
	s := &deviceLostScene{r: r}

	ctx := &FrameContext{Index: 1, Scenes: []scene.Scene{s}, cancel: make(chan struct{})}
	err := e.runDisplayStage(ctx)

	require.ErrorIs(t, err, ErrDeviceLost)
}

func TestFrameContextCancelled(t *testing.T) {
	cancel := make(chan struct{})
	ctx := &FrameContext{cancel: cancel}
	require.False(t, ctx.Cancelled())

	close(cancel)
	require.Eventually(t, ctx.Cancelled, time.Second, time.Millisecond)
}
