package engine

import (
	"fmt"
	"sync"

	"github.com/Mara-Voss/glimmer-core/engine/enginelog"
	"github.com/Mara-Voss/glimmer-core/engine/profiler"
	"github.com/Mara-Voss/glimmer-core/engine/renderer"
	"github.com/Mara-Voss/glimmer-core/internal/taskpool"
	"golang.org/x/sync/errgroup"
)

// StageName identifies one stage of the fixed per-frame render pipeline.
type StageName string

const (
	StageShadow     StageName = "Shadow"
	StageReflection StageName = "Reflection"
	StageRefraction StageName = "Refraction"
	StageDisplay    StageName = "Display"
	StagePost       StageName = "Post"
)

// stageOrder lists every stage together with the upstream stages it depends
// on, matching the fixed Shadow -> Reflection/Refraction -> Display -> Post
// sequence of the original's render-pass manager
// (_examples/original_source/Source/Managers/Headers/RenderPassManager.h).
// Reflection and Refraction share the same upstream and run concurrently
// with each other.
var stageOrder = []struct {
	Name     StageName
	Upstream []StageName
}{
	{StageShadow, nil},
	{StageReflection, []StageName{StageShadow}},
	{StageRefraction, []StageName{StageShadow}},
	{StageDisplay, []StageName{StageReflection, StageRefraction}},
	{StagePost, []StageName{StageDisplay}},
}

// SetStageCallback registers fn to run during stage, after that stage's
// built-in work (if any). Shadow and Display have built-in work (shadow-map
// rendering and the main draw-call submission); Reflection, Refraction, and
// Post have none by default — they exist as named points in the dependency
// graph a caller can plug custom work into (planar reflections, screen-space
// refraction, post-processing) without the engine needing to know what that
// work is, the same registration pattern as SetTickCallback/SetRenderCallback.
func (e *engine) SetStageCallback(stage StageName, fn func(*FrameContext)) {
	if e.stageCallbacks == nil {
		e.stageCallbacks = make(map[StageName]func(*FrameContext))
	}
	e.stageCallbacks[stage] = fn
}

// runStagePipeline executes every stage in stageOrder. Each stage waits on
// its upstream stages' completion (a shared sync.Cond broadcast once a
// stage finishes) before starting; Reflection and Refraction have the same
// upstream and so run as concurrent goroutines, joined through an
// errgroup.Group so the first stage error any goroutine returns is the one
// that comes back to the caller, instead of being silently swallowed.
// Cancellation is checked at each stage boundary: a stage already running
// finishes, but no stage starts once ctx.Cancelled() — matching spec.md
// §4.C6's cancellation handling (let in-flight recording finish, drop the
// rest).
func (e *engine) runStagePipeline(ctx *FrameContext) error {
	mu := &sync.Mutex{}
	cond := sync.NewCond(mu)
	done := make(map[StageName]bool, len(stageOrder))

	var g errgroup.Group
	for _, stage := range stageOrder {
		stage := stage
		g.Go(func() error {
			mu.Lock()
			for !stagesDone(done, stage.Upstream) {
				cond.Wait()
			}
			mu.Unlock()

			var err error
			if !ctx.Cancelled() {
				err = e.runStage(ctx, stage.Name)
			}

			mu.Lock()
			done[stage.Name] = true
			cond.Broadcast()
			mu.Unlock()

			return err
		})
	}
	err := g.Wait()

	// GPU-idle hook: between frames, drain completed-task callbacks and
	// garbage-collect stale buffer locks rather than doing it inline with
	// stage work (spec.md §4.C6.3).
	if e.stagePool != nil {
		e.stagePool.FlushCallbackQueue()
	}
	if e.transientAllocator != nil {
		e.transientAllocator.GC(ctx.Index)
	}
	return err
}

// scope starts a profiler.Category-tagged timing span when profiling is
// enabled, returning a no-op stop function otherwise.
func (e *engine) scope(category profiler.Category) func() {
	if !e.profilingEnabled || e.profiler == nil {
		return func() {}
	}
	return e.profiler.BeginScope(category)
}

func stagesDone(done map[StageName]bool, upstream []StageName) bool {
	for _, u := range upstream {
		if !done[u] {
			return false
		}
	}
	return true
}

// runStage dispatches a stage's built-in work (if any), then its registered
// callback. The callback itself carries no error return (matching
// SetTickCallback/SetRenderCallback); only the stage's built-in work can
// fail a frame.
func (e *engine) runStage(ctx *FrameContext, name StageName) error {
	var err error
	switch name {
	case StageShadow:
		err = e.runShadowStage(ctx)
	case StageDisplay:
		err = e.runDisplayStage(ctx)
	}
	if fn := e.stageCallbacks[name]; fn != nil {
		fn(ctx)
	}
	return err
}

// runShadowStage renders the directional shadow pass for every active
// scene. Fanned out across the stage pool when more than one scene is
// active — distinct scenes' shadow passes share no state.
func (e *engine) runShadowStage(ctx *FrameContext) error {
	defer e.scope(profiler.CategoryGraphics)()

	if e.stagePool == nil || len(ctx.Scenes) < 2 {
		for _, s := range ctx.Scenes {
			s.PrepareShadows()
		}
		return nil
	}
	e.stagePool.ParallelFor(len(ctx.Scenes), 1, taskpool.ParallelForOptions{WaitForFinish: true, AllowPoolIdle: true}, func(start, end int) {
		for _, s := range ctx.Scenes[start:end] {
			s.PrepareShadows()
		}
	})
	return nil
}

// runDisplayStage issues the main color pass: light culling for every
// active scene, then one BeginFrame/EndFrame/Present bracket shared across
// every scene using the first scene's renderer, matching the teacher's
// handleRender layered-compositing behavior.
func (e *engine) runDisplayStage(ctx *FrameContext) error {
	defer e.scope(profiler.CategoryGraphics)()

	for _, s := range ctx.Scenes {
		s.PrepareLightCulling()
	}
	if len(ctx.Scenes) == 0 {
		return nil
	}

	r := ctx.Scenes[0].Renderer()
	if r == nil {
		return nil
	}
	if err := r.BeginFrame(); err != nil {
		enginelog.Printf(enginelog.ComponentFrame, "BeginFrame failed: %v", err)
		return fmt.Errorf("display stage: begin frame: %w", err)
	}

	var firstErr error
	for _, s := range ctx.Scenes {
		if err := s.DrawCalls(); err != nil {
			enginelog.Printf(enginelog.ComponentFrame, "scene %q draw calls failed: %v", s.Name(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("display stage: scene %q draw calls: %w", s.Name(), err)
			}
		}
	}
	r.EndFrame()
	r.Present()

	if r.DeviceLost() {
		if err := e.recoverDeviceLoss(ctx, r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// recoverDeviceLoss implements spec.md §8 scenario S6: a device-lost frame
// drains every fence still outstanding in the retire queue, then asks the
// renderer to tear down and recreate its backend and rebuild the pipeline
// cache, so frame F+1 can proceed against a fresh device instead of the
// engine crashing or wedging on a dead one.
func (e *engine) recoverDeviceLoss(ctx *FrameContext, r renderer.Renderer) error {
	enginelog.Printf(enginelog.ComponentFrame, "frame %d: device lost, recovering", ctx.Index)
	if e.fenceQueue != nil {
		e.fenceQueue.WaitAll()
		e.fenceQueue.DrainSignaled()
	}
	if err := r.RecoverFromDeviceLoss(); err != nil {
		enginelog.Printf(enginelog.ComponentFrame, "frame %d: device-lost recovery failed: %v", ctx.Index, err)
		return fmt.Errorf("%w: %v", ErrDeviceLost, err)
	}
	return nil
}
