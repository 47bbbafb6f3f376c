package renderer

import (
	"github.com/Mara-Voss/glimmer-core/engine/config"
	"github.com/Mara-Voss/glimmer-core/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPipeline pre-registers a single Pipeline in the renderer's pipeline cache under the given key.
//
// Parameters:
//   - key: the unique identifier for the pipeline
//   - p: the Pipeline to cache
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline option to a renderer
func WithPipeline(key string, p pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache[key] = p
	}
}

// WithPipelines replaces the renderer's entire pipeline cache with the provided map.
//
// Parameters:
//   - pipelines: a map of pipeline keys to their corresponding Pipeline objects
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipelines option to a renderer
func WithPipelines(pipelines map[string]pipeline.Pipeline) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineCache = pipelines
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync, Uncapped, or Adaptive)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported
// by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithConfig derives present mode and MSAA from cfg, matching the same
// precedence as WithPresentMode/WithMSAA applied individually — a later
// WithPresentMode/WithMSAA option in the same NewRenderer call still wins
// since builder options apply in argument order.
//
// Parameters:
//   - cfg: the engine configuration to derive renderer options from
//
// Returns:
//   - RendererBuilderOption: a function that applies the derived options to a renderer
func WithConfig(cfg *config.Config) RendererBuilderOption {
	return func(r *renderer) {
		mode := PresentModeUncapped
		if cfg.EnableVSync {
			mode = PresentModeVSync
			if cfg.AdaptiveSync {
				mode = PresentModeAdaptive
			}
		}
		r.pendingPresentMode = &mode

		samples := MSAASampleCount(cfg.MSAASamples)
		if samples == 0 {
			samples = MSAAOff
		}
		r.pendingMSAA = &samples

		r.usePipelineCache = cfg.UsePipelineCache

		if cfg.AnisotropyLevel > 0 {
			r.pendingAnisotropy = uint16(cfg.AnisotropyLevel)
		}
		if cfg.ShadowMSAASamples > 0 {
			r.pendingShadowMSAA = MSAASampleCount(cfg.ShadowMSAASamples)
		}
	}
}

// WithPipelineCacheEviction enables or disables the renderer's frame-based
// LRU pipeline-cache eviction used by Submit. Disabled, a bound pipeline is
// never evicted, matching the teacher's original unbounded cache.
//
// Parameters:
//   - enabled: whether Submit should evict cold pipeline-cache entries
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithPipelineCacheEviction(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.usePipelineCache = enabled
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Useful for benchmarking CPU vs GPU rendering performance.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
