// Package config holds engine-wide configuration: the enumerated options a
// caller can set once at startup and that flow down into the window,
// renderer, scenes, and task pool. It follows the same functional-options
// shape as EngineBuilderOption/RendererBuilderOption/PipelineBuilderOption
// rather than exposing its fields for direct mutation.
package config

import "runtime"

// Config holds the engine's configurable surface: display/present policy,
// anti-aliasing and filtering quality, worker sizing, and GPU debug toggles.
// Construct with NewConfig; the zero value is not meaningful.
type Config struct {
	EnableVSync      bool
	AdaptiveSync     bool
	FrameRateLimit   float64 // frames per second; 0 = uncapped
	MSAASamples      int
	AnisotropyLevel  int
	ShadowMSAASamples int

	MaxWorkerThreads int
	UsePipelineCache bool

	EnableAPIDebugging     bool
	EnableAPIBestPractices bool
}

// ConfigOption is a functional option applied to a Config during NewConfig.
type ConfigOption func(*Config)

// NewConfig builds a Config with defaults matching the engine/renderer
// package's own defaults (VSync on, MSAA4x, anisotropy off, pipeline cache
// on) and then applies opts in order.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		EnableVSync:       true,
		AdaptiveSync:      false,
		FrameRateLimit:    0,
		MSAASamples:       4,
		AnisotropyLevel:   1,
		ShadowMSAASamples: 1,
		MaxWorkerThreads:  max(runtime.NumCPU()-1, 1),
		UsePipelineCache:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithVSync enables or disables waiting for vertical blank before presenting.
func WithVSync(enabled bool) ConfigOption {
	return func(c *Config) { c.EnableVSync = enabled }
}

// WithAdaptiveSync enables falling back to an immediate present when a frame
// misses vertical blank, rather than a hard VSync stall. Only meaningful
// when EnableVSync is also true.
func WithAdaptiveSync(enabled bool) ConfigOption {
	return func(c *Config) { c.AdaptiveSync = enabled }
}

// WithFrameRateLimit caps the render loop to fps frames per second. Pass 0
// to uncap it.
func WithFrameRateLimit(fps float64) ConfigOption {
	return func(c *Config) { c.FrameRateLimit = fps }
}

// WithMSAASamples sets the multisample anti-aliasing sample count for the
// main color/depth targets (1, 4, 8, or 16 — adapter-dependent above 4).
func WithMSAASamples(samples int) ConfigOption {
	return func(c *Config) { c.MSAASamples = samples }
}

// WithAnisotropyLevel sets the default max anisotropic filtering level
// applied to samplers created without an explicit override.
func WithAnisotropyLevel(level int) ConfigOption {
	return func(c *Config) { c.AnisotropyLevel = level }
}

// WithShadowMSAASamples sets the MSAA sample count used for shadow-map
// render targets, independent of the main color target's sample count.
func WithShadowMSAASamples(samples int) ConfigOption {
	return func(c *Config) { c.ShadowMSAASamples = samples }
}

// WithMaxWorkerThreads sets the number of worker goroutines backing the
// task pool(s) created from this Config. Defaults to runtime.NumCPU()-1.
func WithMaxWorkerThreads(n int) ConfigOption {
	return func(c *Config) {
		if n > 0 {
			c.MaxWorkerThreads = n
		}
	}
}

// WithPipelineCache enables or disables the renderer's LRU pipeline-cache
// eviction. Disabling it restores the teacher's original never-evict
// behavior, trading unbounded GPU pipeline object growth for never
// recompiling a pipeline that was evicted and rebound later.
func WithPipelineCache(enabled bool) ConfigOption {
	return func(c *Config) { c.UsePipelineCache = enabled }
}

// WithAPIDebugging enables the GPU backend's validation/debug layer.
func WithAPIDebugging(enabled bool) ConfigOption {
	return func(c *Config) { c.EnableAPIDebugging = enabled }
}

// WithAPIBestPractices enables the GPU backend's best-practices validation,
// surfacing non-fatal but suboptimal usage patterns.
func WithAPIBestPractices(enabled bool) ConfigOption {
	return func(c *Config) { c.EnableAPIBestPractices = enabled }
}
