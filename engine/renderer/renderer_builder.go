package renderer

import "github.com/Carmen-Shannon/oxy-rt/common"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
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

// WithSkybox sets the environment map uploaded at construction instead of the neutral grey
// default.
//
// Parameters:
//   - data: RGBA8 sRGB pixels of an equirectangular image
//
// Returns:
//   - RendererBuilderOption: a function that applies the skybox option to a renderer
func WithSkybox(data common.TextureStagingData) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingSkybox = &data
	}
}

// WithSkyboxSampler overrides the skybox sampler. Zero fields keep linear filtering and repeat
// addressing.
//
// Parameters:
//   - s: the sampler configuration
//
// Returns:
//   - RendererBuilderOption: a function that applies the sampler option to a renderer
func WithSkyboxSampler(s common.SamplerStagingData) RendererBuilderOption {
	return func(r *renderer) {
		r.skyboxSampler = s
	}
}
