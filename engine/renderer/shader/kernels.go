package shader

import (
	_ "embed"
)

// Keys of the built-in shaders.
const (
	KeyRaytrace        = "raytrace"
	KeyAccumulate      = "accumulate"
	KeyPresentVertex   = "present_vertex"
	KeyPresentFragment = "present_fragment"
)

// raytraceSource is the tracing kernel: one camera ray per pixel, up to eight bounces against
// the ground plane, spheres and mesh triangles, falling back to the skybox.
//
//go:embed assets/raytrace.wgsl
var raytraceSource string

// accumulateSource blends the raw sample target into the converged buffer.
//
//go:embed assets/accumulate.wgsl
var accumulateSource string

// presentSource draws the converged buffer to the surface with gamma applied.
//
//go:embed assets/present.wgsl
var presentSource string

// NewRaytraceKernel returns the compute shader that writes one noisy sample per pixel into the
// raw target.
//
// Returns:
//   - Shader: the parsed tracing kernel
func NewRaytraceKernel() Shader {
	return NewShaderFromSource(KeyRaytrace, ShaderTypeCompute, raytraceSource)
}

// NewAccumulateKernel returns the compute shader that folds the raw target into the running
// mean.
//
// Returns:
//   - Shader: the parsed blend kernel
func NewAccumulateKernel() Shader {
	return NewShaderFromSource(KeyAccumulate, ShaderTypeCompute, accumulateSource)
}

// NewPresentShaders returns the vertex and fragment stages of the fullscreen present pass.
//
// Returns:
//   - Shader: the vertex stage
//   - Shader: the fragment stage
func NewPresentShaders() (Shader, Shader) {
	return NewShaderFromSource(KeyPresentVertex, ShaderTypeVertex, presentSource),
		NewShaderFromSource(KeyPresentFragment, ShaderTypeFragment, presentSource)
}
