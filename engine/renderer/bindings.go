package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
)

// kernelSlots are the group 0 binding indices of the tracing kernel.
type kernelSlots struct {
	uniforms    int
	raw         int
	skyTexture  int
	skySampler  int
	spheres     int
	meshObjects int
	vertices    int
	indices     int
}

// accumulateSlots are the group 0 binding indices of the accumulation kernel.
type accumulateSlots struct {
	params    int
	raw       int
	converged int
}

// presentSlots are the group 0 binding indices of the present fragment shader.
type presentSlots struct {
	params    int
	converged int
}

// slotResolver collects binding lookups against one shader and remembers the first miss.
type slotResolver struct {
	s   shader.Shader
	err error
}

func (r *slotResolver) provider(provider, role shader.AnnotationArg) int {
	group, binding, ok := r.s.Binding(provider, role)
	return r.check(ok, group, fmt.Sprintf("%s %s", provider, role), binding)
}

func (r *slotResolver) structure(structType shader.AnnotationArg) int {
	group, binding, ok := r.s.StructBinding(structType)
	return r.check(ok, group, string(structType), binding)
}

func (r *slotResolver) check(ok bool, group int, what string, binding int) int {
	if r.err != nil {
		return -1
	}
	if !ok {
		r.err = fmt.Errorf("renderer: shader %s declares no binding for %s", r.s.Key(), what)
		return -1
	}
	if group != 0 {
		r.err = fmt.Errorf("renderer: shader %s binds %s in group %d, only group 0 is supported", r.s.Key(), what, group)
		return -1
	}
	return binding
}

func resolveKernelSlots(s shader.Shader) (kernelSlots, error) {
	r := &slotResolver{s: s}
	slots := kernelSlots{
		uniforms:    r.structure(shader.AnnotationArgTracerUniforms),
		raw:         r.provider(shader.AnnotationArgTarget, shader.AnnotationArgRaw),
		skyTexture:  r.provider(shader.AnnotationArgSkybox, shader.AnnotationArgTexture),
		skySampler:  r.provider(shader.AnnotationArgSkybox, shader.AnnotationArgSampler),
		spheres:     r.structure(shader.AnnotationArgSphere),
		meshObjects: r.structure(shader.AnnotationArgMeshObject),
		vertices:    r.provider(shader.AnnotationArgGeometry, shader.AnnotationArgVertices),
		indices:     r.provider(shader.AnnotationArgGeometry, shader.AnnotationArgIndices),
	}
	return slots, r.err
}

func resolveAccumulateSlots(s shader.Shader) (accumulateSlots, error) {
	r := &slotResolver{s: s}
	slots := accumulateSlots{
		params:    r.structure(shader.AnnotationArgAccumulateParams),
		raw:       r.provider(shader.AnnotationArgTarget, shader.AnnotationArgRaw),
		converged: r.provider(shader.AnnotationArgTarget, shader.AnnotationArgConverged),
	}
	return slots, r.err
}

func resolvePresentSlots(s shader.Shader) (presentSlots, error) {
	r := &slotResolver{s: s}
	slots := presentSlots{
		params:    r.structure(shader.AnnotationArgAccumulateParams),
		converged: r.provider(shader.AnnotationArgTarget, shader.AnnotationArgConverged),
	}
	return slots, r.err
}
