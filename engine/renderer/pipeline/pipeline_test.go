package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("present", PipelineTypeRender)

	if p.CullMode() != wgpu.CullModeNone || p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("cull/topology = %v/%v", p.CullMode(), p.Topology())
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll || p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("write mask/front face = %v/%v", p.WriteMask(), p.FrontFace())
	}
	if p.BindGroupLayout(0) != nil || p.BindGroupLayout(-1) != nil {
		t.Error("unregistered pipeline returned a bind group layout")
	}
}

func TestPipelineShaders(t *testing.T) {
	k := shader.NewAccumulateKernel()
	vs, fs := shader.NewPresentShaders()

	compute := NewPipeline("accumulate", PipelineTypeCompute, WithComputeShader(k))
	if compute.Shader(shader.ShaderTypeCompute) != k || compute.Shader(shader.ShaderTypeVertex) != nil {
		t.Error("compute pipeline shaders not attached as configured")
	}

	render := NewPipeline("present", PipelineTypeRender, WithVertexShader(vs), WithFragmentShader(fs), WithCullMode(wgpu.CullModeBack))
	if render.Shader(shader.ShaderTypeVertex) != vs || render.Shader(shader.ShaderTypeFragment) != fs {
		t.Error("render pipeline shaders not attached as configured")
	}
	if render.CullMode() != wgpu.CullModeBack {
		t.Errorf("CullMode() = %v, want back", render.CullMode())
	}
	if got, ok := render.Pipeline().(*wgpu.RenderPipeline); !ok || got != nil {
		t.Errorf("Pipeline() before registration = %v", render.Pipeline())
	}
}
