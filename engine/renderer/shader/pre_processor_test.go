package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
)

func TestPreProcessorProcess(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:include sphere",
		"//@oxy:group 1 2 storage_read spheres array<sphere>",
		"//@oxy:provider 1 3 geometry indices",
		"@group(1) @binding(3) var<storage, read> indices: array<u32>;",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !strings.Contains(out, scene.GPUSphereSource) {
		t.Error("include did not inject the Sphere struct source")
	}
	if !strings.Contains(out, "@group(1) @binding(2) var<storage, read> spheres: array<Sphere>;") {
		t.Errorf("group annotation not expanded:\n%s", out)
	}
	if strings.Contains(out, "@oxy:") {
		t.Errorf("annotations left in output:\n%s", out)
	}

	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("len(Declarations()) = %d, want 2", len(decls))
	}
	if decls[0].Type != AnnotationTypeBindingGroup || decls[1].Type != AnnotationTypeProvider {
		t.Errorf("declaration order = %q, %q", decls[0].Type, decls[1].Type)
	}

	// A second run starts from an empty declaration list.
	if _, err := pp.Process("//@oxy:include mesh_object"); err != nil {
		t.Fatal(err)
	}
	if n := len(pp.Declarations()); n != 0 {
		t.Errorf("declarations after include-only source = %d, want 0", n)
	}
}

func TestPreProcessorUniformBlock(t *testing.T) {
	out, err := NewPreProcessor().Process("//@oxy:group 0 0 storage_uniform uniforms tracer_uniforms")
	if err != nil {
		t.Fatal(err)
	}
	want := "@group(0) @binding(0) var<uniform> uniforms: TracerUniforms;"
	if out != want {
		t.Errorf("Process() = %q, want %q", out, want)
	}
}

func TestPreProcessorRejectsMalformed(t *testing.T) {
	_, err := NewPreProcessor().Process("fn f() {}\n//@oxy:include nothing")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Process error = %v, want a line 2 error", err)
	}
}
