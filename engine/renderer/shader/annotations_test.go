package shader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseAnnotation(t *testing.T) {
	intPtr := func(v int) *int { return &v }

	tests := []struct {
		name    string
		line    string
		want    *Annotation
		wantErr bool
	}{
		{
			name: "plain wgsl line",
			line: "let x = 1.0; // not an annotation",
		},
		{
			name: "include",
			line: "//@oxy:include sphere",
			want: &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArgSphere}, Line: 7},
		},
		{
			name: "group with runtime array",
			line: "  //@oxy:group 0 4 storage_read spheres array<sphere>",
			want: &Annotation{
				Type:    AnnotationTypeBindingGroup,
				Args:    []AnnotationArg{"storage_read", "spheres", "array<sphere>"},
				Line:    7,
				Group:   intPtr(0),
				Binding: intPtr(4),
			},
		},
		{
			name: "provider with role",
			line: "//@oxy:provider 0 1 target raw",
			want: &Annotation{
				Type:    AnnotationTypeProvider,
				Args:    []AnnotationArg{AnnotationArgTarget, AnnotationArgRaw},
				Line:    7,
				Group:   intPtr(0),
				Binding: intPtr(1),
			},
		},
		{name: "empty", line: "//@oxy:", wantErr: true},
		{name: "unknown type", line: "//@oxy:texture 0 0", wantErr: true},
		{name: "unknown include", line: "//@oxy:include camera", wantErr: true},
		{name: "include arity", line: "//@oxy:include sphere mesh_object", wantErr: true},
		{name: "bad address space", line: "//@oxy:group 0 0 storage_private u tracer_uniforms", wantErr: true},
		{name: "bad group number", line: "//@oxy:group x 0 storage_uniform u tracer_uniforms", wantErr: true},
		{name: "unknown array element", line: "//@oxy:group 0 4 storage_read s array<light>", wantErr: true},
		{name: "unknown provider", line: "//@oxy:provider 0 1 material", wantErr: true},
		{name: "unknown role", line: "//@oxy:provider 0 1 target diffuse_texture", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnnotation(tt.line, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseAnnotation(%q) returned no error", tt.line)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAnnotation(%q): %v", tt.line, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseAnnotation(%q) mismatch (-want +got):\n%s", tt.line, diff)
			}
		})
	}
}

func TestAnnotationAccessors(t *testing.T) {
	group, err := parseAnnotation("//@oxy:group 0 5 storage_read mesh_objects array<mesh_object>", 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := group.StructType(); got != AnnotationArgMeshObject {
		t.Errorf("StructType() = %q, want %q", got, AnnotationArgMeshObject)
	}
	if got := group.Provider(); got != "" {
		t.Errorf("Provider() on a group annotation = %q, want empty", got)
	}

	provider, err := parseAnnotation("//@oxy:provider 0 6 geometry vertices", 2)
	if err != nil {
		t.Fatal(err)
	}
	if provider.Provider() != AnnotationArgGeometry || provider.Role() != AnnotationArgVertices {
		t.Errorf("provider/role = %q/%q, want geometry/vertices", provider.Provider(), provider.Role())
	}

	bare, err := parseAnnotation("//@oxy:provider 1 0 skybox", 3)
	if err != nil {
		t.Fatal(err)
	}
	if bare.Role() != "" {
		t.Errorf("Role() without a role = %q, want empty", bare.Role())
	}
}
