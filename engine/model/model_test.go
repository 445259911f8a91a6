package model

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func triangleNormal(m Model, tri int) mgl32.Vec3 {
	v, idx := m.Vertices(), m.Indices()
	a, b, c := v[idx[tri*3]], v[idx[tri*3+1]], v[idx[tri*3+2]]
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func TestCubeFacesPointOutward(t *testing.T) {
	cube := NewCube(2)
	if cube.TriangleCount() != 12 || len(cube.Vertices()) != 24 {
		t.Fatalf("cube has %d triangles and %d vertices", cube.TriangleCount(), len(cube.Vertices()))
	}
	for tri := range cube.TriangleCount() {
		idx := cube.Indices()
		centroid := cube.Vertices()[idx[tri*3]].Add(cube.Vertices()[idx[tri*3+1]]).Add(cube.Vertices()[idx[tri*3+2]]).Mul(1.0 / 3)
		if triangleNormal(cube, tri).Dot(centroid) <= 0 {
			t.Errorf("triangle %d faces inward", tri)
		}
	}

	lo, hi := cube.Bounds()
	if lo != (mgl32.Vec3{-1, -1, -1}) || hi != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
}

func TestPlaneFacesUp(t *testing.T) {
	plane := NewPlane(10)
	for tri := range plane.TriangleCount() {
		if n := triangleNormal(plane, tri); !n.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-6) {
			t.Errorf("triangle %d normal = %v", tri, n)
		}
	}
}

func TestNewModelFromImportOffsetsIndices(t *testing.T) {
	imported := ImportedModel{
		Name: "pair",
		Meshes: []ImportedMesh{
			{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, Indices: []uint32{0, 1, 2}},
			{Positions: []mgl32.Vec3{{0, 0, 3}, {1, 0, 3}, {0, 1, 3}}, Indices: []uint32{2, 1, 0}},
		},
	}

	m := NewModelFromImport(imported)
	if m.Name() != "pair" {
		t.Errorf("Name() = %q", m.Name())
	}
	if diff := cmp.Diff([]uint32{0, 1, 2, 5, 4, 3}, m.Indices()); diff != "" {
		t.Errorf("indices mismatch (-want +got):\n%s", diff)
	}
	if got, want := m.BoundingRadius(), float32(math.Sqrt(10)); math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("BoundingRadius() = %v, want %v", got, want)
	}
}

func TestBoundsEmpty(t *testing.T) {
	lo, hi := Bounds(nil)
	if lo != (mgl32.Vec3{}) || hi != (mgl32.Vec3{}) {
		t.Errorf("Bounds(nil) = %v, %v", lo, hi)
	}
}
