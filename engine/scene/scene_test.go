package scene

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

type testMesh struct {
	vertices  []mgl32.Vec3
	indices   []uint32
	transform mgl32.Mat4
}

func (m *testMesh) LocalVertices() []mgl32.Vec3 { return m.vertices }
func (m *testMesh) LocalIndices() []uint32      { return m.indices }
func (m *testMesh) WorldTransform() mgl32.Mat4  { return m.transform }

// fan builds a triangle fan over n vertices with exactly triangles*3 indices.
func fan(n, triangles int, transform mgl32.Mat4) *testMesh {
	m := &testMesh{transform: transform}
	for i := range n {
		m.vertices = append(m.vertices, mgl32.Vec3{float32(i), 0, 0})
	}
	for t := range triangles {
		a := uint32(t % (n - 2))
		m.indices = append(m.indices, 0, a+1, a+2)
	}
	return m
}

func floats(b []byte) []float32 {
	return common.BytesToFloat32s(b)
}

func TestRebuildTwoObjects(t *testing.T) {
	a := fan(10, 5, mgl32.Ident4())
	b := fan(8, 4, mgl32.Translate3D(1, 2, 3))
	s := NewScene("test")
	s.Register(a)
	s.Register(b)

	g, ok := s.Rebuild()
	if !ok {
		t.Fatal("expected a rebuild after registration")
	}
	if len(g.Vertices) != 18 {
		t.Errorf("expected 18 vertices; got %d", len(g.Vertices))
	}
	if len(g.Indices) != 27 {
		t.Errorf("expected 27 indices; got %d", len(g.Indices))
	}
	if len(g.MeshObjects) != 2 {
		t.Fatalf("expected 2 mesh objects; got %d", len(g.MeshObjects))
	}
	if g.MeshObjects[1].IndexOffset != 15 {
		t.Errorf("expected second index offset 15; got %d", g.MeshObjects[1].IndexOffset)
	}
	if g.MeshObjects[1].WorldTransform != b.transform {
		t.Error("expected the second object's world transform to be carried over")
	}
	second := g.MeshObjects[1]
	for _, idx := range g.Indices[second.IndexOffset : second.IndexOffset+second.IndexCount] {
		if idx < 10 || idx >= 18 {
			t.Errorf("second object index %d outside [10, 18)", idx)
		}
	}
	if g.Vertices[10] != b.vertices[0] {
		t.Error("expected local vertices to be appended verbatim")
	}
}

func TestRebuildPrefixSumsAndRanges(t *testing.T) {
	s := NewScene("test", WithSources(
		fan(4, 2, mgl32.Ident4()),
		fan(6, 4, mgl32.Ident4()),
		fan(3, 1, mgl32.Ident4()),
		fan(12, 10, mgl32.Ident4()),
	))

	g, _ := s.Rebuild()
	var sum uint32
	for k, mo := range g.MeshObjects {
		if mo.IndexOffset != sum {
			t.Errorf("object %d offset %d; want %d", k, mo.IndexOffset, sum)
		}
		sum += mo.IndexCount
	}
	if int(sum) != len(g.Indices) {
		t.Errorf("index counts sum to %d; have %d indices", sum, len(g.Indices))
	}
	for i, idx := range g.Indices {
		if int(idx) >= len(g.Vertices) {
			t.Errorf("index %d is %d with %d vertices", i, idx, len(g.Vertices))
		}
	}
}

func TestRebuildIsNoOpWhenClean(t *testing.T) {
	s := NewScene("test", WithSources(fan(3, 1, mgl32.Ident4())))

	if _, ok := s.Rebuild(); !ok {
		t.Fatal("expected the first rebuild to run")
	}
	if s.Dirty() {
		t.Error("expected the dirty flag to be cleared")
	}
	if _, ok := s.Rebuild(); ok {
		t.Error("expected no rebuild while clean")
	}

	s.MarkDirty()
	if _, ok := s.Rebuild(); !ok {
		t.Error("expected a rebuild after MarkDirty")
	}
}

func TestUnregisterOnlyObjectYieldsEmptyGeometry(t *testing.T) {
	only := fan(5, 3, mgl32.Ident4())
	s := NewScene("test")
	s.Register(only)
	s.Rebuild()

	if !s.Unregister(only) {
		t.Fatal("expected the object to be registered")
	}
	g, ok := s.Rebuild()
	if !ok {
		t.Fatal("expected unregister to mark the scene dirty")
	}
	if !g.Empty() || len(g.Vertices) != 0 || len(g.Indices) != 0 {
		t.Errorf("expected empty geometry; got %d vertices, %d indices", len(g.Vertices), len(g.Indices))
	}
	if g.VertexBytes() != nil || g.IndexBytes() != nil || g.MeshObjectBytes() != nil {
		t.Error("expected nil byte sources for empty geometry")
	}
}

func TestRegisterIsIdempotentAndOrdered(t *testing.T) {
	a, b, c := fan(3, 1, mgl32.Ident4()), fan(3, 1, mgl32.Ident4()), fan(3, 1, mgl32.Ident4())
	s := NewScene("test")
	s.Register(a)
	s.Register(b)
	s.Register(a)
	s.Register(c)
	s.Unregister(b)

	got := s.Sources()
	want := []MeshSource{a, c}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected [a c] in insertion order; got %d sources", len(got))
	}
	if s.Unregister(b) {
		t.Error("expected a second unregister to report false")
	}
}

// valueMesh implements MeshSource on a value type holding slices, which cannot be compared.
type valueMesh struct {
	vertices []mgl32.Vec3
	indices  []uint32
}

func (m valueMesh) LocalVertices() []mgl32.Vec3 { return m.vertices }
func (m valueMesh) LocalIndices() []uint32      { return m.indices }
func (m valueMesh) WorldTransform() mgl32.Mat4  { return mgl32.Ident4() }

func TestRegisterRejectsNonComparableSource(t *testing.T) {
	s := NewScene("test")
	s.Register(fan(3, 1, mgl32.Ident4()))
	src := valueMesh{vertices: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, indices: []uint32{0, 1, 2}}

	if s.Unregister(src) {
		t.Error("Unregister of a non-comparable source reported true")
	}

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Register with a non-comparable source did not panic")
		}
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "scene.valueMesh") {
			t.Errorf("panic = %v, want a message naming scene.valueMesh", r)
		}
		if got := len(s.Sources()); got != 1 {
			t.Errorf("Sources() has %d entries after the rejected Register, want 1", got)
		}
	}()
	s.Register(src)
}

func TestRebuildSkipsMalformedObjects(t *testing.T) {
	good1 := fan(4, 2, mgl32.Ident4())
	good2 := fan(5, 3, mgl32.Ident4())
	s := NewScene("test", WithSources(
		good1,
		&testMesh{},
		&testMesh{vertices: []mgl32.Vec3{{}, {}, {}}, indices: []uint32{0, 1}},
		&testMesh{vertices: []mgl32.Vec3{{}, {}, {}}, indices: []uint32{0, 1, 3}},
		good2,
	))

	g, _ := s.Rebuild()
	if g.Skipped != 3 {
		t.Errorf("expected 3 skipped objects; got %d", g.Skipped)
	}
	want := []MeshObject{
		{WorldTransform: mgl32.Ident4(), IndexOffset: 0, IndexCount: 6},
		{WorldTransform: mgl32.Ident4(), IndexOffset: 6, IndexCount: 9},
	}
	if diff := cmp.Diff(want, g.MeshObjects); diff != "" {
		t.Errorf("mesh objects mismatch (-want +got):\n%s", diff)
	}
	if len(g.Vertices) != 9 {
		t.Errorf("expected 9 vertices; got %d", len(g.Vertices))
	}
}

func TestGenerateAdvancesVersion(t *testing.T) {
	s := NewScene("test")
	if s.SpheresVersion() != 0 || len(s.Spheres()) != 0 {
		t.Fatal("expected a new scene without spheres")
	}

	cfg := DefaultGeneratorConfig()
	cfg.MaxSpheres = 100
	sum, err := s.Generate(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SpheresVersion() != 1 {
		t.Errorf("expected version 1; got %d", s.SpheresVersion())
	}
	if sum.Accepted != len(s.Spheres()) {
		t.Errorf("summary reports %d accepted; scene holds %d", sum.Accepted, len(s.Spheres()))
	}

	cfg.RadiusMax = 1
	if _, err := s.Generate(cfg); err == nil {
		t.Error("expected a validation error")
	}
	if s.SpheresVersion() != 1 {
		t.Error("expected a failed generation to keep the current set")
	}
}

func TestMeshObjectLayout(t *testing.T) {
	mo := MeshObject{WorldTransform: mgl32.Translate3D(7, 8, 9), IndexOffset: 15, IndexCount: 12}
	buf := mo.Marshal()
	if len(buf) != MeshObjectStride {
		t.Fatalf("expected %d bytes; got %d", MeshObjectStride, len(buf))
	}
	f := floats(buf[:64])
	if f[12] != 7 || f[13] != 8 || f[14] != 9 {
		t.Errorf("expected column-major translation in elements 12..14; got %v", f[12:15])
	}
	u := buf[64:72]
	if u[0] != 15 || u[4] != 12 {
		t.Errorf("expected offset 15 and count 12; got %v", u)
	}
}
