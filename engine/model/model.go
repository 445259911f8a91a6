// Package model holds immutable triangle meshes in local space. A Model carries no transform;
// placing one in the world is the job of a game object.
package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name           string
	vertices       []mgl32.Vec3
	indices        []uint32
	boundingMin    mgl32.Vec3
	boundingMax    mgl32.Vec3
	boundingRadius float32
}

// Model defines the interface for a loaded or generated triangle mesh.
// It is produced by the Loader after importing a model file, or by the primitive constructors.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the local-space vertex positions. Callers must not modify the slice.
	//
	// Returns:
	//   - []mgl32.Vec3: the positions
	Vertices() []mgl32.Vec3

	// Indices returns the triangle list into Vertices. Callers must not modify the slice.
	//
	// Returns:
	//   - []uint32: three indices per triangle
	Indices() []uint32

	// TriangleCount returns the number of whole triangles in the index list.
	//
	// Returns:
	//   - int: len(Indices()) / 3
	TriangleCount() int

	// Bounds returns the local-space axis-aligned bounding box.
	//
	// Returns:
	//   - mgl32.Vec3: the minimum corner
	//   - mgl32.Vec3: the maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum vertex distance from the origin.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied. Bounds are computed
// once the geometry is set.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	m.boundingMin, m.boundingMax = Bounds(m.vertices)
	for _, v := range m.vertices {
		m.boundingRadius = max(m.boundingRadius, v.Len())
	}
	return m
}

// NewModelFromImport merges every mesh of an imported model into one Model, offsetting each
// mesh's indices by the vertices that precede it.
//
// Parameters:
//   - imported: the imported model
//
// Returns:
//   - Model: the merged model
func NewModelFromImport(imported ImportedModel) Model {
	var vertices []mgl32.Vec3
	var indices []uint32
	for _, mesh := range imported.Meshes {
		base := uint32(len(vertices))
		vertices = append(vertices, mesh.Positions...)
		for _, idx := range mesh.Indices {
			indices = append(indices, base+idx)
		}
	}
	return NewModel(WithName(imported.Name), WithGeometry(vertices, indices))
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []mgl32.Vec3 {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) TriangleCount() int {
	return len(m.indices) / 3
}

func (m *model) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return m.boundingMin, m.boundingMax
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}
