package scene

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrEmptyMesh marks a mesh source with no vertices or no indices.
	ErrEmptyMesh = errors.New("scene: mesh has no geometry")

	// ErrPartialTriangle marks an index list whose length is not a multiple of three.
	ErrPartialTriangle = errors.New("scene: index count is not a multiple of 3")

	// ErrIndexRange marks an index that does not address one of the mesh's own vertices.
	ErrIndexRange = errors.New("scene: index out of range")
)

// MeshSource is a renderable object whose geometry is flattened into the shared arrays.
// The scene only reads from a source and never mutates the returned slices.
//
// Sources are identity keys for the scene registry and the tracer's change tracking, so the
// dynamic type must be comparable. Implement it on a pointer type; Register panics otherwise.
type MeshSource interface {
	// LocalVertices returns the object's vertex positions in local space.
	//
	// Returns:
	//   - []mgl32.Vec3: the local-space positions
	LocalVertices() []mgl32.Vec3

	// LocalIndices returns the object's triangle list, indexing into LocalVertices.
	//
	// Returns:
	//   - []uint32: three indices per triangle
	LocalIndices() []uint32

	// WorldTransform returns the object's current local-to-world matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the world transform
	WorldTransform() mgl32.Mat4
}

// Geometry is the flattened result of one rebuild pass. Indices are already offset by the
// number of vertices preceding their object, so every index addresses Vertices directly.
type Geometry struct {
	Vertices    []mgl32.Vec3
	Indices     []uint32
	MeshObjects []MeshObject

	// Skipped counts registered sources left out because their geometry was malformed.
	Skipped int
}

// Empty reports whether the pass produced no triangles.
func (g Geometry) Empty() bool {
	return len(g.MeshObjects) == 0
}

// VertexBytes packs the vertex positions as consecutive f32 triplets.
//
// Returns:
//   - []byte: len(Vertices)*VertexStride bytes, nil when empty
func (g Geometry) VertexBytes() []byte {
	if len(g.Vertices) == 0 {
		return nil
	}
	buf := make([]byte, len(g.Vertices)*VertexStride)
	off := 0
	for _, v := range g.Vertices {
		off = common.PutFloat32s(buf, off, v[0], v[1], v[2])
	}
	return buf
}

// IndexBytes packs the flattened index list.
//
// Returns:
//   - []byte: len(Indices)*IndexStride bytes, nil when empty
func (g Geometry) IndexBytes() []byte {
	if len(g.Indices) == 0 {
		return nil
	}
	buf := make([]byte, len(g.Indices)*IndexStride)
	common.PutUint32s(buf, 0, g.Indices...)
	return buf
}

// MeshObjectBytes packs the per-object records.
//
// Returns:
//   - []byte: len(MeshObjects)*MeshObjectStride bytes, nil when empty
func (g Geometry) MeshObjectBytes() []byte {
	if len(g.MeshObjects) == 0 {
		return nil
	}
	buf := make([]byte, len(g.MeshObjects)*MeshObjectStride)
	for i := range g.MeshObjects {
		g.MeshObjects[i].put(buf[i*MeshObjectStride:])
	}
	return buf
}

// buildGeometry flattens sources in order. A malformed source is logged and skipped so it never
// shifts or corrupts the ranges of the sources around it.
func buildGeometry(sources []MeshSource) Geometry {
	var g Geometry
	for i, src := range sources {
		vertices := src.LocalVertices()
		indices := src.LocalIndices()
		if err := validateMesh(vertices, indices); err != nil {
			logger.Warningf("skipping mesh object %d: %v", i, err)
			g.Skipped++
			continue
		}

		firstVertex := uint32(len(g.Vertices))
		indexOffset := uint32(len(g.Indices))

		g.Vertices = append(g.Vertices, vertices...)
		for _, idx := range indices {
			g.Indices = append(g.Indices, idx+firstVertex)
		}
		g.MeshObjects = append(g.MeshObjects, MeshObject{
			WorldTransform: src.WorldTransform(),
			IndexOffset:    indexOffset,
			IndexCount:     uint32(len(indices)),
		})
	}
	return g
}

func validateMesh(vertices []mgl32.Vec3, indices []uint32) error {
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("%w (%d vertices, %d indices)", ErrEmptyMesh, len(vertices), len(indices))
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("%w: %d", ErrPartialTriangle, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("%w: index %d is %d with %d vertices", ErrIndexRange, i, idx, len(vertices))
		}
	}
	return nil
}
