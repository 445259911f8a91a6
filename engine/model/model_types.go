package model

import "github.com/go-gl/mathgl/mgl32"

// ImportedModel represents a 3D model loaded from an external format.
// This is the universal format that importers (glTF, OBJ) produce.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains all mesh data (may have multiple meshes/submeshes).
	Meshes []ImportedMesh
}

// ImportedMesh represents a single triangle mesh within an imported model, already baked into
// model space by its node transform.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Positions are the vertex positions.
	Positions []mgl32.Vec3

	// Indices are the triangle indices into Positions, three per triangle.
	Indices []uint32

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin mgl32.Vec3

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax mgl32.Vec3
}

// Bounds computes the axis-aligned bounding box of a set of positions. Both corners are zero for
// an empty set.
//
// Parameters:
//   - positions: the positions to enclose
//
// Returns:
//   - mgl32.Vec3: the minimum corner
//   - mgl32.Vec3: the maximum corner
func Bounds(positions []mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if len(positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}
