package model

import "github.com/go-gl/mathgl/mgl32"

// NewCube returns an axis-aligned cube centred on the origin with 24 vertices (four per face)
// and 12 counter-clockwise triangles.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Model: the cube
func NewCube(size float32) Model {
	h := size / 2
	// each face: outward normal axis, and two in-plane axes ordered so u x v = normal
	faces := [6][3]mgl32.Vec3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}

	vertices := make([]mgl32.Vec3, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		n, u, v := f[0].Mul(h), f[1].Mul(h), f[2].Mul(h)
		base := uint32(len(vertices))
		vertices = append(vertices,
			n.Sub(u).Sub(v),
			n.Add(u).Sub(v),
			n.Add(u).Add(v),
			n.Sub(u).Add(v),
		)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewModel(WithName("cube"), WithGeometry(vertices, indices))
}

// NewPlane returns a square in the XZ plane centred on the origin, facing +Y.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Model: the plane
func NewPlane(size float32) Model {
	h := size / 2
	vertices := []mgl32.Vec3{
		{-h, 0, h},
		{h, 0, h},
		{h, 0, -h},
		{-h, 0, -h},
	}
	indices := []uint32{0, 1, 2, 0, 2, 3}
	return NewModel(WithName("plane"), WithGeometry(vertices, indices))
}
