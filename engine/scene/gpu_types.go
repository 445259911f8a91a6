package scene

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// SphereStride is the size in bytes of one GPU sphere record.
	SphereStride = 64

	// MeshObjectStride is the size in bytes of one GPU mesh object record.
	MeshObjectStride = 80

	// VertexStride is the size in bytes of one packed vertex position.
	VertexStride = 12

	// IndexStride is the size in bytes of one triangle index.
	IndexStride = 4
)

// GPUSphereSource is the canonical WGSL definition of the Sphere struct.
// Matches Sphere.Marshal exactly (64 bytes, std430 aligned).
//
//go:embed assets/sphere.wgsl
var GPUSphereSource string

// Sphere is a procedurally placed spherical primitive with its material parameters.
// Layout on the GPU:
//
//	offset  0: position   vec3<f32>
//	offset 12: radius     f32
//	offset 16: albedo     vec3<f32>
//	offset 28: smoothness f32
//	offset 32: specular   vec3<f32> (+4 pad)
//	offset 48: emission   vec3<f32> (+4 pad)
type Sphere struct {
	Position   mgl32.Vec3
	Radius     float32
	Albedo     mgl32.Vec3
	Specular   mgl32.Vec3
	Emission   mgl32.Vec3
	Smoothness float32
}

// Marshal serializes the Sphere into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload.
func (s *Sphere) Marshal() []byte {
	buf := make([]byte, SphereStride)
	s.put(buf)
	return buf
}

func (s *Sphere) put(buf []byte) {
	off := common.PutFloat32s(buf, 0, s.Position[0], s.Position[1], s.Position[2], s.Radius)
	off = common.PutFloat32s(buf, off, s.Albedo[0], s.Albedo[1], s.Albedo[2], s.Smoothness)
	off = common.PutFloat32s(buf, off, s.Specular[0], s.Specular[1], s.Specular[2], 0)
	common.PutFloat32s(buf, off, s.Emission[0], s.Emission[1], s.Emission[2], 0)
}

// Emissive reports whether the sphere emits light.
func (s *Sphere) Emissive() bool {
	return s.Emission != mgl32.Vec3{}
}

// Metal reports whether the sphere is a non-emissive sphere with zero albedo.
func (s *Sphere) Metal() bool {
	return !s.Emissive() && s.Albedo == mgl32.Vec3{}
}

// MarshalSpheres packs a sphere set into one contiguous buffer.
//
// Parameters:
//   - spheres: the spheres to pack
//
// Returns:
//   - []byte: len(spheres)*SphereStride bytes, nil for an empty set
func MarshalSpheres(spheres []Sphere) []byte {
	if len(spheres) == 0 {
		return nil
	}
	buf := make([]byte, len(spheres)*SphereStride)
	for i := range spheres {
		spheres[i].put(buf[i*SphereStride:])
	}
	return buf
}

// GPUMeshObjectSource is the canonical WGSL definition of the MeshObject struct.
// Matches MeshObject.Marshal exactly (80 bytes, std430 aligned).
//
//go:embed assets/mesh_object.wgsl
var GPUMeshObjectSource string

// MeshObject describes one registered object inside the flattened geometry arrays.
// IndexOffset is the prefix-sum position of the object's first index, not its registry position.
type MeshObject struct {
	WorldTransform mgl32.Mat4 // offset  0: column-major local-to-world matrix (64 bytes)
	IndexOffset    uint32     // offset 64
	IndexCount     uint32     // offset 68 (+8 pad)
}

// Marshal serializes the MeshObject into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 80-byte buffer ready for GPU upload.
func (m *MeshObject) Marshal() []byte {
	buf := make([]byte, MeshObjectStride)
	m.put(buf)
	return buf
}

func (m *MeshObject) put(buf []byte) {
	off := common.PutFloat32s(buf, 0, m.WorldTransform[:]...)
	common.PutUint32s(buf, off, m.IndexOffset, m.IndexCount, 0, 0)
}
