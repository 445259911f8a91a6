package tracer

import (
	_ "embed"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// TracerUniformsSize is the byte size of the per-frame uniform block.
	TracerUniformsSize = 176

	// AccumulateParamsSize is the byte size of the blend parameter block.
	AccumulateParamsSize = 16
)

// GPUTracerUniformsSource is the canonical WGSL definition of the TracerUniforms struct.
// Matches TracerUniforms.Marshal exactly (176 bytes, uniform aligned).
//
//go:embed assets/tracer_uniforms.wgsl
var GPUTracerUniformsSource string

// TracerUniforms holds the per-frame inputs of the tracing kernel.
type TracerUniforms struct {
	CameraToWorld     mgl32.Mat4 // offset   0
	InverseProjection mgl32.Mat4 // offset  64
	DirectionalLight  mgl32.Vec4 // offset 128: xyz direction, w intensity
	PixelOffset       mgl32.Vec2 // offset 144: sub-pixel jitter in [0, 1)
	Seed              float32    // offset 152
	SphereCount       uint32     // offset 156: 0 when the sphere buffer is unbound
	MeshObjectCount   uint32     // offset 160: 0 when the mesh object buffer is unbound
	Width             uint32     // offset 164
	Height            uint32     // offset 168 (+4 pad)
}

// Marshal serializes the TracerUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 176-byte buffer ready for GPU upload.
func (u *TracerUniforms) Marshal() []byte {
	buf := make([]byte, TracerUniformsSize)
	off := common.PutFloat32s(buf, 0, u.CameraToWorld[:]...)
	off = common.PutFloat32s(buf, off, u.InverseProjection[:]...)
	off = common.PutFloat32s(buf, off, u.DirectionalLight[:]...)
	off = common.PutFloat32s(buf, off, u.PixelOffset[0], u.PixelOffset[1], u.Seed)
	common.PutUint32s(buf, off, u.SphereCount, u.MeshObjectCount, u.Width, u.Height)
	return buf
}

// GPUAccumulateParamsSource is the canonical WGSL definition of the AccumulateParams struct.
// Matches AccumulateParams.Marshal exactly (16 bytes).
//
//go:embed assets/accumulate_params.wgsl
var GPUAccumulateParamsSource string

// AccumulateParams drives the blend of one raw sample into the converged image:
// converged = converged*PriorWeight + raw*SampleWeight.
type AccumulateParams struct {
	PriorWeight  float32
	SampleWeight float32
	Width        uint32
	Height       uint32
}

// Marshal serializes the AccumulateParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (p *AccumulateParams) Marshal() []byte {
	buf := make([]byte, AccumulateParamsSize)
	off := common.PutFloat32s(buf, 0, p.PriorWeight, p.SampleWeight)
	common.PutUint32s(buf, off, p.Width, p.Height)
	return buf
}
