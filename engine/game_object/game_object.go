// Package game_object places models in the world. A GameObject is the scene.MeshSource the
// tracer flattens: its model supplies local geometry and its transform supplies the
// local-to-world matrix that the kernel applies per mesh object.
package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-rt/engine/model"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// objectCount hands out IDs to objects created without WithID.
var objectCount atomic.Uint64

type gameObject struct {
	mu *sync.Mutex

	id  uint64
	mdl model.Model

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

// GameObject defines the interface for a transformed model instance in the scene.
// All methods are safe to call concurrently; the tracer reads WorldTransform once per frame.
type GameObject interface {
	scene.MeshSource

	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Model returns the Model associated with this object, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Position returns the world-space translation.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Rotation returns the orientation.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	Rotation() mgl32.Quat

	// Scale returns the per-axis scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// SetModel assigns a Model to this object. The scene must be marked dirty for the change to
	// reach the device.
	//
	// Parameters:
	//   - m: the model
	SetModel(m model.Model)

	// SetPosition sets the world-space translation.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position mgl32.Vec3)

	// SetRotation sets the orientation.
	//
	// Parameters:
	//   - rotation: the new rotation, normalized before storing
	SetRotation(rotation mgl32.Quat)

	// SetScale sets the per-axis scale.
	//
	// Parameters:
	//   - scale: the new scale
	SetScale(scale mgl32.Vec3)

	// Translate moves the object by an offset.
	//
	// Parameters:
	//   - offset: the world-space offset
	Translate(offset mgl32.Vec3)

	// Rotate applies an additional rotation about a world axis.
	//
	// Parameters:
	//   - angle: the angle in radians
	//   - axis: the rotation axis
	Rotate(angle float32, axis mgl32.Vec3)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject at the origin with identity rotation and unit scale.
//
// Parameters:
//   - options: functional options to configure the GameObject
//
// Returns:
//   - GameObject: the newly created GameObject
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:       &sync.Mutex{},
		id:       objectCount.Add(1),
		rotation: mgl32.QuatIdent(),
		scale:    mgl32.Vec3{1, 1, 1},
	}
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Model() model.Model {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mdl
}

func (g *gameObject) LocalVertices() []mgl32.Vec3 {
	if m := g.Model(); m != nil {
		return m.Vertices()
	}
	return nil
}

func (g *gameObject) LocalIndices() []uint32 {
	if m := g.Model(); m != nil {
		return m.Indices()
	}
	return nil
}

func (g *gameObject) WorldTransform() mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := mgl32.Translate3D(g.position[0], g.position[1], g.position[2])
	s := mgl32.Scale3D(g.scale[0], g.scale[1], g.scale[2])
	return t.Mul4(g.rotation.Mat4()).Mul4(s)
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) Rotation() mgl32.Quat {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) Scale() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetModel(m model.Model) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mdl = m
}

func (g *gameObject) SetPosition(position mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = position
}

func (g *gameObject) SetRotation(rotation mgl32.Quat) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = rotation.Normalize()
}

func (g *gameObject) SetScale(scale mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = scale
}

func (g *gameObject) Translate(offset mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = g.position.Add(offset)
}

func (g *gameObject) Rotate(angle float32, axis mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = mgl32.QuatRotate(angle, axis.Normalize()).Mul(g.rotation).Normalize()
}
