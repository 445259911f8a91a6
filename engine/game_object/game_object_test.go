package game_object

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/model"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

func TestWorldTransformAppliesScaleRotationTranslation(t *testing.T) {
	obj := NewGameObject(
		WithPosition(mgl32.Vec3{10, 0, 0}),
		WithRotation(mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0})),
		WithUniformScale(2),
	)

	// scale to (2,0,0), rotate about +y to (0,0,-2), translate to (10,0,-2)
	got := obj.WorldTransform().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	want := mgl32.Vec3{10, 0, -2}
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("transformed point = %v, want %v", got, want)
	}
}

func TestMeshSourceDelegatesToModel(t *testing.T) {
	var src scene.MeshSource = NewGameObject()
	if src.LocalVertices() != nil || src.LocalIndices() != nil {
		t.Error("object without a model should have no geometry")
	}

	cube := model.NewCube(1)
	obj := NewGameObject(WithModel(cube))
	if len(obj.LocalVertices()) != len(cube.Vertices()) || len(obj.LocalIndices()) != len(cube.Indices()) {
		t.Error("object geometry does not match its model")
	}
}

func TestTranslateAndRotateChangeTransform(t *testing.T) {
	obj := NewGameObject()
	if obj.WorldTransform() != mgl32.Ident4() {
		t.Fatalf("default transform = %v, want identity", obj.WorldTransform())
	}

	obj.Translate(mgl32.Vec3{0, 1, 0})
	obj.Translate(mgl32.Vec3{0, 1, 0})
	if obj.Position() != (mgl32.Vec3{0, 2, 0}) {
		t.Errorf("Position() = %v", obj.Position())
	}

	before := obj.WorldTransform()
	obj.Rotate(0.5, mgl32.Vec3{0, 0, 3})
	if obj.WorldTransform() == before {
		t.Error("Rotate did not change the transform")
	}
	if l := obj.Rotation().Len(); math.Abs(float64(l-1)) > 1e-5 {
		t.Errorf("rotation length = %v, want 1", l)
	}
}

func TestIDsAreUnique(t *testing.T) {
	a, b := NewGameObject(), NewGameObject()
	if a.ID() == b.ID() {
		t.Errorf("both objects got ID %d", a.ID())
	}
	if c := NewGameObject(WithID(7)); c.ID() != 7 {
		t.Errorf("ID() = %d, want 7", c.ID())
	}
}
