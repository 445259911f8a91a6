package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestVectorPacksDirectionAndIntensity(t *testing.T) {
	l := NewLight(WithDirection(mgl32.Vec3{0, -2, 0}), WithIntensity(1.5))
	want := mgl32.Vec4{0, -1, 0, 1.5}
	if got := l.Vector(); got != want {
		t.Errorf("Vector() = %v, want %v", got, want)
	}
}

func TestDisabledLightHasZeroIntensity(t *testing.T) {
	l := NewLight(WithIntensity(3))
	l.SetEnabled(false)
	if w := l.Vector().W(); w != 0 {
		t.Errorf("disabled light intensity = %v, want 0", w)
	}
	if l.Intensity() != 3 {
		t.Errorf("Intensity() = %v, want 3", l.Intensity())
	}
}

func TestZeroDirectionIgnored(t *testing.T) {
	l := NewLight()
	before := l.Direction()
	l.SetDirection(mgl32.Vec3{})
	if l.Direction() != before {
		t.Errorf("zero direction replaced %v with %v", before, l.Direction())
	}
	if d := l.Direction().Len(); d < 0.9999 || d > 1.0001 {
		t.Errorf("default direction length = %v, want 1", d)
	}
}

func TestNegativeIntensityClamped(t *testing.T) {
	l := NewLight()
	l.SetIntensity(-2)
	if l.Intensity() != 0 {
		t.Errorf("Intensity() = %v, want 0", l.Intensity())
	}
}
