// Package light holds the scene's single directional light. Its packed vector is uploaded as-is
// into the tracer uniforms, and the tracer watches it to restart accumulation when it changes.
package light

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	direction mgl32.Vec3
	intensity float32
	enabled   bool
}

// Light is a directional light: a direction the light travels in and a scalar intensity. It
// has no position and no attenuation.
type Light interface {
	// Direction returns the normalized direction the light travels in.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized direction
	Direction() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light contributes to shading.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// Vector packs the light as (direction.xyz, intensity). A disabled light packs a zero
	// intensity, which the kernel treats as no direct light.
	//
	// Returns:
	//   - mgl32.Vec4: the packed light
	Vector() mgl32.Vec4

	// SetDirection sets the direction of the light. The direction is normalized before storing;
	// a zero vector is ignored.
	//
	// Parameters:
	//   - direction: the new direction
	SetDirection(direction mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier. Negative values are clamped to zero.
	//
	// Parameters:
	//   - intensity: the new intensity
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable the light
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a directional light pointing mostly down with a slight tilt, at unit
// intensity.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the newly created light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		direction: mgl32.Vec3{-0.3, -1, 0.45}.Normalize(),
		intensity: 1.0,
		enabled:   true,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.direction
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) Vector() mgl32.Vec4 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return l.direction.Vec4(0)
	}
	return l.direction.Vec4(l.intensity)
}

func (l *lightImpl) SetDirection(direction mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setDirection(direction)
}

func (l *lightImpl) setDirection(direction mgl32.Vec3) {
	if direction.Len() == 0 {
		return
	}
	l.direction = direction.Normalize()
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = max(intensity, 0)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}
