package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
)

// movementScale converts a tick's delta time into controller steps, so one step per tick at 60Hz.
const movementScale = 60

// inputState tracks held keys and mouse drags between window events and engine ticks.
type inputState struct {
	mu *sync.Mutex

	held map[window.Key]bool

	dragging   map[window.MouseButton]bool
	lastX      float32
	lastY      float32
	haveCursor bool
}

func newInputState() *inputState {
	return &inputState{
		mu:       &sync.Mutex{},
		held:     make(map[window.Key]bool),
		dragging: make(map[window.MouseButton]bool),
	}
}

func (in *inputState) press(key window.Key) {
	in.mu.Lock()
	in.held[key] = true
	in.mu.Unlock()
}

func (in *inputState) release(key window.Key) {
	in.mu.Lock()
	delete(in.held, key)
	in.mu.Unlock()
}

func (in *inputState) isHeld(key window.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.held[key]
}

func (in *inputState) button(button window.MouseButton, pressed bool, x, y float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.dragging[button] = pressed
	in.lastX, in.lastY = x, y
	in.haveCursor = true
}

// move turns cursor motion into an orbit while the left button is held and a pan while the right
// button is held.
func (in *inputState) move(ctrl camera.CameraController, x, y float32) {
	in.mu.Lock()
	dx, dy := x-in.lastX, y-in.lastY
	valid := in.haveCursor
	orbit := in.dragging[window.MouseButtonLeft]
	pan := in.dragging[window.MouseButtonRight]
	in.lastX, in.lastY = x, y
	in.haveCursor = true
	in.mu.Unlock()

	if ctrl == nil || !valid {
		return
	}
	switch {
	case orbit:
		ctrl.Drag(dx, dy)
	case pan:
		ctrl.PanRight(-dx * 0.1)
		ctrl.PanUp(dy * 0.1)
	}
}

// apply moves the camera for every held key, scaled by the tick's delta time.
func (in *inputState) apply(ctrl camera.CameraController, dt float32) {
	if ctrl == nil {
		return
	}
	in.mu.Lock()
	held := make([]window.Key, 0, len(in.held))
	for k := range in.held {
		held = append(held, k)
	}
	in.mu.Unlock()

	step := dt * movementScale
	for _, k := range held {
		switch k {
		case window.KeyLeft:
			ctrl.OrbitLeft()
		case window.KeyRight:
			ctrl.OrbitRight()
		case window.KeyUp:
			ctrl.OrbitUp()
		case window.KeyDown:
			ctrl.OrbitDown()
		case window.KeyW:
			ctrl.PanForward(step)
		case window.KeyS:
			ctrl.PanForward(-step)
		case window.KeyD:
			ctrl.PanRight(step)
		case window.KeyA:
			ctrl.PanRight(-step)
		case window.KeyE:
			ctrl.PanUp(step)
		case window.KeyQ:
			ctrl.PanUp(-step)
		}
	}
}
