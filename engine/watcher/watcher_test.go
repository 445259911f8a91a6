package watcher

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestChangedResetOnRead(t *testing.T) {
	w := NewWatcher()
	m := mgl32.Translate3D(1, 2, 3)

	if !w.Changed("camera", m) {
		t.Error("expected the first check to report a change")
	}
	if w.Changed("camera", m) {
		t.Error("expected an unchanged snapshot to report no change")
	}
	if w.Changed("camera", m) {
		t.Error("expected repeated checks to stay unchanged")
	}

	moved := mgl32.Translate3D(1, 2, 4)
	if !w.Changed("camera", moved) {
		t.Error("expected a moved transform to report a change")
	}
	if w.Changed("camera", moved) {
		t.Error("expected the change flag to clear after it was read")
	}
}

func TestChangedKeysAreIndependent(t *testing.T) {
	w := NewWatcher()
	light := mgl32.Vec4{0, -1, 0, 1}

	w.Changed("camera", mgl32.Ident4())
	w.Changed("light", light)

	if !w.Changed("light", mgl32.Vec4{0, -1, 0, 2}) {
		t.Error("expected an intensity change to register")
	}
	if w.Changed("camera", mgl32.Ident4()) {
		t.Error("expected the camera to be unaffected by the light")
	}
	if w.Len() != 2 {
		t.Errorf("expected 2 cached entities; got %d", w.Len())
	}
}

func TestForget(t *testing.T) {
	w := NewWatcher()
	type object struct{ id int }
	key := &object{id: 1}

	w.Changed(key, mgl32.Ident4())
	w.Forget(key)
	if w.Len() != 0 {
		t.Errorf("expected an empty cache; got %d", w.Len())
	}
	if !w.Changed(key, mgl32.Ident4()) {
		t.Error("expected a forgotten key to report a change")
	}
}
