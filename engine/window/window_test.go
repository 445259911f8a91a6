package window

import "testing"

func TestNewEngineWindowClampsSize(t *testing.T) {
	w := newEngineWindow(WithSize(5000, 50), WithMinSize(400, 300), WithMaxSize(1920, 1080))
	if w.Width() != 1920 || w.Height() != 300 {
		t.Errorf("size = %dx%d, want 1920x300", w.Width(), w.Height())
	}
}

func TestSetSizeNotifiesResize(t *testing.T) {
	w := newEngineWindow()
	var gotW, gotH int
	w.SetResizeCallback(func(width, height int) { gotW, gotH = width, height })

	w.setSize(800, 600)
	if gotW != 800 || gotH != 600 {
		t.Errorf("callback got %dx%d, want 800x600", gotW, gotH)
	}
	if w.Width() != 800 || w.Height() != 600 {
		t.Errorf("size = %dx%d, want 800x600", w.Width(), w.Height())
	}
}

func TestUninitialisedWindow(t *testing.T) {
	w := newEngineWindow()
	if w.IsRunning() {
		t.Error("window without a platform handle reports running")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("window without a platform handle has a surface descriptor")
	}
	if err := w.Close(); err == nil {
		t.Error("Close() on an uninitialised window should fail")
	}
	w.SetTitle("still fine")
}
