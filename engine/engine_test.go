package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/tracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
)

// events records teardown calls across the fakes.
type events struct {
	mu  sync.Mutex
	log []string
}

func (ev *events) add(s string) {
	ev.mu.Lock()
	ev.log = append(ev.log, s)
	ev.mu.Unlock()
}

func (ev *events) list() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return append([]string(nil), ev.log...)
}

type fakeWindow struct {
	mu     sync.Mutex
	ev     *events
	closed bool
	title  string

	onUpdate  func()
	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(key window.Key)
	onKeyUp   func(key window.Key)
	onButton  func(button window.MouseButton, pressed bool, x, y float32)
	onMove    func(x, y float32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func())                  { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))     { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(key window.Key))   { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(key window.Key))     { w.onKeyUp = cb }
func (w *fakeWindow) SetMouseButtonCallback(cb func(button window.MouseButton, pressed bool, x, y float32)) {
	w.onButton = cb
}
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y float32)) { w.onMove = cb }
func (w *fakeWindow) SetTitle(title string)                      { w.title = title }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Width() int                                 { return 64 }
func (w *fakeWindow) Height() int                                { return 32 }

func (w *fakeWindow) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.closed
}

func (w *fakeWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("fake window: already closed")
	}
	w.closed = true
	w.ev.add("window.Close")
	return nil
}

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		time.Sleep(time.Millisecond)
	}
}

type fakeTracer struct {
	mu      sync.Mutex
	ev      *events
	samples uint32
	limit   uint32
	resets  []string
	panics  bool
	frames  int
	calls   int
}

var _ tracer.Tracer = &fakeTracer{}

func (t *fakeTracer) Frame(width, height uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.panics {
		panic("device lost")
	}
	t.calls++
	if t.limit > 0 && t.samples >= t.limit {
		return nil
	}
	t.frames++
	t.samples++
	return nil
}

func (t *fakeTracer) SetSampleLimit(n uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limit = n
}

func (t *fakeTracer) SampleIndex() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.samples
}

func (t *fakeTracer) Reset(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resets = append(t.resets, reason)
	t.samples = 0
}

func (t *fakeTracer) SetView(v tracer.View)   {}
func (t *fakeTracer) SetLight(l tracer.Light) {}

func (t *fakeTracer) Snapshot() (*tracer.Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.samples == 0 {
		return nil, tracer.ErrNoImage
	}
	return &tracer.Image{Width: 2, Height: 2, Samples: t.samples, Pix: make([]float32, 16)}, nil
}

func (t *fakeTracer) Stats() tracer.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tracer.Stats{Frames: uint64(t.frames), Samples: t.samples}
}

func (t *fakeTracer) Release() { t.ev.add("tracer.Release") }

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (*engine, *fakeWindow, *fakeTracer, camera.Camera) {
	t.Helper()
	ev := &events{}
	w := &fakeWindow{ev: ev}
	tr := &fakeTracer{ev: ev}
	cam := camera.NewCamera(camera.WithController(camera.NewCameraController()))

	opts := append([]EngineBuilderOption{WithWindow(w), WithTracer(tr), WithCamera(cam)}, options...)
	return NewEngine(opts...).(*engine), w, tr, cam
}

func TestNewEngineRequiresTracer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewEngine without a tracer did not panic")
		}
	}()
	NewEngine(WithWindow(&fakeWindow{ev: &events{}}), WithCamera(camera.NewCamera()))
}

func TestNewEngineSetsAspectFromWindow(t *testing.T) {
	_, _, _, cam := newTestEngine(t)
	if got := cam.Aspect(); got != 2 {
		t.Errorf("Aspect() = %v, want 2", got)
	}
}

func TestResizeUpdatesAspect(t *testing.T) {
	_, w, _, cam := newTestEngine(t)
	w.onResize(300, 100)
	if got := cam.Aspect(); got != 3 {
		t.Errorf("Aspect() = %v, want 3", got)
	}
}

func TestResetKey(t *testing.T) {
	_, w, tr, _ := newTestEngine(t)
	w.onKeyDown(window.KeyR)
	if diff := cmp.Diff([]string{"requested"}, tr.resets); diff != "" {
		t.Errorf("resets mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotKeyRequestsSnapshot(t *testing.T) {
	e, w, _, _ := newTestEngine(t)
	w.onKeyDown(window.KeyP)
	if !e.snapshotRequested.Load() {
		t.Error("P did not request a snapshot")
	}
}

func TestHeldKeyMovesCamera(t *testing.T) {
	e, w, _, cam := newTestEngine(t)
	ctrl := cam.Controller()
	before := ctrl.Target()

	w.onKeyDown(window.KeyW)
	e.input.apply(ctrl, 1.0/60)
	moved := ctrl.Target()
	if moved.ApproxEqual(before) {
		t.Fatal("holding W did not move the camera")
	}

	w.onKeyUp(window.KeyW)
	e.input.apply(ctrl, 1.0/60)
	if !ctrl.Target().ApproxEqual(moved) {
		t.Error("camera kept moving after W was released")
	}
}

func TestLeftDragOrbits(t *testing.T) {
	_, w, _, cam := newTestEngine(t)
	ctrl := cam.Controller()
	before := ctrl.Azimuth()

	w.onButton(window.MouseButtonLeft, true, 10, 10)
	w.onMove(30, 10)
	if ctrl.Azimuth() == before {
		t.Error("left drag did not orbit")
	}

	w.onButton(window.MouseButtonLeft, false, 30, 10)
	after := ctrl.Azimuth()
	w.onMove(60, 10)
	if ctrl.Azimuth() != after {
		t.Error("cursor motion orbited without a held button")
	}
}

func TestScrollZooms(t *testing.T) {
	_, w, _, cam := newTestEngine(t)
	ctrl := cam.Controller()
	before := ctrl.Radius()
	w.onScroll(1)
	if ctrl.Radius() >= before {
		t.Errorf("Radius() = %v after scrolling in, want below %v", ctrl.Radius(), before)
	}
}

func TestRenderFrameRecoversPanic(t *testing.T) {
	e, _, tr, _ := newTestEngine(t)
	tr.panics = true

	err := e.renderFrame()
	if err == nil {
		t.Fatal("renderFrame() returned nil for a panicking frame")
	}
	if got, want := err.Error(), "engine: render frame panicked: device lost"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestRenderFrameStopsAtSampleTarget(t *testing.T) {
	e, _, tr, _ := newTestEngine(t, WithMaxSamples(2), WithExitOnConverge(true))

	for range 2 {
		if err := e.renderFrame(); err != nil {
			t.Fatalf("renderFrame() error = %v", err)
		}
	}
	if err := e.renderFrame(); err != nil {
		t.Fatalf("renderFrame() error = %v", err)
	}
	if tr.frames != 2 {
		t.Errorf("traced %d frames, want 2", tr.frames)
	}
	select {
	case <-e.quitChannel:
	default:
		t.Error("reaching the sample target did not signal quit")
	}
}

func TestConvergedEngineKeepsCallingFrame(t *testing.T) {
	e, _, tr, _ := newTestEngine(t, WithMaxSamples(2))
	if tr.limit != 2 {
		t.Fatalf("tracer sample limit = %d, want 2", tr.limit)
	}

	for range 4 {
		if err := e.renderFrame(); err != nil {
			t.Fatalf("renderFrame() error = %v", err)
		}
	}
	if tr.calls != 4 {
		t.Errorf("Frame() called %d times, want 4", tr.calls)
	}
	if tr.SampleIndex() != 2 {
		t.Fatalf("SampleIndex() = %d, want 2", tr.SampleIndex())
	}

	tr.Reset("camera moved")
	if err := e.renderFrame(); err != nil {
		t.Fatalf("renderFrame() error = %v", err)
	}
	if tr.SampleIndex() != 1 {
		t.Errorf("SampleIndex() = %d after a reset at the target, want 1", tr.SampleIndex())
	}
	select {
	case <-e.quitChannel:
		t.Error("converging without exit-on-converge signalled quit")
	default:
	}
}

func TestRunShutsDownInOrder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "final.png")
	e, w, tr, _ := newTestEngine(t, WithMaxSamples(5), WithExitOnConverge(true), WithSnapshotPath(out))

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after converging")
	}

	if got := tr.SampleIndex(); got != 5 {
		t.Errorf("SampleIndex() = %d, want 5", got)
	}
	if diff := cmp.Diff([]string{"tracer.Release", "window.Close"}, tr.ev.list()); diff != "" {
		t.Errorf("teardown mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(w.title, "oxy-rt | ") {
		t.Errorf("title = %q, want the sample count suffix", w.title)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("final snapshot missing: %v", err)
	}
}

func TestRunQuitsAfterRepeatedPanics(t *testing.T) {
	e, w, tr, _ := newTestEngine(t)
	tr.panics = true

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() kept going with a panicking tracer")
	}
	if w.IsRunning() {
		t.Error("window still open after shutdown")
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.Quit()
	e.Quit()
	select {
	case <-e.quitChannel:
	default:
		t.Error("Quit() did not close the quit channel")
	}
}

func TestSetTickRate(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.SetTickRate(120)
	if want := time.Duration(float64(time.Second) / 120); e.engineTickRate != want {
		t.Errorf("engineTickRate = %v, want %v", e.engineTickRate, want)
	}
	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Errorf("renderFrameLimit = %v, want 0", e.renderFrameLimit)
	}
}
