// Package tracer drives progressive ray tracing: it keeps the scene's device buffers current,
// uploads per-frame uniforms, dispatches the tracing kernel and blends each noisy sample into a
// converged image, resetting the running mean whenever anything that affects radiance changes.
package tracer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/log"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/watcher"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("tracer")

// ErrReleased is returned by Frame and Snapshot after Release.
var ErrReleased = errors.New("tracer: released")

// Buffer slot names owned by the tracer's buffer manager.
const (
	SlotSpheres     = "spheres"
	SlotMeshObjects = "mesh_objects"
	SlotVertices    = "vertices"
	SlotIndices     = "indices"
)

// TileSize is the workgroup edge length of the tracing kernel in both dimensions.
const TileSize = 8

// Resources lists the structured buffers bound to the tracing kernel. A nil handle is an
// unbound slot and must be skip-bound.
type Resources struct {
	Spheres     buffer.Handle
	MeshObjects buffer.Handle
	Vertices    buffer.Handle
	Indices     buffer.Handle
}

// Device is the GPU surface the tracer drives. The wgpu renderer implements it; tests use a CPU
// fake.
type Device interface {
	buffer.Device

	// EnsureTargets makes sure the raw and converged targets exist at the given resolution,
	// reallocating both when the size changed.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - bool: true if the previous targets were replaced, even when err is also set
	//   - error: an error if allocation or binding of the new targets failed
	EnsureTargets(width, height uint32) (bool, error)

	// WriteUniforms uploads the per-frame uniform block.
	//
	// Parameters:
	//   - data: a marshalled TracerUniforms
	//
	// Returns:
	//   - error: an error if the upload failed
	WriteUniforms(data []byte) error

	// Bind rebuilds the kernel's bindings from the given buffers and the current targets.
	//
	// Parameters:
	//   - res: the structured buffers, nil handles are unbound
	//
	// Returns:
	//   - error: an error if the binding could not be created
	Bind(res Resources) error

	// Dispatch runs the tracing kernel over groupsX by groupsY workgroups, writing the raw target.
	//
	// Parameters:
	//   - groupsX: workgroups along x
	//   - groupsY: workgroups along y
	//
	// Returns:
	//   - error: an error if the dispatch could not be submitted
	Dispatch(groupsX, groupsY uint32) error

	// Accumulate blends the raw target into the converged target.
	//
	// Parameters:
	//   - params: a marshalled AccumulateParams
	//
	// Returns:
	//   - error: an error if the blend could not be submitted
	Accumulate(params []byte) error

	// Present shows the converged target.
	//
	// Returns:
	//   - error: an error if presentation failed
	Present() error

	// ReadConverged copies the converged target back to the host.
	//
	// Returns:
	//   - []float32: width*height RGBA texels in row-major order
	//   - error: an error if the readback failed
	ReadConverged() ([]float32, error)

	// ReleaseTargets frees the raw and converged targets.
	ReleaseTargets()
}

// View supplies the camera matrices uploaded each frame.
type View interface {
	CameraToWorld() mgl32.Mat4
	InverseProjection() mgl32.Mat4
}

// Light supplies the directional light as (direction.xyz, intensity).
type Light interface {
	Vector() mgl32.Vec4
}

// Tracer is the progressive renderer. Frame runs one tick of the per-frame protocol and must be
// called from a single goroutine; scene registration may happen concurrently.
type Tracer interface {
	// Frame runs one frame: change detection, geometry rebuild, buffer reconciliation, uniform
	// upload, dispatch, accumulation and presentation. A zero-sized frame is skipped.
	//
	// Parameters:
	//   - width: output width in pixels
	//   - height: output height in pixels
	//
	// Returns:
	//   - error: an error if a device operation failed; the next frame retries
	Frame(width, height uint32) error

	// SampleIndex returns the number of samples the converged image currently averages.
	//
	// Returns:
	//   - uint32: the sample count
	SampleIndex() uint32

	// SetSampleLimit caps the accumulation. Once the converged image averages n samples, Frame
	// keeps detecting changes and presenting but stops dispatching until a reset. 0 removes the cap.
	//
	// Parameters:
	//   - n: the sample count to stop at
	SetSampleLimit(n uint32)

	// Reset discards the accumulated history before the next dispatch.
	//
	// Parameters:
	//   - reason: a short description for the log
	Reset(reason string)

	// SetView replaces the camera.
	SetView(v View)

	// SetLight replaces the directional light.
	SetLight(l Light)

	// Snapshot reads back the converged image.
	//
	// Returns:
	//   - *Image: the linear HDR image
	//   - error: an error if nothing was rendered yet or the readback failed
	Snapshot() (*Image, error)

	// Stats returns counters describing the tracer's work so far.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// Release frees every device buffer and both render targets. The tracer is unusable afterwards.
	Release()
}

// cameraState is the watcher snapshot for the camera.
type cameraState struct {
	cameraToWorld     mgl32.Mat4
	inverseProjection mgl32.Mat4
}

type watchKey string

const (
	keyCamera watchKey = "camera"
	keyLight  watchKey = "light"
)

type tracer struct {
	mu *sync.Mutex

	device  Device
	buffers buffer.Manager
	scene   scene.Scene
	watcher watcher.Watcher
	rng     scene.Random

	view  View
	light Light

	acc            accumulator
	sampleLimit    uint32
	spheresVersion uint64
	tracked        map[scene.MeshSource]struct{}

	bound           bool
	boundGeneration uint64
	width, height   uint32
	released        bool

	frames   uint64
	rebuilds int
	started  time.Time
}

var _ Tracer = &tracer{}

// NewTracer creates a progressive renderer for a scene on a device.
//
// Parameters:
//   - d: the device that owns buffers and targets (must not be nil)
//   - sc: the scene to render (must not be nil)
//   - view: the camera (must not be nil)
//   - light: the directional light (must not be nil)
//   - options: functional options to further configure the tracer
//
// Returns:
//   - Tracer: the newly created tracer
func NewTracer(d Device, sc scene.Scene, view View, light Light, options ...TracerBuilderOption) Tracer {
	if d == nil {
		panic("tracer: NewTracer requires a non-nil Device")
	}
	if sc == nil {
		panic("tracer: NewTracer requires a non-nil Scene")
	}
	if view == nil || light == nil {
		panic("tracer: NewTracer requires a view and a light")
	}

	t := &tracer{
		mu:      &sync.Mutex{},
		device:  d,
		scene:   sc,
		view:    view,
		light:   light,
		tracked: make(map[scene.MeshSource]struct{}),
		started: time.Now(),
	}
	for _, option := range options {
		option(t)
	}
	if t.buffers == nil {
		t.buffers = buffer.NewManager(d)
	}
	if t.watcher == nil {
		t.watcher = watcher.NewWatcher()
	}
	if t.rng == nil {
		t.rng = scene.NewRandom(uint64(time.Now().UnixNano()))
	}
	return t
}

func (t *tracer) Frame(width, height uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return ErrReleased
	}
	if width == 0 || height == 0 {
		return nil
	}

	t.detectChanges()

	if err := t.syncGeometry(); err != nil {
		return err
	}
	if err := t.syncSpheres(); err != nil {
		return err
	}

	resized, err := t.device.EnsureTargets(width, height)
	if resized {
		// the old targets are gone even when the new ones failed, so history and bindings are stale
		t.width, t.height = width, height
		t.bound = false
		t.acc.reset("resolution changed")
	}
	if err != nil {
		return fmt.Errorf("tracer: failed to allocate %dx%d targets: %w", width, height, err)
	}
	if resized {
		logger.Infof("render targets resized to %dx%d", width, height)
	}

	if reason := t.acc.takeReset(); reason != "" {
		logger.Debugf("accumulation reset: %s", reason)
	}

	if t.sampleLimit > 0 && t.acc.sampleIndex >= t.sampleLimit {
		if err := t.device.Present(); err != nil {
			return fmt.Errorf("tracer: present failed: %w", err)
		}
		return nil
	}

	res := t.resources()
	uniforms := TracerUniforms{
		CameraToWorld:     t.view.CameraToWorld(),
		InverseProjection: t.view.InverseProjection(),
		DirectionalLight:  t.light.Vector(),
		PixelOffset:       mgl32.Vec2{t.rng.Float32(), t.rng.Float32()},
		Seed:              t.rng.Float32(),
		SphereCount:       count(res.Spheres),
		MeshObjectCount:   count(res.MeshObjects),
		Width:             width,
		Height:            height,
	}
	if err := t.device.WriteUniforms(uniforms.Marshal()); err != nil {
		return fmt.Errorf("tracer: failed to upload uniforms: %w", err)
	}

	if gen := t.buffers.Generation(); !t.bound || gen != t.boundGeneration {
		if err := t.device.Bind(res); err != nil {
			return fmt.Errorf("tracer: failed to bind resources: %w", err)
		}
		t.bound = true
		t.boundGeneration = gen
	}

	if err := t.device.Dispatch(common.CeilDiv(width, TileSize), common.CeilDiv(height, TileSize)); err != nil {
		return fmt.Errorf("tracer: dispatch failed: %w", err)
	}

	prior, sample := t.acc.weights()
	params := AccumulateParams{PriorWeight: prior, SampleWeight: sample, Width: width, Height: height}
	if err := t.device.Accumulate(params.Marshal()); err != nil {
		return fmt.Errorf("tracer: accumulation failed: %w", err)
	}
	t.acc.advance()
	t.frames++

	if err := t.device.Present(); err != nil {
		return fmt.Errorf("tracer: present failed: %w", err)
	}
	return nil
}

// detectChanges resets accumulation on camera or light movement and marks the scene dirty when a
// registered object moved.
func (t *tracer) detectChanges() {
	cam := cameraState{
		cameraToWorld:     t.view.CameraToWorld(),
		inverseProjection: t.view.InverseProjection(),
	}
	if t.watcher.Changed(keyCamera, cam) {
		t.acc.reset("camera moved")
	}
	if t.watcher.Changed(keyLight, t.light.Vector()) {
		t.acc.reset("light changed")
	}

	for _, src := range t.scene.Sources() {
		moved := t.watcher.Changed(src, src.WorldTransform())
		if _, known := t.tracked[src]; !known {
			t.tracked[src] = struct{}{}
			continue
		}
		if moved {
			t.scene.MarkDirty()
		}
	}
}

func (t *tracer) syncGeometry() error {
	g, rebuilt := t.scene.Rebuild()
	if !rebuilt {
		return nil
	}
	t.rebuilds++
	t.acc.reset("geometry rebuilt")
	t.pruneTracked()

	uploads := []struct {
		slot   string
		data   []byte
		stride int
	}{
		{SlotMeshObjects, g.MeshObjectBytes(), scene.MeshObjectStride},
		{SlotVertices, g.VertexBytes(), scene.VertexStride},
		{SlotIndices, g.IndexBytes(), scene.IndexStride},
	}
	for _, u := range uploads {
		if _, err := t.buffers.Reconcile(u.slot, u.data, u.stride); err != nil {
			// retry the whole rebuild next frame
			t.scene.MarkDirty()
			return fmt.Errorf("tracer: %w", err)
		}
	}
	return nil
}

// pruneTracked drops watcher snapshots of objects that are no longer registered.
func (t *tracer) pruneTracked() {
	live := make(map[scene.MeshSource]struct{}, len(t.tracked))
	for _, src := range t.scene.Sources() {
		live[src] = struct{}{}
	}
	for src := range t.tracked {
		if _, ok := live[src]; !ok {
			delete(t.tracked, src)
			t.watcher.Forget(src)
		}
	}
}

func (t *tracer) syncSpheres() error {
	version := t.scene.SpheresVersion()
	if version == t.spheresVersion {
		return nil
	}
	if _, err := t.buffers.Reconcile(SlotSpheres, scene.MarshalSpheres(t.scene.Spheres()), scene.SphereStride); err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	t.spheresVersion = version
	t.acc.reset("spheres regenerated")
	return nil
}

func (t *tracer) resources() Resources {
	return Resources{
		Spheres:     t.buffers.Handle(SlotSpheres),
		MeshObjects: t.buffers.Handle(SlotMeshObjects),
		Vertices:    t.buffers.Handle(SlotVertices),
		Indices:     t.buffers.Handle(SlotIndices),
	}
}

func count(h buffer.Handle) uint32 {
	if h == nil {
		return 0
	}
	return uint32(h.Shape().Count)
}

func (t *tracer) SampleIndex() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.acc.sampleIndex
}

func (t *tracer) SetSampleLimit(n uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sampleLimit = n
}

func (t *tracer) Reset(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acc.reset(reason)
}

func (t *tracer) SetView(v View) {
	if v == nil {
		panic("tracer: SetView requires a non-nil View")
	}
	t.mu.Lock()
	t.view = v
	t.mu.Unlock()
}

func (t *tracer) SetLight(l Light) {
	if l == nil {
		panic("tracer: SetLight requires a non-nil Light")
	}
	t.mu.Lock()
	t.light = l
	t.mu.Unlock()
}

func (t *tracer) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return
	}
	t.buffers.ReleaseAll()
	t.device.ReleaseTargets()
	t.released = true
	t.bound = false
	logger.Noticef("released after %d frames", t.frames)
}
