package engine

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/log"
	"github.com/Carmen-Shannon/oxy-rt/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/tracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
)

var logger = log.New("engine")

// errRenderPanic wraps a panic recovered while rendering a frame.
var errRenderPanic = errors.New("engine: render frame panicked")

const (
	// maxRenderPanics is the number of consecutive panicking frames after which the engine quits.
	maxRenderPanics = 3

	// convergedIdle is how long the render loop sleeps per frame once the sample target is reached.
	convergedIdle = 10 * time.Millisecond

	// titleInterval is how often the window title is refreshed with the sample count.
	titleInterval = 250 * time.Millisecond
)

// engine implements the Engine interface.
// Coordinates the tick, render and window threads around a single progressive tracer.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel  chan struct{}
	quitOnce     sync.Once // Ensures quitChannel is only closed once
	shutdownOnce sync.Once

	window   window.Window
	renderer renderer.Renderer
	tracer   tracer.Tracer
	camera   camera.Camera
	scene    scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	generatorConfig scene.GeneratorConfig
	maxSamples      uint32
	exitOnConverge  bool
	snapshotPath    string

	snapshotRequested atomic.Bool
	lastFrameErr      string
	baseTitle         string
	lastTitle         time.Time

	input *inputState
}

// Engine is the main entry point for the viewer.
// It orchestrates the tick loop, the progressive render loop and the window.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Tracer returns the progressive tracer driven by the render loop.
	//
	// Returns:
	//   - tracer.Tracer: the tracer
	Tracer() tracer.Tracer

	// Camera returns the camera updated before every frame.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback and held-key camera movement run at this rate.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// RequestSnapshot asks the render loop to write the converged image after its next frame.
	RequestSnapshot()

	// Run starts the engine loops and blocks until the window closes or Quit is called. On the
	// way out it writes the final snapshot when configured, logs the statistics tables and
	// releases the tracer, the renderer and the window.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine from the provided options. A window, a tracer and a camera are
// required.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		running:          false,
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		generatorConfig:  scene.DefaultGeneratorConfig(),
		baseTitle:        "oxy-rt",
		input:            newInputState(),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: NewEngine requires a Window")
	}
	if e.tracer == nil {
		panic("engine: NewEngine requires a Tracer")
	}
	if e.camera == nil {
		panic("engine: NewEngine requires a Camera")
	}

	e.tracer.SetSampleLimit(e.maxSamples)
	if h := e.window.Height(); h > 0 {
		e.camera.SetAspect(float32(e.window.Width()) / float32(h))
	}
	e.bindWindow()
	return e
}

// bindWindow routes window events to the renderer, the camera and the engine's key bindings.
func (e *engine) bindWindow() {
	e.window.SetResizeCallback(func(width, height int) {
		if e.renderer != nil {
			e.renderer.Resize(width, height)
		}
		if height > 0 {
			e.camera.SetAspect(float32(width) / float32(height))
		}
	})
	e.window.SetKeyDownCallback(e.keyDown)
	e.window.SetKeyUpCallback(e.input.release)
	e.window.SetScrollCallback(func(delta float32) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.Zoom(delta)
		}
	})
	e.window.SetMouseButtonCallback(e.input.button)
	e.window.SetMouseMoveCallback(func(x, y float32) {
		e.input.move(e.camera.Controller(), x, y)
	})
	e.window.SetUpdateCallback(e.update)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Tracer() tracer.Tracer {
	return e.tracer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.shutdown()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) RequestSnapshot() {
	e.snapshotRequested.Store(true)
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// shutdown stops the loops, then tears down in dependency order: the tracer releases its buffers
// through the renderer before the renderer drops the device, and the window goes last because it
// owns the surface.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.signalQuit()
		e.wg.Wait()

		if e.snapshotPath != "" {
			e.writeSnapshot(e.snapshotPath)
		}
		e.logStats()

		e.tracer.Release()
		if e.renderer != nil {
			e.renderer.Release()
		}
		if err := e.window.Close(); err != nil {
			logger.Debugf("window close: %v", err)
		}
		logger.Notice("shut down")
	})
}

// update runs on the window thread once per message batch.
func (e *engine) update() {
	select {
	case <-e.quitChannel:
		e.shutdown()
		return
	default:
	}

	if now := time.Now(); now.Sub(e.lastTitle) >= titleInterval {
		e.lastTitle = now
		e.window.SetTitle(fmt.Sprintf("%s | %d spp", e.baseTitle, e.tracer.SampleIndex()))
	}
}

// handle launches the tick and render goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Applies held-key camera movement, fires the tick callback at the configured tick rate and
// listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.input.apply(e.camera.Controller(), dt)

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Each iteration updates the camera and traces one sample. Frame errors are logged and the loop
// keeps running; a panicking frame is recovered and the engine quits after several in a row.
func (e *engine) handleRender() {
	defer e.wg.Done()

	lastRender := time.Now()
	panics := 0

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		err := e.renderFrame()
		e.reportFrameError(err)
		if errors.Is(err, errRenderPanic) {
			panics++
			if panics >= maxRenderPanics {
				logger.Errorf("quitting after %d consecutive panicking frames", panics)
				e.signalQuit()
				return
			}
		} else {
			panics = 0
		}

		if e.snapshotRequested.Swap(false) {
			e.writeSnapshot(e.snapshotPath)
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			elapsed := time.Since(lastRender)
			if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame runs one tracer frame. At the sample target the tracer only watches for changes, so
// the loop slows down or quits.
func (e *engine) renderFrame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errRenderPanic, r)
		}
	}()

	e.camera.Update()

	if err := e.tracer.Frame(uint32(e.window.Width()), uint32(e.window.Height())); err != nil {
		return err
	}

	if e.converged() {
		if e.exitOnConverge {
			logger.Noticef("reached %d samples", e.maxSamples)
			e.signalQuit()
			return nil
		}
		time.Sleep(convergedIdle)
	}
	return nil
}

func (e *engine) converged() bool {
	return e.maxSamples > 0 && e.tracer.SampleIndex() >= e.maxSamples
}

// reportFrameError logs a frame error once per distinct message so a persistent failure does
// not flood the log.
func (e *engine) reportFrameError(err error) {
	if err == nil {
		if e.lastFrameErr != "" {
			logger.Notice("rendering recovered")
			e.lastFrameErr = ""
		}
		return
	}
	if msg := err.Error(); msg != e.lastFrameErr {
		logger.Errorf("frame failed: %s", msg)
		e.lastFrameErr = msg
	}
}

// keyDown handles one-shot bindings and records held movement keys.
func (e *engine) keyDown(key window.Key) {
	switch key {
	case window.KeyR:
		e.tracer.Reset("requested")
	case window.KeyP:
		e.RequestSnapshot()
	case window.KeyG:
		e.regenerate()
	default:
		e.input.press(key)
	}
}

// regenerate replaces the sphere set with the next seed.
func (e *engine) regenerate() {
	if e.scene == nil {
		return
	}
	e.generatorConfig.Seed++
	summary, err := e.scene.Generate(e.generatorConfig)
	if err != nil {
		logger.Errorf("regenerate failed: %v", err)
		return
	}
	logger.Noticef("seed %d: %d spheres (%d rejected)", e.generatorConfig.Seed, summary.Accepted, summary.Rejected)
}

// writeSnapshot saves the converged image, naming it after the sample count when path is empty.
func (e *engine) writeSnapshot(path string) {
	img, err := e.tracer.Snapshot()
	if err != nil {
		logger.Warningf("snapshot skipped: %v", err)
		return
	}
	if path == "" {
		path = fmt.Sprintf("oxy-rt-%dspp-%d.png", img.Samples, time.Now().Unix())
	}
	if err := img.Save(path); err != nil {
		logger.Errorf("snapshot failed: %v", err)
		return
	}
	logger.Noticef("wrote %dx%d snapshot at %d samples to %s", img.Width, img.Height, img.Samples, path)
}

// logStats logs the tracer and frame timing tables.
func (e *engine) logStats() {
	var buf bytes.Buffer
	e.tracer.Stats().WriteTable(&buf)
	if e.profiler != nil && e.profiler.Frames() > 0 {
		e.profiler.WriteTable(&buf)
	}
	logger.Noticef("render statistics\n%s", buf.String())
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send; a pending update is replaced
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
