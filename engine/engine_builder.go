package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/tracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Held-key camera movement and the tick callback run at this rate.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine presents to and reads input from.
//
// Parameters:
//   - w: a created Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithTitle sets the prefix of the window title; the sample count is appended while running.
func WithTitle(title string) EngineBuilderOption {
	return func(e *engine) {
		e.baseTitle = title
	}
}

// WithRenderer hands the engine the renderer that owns the GPU device, so it can forward
// window resizes and release the device on shutdown.
//
// Parameters:
//   - r: the renderer the tracer was built on
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithTracer sets the progressive tracer driven by the render loop.
//
// Parameters:
//   - t: the tracer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTracer(t tracer.Tracer) EngineBuilderOption {
	return func(e *engine) {
		e.tracer = t
	}
}

// WithCamera sets the camera updated before every frame and steered by input.
//
// Parameters:
//   - c: the camera, normally the tracer's view
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithScene sets the scene the G key regenerates.
//
// Parameters:
//   - s: the Scene the tracer renders
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithGeneratorConfig sets the generator settings used when regenerating; each regeneration
// advances the seed by one.
func WithGeneratorConfig(cfg scene.GeneratorConfig) EngineBuilderOption {
	return func(e *engine) {
		e.generatorConfig = cfg
	}
}

// WithMaxSamples stops accumulating once the image averages n samples; camera, light and object
// changes still restart it. 0 traces indefinitely.
func WithMaxSamples(n uint32) EngineBuilderOption {
	return func(e *engine) {
		e.maxSamples = n
	}
}

// WithExitOnConverge makes the engine quit when the sample target is reached instead of idling.
func WithExitOnConverge(exit bool) EngineBuilderOption {
	return func(e *engine) {
		e.exitOnConverge = exit
	}
}

// WithSnapshotPath sets where the final image is written on shutdown and where P snapshots go.
// The extension picks the format.
func WithSnapshotPath(path string) EngineBuilderOption {
	return func(e *engine) {
		e.snapshotPath = path
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
