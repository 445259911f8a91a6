package tracer

import (
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/watcher"
)

// TracerBuilderOption is a functional option for configuring a Tracer.
// Use the With* functions to create options.
type TracerBuilderOption func(t *tracer)

// WithRandom sets the stream used for the per-frame jitter offset and kernel seed.
// Defaults to a stream seeded from the current time.
//
// Parameters:
//   - rng: the random stream
//
// Returns:
//   - TracerBuilderOption: option function to apply
func WithRandom(rng scene.Random) TracerBuilderOption {
	return func(t *tracer) {
		t.rng = rng
	}
}

// WithWatcher sets the change watcher used for camera, light and object transforms.
//
// Parameters:
//   - w: the watcher
//
// Returns:
//   - TracerBuilderOption: option function to apply
func WithWatcher(w watcher.Watcher) TracerBuilderOption {
	return func(t *tracer) {
		t.watcher = w
	}
}

// WithBufferManager sets the buffer manager. It must allocate on the tracer's device.
//
// Parameters:
//   - m: the buffer manager
//
// Returns:
//   - TracerBuilderOption: option function to apply
func WithBufferManager(m buffer.Manager) TracerBuilderOption {
	return func(t *tracer) {
		t.buffers = m
	}
}
