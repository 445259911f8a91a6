// Package scene owns the traced scene description: the procedurally generated sphere set and the
// registry of mesh objects, together with the dirty flag that decides when the flattened geometry
// arrays are rebuilt.
package scene

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/engine/log"
)

var logger = log.New("scene")

// Scene is an explicit scene context. It replaces process-wide registry state so several
// independent scenes can coexist. All methods are safe to call from any goroutine; registration
// calls are linearised with Rebuild so a rebuild never observes a half-applied change.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Register appends a mesh source to the registry and marks geometry dirty.
	// Registering a source that is already present has no effect. Sources are compared by
	// identity, so implementations must be pointer types; Register panics on a source whose
	// dynamic type is not comparable.
	//
	// Parameters:
	//   - src: the mesh source to add
	Register(src MeshSource)

	// Unregister removes a mesh source by identity and marks geometry dirty.
	//
	// Parameters:
	//   - src: the mesh source to remove
	//
	// Returns:
	//   - bool: true if the source was registered
	Unregister(src MeshSource) bool

	// Sources returns the registered mesh sources in insertion order.
	//
	// Returns:
	//   - []MeshSource: a copy of the registry
	Sources() []MeshSource

	// Count returns the number of registered mesh sources.
	Count() int

	// MarkDirty flags the geometry as stale, e.g. after a registered object moved.
	MarkDirty()

	// Dirty reports whether the next Rebuild will run.
	Dirty() bool

	// Rebuild flattens the registry into fresh geometry arrays if the scene is dirty and clears
	// the flag. It is a no-op when the scene is clean.
	//
	// Returns:
	//   - Geometry: the rebuilt geometry, or the zero value when nothing was rebuilt
	//   - bool: true if a rebuild ran
	Rebuild() (Geometry, bool)

	// Generate replaces the sphere set with a freshly generated one and advances the sphere version.
	//
	// Parameters:
	//   - cfg: the generation options
	//
	// Returns:
	//   - Summary: acceptance and material counts for the new set
	//   - error: a validation error; the current set is kept on error
	Generate(cfg GeneratorConfig) (Summary, error)

	// Spheres returns the current sphere set. Callers must not modify it.
	//
	// Returns:
	//   - []Sphere: the sphere set in generation order
	Spheres() []Sphere

	// SpheresVersion returns a counter that advances every time the sphere set is replaced.
	//
	// Returns:
	//   - uint64: the sphere set version
	SpheresVersion() uint64
}

type scene struct {
	mu *sync.RWMutex

	name    string
	sources []MeshSource
	dirty   bool

	spheres        []Sphere
	spheresVersion uint64
	newRandom      func(seed uint64) Random
}

var _ Scene = &scene{}

// NewScene creates an empty scene with no spheres and no registered mesh sources.
//
// Parameters:
//   - name: the scene identifier used in log output
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:        &sync.RWMutex{},
		name:      name,
		newRandom: NewRandom,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Register(src MeshSource) {
	if src == nil {
		panic("scene: Register requires a non-nil MeshSource")
	}
	if !comparableSource(src) {
		panic(fmt.Sprintf("scene: Register requires a comparable MeshSource, got %T; implement it on a pointer type", src))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.sources, src) {
		return
	}
	s.sources = append(s.sources, src)
	s.dirty = true
}

// comparableSource reports whether src can be used as an identity key without panicking.
func comparableSource(src MeshSource) bool {
	return reflect.TypeOf(src).Comparable()
}

func (s *scene) Unregister(src MeshSource) bool {
	if src == nil || !comparableSource(src) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.sources, src)
	if i < 0 {
		return false
	}
	s.sources = slices.Delete(s.sources, i, i+1)
	s.dirty = true
	return true
}

func (s *scene) Sources() []MeshSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sources)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources)
}

func (s *scene) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

func (s *scene) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *scene) Rebuild() (Geometry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return Geometry{}, false
	}
	g := buildGeometry(s.sources)
	s.dirty = false

	logger.Infof("%s: rebuilt geometry from %d objects: %d vertices, %d indices, %d skipped",
		s.name, len(s.sources), len(g.Vertices), len(g.Indices), g.Skipped)
	return g, true
}

func (s *scene) Generate(cfg GeneratorConfig) (Summary, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	spheres := GenerateSpheres(cfg, s.newRandom(cfg.Seed))
	summary := Summarize(spheres, cfg.MaxSpheres)

	s.mu.Lock()
	s.spheres = spheres
	s.spheresVersion++
	s.mu.Unlock()

	logger.Infof("%s: generated %d spheres from %d attempts (seed %d)", s.name, summary.Accepted, summary.Attempts, cfg.Seed)
	return summary, nil
}

func (s *scene) Spheres() []Sphere {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spheres
}

func (s *scene) SpheresVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.spheresVersion
}
