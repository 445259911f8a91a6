package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithSources registers initial mesh sources. The scene starts dirty when any are given.
//
// Parameters:
//   - sources: the mesh sources to register, in order
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSources(sources ...MeshSource) SceneBuilderOption {
	return func(s *scene) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			s.sources = append(s.sources, src)
			s.dirty = true
		}
	}
}

// WithSpheres installs a fixed sphere set instead of a generated one.
//
// Parameters:
//   - spheres: the sphere set
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSpheres(spheres []Sphere) SceneBuilderOption {
	return func(s *scene) {
		s.spheres = spheres
		s.spheresVersion++
	}
}

// WithRandomSource replaces the stream constructor used by Generate. Defaults to NewRandom.
//
// Parameters:
//   - newRandom: builds a stream from a generation seed
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRandomSource(newRandom func(seed uint64) Random) SceneBuilderOption {
	return func(s *scene) {
		if newRandom != nil {
			s.newRandom = newRandom
		}
	}
}
