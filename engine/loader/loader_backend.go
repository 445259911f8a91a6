package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-rt/engine/model"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (gltfLoaderBackend, objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports triangle geometry from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - name: the model name
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(r io.Reader, name string) (*model.ImportedModel, error)
}
