package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-rt/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// objLoaderBackendImpl is the implementation of objLoaderBackend.
type objLoaderBackendImpl struct{}

// objLoaderBackend is a loaderBackend implementation for Wavefront OBJ files. Only vertex
// positions and faces are read; polygons are fan-triangulated.
type objLoaderBackend interface {
	loaderBackend
}

var _ objLoaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Returns:
//   - objLoaderBackend: the loader backend for OBJ files
func newOBJLoaderBackend() objLoaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return b.LoadReader(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

func (b *objLoaderBackendImpl) LoadReader(r io.Reader, name string) (*model.ImportedModel, error) {
	var (
		positions []mgl32.Vec3
		indices   []uint32
		meshName  string
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs three coordinates", lineNo)
			}
			var v mgl32.Vec3
			for i := range 3 {
				c, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				v[i] = float32(c)
			}
			positions = append(positions, v)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least three vertices", lineNo)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				idx, err := objVertexIndex(tok, len(positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				face = append(face, idx)
			}
			indices = append(indices, triangulateFan(face)...)

		case "o":
			if meshName == "" && len(fields) > 1 {
				meshName = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if meshName == "" {
		meshName = name
	}
	lo, hi := model.Bounds(positions)
	return &model.ImportedModel{
		Name: name,
		Meshes: []model.ImportedMesh{{
			Name:        meshName,
			Positions:   positions,
			Indices:     indices,
			BoundingMin: lo,
			BoundingMax: hi,
		}},
	}, nil
}

// objVertexIndex resolves the position part of a face token ("v", "v/vt", "v//vn" or "v/vt/vn")
// to a zero-based index. Negative indices count back from the most recent vertex.
func objVertexIndex(tok string, vertexCount int) (uint32, error) {
	pos, _, _ := strings.Cut(tok, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", tok)
	}

	switch {
	case n > 0 && n <= vertexCount:
		return uint32(n - 1), nil
	case n < 0 && -n <= vertexCount:
		return uint32(vertexCount + n), nil
	default:
		return 0, fmt.Errorf("face index %d out of range for %d vertices", n, vertexCount)
	}
}
