package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-rt/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMaxNodeDepth bounds the node walk so a cyclic hierarchy fails instead of recursing forever.
const gltfMaxNodeDepth = 64

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor defines the interface for extracting triangle geometry from a parsed glTF
// document. Every primitive is baked into model space by the transforms of the nodes that
// reference it, so the tracer only ever sees one transform per loaded object.
type gltfMeshExtractor interface {
	// ExtractScene walks the default scene (or the first scene, or every root node when the
	// document has no scenes) and returns one ImportedMesh per referenced primitive.
	//
	// Returns:
	//   - []model.ImportedMesh: the baked meshes
	//   - error: error if extraction fails
	ExtractScene() ([]model.ImportedMesh, error)

	// ExtractMesh extracts a single mesh by index, baking every primitive with transform.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//   - transform: the model-space transform of the node referencing the mesh
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int, transform mgl32.Mat4) ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractScene() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	// no node hierarchy at all: every mesh sits at the origin
	if len(doc.Nodes) == 0 {
		var meshes []model.ImportedMesh
		for i := range doc.Meshes {
			m, err := e.ExtractMesh(i, mgl32.Ident4())
			if err != nil {
				return nil, err
			}
			meshes = append(meshes, m...)
		}
		return meshes, nil
	}

	var meshes []model.ImportedMesh
	for _, root := range gltfRootNodes(doc) {
		if err := e.walkNode(doc, root, mgl32.Ident4(), 0, &meshes); err != nil {
			return nil, err
		}
	}
	return meshes, nil
}

// walkNode appends the meshes of node and its descendants, accumulating parent transforms.
func (e *gltfMeshExtractorImpl) walkNode(doc *gltfDocument, nodeIndex int, parent mgl32.Mat4, depth int, out *[]model.ImportedMesh) error {
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}
	if depth > gltfMaxNodeDepth {
		return fmt.Errorf("node hierarchy deeper than %d, likely cyclic", gltfMaxNodeDepth)
	}

	node := &doc.Nodes[nodeIndex]
	world := parent.Mul4(gltfNodeTransform(node))

	if node.Mesh != nil {
		meshes, err := e.ExtractMesh(*node.Mesh, world)
		if err != nil {
			return fmt.Errorf("node %d: %w", nodeIndex, err)
		}
		*out = append(*out, meshes...)
	}

	for _, child := range node.Children {
		if err := e.walkNode(doc, child, world, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int, transform mgl32.Mat4) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.ImportedMesh, 0, len(mesh.Primitives))
	for primIdx := range mesh.Primitives {
		imported, err := e.extractPrimitive(&mesh.Primitives[primIdx], transform)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		if imported == nil {
			continue
		}
		imported.Name = mesh.Name
		result = append(result, *imported)
	}
	return result, nil
}

// extractPrimitive extracts a single primitive as an ImportedMesh. Non-triangle topologies
// (points and lines) yield nil so the rest of the mesh still loads.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, transform mgl32.Mat4) (*model.ImportedMesh, error) {
	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode < gltfPrimitiveModeTriangles {
		logger.Debugf("skipping primitive with non-triangle mode %d", mode)
		return nil, nil
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("index %d out of range for %d positions", idx, len(positions))
		}
	}

	switch mode {
	case gltfPrimitiveModeTriangleStrip:
		indices = triangulateStrip(indices)
	case gltfPrimitiveModeTriangleFan:
		indices = triangulateFan(indices)
	default:
		indices = indices[:len(indices)-len(indices)%3]
	}

	baked := make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		baked[i] = mgl32.TransformCoordinate(p, transform)
	}
	// a mirroring transform flips winding; swap to keep triangles counter-clockwise
	if transform.Det() < 0 {
		for i := 0; i+2 < len(indices); i += 3 {
			indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
		}
	}

	lo, hi := model.Bounds(baked)
	return &model.ImportedMesh{
		Positions:   baked,
		Indices:     indices,
		BoundingMin: lo,
		BoundingMax: hi,
	}, nil
}

// gltfRootNodes returns the root node list of the default scene, falling back to the first scene
// and then to every node that no other node lists as a child.
func gltfRootNodes(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeTransform returns the local transform of a node, from its matrix or its TRS
// properties.
func gltfNodeTransform(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}

	t := mgl32.Ident4()
	if node.Translation != nil {
		tr := node.Translation
		t = mgl32.Translate3D(tr[0], tr[1], tr[2])
	}
	r := mgl32.Ident4()
	if node.Rotation != nil {
		q := node.Rotation
		r = mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}.Normalize().Mat4()
	}
	s := mgl32.Ident4()
	if node.Scale != nil {
		sc := node.Scale
		s = mgl32.Scale3D(sc[0], sc[1], sc[2])
	}
	return t.Mul4(r).Mul4(s)
}

// triangulateStrip converts a triangle strip to a triangle list, alternating winding so every
// triangle keeps the orientation of the first.
func triangulateStrip(strip []uint32) []uint32 {
	if len(strip) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(strip)-2)*3)
	for i := 0; i+2 < len(strip); i++ {
		if i%2 == 0 {
			out = append(out, strip[i], strip[i+1], strip[i+2])
		} else {
			out = append(out, strip[i+1], strip[i], strip[i+2])
		}
	}
	return out
}

// triangulateFan converts a triangle fan to a triangle list.
func triangulateFan(fan []uint32) []uint32 {
	if len(fan) < 3 {
		return nil
	}
	out := make([]uint32, 0, (len(fan)-2)*3)
	for i := 1; i+1 < len(fan); i++ {
		out = append(out, fan[0], fan[i], fan[i+1])
	}
	return out
}
