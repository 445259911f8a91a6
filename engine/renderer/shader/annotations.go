// annotations.go defines the @oxy: annotation vocabulary understood by the kernel pre-processor.
// Annotations are single-line WGSL comments that inject shared struct definitions, generate
// @group/@binding declarations for those structs, and tag hand-written bindings with the
// resource that backs them so the renderer can fill a bind group without matching on variable
// names.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation
	// site. It is consumed entirely during pre-processing.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include sphere
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding variable declaration for a
	// registered struct (or a runtime array of one) and records a declaration.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@oxy:group 0 4 storage_read spheres array<sphere>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records which resource backs a hand-written binding (textures,
	// samplers, flat primitive arrays) without generating WGSL. An optional role narrows the
	// binding within a provider that owns several.
	//
	// Syntax:
	//   //@oxy:provider <group> <binding> <provider_identity>
	//   //@oxy:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example: //@oxy:provider 0 1 target raw
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	// Type identifies which annotation was parsed.
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key
	//   - group:    [0] = address space, [1] = var name, [2] = type key, optionally array<key>
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line the annotation was found on.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include.
	Binding *int
}

// Provider returns the provider identity of a provider annotation, or "" for any other type.
func (a Annotation) Provider() AnnotationArg {
	if a.Type != AnnotationTypeProvider || len(a.Args) == 0 {
		return ""
	}
	return a.Args[0]
}

// Role returns the binding role of a provider annotation, or "" when none was given.
func (a Annotation) Role() AnnotationArg {
	if a.Type != AnnotationTypeProvider || len(a.Args) < 2 {
		return ""
	}
	return a.Args[1]
}

// StructType returns the struct key of a group annotation with any array<> wrapper removed.
func (a Annotation) StructType() AnnotationArg {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return ""
	}
	key := string(a.Args[2])
	if inner, ok := strings.CutPrefix(key, "array<"); ok {
		key = strings.TrimSuffix(inner, ">")
	}
	return AnnotationArg(key)
}

// AnnotationArg is a typed string constant used as an annotation argument.
type AnnotationArg string

// Struct type arguments. Each maps to a Go GPU type with an embedded .wgsl asset file.
const (
	// AnnotationArgSphere identifies the Sphere struct.
	// Source: engine/scene/assets/sphere.wgsl
	AnnotationArgSphere AnnotationArg = "sphere"

	// AnnotationArgMeshObject identifies the MeshObject struct.
	// Source: engine/scene/assets/mesh_object.wgsl
	AnnotationArgMeshObject AnnotationArg = "mesh_object"

	// AnnotationArgTracerUniforms identifies the per-frame TracerUniforms block.
	// Source: engine/tracer/assets/tracer_uniforms.wgsl
	AnnotationArgTracerUniforms AnnotationArg = "tracer_uniforms"

	// AnnotationArgAccumulateParams identifies the AccumulateParams blend block.
	// Source: engine/tracer/assets/accumulate_params.wgsl
	AnnotationArgAccumulateParams AnnotationArg = "accumulate_params"
)

// Address space arguments for @oxy:group annotations.
const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// Provider identity arguments for @oxy:provider annotations.
const (
	// AnnotationArgTarget identifies the render targets (raw sample texture, converged buffer).
	AnnotationArgTarget AnnotationArg = "target"

	// AnnotationArgSkybox identifies the environment map texture and its sampler.
	AnnotationArgSkybox AnnotationArg = "skybox"

	// AnnotationArgGeometry identifies the flattened vertex and index buffers.
	AnnotationArgGeometry AnnotationArg = "geometry"
)

// Binding role arguments qualifying a provider annotation.
const (
	// AnnotationArgRaw is the per-frame sample target. Sampled views of it are unfilterable.
	AnnotationArgRaw AnnotationArg = "raw"

	// AnnotationArgConverged is the running-mean buffer.
	AnnotationArgConverged AnnotationArg = "converged"

	// AnnotationArgTexture is a sampled texture binding.
	AnnotationArgTexture AnnotationArg = "texture"

	// AnnotationArgSampler is the sampler paired with a texture.
	AnnotationArgSampler AnnotationArg = "sampler"

	// AnnotationArgVertices is the packed vertex position buffer.
	AnnotationArgVertices AnnotationArg = "vertices"

	// AnnotationArgIndices is the triangle index buffer.
	AnnotationArgIndices AnnotationArg = "indices"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgSphere,
	AnnotationArgMeshObject,
	AnnotationArgTracerUniforms,
	AnnotationArgAccumulateParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgTarget,
	AnnotationArgSkybox,
	AnnotationArgGeometry,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgRaw,
	AnnotationArgConverged,
	AnnotationArgTexture,
	AnnotationArgSampler,
	AnnotationArgVertices,
	AnnotationArgIndices,
}

// parseAnnotation attempts to parse a single line of WGSL source as an @oxy: annotation.
// Returns nil with no error for lines that do not carry the prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @oxy group annotation requires five arguments (group, binding, address space, var name, struct type)", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @oxy group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			typeArg = strings.TrimSuffix(inner, ">")
		}
		if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @oxy group annotation", lineNum, typeArg)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @oxy provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @oxy provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @oxy provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @oxy annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q: %w", lineNum, groupArg, err)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q: %w", lineNum, bindingArg, err)
	}
	return group, binding, nil
}
