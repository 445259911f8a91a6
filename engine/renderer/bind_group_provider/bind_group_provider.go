// Package bind_group_provider collects the GPU resources bound to one bind group, keyed by binding
// index, and turns them into bind group entries for a layout.
package bind_group_provider

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingResource is returned when a layout entry has no resource set for its binding.
var ErrMissingResource = errors.New("bind_group_provider: missing resource")

type bindGroupProvider struct {
	label string

	bindGroup    *wgpu.BindGroup
	buffers      map[int]*wgpu.Buffer
	textureViews map[int]*wgpu.TextureView
	samplers     map[int]*wgpu.Sampler
}

// BindGroupProvider holds the resources of a single bind group. Resources are borrowed: the
// provider only owns the bind group it is given.
type BindGroupProvider interface {
	// Release frees the bind group and drops every resource reference.
	Release()

	// Label returns the provider's label, used to name GPU objects created for it.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup returns the current GPU bind group, nil before the first Entries/SetBindGroup.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	BindGroup() *wgpu.BindGroup

	// Buffer returns the buffer set for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil
	Buffer(binding int) *wgpu.Buffer

	// TextureView returns the texture view set for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view, or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the sampler set for a binding.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler, or nil
	Sampler(binding int) *wgpu.Sampler

	// Entries builds one bind group entry per layout entry from the resources set on the
	// provider. Buffer entries bind the whole buffer.
	//
	// Parameters:
	//   - descriptor: the layout the bind group is created against
	//
	// Returns:
	//   - []wgpu.BindGroupEntry: entries in layout order
	//   - error: ErrMissingResource if a binding has no matching resource
	Entries(descriptor wgpu.BindGroupLayoutDescriptor) ([]wgpu.BindGroupEntry, error)

	// SetBindGroup replaces the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the new bind group
	SetBindGroup(bg *wgpu.BindGroup)

	SetBuffer(binding int, buf *wgpu.Buffer)
	SetTextureView(binding int, tv *wgpu.TextureView)
	SetSampler(binding int, s *wgpu.Sampler)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: a name used for the GPU objects created for this provider
//   - options: builder options pre-populating resources
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Entries(descriptor wgpu.BindGroupLayoutDescriptor) ([]wgpu.BindGroupEntry, error) {
	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, layout := range descriptor.Entries {
		binding := int(layout.Binding)
		entry := wgpu.BindGroupEntry{Binding: layout.Binding}

		switch {
		case layout.Texture.SampleType != wgpu.TextureSampleTypeUndefined,
			layout.StorageTexture.Format != wgpu.TextureFormatUndefined:
			entry.TextureView = p.textureViews[binding]
			if entry.TextureView == nil {
				return nil, fmt.Errorf("%w: %s texture binding %d", ErrMissingResource, p.label, binding)
			}
		case layout.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			entry.Sampler = p.samplers[binding]
			if entry.Sampler == nil {
				return nil, fmt.Errorf("%w: %s sampler binding %d", ErrMissingResource, p.label, binding)
			}
		default:
			entry.Buffer = p.buffers[binding]
			if entry.Buffer == nil {
				return nil, fmt.Errorf("%w: %s buffer binding %d", ErrMissingResource, p.label, binding)
			}
			entry.Size = wgpu.WholeSize
		}
		entries[i] = entry
	}
	return entries, nil
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	clear(p.buffers)
	clear(p.textureViews)
	clear(p.samplers)
}
