package bind_group_provider

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func kernelLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
			{Binding: 1, StorageTexture: wgpu.StorageTextureBindingLayout{Format: wgpu.TextureFormatRGBA32Float}},
			{Binding: 2, Texture: wgpu.TextureBindingLayout{SampleType: wgpu.TextureSampleTypeFloat}},
			{Binding: 3, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		},
	}
}

func TestEntries(t *testing.T) {
	uniforms := &wgpu.Buffer{}
	raw := &wgpu.TextureView{}
	sky := &wgpu.TextureView{}
	samp := &wgpu.Sampler{}

	p := NewBindGroupProvider("kernel",
		WithBuffer(0, uniforms),
		WithTextureView(1, raw),
		WithTextureView(2, sky),
		WithSampler(3, samp),
	)

	entries, err := p.Entries(kernelLayout())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	if entries[0].Buffer != uniforms || entries[0].Size != wgpu.WholeSize {
		t.Errorf("buffer entry = %+v", entries[0])
	}
	if entries[1].TextureView != raw || entries[2].TextureView != sky {
		t.Error("texture entries bound to the wrong views")
	}
	if entries[3].Sampler != samp {
		t.Error("sampler entry not bound")
	}
	for i, e := range entries {
		if int(e.Binding) != i {
			t.Errorf("entries[%d].Binding = %d", i, e.Binding)
		}
	}
}

func TestEntriesMissingResource(t *testing.T) {
	tests := []struct {
		name string
		opts []BindGroupProviderOption
	}{
		{"no buffer", []BindGroupProviderOption{WithTextureView(1, &wgpu.TextureView{}), WithTextureView(2, &wgpu.TextureView{}), WithSampler(3, &wgpu.Sampler{})}},
		{"no storage texture", []BindGroupProviderOption{WithBuffer(0, &wgpu.Buffer{}), WithTextureView(2, &wgpu.TextureView{}), WithSampler(3, &wgpu.Sampler{})}},
		{"no sampler", []BindGroupProviderOption{WithBuffer(0, &wgpu.Buffer{}), WithTextureView(1, &wgpu.TextureView{}), WithTextureView(2, &wgpu.TextureView{})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBindGroupProvider("kernel", tt.opts...).Entries(kernelLayout())
			if !errors.Is(err, ErrMissingResource) {
				t.Errorf("err = %v, want ErrMissingResource", err)
			}
		})
	}
}

func TestReleaseDropsReferences(t *testing.T) {
	p := NewBindGroupProvider("present", WithBuffer(0, &wgpu.Buffer{}))
	p.SetSampler(1, &wgpu.Sampler{})
	p.Release()

	if p.Buffer(0) != nil || p.Sampler(1) != nil || p.BindGroup() != nil {
		t.Error("Release kept resource references")
	}
	if p.Label() != "present" {
		t.Errorf("Label() = %q", p.Label())
	}
}
