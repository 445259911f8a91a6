package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/go-cmp/cmp"
)

func TestPickSurfaceFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []wgpu.TextureFormat
		want    wgpu.TextureFormat
	}{
		{"prefers unorm over srgb", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatBGRA8Unorm},
		{"accepts rgba", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm}, wgpu.TextureFormatRGBA8Unorm},
		{"falls back to first", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float}, wgpu.TextureFormatRGBA16Float},
		{"empty", nil, wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickSurfaceFormat(tt.formats); got != tt.want {
				t.Errorf("pickSurfaceFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePresentMode(t *testing.T) {
	tests := []struct {
		in     string
		want   PresentMode
		wantOK bool
	}{
		{"vsync", PresentModeVSync, true},
		{"uncapped", PresentModeUncapped, true},
		{"", PresentModeUncapped, true},
		{"mailbox", PresentModeUncapped, false},
	}
	for _, tt := range tests {
		got, ok := ParsePresentMode(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePresentMode(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
	for _, m := range []PresentMode{PresentModeVSync, PresentModeUncapped} {
		if back, ok := ParsePresentMode(m.String()); !ok || back != m {
			t.Errorf("%v does not round-trip through its String()", m)
		}
	}
}

func TestAllocationSize(t *testing.T) {
	tests := []struct {
		shape buffer.Shape
		want  uint64
	}{
		{buffer.Shape{Count: 0, Stride: 64}, 4},
		{buffer.Shape{Count: 3, Stride: 64}, 192},
		{buffer.Shape{Count: 3, Stride: 1}, 4},
		{buffer.Shape{Count: 5, Stride: 1}, 8},
	}
	for _, tt := range tests {
		if got := allocationSize(tt.shape); got != tt.want {
			t.Errorf("allocationSize(%+v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestResolveKernelSlots(t *testing.T) {
	got, err := resolveKernelSlots(shader.NewRaytraceKernel())
	if err != nil {
		t.Fatal(err)
	}
	want := kernelSlots{
		uniforms:    0,
		raw:         1,
		skyTexture:  2,
		skySampler:  3,
		spheres:     4,
		meshObjects: 5,
		vertices:    6,
		indices:     7,
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(kernelSlots{})); diff != "" {
		t.Errorf("kernel slots mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveBlendAndPresentSlots(t *testing.T) {
	acc, err := resolveAccumulateSlots(shader.NewAccumulateKernel())
	if err != nil {
		t.Fatal(err)
	}
	if acc != (accumulateSlots{params: 0, raw: 1, converged: 2}) {
		t.Errorf("accumulate slots = %+v", acc)
	}

	_, fs := shader.NewPresentShaders()
	pres, err := resolvePresentSlots(fs)
	if err != nil {
		t.Fatal(err)
	}
	if pres != (presentSlots{params: 0, converged: 1}) {
		t.Errorf("present slots = %+v", pres)
	}
}

func TestResolveSlotsReportsMissingBinding(t *testing.T) {
	src := `//@oxy:include accumulate_params
//@oxy:group 0 0 storage_uniform params accumulate_params

@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    _ = params.width;
}
`
	s := shader.NewShaderFromSource("partial", shader.ShaderTypeCompute, src)
	if _, err := resolveAccumulateSlots(s); err == nil {
		t.Fatal("expected an error for a kernel without target bindings")
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 1, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 2 {
		t.Fatalf("merged %d groups, want 2", len(merged))
	}
	entries := merged[0].Entries
	if len(entries) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(entries))
	}
	if entries[0].Binding != 0 || entries[1].Binding != 1 {
		t.Errorf("entries not sorted by binding: %d, %d", entries[0].Binding, entries[1].Binding)
	}
	if entries[0].Visibility != wgpu.ShaderStageVertex|wgpu.ShaderStageFragment {
		t.Errorf("binding 0 visibility = %v, want vertex|fragment", entries[0].Visibility)
	}
}

var errNoMemory = errors.New("out of device memory")

// failingTargetsBackend fails every storage texture allocation and counts the attempts.
type failingTargetsBackend struct {
	RendererBackend
	attempts int
}

func (b *failingTargetsBackend) CreateStorageTexture(label string, width, height uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView, error) {
	b.attempts++
	return nil, nil, errNoMemory
}

func TestEnsureTargetsReportsReplacementOnFailure(t *testing.T) {
	b := &failingTargetsBackend{}
	r := &renderer{mu: &sync.Mutex{}, backend: b, width: 8, height: 8}

	resized, err := r.EnsureTargets(16, 16)
	if !errors.Is(err, errNoMemory) {
		t.Fatalf("EnsureTargets() error = %v, want %v", err, errNoMemory)
	}
	if !resized {
		t.Error("EnsureTargets() reported no replacement after dropping the old targets")
	}
	if r.width != 0 || r.height != 0 {
		t.Errorf("target size = %dx%d after a failed allocation, want 0x0", r.width, r.height)
	}

	if _, err := r.EnsureTargets(16, 16); err == nil {
		t.Fatal("second EnsureTargets() returned nil error")
	}
	if b.attempts != 2 {
		t.Errorf("CreateStorageTexture called %d times, want 2 so the failed size is retried", b.attempts)
	}
}
