package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/log"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-rt/engine/tracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

var logger = log.New("renderer")

// ErrNoTargets is returned by operations that need the render targets before EnsureTargets ran.
var ErrNoTargets = errors.New("renderer: render targets not allocated")

// presentPipelineKey names the fullscreen pass that draws the converged target.
const presentPipelineKey = "present"

// rawTargetFormat is the texel format of the per-frame sample target.
const rawTargetFormat = wgpu.TextureFormatRGBA32Float

// convergedTexelSize is the byte size of one vec4<f32> texel in the converged buffer.
const convergedTexelSize = 16

// placeholderSize covers the largest structured element so an unbound slot still satisfies the
// layout's minimum binding size.
const placeholderSize = 80

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingSkybox        *common.TextureStagingData
	skyboxSampler        common.SamplerStagingData

	raytrace   pipeline.Pipeline
	accumulate pipeline.Pipeline
	present    pipeline.Pipeline

	kernelSlots     kernelSlots
	accumulateSlots accumulateSlots
	presentSlots    presentSlots

	kernelProvider     bind_group_provider.BindGroupProvider
	accumulateProvider bind_group_provider.BindGroupProvider
	presentProvider    bind_group_provider.BindGroupProvider

	uniforms    *wgpu.Buffer
	params      *wgpu.Buffer
	placeholder *wgpu.Buffer

	rawTexture *wgpu.Texture
	rawView    *wgpu.TextureView
	converged  *wgpu.Buffer
	width      uint32
	height     uint32

	skyTexture *wgpu.Texture
	skyView    *wgpu.TextureView
	skySampler *wgpu.Sampler

	buffers map[*gpuBuffer]struct{}
}

// Renderer is the wgpu device the tracer drives. On top of buffer and target management it owns
// the surface and the environment map.
type Renderer interface {
	tracer.Device

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered to the display. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetSkybox replaces the environment map sampled by rays that escape the scene.
	//
	// Parameters:
	//   - data: RGBA8 sRGB pixels of an equirectangular image
	//
	// Returns:
	//   - error: an error if the texture could not be created or bound
	SetSkybox(data common.TextureStagingData) error

	// Release frees every GPU object the renderer owns, then the device itself.
	Release()
}

var _ Renderer = &renderer{}

// gpuBuffer is the buffer.Handle handed out by CreateBuffer.
type gpuBuffer struct {
	label string
	shape buffer.Shape
	buf   *wgpu.Buffer
}

var _ buffer.Handle = &gpuBuffer{}

func (b *gpuBuffer) Label() string {
	return b.label
}

func (b *gpuBuffer) Shape() buffer.Shape {
	return b.shape
}

// NewRenderer creates the wgpu device on the window's surface, compiles the three kernels and
// allocates the fixed uniform buffers. Render targets are created lazily by EnsureTargets.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - w: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if a pipeline or buffer could not be created
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		buffers:     make(map[*gpuBuffer]struct{}),
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.ConfigureSurface(w.Width(), w.Height())

	if err := r.init(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) init() error {
	raytraceKernel := shader.NewRaytraceKernel()
	accumulateKernel := shader.NewAccumulateKernel()
	vs, fs := shader.NewPresentShaders()

	var err error
	if r.kernelSlots, err = resolveKernelSlots(raytraceKernel); err != nil {
		return err
	}
	if r.accumulateSlots, err = resolveAccumulateSlots(accumulateKernel); err != nil {
		return err
	}
	if r.presentSlots, err = resolvePresentSlots(fs); err != nil {
		return err
	}

	r.raytrace = pipeline.NewPipeline(shader.KeyRaytrace, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(raytraceKernel))
	r.accumulate = pipeline.NewPipeline(shader.KeyAccumulate, pipeline.PipelineTypeCompute,
		pipeline.WithComputeShader(accumulateKernel))
	r.present = pipeline.NewPipeline(presentPipelineKey, pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithCullMode(wgpu.CullModeNone),
	)

	for _, p := range []pipeline.Pipeline{r.raytrace, r.accumulate} {
		if err := r.backend.RegisterComputePipeline(p); err != nil {
			return fmt.Errorf("renderer: failed to register %s: %w", p.PipelineKey(), err)
		}
	}
	if err := r.backend.RegisterRenderPipeline(r.present); err != nil {
		return fmt.Errorf("renderer: failed to register present: %w", err)
	}

	if r.uniforms, err = r.backend.CreateBuffer("Tracer Uniforms", tracer.TracerUniformsSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}
	if r.params, err = r.backend.CreateBuffer("Accumulate Params", tracer.AccumulateParamsSize, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}
	if r.placeholder, err = r.backend.CreateBuffer("Unbound Slot", placeholderSize, wgpu.BufferUsageStorage); err != nil {
		return err
	}

	r.kernelProvider = bind_group_provider.NewBindGroupProvider("Raytrace",
		bind_group_provider.WithBuffer(r.kernelSlots.uniforms, r.uniforms))
	r.accumulateProvider = bind_group_provider.NewBindGroupProvider("Accumulate",
		bind_group_provider.WithBuffer(r.accumulateSlots.params, r.params))
	r.presentProvider = bind_group_provider.NewBindGroupProvider("Present",
		bind_group_provider.WithBuffer(r.presentSlots.params, r.params))

	sky := defaultSkybox()
	if r.pendingSkybox != nil {
		sky = *r.pendingSkybox
	}
	if r.skySampler, err = r.backend.CreateSampler("Skybox Sampler", r.skyboxSampler); err != nil {
		return err
	}
	r.kernelProvider.SetSampler(r.kernelSlots.skySampler, r.skySampler)
	return r.setSkyboxLocked(sky)
}

// defaultSkybox is a single neutral grey texel used until an environment map is set.
func defaultSkybox() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: []byte{128, 128, 128, 255},
		Width:  1,
		Height: 1,
	}
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetSkybox(data common.TextureStagingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setSkyboxLocked(data)
}

func (r *renderer) setSkyboxLocked(data common.TextureStagingData) error {
	if data.Width == 0 || data.Height == 0 || len(data.Pixels) < int(data.Width*data.Height*4) {
		return fmt.Errorf("renderer: invalid skybox of %dx%d with %d bytes", data.Width, data.Height, len(data.Pixels))
	}
	tex, view, err := r.backend.CreateSampledTexture("Skybox", data)
	if err != nil {
		return fmt.Errorf("renderer: failed to upload skybox: %w", err)
	}
	if r.skyView != nil {
		r.skyView.Release()
		r.skyTexture.Release()
	}
	r.skyTexture, r.skyView = tex, view
	r.kernelProvider.SetTextureView(r.kernelSlots.skyTexture, view)
	logger.Debugf("skybox set to %dx%d", data.Width, data.Height)

	// the kernel bind group is rebuilt by the next Bind once targets exist
	if r.rawView != nil && r.kernelProvider.BindGroup() != nil {
		return r.backend.InitBindGroup(r.kernelProvider, r.raytrace, 0)
	}
	return nil
}

func (r *renderer) CreateBuffer(label string, shape buffer.Shape) (buffer.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, err := r.backend.CreateBuffer(label, allocationSize(shape), wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	h := &gpuBuffer{label: label, shape: shape, buf: buf}
	r.buffers[h] = struct{}{}
	return h, nil
}

// allocationSize rounds a shape up to a non-empty multiple of four bytes.
func allocationSize(shape buffer.Shape) uint64 {
	size := shape.Size()
	if size < 4 {
		size = 4
	}
	return (size + 3) &^ 3
}

func (r *renderer) WriteBuffer(h buffer.Handle, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gb, err := r.owned(h)
	if err != nil {
		return err
	}
	if uint64(len(data)) > gb.shape.Size() {
		return fmt.Errorf("renderer: %d bytes do not fit %s (%d bytes)", len(data), gb.label, gb.shape.Size())
	}
	if len(data) == 0 {
		return nil
	}
	return r.backend.WriteBuffer(gb.buf, 0, data)
}

func (r *renderer) ReleaseBuffer(h buffer.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gb, err := r.owned(h)
	if err != nil {
		return
	}
	delete(r.buffers, gb)
	gb.buf.Release()
}

func (r *renderer) owned(h buffer.Handle) (*gpuBuffer, error) {
	gb, ok := h.(*gpuBuffer)
	if !ok {
		return nil, buffer.ErrUnknownHandle
	}
	if _, ok := r.buffers[gb]; !ok {
		return nil, buffer.ErrUnknownHandle
	}
	return gb, nil
}

func (r *renderer) EnsureTargets(width, height uint32) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rawView != nil && r.width == width && r.height == height {
		return false, nil
	}
	// from here on the old targets are gone, so every failure still reports a replacement
	r.releaseTargetsLocked()

	tex, view, err := r.backend.CreateStorageTexture("Raw Target", width, height, rawTargetFormat)
	if err != nil {
		return true, err
	}
	converged, err := r.backend.CreateBuffer("Converged Target", uint64(width)*uint64(height)*convergedTexelSize,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		view.Release()
		tex.Release()
		return true, err
	}
	r.rawTexture, r.rawView, r.converged = tex, view, converged
	r.width, r.height = width, height

	r.kernelProvider.SetTextureView(r.kernelSlots.raw, view)
	r.accumulateProvider.SetTextureView(r.accumulateSlots.raw, view)
	r.accumulateProvider.SetBuffer(r.accumulateSlots.converged, converged)
	r.presentProvider.SetBuffer(r.presentSlots.converged, converged)

	if err := r.backend.InitBindGroup(r.accumulateProvider, r.accumulate, 0); err != nil {
		r.releaseTargetsLocked()
		return true, err
	}
	if err := r.backend.InitBindGroup(r.presentProvider, r.present, 0); err != nil {
		r.releaseTargetsLocked()
		return true, err
	}
	return true, nil
}

func (r *renderer) WriteUniforms(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.kernelProvider, Binding: r.kernelSlots.uniforms, Data: data},
	})
}

func (r *renderer) Bind(res tracer.Resources) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rawView == nil {
		return ErrNoTargets
	}

	slots := []struct {
		binding int
		handle  buffer.Handle
	}{
		{r.kernelSlots.spheres, res.Spheres},
		{r.kernelSlots.meshObjects, res.MeshObjects},
		{r.kernelSlots.vertices, res.Vertices},
		{r.kernelSlots.indices, res.Indices},
	}
	for _, s := range slots {
		buf := r.placeholder
		if s.handle != nil {
			gb, err := r.owned(s.handle)
			if err != nil {
				return err
			}
			buf = gb.buf
		}
		r.kernelProvider.SetBuffer(s.binding, buf)
	}
	return r.backend.InitBindGroup(r.kernelProvider, r.raytrace, 0)
}

func (r *renderer) Dispatch(groupsX, groupsY uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.kernelProvider.BindGroup() == nil {
		return ErrNoTargets
	}
	return r.runCompute(r.raytrace, r.kernelProvider, groupsX, groupsY)
}

func (r *renderer) Accumulate(params []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.converged == nil {
		return ErrNoTargets
	}
	if err := r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: r.accumulateProvider, Binding: r.accumulateSlots.params, Data: params},
	}); err != nil {
		return err
	}
	return r.runCompute(r.accumulate, r.accumulateProvider,
		common.CeilDiv(r.width, tracer.TileSize), common.CeilDiv(r.height, tracer.TileSize))
}

func (r *renderer) runCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, groupsX, groupsY uint32) error {
	if err := r.backend.BeginComputeFrame(); err != nil {
		return err
	}
	r.backend.DispatchCompute(p, provider, [3]uint32{groupsX, groupsY, 1})
	return r.backend.EndComputeFrame()
}

func (r *renderer) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.presentProvider.BindGroup() == nil {
		return ErrNoTargets
	}
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.backend.DrawFullscreen(r.present, r.presentProvider)
	if err := r.backend.EndFrame(); err != nil {
		return err
	}
	r.backend.Present()
	return nil
}

func (r *renderer) ReadConverged() ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.converged == nil {
		return nil, ErrNoTargets
	}
	data, err := r.backend.ReadBuffer(r.converged, uint64(r.width)*uint64(r.height)*convergedTexelSize)
	if err != nil {
		return nil, err
	}
	return common.BytesToFloat32s(data), nil
}

func (r *renderer) ReleaseTargets() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseTargetsLocked()
}

func (r *renderer) releaseTargetsLocked() {
	// bind groups reference the targets and go first
	for _, p := range []bind_group_provider.BindGroupProvider{r.kernelProvider, r.accumulateProvider, r.presentProvider} {
		if p != nil {
			p.SetBindGroup(nil)
		}
	}
	if r.rawView != nil {
		r.rawView.Release()
		r.rawTexture.Release()
		r.rawView, r.rawTexture = nil, nil
	}
	if r.converged != nil {
		r.converged.Release()
		r.converged = nil
	}
	r.width, r.height = 0, 0
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend == nil {
		return
	}
	r.releaseTargetsLocked()

	for gb := range r.buffers {
		gb.buf.Release()
	}
	clear(r.buffers)

	for _, buf := range []*wgpu.Buffer{r.uniforms, r.params, r.placeholder} {
		if buf != nil {
			buf.Release()
		}
	}
	r.uniforms, r.params, r.placeholder = nil, nil, nil

	if r.skyView != nil {
		r.skyView.Release()
		r.skyTexture.Release()
		r.skyView, r.skyTexture = nil, nil
	}
	if r.skySampler != nil {
		r.skySampler.Release()
		r.skySampler = nil
	}

	for _, p := range []pipeline.Pipeline{r.raytrace, r.accumulate, r.present} {
		if p != nil {
			p.Release()
		}
	}

	r.backend.Release()
	r.backend = nil
}
