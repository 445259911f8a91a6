package tracer

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/buffer"
)

var errUnboundTargets = errors.New("fake: targets not bound")

type fakeHandle struct {
	label string
	shape buffer.Shape
	freed bool
}

func (h *fakeHandle) Label() string       { return h.label }
func (h *fakeHandle) Shape() buffer.Shape { return h.shape }

// fakeDevice traces on the CPU: every dispatch fills the raw target with the value returned by
// sample, and Accumulate applies the blend weights exactly like the accumulate kernel.
type fakeDevice struct {
	width, height uint32
	raw           []float32
	converged     []float32

	sample     func(dispatch int) float32
	dispatches int
	groups     [][2]uint32
	binds      []Resources
	uniforms   [][]byte
	presents   int

	allocations int
	releases    int
	live        map[*fakeHandle]struct{}
	targetsFree bool

	// targetsErr fails the next reallocation after the new targets exist, like a bind group
	// that could not be created for them.
	targetsErr error
	// targetsBound is cleared by every reallocation and set again by Bind.
	targetsBound bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		sample: func(n int) float32 { return float32(n) },
		live:   make(map[*fakeHandle]struct{}),
	}
}

func (d *fakeDevice) CreateBuffer(label string, shape buffer.Shape) (buffer.Handle, error) {
	h := &fakeHandle{label: label, shape: shape}
	d.allocations++
	d.live[h] = struct{}{}
	return h, nil
}

func (d *fakeDevice) WriteBuffer(h buffer.Handle, data []byte) error {
	if h.(*fakeHandle).freed {
		return buffer.ErrUnknownHandle
	}
	return nil
}

func (d *fakeDevice) ReleaseBuffer(h buffer.Handle) {
	fh := h.(*fakeHandle)
	fh.freed = true
	d.releases++
	delete(d.live, fh)
}

func (d *fakeDevice) EnsureTargets(width, height uint32) (bool, error) {
	if width == d.width && height == d.height && d.raw != nil {
		return false, nil
	}
	d.width, d.height = width, height
	d.raw = make([]float32, width*height*4)
	d.converged = make([]float32, width*height*4)
	d.targetsBound = false
	if err := d.targetsErr; err != nil {
		d.targetsErr = nil
		return true, err
	}
	return true, nil
}

func (d *fakeDevice) WriteUniforms(data []byte) error {
	d.uniforms = append(d.uniforms, append([]byte(nil), data...))
	return nil
}

func (d *fakeDevice) Bind(res Resources) error {
	d.binds = append(d.binds, res)
	d.targetsBound = true
	return nil
}

func (d *fakeDevice) Dispatch(groupsX, groupsY uint32) error {
	if !d.targetsBound {
		return errUnboundTargets
	}
	d.dispatches++
	d.groups = append(d.groups, [2]uint32{groupsX, groupsY})
	v := d.sample(d.dispatches)
	for i := range d.raw {
		d.raw[i] = v
	}
	return nil
}

func (d *fakeDevice) Accumulate(params []byte) error {
	prior := math.Float32frombits(binary.LittleEndian.Uint32(params[0:]))
	sample := math.Float32frombits(binary.LittleEndian.Uint32(params[4:]))
	for i := range d.converged {
		d.converged[i] = d.converged[i]*prior + d.raw[i]*sample
	}
	return nil
}

func (d *fakeDevice) Present() error {
	d.presents++
	return nil
}

func (d *fakeDevice) ReadConverged() ([]float32, error) {
	return append([]float32(nil), d.converged...), nil
}

func (d *fakeDevice) ReleaseTargets() {
	d.targetsFree = true
	d.raw, d.converged = nil, nil
}

func (d *fakeDevice) lastUniforms() []byte {
	return d.uniforms[len(d.uniforms)-1]
}

func (d *fakeDevice) lastBind() Resources {
	return d.binds[len(d.binds)-1]
}
