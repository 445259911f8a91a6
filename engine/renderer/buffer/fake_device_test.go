package buffer

import "errors"

type fakeHandle struct {
	id    int
	label string
	shape Shape
	data  []byte
	freed bool
}

func (h *fakeHandle) Label() string { return h.label }
func (h *fakeHandle) Shape() Shape  { return h.shape }

// fakeDevice records every call so tests can assert on allocation behaviour without a GPU.
type fakeDevice struct {
	nextID      int
	allocations int
	uploads     int
	releases    int
	live        map[int]*fakeHandle
	failCreate  bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{live: make(map[int]*fakeHandle)}
}

func (d *fakeDevice) CreateBuffer(label string, shape Shape) (Handle, error) {
	if d.failCreate {
		return nil, errors.New("out of memory")
	}
	d.nextID++
	d.allocations++
	h := &fakeHandle{id: d.nextID, label: label, shape: shape}
	d.live[h.id] = h
	return h, nil
}

func (d *fakeDevice) WriteBuffer(h Handle, data []byte) error {
	fh, ok := h.(*fakeHandle)
	if !ok || fh.freed {
		return ErrUnknownHandle
	}
	if uint64(len(data)) > fh.shape.Size() {
		return errors.New("write overflows buffer")
	}
	d.uploads++
	fh.data = append(fh.data[:0], data...)
	return nil
}

func (d *fakeDevice) ReleaseBuffer(h Handle) {
	fh := h.(*fakeHandle)
	fh.freed = true
	d.releases++
	delete(d.live, fh.id)
}
