package buffer

import (
	"errors"
	"testing"
)

func elements(count, stride int) []byte {
	data := make([]byte, count*stride)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestReconcileAllocatesForNewSource(t *testing.T) {
	d := newFakeDevice()

	h, err := Reconcile(d, "spheres", nil, elements(3, 64), 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h == nil {
		t.Fatal("expected a live handle")
	}
	if h.Shape() != (Shape{Count: 3, Stride: 64}) {
		t.Errorf("expected shape {3 64}; got %+v", h.Shape())
	}
	if d.allocations != 1 || d.uploads != 1 {
		t.Errorf("expected 1 allocation and 1 upload; got %d and %d", d.allocations, d.uploads)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	d := newFakeDevice()
	src := elements(10, 12)

	first, err := Reconcile(d, "vertices", nil, src, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Reconcile(d, "vertices", first, src, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Error("expected the same handle to be reused")
	}
	if d.allocations != 1 {
		t.Errorf("expected exactly 1 allocation; got %d", d.allocations)
	}
	if d.uploads != 2 {
		t.Errorf("expected exactly 2 uploads; got %d", d.uploads)
	}
	if d.releases != 0 {
		t.Errorf("expected no releases; got %d", d.releases)
	}
}

func TestReconcileEmptySourceReleases(t *testing.T) {
	d := newFakeDevice()

	h, _ := Reconcile(d, "indices", nil, elements(6, 4), 4)
	h, err := Reconcile(d, "indices", h, nil, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != nil {
		t.Errorf("expected none for an empty source; got %+v", h)
	}
	if d.releases != 1 {
		t.Errorf("expected 1 release; got %d", d.releases)
	}
	if len(d.live) != 0 {
		t.Errorf("expected no live buffers; got %d", len(d.live))
	}
}

func TestReconcileEmptySourceWithoutBufferDoesNothing(t *testing.T) {
	d := newFakeDevice()

	h, err := Reconcile(d, "mesh_objects", nil, []byte{}, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != nil {
		t.Error("expected none")
	}
	if d.allocations+d.uploads+d.releases != 0 {
		t.Errorf("expected no device calls; got %d/%d/%d", d.allocations, d.uploads, d.releases)
	}
}

func TestReconcileShapeChangeReallocates(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		stride int
	}{
		{"count grows", elements(5, 12), 12},
		{"count shrinks", elements(2, 12), 12},
		{"stride changes", elements(3, 4), 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := newFakeDevice()
			old, _ := Reconcile(d, "vertices", nil, elements(3, 12), 12)

			h, err := Reconcile(d, "vertices", old, c.data, c.stride)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h == old {
				t.Error("expected a new handle after a shape change")
			}
			if !old.(*fakeHandle).freed {
				t.Error("expected the old buffer to be released")
			}
			if d.allocations != 2 || d.releases != 1 {
				t.Errorf("expected 2 allocations and 1 release; got %d and %d", d.allocations, d.releases)
			}
			want := Shape{Count: len(c.data) / c.stride, Stride: c.stride}
			if h.Shape() != want {
				t.Errorf("expected shape %+v; got %+v", want, h.Shape())
			}
		})
	}
}

func TestReconcileUploadsFullContents(t *testing.T) {
	d := newFakeDevice()
	h, _ := Reconcile(d, "indices", nil, []byte{1, 0, 0, 0, 2, 0, 0, 0}, 4)
	h, _ = Reconcile(d, "indices", h, []byte{7, 0, 0, 0, 9, 0, 0, 0}, 4)

	got := h.(*fakeHandle).data
	if got[0] != 7 || got[4] != 9 {
		t.Errorf("expected overwritten contents; got %v", got)
	}
}

func TestReconcileRejectsBadStride(t *testing.T) {
	d := newFakeDevice()

	if _, err := Reconcile(d, "x", nil, elements(1, 4), 0); !errors.Is(err, ErrStrideInvalid) {
		t.Errorf("expected ErrStrideInvalid; got %v", err)
	}
	if _, err := Reconcile(d, "x", nil, make([]byte, 10), 4); !errors.Is(err, ErrStrideMismatch) {
		t.Errorf("expected ErrStrideMismatch; got %v", err)
	}
	if d.allocations != 0 {
		t.Errorf("expected no allocations; got %d", d.allocations)
	}
}

func TestReconcileAllocationFailureLeavesSlotUnbound(t *testing.T) {
	d := newFakeDevice()
	old, _ := Reconcile(d, "spheres", nil, elements(1, 64), 64)
	d.failCreate = true

	h, err := Reconcile(d, "spheres", old, elements(2, 64), 64)
	if err == nil {
		t.Fatal("expected an allocation error")
	}
	if h != nil {
		t.Error("expected no handle after a failed allocation")
	}
	if !old.(*fakeHandle).freed {
		t.Error("expected the mismatched buffer to be released")
	}
}
