package buffer

import "fmt"

// Reconcile brings a buffer in line with its source data and returns the handle to use from now on.
//
// An empty source releases any existing buffer and returns nil ("none"). A live buffer whose count or
// stride differs from the source is released and replaced. When a live buffer remains it always
// receives the full source contents, so calling Reconcile twice with the same data allocates once
// and uploads twice.
//
// Parameters:
//   - d: the device that owns the buffer memory
//   - label: the debug label used for a new allocation
//   - existing: the current handle, or nil when none is live
//   - data: the source bytes, a whole number of elements
//   - stride: the element size in bytes
//
// Returns:
//   - Handle: the live handle after reconciling, or nil when the source is empty
//   - error: an error if the stride is invalid or the device failed; existing is released before a failed allocation
func Reconcile(d Device, label string, existing Handle, data []byte, stride int) (Handle, error) {
	if stride <= 0 {
		return existing, ErrStrideInvalid
	}
	if len(data)%stride != 0 {
		return existing, fmt.Errorf("%w: %d bytes with stride %d", ErrStrideMismatch, len(data), stride)
	}

	want := Shape{Count: len(data) / stride, Stride: stride}

	if want.Count == 0 {
		if existing != nil {
			d.ReleaseBuffer(existing)
		}
		return nil, nil
	}

	if existing != nil && existing.Shape() != want {
		d.ReleaseBuffer(existing)
		existing = nil
	}

	if existing == nil {
		created, err := d.CreateBuffer(label, want)
		if err != nil {
			return nil, fmt.Errorf("buffer: failed to allocate %q (%d x %d bytes): %w", label, want.Count, want.Stride, err)
		}
		existing = created
	}

	if err := d.WriteBuffer(existing, data); err != nil {
		return existing, fmt.Errorf("buffer: failed to upload %q: %w", label, err)
	}
	return existing, nil
}
