// Package buffer owns the lifecycle of device-resident structured buffers. Allocation decisions are made
// from the shape of the source data alone, independent of when that data changes.
package buffer

import "errors"

var (
	// ErrStrideInvalid is returned when a reconcile is requested with a non-positive element stride.
	ErrStrideInvalid = errors.New("buffer: element stride must be positive")

	// ErrStrideMismatch is returned when the source byte length is not a whole number of elements.
	ErrStrideMismatch = errors.New("buffer: source length is not a multiple of the element stride")

	// ErrUnknownHandle is returned by a Device asked to operate on a handle it did not create.
	ErrUnknownHandle = errors.New("buffer: handle was not created by this device")
)

// Shape describes the layout of a structured buffer.
type Shape struct {
	// Count is the number of elements.
	Count int
	// Stride is the size of one element in bytes.
	Stride int
}

// Size returns the byte size of a buffer with this shape.
//
// Returns:
//   - uint64: Count * Stride
func (s Shape) Size() uint64 {
	return uint64(s.Count) * uint64(s.Stride)
}

// Handle is an opaque reference to a live device buffer. A nil Handle means "none": the slot is unbound.
type Handle interface {
	// Label returns the debug label the buffer was created with.
	//
	// Returns:
	//   - string: the buffer label
	Label() string

	// Shape returns the element count and stride the buffer was allocated for.
	//
	// Returns:
	//   - Shape: the allocated shape
	Shape() Shape
}

// Device allocates, fills and frees structured buffers. The GPU renderer implements it for real
// device memory and tests implement it with counters.
type Device interface {
	// CreateBuffer allocates a buffer sized for shape.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - shape: the element count and stride to allocate for
	//
	// Returns:
	//   - Handle: the new live buffer
	//   - error: an error if the allocation failed
	CreateBuffer(label string, shape Shape) (Handle, error)

	// WriteBuffer overwrites the buffer contents starting at offset zero.
	//
	// Parameters:
	//   - h: the live buffer to write
	//   - data: the bytes to upload
	//
	// Returns:
	//   - error: an error if the upload could not be queued
	WriteBuffer(h Handle, data []byte) error

	// ReleaseBuffer frees the buffer. The handle must not be used afterwards.
	//
	// Parameters:
	//   - h: the buffer to release
	ReleaseBuffer(h Handle)
}
