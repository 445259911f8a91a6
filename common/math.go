package common

import (
	"encoding/binary"
	"math"
)

// BytesToFloat32s decodes little-endian float32 values from a byte slice.
// Trailing bytes that do not form a whole value are ignored.
//
// Parameters:
//   - data: the raw bytes, typically read back from a GPU buffer
//
// Returns:
//   - []float32: the decoded values
func BytesToFloat32s(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

// PutFloat32s writes values as little-endian float32s into buf starting at offset.
//
// Parameters:
//   - buf: destination buffer, must hold offset+4*len(values) bytes
//   - offset: byte offset of the first value
//   - values: the values to write
//
// Returns:
//   - int: the byte offset just past the last written value
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// PutUint32s writes values as little-endian uint32s into buf starting at offset.
//
// Parameters:
//   - buf: destination buffer, must hold offset+4*len(values) bytes
//   - offset: byte offset of the first value
//   - values: the values to write
//
// Returns:
//   - int: the byte offset just past the last written value
func PutUint32s(buf []byte, offset int, values ...uint32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:], v)
		offset += 4
	}
	return offset
}

// CeilDiv returns the number of groups of size group needed to cover n items.
//
// Parameters:
//   - n: the number of items
//   - group: the group size, must be positive
//
// Returns:
//   - uint32: ceil(n / group)
func CeilDiv(n, group uint32) uint32 {
	return (n + group - 1) / group
}
