package tracer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// ErrNoImage is returned by Snapshot before the first frame was rendered.
var ErrNoImage = errors.New("tracer: no converged image yet")

// ErrUnknownFormat is returned for snapshot paths with an unsupported extension.
var ErrUnknownFormat = errors.New("tracer: unknown snapshot format")

// Image is a linear high dynamic range RGBA image read back from the converged target.
type Image struct {
	Width   int
	Height  int
	Samples uint32

	// Pix holds Width*Height RGBA texels in row-major order, top row first.
	Pix []float32
}

func (t *tracer) Snapshot() (*Image, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return nil, ErrReleased
	}
	if t.acc.sampleIndex == 0 || t.width == 0 || t.height == 0 {
		return nil, ErrNoImage
	}
	pix, err := t.device.ReadConverged()
	if err != nil {
		return nil, fmt.Errorf("tracer: readback failed: %w", err)
	}
	if want := int(t.width) * int(t.height) * 4; len(pix) < want {
		return nil, fmt.Errorf("tracer: readback returned %d values, want %d", len(pix), want)
	}
	return &Image{Width: int(t.width), Height: int(t.height), Samples: t.acc.sampleIndex, Pix: pix}, nil
}

// At returns the linear colour of one texel.
func (img *Image) At(x, y int) [4]float32 {
	i := (y*img.Width + x) * 4
	return [4]float32{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

// displayValue maps a linear channel to display space by clamping and gamma encoding.
// The present shader applies the same curve.
func displayValue(v float32) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Pow(math.Min(float64(v), 1), 1/2.2)
}

// NRGBA converts the image to 8-bit display space.
//
// Returns:
//   - *image.NRGBA: the opaque display image
func (img *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := range img.Height {
		for x := range img.Width {
			c := img.At(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(math.Round(displayValue(c[0]) * 255)),
				G: uint8(math.Round(displayValue(c[1]) * 255)),
				B: uint8(math.Round(displayValue(c[2]) * 255)),
				A: 255,
			})
		}
	}
	return out
}

// NRGBA64 converts the image to 16-bit display space.
//
// Returns:
//   - *image.NRGBA64: the opaque display image
func (img *Image) NRGBA64() *image.NRGBA64 {
	out := image.NewNRGBA64(image.Rect(0, 0, img.Width, img.Height))
	for y := range img.Height {
		for x := range img.Width {
			c := img.At(x, y)
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(math.Round(displayValue(c[0]) * 65535)),
				G: uint16(math.Round(displayValue(c[1]) * 65535)),
				B: uint16(math.Round(displayValue(c[2]) * 65535)),
				A: 65535,
			})
		}
	}
	return out
}

// Encode writes the image as PNG (8-bit) or TIFF (16-bit, deflate).
//
// Parameters:
//   - w: the destination
//   - format: "png" or "tiff"
//
// Returns:
//   - error: ErrUnknownFormat or an encoder error
func (img *Image) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "png":
		return png.Encode(w, img.NRGBA())
	case "tif", "tiff":
		return tiff.Encode(w, img.NRGBA64(), &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save writes the image to path, choosing the format from the file extension.
//
// Parameters:
//   - path: the output file, ending in .png, .tif or .tiff
//
// Returns:
//   - error: ErrUnknownFormat, a file error or an encoder error
func (img *Image) Save(path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	switch strings.ToLower(format) {
	case "png", "tif", "tiff":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tracer: failed to create snapshot: %w", err)
	}
	if err := img.Encode(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
