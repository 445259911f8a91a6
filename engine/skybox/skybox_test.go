package skybox

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	return img
}

func TestDecodeFormats(t *testing.T) {
	src := checker(8, 4)
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"bmp":  func(b *bytes.Buffer) error { return bmp.Encode(b, src) },
		"tiff": func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) },
	}

	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := encode(&buf); err != nil {
				t.Fatal(err)
			}
			got, err := Decode(&buf)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Width != 8 || got.Height != 4 {
				t.Fatalf("size = %dx%d, want 8x4", got.Width, got.Height)
			}
			if !bytes.Equal(got.Pixels, src.Pix) {
				t.Error("lossless round trip changed pixels")
			}
		})
	}
}

func TestDecodeDownscalesKeepingAspect(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, checker(64, 32)); err != nil {
		t.Fatal(err)
	}

	got, err := Decode(&buf, WithMaxWidth(16), WithScaler(xdraw.ApproxBiLinear))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Width != 16 || got.Height != 8 {
		t.Errorf("size = %dx%d, want 16x8", got.Width, got.Height)
	}
	if len(got.Pixels) != 16*8*4 {
		t.Errorf("len(Pixels) = %d, want %d", len(got.Pixels), 16*8*4)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(strings.NewReader("not an image")); err == nil {
		t.Error("Decode() accepted garbage")
	}
	if _, err := Load("does-not-exist.png"); err == nil {
		t.Error("Load() accepted a missing file")
	}
}

func TestGradientEndpoints(t *testing.T) {
	zenith := color.RGBA{R: 10, G: 20, B: 200, A: 255}
	horizon := color.RGBA{R: 250, G: 250, B: 250, A: 255}
	ground := color.RGBA{R: 40, G: 30, B: 20, A: 255}

	sky := Gradient(5, zenith, horizon, ground)
	if sky.Width != 1 || sky.Height != 5 || len(sky.Pixels) != 20 {
		t.Fatalf("gradient is %dx%d with %d bytes", sky.Width, sky.Height, len(sky.Pixels))
	}

	row := func(y int) color.RGBA {
		p := sky.Pixels[y*4 : y*4+4]
		return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
	}
	if row(0) != zenith || row(2) != horizon || row(4) != ground {
		t.Errorf("rows = %v %v %v, want zenith, horizon, ground", row(0), row(2), row(4))
	}
	if Gradient(0, zenith, horizon, ground).Height != 2 {
		t.Error("gradient height should be clamped to 2")
	}
}
