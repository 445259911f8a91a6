// Package skybox turns environment images into the RGBA8 staging data the renderer samples when
// a ray leaves the scene. Images are equirectangular: row 0 is the zenith and the last row the
// nadir. PNG, JPEG, BMP, TIFF and WebP files are recognised by content.
package skybox

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine/log"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var logger = log.New("skybox")

// ErrEmptyImage is returned for an image with no pixels.
var ErrEmptyImage = errors.New("skybox: image has no pixels")

// DefaultMaxWidth is the widest environment map uploaded when WithMaxWidth is not given.
const DefaultMaxWidth = 4096

// Load decodes an environment image from disk.
//
// Parameters:
//   - path: the image file
//   - options: functional options controlling the conversion
//
// Returns:
//   - common.TextureStagingData: RGBA8 pixels ready for upload
//   - error: error if the file cannot be opened or decoded
func Load(path string, options ...SkyboxBuilderOption) (common.TextureStagingData, error) {
	f, err := os.Open(path)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("skybox: failed to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := Decode(f, options...)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// Decode decodes an environment image from a reader and converts it to RGBA8, downscaling it
// to the configured maximum width while keeping its aspect ratio.
//
// Parameters:
//   - r: the encoded image
//   - options: functional options controlling the conversion
//
// Returns:
//   - common.TextureStagingData: RGBA8 pixels ready for upload
//   - error: error if decoding fails
func Decode(r io.Reader, options ...SkyboxBuilderOption) (common.TextureStagingData, error) {
	cfg := newConfig(options...)

	img, format, err := image.Decode(r)
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("skybox: failed to decode image: %w", err)
	}
	src := img.Bounds()
	if src.Empty() {
		return common.TextureStagingData{}, ErrEmptyImage
	}

	dst := image.Rect(0, 0, src.Dx(), src.Dy())
	if cfg.maxWidth > 0 && src.Dx() > cfg.maxWidth {
		h := max(src.Dy()*cfg.maxWidth/src.Dx(), 1)
		dst = image.Rect(0, 0, cfg.maxWidth, h)
		logger.Infof("downscaling %s skybox from %dx%d to %dx%d", format, src.Dx(), src.Dy(), dst.Dx(), dst.Dy())
	}

	rgba := image.NewRGBA(dst)
	if dst.Size() == src.Size() {
		xdraw.Draw(rgba, dst, img, src.Min, xdraw.Src)
	} else {
		cfg.scaler.Scale(rgba, dst, img, src, xdraw.Src, nil)
	}

	return common.TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(dst.Dx()),
		Height: uint32(dst.Dy()),
	}, nil
}

// Gradient builds a procedural sky: zenith fading to horizon over the upper half and horizon
// fading to ground over the lower half. A single column is enough since the sky does not vary
// with azimuth.
//
// Parameters:
//   - height: the number of rows, at least 2
//   - zenith: the colour straight up
//   - horizon: the colour at the horizon
//   - ground: the colour straight down
//
// Returns:
//   - common.TextureStagingData: RGBA8 pixels ready for upload
func Gradient(height int, zenith, horizon, ground color.RGBA) common.TextureStagingData {
	height = max(height, 2)
	img := image.NewRGBA(image.Rect(0, 0, 1, height))
	half := float64(height-1) / 2
	for y := range height {
		var c color.RGBA
		if fy := float64(y); fy <= half {
			c = lerpRGBA(zenith, horizon, fy/half)
		} else {
			c = lerpRGBA(horizon, ground, (fy-half)/half)
		}
		img.SetRGBA(0, y, c)
	}

	return common.TextureStagingData{
		Pixels: img.Pix,
		Width:  1,
		Height: uint32(height),
	}
}

// DefaultGradient is the sky used when no environment image is given.
//
// Returns:
//   - common.TextureStagingData: RGBA8 pixels ready for upload
func DefaultGradient() common.TextureStagingData {
	return Gradient(256,
		color.RGBA{R: 70, G: 120, B: 200, A: 255},
		color.RGBA{R: 225, G: 230, B: 240, A: 255},
		color.RGBA{R: 60, G: 55, B: 50, A: 255},
	)
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}
