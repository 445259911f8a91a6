package skybox

import xdraw "golang.org/x/image/draw"

type config struct {
	maxWidth int
	scaler   xdraw.Scaler
}

func newConfig(options ...SkyboxBuilderOption) *config {
	cfg := &config{
		maxWidth: DefaultMaxWidth,
		scaler:   xdraw.CatmullRom,
	}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

// SkyboxBuilderOption is a functional option for configuring how an environment image is
// converted.
type SkyboxBuilderOption func(*config)

// WithMaxWidth sets the widest image that is uploaded unscaled. Zero or less disables
// downscaling.
//
// Parameters:
//   - width: the maximum width in pixels
//
// Returns:
//   - SkyboxBuilderOption: functional option to set the maximum width
func WithMaxWidth(width int) SkyboxBuilderOption {
	return func(c *config) {
		c.maxWidth = width
	}
}

// WithScaler sets the resampling kernel used when downscaling.
//
// Parameters:
//   - scaler: the scaler, for example draw.ApproxBiLinear for speed
//
// Returns:
//   - SkyboxBuilderOption: functional option to set the scaler
func WithScaler(scaler xdraw.Scaler) SkyboxBuilderOption {
	return func(c *config) {
		if scaler != nil {
			c.scaler = scaler
		}
	}
}
