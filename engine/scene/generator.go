package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrRadiusRange is returned when the radius range is empty or not positive.
	ErrRadiusRange = errors.New("scene: radius range must satisfy 0 < min <= max")

	// ErrSphereCount is returned for a negative sphere budget.
	ErrSphereCount = errors.New("scene: max spheres must not be negative")

	// ErrPlacementRadius is returned for a negative placement disc radius.
	ErrPlacementRadius = errors.New("scene: placement radius must not be negative")
)

const (
	// DefaultRadiusMin is the smallest generated sphere radius.
	DefaultRadiusMin float32 = 5

	// DefaultRadiusMax is the largest generated sphere radius.
	DefaultRadiusMax float32 = 30

	// DefaultMaxSpheres is the number of placement attempts per generation.
	DefaultMaxSpheres = 10000

	// DefaultPlacementRadius is the radius of the disc sphere centres are placed in.
	DefaultPlacementRadius float32 = 100

	// DefaultSeed seeds the generation stream.
	DefaultSeed uint64 = 1223832719

	// diffuseMetalChance is the share of spheres that reflect rather than emit.
	diffuseMetalChance = 0.8

	// metalChance splits the reflective share evenly between metal and diffuse.
	metalChance = 0.4

	// diffuseSpecular is the fixed specular reflectance of diffuse spheres.
	diffuseSpecular float32 = 0.04

	emissionMin float32 = 3
	emissionMax float32 = 8
)

// GeneratorConfig holds the options recognised by procedural sphere generation.
type GeneratorConfig struct {
	RadiusMin       float32
	RadiusMax       float32
	MaxSpheres      int
	PlacementRadius float32
	Seed            uint64
}

// DefaultGeneratorConfig returns the default generation options.
//
// Returns:
//   - GeneratorConfig: radius [5, 30], 10000 attempts, placement radius 100, seed 1223832719
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		RadiusMin:       DefaultRadiusMin,
		RadiusMax:       DefaultRadiusMax,
		MaxSpheres:      DefaultMaxSpheres,
		PlacementRadius: DefaultPlacementRadius,
		Seed:            DefaultSeed,
	}
}

// Validate reports the first invalid option.
//
// Returns:
//   - error: nil, ErrRadiusRange, ErrSphereCount or ErrPlacementRadius
func (c GeneratorConfig) Validate() error {
	if c.RadiusMin <= 0 || c.RadiusMax < c.RadiusMin {
		return fmt.Errorf("%w: got [%g, %g]", ErrRadiusRange, c.RadiusMin, c.RadiusMax)
	}
	if c.MaxSpheres < 0 {
		return fmt.Errorf("%w: got %d", ErrSphereCount, c.MaxSpheres)
	}
	if c.PlacementRadius < 0 {
		return fmt.Errorf("%w: got %g", ErrPlacementRadius, c.PlacementRadius)
	}
	return nil
}

// GenerateSpheres places non-overlapping spheres on the ground plane.
//
// Exactly cfg.MaxSpheres candidates are drawn. A candidate that overlaps any previously accepted
// sphere is discarded without a retry, so the result holds at most cfg.MaxSpheres spheres. Values
// are drawn from rng in a fixed order, so the same stream state always yields the same set.
//
// Parameters:
//   - cfg: the generation options, assumed valid
//   - rng: the random stream to consume
//
// Returns:
//   - []Sphere: the accepted spheres in acceptance order
func GenerateSpheres(cfg GeneratorConfig, rng Random) []Sphere {
	spheres := make([]Sphere, 0, min(cfg.MaxSpheres, 1024))

	for range cfg.MaxSpheres {
		radius := cfg.RadiusMin + rng.Float32()*(cfg.RadiusMax-cfg.RadiusMin)
		disc := insideUnitCircle(rng).Mul(cfg.PlacementRadius)
		position := mgl32.Vec3{disc[0], radius, disc[1]}

		if overlapsAny(spheres, position, radius) {
			continue
		}

		sphere := Sphere{Position: position, Radius: radius}
		color := randomHSV(rng, 0, 1, 0, 1, 0, 1)
		chance := rng.Float32()
		if chance < diffuseMetalChance {
			if chance < metalChance {
				sphere.Specular = color
			} else {
				sphere.Albedo = color
				sphere.Specular = mgl32.Vec3{diffuseSpecular, diffuseSpecular, diffuseSpecular}
			}
			sphere.Smoothness = rng.Float32()
		} else {
			sphere.Emission = randomHSV(rng, 0, 1, 0, 1, emissionMin, emissionMax)
		}
		spheres = append(spheres, sphere)
	}
	return spheres
}

func overlapsAny(accepted []Sphere, position mgl32.Vec3, radius float32) bool {
	for i := range accepted {
		minDist := radius + accepted[i].Radius
		d := position.Sub(accepted[i].Position)
		if d.Dot(d) < minDist*minDist {
			return true
		}
	}
	return false
}

// insideUnitCircle draws a point uniformly distributed over the unit disc.
func insideUnitCircle(rng Random) mgl32.Vec2 {
	angle := 2 * math.Pi * float64(rng.Float32())
	r := math.Sqrt(float64(rng.Float32()))
	return mgl32.Vec2{float32(r * math.Cos(angle)), float32(r * math.Sin(angle))}
}

// randomHSV draws hue, saturation and value in that order and returns the colour as RGB.
// Values above one scale the colour beyond unit intensity.
func randomHSV(rng Random, hMin, hMax, sMin, sMax, vMin, vMax float32) mgl32.Vec3 {
	h := hMin + rng.Float32()*(hMax-hMin)
	s := sMin + rng.Float32()*(sMax-sMin)
	v := vMin + rng.Float32()*(vMax-vMin)
	return hsvToRGB(h, s, v)
}

func hsvToRGB(h, s, v float32) mgl32.Vec3 {
	if s <= 0 {
		return mgl32.Vec3{v, v, v}
	}
	h6 := float64(h) * 6
	sector := math.Floor(h6)
	f := float32(h6 - sector)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch int(sector) % 6 {
	case 0:
		return mgl32.Vec3{v, t, p}
	case 1:
		return mgl32.Vec3{q, v, p}
	case 2:
		return mgl32.Vec3{p, v, t}
	case 3:
		return mgl32.Vec3{p, q, v}
	case 4:
		return mgl32.Vec3{t, p, v}
	default:
		return mgl32.Vec3{v, p, q}
	}
}

// Summary describes the outcome of one sphere generation.
type Summary struct {
	Attempts int
	Accepted int
	Rejected int
	Diffuse  int
	Metal    int
	Emissive int
}

// Summarize classifies a generated sphere set by material.
//
// Parameters:
//   - spheres: the generated set
//   - attempts: the number of candidates drawn to produce it
//
// Returns:
//   - Summary: acceptance and material counts
func Summarize(spheres []Sphere, attempts int) Summary {
	s := Summary{Attempts: attempts, Accepted: len(spheres), Rejected: attempts - len(spheres)}
	for i := range spheres {
		switch {
		case spheres[i].Emissive():
			s.Emissive++
		case spheres[i].Metal():
			s.Metal++
		default:
			s.Diffuse++
		}
	}
	return s
}
