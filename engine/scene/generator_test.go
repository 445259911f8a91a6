package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func TestGenerateSpheresNoOverlap(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.MaxSpheres = 2000
	spheres := GenerateSpheres(cfg, NewRandom(cfg.Seed))

	if len(spheres) == 0 {
		t.Fatal("expected at least one accepted sphere")
	}
	for i := range spheres {
		for j := i + 1; j < len(spheres); j++ {
			d := spheres[i].Position.Sub(spheres[j].Position)
			minDist := spheres[i].Radius + spheres[j].Radius
			if d.Dot(d) < minDist*minDist {
				t.Fatalf("spheres %d and %d overlap", i, j)
			}
		}
	}
}

func TestGenerateSpheresDeterministic(t *testing.T) {
	cfg := GeneratorConfig{RadiusMin: 5, RadiusMax: 30, PlacementRadius: 100, MaxSpheres: 10000, Seed: DefaultSeed}

	first := GenerateSpheres(cfg, NewRandom(cfg.Seed))
	second := GenerateSpheres(cfg, NewRandom(cfg.Seed))

	if len(first) > cfg.MaxSpheres {
		t.Fatalf("accepted %d spheres from %d attempts", len(first), cfg.MaxSpheres)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("generation is not deterministic (-first +second):\n%s", diff)
	}
}

func TestGenerateSpheresRestOnGroundInsideDisc(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.MaxSpheres = 500
	for i, s := range GenerateSpheres(cfg, NewRandom(7)) {
		if s.Radius < cfg.RadiusMin || s.Radius > cfg.RadiusMax {
			t.Errorf("sphere %d radius %g outside [%g, %g]", i, s.Radius, cfg.RadiusMin, cfg.RadiusMax)
		}
		if s.Position.Y() != s.Radius {
			t.Errorf("sphere %d does not rest on the ground: y=%g r=%g", i, s.Position.Y(), s.Radius)
		}
		if r := (mgl32.Vec2{s.Position.X(), s.Position.Z()}).Len(); r > cfg.PlacementRadius+1e-3 {
			t.Errorf("sphere %d placed outside the disc at distance %g", i, r)
		}
	}
}

func TestGenerateSpheresMaterials(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.RadiusMin, cfg.RadiusMax = 0.1, 0.1
	cfg.PlacementRadius = 1000
	cfg.MaxSpheres = 3000

	spheres := GenerateSpheres(cfg, NewRandom(42))
	for i, s := range spheres {
		switch {
		case s.Emissive():
			if s.Albedo != (mgl32.Vec3{}) || s.Specular != (mgl32.Vec3{}) {
				t.Errorf("emissive sphere %d has reflectance", i)
			}
			if m := max(s.Emission[0], s.Emission[1], s.Emission[2]); m < emissionMin || m > emissionMax {
				t.Errorf("emissive sphere %d brightest channel %g outside [%g, %g]", i, m, emissionMin, emissionMax)
			}
		case s.Metal():
			if s.Smoothness < 0 || s.Smoothness >= 1 {
				t.Errorf("metal sphere %d smoothness %g", i, s.Smoothness)
			}
		default:
			want := mgl32.Vec3{diffuseSpecular, diffuseSpecular, diffuseSpecular}
			if s.Specular != want {
				t.Errorf("diffuse sphere %d specular %v; want %v", i, s.Specular, want)
			}
		}
	}

	sum := Summarize(spheres, cfg.MaxSpheres)
	if sum.Diffuse+sum.Metal+sum.Emissive != sum.Accepted {
		t.Errorf("material counts do not add up: %+v", sum)
	}
	// With 3000 samples each branch is populated well away from zero.
	if sum.Emissive == 0 || sum.Metal == 0 || sum.Diffuse == 0 {
		t.Errorf("expected every material branch to be drawn: %+v", sum)
	}
}

func TestGenerateSpheresAttemptBudget(t *testing.T) {
	cfg := GeneratorConfig{RadiusMin: 5, RadiusMax: 5, PlacementRadius: 0, MaxSpheres: 50, Seed: 1}

	spheres := GenerateSpheres(cfg, NewRandom(cfg.Seed))
	if len(spheres) != 1 {
		t.Fatalf("expected a single sphere when every candidate shares a centre; got %d", len(spheres))
	}
	sum := Summarize(spheres, cfg.MaxSpheres)
	if sum.Rejected != 49 {
		t.Errorf("expected 49 rejections; got %d", sum.Rejected)
	}
}

func TestGenerateSpheresZeroBudget(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.MaxSpheres = 0
	if got := GenerateSpheres(cfg, NewRandom(1)); len(got) != 0 {
		t.Errorf("expected no spheres; got %d", len(got))
	}
}

func TestGeneratorConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*GeneratorConfig)
		want error
	}{
		{"defaults", func(*GeneratorConfig) {}, nil},
		{"inverted radius", func(c *GeneratorConfig) { c.RadiusMin, c.RadiusMax = 10, 5 }, ErrRadiusRange},
		{"zero radius", func(c *GeneratorConfig) { c.RadiusMin = 0 }, ErrRadiusRange},
		{"negative count", func(c *GeneratorConfig) { c.MaxSpheres = -1 }, ErrSphereCount},
		{"negative placement", func(c *GeneratorConfig) { c.PlacementRadius = -1 }, ErrPlacementRadius},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultGeneratorConfig()
			c.mod(&cfg)
			if err := cfg.Validate(); !errors.Is(err, c.want) {
				t.Errorf("expected %v; got %v", c.want, err)
			}
		})
	}
}

func TestHSVToRGB(t *testing.T) {
	cases := []struct {
		h, s, v float32
		want    mgl32.Vec3
	}{
		{0, 1, 1, mgl32.Vec3{1, 0, 0}},
		{1.0 / 3, 1, 1, mgl32.Vec3{0, 1, 0}},
		{2.0 / 3, 1, 1, mgl32.Vec3{0, 0, 1}},
		{0.5, 0, 0.25, mgl32.Vec3{0.25, 0.25, 0.25}},
		{0, 1, 4, mgl32.Vec3{4, 0, 0}},
	}
	for _, c := range cases {
		got := hsvToRGB(c.h, c.s, c.v)
		if !got.ApproxEqualThreshold(c.want, 1e-5) {
			t.Errorf("hsvToRGB(%g, %g, %g) = %v; want %v", c.h, c.s, c.v, got, c.want)
		}
	}
}

func TestMarshalSpheresLayout(t *testing.T) {
	s := Sphere{
		Position:   mgl32.Vec3{1, 2, 3},
		Radius:     4,
		Albedo:     mgl32.Vec3{5, 6, 7},
		Smoothness: 8,
		Specular:   mgl32.Vec3{9, 10, 11},
		Emission:   mgl32.Vec3{12, 13, 14},
	}
	buf := MarshalSpheres([]Sphere{s, s})
	if len(buf) != 2*SphereStride {
		t.Fatalf("expected %d bytes; got %d", 2*SphereStride, len(buf))
	}
	got := floats(buf[SphereStride:])
	want := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 12, 13, 14, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sphere layout mismatch (-want +got):\n%s", diff)
	}
	if MarshalSpheres(nil) != nil {
		t.Error("expected nil bytes for an empty set")
	}
}
