package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-rt/engine/loader"
	"github.com/Carmen-Shannon/oxy-rt/engine/model"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// generatorFlags are shared by every command that builds a sphere field.
func generatorFlags() []cli.Flag {
	return []cli.Flag{
		cli.Float64Flag{
			Name:  "radius-min",
			Value: float64(scene.DefaultRadiusMin),
			Usage: "smallest sphere radius",
		},
		cli.Float64Flag{
			Name:  "radius-max",
			Value: float64(scene.DefaultRadiusMax),
			Usage: "largest sphere radius",
		},
		cli.IntFlag{
			Name:  "spheres",
			Value: scene.DefaultMaxSpheres,
			Usage: "number of placement attempts; overlapping candidates are dropped",
		},
		cli.Float64Flag{
			Name:  "placement",
			Value: float64(scene.DefaultPlacementRadius),
			Usage: "radius of the ground disc spheres are placed on",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Value: scene.DefaultSeed,
			Usage: "seed of the generation stream",
		},
	}
}

// generatorConfig reads and validates the generator flags.
func generatorConfig(ctx *cli.Context) (scene.GeneratorConfig, error) {
	cfg := scene.GeneratorConfig{
		RadiusMin:       float32(ctx.Float64("radius-min")),
		RadiusMax:       float32(ctx.Float64("radius-max")),
		MaxSpheres:      ctx.Int("spheres"),
		PlacementRadius: float32(ctx.Float64("placement")),
		Seed:            ctx.Uint64("seed"),
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ShowScene generates a sphere field and prints its summary.
func ShowScene(ctx *cli.Context) error {
	cfg, err := generatorConfig(ctx)
	if err != nil {
		return err
	}

	spheres := scene.GenerateSpheres(cfg, scene.NewRandom(cfg.Seed))
	summary := scene.Summarize(spheres, cfg.MaxSpheres)

	var buf bytes.Buffer
	writeSummaryTable(&buf, cfg, summary)
	logger.Noticef("scene information:\n%s", buf.String())

	if n := min(ctx.Int("list"), len(spheres)); n > 0 {
		buf.Reset()
		writeSphereTable(&buf, spheres[:n])
		logger.Noticef("first %d spheres:\n%s", n, buf.String())
	}
	return nil
}

func writeSummaryTable(w io.Writer, cfg scene.GeneratorConfig, s scene.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Seed", "Attempts", "Accepted", "Rejected", "Diffuse", "Metal", "Emissive"})
	table.Append([]string{
		fmt.Sprintf("%d", cfg.Seed),
		fmt.Sprintf("%d", s.Attempts),
		fmt.Sprintf("%d", s.Accepted),
		fmt.Sprintf("%d", s.Rejected),
		fmt.Sprintf("%d", s.Diffuse),
		fmt.Sprintf("%d", s.Metal),
		fmt.Sprintf("%d", s.Emissive),
	})
	table.Render()
}

func writeSphereTable(w io.Writer, spheres []scene.Sphere) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Position", "Radius", "Albedo", "Specular", "Emission", "Smoothness"})
	for i, s := range spheres {
		table.Append([]string{
			fmt.Sprintf("%d", i),
			formatVec3(s.Position[0], s.Position[1], s.Position[2]),
			fmt.Sprintf("%.2f", s.Radius),
			formatVec3(s.Albedo[0], s.Albedo[1], s.Albedo[2]),
			formatVec3(s.Specular[0], s.Specular[1], s.Specular[2]),
			formatVec3(s.Emission[0], s.Emission[1], s.Emission[2]),
			fmt.Sprintf("%.2f", s.Smoothness),
		})
	}
	table.Render()
}

func formatVec3(x, y, z float32) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", x, y, z)
}

// InspectMeshes loads mesh files concurrently and prints their geometry statistics.
func InspectMeshes(ctx *cli.Context) error {
	if ctx.NArg() == 0 {
		return errors.New("missing mesh file arguments")
	}

	paths := []string(ctx.Args())
	models, err := loader.NewLoader(loader.WithWorkers(ctx.Int("workers"))).LoadAll(paths)
	if err != nil {
		logger.Warningf("some meshes failed to load:\n%v", err)
	}

	var buf bytes.Buffer
	writeMeshTable(&buf, paths, models)
	logger.Noticef("mesh information:\n%s", buf.String())
	return nil
}

func writeMeshTable(w io.Writer, paths []string, models []model.Model) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"File", "Name", "Vertices", "Triangles", "Bounds min", "Bounds max", "Radius"})

	var vertices, triangles int
	for i, m := range models {
		if m == nil {
			table.Append([]string{paths[i], "failed", "-", "-", "-", "-", "-"})
			continue
		}
		lo, hi := m.Bounds()
		vertices += len(m.Vertices())
		triangles += m.TriangleCount()
		table.Append([]string{
			paths[i],
			m.Name(),
			fmt.Sprintf("%d", len(m.Vertices())),
			fmt.Sprintf("%d", m.TriangleCount()),
			formatVec3(lo[0], lo[1], lo[2]),
			formatVec3(hi[0], hi[1], hi[2]),
			fmt.Sprintf("%.2f", m.BoundingRadius()),
		})
	}
	table.SetFooter([]string{"", "TOTAL", fmt.Sprintf("%d", vertices), fmt.Sprintf("%d", triangles), "", "", ""})
	table.Render()
}
