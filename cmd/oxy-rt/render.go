package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/Carmen-Shannon/oxy-rt/engine"
	"github.com/Carmen-Shannon/oxy-rt/engine/camera"
	"github.com/Carmen-Shannon/oxy-rt/engine/game_object"
	"github.com/Carmen-Shannon/oxy-rt/engine/light"
	"github.com/Carmen-Shannon/oxy-rt/engine/loader"
	"github.com/Carmen-Shannon/oxy-rt/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rt/engine/scene"
	"github.com/Carmen-Shannon/oxy-rt/engine/skybox"
	"github.com/Carmen-Shannon/oxy-rt/engine/tracer"
	"github.com/Carmen-Shannon/oxy-rt/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli"
)

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 1280,
			Usage: "window width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 720,
			Usage: "window height",
		},
		cli.StringFlag{
			Name:  "present",
			Value: renderer.PresentModeUncapped.String(),
			Usage: "presentation mode: vsync or uncapped",
		},
		cli.BoolFlag{
			Name:  "software",
			Usage: "force the fallback software adapter",
		},
		cli.StringFlag{
			Name:  "skybox",
			Usage: "equirectangular environment map (png, jpeg, bmp, tiff or webp); a gradient sky is used when empty",
		},
		cli.IntFlag{
			Name:  "skybox-width",
			Value: skybox.DefaultMaxWidth,
			Usage: "downscale environment maps wider than this",
		},
		cli.StringFlag{
			Name:  "light-dir",
			Value: "-0.4,-1,-0.3",
			Usage: "direction the sunlight travels in, as x,y,z",
		},
		cli.Float64Flag{
			Name:  "light-intensity",
			Value: 1,
			Usage: "sunlight intensity",
		},
		cli.StringFlag{
			Name:  "mesh-offset",
			Value: "0,0,0",
			Usage: "world position of loaded meshes, as x,y,z",
		},
		cli.Float64Flag{
			Name:  "mesh-scale",
			Value: 1,
			Usage: "uniform scale of loaded meshes",
		},
		cli.IntFlag{
			Name:  "samples",
			Usage: "stop accumulating after this many samples; 0 renders until closed",
		},
		cli.BoolFlag{
			Name:  "exit",
			Usage: "quit once the sample target is reached",
		},
		cli.StringFlag{
			Name:  "out, o",
			Usage: "write the converged image here on exit (.png or .tiff)",
		},
		cli.Float64Flag{
			Name:  "fps",
			Usage: "cap the render loop to this many frames per second; 0 is uncapped",
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "log frame timings periodically",
		},
	}
}

// Render opens a window and progressively renders the generated scene plus any mesh arguments.
func Render(ctx *cli.Context) error {
	cfg, err := generatorConfig(ctx)
	if err != nil {
		return err
	}
	presentMode, ok := renderer.ParsePresentMode(ctx.String("present"))
	if !ok {
		return fmt.Errorf("unknown present mode %q", ctx.String("present"))
	}
	lightDir, err := parseVec3(ctx.String("light-dir"))
	if err != nil {
		return fmt.Errorf("light-dir: %w", err)
	}
	meshOffset, err := parseVec3(ctx.String("mesh-offset"))
	if err != nil {
		return fmt.Errorf("mesh-offset: %w", err)
	}
	if ctx.Int("samples") < 0 {
		return fmt.Errorf("samples must not be negative, got %d", ctx.Int("samples"))
	}

	sky, err := loadSky(ctx.String("skybox"), ctx.Int("skybox-width"))
	if err != nil {
		return err
	}

	sc := scene.NewScene("generated")
	summary, err := sc.Generate(cfg)
	if err != nil {
		return err
	}
	logger.Noticef("generated %d spheres (%d rejected) from seed %d", summary.Accepted, summary.Rejected, cfg.Seed)

	if ctx.NArg() > 0 {
		if err := registerMeshes(sc, ctx.Args(), meshOffset, float32(ctx.Float64("mesh-scale"))); err != nil {
			return err
		}
	}

	win := window.NewWindow(
		window.WithTitle("oxy-rt"),
		window.WithSize(ctx.Int("width"), ctx.Int("height")),
	)

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(ctx.Bool("software")),
		renderer.WithSkybox(sky),
	)
	if err != nil {
		_ = win.Close()
		return err
	}

	cam := camera.NewCamera(
		camera.WithController(camera.NewCameraController(
			camera.WithRadius(cfg.PlacementRadius*1.8),
			camera.WithRadiusBounds(2, cfg.PlacementRadius*20),
		)),
		camera.WithFar(cfg.PlacementRadius*40),
	)
	sun := light.NewLight(
		light.WithDirection(lightDir),
		light.WithIntensity(float32(ctx.Float64("light-intensity"))),
	)

	tr := tracer.NewTracer(r, sc, cam, sun)

	e := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithTracer(tr),
		engine.WithCamera(cam),
		engine.WithScene(sc),
		engine.WithGeneratorConfig(cfg),
		engine.WithMaxSamples(uint32(ctx.Int("samples"))),
		engine.WithExitOnConverge(ctx.Bool("exit")),
		engine.WithSnapshotPath(ctx.String("out")),
		engine.WithRenderFrameLimit(ctx.Float64("fps")),
		engine.WithProfiling(ctx.Bool("profile")),
	)
	e.Run()
	return nil
}

// loadSky decodes the environment map, falling back to the gradient sky.
func loadSky(path string, maxWidth int) (common.TextureStagingData, error) {
	if path == "" {
		return skybox.DefaultGradient(), nil
	}
	sky, err := skybox.Load(path, skybox.WithMaxWidth(maxWidth))
	if err != nil {
		return common.TextureStagingData{}, fmt.Errorf("skybox: %w", err)
	}
	logger.Infof("loaded %dx%d environment map from %s", sky.Width, sky.Height, path)
	return sky, nil
}

// registerMeshes loads the mesh files concurrently and registers one object per loaded model.
// Files that fail to load are reported and skipped; it only fails when nothing loaded.
func registerMeshes(sc scene.Scene, paths []string, offset mgl32.Vec3, scale float32) error {
	models, err := loader.NewLoader().LoadAll(paths)
	registered := 0
	for _, m := range models {
		if m == nil {
			continue
		}
		sc.Register(game_object.NewGameObject(
			game_object.WithModel(m),
			game_object.WithPosition(offset),
			game_object.WithUniformScale(scale),
		))
		registered++
		logger.Infof("registered %s: %d triangles", m.Name(), m.TriangleCount())
	}
	if err != nil {
		if registered == 0 {
			return err
		}
		logger.Warningf("some meshes failed to load:\n%v", err)
	}
	return nil
}

// parseVec3 reads a comma separated "x,y,z" triple.
func parseVec3(s string) (mgl32.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return mgl32.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mgl32.Vec3
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(f)
	}
	return v, nil
}
