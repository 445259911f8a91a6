package main

import (
	"os"

	"github.com/Carmen-Shannon/oxy-rt/engine/log"
	"github.com/urfave/cli"
)

var logger = log.New("oxy-rt")

// verbosity maps the global -v and -vv switches to a log level; -vv wins when both are set.
func verbosity(v, vv bool) log.Level {
	switch {
	case vv:
		return log.Debug
	case v:
		return log.Info
	default:
		return log.Notice
	}
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "oxy-rt"
	app.Usage = "progressive GPU ray tracing of generated sphere fields and triangle meshes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		log.SetLevel(verbosity(ctx.GlobalBool("v"), ctx.GlobalBool("vv")))
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "open a window and progressively render the scene",
			Description: `
Generate a field of non-overlapping spheres, optionally add triangle meshes
loaded from glTF or OBJ files, and accumulate samples until the window is
closed or the sample target is reached.

Keys: arrows orbit, W/A/S/D/Q/E pan, R restarts accumulation, P writes a
snapshot, G regenerates the spheres with the next seed, Esc quits.`,
			ArgsUsage: "[mesh1.glb mesh2.obj ...]",
			Flags:     append(renderFlags(), generatorFlags()...),
			Action:    Render,
		},
		{
			Name:  "scene",
			Usage: "generate a sphere field and print its summary without rendering",
			Flags: append([]cli.Flag{
				cli.IntFlag{
					Name:  "list",
					Usage: "also list the first N accepted spheres",
				},
			}, generatorFlags()...),
			Action: ShowScene,
		},
		{
			Name:      "inspect",
			Usage:     "load mesh files and print their geometry statistics",
			ArgsUsage: "mesh1.gltf mesh2.obj ...",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of files decoded concurrently",
				},
			},
			Action: InspectMeshes,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
