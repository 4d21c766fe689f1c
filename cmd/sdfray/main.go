package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli"
)

func init() {
	// The viewer's window must be driven from the main thread.
	runtime.LockOSThread()
}

func frameFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "scene, s",
			Usage: "JSON scene file. The built-in demo scene is used if not set",
		},
		cli.IntFlag{
			Name:  "width",
			Value: 1200,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 800,
			Usage: "frame height",
		},
		cli.StringFlag{
			Name:  "shading",
			Value: "phong",
			Usage: "shading model: flat, lambert or phong",
		},
		cli.Float64Flag{
			Name:  "ambient",
			Value: 0.1,
			Usage: "ambient light intensity, overrides the scene's",
		},
		cli.Float64Flag{
			Name:  "specular-power",
			Value: 10,
			Usage: "Blinn-Phong exponent of untextured surfaces",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "rendering goroutines, 0 for one per CPU",
		},
		cli.Int64Flag{
			Name:  "seed",
			Value: 1,
			Usage: "area light sampling seed",
		},
		cli.IntFlag{
			Name:  "max-texture",
			Value: 512,
			Usage: "downscale textures larger than this many pixels along an edge, 0 to disable",
		},
	}
}

func marchFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "max-steps",
			Value: 1000,
			Usage: "march step budget per ray",
		},
		cli.Float64Flag{
			Name:  "hit-threshold",
			Value: 0.01,
			Usage: "distance below which a marched ray hits",
		},
		cli.Float64Flag{
			Name:  "max-distance",
			Value: 100,
			Usage: "distance above which a marched ray misses",
		},
		cli.Float64Flag{
			Name:  "normal-eps",
			Value: 0.01,
			Usage: "finite difference width for marched normals",
		},
	}
}

func outputFlags(defaultName string) []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "out, o",
			Value: defaultName,
			Usage: "image filename for the rendered frame",
		},
		cli.BoolFlag{
			Name:  "caption",
			Usage: "draw the render mode and time over the frame",
		},
	}
}

func concat(flags ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, f := range flags {
		all = append(all, f...)
	}
	return all
}

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "sdfray"
	app.Usage = "render signed distance field scenes by ray tracing and ray marching"
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
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render scene to a PNG file",
			Subcommands: []cli.Command{
				{
					Name:  "trace",
					Usage: "render by analytic ray tracing",
					Description: `
Intersect camera rays with every object analytically and shade the closest hit.
Shadows are cast by any object between the surface and the light sample.`,
					Flags:  concat(frameFlags(), outputFlags("trace.png")),
					Action: RenderTrace,
				},
				{
					Name:  "march",
					Usage: "render by sphere tracing the scene's distance field",
					Description: `
March camera rays through the scene's signed distance field. Fractal objects
such as the Mandelbulb are only rendered accurately in this mode.`,
					Flags:  concat(frameFlags(), marchFlags(), outputFlags("march.png")),
					Action: RenderMarch,
				},
			},
		},
		{
			Name:      "slice",
			Usage:     "render a cross-section of the scene's distance field",
			ArgsUsage: " ",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Usage: "JSON scene file. The built-in demo scene is used if not set",
				},
				cli.StringFlag{
					Name:  "axis",
					Value: "z",
					Usage: "section plane normal: x, y or z",
				},
				cli.Float64Flag{
					Name:  "offset",
					Usage: "section plane position along its axis",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "image height, width follows the section's aspect ratio",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "slice.png",
					Usage: "image filename for the section",
				},
				cli.BoolFlag{
					Name:  "normals",
					Usage: "write the distance field's normal map instead of its distances",
				},
				cli.Float64Flag{
					Name:  "edge",
					Value: -1,
					Usage: "black and white section with the surface blended over this width. Negative uses contour coloring",
				},
			},
			Action: SliceScene,
		},
		{
			Name:  "view",
			Usage: "show the scene in a window. R ray traces, M ray marches, Esc quits",
			Flags: concat(frameFlags(), marchFlags(), []cli.Flag{
				cli.BoolFlag{
					Name:  "march",
					Usage: "ray march the first frame",
				},
			}),
			Action: ViewScene,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
