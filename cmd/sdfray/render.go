package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/render"
	"github.com/soypat/sdfray/scene"
	"github.com/soypat/sdfray/sdfaux"
	"github.com/soypat/sdfray/texture"
	"github.com/urfave/cli"
)

// loadScene reads the scene file given by the scene flag or returns the demo scene.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	filename := ctx.String("scene")
	if filename == "" {
		logger.Info("using demo scene")
		return scene.Default(), nil
	}
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	sc, err := scene.Load(fp, scene.LoadOptions{
		Dir:            filepath.Dir(filename),
		MaxTextureEdge: ctx.Int("max-texture"),
		LoadTexture: func(path string, maxEdge int) (sdfray.Texture, error) {
			logger.Debugf("loading texture %s", path)
			return texture.Load(path, maxEdge)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logger.Infof("loaded %d objects and %d lights from %s", len(sc.Objects()), len(sc.Lights()), filename)
	return sc, nil
}

// frameConfig builds the render configuration from the frame flags and the scene.
func frameConfig(ctx *cli.Context, sc *scene.Scene) (render.Config, error) {
	mode, ok := render.ParseShadeMode(ctx.String("shading"))
	if !ok {
		return render.Config{}, fmt.Errorf("unknown shading %q", ctx.String("shading"))
	}
	cfg := render.DefaultConfig()
	cfg.Width = ctx.Int("width")
	cfg.Height = ctx.Int("height")
	cfg.Mode = mode
	cfg.Ambient = sc.Ambient
	if ctx.IsSet("ambient") {
		cfg.Ambient = float32(ctx.Float64("ambient"))
	}
	cfg.SpecularPower = float32(ctx.Float64("specular-power"))
	cfg.Background = sc.Background
	cfg.Workers = ctx.Int("workers")
	cfg.Seed = ctx.Int64("seed")
	return cfg, nil
}

func marcher(ctx *cli.Context) (render.Marcher, error) {
	m := render.Marcher{
		MaxSteps:     ctx.Int("max-steps"),
		HitThreshold: float32(ctx.Float64("hit-threshold")),
		MaxDistance:  float32(ctx.Float64("max-distance")),
		NormalEps:    float32(ctx.Float64("normal-eps")),
	}
	return m, m.Validate()
}

// RenderTrace renders a still frame by ray tracing.
func RenderTrace(ctx *cli.Context) error {
	return renderStill(ctx, false)
}

// RenderMarch renders a still frame by ray marching.
func RenderMarch(ctx *cli.Context) error {
	return renderStill(ctx, true)
}

func renderStill(ctx *cli.Context, march bool) error {
	setupLogging(ctx)
	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}
	cfg, err := frameConfig(ctx, sc)
	if err != nil {
		return err
	}
	cam, err := sdfray.NewCamera(sc.Camera)
	if err != nil {
		return err
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		img   *image.RGBA
		stats render.FrameStats
	)
	if march {
		m, err := marcher(ctx)
		if err != nil {
			return err
		}
		img, stats, err = render.RayMarch(sigctx, cam, sc.Objects(), sc.Lights(), cfg, m)
		if err != nil {
			return err
		}
	} else {
		img, stats, err = render.RayTrace(sigctx, cam, sc.Objects(), sc.Lights(), cfg)
		if err != nil {
			return err
		}
	}
	if ctx.Bool("caption") {
		err = sdfaux.Caption(img, caption(stats), sdfaux.CaptionConfig{})
		if err != nil {
			return err
		}
	}
	out := ctx.String("out")
	err = sdfaux.SavePNG(out, img)
	if err != nil {
		return err
	}
	displayFrameStats(stats)
	logger.Noticef("wrote %s", out)
	return nil
}

func caption(stats render.FrameStats) string {
	return fmt.Sprintf("%s %dx%d\n%s", stats.Mode, stats.Width, stats.Height, stats.RenderTime.Round(1e6))
}

func displayFrameStats(stats render.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Mode", "Frame", "Workers", "Hits", "% hit", "March steps", "Shadow rays", "Render time"})
	table.Append([]string{
		stats.Mode,
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.Workers),
		fmt.Sprintf("%d", stats.Hits),
		fmt.Sprintf("%02.1f %%", stats.HitPercent()),
		fmt.Sprintf("%d", stats.MarchSteps),
		fmt.Sprintf("%d", stats.ShadowRays),
		stats.RenderTime.String(),
	})
	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
