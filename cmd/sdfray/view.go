package main

import (
	"context"
	"image"
	"os"
	"os/signal"
	"time"

	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/render"
	"github.com/soypat/sdfray/scene"
	"github.com/soypat/sdfray/sdfaux"
	"github.com/urfave/cli"
)

// ViewScene opens the interactive viewer.
func ViewScene(ctx *cli.Context) error {
	setupLogging(ctx)
	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}
	cfg, err := frameConfig(ctx, sc)
	if err != nil {
		return err
	}
	m, err := marcher(ctx)
	if err != nil {
		return err
	}
	cam, err := sdfray.NewCamera(sc.Camera)
	if err != nil {
		return err
	}
	objects, lights := sc.Objects(), sc.Lights()
	mode := sdfaux.ViewTrace
	if ctx.Bool("march") {
		mode = sdfaux.ViewMarch
	}
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return sdfaux.UI(sdfaux.ViewConfig{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Title:   "sdfray",
		Mode:    mode,
		Context: sigctx,
		Pick: func(u, v float32) string {
			return pickLabel(sc, cam, u, v)
		},
		Render: func(ctx context.Context, mode sdfaux.ViewMode) (*image.RGBA, error) {
			var (
				img   *image.RGBA
				stats render.FrameStats
				err   error
			)
			if mode == sdfaux.ViewMarch {
				img, stats, err = render.RayMarch(ctx, cam, objects, lights, cfg, m)
			} else {
				img, stats, err = render.RayTrace(ctx, cam, objects, lights, cfg)
			}
			if err != nil {
				return nil, err
			}
			displayFrameStats(stats)
			err = sdfaux.Caption(img, caption(stats), sdfaux.CaptionConfig{})
			return img, err
		},
	})
}

// pickLabel describes what the camera sees through image coordinates u,v.
func pickLabel(sc *scene.Scene, cam sdfray.Camera, u, v float32) string {
	sel, ok := sc.Pick(cam.Ray(u, v))
	if !ok {
		return "background"
	}
	return sel.String()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
