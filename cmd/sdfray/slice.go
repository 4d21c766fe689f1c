package main

import (
	"fmt"

	"github.com/soypat/sdfray/sdfaux"
	"github.com/soypat/sdfray/sdfeval"
	"github.com/soypat/sdfray/section"
	"github.com/urfave/cli"
)

// SliceScene writes a cross-section image of the scene's distance field.
func SliceScene(ctx *cli.Context) error {
	setupLogging(ctx)
	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}
	axis, err := section.ParseAxis(ctx.String("axis"))
	if err != nil {
		return err
	}
	sdf, err := sdfeval.NewScene(sc.Objects())
	if err != nil {
		return err
	}
	watch := stopwatch()
	out := ctx.String("out")
	offset := float32(ctx.Float64("offset"))
	switch edge := float32(ctx.Float64("edge")); {
	case ctx.Bool("normals"):
		err = sdfaux.RenderNormalsPNGFile(out, sdf, axis, offset, ctx.Int("height"))
	case edge >= 0:
		err = sdfaux.RenderPNGFile(out, sdf, axis, offset, ctx.Int("height"), sdfaux.ColorConversionBlackWhite(edge))
	default:
		err = sdfaux.RenderPNGFile(out, sdf, axis, offset, ctx.Int("height"), nil)
	}
	if err != nil {
		return fmt.Errorf("rendering %s=%v section: %w", axis, offset, err)
	}
	logger.Noticef("wrote %s=%v section to %s after %d evaluations in %s", axis, offset, out, sdf.Evaluations(), watch())
	return nil
}
