// Package sdfaux holds helpers for getting rendered scenes out of the program:
// PNG files, caption overlays, cross-section debug images and an interactive viewer.
package sdfaux

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/soypat/sdfray/sdfeval"
	"github.com/soypat/sdfray/section"
)

// WritePNG encodes img as PNG to w.
func WritePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// SavePNG writes img to a PNG file with said filename.
func SavePNG(filename string, img image.Image) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	err = WritePNG(fp, img)
	if err != nil {
		return err
	}
	return fp.Sync()
}

// RenderPNGFile renders the cross-section of sdf normal to axis at offset and saves the result to
// a PNG file with said filename. The image width is sized automatically from the image height argument
// to preserve the section's aspect ratio. If a nil color conversion function is passed then one is automatically chosen.
func RenderPNGFile(filename string, sdf sdfeval.SDF3, axis section.Axis, offset float32, picHeight int, colorConversion func(float32) color.Color) error {
	if colorConversion == nil {
		colorConversion = ColorConversionInigoQuilez(sdf.Bounds().Diagonal() / 3)
	}
	img, renderer, err := sectionTarget(sdf, axis, picHeight, colorConversion)
	if err != nil {
		return err
	}
	err = renderer.Render(sdf, img, axis, offset, nil)
	if err != nil {
		return err
	}
	return SavePNG(filename, img)
}

// RenderNormalsPNGFile saves a normal map of the same cross-section [RenderPNGFile] would render.
func RenderNormalsPNGFile(filename string, sdf sdfeval.SDF3, axis section.Axis, offset float32, picHeight int) error {
	img, renderer, err := sectionTarget(sdf, axis, picHeight, nil)
	if err != nil {
		return err
	}
	var vp sdfeval.VecPool
	step := sdf.Bounds().Diagonal() / float32(4*picHeight)
	err = renderer.RenderNormals(sdf, img, axis, offset, step, &vp)
	if err != nil {
		return err
	}
	if err = vp.AssertAllReleased(); err != nil {
		return err
	}
	return SavePNG(filename, img)
}

func sectionTarget(sdf sdfeval.SDF3, axis section.Axis, picHeight int, conv func(float32) color.Color) (*image.RGBA, *section.Renderer, error) {
	if picHeight <= 0 {
		return nil, nil, fmt.Errorf("invalid picture height %d", picHeight)
	}
	picWidth := section.Size(sdf.Bounds(), axis, picHeight)
	renderer, err := section.NewRenderer(max(4096, picWidth), conv)
	if err != nil {
		return nil, nil, err
	}
	return image.NewRGBA(image.Rect(0, 0, picWidth, picHeight)), renderer, nil
}
