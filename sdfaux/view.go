package sdfaux

import (
	"context"
	"errors"
	"image"
)

// ViewMode selects the renderer used by the viewer.
type ViewMode uint8

const (
	ViewTrace ViewMode = iota
	ViewMarch
)

func (m ViewMode) String() string {
	if m == ViewMarch {
		return "march"
	}
	return "trace"
}

// ViewConfig configures the interactive viewer window.
type ViewConfig struct {
	Width, Height int
	Title         string
	// Mode is the renderer used for the first frame.
	Mode ViewMode
	// Render produces a frame for the window. It runs outside the window's
	// thread and its context is cancelled when a newer frame is requested or the window closes.
	Render func(ctx context.Context, mode ViewMode) (*image.RGBA, error)
	// Context stops the viewer when done. May be nil.
	Context context.Context
	// Pick describes what lies under image coordinates u,v in [0,1], v growing downward.
	// It is called on left clicks. May be nil.
	Pick func(u, v float32) string
}

// UI opens a window showing frames produced by cfg.Render. Pressing R renders
// by ray tracing, M by ray marching and Esc closes the window. Left clicks log cfg.Pick's result.
// UI must be called from the main thread and requires cgo.
func UI(cfg ViewConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("invalid window dimensions")
	} else if cfg.Render == nil {
		return errors.New("nil Render function")
	}
	if cfg.Title == "" {
		cfg.Title = "sdfray"
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return ui(cfg)
}

// rgbaPixels returns img's pixels in tightly packed rows.
func rgbaPixels(img *image.RGBA) []byte {
	bb := img.Bounds()
	rowLen := 4 * bb.Dx()
	if img.Stride == rowLen && bb.Min == (image.Point{}) {
		return img.Pix[:rowLen*bb.Dy()]
	}
	pix := make([]byte, 0, rowLen*bb.Dy())
	for y := bb.Min.Y; y < bb.Max.Y; y++ {
		off := img.PixOffset(bb.Min.X, y)
		pix = append(pix, img.Pix[off:off+rowLen]...)
	}
	return pix
}
