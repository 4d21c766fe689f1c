package sdfaux

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// CaptionConfig configures caption overlays.
type CaptionConfig struct {
	// Size is the font size in points. Zero selects 14.
	Size float64
	// Text and Background colors. Nil selects white text on translucent black.
	Text, Background color.Color
	// Margin in pixels between the image corner, box and text. Zero selects 4.
	Margin int
}

var (
	goFont     *truetype.Font
	goFontErr  error
	goFontOnce sync.Once
)

func regularFont() (*truetype.Font, error) {
	goFontOnce.Do(func() {
		goFont, goFontErr = truetype.Parse(goregular.TTF)
	})
	return goFont, goFontErr
}

// Caption draws text over the top left corner of img on a filled box.
// Each line of text is drawn on its own row.
func Caption(img draw.Image, text string, cfg CaptionConfig) error {
	if text == "" {
		return errors.New("empty caption")
	}
	if cfg.Size == 0 {
		cfg.Size = 14
	}
	if cfg.Margin == 0 {
		cfg.Margin = 4
	}
	if cfg.Text == nil {
		cfg.Text = color.White
	}
	if cfg.Background == nil {
		cfg.Background = color.NRGBA{A: 160}
	}
	ttf, err := regularFont()
	if err != nil {
		return err
	}
	face := truetype.NewFace(ttf, &truetype.Options{Size: cfg.Size, DPI: 72, Hinting: font.HintingFull})
	defer face.Close()

	lines := strings.Split(text, "\n")
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	var width fixed.Int26_6
	for _, line := range lines {
		width = max(width, font.MeasureString(face, line))
	}
	bb := img.Bounds()
	m := cfg.Margin
	box := image.Rect(0, 0, width.Ceil()+2*m, lineHeight*len(lines)+2*m).Add(bb.Min.Add(image.Pt(m, m))).Intersect(bb)
	draw.Draw(img, box, image.NewUniform(cfg.Background), image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(cfg.Text),
		Face: face,
	}
	for i, line := range lines {
		d.Dot = fixed.P(box.Min.X+m, box.Min.Y+m+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(line)
	}
	return nil
}
