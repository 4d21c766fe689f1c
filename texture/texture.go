// Package texture provides image backed diffuse and specular maps.
package texture

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/soypat/sdfray"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

var errEmptyImage = errors.New("texture: empty image")

// Image samples an RGBA image by normalized coordinates with nearest neighbor lookup.
type Image struct {
	img *image.RGBA
}

// New copies img into a texture. Images with an edge longer than maxEdge are
// scaled down to fit, preserving aspect ratio. A non-positive maxEdge keeps the size.
func New(img image.Image, maxEdge int) (*Image, error) {
	bb := img.Bounds()
	if bb.Empty() {
		return nil, errEmptyImage
	}
	w, h := bb.Dx(), bb.Dy()
	if maxEdge > 0 && max(w, h) > maxEdge {
		if w >= h {
			h = max(1, h*maxEdge/w)
			w = maxEdge
		} else {
			w = max(1, w*maxEdge/h)
			h = maxEdge
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bb.Dx() && h == bb.Dy() {
		draw.Draw(dst, dst.Bounds(), img, bb.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bb, draw.Src, nil)
	}
	return &Image{img: dst}, nil
}

// Decode reads a PNG, JPEG, BMP or TIFF texture.
func Decode(r io.Reader, maxEdge int) (*Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texture: decoding image: %w", err)
	}
	t, err := New(img, maxEdge)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, format)
	}
	return t, nil
}

// Load reads the texture file at path.
func Load(path string, maxEdge int) (*Image, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	t, err := Decode(fp, maxEdge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Bounds returns the texture's size in pixels.
func (t *Image) Bounds() image.Rectangle { return t.img.Bounds() }

// pixel maps u,v to a pixel, clamping to the image edges.
func (t *Image) pixel(u, v float32) (x, y int) {
	bb := t.img.Bounds()
	x = int(u * float32(bb.Dx()))
	y = int(v * float32(bb.Dy()))
	x = min(max(x, 0), bb.Dx()-1)
	y = min(max(y, 0), bb.Dy()-1)
	return x + bb.Min.X, y + bb.Min.Y
}

// At returns the texel color at u,v.
func (t *Image) At(u, v float32) sdfray.Color {
	c := t.img.RGBAAt(t.pixel(u, v))
	return sdfray.RGB8(c.R, c.G, c.B)
}

// Brightness returns the largest channel of the texel at u,v in [0,1].
func (t *Image) Brightness(u, v float32) float32 {
	c := t.img.RGBAAt(t.pixel(u, v))
	return float32(max(c.R, c.G, c.B)) / 255
}
