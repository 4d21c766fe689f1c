// Package section renders planar cross-sections of 3D signed distance fields to images.
package section

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/sdfray/sdfeval"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// Axis is the normal of a section plane.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// ParseAxis parses "x", "y" or "z".
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("invalid section axis %q", s)
}

// planeAxes returns the world axes mapped to image columns and rows.
// Rows run against their axis so that up is up in the image.
func (a Axis) planeAxes() (u, v int) {
	switch a {
	case AxisX:
		return 2, 1
	case AxisY:
		return 0, 2
	}
	return 0, 1
}

// Renderer converts cross-sections of 3D SDFs to images.
type Renderer struct {
	conv func(f float32) color.Color
	pos  []ms3.Vec
	dist []float32
}

// NewRenderer instances a new [Renderer]. A nil float->color conversion
// function results in a simple black-white color scheme where black is the interior of the SDF (negative distance).
func NewRenderer(evalBufferSize int, conversion func(float32) color.Color) (*Renderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	if conversion == nil {
		conversion = func(f float32) color.Color {
			switch {
			case math32.IsNaN(f) || math32.IsInf(f, 0):
				return color.RGBA{R: 255, A: 255}
			case f > 0:
				return color.White
			default:
				return color.Black
			}
		}
	}
	return &Renderer{
		conv: conversion,
		pos:  make([]ms3.Vec, evalBufferSize),
		dist: make([]float32, evalBufferSize),
	}, nil
}

// Render samples sdf over the plane normal to axis at offset, spanning the SDF's
// bounds, and writes the converted distances to img. Pixels sample their centers.
// userData is passed to every [sdfeval.SDF3.Evaluate] call.
func (r *Renderer) Render(sdf sdfeval.SDF3, img setImage, axis Axis, offset float32, userData any) error {
	return r.scan(sdf, img, axis, offset, func(y int, pos []ms3.Vec) error {
		dist := r.dist[:len(pos)]
		err := sdf.Evaluate(pos, dist, userData)
		if err != nil {
			return err
		}
		x0 := img.Bounds().Min.X
		for i, d := range dist {
			img.Set(x0+i, y, r.conv(d))
		}
		return nil
	})
}

// RenderNormals samples the same grid as [Renderer.Render] and writes a normal map of sdf to img:
// each component of the unit gradient is mapped from [-1,1] to [0,255] in the R, G and B channels.
// Gradients are central differences step apart. userData must carry a [sdfeval.VecPool].
func (r *Renderer) RenderNormals(sdf sdfeval.SDF3, img setImage, axis Axis, offset, step float32, userData any) error {
	vp, err := sdfeval.GetVecPool(userData)
	if err != nil {
		return err
	}
	normals := vp.V3.Acquire(len(r.pos))
	defer vp.V3.Release(normals)
	return r.scan(sdf, img, axis, offset, func(y int, pos []ms3.Vec) error {
		row := normals[:len(pos)]
		err := sdfeval.NormalsCentralDiff(sdf, pos, row, step, userData)
		if err != nil {
			return err
		}
		x0 := img.Bounds().Min.X
		for i, n := range row {
			img.Set(x0+i, y, normalColor(n))
		}
		return nil
	})
}

// scan fills the position buffer with one image row of section samples at a time
// and hands it to fn along with the row's image y coordinate.
func (r *Renderer) scan(sdf sdfeval.SDF3, img setImage, axis Axis, offset float32, fn func(y int, pos []ms3.Vec) error) error {
	if axis > AxisZ {
		return fmt.Errorf("invalid section axis %d", axis)
	}
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if len(r.dist) < dxi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(r.dist), dxi)
	}
	bb := sdf.Bounds()
	ua, va := axis.planeAxes()
	umin, umax := comp(bb.Min, ua), comp(bb.Max, ua)
	vmin, vmax := comp(bb.Min, va), comp(bb.Max, va)
	du := (umax - umin) / float32(dxi)
	dv := (vmax - vmin) / float32(dyi)
	var p ms3.Vec
	setComp(&p, int(axis), offset)
	pos := r.pos[:dxi]
	for j := 0; j < dyi; j++ {
		setComp(&p, va, vmax-(float32(j)+0.5)*dv)
		for i := range pos {
			setComp(&p, ua, umin+(float32(i)+0.5)*du)
			pos[i] = p
		}
		err := fn(j+imgBB.Min.Y, pos)
		if err != nil {
			return err
		}
	}
	return nil
}

func normalColor(n ms3.Vec) color.Color {
	norm := ms3.Norm(n)
	if norm == 0 || math32.IsNaN(norm) || math32.IsInf(norm, 0) {
		return color.RGBA{R: 255, A: 255}
	}
	n = ms3.Scale(1/norm, n)
	channel := func(f float32) uint8 {
		return uint8(math32.Round((f + 1) * 127.5))
	}
	return color.RGBA{R: channel(n.X), G: channel(n.Y), B: channel(n.Z), A: 255}
}

// Size returns image dimensions for the section of bb normal to axis with the given
// height, preserving the section's aspect ratio.
func Size(bb ms3.Box, axis Axis, height int) (width int) {
	ua, va := axis.planeAxes()
	w := comp(bb.Max, ua) - comp(bb.Min, ua)
	h := comp(bb.Max, va) - comp(bb.Min, va)
	if h <= 0 {
		return height
	}
	return max(1, int(float32(height)*w/h))
}

func comp(v ms3.Vec, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setComp(v *ms3.Vec, i int, f float32) {
	switch i {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
}
