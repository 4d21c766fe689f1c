package sdfaux

import (
	"image/color"

	math "github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

var red = color.RGBA{R: 255, A: 255}

// ColorConversionInigoQuilez creates a new color conversion using [Inigo Quilez]'s style.
// A good value for characteristic distance is the bounding box diagonal divided by 3. Returns red for NaN values.
//
// [Inigo Quilez]: https://iquilezles.org/articles/distfunctions2d/
func ColorConversionInigoQuilez(characteristicDistance float32) func(float32) color.Color {
	inv := 1. / characteristicDistance
	outside := ms3.Vec{X: 0.9, Y: 0.6, Z: 0.3}
	inside := ms3.Vec{X: 0.65, Y: 0.85, Z: 1.0}
	one := ms3.Vec{X: 1, Y: 1, Z: 1}
	return func(d float32) color.Color {
		if math.IsNaN(d) {
			return red
		}
		d *= inv
		c := inside
		if d > 0 {
			c = outside
		}
		c = ms3.Scale(1-math.Exp(-6*math.Abs(d)), c)
		c = ms3.Scale(0.8+0.2*math.Cos(150*d), c)
		// White isoline at the surface.
		edge := 1 - ms1.SmoothStep(0, 0.01, math.Abs(d))
		c = ms3.InterpElem(c, one, ms3.Vec{X: edge, Y: edge, Z: edge})
		return toRGBA(c)
	}
}

// ColorConversionBlackWhite returns a conversion that blends linearly from black inside
// to white outside over a band of width edgeSmooth centered on the surface.
// A zero edgeSmooth gives a hard edge.
func ColorConversionBlackWhite(edgeSmooth float32) func(d float32) color.Color {
	if edgeSmooth == 0 {
		return func(d float32) color.Color {
			if d < 0 {
				return color.Black
			}
			return color.White
		}
	}
	return func(d float32) color.Color {
		blend := ms1.Clamp(d/edgeSmooth+0.5, 0, 1)
		return color.Gray{Y: uint8(blend * math.MaxUint8)}
	}
}

func toRGBA(c ms3.Vec) color.RGBA {
	return color.RGBA{
		R: uint8(ms1.Clamp(c.X, 0, 1) * math.MaxUint8),
		G: uint8(ms1.Clamp(c.Y, 0, 1) * math.MaxUint8),
		B: uint8(ms1.Clamp(c.Z, 0, 1) * math.MaxUint8),
		A: 255,
	}
}
