package sdfray

import (
	"github.com/soypat/glgl/math/ms3"
)

// Color is a linear RGB triplet with components nominally in [0,1].
type Color = ms3.Vec

// RGB8 converts 8 bit color components to a [Color].
func RGB8(r, g, b uint8) Color {
	return Color{X: float32(r) / 255, Y: float32(g) / 255, Z: float32(b) / 255}
}

// Named colors used by default scenes.
var (
	White     = RGB8(255, 255, 255)
	Gray      = RGB8(128, 128, 128)
	DarkGray  = RGB8(169, 169, 169)
	LightGray = RGB8(211, 211, 211)
	LightBlue = RGB8(173, 216, 230)
	Pink      = RGB8(255, 192, 203)
	Orange    = RGB8(255, 165, 0)
)

// Texture is an image queryable by normalized texture coordinates.
type Texture interface {
	// At returns the color at texture coordinates u,v in [0,1).
	At(u, v float32) Color
	// Brightness returns the largest color channel at u,v in [0,1].
	Brightness(u, v float32) float32
}

// Material describes how a surface reflects light.
type Material struct {
	Diffuse  Color
	Specular Color
	// DiffuseMap and SpecularMap are only used when both are set.
	DiffuseMap  Texture
	SpecularMap Texture
	// Tiles sets how many world units a texture spans before repeating. Zero means one.
	Tiles float32
}

// NewMaterial returns a material with the given diffuse color and a white specular color.
func NewMaterial(diffuse Color) Material {
	return Material{Diffuse: diffuse, Specular: White, Tiles: 1}
}

// Textured reports whether both texture maps are bound.
func (m *Material) Textured() bool {
	return m.DiffuseMap != nil && m.SpecularMap != nil
}
