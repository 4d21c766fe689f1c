// Package sdfray renders scenes of analytic and implicit shapes. The root
// package holds the geometry: rays, shapes with both analytic intersection
// and signed distance functions, lights, materials and the camera.
package sdfray

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization or ray/plane incidence.
	epstol = 6e-7
	// minHitDist is the smallest ray distance accepted as a hit.
	minHitDist = 1e-5
	// SampleOffset is the distance along the surface normal that light
	// sample rays are moved off the surface to avoid self shadowing.
	SampleOffset = 0.01
	largenum     = 1e20
)

// Builder wraps all shape and light construction logic.
// Provides error handling strategies with panics or error accumulation during shape generation.
type Builder struct {
	NoDimensionPanic bool
	accumErrs        []error
}

// Err returns the joined errors accumulated during construction when
// NoDimensionPanic is set.
func (bld *Builder) Err() error {
	if len(bld.accumErrs) == 0 {
		return nil
	}
	return errors.Join(bld.accumErrs...)
}

// ClearErrors discards accumulated errors.
func (bld *Builder) ClearErrors() {
	bld.accumErrs = bld.accumErrs[:0]
}

func (bld *Builder) shapeErrorf(msg string, args ...any) {
	if !bld.NoDimensionPanic {
		panic(fmt.Sprintf(msg, args...))
	}
	bld.accumErrs = append(bld.accumErrs, fmt.Errorf(msg, args...))
}

// Kind tags each [Object] variant.
type Kind uint8

const (
	KindSphere Kind = iota + 1
	KindPlane
	KindMengerSponge
	KindMandelbulb
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindMengerSponge:
		return "menger"
	case KindMandelbulb:
		return "mandelbulb"
	}
	return "unknown"
}

// Object is a scene shape. It can be intersected analytically by ray tracing
// and evaluated as a signed distance field by ray marching.
// The set of implementations is closed: all objects are created by [Builder].
type Object interface {
	Kind() Kind
	// Position returns the object's reference point in world space.
	Position() ms3.Vec
	// Bounds returns a box containing the whole shape.
	Bounds() ms3.Box
	// Material returns the surface description. Callers may modify it
	// between renders but not during one.
	Material() *Material
	// Intersect returns the closest hit along r with positive distance.
	Intersect(r Ray) (Hit, bool)
	// Distance evaluates the signed distance field at world position p.
	// It is negative inside the shape and never overestimates.
	Distance(p ms3.Vec) float32
	// Normal returns the outward unit surface normal at p, which is expected to lie on the surface.
	Normal(p ms3.Vec) ms3.Vec
	// TextureCoords maps a surface point to tiled texture coordinates in [0,1).
	TextureCoords(p ms3.Vec) (u, v float32)

	isObject()
}

func minf(a, b float32) float32 {
	return math32.Min(a, b)
}

func maxf(a, b float32) float32 {
	return math32.Max(a, b)
}

func absf(a float32) float32 {
	return math32.Abs(a)
}

func clampf(v, Min, Max float32) float32 {
	if v < Min {
		return Min
	} else if v > Max {
		return Max
	}
	return v
}

// modf is the floored modulo, always in [0,y) for positive y.
func modf(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

// tile wraps a texture coordinate into [0,1) repeating every tiles units.
func tile(x, tiles float32) float32 {
	if tiles <= 0 {
		tiles = 1
	}
	x = math32.Mod(x/tiles, 1)
	if x < 0 {
		x += 1
	}
	if x >= 1 {
		x = 0
	}
	return x
}

func remapf(v, inMin, inMax, outMin, outMax float32) float32 {
	return (v-inMin)/(inMax-inMin)*(outMax-outMin) + outMin
}

func comp(v ms3.Vec, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func withComp(v ms3.Vec, axis int, f float32) ms3.Vec {
	switch axis {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
	return v
}

// sdBox is the exact distance to a box centered at the origin with half sizes h.
func sdBox(p, h ms3.Vec) float32 {
	q := ms3.Sub(ms3.AbsElem(p), h)
	return ms3.Norm(ms3.MaxElem(q, ms3.Vec{})) + minf(maxf(q.X, maxf(q.Y, q.Z)), 0)
}

// cube returns a vector with all components set to v.
func cube(v float32) ms3.Vec {
	return ms3.Vec{X: v, Y: v, Z: v}
}
