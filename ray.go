package sdfray

import (
	"github.com/soypat/glgl/math/ms3"
)

// Ray is a half line with a unit length direction.
type Ray struct {
	Origin ms3.Vec
	Dir    ms3.Vec
}

// NewRay returns a ray starting at origin along dir. dir is normalized and must not be zero.
func NewRay(origin, dir ms3.Vec) Ray {
	return Ray{Origin: origin, Dir: ms3.Unit(dir)}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) ms3.Vec {
	return ms3.Add(r.Origin, ms3.Scale(t, r.Dir))
}

// Hit describes a ray/surface intersection.
type Hit struct {
	Point  ms3.Vec
	Normal ms3.Vec
	// Distance along the ray from its origin to Point.
	Distance float32
	Object   Object
}
