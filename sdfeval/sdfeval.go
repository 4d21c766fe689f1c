// Package sdfeval evaluates the signed distance field of a scene in batches.
package sdfeval

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms3"
	glms3 "github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
)

// SDF3 implements a 3D signed distance field in vectorized form.
type SDF3 interface {
	// Evaluate evaluates the signed distance field over pos positions.
	// dist and pos must be of same length.  Resulting distances are stored
	// in dist.
	//
	// userData facilitates getting data to the evaluators for use in processing, such as [VecPool].
	Evaluate(pos []ms3.Vec, dist []float32, userData any) error
	// Bounds returns the SDF's bounding box such that all of the shape is contained within.
	Bounds() ms3.Box
}

var (
	errEmptyBuffers         = errors.New("empty buffers")
	errMismatchBufferLength = errors.New("position and distance buffer length mismatch")
)

// Scene is the union of a set of objects' distance fields.
type Scene struct {
	objects []sdfray.Object
	bb      ms3.Box
	evals   uint64
}

// NewScene returns the SDF3 of the union of objects. The object slice is not copied.
func NewScene(objects []sdfray.Object) (*Scene, error) {
	if len(objects) == 0 {
		return nil, errors.New("sdfeval: no objects in scene")
	}
	bb := toBox(objects[0].Bounds())
	for _, obj := range objects[1:] {
		bb = bb.Union(toBox(obj.Bounds()))
	}
	return &Scene{objects: objects, bb: bb}, nil
}

// Evaluate implements [SDF3]. Each distance is the smallest over all objects.
func (s *Scene) Evaluate(pos []ms3.Vec, dist []float32, userData any) error {
	if len(pos) != len(dist) {
		return errMismatchBufferLength
	} else if len(pos) == 0 {
		return errEmptyBuffers
	}
	for i, p := range pos {
		gp := glms3.Vec{X: p.X, Y: p.Y, Z: p.Z}
		d := s.objects[0].Distance(gp)
		for _, obj := range s.objects[1:] {
			d = min(d, obj.Distance(gp))
		}
		dist[i] = d
	}
	s.evals += uint64(len(pos))
	return nil
}

// Bounds returns the union of the objects' bounding boxes.
func (s *Scene) Bounds() ms3.Box { return s.bb }

// Evaluations returns the number of distances computed over the scene's lifetime.
func (s *Scene) Evaluations() uint64 { return s.evals }

func toBox(b glms3.Box) ms3.Box {
	return ms3.Box{
		Min: ms3.Vec{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		Max: ms3.Vec{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// NormalsCentralDiff stores in normals the central difference gradient of s at each position,
// sampled step apart along each axis. Normals are not normalized.
// userData must carry a [VecPool], which supplies the scratch buffers and is passed on to s.
func NormalsCentralDiff(s SDF3, pos []ms3.Vec, normals []ms3.Vec, step float32, userData any) error {
	switch {
	case s == nil:
		return errors.New("nil SDF3")
	case step <= 0:
		return fmt.Errorf("invalid normal step %v", step)
	case len(pos) != len(normals):
		return errMismatchBufferLength
	case len(pos) == 0:
		return errEmptyBuffers
	}
	vp, err := GetVecPool(userData)
	if err != nil {
		return fmt.Errorf("normals: %w", err)
	}
	shifted := vp.V3.Acquire(len(pos))
	fwd := vp.Float.Acquire(len(pos))
	bwd := vp.Float.Acquire(len(pos))
	defer vp.V3.Release(shifted)
	defer vp.Float.Release(fwd)
	defer vp.Float.Release(bwd)

	h := step / 2
	for axis, shift := range [3]ms3.Vec{{X: h}, {Y: h}, {Z: h}} {
		err = evalShifted(s, pos, shifted, shift, fwd, userData)
		if err != nil {
			return err
		}
		err = evalShifted(s, pos, shifted, ms3.Scale(-1, shift), bwd, userData)
		if err != nil {
			return err
		}
		for i := range normals {
			setComp(&normals[i], axis, fwd[i]-bwd[i])
		}
	}
	return nil
}

// evalShifted evaluates s at every position displaced by shift, using dst as position storage.
func evalShifted(s SDF3, pos, dst []ms3.Vec, shift ms3.Vec, dist []float32, userData any) error {
	for i, p := range pos {
		dst[i] = ms3.Add(p, shift)
	}
	return s.Evaluate(dst, dist, userData)
}

func setComp(v *ms3.Vec, axis int, f float32) {
	switch axis {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
}
