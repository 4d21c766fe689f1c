package render

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
)

// ShadowMarchOffset is how far along the light direction shadow marching starts,
// past the sample ray origin, to leave the surface being shaded.
const ShadowMarchOffset = 0.08

// MarchState is the state of a ray during sphere tracing.
type MarchState uint8

const (
	Marching MarchState = iota
	Hit
	Missed
)

func (s MarchState) String() string {
	switch s {
	case Marching:
		return "marching"
	case Hit:
		return "hit"
	case Missed:
		return "missed"
	}
	return "invalid"
}

// Marcher sphere traces rays through the union of the scene's distance fields.
type Marcher struct {
	// MaxSteps bounds the number of steps per ray. Rays exhausting it miss.
	MaxSteps int
	// HitThreshold is the distance below which a ray is considered on a surface.
	HitThreshold float32
	// MaxDistance is the scene distance above which a ray is considered escaped.
	MaxDistance float32
	// NormalEps is the finite difference step for normal estimation.
	NormalEps float32
}

// DefaultMarcher returns a Marcher with 1000 steps, hit threshold and normal step of 0.01
// and a maximum distance of 100.
func DefaultMarcher() Marcher {
	return Marcher{
		MaxSteps:     1000,
		HitThreshold: 0.01,
		MaxDistance:  100,
		NormalEps:    0.01,
	}
}

// Validate checks the marcher parameters.
func (m Marcher) Validate() error {
	if m.MaxSteps <= 0 {
		return errors.New("march step budget must be positive")
	} else if m.HitThreshold <= 0 || m.NormalEps <= 0 {
		return errors.New("march hit threshold and normal step must be positive")
	} else if m.MaxDistance <= m.HitThreshold {
		return errors.New("march maximum distance must exceed hit threshold")
	}
	return nil
}

// MarchResult is the terminal state of a marched ray.
type MarchResult struct {
	State MarchState
	// Point is the last position visited.
	Point ms3.Vec
	// Object is the object nearest to Point, nil for empty scenes.
	Object sdfray.Object
	// Steps is the number of distance evaluations performed.
	Steps int
}

// SceneDistance returns the minimum signed distance over objects at p and the object
// it belongs to. An empty scene is infinitely far away.
func SceneDistance(p ms3.Vec, objects []sdfray.Object) (float32, sdfray.Object) {
	best := math32.Inf(1)
	var nearest sdfray.Object
	for _, obj := range objects {
		d := obj.Distance(p)
		if d < best {
			best = d
			nearest = obj
		}
	}
	return best, nearest
}

// March advances r through the scene until it hits a surface, escapes beyond
// MaxDistance or exhausts MaxSteps.
func (m Marcher) March(r sdfray.Ray, objects []sdfray.Object) MarchResult {
	res := MarchResult{State: Marching, Point: r.Origin}
	for res.State == Marching {
		if res.Steps >= m.MaxSteps {
			res.State = Missed
			break
		}
		dist, obj := SceneDistance(res.Point, objects)
		res.Steps++
		res.Object = obj
		switch {
		case dist < m.HitThreshold:
			res.State = Hit
		case dist > m.MaxDistance:
			res.State = Missed
		default:
			res.Point = ms3.Add(res.Point, ms3.Scale(dist, r.Dir))
		}
	}
	return res
}

// Normal estimates the scene surface normal at p using central differences of step NormalEps.
func (m Marcher) Normal(p ms3.Vec, objects []sdfray.Object) ms3.Vec {
	h := m.NormalEps / 2
	sdf := func(q ms3.Vec) float32 {
		d, _ := SceneDistance(q, objects)
		return d
	}
	var vecs = [3]ms3.Vec{{X: h}, {Y: h}, {Z: h}}
	var n [3]float32
	for dim, dv := range vecs {
		n[dim] = sdf(ms3.Add(p, dv)) - sdf(ms3.Sub(p, dv))
	}
	nv := ms3.Vec{X: n[0], Y: n[1], Z: n[2]}
	if ms3.Norm(nv) == 0 {
		return ms3.Vec{Y: 1}
	}
	return ms3.Unit(nv)
}

// InShadow marches r from slightly past its origin. Any hit occludes the light.
func (m Marcher) InShadow(r sdfray.Ray, objects []sdfray.Object) bool {
	start := sdfray.Ray{Origin: r.At(ShadowMarchOffset), Dir: r.Dir}
	return m.March(start, objects).State == Hit
}
