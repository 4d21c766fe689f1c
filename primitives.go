package sdfray

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// PlaneDepth is the thickness of the solid slab below a plane's surface used
// by its distance field.
const PlaneDepth = 0.1

type sphere struct {
	mat    Material
	center ms3.Vec
	r      float32
}

// NewSphere creates a sphere centered at center with radius r.
func (bld *Builder) NewSphere(center ms3.Vec, r float32, mat Material) Object {
	okRadius := r > 0 && !math32.IsInf(r, 1)
	if !okRadius {
		bld.shapeErrorf("bad sphere radius %v", r)
	}
	return &sphere{mat: mat, center: center, r: r}
}

func (s *sphere) isObject()           {}
func (s *sphere) Kind() Kind          { return KindSphere }
func (s *sphere) Position() ms3.Vec   { return s.center }
func (s *sphere) Material() *Material { return &s.mat }

// Radius returns the sphere's radius.
func (s *sphere) Radius() float32 { return s.r }

func (s *sphere) Bounds() ms3.Box {
	return ms3.NewCenteredBox(s.center, cube(2*s.r))
}

func (s *sphere) Intersect(r Ray) (Hit, bool) {
	t, ok := raySphere(r, s.center, s.r)
	if !ok {
		return Hit{}, false
	}
	p := r.At(t)
	return Hit{Point: p, Normal: s.Normal(p), Distance: t, Object: s}, true
}

func (s *sphere) Distance(p ms3.Vec) float32 {
	return ms3.Norm(ms3.Sub(p, s.center)) - s.r
}

func (s *sphere) Normal(p ms3.Vec) ms3.Vec {
	return ms3.Unit(ms3.Sub(p, s.center))
}

func (s *sphere) TextureCoords(p ms3.Vec) (u, v float32) {
	return sphericalCoords(ms3.Sub(p, s.center), s.r, s.mat.Tiles)
}

// raySphere returns the smallest positive distance at which r meets the
// sphere. Rays starting inside the sphere report the exiting hit.
func raySphere(r Ray, center ms3.Vec, radius float32) (float32, bool) {
	diff := ms3.Sub(center, r.Origin)
	t0 := ms3.Dot(diff, r.Dir)
	d2 := ms3.Dot(diff, diff) - t0*t0
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}
	t1 := math32.Sqrt(r2 - d2)
	t := t0 - t1
	if t <= minHitDist {
		t = t0 + t1
	}
	return t, t > minHitDist
}

func sphericalCoords(local ms3.Vec, radius, tiles float32) (u, v float32) {
	norm := ms3.Norm(local)
	if norm < epstol {
		return 0, 0
	}
	theta := math32.Asin(clampf(local.Y/norm, -1, 1))
	phi := math32.Atan2(local.Z, local.X)
	u = remapf(phi, 0, 2*math32.Pi, 0, radius*4)
	v = remapf(theta, -math32.Pi, math32.Pi, 0, radius*4)
	return tile(u, tiles), tile(v, tiles)
}

type plane struct {
	mat    Material
	center ms3.Vec
	normal ms3.Vec
	// axis is the index of the normal's non-zero component.
	axis int
	// half holds the half extents along the in-plane axes and PlaneDepth along the normal axis.
	half ms3.Vec
}

// NewPlane creates a finite rectangle centered at center facing normal, which must be
// one of the six signed unit axes. Width spans the first in-plane axis in XYZ order and
// height the second, so a floor facing +Y spans width along X and height along Z.
// Planes are one sided: rays travelling along the normal pass through.
func (bld *Builder) NewPlane(center, normal ms3.Vec, width, height float32, mat Material) Object {
	axis := normalAxis(normal)
	if axis < 0 {
		bld.shapeErrorf("plane normal %v must be a signed unit axis", normal)
		axis = 1
		normal = ms3.Vec{Y: 1}
	}
	if width <= 0 || height <= 0 {
		bld.shapeErrorf("bad plane dimensions %v x %v", width, height)
	}
	return newPlane(center, normal, axis, width, height, mat)
}

func newPlane(center, normal ms3.Vec, axis int, width, height float32, mat Material) *plane {
	var half ms3.Vec
	first := true
	for i := range 3 {
		switch {
		case i == axis:
			half = withComp(half, i, PlaneDepth)
		case first:
			half = withComp(half, i, width/2)
			first = false
		default:
			half = withComp(half, i, height/2)
		}
	}
	return &plane{mat: mat, center: center, normal: normal, axis: axis, half: half}
}

// normalAxis returns the index of the axis n is aligned with or -1 if n is not a signed unit axis.
func normalAxis(n ms3.Vec) int {
	switch {
	case n.X != 0 && n.Y == 0 && n.Z == 0 && absf(n.X) == 1:
		return 0
	case n.X == 0 && n.Y != 0 && n.Z == 0 && absf(n.Y) == 1:
		return 1
	case n.X == 0 && n.Y == 0 && n.Z != 0 && absf(n.Z) == 1:
		return 2
	}
	return -1
}

func (p *plane) isObject()           {}
func (p *plane) Kind() Kind          { return KindPlane }
func (p *plane) Position() ms3.Vec   { return p.center }
func (p *plane) Material() *Material { return &p.mat }

func (p *plane) Bounds() ms3.Box {
	return ms3.NewCenteredBox(p.center, ms3.Scale(2, p.half))
}

func (p *plane) Intersect(r Ray) (Hit, bool) {
	den := ms3.Dot(r.Dir, p.normal)
	if den > -epstol {
		return Hit{}, false
	}
	t := ms3.Dot(ms3.Sub(p.center, r.Origin), p.normal) / den
	if t <= minHitDist {
		return Hit{}, false
	}
	pt := r.At(t)
	if !p.contains(ms3.Sub(pt, p.center)) {
		return Hit{}, false
	}
	return Hit{Point: pt, Normal: p.normal, Distance: t, Object: p}, true
}

// contains reports whether local lies strictly within the rectangle's in-plane extents.
func (p *plane) contains(local ms3.Vec) bool {
	for i := range 3 {
		if i != p.axis && absf(comp(local, i)) >= comp(p.half, i) {
			return false
		}
	}
	return true
}

func (p *plane) Distance(pos ms3.Vec) float32 {
	local := ms3.Sub(pos, p.center)
	return maxf(ms3.Dot(local, p.normal), sdBox(local, p.half))
}

func (p *plane) Normal(ms3.Vec) ms3.Vec { return p.normal }

func (p *plane) TextureCoords(pos ms3.Vec) (u, v float32) {
	return p.coords(pos, p.mat.Tiles)
}

// coords projects pos onto the plane's texture axes and tiles the result.
func (p *plane) coords(pos ms3.Vec, tiles float32) (u, v float32) {
	local := ms3.Sub(pos, p.center)
	up := p.up()
	right := ms3.Unit(ms3.Cross(p.normal, up))
	return tile(ms3.Dot(local, right), tiles), tile(ms3.Dot(local, up), tiles)
}

// up returns the in-plane direction textures are aligned to.
func (p *plane) up() ms3.Vec {
	if p.axis == 1 {
		return ms3.Vec{Z: -1}
	}
	return ms3.Vec{Y: 1}
}
