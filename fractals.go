package sdfray

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

const (
	// MaxMengerLevel caps sponge recursion, past which float32 cells vanish.
	MaxMengerLevel = 8
	// MaxMandelbulbIterations caps the escape time iteration budget.
	MaxMandelbulbIterations = 64
	gradientStep            = 1e-3
)

type mengerSponge struct {
	mat    Material
	center ms3.Vec
	size   float32
	level  int
	// faces are the outward facing sides of the bounding cube used for ray tracing.
	faces [6]*plane
}

// NewMengerSponge creates a Menger sponge: a cube of side size centered at center with
// cross shaped voids carved level times.
func (bld *Builder) NewMengerSponge(center ms3.Vec, size float32, level int, mat Material) Object {
	if size <= 0 {
		bld.shapeErrorf("bad menger sponge size %v", size)
	}
	if level < 0 || level > MaxMengerLevel {
		bld.shapeErrorf("menger sponge level %d out of range [0,%d]", level, MaxMengerLevel)
		level = max(0, min(level, MaxMengerLevel))
	}
	m := &mengerSponge{mat: mat, center: center, size: size, level: level}
	i := 0
	for axis := range 3 {
		for _, sign := range [2]float32{1, -1} {
			n := withComp(ms3.Vec{}, axis, sign)
			c := ms3.Add(center, ms3.Scale(size/2, n))
			m.faces[i] = newPlane(c, n, axis, size, size, mat)
			i++
		}
	}
	return m
}

func (m *mengerSponge) isObject()           {}
func (m *mengerSponge) Kind() Kind          { return KindMengerSponge }
func (m *mengerSponge) Position() ms3.Vec   { return m.center }
func (m *mengerSponge) Material() *Material { return &m.mat }

// Level returns the number of carving iterations.
func (m *mengerSponge) Level() int { return m.level }

func (m *mengerSponge) Bounds() ms3.Box {
	return ms3.NewCenteredBox(m.center, cube(m.size))
}

// Intersect approximates the sponge by its bounding faces.
func (m *mengerSponge) Intersect(r Ray) (Hit, bool) {
	var closest Hit
	found := false
	for _, f := range m.faces {
		hit, ok := f.Intersect(r)
		if ok && (!found || hit.Distance < closest.Distance) {
			closest = hit
			found = true
		}
	}
	closest.Object = m
	return closest, found
}

func (m *mengerSponge) Distance(p ms3.Vec) float32 {
	h := m.size / 2
	q := ms3.Scale(1/h, ms3.Sub(p, m.center))
	return h * mengerUnit(q, m.level)
}

// mengerUnit is the sponge distance for a cube spanning [-1,1] on each axis.
func mengerUnit(p ms3.Vec, level int) float32 {
	d := sdBox(p, cube(1))
	var s float32 = 1
	for range level {
		a := ms3.AddScalar(-1, ms3.Vec{X: modf(p.X*s, 2), Y: modf(p.Y*s, 2), Z: modf(p.Z*s, 2)})
		s *= 3
		r := ms3.AbsElem(ms3.AddScalar(1, ms3.Scale(-3, ms3.AbsElem(a))))
		da := maxf(r.X, r.Y)
		db := maxf(r.Y, r.Z)
		dc := maxf(r.Z, r.X)
		c := (minf(da, minf(db, dc)) - 1) / s
		d = maxf(d, c)
	}
	return d
}

func (m *mengerSponge) Normal(p ms3.Vec) ms3.Vec {
	return gradient(m.Distance, p)
}

// TextureCoords uses the coordinates of the face whose center is nearest to p
// tiled by the sponge's own material.
func (m *mengerSponge) TextureCoords(p ms3.Vec) (u, v float32) {
	nearest := m.faces[0]
	best := float32(largenum)
	for _, f := range m.faces {
		d := ms3.Norm(ms3.Sub(f.center, p))
		if d < best {
			best = d
			nearest = f
		}
	}
	return nearest.coords(p, m.mat.Tiles)
}

type mandelbulb struct {
	mat        Material
	center     ms3.Vec
	iterations int
	power      float32
	bailout    float32
}

// NewMandelbulb creates a Mandelbulb fractal centered at center. The power map is
// iterated until the iterate escapes the bailout radius or the iteration budget runs out.
// Ray tracing approximates the shape by its unit bounding sphere.
func (bld *Builder) NewMandelbulb(center ms3.Vec, iterations int, power, bailout float32, mat Material) Object {
	if iterations < 1 || iterations > MaxMandelbulbIterations {
		bld.shapeErrorf("mandelbulb iterations %d out of range [1,%d]", iterations, MaxMandelbulbIterations)
		iterations = max(1, min(iterations, MaxMandelbulbIterations))
	}
	if power < 1 {
		bld.shapeErrorf("bad mandelbulb power %v", power)
	}
	if bailout <= 0 {
		bld.shapeErrorf("bad mandelbulb bailout %v", bailout)
	}
	return &mandelbulb{mat: mat, center: center, iterations: iterations, power: power, bailout: bailout}
}

func (b *mandelbulb) isObject()           {}
func (b *mandelbulb) Kind() Kind          { return KindMandelbulb }
func (b *mandelbulb) Position() ms3.Vec   { return b.center }
func (b *mandelbulb) Material() *Material { return &b.mat }

func (b *mandelbulb) Bounds() ms3.Box {
	return ms3.NewCenteredBox(b.center, cube(2))
}

func (b *mandelbulb) Intersect(r Ray) (Hit, bool) {
	t, ok := raySphere(r, b.center, 1)
	if !ok {
		return Hit{}, false
	}
	p := r.At(t)
	return Hit{Point: p, Normal: ms3.Unit(ms3.Sub(p, b.center)), Distance: t, Object: b}, true
}

func (b *mandelbulb) Distance(p ms3.Vec) float32 {
	local := ms3.Sub(p, b.center)
	z := local
	var dr float32 = 1
	var r float32
	for range b.iterations {
		r = ms3.Norm(z)
		if r > b.bailout {
			break
		}
		var theta, phi float32
		if r > epstol {
			theta = math32.Acos(clampf(z.Z/r, -1, 1))
			phi = math32.Atan2(z.Y, z.X)
		}
		dr = math32.Pow(r, b.power-1)*b.power*dr + 1
		zr := math32.Pow(r, b.power)
		theta *= b.power
		phi *= b.power
		sinTheta, cosTheta := math32.Sin(theta), math32.Cos(theta)
		sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)
		z = ms3.Add(ms3.Scale(zr, ms3.Vec{X: sinTheta * cosPhi, Y: sinPhi * sinTheta, Z: cosTheta}), local)
	}
	// The origin never escapes; keep the estimate finite and negative there.
	r = maxf(r, 1e-6)
	return 0.5 * math32.Log(r) * r / dr
}

func (b *mandelbulb) Normal(p ms3.Vec) ms3.Vec {
	return gradient(b.Distance, p)
}

func (b *mandelbulb) TextureCoords(p ms3.Vec) (u, v float32) {
	return sphericalCoords(ms3.Sub(p, b.center), 1, b.mat.Tiles)
}

// gradient returns the normalized central difference gradient of sdf at p.
func gradient(sdf func(ms3.Vec) float32, p ms3.Vec) ms3.Vec {
	const h = gradientStep
	n := ms3.Vec{
		X: sdf(ms3.Add(p, ms3.Vec{X: h})) - sdf(ms3.Sub(p, ms3.Vec{X: h})),
		Y: sdf(ms3.Add(p, ms3.Vec{Y: h})) - sdf(ms3.Sub(p, ms3.Vec{Y: h})),
		Z: sdf(ms3.Add(p, ms3.Vec{Z: h})) - sdf(ms3.Sub(p, ms3.Vec{Z: h})),
	}
	if ms3.Norm(n) < epstol {
		return ms3.Vec{Y: 1}
	}
	return ms3.Unit(n)
}
