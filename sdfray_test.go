package sdfray_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
)

const tol = 1e-4

func randVec(rng *rand.Rand, scale float32) ms3.Vec {
	return ms3.Vec{
		X: scale * (2*rng.Float32() - 1),
		Y: scale * (2*rng.Float32() - 1),
		Z: scale * (2*rng.Float32() - 1),
	}
}

func TestNewRayUnitLength(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		dir := randVec(rng, 100)
		if ms3.Norm(dir) < 1e-3 {
			continue
		}
		r := sdfray.NewRay(randVec(rng, 10), dir)
		if got := ms3.Norm(r.Dir); math32.Abs(got-1) > tol {
			t.Fatalf("ray direction %v has length %v", r.Dir, got)
		}
	}
}

func TestSphereIntersectAtCenter(t *testing.T) {
	var bld sdfray.Builder
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		center := randVec(rng, 10)
		radius := 0.1 + 3*rng.Float32()
		origin := randVec(rng, 30)
		dist := ms3.Norm(ms3.Sub(origin, center))
		if dist <= radius+0.01 {
			continue
		}
		s := bld.NewSphere(center, radius, sdfray.NewMaterial(sdfray.White))
		hit, ok := s.Intersect(sdfray.NewRay(origin, ms3.Sub(center, origin)))
		if !ok {
			t.Fatalf("ray from %v toward sphere center %v missed", origin, center)
		}
		want := dist - radius
		if math32.Abs(hit.Distance-want) > tol*max(1, want) {
			t.Errorf("hit distance %v, want %v", hit.Distance, want)
		}
		if math32.Abs(ms3.Norm(hit.Normal)-1) > tol {
			t.Errorf("non unit normal %v", hit.Normal)
		}
		if hit.Object != s {
			t.Error("hit does not reference sphere")
		}
	}
}

func TestSphereIntersectFromInside(t *testing.T) {
	var bld sdfray.Builder
	s := bld.NewSphere(ms3.Vec{X: 1}, 2, sdfray.NewMaterial(sdfray.White))
	hit, ok := s.Intersect(sdfray.NewRay(ms3.Vec{X: 1}, ms3.Vec{Y: 1}))
	if !ok {
		t.Fatal("ray from inside sphere missed")
	}
	if math32.Abs(hit.Distance-2) > tol {
		t.Errorf("got distance %v, want 2", hit.Distance)
	}
	// Pointing away from a sphere never hits it.
	_, ok = s.Intersect(sdfray.NewRay(ms3.Vec{X: 10}, ms3.Vec{X: 1}))
	if ok {
		t.Error("ray pointing away from sphere hit")
	}
}

func TestPlaneIntersect(t *testing.T) {
	var bld sdfray.Builder
	floor := bld.NewPlane(ms3.Vec{Y: -2}, ms3.Vec{Y: 1}, 20, 10, sdfray.NewMaterial(sdfray.DarkGray))
	down := ms3.Vec{Y: -1}
	for _, test := range []struct {
		origin ms3.Vec
		dir    ms3.Vec
		hit    bool
	}{
		{origin: ms3.Vec{Y: 5}, dir: down, hit: true},
		{origin: ms3.Vec{X: 9.9, Y: 5}, dir: down, hit: true},
		{origin: ms3.Vec{X: 10.1, Y: 5}, dir: down, hit: false},
		// height spans Z for a floor.
		{origin: ms3.Vec{Z: 4.9, Y: 5}, dir: down, hit: true},
		{origin: ms3.Vec{Z: 5.1, Y: 5}, dir: down, hit: false},
		// One sided: rays travelling with the normal pass through.
		{origin: ms3.Vec{Y: -5}, dir: ms3.Vec{Y: 1}, hit: false},
		// Parallel.
		{origin: ms3.Vec{Y: 5}, dir: ms3.Vec{X: 1}, hit: false},
		// Behind the origin.
		{origin: ms3.Vec{Y: -3}, dir: down, hit: false},
	} {
		hit, ok := floor.Intersect(sdfray.NewRay(test.origin, test.dir))
		if ok != test.hit {
			t.Errorf("ray %v->%v: got hit=%v, want %v", test.origin, test.dir, ok, test.hit)
			continue
		}
		if ok {
			want := test.origin.Y + 2
			if math32.Abs(hit.Distance-want) > tol || hit.Normal != (ms3.Vec{Y: 1}) {
				t.Errorf("ray %v: got distance %v normal %v, want %v", test.origin, hit.Distance, hit.Normal, want)
			}
		}
	}
}

func TestBuilderErrors(t *testing.T) {
	bld := sdfray.Builder{NoDimensionPanic: true}
	mat := sdfray.NewMaterial(sdfray.White)
	bld.NewSphere(ms3.Vec{}, -1, mat)
	bld.NewPlane(ms3.Vec{}, ms3.Vec{X: 1, Y: 1}, 1, 1, mat)
	bld.NewMengerSponge(ms3.Vec{}, 1, -1, mat)
	bld.NewMandelbulb(ms3.Vec{}, 0, 8, 2, mat)
	bld.NewAreaLight(sdfray.AreaLightConfig{Width: 1, Height: 1})
	if bld.Err() == nil {
		t.Fatal("expected accumulated errors")
	}
	bld.ClearErrors()
	bld.NewSphere(ms3.Vec{}, 1, mat)
	if err := bld.Err(); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic on bad dimension")
		}
	}()
	var panicky sdfray.Builder
	panicky.NewSphere(ms3.Vec{}, 0, mat)
}

func TestBoundaryClassification(t *testing.T) {
	var bld sdfray.Builder
	mat := sdfray.NewMaterial(sdfray.White)
	const samples = 1000
	const margin = 1e-3

	t.Run("sphere", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		center := ms3.Vec{X: 1, Y: -2, Z: 0.5}
		s := bld.NewSphere(center, 1.5, mat)
		for i := 0; i < samples; i++ {
			p := ms3.Add(center, randVec(rng, 3))
			d := ms3.Norm(ms3.Sub(p, center)) - 1.5
			if math32.Abs(d) < margin {
				continue
			}
			checkSign(t, s, p, d <= 0)
		}
	})

	t.Run("plane", func(t *testing.T) {
		rng := rand.New(rand.NewSource(2))
		for _, n := range []ms3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}} {
			center := ms3.Vec{X: -1, Y: 2, Z: 3}
			pl := bld.NewPlane(center, n, 4, 2, mat)
			bb := pl.Bounds()
			sz := bb.Size()
			for i := 0; i < samples; i++ {
				local := ms3.Vec{
					X: sz.X * 1.5 * (rng.Float32() - 0.5),
					Y: sz.Y * 1.5 * (rng.Float32() - 0.5),
					Z: sz.Z * 1.5 * (rng.Float32() - 0.5),
				}
				p := ms3.Add(center, local)
				inside, ambiguous := insidePlane(local, n, ms3.Scale(0.5, sz), margin)
				if ambiguous {
					continue
				}
				checkSign(t, pl, p, inside)
			}
		}
	})

	t.Run("menger", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		center := ms3.Vec{X: 0.5, Y: -0.25, Z: 1}
		const size float32 = 3
		for level := 0; level <= 3; level++ {
			m := bld.NewMengerSponge(center, size, level, mat)
			tested := 0
			for i := 0; tested < samples && i < 100*samples; i++ {
				q := randVec(rng, 1.2)
				inside, ambiguous := insideMenger(q, level, margin)
				if ambiguous {
					continue
				}
				tested++
				p := ms3.Add(center, ms3.Scale(size/2, q))
				checkSign(t, m, p, inside)
			}
			if tested < samples {
				t.Fatalf("level %d: only %d unambiguous samples", level, tested)
			}
		}
	})

	t.Run("mandelbulb", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		center := ms3.Vec{X: -1, Y: 0.5}
		const iterations, bailout = 5, 4
		for _, power := range []float32{3, 8} {
			b := bld.NewMandelbulb(center, iterations, power, bailout, mat)
			tested, insides := 0, 0
			for i := 0; tested < samples && i < 100*samples; i++ {
				q := randVec(rng, 1.3)
				inside, ambiguous := insideMandelbulb(q, iterations, float64(power), bailout, 0.1)
				if ambiguous {
					continue
				}
				tested++
				if inside {
					insides++
				}
				checkSign(t, b, ms3.Add(center, q), inside)
			}
			if tested < samples || insides == 0 {
				t.Fatalf("power %v: %d unambiguous samples, %d inside", power, tested, insides)
			}
		}
	})
}

func checkSign(t *testing.T, obj sdfray.Object, p ms3.Vec, inside bool) {
	t.Helper()
	d := obj.Distance(p)
	if (d <= 0) != inside {
		t.Fatalf("%s at %v: distance %v but inside=%v", obj.Kind(), p, d, inside)
	}
}

// insidePlane classifies a point relative to a plane's slab given in local coordinates.
func insidePlane(local, n, half ms3.Vec, margin float32) (inside, ambiguous bool) {
	h := ms3.Dot(local, n)
	inside = h <= 0 && h >= -sdfray.PlaneDepth
	ambiguous = math32.Abs(h) < margin || math32.Abs(h+sdfray.PlaneDepth) < margin
	lateral := [3]float32{local.X, local.Y, local.Z}
	halves := [3]float32{half.X, half.Y, half.Z}
	normal := [3]float32{n.X, n.Y, n.Z}
	for i := range lateral {
		if normal[i] != 0 {
			continue
		}
		a := math32.Abs(lateral[i])
		inside = inside && a <= halves[i]
		ambiguous = ambiguous || math32.Abs(a-halves[i]) < margin
	}
	return inside, ambiguous
}

// insideMenger classifies q, given in coordinates where the sponge spans [-1,1],
// by its base 3 digits: a cell is carved when two or more coordinates fall in a middle third.
func insideMenger(q ms3.Vec, level int, margin float32) (inside, ambiguous bool) {
	coords := [3]float32{q.X, q.Y, q.Z}
	for _, c := range coords {
		a := math32.Abs(c)
		if math32.Abs(a-1) < margin {
			return false, true
		} else if a > 1 {
			return false, false
		}
	}
	scale := float32(3)
	for range level {
		middles := 0
		for _, c := range coords {
			x := (c + 1) / 2 * scale
			if math32.Abs(x-math32.Round(x)) < margin*scale {
				return false, true
			}
			if int(math32.Floor(x))%3 == 1 {
				middles++
			}
		}
		if middles >= 2 {
			return false, false
		}
		scale *= 3
	}
	return true, false
}

// insideMandelbulb runs the escape time iteration for c in double precision. Points that
// escape the bailout radius are outside. Points that do not are inside when their last
// iterate lies in the unit sphere and ambiguous otherwise. Iterates within margin of either
// radius are ambiguous too.
func insideMandelbulb(c ms3.Vec, iterations int, power, bailout, margin float64) (inside, ambiguous bool) {
	cx, cy, cz := float64(c.X), float64(c.Y), float64(c.Z)
	x, y, z := cx, cy, cz
	var r float64
	for range iterations {
		r = math.Sqrt(x*x + y*y + z*z)
		if math.Abs(r-bailout) < margin*bailout {
			return false, true
		} else if r > bailout {
			return false, false
		}
		var theta, phi float64
		if r > 1e-9 {
			theta = power * math.Acos(math.Max(-1, math.Min(1, z/r)))
			phi = power * math.Atan2(y, x)
		}
		zr := math.Pow(r, power)
		x = zr*math.Sin(theta)*math.Cos(phi) + cx
		y = zr*math.Sin(theta)*math.Sin(phi) + cy
		z = zr*math.Cos(theta) + cz
	}
	if r > 1-margin {
		return false, true
	}
	return true, false
}

func TestMandelbulbFinite(t *testing.T) {
	var bld sdfray.Builder
	mat := sdfray.NewMaterial(sdfray.White)
	center := ms3.Vec{X: 2}
	b := bld.NewMandelbulb(center, 8, 8, 4, mat)
	if d := b.Distance(center); !(d <= 0) || math32.IsInf(d, 0) {
		t.Errorf("distance at bulb center should be finite and non positive, got %v", d)
	}
	if d := b.Distance(ms3.Add(center, ms3.Vec{Y: 3})); d <= 0 {
		t.Errorf("distance far outside bulb should be positive, got %v", d)
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		p := ms3.Add(center, randVec(rng, 2))
		d := b.Distance(p)
		if math32.IsNaN(d) || math32.IsInf(d, 0) {
			t.Fatalf("non finite distance %v at %v", d, p)
		}
	}
	// Ray tracing uses the bounding sphere.
	hit, ok := b.Intersect(sdfray.NewRay(ms3.Vec{X: 2, Z: 10}, ms3.Vec{Z: -1}))
	if !ok || math32.Abs(hit.Distance-9) > tol {
		t.Errorf("bounding sphere hit: ok=%v distance=%v", ok, hit.Distance)
	}
}

func TestMengerIntersectNearestFace(t *testing.T) {
	var bld sdfray.Builder
	m := bld.NewMengerSponge(ms3.Vec{}, 2, 2, sdfray.NewMaterial(sdfray.Orange))
	for _, test := range []struct {
		origin, dir ms3.Vec
		want        float32
		normal      ms3.Vec
	}{
		{origin: ms3.Vec{Z: 10}, dir: ms3.Vec{Z: -1}, want: 9, normal: ms3.Vec{Z: 1}},
		{origin: ms3.Vec{X: -5, Y: 0.5}, dir: ms3.Vec{X: 1}, want: 4, normal: ms3.Vec{X: -1}},
		{origin: ms3.Vec{Y: 7, Z: 0.2}, dir: ms3.Vec{Y: -1}, want: 6, normal: ms3.Vec{Y: 1}},
	} {
		hit, ok := m.Intersect(sdfray.NewRay(test.origin, test.dir))
		if !ok {
			t.Fatalf("ray from %v missed sponge", test.origin)
		}
		if math32.Abs(hit.Distance-test.want) > tol || hit.Normal != test.normal {
			t.Errorf("ray from %v: got distance %v normal %v, want %v %v", test.origin, hit.Distance, hit.Normal, test.want, test.normal)
		}
		if hit.Object != m {
			t.Error("hit must reference the sponge, not its face")
		}
	}
}

func TestMengerTextureTiles(t *testing.T) {
	var bld sdfray.Builder
	mat := sdfray.NewMaterial(sdfray.White)
	m := bld.NewMengerSponge(ms3.Vec{}, 2, 1, mat)
	mat.Tiles = 4
	want := bld.NewMengerSponge(ms3.Vec{}, 2, 1, mat)
	p := ms3.Vec{X: 0.7, Y: 0.7, Z: 1}
	u1, v1 := m.TextureCoords(p)
	// Scene files set tiling after construction.
	m.Material().Tiles = 4
	u, v := m.TextureCoords(p)
	wu, wv := want.TextureCoords(p)
	if u != wu || v != wv {
		t.Errorf("got (%v,%v) after retiling, want (%v,%v)", u, v, wu, wv)
	}
	if u == u1 && v == v1 {
		t.Errorf("texture coords (%v,%v) unchanged by tiling", u, v)
	}
}

func TestTextureCoordsRange(t *testing.T) {
	var bld sdfray.Builder
	mat := sdfray.NewMaterial(sdfray.White)
	mat.Tiles = 2
	objs := []sdfray.Object{
		bld.NewSphere(ms3.Vec{Y: 1}, 2, mat),
		bld.NewPlane(ms3.Vec{Y: -2}, ms3.Vec{Y: 1}, 20, 20, mat),
		bld.NewPlane(ms3.Vec{Z: -5}, ms3.Vec{Z: 1}, 20, 20, mat),
		bld.NewMengerSponge(ms3.Vec{}, 2, 1, mat),
		bld.NewMandelbulb(ms3.Vec{}, 5, 8, 4, mat),
	}
	rng := rand.New(rand.NewSource(1))
	for _, obj := range objs {
		for i := 0; i < 500; i++ {
			p := ms3.Add(obj.Position(), randVec(rng, 15))
			u, v := obj.TextureCoords(p)
			if u < 0 || u >= 1 || v < 0 || v >= 1 {
				t.Fatalf("%s: texture coords (%v,%v) at %v out of [0,1)", obj.Kind(), u, v, p)
			}
		}
	}
}

func TestPointLightSamples(t *testing.T) {
	var bld sdfray.Builder
	light := bld.NewPointLight(ms3.Vec{Y: 10}, 200)
	p := ms3.Vec{X: 1}
	n := ms3.Vec{Y: 1}
	samples := light.AppendSamples(nil, p, n, nil)
	if len(samples) != 1 {
		t.Fatalf("got %d samples, want 1", len(samples))
	}
	smp := samples[0]
	wantOrigin := ms3.Add(p, ms3.Scale(sdfray.SampleOffset, n))
	if ms3.Norm(ms3.Sub(smp.Ray.Origin, wantOrigin)) > tol {
		t.Errorf("sample origin %v, want %v", smp.Ray.Origin, wantOrigin)
	}
	if smp.Pos != light.Position() {
		t.Errorf("sample position %v, want light position", smp.Pos)
	}
	if math32.Abs(ms3.Norm(smp.Ray.Dir)-1) > tol {
		t.Error("sample direction not unit")
	}
}

func TestAreaLightSamples(t *testing.T) {
	var bld sdfray.Builder
	cfg := sdfray.AreaLightConfig{
		Position:   ms3.Vec{X: 1, Y: 10, Z: -1},
		Intensity:  500,
		Width:      4,
		Height:     2,
		DivsWidth:  3,
		DivsHeight: 2,
		Samples:    4,
	}
	light := bld.NewAreaLight(cfg)
	rng := rand.New(rand.NewSource(1))
	first := light.AppendSamples(nil, ms3.Vec{}, ms3.Vec{Y: 1}, rng)
	if len(first) != 3*2*4 || len(first) != light.NumSamples() {
		t.Fatalf("got %d samples, want %d", len(first), 3*2*4)
	}
	for _, smp := range first {
		local := ms3.Sub(smp.Pos, cfg.Position)
		if local.Y != 0 || math32.Abs(local.X) > cfg.Width/2 || math32.Abs(local.Z) > cfg.Height/2 {
			t.Fatalf("sample %v outside light extent", smp.Pos)
		}
		if math32.Abs(ms3.Norm(smp.Ray.Dir)-1) > tol {
			t.Fatal("sample direction not unit")
		}
	}
	second := light.AppendSamples(nil, ms3.Vec{}, ms3.Vec{Y: 1}, rng)
	same := 0
	for i := range first {
		if first[i].Pos == second[i].Pos {
			same++
		}
	}
	if same == len(first) {
		t.Error("area light samples were not redrawn between calls")
	}

	// Picking from above hits the light, from below does not.
	if _, ok := light.Intersect(sdfray.NewRay(ms3.Vec{X: 1, Y: 20, Z: -1}, ms3.Vec{Y: -1})); !ok {
		t.Error("expected ray from above to hit area light")
	}
	if _, ok := light.Intersect(sdfray.NewRay(ms3.Vec{X: 10, Y: 20}, ms3.Vec{Y: -1})); ok {
		t.Error("ray outside light extent should miss")
	}
}

func TestCamera(t *testing.T) {
	cam, err := sdfray.NewCamera(sdfray.DefaultCameraConfig())
	if err != nil {
		t.Fatal(err)
	}
	center := cam.Ray(0.5, 0.5)
	if ms3.Norm(ms3.Sub(center.Dir, ms3.Vec{Z: -1})) > tol {
		t.Errorf("center ray direction %v, want -Z", center.Dir)
	}
	topLeft := cam.ToWorld(0, 0)
	want := ms3.Vec{X: -3, Y: 2, Z: 15}
	if ms3.Norm(ms3.Sub(topLeft, want)) > tol {
		t.Errorf("top left of view plane %v, want %v", topLeft, want)
	}
	for j := 0; j < 8; j++ {
		for i := 0; i < 8; i++ {
			r := cam.Ray((float32(i)+0.5)/8, (float32(j)+0.5)/8)
			if math32.Abs(ms3.Norm(r.Dir)-1) > tol {
				t.Fatalf("camera ray direction %v not unit", r.Dir)
			}
		}
	}

	// Looking straight down along the up hint still yields a valid basis.
	down, err := sdfray.NewCamera(sdfray.CameraConfig{
		Position: ms3.Vec{Y: 5}, LookAt: ms3.Vec{Y: -2}, Up: ms3.Vec{Y: 1},
		ViewDistance: 1, ViewWidth: 2, ViewHeight: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	r := down.Ray(0.5, 0.5)
	if ms3.Norm(ms3.Sub(r.Dir, ms3.Vec{Y: -1})) > tol {
		t.Errorf("downward camera center ray %v", r.Dir)
	}
	if _, err := sdfray.NewCamera(sdfray.CameraConfig{ViewDistance: 1, ViewWidth: 1, ViewHeight: 1}); err == nil {
		t.Error("expected error for coincident position and look-at")
	}
}
