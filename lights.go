package sdfray

import (
	"math/rand"

	"github.com/soypat/glgl/math/ms3"
)

// LightSample is one shadow ray toward a light together with the
// position on the light the ray aims at.
type LightSample struct {
	Ray Ray
	Pos ms3.Vec
}

// Light illuminates surfaces. The set of implementations is closed:
// [PointLight], [AreaLight] and [AmbientLight].
type Light interface {
	// Intensity is the light's power. Lights with non-positive intensity contribute nothing.
	Intensity() float32
	// AppendSamples appends the shadow rays from surface point p with normal n toward
	// the light and returns the extended buffer. rng drives any random sampling.
	AppendSamples(dst []LightSample, p, n ms3.Vec, rng *rand.Rand) []LightSample

	isLight()
}

// Illumination is the inverse square falloff of a light of given intensity
// at squared distance dist2.
func Illumination(intensity, dist2 float32) float32 {
	if dist2 < epstol {
		dist2 = epstol
	}
	return intensity / dist2
}

func sampleOrigin(p, n ms3.Vec) ms3.Vec {
	return ms3.Add(p, ms3.Scale(SampleOffset, n))
}

// PointLight emits from a single position.
type PointLight struct {
	pos       ms3.Vec
	intensity float32
}

// NewPointLight creates a point light at pos.
func (bld *Builder) NewPointLight(pos ms3.Vec, intensity float32) *PointLight {
	return &PointLight{pos: pos, intensity: intensity}
}

func (l *PointLight) isLight()           {}
func (l *PointLight) Intensity() float32 { return l.intensity }
func (l *PointLight) Position() ms3.Vec  { return l.pos }

// AppendSamples appends exactly one sample. rng is not used.
func (l *PointLight) AppendSamples(dst []LightSample, p, n ms3.Vec, _ *rand.Rand) []LightSample {
	origin := sampleOrigin(p, n)
	return append(dst, LightSample{
		Ray: NewRay(origin, ms3.Sub(l.pos, p)),
		Pos: l.pos,
	})
}

// AreaLightConfig describes a horizontal rectangular light.
type AreaLightConfig struct {
	// Position is the center of the rectangle. The light faces down (-Y).
	Position  ms3.Vec
	Intensity float32
	// Width spans X and Height spans Z.
	Width, Height float32
	// DivsWidth and DivsHeight set the grid of cells over the rectangle.
	DivsWidth, DivsHeight int
	// Samples is the number of jittered samples drawn in each cell per shading query.
	Samples int
}

// DefaultAreaLightConfig returns a 10x10 light split into a 5x5 grid with one sample per cell.
func DefaultAreaLightConfig(pos ms3.Vec) AreaLightConfig {
	return AreaLightConfig{
		Position:   pos,
		Intensity:  500,
		Width:      10,
		Height:     10,
		DivsWidth:  5,
		DivsHeight: 5,
		Samples:    1,
	}
}

// AreaLight is a rectangular light producing soft shadows. Its samples are
// redrawn on every query so repeated renders average into penumbrae.
type AreaLight struct {
	cfg AreaLightConfig
}

// NewAreaLight creates an area light.
func (bld *Builder) NewAreaLight(cfg AreaLightConfig) *AreaLight {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		bld.shapeErrorf("bad area light dimensions %v x %v", cfg.Width, cfg.Height)
	}
	if cfg.DivsWidth < 1 || cfg.DivsHeight < 1 || cfg.Samples < 1 {
		bld.shapeErrorf("area light requires at least one division and sample, got %dx%d divisions and %d samples", cfg.DivsWidth, cfg.DivsHeight, cfg.Samples)
		cfg.DivsWidth = max(cfg.DivsWidth, 1)
		cfg.DivsHeight = max(cfg.DivsHeight, 1)
		cfg.Samples = max(cfg.Samples, 1)
	}
	return &AreaLight{cfg: cfg}
}

func (l *AreaLight) isLight()           {}
func (l *AreaLight) Intensity() float32 { return l.cfg.Intensity }
func (l *AreaLight) Position() ms3.Vec  { return l.cfg.Position }

// Config returns the light's parameters.
func (l *AreaLight) Config() AreaLightConfig { return l.cfg }

// NumSamples returns the number of samples produced by each call to AppendSamples.
func (l *AreaLight) NumSamples() int {
	return l.cfg.DivsWidth * l.cfg.DivsHeight * l.cfg.Samples
}

func (l *AreaLight) AppendSamples(dst []LightSample, p, n ms3.Vec, rng *rand.Rand) []LightSample {
	cfg := &l.cfg
	origin := sampleOrigin(p, n)
	cellW := cfg.Width / float32(cfg.DivsWidth)
	cellH := cfg.Height / float32(cfg.DivsHeight)
	left := -cfg.Width / 2
	top := -cfg.Height / 2
	for i := range cfg.DivsWidth {
		x0 := left + float32(i)*cellW
		for j := range cfg.DivsHeight {
			z0 := top + float32(j)*cellH
			for range cfg.Samples {
				pos := ms3.Add(cfg.Position, ms3.Vec{
					X: x0 + rng.Float32()*cellW,
					Z: z0 + rng.Float32()*cellH,
				})
				dst = append(dst, LightSample{Ray: NewRay(origin, ms3.Sub(pos, p)), Pos: pos})
			}
		}
	}
	return dst
}

// Intersect treats the light as a rectangle facing up so it can be picked from above.
func (l *AreaLight) Intersect(r Ray) (Hit, bool) {
	cfg := &l.cfg
	if r.Dir.Y > -epstol {
		return Hit{}, false
	}
	t := (cfg.Position.Y - r.Origin.Y) / r.Dir.Y
	if t <= minHitDist {
		return Hit{}, false
	}
	p := r.At(t)
	local := ms3.Sub(p, cfg.Position)
	if absf(local.X) >= cfg.Width/2 || absf(local.Z) >= cfg.Height/2 {
		return Hit{}, false
	}
	return Hit{Point: p, Normal: ms3.Vec{Y: 1}, Distance: t}, true
}

// AmbientLight adds a constant term independent of visibility. It produces no samples.
type AmbientLight struct {
	intensity float32
}

// NewAmbientLight creates an ambient light.
func (bld *Builder) NewAmbientLight(intensity float32) *AmbientLight {
	return &AmbientLight{intensity: intensity}
}

func (l *AmbientLight) isLight()           {}
func (l *AmbientLight) Intensity() float32 { return l.intensity }

func (l *AmbientLight) AppendSamples(dst []LightSample, _, _ ms3.Vec, _ *rand.Rand) []LightSample {
	return dst
}
