package render

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
)

// MaxSpecularPower is the specular exponent a fully bright specular map texel maps to.
const MaxSpecularPower = 255

// ShadeMode selects the lighting model.
type ShadeMode uint8

const (
	// ShadeFlat returns the unlit surface color.
	ShadeFlat ShadeMode = iota
	// ShadeLambert adds ambient and diffuse lighting.
	ShadeLambert
	// ShadePhong adds Blinn-Phong specular highlights to ShadeLambert.
	ShadePhong
)

func (m ShadeMode) String() string {
	switch m {
	case ShadeFlat:
		return "flat"
	case ShadeLambert:
		return "lambert"
	case ShadePhong:
		return "phong"
	}
	return "invalid"
}

// ParseShadeMode parses the String form of a ShadeMode.
func ParseShadeMode(s string) (ShadeMode, bool) {
	for _, m := range [...]ShadeMode{ShadeFlat, ShadeLambert, ShadePhong} {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Occluder decides whether a light sample ray is blocked.
type Occluder interface {
	Occluded(r sdfray.Ray) bool
}

// TraceOccluder tests shadow rays analytically against its objects.
type TraceOccluder []sdfray.Object

func (objs TraceOccluder) Occluded(r sdfray.Ray) bool { return InShadow(r, objs) }

// MarchOccluder tests shadow rays by marching through its objects' distance fields.
type MarchOccluder struct {
	Marcher Marcher
	Objects []sdfray.Object
}

func (mo MarchOccluder) Occluded(r sdfray.Ray) bool { return mo.Marcher.InShadow(r, mo.Objects) }

// Sampler holds per goroutine shading state: the random source used by area lights
// and reusable sample storage. It must not be shared between goroutines.
type Sampler struct {
	Rand *rand.Rand
	buf  []sdfray.LightSample
	// ShadowRays counts the shadow rays cast so far.
	ShadowRays uint64
}

// NewSampler returns a Sampler seeded with seed.
func NewSampler(seed int64) *Sampler {
	return &Sampler{Rand: rand.New(rand.NewSource(seed))}
}

// Shader computes surface colors from the scene's lights.
type Shader struct {
	Mode ShadeMode
	// Ambient scales the diffuse color independently of lights.
	Ambient float32
	// SpecularPower is the Blinn-Phong exponent used for untextured surfaces.
	SpecularPower float32
	Lights        []sdfray.Light
	// Occluder tests shadow rays. A nil Occluder disables shadows.
	Occluder Occluder
	// Eye is the viewer's position, used for specular highlights.
	Eye ms3.Vec
}

// Surface returns the material properties of obj at p, reading bound textures if any.
func (sh *Shader) Surface(obj sdfray.Object, p ms3.Vec) (diffuse, specular sdfray.Color, power float32) {
	mat := obj.Material()
	diffuse, specular, power = mat.Diffuse, mat.Specular, sh.SpecularPower
	if mat.Textured() {
		u, v := obj.TextureCoords(p)
		diffuse = mat.DiffuseMap.At(u, v)
		if sh.Mode == ShadePhong {
			power = mat.SpecularMap.Brightness(u, v) * MaxSpecularPower
		}
	}
	return diffuse, specular, power
}

// HitColor returns the shaded color of a surface point p with normal n on obj.
func (sh *Shader) HitColor(s *Sampler, obj sdfray.Object, p, n ms3.Vec) sdfray.Color {
	diffuse, specular, power := sh.Surface(obj, p)
	if sh.Mode == ShadeFlat {
		return diffuse
	}
	return sh.Shade(s, p, n, diffuse, specular, power)
}

// Shade lights point p with unit normal n. The result starts from the ambient term and
// adds, per light with positive intensity, the diffuse and specular contributions averaged
// over the light's unoccluded samples. ShadeFlat returns diffuse unchanged.
func (sh *Shader) Shade(s *Sampler, p, n ms3.Vec, diffuse, specular sdfray.Color, power float32) sdfray.Color {
	if sh.Mode == ShadeFlat {
		return diffuse
	}
	ambient := sh.Ambient
	for _, l := range sh.Lights {
		if a, ok := l.(*sdfray.AmbientLight); ok && a.Intensity() > 0 {
			ambient += a.Intensity()
		}
	}
	result := ms3.Scale(ambient, diffuse)
	view := ms3.Unit(ms3.Sub(sh.Eye, p))
	for _, l := range sh.Lights {
		intensity := l.Intensity()
		if intensity <= 0 {
			continue
		}
		s.buf = l.AppendSamples(s.buf[:0], p, n, s.Rand)
		if len(s.buf) == 0 {
			continue
		}
		var totalDiffuse, totalSpecular float32
		for _, smp := range s.buf {
			s.ShadowRays++
			if sh.Occluder != nil && sh.Occluder.Occluded(smp.Ray) {
				continue
			}
			toLight := ms3.Sub(smp.Pos, p)
			illum := sdfray.Illumination(intensity, ms3.Dot(toLight, toLight))
			dir := smp.Ray.Dir
			totalDiffuse += math32.Max(ms3.Dot(n, dir), 0) * illum
			if sh.Mode == ShadePhong {
				h := ms3.Unit(ms3.Add(view, dir))
				totalSpecular += math32.Pow(math32.Max(ms3.Dot(n, h), 0), power) * illum
			}
		}
		num := float32(len(s.buf))
		result = ms3.Add(result, ms3.Scale(totalDiffuse/num, diffuse))
		result = ms3.Add(result, ms3.Scale(totalSpecular/num, specular))
	}
	return result
}
