package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/texture"
)

// vec3 is a JSON [x, y, z] array.
type vec3 [3]float32

func (v vec3) vec() ms3.Vec { return ms3.Vec{X: v[0], Y: v[1], Z: v[2]} }

// rgb is a JSON [r, g, b] array of 8 bit components.
type rgb [3]uint8

func (c *rgb) color(def sdfray.Color) sdfray.Color {
	if c == nil {
		return def
	}
	return sdfray.RGB8(c[0], c[1], c[2])
}

// File is the JSON layout of a scene file.
type File struct {
	Camera     *CameraJSON  `json:"camera,omitempty"`
	Ambient    *float32     `json:"ambient,omitempty"`
	Background *rgb         `json:"background,omitempty"`
	Objects    []ObjectJSON `json:"objects"`
	Lights     []LightJSON  `json:"lights"`
}

type CameraJSON struct {
	Position     vec3    `json:"position"`
	LookAt       vec3    `json:"lookAt"`
	Up           *vec3   `json:"up,omitempty"`
	ViewDistance float32 `json:"viewDistance"`
	ViewWidth    float32 `json:"viewWidth"`
	ViewHeight   float32 `json:"viewHeight"`
}

// ObjectJSON describes any object. Type is one of sphere, plane, menger or mandelbulb
// and selects which of the shape fields apply. Zero shape fields take the defaults
// of the interactive program: 20x20 planes, size 2 level 1 sponges and 5 iteration,
// power 3, bailout 4 bulbs.
type ObjectJSON struct {
	Type     string       `json:"type"`
	Name     string       `json:"name,omitempty"`
	Position vec3         `json:"position"`
	Color    *rgb         `json:"color,omitempty"`
	Specular *rgb         `json:"specular,omitempty"`
	Texture  *TextureJSON `json:"texture,omitempty"`

	Radius     float32 `json:"radius,omitempty"`
	Normal     *vec3   `json:"normal,omitempty"`
	Width      float32 `json:"width,omitempty"`
	Height     float32 `json:"height,omitempty"`
	Size       float32 `json:"size,omitempty"`
	Level      int     `json:"level,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Power      float32 `json:"power,omitempty"`
	Bailout    float32 `json:"bailout,omitempty"`
}

// TextureJSON binds image files to an object. Relative paths are resolved
// against the scene file's directory.
type TextureJSON struct {
	Diffuse  string  `json:"diffuse"`
	Specular string  `json:"specular"`
	Tiles    float32 `json:"tiles,omitempty"`
}

// LightJSON describes a point, area or ambient light.
type LightJSON struct {
	Type       string  `json:"type"`
	Position   vec3    `json:"position"`
	Intensity  float32 `json:"intensity"`
	Width      float32 `json:"width,omitempty"`
	Height     float32 `json:"height,omitempty"`
	DivsWidth  int     `json:"divsWidth,omitempty"`
	DivsHeight int     `json:"divsHeight,omitempty"`
	Samples    int     `json:"samples,omitempty"`
}

// LoadOptions configures scene loading.
type LoadOptions struct {
	// Dir resolves relative texture paths.
	Dir string
	// MaxTextureEdge downsizes large textures. Zero keeps their size.
	MaxTextureEdge int
	// LoadTexture opens texture files. Nil uses [texture.Load].
	LoadTexture func(path string, maxEdge int) (sdfray.Texture, error)
}

// LoadFile reads the JSON scene file at path.
func LoadFile(path string) (*Scene, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	s, err := Load(fp, LoadOptions{Dir: filepath.Dir(path)})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Load decodes a JSON scene. Unknown fields and invalid shapes are errors.
func Load(r io.Reader, opts LoadOptions) (*Scene, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	if opts.LoadTexture == nil {
		opts.LoadTexture = func(path string, maxEdge int) (sdfray.Texture, error) {
			return texture.Load(path, maxEdge)
		}
	}
	return f.build(opts)
}

func (f *File) build(opts LoadOptions) (*Scene, error) {
	s := New()
	if f.Camera != nil {
		c := f.Camera
		s.Camera = sdfray.CameraConfig{
			Position:     c.Position.vec(),
			LookAt:       c.LookAt.vec(),
			Up:           ms3.Vec{Y: 1},
			ViewDistance: c.ViewDistance,
			ViewWidth:    c.ViewWidth,
			ViewHeight:   c.ViewHeight,
		}
		if c.Up != nil {
			s.Camera.Up = c.Up.vec()
		}
		if _, err := sdfray.NewCamera(s.Camera); err != nil {
			return nil, fmt.Errorf("camera: %w", err)
		}
	}
	if f.Ambient != nil {
		s.Ambient = *f.Ambient
	}
	s.Background = f.Background.color(s.Background)

	bld := sdfray.Builder{NoDimensionPanic: true}
	for i := range f.Objects {
		o := &f.Objects[i]
		obj, err := o.build(&bld)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if err := bld.Err(); err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, o.Type, err)
		}
		if o.Texture != nil {
			if err := o.Texture.bind(obj.Material(), opts); err != nil {
				return nil, fmt.Errorf("object %d texture: %w", i, err)
			}
		}
		s.Add(o.Name, obj)
	}
	for i, l := range f.Lights {
		light, err := l.build(&bld)
		if err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
		if err := bld.Err(); err != nil {
			return nil, fmt.Errorf("light %d (%s): %w", i, l.Type, err)
		}
		s.AddLight(light)
	}
	return s, nil
}

func (o *ObjectJSON) build(bld *sdfray.Builder) (sdfray.Object, error) {
	mat := sdfray.NewMaterial(o.Color.color(sdfray.White))
	mat.Specular = o.Specular.color(sdfray.White)
	pos := o.Position.vec()
	switch o.Type {
	case "sphere":
		return bld.NewSphere(pos, o.Radius, mat), nil
	case "plane":
		normal := ms3.Vec{Y: 1}
		if o.Normal != nil {
			normal = o.Normal.vec()
		}
		return bld.NewPlane(pos, normal, orDefault(o.Width, 20), orDefault(o.Height, 20), mat), nil
	case "menger":
		level := o.Level
		if level == 0 {
			level = 1
		}
		return bld.NewMengerSponge(pos, orDefault(o.Size, 2), level, mat), nil
	case "mandelbulb":
		iterations := o.Iterations
		if iterations == 0 {
			iterations = 5
		}
		return bld.NewMandelbulb(pos, iterations, orDefault(o.Power, 3), orDefault(o.Bailout, 4), mat), nil
	}
	return nil, fmt.Errorf("unknown object type %q", o.Type)
}

func (tj *TextureJSON) bind(mat *sdfray.Material, opts LoadOptions) error {
	if tj.Diffuse == "" || tj.Specular == "" {
		return errors.New("texture requires both diffuse and specular maps")
	}
	var err error
	mat.DiffuseMap, err = opts.LoadTexture(resolve(opts.Dir, tj.Diffuse), opts.MaxTextureEdge)
	if err != nil {
		return err
	}
	mat.SpecularMap, err = opts.LoadTexture(resolve(opts.Dir, tj.Specular), opts.MaxTextureEdge)
	if err != nil {
		return err
	}
	mat.Tiles = orDefault(tj.Tiles, 1)
	return nil
}

func (l *LightJSON) build(bld *sdfray.Builder) (sdfray.Light, error) {
	pos := l.Position.vec()
	switch l.Type {
	case "point":
		return bld.NewPointLight(pos, l.Intensity), nil
	case "area":
		cfg := sdfray.DefaultAreaLightConfig(pos)
		cfg.Intensity = l.Intensity
		cfg.Width = orDefault(l.Width, cfg.Width)
		cfg.Height = orDefault(l.Height, cfg.Height)
		if l.DivsWidth != 0 {
			cfg.DivsWidth = l.DivsWidth
		}
		if l.DivsHeight != 0 {
			cfg.DivsHeight = l.DivsHeight
		}
		if l.Samples != 0 {
			cfg.Samples = l.Samples
		}
		return bld.NewAreaLight(cfg), nil
	case "ambient":
		return bld.NewAmbientLight(l.Intensity), nil
	}
	return nil, fmt.Errorf("unknown light type %q", l.Type)
}

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) || dir == "" {
		return path
	}
	return filepath.Join(dir, path)
}
