// Package scene holds the objects, lights and camera of a renderable scene and
// loads them from JSON scene files.
package scene

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/sdfray"
	"github.com/soypat/sdfray/render"
)

// Entry is an object owned by a Scene.
type Entry struct {
	ID     int
	Name   string
	Object sdfray.Object
}

// Scene is an ordered collection of objects and lights. Object order decides
// which object wins equal distance hits. A Scene is not safe for concurrent use;
// render from the slices returned by Objects and Lights.
type Scene struct {
	Camera     sdfray.CameraConfig
	Ambient    float32
	Background sdfray.Color

	entries []Entry
	lights  []sdfray.Light
	nextID  int
	// counts numbers default names per kind.
	counts map[sdfray.Kind]int
}

// New returns an empty scene with the default camera, ambient 0.1 and a gray background.
func New() *Scene {
	return &Scene{
		Camera:     sdfray.DefaultCameraConfig(),
		Ambient:    0.1,
		Background: sdfray.Gray,
		counts:     make(map[sdfray.Kind]int),
	}
}

// Add appends obj to the scene and returns its ID. An empty name is replaced
// by the object's kind and a per kind counter, i.e. "sphere-2".
func (s *Scene) Add(name string, obj sdfray.Object) int {
	s.nextID++
	s.counts[obj.Kind()]++
	if name == "" {
		name = fmt.Sprintf("%s-%d", obj.Kind(), s.counts[obj.Kind()])
	}
	s.entries = append(s.entries, Entry{ID: s.nextID, Name: name, Object: obj})
	return s.nextID
}

// Remove deletes the object with the given ID, keeping the order of the rest.
func (s *Scene) Remove(id int) bool {
	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup finds an entry by name.
func (s *Scene) Lookup(name string) (Entry, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the scene's entries in order.
func (s *Scene) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Objects returns a snapshot of the scene's objects in order.
func (s *Scene) Objects() []sdfray.Object {
	objs := make([]sdfray.Object, len(s.entries))
	for i, e := range s.entries {
		objs[i] = e.Object
	}
	return objs
}

// AddLight appends a light.
func (s *Scene) AddLight(l sdfray.Light) {
	s.lights = append(s.lights, l)
}

// Lights returns a snapshot of the scene's lights.
func (s *Scene) Lights() []sdfray.Light {
	return append([]sdfray.Light(nil), s.lights...)
}

// Selection is the result of picking: an object entry, or an area light when Light is set.
type Selection struct {
	Entry    Entry
	Light    *sdfray.AreaLight
	Distance float32
}

func (sel Selection) String() string {
	if sel.Light != nil {
		return fmt.Sprintf("area light at %v (distance %.3g)", sel.Light.Position(), sel.Distance)
	}
	return fmt.Sprintf("%s %q (distance %.3g)", sel.Entry.Object.Kind(), sel.Entry.Name, sel.Distance)
}

// Pick returns what r hits first. Area lights are picked as the rectangle they
// sample from and win over objects behind them.
func (s *Scene) Pick(r sdfray.Ray) (Selection, bool) {
	var sel Selection
	found := false
	if hit, ok := render.ClosestHit(r, s.Objects()); ok {
		for _, e := range s.entries {
			if e.Object == hit.Object {
				sel = Selection{Entry: e, Distance: hit.Distance}
				found = true
				break
			}
		}
	}
	for _, l := range s.lights {
		area, ok := l.(*sdfray.AreaLight)
		if !ok {
			continue
		}
		hit, ok := area.Intersect(r)
		if ok && (!found || hit.Distance < sel.Distance) {
			sel = Selection{Light: area, Distance: hit.Distance}
			found = true
		}
	}
	return sel, found
}

// Default returns the demo scene: a floor, two spheres and a Menger sponge lit by two
// point lights and an area light.
func Default() *Scene {
	var bld sdfray.Builder
	s := New()
	s.Add("floor", bld.NewPlane(ms3.Vec{Y: -2}, ms3.Vec{Y: 1}, 20, 20, sdfray.NewMaterial(sdfray.DarkGray)))
	s.Add("", bld.NewSphere(ms3.Vec{Y: 1, Z: -2}, 2, sdfray.NewMaterial(sdfray.LightBlue)))
	s.Add("", bld.NewSphere(ms3.Vec{X: -2.5}, 1, sdfray.NewMaterial(sdfray.Pink)))
	s.Add("", bld.NewMengerSponge(ms3.Vec{X: 2.5, Y: -1, Z: 1}, 2, 3, sdfray.NewMaterial(sdfray.Orange)))
	s.AddLight(bld.NewPointLight(ms3.Vec{X: 5, Y: 8}, 200))
	s.AddLight(bld.NewPointLight(ms3.Vec{X: -3, Y: 10}, 100))
	area := sdfray.DefaultAreaLightConfig(ms3.Vec{Y: 10})
	area.Width, area.Height = 5, 5
	area.DivsWidth, area.DivsHeight = 10, 10
	area.Intensity = 10
	s.AddLight(bld.NewAreaLight(area))
	return s
}
