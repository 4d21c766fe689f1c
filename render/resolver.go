package render

import (
	"github.com/soypat/sdfray"
)

// ClosestHit returns the intersection with the smallest positive distance
// among objects. On equal distances the object appearing first wins.
func ClosestHit(r sdfray.Ray, objects []sdfray.Object) (sdfray.Hit, bool) {
	var closest sdfray.Hit
	found := false
	for _, obj := range objects {
		hit, ok := obj.Intersect(r)
		if ok && (!found || hit.Distance < closest.Distance) {
			closest = hit
			found = true
		}
	}
	return closest, found
}

// InShadow reports whether any object intersects r. The hit distance is not
// compared to the light's distance so objects behind the light also occlude it.
func InShadow(r sdfray.Ray, objects []sdfray.Object) bool {
	for _, obj := range objects {
		if _, ok := obj.Intersect(r); ok {
			return true
		}
	}
	return false
}
