// Package geo provides the geographic data model: projection, country
// boundary loading, and point-in-feature hit-testing.
package geo

import (
	"tripmap/pkg/geometry"
)

// DefaultVerticalBias shifts every projected point downward by this
// fraction of the viewport height. The south polar region is excluded
// from the dataset, so the remaining landmass sits visually too high
// without it.
const DefaultVerticalBias = 0.10

// Projector maps spherical coordinates onto a flat viewport using an
// equirectangular projection. It holds no viewport state: scale is
// re-derived from the width/height passed to each call, so the caller
// can resize freely between calls.
type Projector struct {
	VerticalBias float64
}

// NewProjector returns a projector with the default vertical bias.
func NewProjector() Projector {
	return Projector{VerticalBias: DefaultVerticalBias}
}

// Project converts a (longitude, latitude) pair to pixel coordinates in
// a viewport of the given size. Out-of-domain inputs are clamped, never
// rejected.
func (p Projector) Project(lng, lat, width, height float64) geometry.Point2D {
	lng = clamp(lng, -180, 180)
	lat = clamp(lat, -90, 90)

	x := (lng + 180) / 360 * width
	y := (90-lat)/180*height + p.VerticalBias*height
	return geometry.Point2D{X: x, Y: y}
}

// Unproject converts pixel coordinates back to (longitude, latitude).
// The result may fall outside the valid coordinate domain when the
// point lies off the map; callers use that to detect ocean/background.
func (p Projector) Unproject(pt geometry.Point2D, width, height float64) (lng, lat float64) {
	lng = pt.X/width*360 - 180
	lat = 90 - (pt.Y-p.VerticalBias*height)/height*180
	return lng, lat
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
