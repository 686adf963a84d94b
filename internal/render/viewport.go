// Package render composes the map scene: viewport transform, style
// configuration, and vector-to-raster drawing.
package render

import (
	"tripmap/pkg/geometry"
)

const (
	// MinScale and MaxScale bound the viewport zoom. Scale 1 shows the
	// whole projected map at viewport size.
	MinScale = 1.0
	MaxScale = 15.0
)

// Viewport tracks the affine pan/zoom transform applied on top of
// projected coordinates. It is a small state machine: idle, or
// dragging while a pointer gesture is in progress. All methods are for
// the UI thread; the transform persists across data and style changes.
type Viewport struct {
	transform geometry.AffineTransform
	dragging  bool
	last      geometry.Point2D
}

// NewViewport returns a viewport at identity (scale 1, no pan).
func NewViewport() *Viewport {
	return &Viewport{transform: geometry.Identity()}
}

// Transform returns the current affine transform.
func (v *Viewport) Transform() geometry.AffineTransform {
	return v.transform
}

// Scale returns the current uniform zoom factor. Only uniform scales
// and translations are ever composed, so the X term is authoritative.
func (v *Viewport) Scale() float64 {
	return v.transform.A
}

// Dragging reports whether a pan gesture is in progress.
func (v *Viewport) Dragging() bool {
	return v.dragging
}

// BeginDrag enters the dragging state at the given screen point.
func (v *Viewport) BeginDrag(p geometry.Point2D) {
	v.dragging = true
	v.last = p
}

// DragTo pans by the delta from the previous drag point. No-op when
// idle. Translation is unconstrained: panning past the data bounds is
// allowed.
func (v *Viewport) DragTo(p geometry.Point2D) {
	if !v.dragging {
		return
	}
	d := p.Sub(v.last)
	v.last = p
	v.transform = geometry.Translation(d.X, d.Y).Compose(v.transform)
}

// EndDrag returns to the idle state.
func (v *Viewport) EndDrag() {
	v.dragging = false
}

// ZoomAt scales the view by factor around a focal screen point, so the
// content under the cursor stays visually fixed. The resulting scale is
// clamped to [MinScale, MaxScale]; the factor is adjusted accordingly.
func (v *Viewport) ZoomAt(focal geometry.Point2D, factor float64) {
	cur := v.transform.A
	target := cur * factor
	if target < MinScale {
		target = MinScale
	}
	if target > MaxScale {
		target = MaxScale
	}
	factor = target / cur
	if factor == 1 {
		return
	}

	// Translate the focal point to the origin, scale, translate back.
	step := geometry.Translation(focal.X, focal.Y).
		Compose(geometry.Scale(factor, factor)).
		Compose(geometry.Translation(-focal.X, -focal.Y))
	v.transform = step.Compose(v.transform)
}

// ToScreen converts a point in projected (local) space to screen space
// using the transform at call time.
func (v *Viewport) ToScreen(local geometry.Point2D) geometry.Point2D {
	return v.transform.Apply(local)
}

// ToLocal converts a screen point back to projected space.
func (v *Viewport) ToLocal(screen geometry.Point2D) geometry.Point2D {
	inv, ok := v.transform.Inverse()
	if !ok {
		return screen
	}
	return inv.Apply(screen)
}

// Reset restores the identity transform. Invoked only by an explicit
// user command, never implicitly.
func (v *Viewport) Reset() {
	v.transform = geometry.Identity()
	v.dragging = false
}
