// Package canvas provides the interactive map widget: raster drawing,
// pan/zoom gestures, hover tracking, and click-to-toggle hit-testing.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"tripmap/internal/app"
	"tripmap/internal/geo"
	"tripmap/internal/render"
	"tripmap/pkg/geometry"
)

const wheelZoomStep = 1.25

// MapCanvas displays the rendered map scene and translates pointer
// events into viewport gestures and feature hit-tests.
type MapCanvas struct {
	widget.BaseWidget

	state     *app.State
	view      *render.Viewport
	projector geo.Projector

	raster *fynecanvas.Raster

	hoverID string
	cursor  geometry.Point2D

	// Last raster dimensions, in device pixels. Pointer events arrive
	// in logical units; pixelRatio converts between the two.
	lastW, lastH int

	onToggle func(id string)
	onHover  func(name string)
}

// NewMapCanvas creates the map widget bound to the session state.
func NewMapCanvas(state *app.State) *MapCanvas {
	mc := &MapCanvas{
		state:     state,
		view:      render.NewViewport(),
		projector: geo.NewProjector(),
	}
	mc.raster = fynecanvas.NewRaster(mc.draw)
	mc.ExtendBaseWidget(mc)
	return mc
}

// Viewport exposes the pan/zoom transform, read by the export path.
func (mc *MapCanvas) Viewport() *render.Viewport {
	return mc.view
}

// OnToggle sets the callback invoked with a country id when the user
// clicks a feature. Selection mutation is delegated upward.
func (mc *MapCanvas) OnToggle(callback func(id string)) {
	mc.onToggle = callback
}

// OnHover sets the callback invoked with the hovered country's display
// name, or "" when the pointer leaves all features.
func (mc *MapCanvas) OnHover(callback func(name string)) {
	mc.onHover = callback
}

// CurrentScene assembles the scene for the current session state and
// raster size. Used both for drawing and for export snapshots.
func (mc *MapCanvas) CurrentScene() render.Scene {
	w, h := mc.lastW, mc.lastH
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}
	return render.Scene{
		Index:    mc.state.Index(),
		Selected: mc.state.SelectionCopy(),
		View:     mc.view.Transform(),
		Markers:  mc.state.Markers(),
		Style:    mc.state.Style(),
		HoverID:  mc.hoverID,
		Cursor:   mc.cursor,
		Width:    w,
		Height:   h,
	}
}

// Refresh redraws the raster.
func (mc *MapCanvas) Refresh() {
	mc.raster.Refresh()
	mc.BaseWidget.Refresh()
}

// draw is the raster drawing function. Rendering is synchronous and
// complete per call; no partial scene is ever visible.
func (mc *MapCanvas) draw(w, h int) image.Image {
	mc.lastW, mc.lastH = w, h
	if !mc.state.Ready() {
		return render.Placeholder(w, h, "Loading map data…")
	}
	return mc.CurrentScene().Render()
}

// pixelRatio converts logical event coordinates to raster pixels.
func (mc *MapCanvas) pixelRatio() float64 {
	size := mc.Size()
	if size.Width <= 0 || mc.lastW <= 0 {
		return 1
	}
	return float64(mc.lastW) / float64(size.Width)
}

func (mc *MapCanvas) toPixels(pos fyne.Position) geometry.Point2D {
	r := mc.pixelRatio()
	return geometry.Point2D{X: float64(pos.X) * r, Y: float64(pos.Y) * r}
}

// hitTest resolves a screen position to a country feature, or nil.
func (mc *MapCanvas) hitTest(pos fyne.Position) *geo.CountryFeature {
	index := mc.state.Index()
	if index == nil || mc.lastW <= 0 || mc.lastH <= 0 {
		return nil
	}
	local := mc.view.ToLocal(mc.toPixels(pos))
	lng, lat := mc.projector.Unproject(local, float64(mc.lastW), float64(mc.lastH))
	return index.HitTest(lng, lat)
}

// Dragged pans the viewport. The gesture starts on the first event, so
// its delta is applied too rather than lost.
func (mc *MapCanvas) Dragged(ev *fyne.DragEvent) {
	p := mc.toPixels(ev.Position)
	if !mc.view.Dragging() {
		r := mc.pixelRatio()
		start := geometry.Point2D{
			X: p.X - float64(ev.Dragged.DX)*r,
			Y: p.Y - float64(ev.Dragged.DY)*r,
		}
		mc.view.BeginDrag(start)
	}
	mc.view.DragTo(p)
	mc.Refresh()
}

// DragEnd returns the viewport to idle.
func (mc *MapCanvas) DragEnd() {
	mc.view.EndDrag()
}

// Scrolled zooms around the cursor.
func (mc *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	factor := wheelZoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / wheelZoomStep
	}
	mc.view.ZoomAt(mc.toPixels(ev.Position), factor)
	mc.Refresh()
}

// ZoomIn zooms one wheel step around the view center.
func (mc *MapCanvas) ZoomIn() {
	mc.zoomCenter(wheelZoomStep)
}

// ZoomOut zooms one wheel step out around the view center.
func (mc *MapCanvas) ZoomOut() {
	mc.zoomCenter(1 / wheelZoomStep)
}

// ResetView restores the unzoomed, unpanned world view.
func (mc *MapCanvas) ResetView() {
	mc.view.Reset()
	mc.Refresh()
}

func (mc *MapCanvas) zoomCenter(factor float64) {
	center := geometry.Point2D{X: float64(mc.lastW) / 2, Y: float64(mc.lastH) / 2}
	mc.view.ZoomAt(center, factor)
	mc.Refresh()
}

// Tapped toggles the clicked country's selection, delegated upward.
func (mc *MapCanvas) Tapped(ev *fyne.PointEvent) {
	if mc.onToggle == nil {
		return
	}
	if f := mc.hitTest(ev.Position); f != nil {
		mc.onToggle(f.ID)
	}
}

// MouseIn implements desktop.Hoverable.
func (mc *MapCanvas) MouseIn(ev *desktop.MouseEvent) {
	mc.MouseMoved(ev)
}

// MouseMoved tracks the hovered feature for the tooltip and the
// reduced-opacity hover fill.
func (mc *MapCanvas) MouseMoved(ev *desktop.MouseEvent) {
	mc.cursor = mc.toPixels(ev.Position)

	var id, name string
	if f := mc.hitTest(ev.Position); f != nil {
		id, name = f.ID, f.DisplayName
	}
	if id != mc.hoverID {
		mc.hoverID = id
		if mc.onHover != nil {
			mc.onHover(name)
		}
		mc.Refresh()
	} else if id != "" {
		// Tooltip follows the pointer within a feature.
		mc.Refresh()
	}
}

// MouseOut clears the hover state.
func (mc *MapCanvas) MouseOut() {
	if mc.hoverID == "" {
		return
	}
	mc.hoverID = ""
	if mc.onHover != nil {
		mc.onHover("")
	}
	mc.Refresh()
}

// MinSize keeps the map area usable.
func (mc *MapCanvas) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// CreateRenderer implements fyne.Widget.
func (mc *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}
