package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"tripmap/internal/geo"
	"tripmap/internal/geocode"
	"tripmap/pkg/geometry"
)

// Fixed scene colors. Everything user-configurable lives in StyleConfig.
var (
	backgroundColor = color.RGBA{R: 0xEC, G: 0xF2, B: 0xF9, A: 0xFF}
	neutralFill     = color.RGBA{R: 0xE7, G: 0xE7, B: 0xE7, A: 0xFF}
	polygonStroke   = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	tooltipFill     = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xF2}
	tooltipStroke   = color.RGBA{R: 0xB0, G: 0xB8, B: 0xC4, A: 0xFF}
)

const (
	markerRadius   = 4.0
	hoverAlpha     = 150 // out of 255
	tooltipPadding = 6.0
	tooltipSizePt  = 11.0
)

// Scene is a complete description of one frame: feature index,
// selection, viewport transform, marker sequence, style, and hover
// state. Rendering is a pure function of this value; every call
// produces a fresh image and retains nothing.
type Scene struct {
	Index    *geo.FeatureIndex
	Selected map[string]bool
	View     geometry.AffineTransform
	Markers  []geocode.Place
	Style    StyleConfig
	HoverID  string
	Cursor   geometry.Point2D // pointer position in screen space, anchors the tooltip
	Width    int
	Height   int
}

// Render rasterizes the scene at its on-screen size.
func (s Scene) Render() image.Image {
	return s.RenderScaled(1)
}

// RenderScaled rasterizes the scene at factor times the on-screen pixel
// dimensions. All drawing happens in screen units on a scaled context,
// so the output is a pixel-exact magnification of the current view.
func (s Scene) RenderScaled(factor float64) image.Image {
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		w, h = 1, 1
	}
	if factor <= 0 {
		factor = 1
	}

	dc := gg.NewContext(int(float64(w)*factor), int(float64(h)*factor))
	dc.Scale(factor, factor)

	style := s.Style.Normalized()

	// Background covers the whole raster, which in screen space is an
	// oversized rectangle over any pan position.
	dc.SetColor(backgroundColor)
	dc.Clear()

	if s.Index == nil {
		return dc.Image()
	}

	proj := geo.NewProjector()
	fw, fh := float64(w), float64(h)

	for _, f := range s.Index.Features() {
		s.tracePolygon(dc, proj, f, fw, fh)

		fill := neutralFill
		if s.Selected[f.ID] {
			fill = style.CountryColor
		}
		alpha := int(fill.A)
		if f.ID == s.HoverID {
			alpha = hoverAlpha
		}
		dc.SetFillRule(gg.FillRuleEvenOdd)
		dc.SetRGBA255(int(fill.R), int(fill.G), int(fill.B), alpha)
		dc.FillPreserve()
		dc.SetColor(polygonStroke)
		dc.SetLineWidth(0.6)
		dc.Stroke()
	}

	s.drawMarkers(dc, proj, style, fw, fh)
	s.drawLabels(dc, proj, style, fw, fh)
	s.drawTooltip(dc)

	return dc.Image()
}

// tracePolygon builds the path for all rings of one feature. Holes are
// separate subpaths resolved by the even-odd fill rule.
func (s Scene) tracePolygon(dc *gg.Context, proj geo.Projector, f *geo.CountryFeature, w, h float64) {
	for _, ring := range f.Rings() {
		for i, pt := range ring {
			sp := s.View.Apply(proj.Project(pt.X, pt.Y, w, h))
			if i == 0 {
				dc.MoveTo(sp.X, sp.Y)
			} else {
				dc.LineTo(sp.X, sp.Y)
			}
		}
		dc.ClosePath()
		dc.NewSubPath()
	}
}

// drawMarkers draws the city dots. Radius is fixed in screen pixels
// regardless of zoom.
func (s Scene) drawMarkers(dc *gg.Context, proj geo.Projector, style StyleConfig, w, h float64) {
	for _, m := range s.Markers {
		pos := s.View.Apply(proj.Project(m.Lng, m.Lat, w, h))
		dc.DrawCircle(pos.X, pos.Y, markerRadius)
		dc.SetColor(style.CityColor)
		dc.FillPreserve()
		dc.SetColor(polygonStroke)
		dc.SetLineWidth(1)
		dc.Stroke()
	}
}

// drawLabels draws city names in bold, with the optional note on a
// second line in a smaller, lighter, italic face.
func (s Scene) drawLabels(dc *gg.Context, proj geo.Projector, style StyleConfig, w, h float64) {
	if len(s.Markers) == 0 {
		return
	}

	nameFace := newFace(style.FontFamily, variantBold, style.FontSizePt)
	noteFace := newFace(style.FontFamily, variantItalic, style.FontSizePt*0.8)

	for _, m := range s.Markers {
		pos := s.View.Apply(proj.Project(m.Lng, m.Lat, w, h))
		x := pos.X + markerRadius + 4

		if nameFace != nil {
			dc.SetFontFace(nameFace)
		}
		dc.SetColor(style.TextColor)
		dc.DrawString(m.Name, x, pos.Y+style.FontSizePt*0.35)

		if m.Note == "" {
			continue
		}
		if noteFace != nil {
			dc.SetFontFace(noteFace)
		}
		dc.SetColor(lighten(style.TextColor, 0.45))
		dc.DrawString(m.Note, x, pos.Y+style.FontSizePt*1.35)
	}
}

// drawTooltip shows the hovered country's display name near the
// pointer.
func (s Scene) drawTooltip(dc *gg.Context) {
	if s.HoverID == "" {
		return
	}
	f := s.Index.ByID(s.HoverID)
	if f == nil {
		return
	}

	face := newFace(FontSansSerif, variantRegular, tooltipSizePt)
	if face != nil {
		dc.SetFontFace(face)
	}
	tw, th := dc.MeasureString(f.DisplayName)

	x := s.Cursor.X + 14
	y := s.Cursor.Y - 12

	dc.DrawRoundedRectangle(x, y-th-tooltipPadding, tw+2*tooltipPadding, th+2*tooltipPadding, 3)
	dc.SetColor(tooltipFill)
	dc.FillPreserve()
	dc.SetColor(tooltipStroke)
	dc.SetLineWidth(1)
	dc.Stroke()

	dc.SetColor(color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xFF})
	dc.DrawString(f.DisplayName, x+tooltipPadding, y-tooltipPadding/2)
}

// Placeholder renders the loading screen shown before geometry arrives.
func Placeholder(width, height int, msg string) image.Image {
	if width <= 0 || height <= 0 {
		width, height = 1, 1
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(backgroundColor)
	dc.Clear()

	if face := newFace(FontSansSerif, variantRegular, 13); face != nil {
		dc.SetFontFace(face)
	}
	dc.SetColor(color.RGBA{R: 0x70, G: 0x78, B: 0x85, A: 0xFF})
	dc.DrawStringAnchored(msg, float64(width)/2, float64(height)/2, 0.5, 0.5)
	return dc.Image()
}

// lighten blends a color toward white by t in [0,1].
func lighten(c color.RGBA, t float64) color.RGBA {
	blend := func(v uint8) uint8 {
		return uint8(float64(v) + (255-float64(v))*t)
	}
	return color.RGBA{R: blend(c.R), G: blend(c.G), B: blend(c.B), A: c.A}
}
