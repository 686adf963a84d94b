// Package export serializes the current map scene to a raster image.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"tripmap/internal/geocode"
	"tripmap/internal/render"
)

// DefaultScaleFactor produces high-DPI output at twice the on-screen
// pixel dimensions.
const DefaultScaleFactor = 2.0

// ErrNotReady is returned when export is requested before the first
// geometry load has completed. Callers keep the export command disabled
// until the scene has rendered once.
var ErrNotReady = errors.New("export: map data not loaded")

// Snapshot is an immutable copy of everything the exporter needs. It is
// taken synchronously at the moment export is invoked, so session
// mutations made while the encode runs cannot leak into the output.
type Snapshot struct {
	scene render.Scene
}

// TakeSnapshot deep-copies the scene's mutable inputs (selection set
// and marker sequence) and strips transient hover state.
func TakeSnapshot(s render.Scene) Snapshot {
	selected := make(map[string]bool, len(s.Selected))
	for id, on := range s.Selected {
		if on {
			selected[id] = true
		}
	}
	markers := make([]geocode.Place, len(s.Markers))
	copy(markers, s.Markers)

	s.Selected = selected
	s.Markers = markers
	s.HoverID = ""
	return Snapshot{scene: s}
}

// PNG renders the snapshot at scaleFactor times the viewport pixel
// dimensions and encodes it with an opaque white background composited
// beneath the scene.
func PNG(snap Snapshot, scaleFactor float64) ([]byte, error) {
	if snap.scene.Index == nil || snap.scene.Index.Len() == 0 {
		return nil, ErrNotReady
	}
	if scaleFactor <= 0 {
		scaleFactor = DefaultScaleFactor
	}

	src := snap.scene.RenderScaled(scaleFactor)

	// Composite over white so the encoded file is always opaque.
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("export: encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// TimestampedName builds a collision-free file name for an export.
func TimestampedName(t time.Time) string {
	return "worldmap-" + t.Format("20060102-150405") + ".png"
}
