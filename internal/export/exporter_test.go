package export

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmap/internal/geo"
	"tripmap/internal/geocode"
	"tripmap/internal/render"
	"tripmap/pkg/geometry"
)

const squareCountry = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "1",
      "properties": {"name": "Square"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-60, -30], [60, -30], [60, 30], [-60, 30], [-60, -30]]]
      }
    }
  ]
}`

func testScene(t *testing.T) render.Scene {
	t.Helper()
	fc, err := geo.ReadFeatureCollection(strings.NewReader(squareCountry))
	require.NoError(t, err)
	return render.Scene{
		Index:    geo.BuildIndex(fc, nil),
		Selected: map[string]bool{"1": true},
		View:     geometry.Identity(),
		Markers:  []geocode.Place{{Name: "Spot", Lat: 10, Lng: 10, Note: "here"}},
		Style:    render.DefaultStyle(),
		Width:    160,
		Height:   120,
	}
}

func TestPNGDimensions(t *testing.T) {
	data, err := PNG(TakeSnapshot(testScene(t)), 2)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestPNGNotReady(t *testing.T) {
	_, err := PNG(TakeSnapshot(render.Scene{Width: 100, Height: 100}), 2)
	assert.ErrorIs(t, err, ErrNotReady)

	empty := render.Scene{Index: geo.BuildIndex(nil, nil), Width: 100, Height: 100}
	_, err = PNG(TakeSnapshot(empty), 2)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSnapshotImmuneToLaterMutation(t *testing.T) {
	scene := testScene(t)
	snap := TakeSnapshot(scene)
	want, err := PNG(snap, 1)
	require.NoError(t, err)

	// Mutate the live scene after the snapshot was taken.
	scene.Selected["1"] = false
	scene.Markers[0] = geocode.Place{Name: "Elsewhere", Lat: -20, Lng: -50}

	got, err := PNG(snap, 1)
	require.NoError(t, err)
	assert.Equal(t, want, got, "snapshot renders the state at capture time")
}

func TestSnapshotDropsHoverState(t *testing.T) {
	scene := testScene(t)

	plain := TakeSnapshot(scene)
	want, err := PNG(plain, 1)
	require.NoError(t, err)

	scene.HoverID = "1"
	scene.Cursor = geometry.Point2D{X: 80, Y: 60}
	hovered := TakeSnapshot(scene)
	got, err := PNG(hovered, 1)
	require.NoError(t, err)

	assert.Equal(t, want, got, "hover fill and tooltip never appear in exports")
}

func TestTimestampedName(t *testing.T) {
	at := time.Date(2026, 3, 7, 9, 5, 42, 0, time.UTC)
	assert.Equal(t, "worldmap-20260307-090542.png", TimestampedName(at))
}
