package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmap/internal/export"
	"tripmap/internal/geo"
	"tripmap/internal/geocode"
	"tripmap/internal/render"
	"tripmap/pkg/geometry"
)

type stubResolver struct {
	place geocode.Place
	err   error
}

func (r stubResolver) Resolve(ctx context.Context, text string) (geocode.Place, error) {
	return r.place, r.err
}

// blockingResolver parks until released, for exercising the in-flight
// guard.
type blockingResolver struct {
	started chan struct{}
	release chan struct{}
}

func (r *blockingResolver) Resolve(ctx context.Context, text string) (geocode.Place, error) {
	close(r.started)
	<-r.release
	return geocode.Place{Name: text}, nil
}

const oneCountry = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "1",
      "properties": {"name": "Square"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-10, -10], [10, -10], [10, 10], [-10, 10], [-10, -10]]]
      }
    }
  ]
}`

func loadedState(t *testing.T) *State {
	t.Helper()
	fc, err := geo.ReadFeatureCollection(strings.NewReader(oneCountry))
	require.NoError(t, err)
	s := NewState(nil)
	s.SetIndex(geo.BuildIndex(fc, nil))
	return s
}

func TestToggleCountryIdempotent(t *testing.T) {
	s := NewState(nil)

	s.ToggleCountry("156")
	assert.True(t, s.IsSelected("156"))

	s.ToggleCountry("156")
	assert.False(t, s.IsSelected("156"))
	assert.Empty(t, s.SelectedIDs())

	// Toggling twice more restores the original membership exactly.
	s.ToggleCountry("036")
	s.ToggleCountry("156")
	s.ToggleCountry("156")
	assert.Equal(t, []string{"036"}, s.SelectedIDs())
}

func TestSelectedIDsSorted(t *testing.T) {
	s := NewState(nil)
	for _, id := range []string{"840", "036", "156"} {
		s.ToggleCountry(id)
	}
	assert.Equal(t, []string{"036", "156", "840"}, s.SelectedIDs())
}

func TestSelectionChangedEvent(t *testing.T) {
	s := NewState(nil)
	fired := 0
	s.On(EventSelectionChanged, func(interface{}) { fired++ })

	s.ToggleCountry("156")
	s.ToggleCountry("156")
	assert.Equal(t, 2, fired)
}

func TestMarkerRoundTrip(t *testing.T) {
	s := NewState(nil)
	a := geocode.Place{Name: "上海", Lat: 31.23, Lng: 121.47, Note: "出差"}
	b := geocode.Place{Name: "Paris", Lat: 48.85, Lng: 2.35}

	s.AddMarker(a)
	s.AddMarker(b)
	require.Len(t, s.Markers(), 2)

	require.NoError(t, s.RemoveMarker(1))
	assert.Equal(t, []geocode.Place{a}, s.Markers())

	s.AddMarker(b)
	assert.Equal(t, []geocode.Place{a, b}, s.Markers(), "add after remove restores the sequence")

	assert.Error(t, s.RemoveMarker(5))
	assert.Error(t, s.RemoveMarker(-1))
}

func TestMarkersReturnsCopy(t *testing.T) {
	s := NewState(nil)
	s.AddMarker(geocode.Place{Name: "Oslo", Lat: 59.9, Lng: 10.75})

	got := s.Markers()
	got[0].Name = "mutated"
	assert.Equal(t, "Oslo", s.Markers()[0].Name)
}

func TestResolveCitySuccessAppendsMarker(t *testing.T) {
	want := geocode.Place{Name: "上海", Lat: 31.23, Lng: 121.47, Note: "出差"}
	s := NewState(stubResolver{place: want})

	var finished *ResolveResult
	s.On(EventResolveFinished, func(data interface{}) {
		res := data.(ResolveResult)
		finished = &res
	})

	require.NoError(t, s.ResolveCity(context.Background(), "上海 - 出差"))
	assert.Equal(t, []geocode.Place{want}, s.Markers())
	require.NotNil(t, finished)
	assert.NoError(t, finished.Err)
}

func TestResolveCityFailureLeavesMarkersUntouched(t *testing.T) {
	s := NewState(stubResolver{err: errors.New("no location found")})
	s.AddMarker(geocode.Place{Name: "Lima", Lat: -12, Lng: -77})

	err := s.ResolveCity(context.Background(), "Nowhereville")
	assert.Error(t, err)
	assert.Len(t, s.Markers(), 1, "failed lookups never add markers")
}

func TestResolveCityInFlightGuard(t *testing.T) {
	r := &blockingResolver{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewState(r)

	done := make(chan error, 1)
	go func() {
		done <- s.ResolveCity(context.Background(), "Tokyo")
	}()
	<-r.started

	err := s.ResolveCity(context.Background(), "Kyoto")
	assert.ErrorIs(t, err, ErrResolveInFlight)
	assert.True(t, s.Resolving())

	close(r.release)
	require.NoError(t, <-done)
	assert.False(t, s.Resolving())
	assert.Len(t, s.Markers(), 1)
}

func TestCloseDiscardsLateResolution(t *testing.T) {
	r := &blockingResolver{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewState(r)

	done := make(chan error, 1)
	go func() {
		done <- s.ResolveCity(context.Background(), "Tokyo")
	}()
	<-r.started

	s.Close()
	close(r.release)
	require.NoError(t, <-done)
	assert.Empty(t, s.Markers(), "results landing after teardown are discarded")
}

func TestSetStyleNormalizesAndEmits(t *testing.T) {
	s := NewState(nil)
	fired := false
	s.On(EventStyleChanged, func(interface{}) { fired = true })

	style := render.DefaultStyle()
	style.FontSizePt = 99
	style.FontFamily = "wingdings"
	s.SetStyle(style)

	got := s.Style()
	assert.Equal(t, float64(render.MaxFontSizePt), got.FontSizePt)
	assert.Equal(t, render.FontSansSerif, got.FontFamily)
	assert.True(t, fired)
}

func TestStyleChangeLeavesSelectionAndMarkers(t *testing.T) {
	s := loadedState(t)
	s.ToggleCountry("1")
	s.AddMarker(geocode.Place{Name: "Spot", Lat: 1, Lng: 1})

	style := s.Style()
	style.FontSizePt = 18
	s.SetStyle(style)

	assert.Equal(t, []string{"1"}, s.SelectedIDs())
	assert.Len(t, s.Markers(), 1)
}

func TestExportSceneNotReady(t *testing.T) {
	s := NewState(nil)
	snap := export.TakeSnapshot(render.Scene{Width: 10, Height: 10})
	_, err := s.ExportScene(snap, 2)
	assert.ErrorIs(t, err, export.ErrNotReady)
}

func TestExportScene(t *testing.T) {
	s := loadedState(t)

	scene := render.Scene{
		Index:    s.Index(),
		Selected: s.SelectionCopy(),
		View:     geometry.Identity(),
		Style:    s.Style(),
		Width:    50,
		Height:   40,
	}
	data, err := s.ExportScene(export.TakeSnapshot(scene), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.False(t, s.Exporting())
}

func TestExportSceneInFlightGuard(t *testing.T) {
	s := loadedState(t)
	snap := export.TakeSnapshot(render.Scene{
		Index:  s.Index(),
		View:   geometry.Identity(),
		Style:  s.Style(),
		Width:  40,
		Height: 30,
	})

	// EventExportStarted fires after the busy flag is set and before
	// the render, so a second request from the listener must bounce.
	var second error
	s.On(EventExportStarted, func(interface{}) {
		_, second = s.ExportScene(snap, 1)
	})

	_, err := s.ExportScene(snap, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, second, ErrExportInFlight)
	assert.False(t, s.Exporting())
}

func TestCloseDiscardsLateGeometry(t *testing.T) {
	s := NewState(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Close()
		w.Write([]byte(oneCountry))
	}))
	defer srv.Close()

	loaded := false
	s.On(EventDataLoaded, func(interface{}) { loaded = true })

	require.NoError(t, s.LoadData(srv.URL, ""))
	assert.False(t, s.Ready(), "geometry arriving after teardown is discarded")
	assert.False(t, loaded)
}

func TestCloseSuppressesLateLoadFailure(t *testing.T) {
	s := NewState(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Close()
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer srv.Close()

	failed := false
	s.On(EventLoadFailed, func(interface{}) { failed = true })

	require.NoError(t, s.LoadData(srv.URL, ""))
	assert.False(t, failed, "failures landing after teardown stay silent")
}

func TestReady(t *testing.T) {
	s := NewState(nil)
	assert.False(t, s.Ready())

	s = loadedState(t)
	assert.True(t, s.Ready())
}
