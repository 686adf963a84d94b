package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNote(t *testing.T) {
	cases := []struct {
		in, query, note string
	}{
		{"Paris", "Paris", ""},
		{"上海 - 出差", "上海", "出差"},
		{"New York - work - fun", "New York", "work - fun"},
		{"  Tokyo  ", "Tokyo", ""},
		{"Rio - ", "Rio", ""},
	}
	for _, c := range cases {
		query, note := SplitNote(c.in)
		assert.Equal(t, c.query, query, c.in)
		assert.Equal(t, c.note, note, c.in)
	}
}

func newTestResolver(handler http.HandlerFunc) (*HTTPResolver, *httptest.Server) {
	srv := httptest.NewServer(handler)
	r := NewHTTPResolver(srv.URL)
	r.Client = srv.Client()
	return r, srv
}

func TestResolveSuccess(t *testing.T) {
	var gotQuery string
	r, srv := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
		gotQuery = req.URL.Query().Get("q")
		w.Write([]byte(`[{"display_name": "Shanghai, China", "lat": "31.2304", "lon": "121.4737"}]`))
	})
	defer srv.Close()

	place, err := r.Resolve(context.Background(), "上海 - 出差")
	require.NoError(t, err)

	assert.Equal(t, "上海", gotQuery, "the note never reaches the service")
	assert.Equal(t, "上海", place.Name, "marker keeps the typed query, not the canonical label")
	assert.Equal(t, "出差", place.Note)
	assert.InDelta(t, 31.2304, place.Lat, 1e-9)
	assert.InDelta(t, 121.4737, place.Lng, 1e-9)
}

func TestResolveNoResults(t *testing.T) {
	r, srv := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	_, err := r.Resolve(context.Background(), "Nowhereville")
	assert.Error(t, err)
}

func TestResolveServiceError(t *testing.T) {
	r, srv := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := r.Resolve(context.Background(), "Paris")
	assert.Error(t, err)
}

func TestResolveBadCoordinates(t *testing.T) {
	r, srv := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`[{"display_name": "Bad", "lat": "not-a-number", "lon": "10"}]`))
	})
	defer srv.Close()

	_, err := r.Resolve(context.Background(), "Bad")
	assert.Error(t, err)
}

func TestResolveOutOfRangeCoordinates(t *testing.T) {
	r, srv := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`[{"display_name": "Bad", "lat": "95", "lon": "10"}]`))
	})
	defer srv.Close()

	_, err := r.Resolve(context.Background(), "Bad")
	assert.Error(t, err)
}

func TestResolveEmptyQuery(t *testing.T) {
	r := NewHTTPResolver("http://unused.invalid")
	_, err := r.Resolve(context.Background(), "   ")
	assert.Error(t, err)
}

func TestResolveContextCancelled(t *testing.T) {
	r, srv := newTestResolver(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`[]`))
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, "Paris")
	assert.Error(t, err)
}
