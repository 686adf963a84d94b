// Package geocode resolves free-text place queries to coordinates via
// an external text-to-coordinate service.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Place is a resolved location. Name is the user's query text, not the
// service's canonical label, so the marker reads back exactly what was
// typed.
type Place struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Note string  `json:"note,omitempty"`
}

// Resolver turns free text into a Place. Implementations must not
// return a Place with coordinates outside the valid domain.
type Resolver interface {
	Resolve(ctx context.Context, text string) (Place, error)
}

// noteSeparator splits the place query from an optional trailing note,
// e.g. "上海 - 出差".
const noteSeparator = " - "

// SplitNote splits input text into the place query and an optional
// note. Only the first separator is significant; the note may itself
// contain more separators.
func SplitNote(text string) (query, note string) {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, noteSeparator); i >= 0 {
		return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+len(noteSeparator):])
	}
	return text, ""
}

// HTTPResolver queries a Nominatim-style search endpoint.
type HTTPResolver struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// NewHTTPResolver creates a resolver for the given endpoint. An empty
// baseURL selects the default public instance.
func NewHTTPResolver(baseURL string) *HTTPResolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPResolver{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "tripmap",
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// searchResult is the subset of the service response we consume. The
// service serializes coordinates as strings.
type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Resolve implements Resolver. On any failure it returns a zero Place
// and an error; it never fabricates coordinates.
func (r *HTTPResolver) Resolve(ctx context.Context, text string) (Place, error) {
	query, note := SplitNote(text)
	if query == "" {
		return Place{}, fmt.Errorf("empty location query")
	}

	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", r.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", r.UserAgent)

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("resolving %q: %w", query, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("resolving %q: unexpected status %s", query, resp.Status)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Place{}, fmt.Errorf("resolving %q: %w", query, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("no location found for %q", query)
	}

	lat, lng, err := parseCoords(results[0].Lat, results[0].Lon)
	if err != nil {
		return Place{}, fmt.Errorf("resolving %q: %w", query, err)
	}

	return Place{Name: query, Lat: lat, Lng: lng, Note: note}, nil
}

// parseCoords validates that both coordinates are present, numeric, and
// inside the valid domain.
func parseCoords(latStr, lonStr string) (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad latitude %q", latStr)
	}
	lng, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad longitude %q", lonStr)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("coordinates out of range: %g, %g", lat, lng)
	}
	return lat, lng, nil
}
