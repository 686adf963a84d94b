package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/paulmach/orb/geojson"
)

// ReadFeatureCollection decodes a GeoJSON feature collection from r.
func ReadFeatureCollection(r io.Reader) (*geojson.FeatureCollection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading geometry source: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing geometry source: %w", err)
	}
	return fc, nil
}

// LoadFeatureCollection reads a GeoJSON feature collection from a file.
func LoadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geometry source: %w", err)
	}
	defer f.Close()
	return ReadFeatureCollection(f)
}

// FetchFeatureCollection retrieves a GeoJSON feature collection over
// HTTP. Used when the geometry source is configured as a URL.
func FetchFeatureCollection(ctx context.Context, client *http.Client, url string) (*geojson.FeatureCollection, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching geometry source: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching geometry source: unexpected status %s", resp.Status)
	}
	return ReadFeatureCollection(resp.Body)
}
