package geo

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"tripmap/pkg/geometry"
)

// simplifyThreshold is the Douglas-Peucker tolerance (in degrees) used
// for the render rings. Hit-testing always uses the full-resolution
// boundary.
const simplifyThreshold = 0.05

// Localizer resolves a country's display name from its id and native
// name. It must always return something; implementations fall back to
// the native name when no translation exists.
type Localizer func(id, nativeName string) string

// CountryFeature is one country boundary: immutable after the index is
// built.
type CountryFeature struct {
	ID          string
	DisplayName string

	bound    orb.Bound
	hitRings [][]geometry.Point2D // full resolution, lng/lat
	rings    [][]geometry.Point2D // simplified, for rendering
}

// Rings returns the simplified boundary rings in (lng, lat) order,
// suitable for projection and drawing. Holes are included as separate
// rings; fill with the even-odd rule.
func (f *CountryFeature) Rings() [][]geometry.Point2D {
	return f.rings
}

// Contains reports whether the geographic point lies inside the
// feature's boundary, honoring holes via the even-odd rule.
func (f *CountryFeature) Contains(lng, lat float64) bool {
	pt := orb.Point{lng, lat}
	if !f.bound.Contains(pt) {
		return false
	}
	return geometry.PointInRings(geometry.Point2D{X: lng, Y: lat}, f.hitRings)
}

// FeatureIndex holds the loaded country set and answers hit-test and
// lookup queries. It is built once and never mutated afterwards.
type FeatureIndex struct {
	features []*CountryFeature
	byID     map[string]*CountryFeature
}

// BuildIndex constructs a FeatureIndex from a GeoJSON feature
// collection. Features for the south polar region are dropped
// permanently. A malformed feature (missing id or geometry) is skipped
// with a logged warning and does not abort the load.
func BuildIndex(fc *geojson.FeatureCollection, localize Localizer) *FeatureIndex {
	ix := &FeatureIndex{
		byID: make(map[string]*CountryFeature),
	}
	if fc == nil {
		return ix
	}

	for i, f := range fc.Features {
		cf, err := newCountryFeature(f, localize)
		if err != nil {
			log.Printf("geo: skipping feature %d: %v", i, err)
			continue
		}
		if cf == nil {
			// Excluded region.
			continue
		}
		ix.features = append(ix.features, cf)
		ix.byID[cf.ID] = cf
	}
	return ix
}

// newCountryFeature converts one GeoJSON feature. Returns (nil, nil)
// for regions that are excluded by policy rather than malformed.
func newCountryFeature(f *geojson.Feature, localize Localizer) (*CountryFeature, error) {
	if f == nil || f.Geometry == nil {
		return nil, fmt.Errorf("no geometry")
	}

	id := featureID(f)
	if id == "" {
		return nil, fmt.Errorf("no usable id")
	}

	name, _ := f.Properties["name"].(string)
	if name == "" {
		name, _ = f.Properties["NAME"].(string)
	}

	if isAntarctic(id, name, f) {
		return nil, nil
	}

	var geom orb.MultiPolygon
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		geom = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		geom = g
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}

	display := name
	if localize != nil {
		display = localize(id, name)
	}

	simplified := simplify.DouglasPeucker(simplifyThreshold).
		Simplify(geom.Clone()).(orb.MultiPolygon)

	return &CountryFeature{
		ID:          id,
		DisplayName: display,
		bound:       geom.Bound(),
		hitRings:    flattenRings(geom),
		rings:       flattenRings(simplified),
	}, nil
}

// featureID normalizes the GeoJSON feature id, which decoders hand back
// as a string or a number depending on the source document.
func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case string:
		return id
	case float64:
		return strconv.Itoa(int(id))
	case int:
		return strconv.Itoa(id)
	}
	if s, ok := f.Properties["id"].(string); ok {
		return s
	}
	return ""
}

// isAntarctic identifies the frozen south polar region, which is never
// rendered, selected, or hit-tested.
func isAntarctic(id, name string, f *geojson.Feature) bool {
	if id == "010" {
		return true
	}
	if strings.EqualFold(name, "antarctica") {
		return true
	}
	if iso, ok := f.Properties["ISO_A3"].(string); ok && iso == "ATA" {
		return true
	}
	return false
}

func flattenRings(mp orb.MultiPolygon) [][]geometry.Point2D {
	var rings [][]geometry.Point2D
	for _, poly := range mp {
		for _, ring := range poly {
			pts := make([]geometry.Point2D, len(ring))
			for i, pt := range ring {
				pts[i] = geometry.Point2D{X: pt[0], Y: pt[1]}
			}
			rings = append(rings, pts)
		}
	}
	return rings
}

// Len returns the number of indexed features.
func (ix *FeatureIndex) Len() int {
	return len(ix.features)
}

// Features returns the indexed features in source order.
func (ix *FeatureIndex) Features() []*CountryFeature {
	return ix.features
}

// ByID returns the feature with the given id, or nil.
func (ix *FeatureIndex) ByID(id string) *CountryFeature {
	return ix.byID[id]
}

// HitTest resolves a geographic point to the feature containing it, or
// nil when the point is in open ocean or on an excluded region.
func (ix *FeatureIndex) HitTest(lng, lat float64) *CountryFeature {
	for _, f := range ix.features {
		if f.Contains(lng, lat) {
			return f
		}
	}
	return nil
}
