package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCollection has a square country with a square hole, a second
// plain country, Antarctica, and a feature with no geometry.
const testCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "156",
      "properties": {"name": "China"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [
          [[0, 0], [20, 0], [20, 20], [0, 20], [0, 0]],
          [[8, 8], [12, 8], [12, 12], [8, 12], [8, 8]]
        ]
      }
    },
    {
      "type": "Feature",
      "id": "250",
      "properties": {"name": "France"},
      "geometry": {
        "type": "MultiPolygon",
        "coordinates": [
          [[[-30, -30], [-20, -30], [-20, -20], [-30, -20], [-30, -30]]]
        ]
      }
    },
    {
      "type": "Feature",
      "id": "010",
      "properties": {"name": "Antarctica"},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-180, -90], [180, -90], [180, -60], [-180, -60], [-180, -90]]]
      }
    },
    {
      "type": "Feature",
      "id": "999",
      "properties": {"name": "Broken"},
      "geometry": null
    }
  ]
}`

func loadTestIndex(t *testing.T, localize Localizer) *FeatureIndex {
	t.Helper()
	fc, err := ReadFeatureCollection(strings.NewReader(testCollection))
	require.NoError(t, err)
	return BuildIndex(fc, localize)
}

func TestBuildIndexSkipsMalformedAndAntarctica(t *testing.T) {
	ix := loadTestIndex(t, nil)

	assert.Equal(t, 2, ix.Len(), "antarctica and the broken feature are dropped")
	assert.Nil(t, ix.ByID("010"))
	assert.Nil(t, ix.ByID("999"))
	require.NotNil(t, ix.ByID("156"))
	assert.Equal(t, "China", ix.ByID("156").DisplayName)
}

func TestHitTestInterior(t *testing.T) {
	ix := loadTestIndex(t, nil)

	f := ix.HitTest(5, 5)
	require.NotNil(t, f)
	assert.Equal(t, "156", f.ID)

	f = ix.HitTest(-25, -25)
	require.NotNil(t, f)
	assert.Equal(t, "250", f.ID)
}

func TestHitTestHole(t *testing.T) {
	ix := loadTestIndex(t, nil)
	assert.Nil(t, ix.HitTest(10, 10), "points inside a hole are not inside the country")
}

func TestHitTestOcean(t *testing.T) {
	ix := loadTestIndex(t, nil)
	assert.Nil(t, ix.HitTest(100, 50))
}

func TestHitTestAntarcticaExcluded(t *testing.T) {
	ix := loadTestIndex(t, nil)
	assert.Nil(t, ix.HitTest(0, -80), "the excluded region never hit-tests")
}

func TestBuildIndexLocalizes(t *testing.T) {
	table := NewTable([]LocaleRecord{
		{ID: "156", Name: "China", Local: "中国"},
	})
	ix := loadTestIndex(t, table.Localize)

	assert.Equal(t, "中国", ix.ByID("156").DisplayName)
	assert.Equal(t, "France", ix.ByID("250").DisplayName, "misses fall back to the native name")
}

func TestFeatureRingsIncludeHoles(t *testing.T) {
	ix := loadTestIndex(t, nil)
	f := ix.ByID("156")
	require.NotNil(t, f)
	assert.Len(t, f.Rings(), 2, "outer boundary plus one hole")
}

func TestBuildIndexNilCollection(t *testing.T) {
	ix := BuildIndex(nil, nil)
	assert.Equal(t, 0, ix.Len())
	assert.Nil(t, ix.HitTest(0, 0))
}
