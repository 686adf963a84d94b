package geo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLocalize(t *testing.T) {
	table := NewTable([]LocaleRecord{
		{ID: "156", Name: "China", Local: "中国"},
		{Name: "Japan", Local: "日本"},
		{ID: "840", Name: "United States of America"},
	})

	assert.Equal(t, "中国", table.Localize("156", "China"))
	assert.Equal(t, "日本", table.Localize("392", "japan"), "name match is case-insensitive")
	assert.Equal(t, "United States of America", table.Localize("840", "USA"))
	assert.Equal(t, "Atlantis", table.Localize("000", "Atlantis"), "misses fall back to the native name")
}

func TestTableLocalizeNilReceiver(t *testing.T) {
	var table *Table
	assert.Equal(t, "China", table.Localize("156", "China"))
}

func TestReadTable(t *testing.T) {
	src := `[
	  {"id": "156", "name": "China", "local": "中国"},
	  {"name": "France", "local": "法国"}
	]`
	table, err := ReadTable(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "中国", table.Localize("156", "China"))
	assert.Equal(t, "法国", table.Localize("", "France"))
}

func TestReadTableBadJSON(t *testing.T) {
	_, err := ReadTable(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}
