package geo

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// LocaleRecord is one entry of the localization source: a country id
// with its source-language name and the preferred display name.
type LocaleRecord struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Local string `json:"local,omitempty"`
}

// Table resolves country display names. Lookups try the id first, then
// a case-insensitive name match, and finally fall back to the native
// name from the geometry source, so Localize always returns something.
type Table struct {
	byID   map[string]string
	byName map[string]string
}

// NewTable builds a lookup table from localization records. Records
// without a display name contribute nothing.
func NewTable(records []LocaleRecord) *Table {
	t := &Table{
		byID:   make(map[string]string, len(records)),
		byName: make(map[string]string, len(records)),
	}
	for _, rec := range records {
		display := rec.Local
		if display == "" {
			display = rec.Name
		}
		if display == "" {
			continue
		}
		if rec.ID != "" {
			t.byID[rec.ID] = display
		}
		if rec.Name != "" {
			t.byName[strings.ToLower(rec.Name)] = display
		}
	}
	return t
}

// ReadTable decodes a JSON array of locale records from r.
func ReadTable(r io.Reader) (*Table, error) {
	var records []LocaleRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parsing localization source: %w", err)
	}
	return NewTable(records), nil
}

// LoadTable reads the localization source from a file.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening localization source: %w", err)
	}
	defer f.Close()
	return ReadTable(f)
}

// Localize returns the display name for a country. Matching is
// best-effort: a miss logs once per id and falls back to the native
// name.
func (t *Table) Localize(id, nativeName string) string {
	if t != nil {
		if name, ok := t.byID[id]; ok {
			return name
		}
		if name, ok := t.byName[strings.ToLower(nativeName)]; ok {
			return name
		}
		log.Printf("geo: no localization for %q (%s), using native name", nativeName, id)
	}
	return nativeName
}
