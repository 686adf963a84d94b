// Command mapshot renders a world map view to a PNG without a display.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tripmap/internal/export"
	"tripmap/internal/geo"
	"tripmap/internal/geocode"
	"tripmap/internal/render"
	"tripmap/internal/version"
)

func main() {
	geometryPath := flag.String("geometry", "data/countries.geojson", "GeoJSON country geometry file")
	localePath := flag.String("locale", "", "localized country name table (optional)")
	selected := flag.String("selected", "", "comma-separated country ids to highlight")
	markersPath := flag.String("markers", "", "JSON file with city markers")
	out := flag.String("out", "", "output PNG path (default worldmap-<timestamp>.png)")
	width := flag.Int("width", 1024, "view width in pixels")
	height := flag.Int("height", 768, "view height in pixels")
	scale := flag.Float64("scale", export.DefaultScaleFactor, "output scale factor")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mapshot %s (%s)\n", version.Version, version.GitCommit)
		return
	}

	fc, err := geo.LoadFeatureCollection(*geometryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load geometry: %v\n", err)
		os.Exit(1)
	}

	var localize geo.Localizer
	if *localePath != "" {
		table, err := geo.LoadTable(*localePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load locale table: %v\n", err)
			os.Exit(1)
		}
		localize = table.Localize
	}

	index := geo.BuildIndex(fc, localize)
	fmt.Printf("Loaded %d countries\n", index.Len())

	selection := make(map[string]bool)
	for _, id := range strings.Split(*selected, ",") {
		if id = strings.TrimSpace(id); id != "" {
			if index.ByID(id) == nil {
				fmt.Fprintf(os.Stderr, "Unknown country id %q\n", id)
				os.Exit(1)
			}
			selection[id] = true
		}
	}

	var markers []geocode.Place
	if *markersPath != "" {
		data, err := os.ReadFile(*markersPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read markers: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &markers); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to parse markers: %v\n", err)
			os.Exit(1)
		}
	}

	scene := render.Scene{
		Index:    index,
		Selected: selection,
		View:     render.NewViewport().Transform(),
		Markers:  markers,
		Style:    render.DefaultStyle(),
		Width:    *width,
		Height:   *height,
	}

	data, err := export.PNG(export.TakeSnapshot(scene), *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Render failed: %v\n", err)
		os.Exit(1)
	}

	outPath := *out
	if outPath == "" {
		outPath = export.TimestampedName(time.Now())
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outPath, err)
		os.Exit(1)
	}

	outW := float64(*width) * (*scale)
	outH := float64(*height) * (*scale)
	fmt.Printf("Wrote %s (%d countries highlighted, %d markers, %.0fx%.0f px)\n",
		outPath, len(selection), len(markers), outW, outH)
}
