// Package app provides the session state and event bus.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/paulmach/orb/geojson"

	"tripmap/internal/export"
	"tripmap/internal/geo"
	"tripmap/internal/geocode"
	"tripmap/internal/render"
)

// EventType identifies different application events.
type EventType int

const (
	EventDataLoaded EventType = iota
	EventLoadFailed
	EventSelectionChanged
	EventMarkersChanged
	EventStyleChanged
	EventResolveStarted
	EventResolveFinished
	EventExportStarted
	EventExportFinished
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

var (
	// ErrResolveInFlight rejects a second resolution request while one
	// is still pending.
	ErrResolveInFlight = errors.New("a location lookup is already in progress")
	// ErrExportInFlight rejects overlapping exports.
	ErrExportInFlight = errors.New("an export is already in progress")
)

// ResolveResult is the payload of EventResolveFinished.
type ResolveResult struct {
	Place geocode.Place
	Err   error
}

// State is the single owner of the session: selection set, marker
// sequence, and style config. The feature index is owned here too once
// loaded, and exposed read-only to the rendering side.
type State struct {
	mu sync.RWMutex

	index    *geo.FeatureIndex
	selected map[string]bool
	markers  []geocode.Place
	style    render.StyleConfig

	resolving  bool
	exporting  bool
	generation int // bumped on Close; stale async results are discarded

	resolver  geocode.Resolver
	listeners map[EventType][]EventListener
}

// NewState creates a new session.
func NewState(resolver geocode.Resolver) *State {
	return &State{
		selected:  make(map[string]bool),
		style:     render.DefaultStyle(),
		resolver:  resolver,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadData fetches the geometry and localization sources concurrently,
// joins them, and builds the feature index. Geometry is required; a
// localization failure degrades to native names. Call from a goroutine;
// listeners fire on completion.
func (s *State) LoadData(geometryPath, localePath string) error {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	var (
		wg      sync.WaitGroup
		fc      *geojson.FeatureCollection
		geomErr error
		table   *geo.Table
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if strings.HasPrefix(geometryPath, "http://") || strings.HasPrefix(geometryPath, "https://") {
			fc, geomErr = geo.FetchFeatureCollection(context.Background(), nil, geometryPath)
		} else {
			fc, geomErr = geo.LoadFeatureCollection(geometryPath)
		}
	}()
	go func() {
		defer wg.Done()
		if localePath == "" {
			return
		}
		var err error
		table, err = geo.LoadTable(localePath)
		if err != nil {
			log.Printf("app: localization source unavailable: %v", err)
		}
	}()
	wg.Wait()

	if geomErr != nil {
		s.mu.RLock()
		stale := s.generation != gen
		s.mu.RUnlock()
		if stale {
			// Session was torn down while the fetch was in flight.
			return nil
		}
		s.Emit(EventLoadFailed, geomErr)
		return fmt.Errorf("loading geometry: %w", geomErr)
	}

	index := geo.BuildIndex(fc, table.Localize)

	s.mu.Lock()
	if s.generation != gen {
		// Session was torn down while the fetch was in flight.
		s.mu.Unlock()
		return nil
	}
	s.index = index
	s.mu.Unlock()

	log.Printf("app: loaded %d country features", index.Len())
	s.Emit(EventDataLoaded, index)
	return nil
}

// SetIndex installs a pre-built feature index. Used by the headless
// renderer and tests.
func (s *State) SetIndex(index *geo.FeatureIndex) {
	s.mu.Lock()
	s.index = index
	s.mu.Unlock()
	s.Emit(EventDataLoaded, index)
}

// Index returns the feature index, or nil before the first load.
func (s *State) Index() *geo.FeatureIndex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

// Ready reports whether geometry has loaded.
func (s *State) Ready() bool {
	return s.Index() != nil
}

// ToggleCountry flips a country id in the selection set. Toggling twice
// restores the original membership. Ids without a loaded feature are
// tolerated; they render as unmatched until data arrives.
func (s *State) ToggleCountry(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	s.mu.Unlock()
	s.Emit(EventSelectionChanged, id)
}

// IsSelected reports selection membership.
func (s *State) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// SelectedIDs returns the selected ids in sorted order.
func (s *State) SelectedIDs() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// SelectionCopy returns a copy of the selection set for scene
// construction.
func (s *State) SelectionCopy() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.selected))
	for id, on := range s.selected {
		out[id] = on
	}
	return out
}

// Markers returns a copy of the ordered marker sequence.
func (s *State) Markers() []geocode.Place {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geocode.Place, len(s.markers))
	copy(out, s.markers)
	return out
}

// AddMarker appends a marker. Duplicates are permitted.
func (s *State) AddMarker(p geocode.Place) {
	s.mu.Lock()
	s.markers = append(s.markers, p)
	s.mu.Unlock()
	s.Emit(EventMarkersChanged, nil)
}

// RemoveMarker removes the marker at the given index, preserving the
// relative order of the rest.
func (s *State) RemoveMarker(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.markers) {
		s.mu.Unlock()
		return fmt.Errorf("marker index %d out of range", i)
	}
	s.markers = append(s.markers[:i], s.markers[i+1:]...)
	s.mu.Unlock()
	s.Emit(EventMarkersChanged, nil)
	return nil
}

// Style returns the current style config.
func (s *State) Style() render.StyleConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// SetStyle replaces the style config. This triggers a re-render via the
// event but never touches selection, markers, or the viewport.
func (s *State) SetStyle(style render.StyleConfig) {
	s.mu.Lock()
	s.style = style.Normalized()
	s.mu.Unlock()
	s.Emit(EventStyleChanged, nil)
}

// Resolving reports whether a location lookup is in flight.
func (s *State) Resolving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolving
}

// ResolveCity resolves free text to a place and appends a marker on
// success. Only one lookup may be in flight; a second call fails fast
// with ErrResolveInFlight. On failure the marker sequence is left
// untouched. Call from a goroutine; progress is signaled via events.
func (s *State) ResolveCity(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.resolving {
		s.mu.Unlock()
		return ErrResolveInFlight
	}
	if s.resolver == nil {
		s.mu.Unlock()
		return errors.New("no resolver configured")
	}
	s.resolving = true
	gen := s.generation
	s.mu.Unlock()

	s.Emit(EventResolveStarted, text)
	place, err := s.resolver.Resolve(ctx, text)

	s.mu.Lock()
	s.resolving = false
	stale := s.generation != gen
	if err == nil && !stale {
		s.markers = append(s.markers, place)
	}
	s.mu.Unlock()

	if stale {
		// Result arrived after teardown; discard silently.
		return nil
	}

	s.Emit(EventResolveFinished, ResolveResult{Place: place, Err: err})
	if err == nil {
		s.Emit(EventMarkersChanged, nil)
	}
	return err
}

// Exporting reports whether an export is in flight.
func (s *State) Exporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exporting
}

// ExportScene renders a snapshot to PNG bytes. Overlapping exports are
// rejected, and export before the first data load is a no-op error.
// Call from a goroutine; the snapshot must already have been taken on
// the UI thread.
func (s *State) ExportScene(snap export.Snapshot, scaleFactor float64) ([]byte, error) {
	s.mu.Lock()
	if s.exporting {
		s.mu.Unlock()
		return nil, ErrExportInFlight
	}
	if s.index == nil {
		s.mu.Unlock()
		return nil, export.ErrNotReady
	}
	s.exporting = true
	s.mu.Unlock()

	s.Emit(EventExportStarted, nil)
	data, err := export.PNG(snap, scaleFactor)

	s.mu.Lock()
	s.exporting = false
	s.mu.Unlock()

	s.Emit(EventExportFinished, err)
	return data, err
}


// Close tears the session down. In-flight fetches and resolutions
// observe the generation bump and discard their results.
func (s *State) Close() {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
}
