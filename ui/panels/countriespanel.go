package panels

import (
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"tripmap/internal/app"
	"tripmap/internal/geo"
	"tripmap/ui/canvas"
)

// CountriesPanel lists every country with a checkbox mirroring its
// highlight state. Checking a row and clicking the map polygon are the
// same operation.
type CountriesPanel struct {
	state     *app.State
	canvas    *canvas.MapCanvas
	container fyne.CanvasObject

	search *widget.Entry
	list   *widget.List

	sorted   []*geo.CountryFeature
	filtered []*geo.CountryFeature
}

// NewCountriesPanel creates a new countries panel.
func NewCountriesPanel(state *app.State, mc *canvas.MapCanvas) *CountriesPanel {
	cp := &CountriesPanel{
		state:  state,
		canvas: mc,
	}

	cp.search = widget.NewEntry()
	cp.search.SetPlaceHolder("Filter countries…")
	cp.search.OnChanged = func(string) {
		cp.applyFilter()
	}

	cp.list = widget.NewList(
		func() int {
			return len(cp.filtered)
		},
		func() fyne.CanvasObject {
			return widget.NewCheck("Country", nil)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			check := obj.(*widget.Check)
			if id >= len(cp.filtered) {
				return
			}
			f := cp.filtered[id]
			check.Text = f.DisplayName
			// Rebind before SetChecked so recycled rows don't fire
			// stale callbacks.
			check.OnChanged = nil
			check.SetChecked(cp.state.IsSelected(f.ID))
			check.OnChanged = func(bool) {
				cp.state.ToggleCountry(f.ID)
			}
			check.Refresh()
		},
	)

	cp.container = container.NewBorder(cp.search, nil, nil, nil, cp.list)

	state.On(app.EventDataLoaded, func(interface{}) {
		cp.reload()
	})
	state.On(app.EventSelectionChanged, func(interface{}) {
		cp.list.Refresh()
		cp.canvas.Refresh()
	})

	cp.reload()
	return cp
}

// Container returns the panel container.
func (cp *CountriesPanel) Container() fyne.CanvasObject {
	return cp.container
}

// reload rebuilds the sorted country list from the loaded index.
func (cp *CountriesPanel) reload() {
	index := cp.state.Index()
	if index == nil {
		cp.sorted = nil
		cp.applyFilter()
		return
	}
	cp.sorted = append([]*geo.CountryFeature(nil), index.Features()...)
	sort.Slice(cp.sorted, func(i, j int) bool {
		return cp.sorted[i].DisplayName < cp.sorted[j].DisplayName
	})
	cp.applyFilter()
}

func (cp *CountriesPanel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(cp.search.Text))
	if needle == "" {
		cp.filtered = cp.sorted
	} else {
		cp.filtered = cp.filtered[:0:0]
		for _, f := range cp.sorted {
			if strings.Contains(strings.ToLower(f.DisplayName), needle) {
				cp.filtered = append(cp.filtered, f)
			}
		}
	}
	cp.list.Refresh()
}
