// Package panels provides UI panels for the application.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"tripmap/internal/app"
	"tripmap/ui/canvas"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.MapCanvas
	container *container.AppTabs

	countriesPanel *CountriesPanel
	citiesPanel    *CitiesPanel
	stylePanel     *StylePanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, mc *canvas.MapCanvas, window fyne.Window) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: mc,
	}

	sp.countriesPanel = NewCountriesPanel(state, mc)
	sp.citiesPanel = NewCitiesPanel(state, mc, window)
	sp.stylePanel = NewStylePanel(state, mc, window)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Countries", sp.countriesPanel.Container()),
		container.NewTabItem("Cities", sp.citiesPanel.Container()),
		container.NewTabItem("Style", sp.stylePanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}
