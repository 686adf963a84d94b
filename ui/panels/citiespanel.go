package panels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"tripmap/internal/app"
	"tripmap/internal/geocode"
	"tripmap/ui/canvas"
)

const resolveTimeout = 15 * time.Second

// CitiesPanel adds geocoded city markers and lists the existing ones.
type CitiesPanel struct {
	state     *app.State
	canvas    *canvas.MapCanvas
	window    fyne.Window
	container fyne.CanvasObject

	input  *widget.Entry
	addBtn *widget.Button
	busy   *widget.ProgressBarInfinite
	list   *widget.List
}

// NewCitiesPanel creates a new cities panel.
func NewCitiesPanel(state *app.State, mc *canvas.MapCanvas, window fyne.Window) *CitiesPanel {
	cp := &CitiesPanel{
		state:  state,
		canvas: mc,
		window: window,
	}

	cp.input = widget.NewEntry()
	cp.input.SetPlaceHolder("City, optionally \"City - note\"")
	cp.input.OnSubmitted = func(string) {
		cp.onAdd()
	}

	cp.addBtn = widget.NewButton("Add City", func() {
		cp.onAdd()
	})

	cp.busy = widget.NewProgressBarInfinite()
	cp.busy.Hide()

	cp.list = widget.NewList(
		func() int {
			return len(cp.state.Markers())
		},
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, nil,
				widget.NewButton("Remove", nil),
				widget.NewLabel("City"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			row := obj.(*fyne.Container)
			label := row.Objects[0].(*widget.Label)
			removeBtn := row.Objects[1].(*widget.Button)

			markers := cp.state.Markers()
			if int(id) >= len(markers) {
				return
			}
			label.SetText(markerText(markers[id]))
			removeBtn.OnTapped = func() {
				if err := cp.state.RemoveMarker(int(id)); err == nil {
					cp.refresh()
				}
			}
		},
	)

	top := container.NewVBox(
		cp.input,
		container.NewBorder(nil, nil, nil, nil, cp.addBtn),
		cp.busy,
	)
	cp.container = container.NewBorder(top, nil, nil, nil, cp.list)

	state.On(app.EventResolveStarted, func(interface{}) {
		cp.busy.Show()
		cp.addBtn.Disable()
	})
	state.On(app.EventResolveFinished, func(data interface{}) {
		cp.busy.Hide()
		cp.addBtn.Enable()
		if res, ok := data.(app.ResolveResult); ok && res.Err != nil {
			// Keep the typed text so the user can edit and retry.
			dialog.ShowError(fmt.Errorf("city lookup failed: %w", res.Err), cp.window)
			return
		}
		cp.input.SetText("")
	})
	state.On(app.EventMarkersChanged, func(interface{}) {
		cp.refresh()
	})

	return cp
}

// Container returns the panel container.
func (cp *CitiesPanel) Container() fyne.CanvasObject {
	return cp.container
}

func (cp *CitiesPanel) onAdd() {
	text := cp.input.Text
	if text == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()
		err := cp.state.ResolveCity(ctx, text)
		if errors.Is(err, app.ErrResolveInFlight) {
			dialog.ShowInformation("Busy", "A city lookup is already running.", cp.window)
		}
	}()
}

func (cp *CitiesPanel) refresh() {
	cp.list.Refresh()
	cp.canvas.Refresh()
}

func markerText(p geocode.Place) string {
	if p.Note != "" {
		return fmt.Sprintf("%s - %s (%.4f, %.4f)", p.Name, p.Note, p.Lat, p.Lng)
	}
	return fmt.Sprintf("%s (%.4f, %.4f)", p.Name, p.Lat, p.Lng)
}
