package panels

import (
	"image/color"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"tripmap/internal/app"
	"tripmap/internal/render"
	"tripmap/ui/canvas"
)

// StylePanel edits the marker and highlight appearance. Every change
// applies to the live map immediately and feeds into PNG export.
type StylePanel struct {
	state     *app.State
	canvas    *canvas.MapCanvas
	window    fyne.Window
	container fyne.CanvasObject

	countryBtn *widget.Button
	cityBtn    *widget.Button
	textBtn    *widget.Button
	familySel  *widget.Select
	sizeSlider *widget.Slider
	sizeLabel  *widget.Label

	// Guards against SetSelected/SetValue re-firing the change
	// callbacks while controls are synced from state.
	syncing bool
}

// NewStylePanel creates a new style panel.
func NewStylePanel(state *app.State, mc *canvas.MapCanvas, window fyne.Window) *StylePanel {
	sp := &StylePanel{
		state:  state,
		canvas: mc,
		window: window,
	}

	sp.countryBtn = sp.colorButton("Country highlight", func(style *render.StyleConfig, c color.RGBA) {
		style.CountryColor = c
	})
	sp.cityBtn = sp.colorButton("City markers", func(style *render.StyleConfig, c color.RGBA) {
		style.CityColor = c
	})
	sp.textBtn = sp.colorButton("Label text", func(style *render.StyleConfig, c color.RGBA) {
		style.TextColor = c
	})

	families := make([]string, len(render.FontFamilies))
	for i, f := range render.FontFamilies {
		families[i] = string(f)
	}
	sp.familySel = widget.NewSelect(families, func(sel string) {
		if sp.syncing {
			return
		}
		style := sp.state.Style()
		style.FontFamily = render.FontFamily(sel)
		sp.apply(style)
	})

	sp.sizeLabel = widget.NewLabel("")
	sp.sizeSlider = widget.NewSlider(render.MinFontSizePt, render.MaxFontSizePt)
	sp.sizeSlider.Step = 1
	sp.sizeSlider.OnChanged = func(v float64) {
		if sp.syncing {
			return
		}
		style := sp.state.Style()
		style.FontSizePt = v
		sp.apply(style)
	}

	resetBtn := widget.NewButton("Reset to Defaults", func() {
		sp.apply(render.DefaultStyle())
	})

	form := widget.NewForm(
		widget.NewFormItem("Highlight", sp.countryBtn),
		widget.NewFormItem("Markers", sp.cityBtn),
		widget.NewFormItem("Text", sp.textBtn),
		widget.NewFormItem("Font", sp.familySel),
		widget.NewFormItem("Size", container.NewBorder(nil, nil, nil, sp.sizeLabel, sp.sizeSlider)),
	)

	sp.container = container.NewVBox(form, resetBtn)

	state.On(app.EventStyleChanged, func(interface{}) {
		sp.sync()
		sp.canvas.Refresh()
	})

	sp.sync()
	return sp
}

// Container returns the panel container.
func (sp *StylePanel) Container() fyne.CanvasObject {
	return sp.container
}

// colorButton builds a button labelled with the current hex value that
// opens a picker and writes the chosen color through mutate.
func (sp *StylePanel) colorButton(title string, mutate func(*render.StyleConfig, color.RGBA)) *widget.Button {
	btn := widget.NewButton("#000000", nil)
	btn.OnTapped = func() {
		picker := dialog.NewColorPicker(title, "", func(c color.Color) {
			r, g, b, _ := c.RGBA()
			rgba := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 255}
			style := sp.state.Style()
			mutate(&style, rgba)
			sp.apply(style)
		}, sp.window)
		picker.Advanced = true
		picker.Show()
	}
	return btn
}

func (sp *StylePanel) apply(style render.StyleConfig) {
	sp.state.SetStyle(style)
}

// sync refreshes the controls from the current style.
func (sp *StylePanel) sync() {
	sp.syncing = true
	defer func() { sp.syncing = false }()
	style := sp.state.Style()
	sp.countryBtn.SetText(render.HexColor(style.CountryColor))
	sp.cityBtn.SetText(render.HexColor(style.CityColor))
	sp.textBtn.SetText(render.HexColor(style.TextColor))
	sp.familySel.SetSelected(string(style.FontFamily))
	sp.sizeSlider.SetValue(style.FontSizePt)
	sp.sizeLabel.SetText(fmtPt(style.FontSizePt))
}

func fmtPt(v float64) string {
	return strconv.Itoa(int(v)) + "pt"
}
