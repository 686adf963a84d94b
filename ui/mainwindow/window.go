// Package mainwindow provides the main application window.
package mainwindow

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"tripmap/internal/app"
	"tripmap/internal/export"
	"tripmap/internal/render"
	"tripmap/internal/version"
	"tripmap/ui/canvas"
	"tripmap/ui/panels"
	"tripmap/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const (
	prefKeyLastDir      = "lastDirectory"
	prefKeyWindowWidth  = "window.width"
	prefKeyWindowHeight = "window.height"
	prefKeyStyle        = "style"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	canvas    *canvas.MapCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	prefs     *prefs.Prefs

	prefsDirty bool

	// Menu items that need state tracking
	exportItem *fyne.MenuItem
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, appPrefs *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Trip Map")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  appPrefs,
	}

	mw.restoreStyle()
	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	width := float32(mw.prefs.Float(prefKeyWindowWidth, 1200))
	height := float32(mw.prefs.Float(prefKeyWindowHeight, 800))
	win.Resize(fyne.NewSize(width, height))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMapCanvas(mw.state)
	mw.canvas.OnToggle(func(id string) {
		mw.state.ToggleCountry(id)
	})
	mw.canvas.OnHover(func(name string) {
		if name == "" {
			mw.updateStatus("Ready")
		} else {
			mw.updateStatus(name)
		}
	})

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas, mw.Window)

	mw.statusBar = widget.NewLabel("Loading map data…")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,   // top
		nil,       // bottom
		nil,       // left
		nil,       // right
		mw.canvas, // center
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", func() {
		mw.canvas.ZoomOut()
	})
	zoomInBtn := widget.NewButton("+", func() {
		mw.canvas.ZoomIn()
	})
	resetBtn := widget.NewButton("Reset", func() {
		mw.canvas.ResetView()
	})

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		resetBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	mw.exportItem = fyne.NewMenuItem("Export PNG...", mw.onExportPNG)
	mw.exportItem.Disabled = true

	fileMenu := fyne.NewMenu("File",
		mw.exportItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Reset View", mw.canvas.ResetView),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventDataLoaded, func(data interface{}) {
		mw.exportItem.Disabled = false
		if menu := mw.MainMenu(); menu != nil {
			menu.Refresh()
		}
		if index := mw.state.Index(); index != nil {
			mw.updateStatus(fmt.Sprintf("Loaded %d countries", index.Len()))
		}
		mw.canvas.Refresh()
	})

	mw.state.On(app.EventLoadFailed, func(data interface{}) {
		if err, ok := data.(error); ok {
			dialog.ShowError(err, mw.Window)
		}
		mw.updateStatus("Map data failed to load")
	})

	mw.state.On(app.EventMarkersChanged, func(data interface{}) {
		mw.canvas.Refresh()
	})

	mw.state.On(app.EventStyleChanged, func(data interface{}) {
		mw.prefsDirty = true
		mw.canvas.Refresh()
	})

	mw.state.On(app.EventExportStarted, func(data interface{}) {
		mw.updateStatus("Exporting…")
	})

	mw.state.On(app.EventExportFinished, func(data interface{}) {
		if err, ok := data.(error); ok && err != nil {
			mw.updateStatus("Export failed")
			return
		}
		mw.updateStatus("Export complete")
	})
}

// restoreStyle applies the persisted style, if any.
func (mw *MainWindow) restoreStyle() {
	raw := mw.prefs.String(prefKeyStyle, "")
	if raw == "" {
		return
	}
	var style render.StyleConfig
	if err := json.Unmarshal([]byte(raw), &style); err != nil {
		log.Printf("prefs: bad saved style, using defaults: %v", err)
		return
	}
	mw.state.SetStyle(style)
}

// SavePreferences persists the window size and current style.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefKeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefKeyWindowHeight, float64(size.Height))

	if raw, err := json.Marshal(mw.state.Style()); err == nil {
		mw.prefs.SetString(prefKeyStyle, string(raw))
	}

	if err := mw.prefs.Save(); err != nil {
		log.Printf("prefs: save failed: %v", err)
	}
	mw.prefsDirty = false
}

// SavePreferencesIfChanged saves only when a style change is pending.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if mw.prefsDirty {
		mw.SavePreferences()
	}
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.app.Preferences().String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	uri := storage.NewFileURI(path)
	listable, err := storage.ListerForURI(uri)
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.app.Preferences().SetString(prefKeyLastDir, filepath.Dir(filePath))
}

// onExportPNG snapshots the current view on the UI thread, then renders
// and writes the PNG off-thread. The on-screen map stays live while the
// export runs.
func (mw *MainWindow) onExportPNG() {
	if !mw.state.Ready() {
		dialog.ShowInformation("Export", "Map data is still loading.", mw.Window)
		return
	}
	snap := export.TakeSnapshot(mw.canvas.CurrentScene())

	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		mw.saveLastDir(path)

		go func() {
			defer writer.Close()
			data, exportErr := mw.state.ExportScene(snap, export.DefaultScaleFactor)
			if exportErr == nil {
				_, exportErr = writer.Write(data)
			}
			if exportErr != nil {
				dialog.ShowError(exportErr, mw.Window)
			}
		}()
	}, mw.Window)

	fd.SetFileName(export.TimestampedName(time.Now()))
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Trip Map",
		fmt.Sprintf("Trip Map v%s\n\n"+
			"An interactive world map for planning and recording trips.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
