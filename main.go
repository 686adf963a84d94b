// Package main provides the entry point for the Trip Map application.
package main

import (
	"flag"
	"log"
	"time"

	"tripmap/internal/app"
	"tripmap/internal/geocode"
	"tripmap/ui/mainwindow"
	"tripmap/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const (
	appTitle   = "Trip Map"
	appVersion = "0.1.0"
)

func main() {
	geometryPath := flag.String("geometry", "data/countries.geojson", "GeoJSON country geometry file or URL")
	localePath := flag.String("locale", "data/names.zh.json", "localized country name table (optional)")
	geocoderURL := flag.String("geocoder", geocode.DefaultBaseURL, "geocoding service base URL")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, appVersion)

	fyneApp := fyneapp.NewWithID("tripmap")

	appState := app.NewState(geocode.NewHTTPResolver(*geocoderURL))
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appState, appPrefs)
	win.SetTitle(appTitle)

	go func() {
		if err := appState.LoadData(*geometryPath, *localePath); err != nil {
			log.Printf("Failed to load map data: %v", err)
		}
	}()

	setupHotReload(win)

	win.SetOnClosed(func() {
		win.SavePreferences()
		appState.Close()
	})

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.Baseline().Format("15:04:05"))

	reloader.OnTick(func() {
		win.SavePreferencesIfChanged()
	})

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: saving preferences before restart...")
				win.SavePreferences()
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
