package main

import (
	"embed"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	app := NewApp()

	appMenu := menu.NewMenu()

	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("Open Story", keys.CmdOrCtrl("o"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:open-story")
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Close Story", keys.CmdOrCtrl("w"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:close-story")
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Export Story", keys.CmdOrCtrl("e"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:export-story")
	})
	fileMenu.AddText("Export Command Lines", keys.CmdOrCtrl("l"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:export-cmdlines")
	})
	fileMenu.AddText("Export Scripts", keys.CmdOrCtrl("p"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:export-scripts")
	})
	fileMenu.AddText("Save Capture", keys.CmdOrCtrl("s"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:save-capture")
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(cd *menu.CallbackData) {
		runtime.Quit(app.ctx)
	})

	editMenu := appMenu.AddSubmenu("Edit")
	editMenu.AddText("Cut", keys.CmdOrCtrl("x"), nil)
	editMenu.AddText("Copy", keys.CmdOrCtrl("c"), nil)
	editMenu.AddText("Paste", keys.CmdOrCtrl("v"), nil)
	editMenu.AddText("Select All", keys.CmdOrCtrl("a"), nil)

	viewMenu := appMenu.AddSubmenu("View")
	viewMenu.AddText("Toggle Anonymize", keys.CmdOrCtrl("r"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:toggle-anonymize")
	})
	viewMenu.AddText("Exit Zoom", keys.CmdOrCtrl("u"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:exit-zoom")
	})
	viewMenu.AddText("Theme...", keys.CmdOrCtrl("t"), func(cd *menu.CallbackData) {
		runtime.EventsEmit(app.ctx, "menu:theme")
	})

	err := wails.Run(&options.App{
		Title:  "storytrace v" + Version + " - Attack Story Viewer",
		Width:  1400,
		Height: 900,
		Menu:   appMenu,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.startup,
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
