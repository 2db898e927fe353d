// editor - 3D grid scene editor
//
// Loads glTF models onto a ground grid and moves them around from a side
// menu.
//
// Controls:
//
//	Click        - Select the model under the pointer (menu clicks excepted)
//	Left drag    - Orbit the camera
//	Right drag   - Pan the camera
//	Scroll       - Zoom in/out
//	Side menu    - Load models, or transform/delete the selection
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"fortio.org/cli"
	"fortio.org/log"

	"grid-editor/config"
	"grid-editor/core"
	"grid-editor/editor"
	"grid-editor/renderer"
)

var (
	configPath = flag.String("config", "", "Path to a TOML config file (defaults are used for anything it leaves out)")
	assetRoot  = flag.String("assets", "", "Directory models and the logo are loaded from (overrides asset_root)")
)

func main() {
	cli.MinArgs = 0
	cli.MaxArgs = 0
	cli.Main()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return log.FErrf("load config: %v", err)
	}
	if *assetRoot != "" {
		cfg.AssetRoot = *assetRoot
	}
	if cfg.LogLevel != "" && !flagSet("loglevel") {
		if err := log.SetLogLevelStr(cfg.LogLevel); err != nil {
			log.Warnf("Ignoring log_level %q: %v", cfg.LogLevel, err)
		}
	}

	ed, err := editor.New(cfg)
	if err != nil {
		return log.FErrf("create editor: %v", err)
	}

	window, err := core.NewWindow(core.WindowConfig{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return log.FErrf("create window: %v", err)
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window)
	if err != nil {
		return log.FErrf("create render engine: %v", err)
	}
	defer engine.Destroy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ed.Mount(ctx, window, window.Width, window.Height); err != nil {
		return log.FErrf("mount editor: %v", err)
	}
	defer ed.Close()

	log.Infof("Editor running, assets from %s", cfg.AssetRoot)
	for !window.ShouldClose() {
		window.PollEvents()
		if ctx.Err() != nil {
			log.Infof("Interrupted, closing window")
			window.SetShouldClose(true)
			continue
		}
		ed.Update()

		engine.SyncFramebuffer()
		if err := engine.Render(ed.Scene); err != nil {
			return log.FErrf("render: %v", err)
		}
		img, version := ed.Menu.Image()
		engine.DrawOverlay(img, version, img.Bounds())
		engine.Present()

		window.SetTitle(cfg.Window.Title + " - " + ed.Status())
	}
	objects, vertices, triangles := engine.DrawStats()
	log.Infof("Exiting; last frame drew %d objects, %d vertices, %d triangles", objects, vertices, triangles)
	return 0
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
