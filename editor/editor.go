package editor

import (
	"context"
	"errors"
	"fmt"
	stdmath "math"

	"fortio.org/log"

	"grid-editor/assets"
	"grid-editor/config"
	"grid-editor/core"
	"grid-editor/math"
	"grid-editor/overlay"
	"grid-editor/scene"
)

var (
	ErrAlreadyMounted = errors.New("editor already mounted")
	ErrClosed         = errors.New("editor closed")
)

// Surface is where the editor listens for window events. core.Window
// implements it; passing nil to a setter removes the callback.
type Surface interface {
	SetResizeCallback(cb core.ResizeCallback)
	SetPointerCallback(cb core.PointerCallback)
	SetCursorCallback(cb core.CursorCallback)
	SetScrollCallback(cb core.ScrollCallback)
}

// Editor owns everything the session needs: scene, camera rig, picking,
// selection, menu and the asset loader. All methods must be called from the
// goroutine that owns the window.
type Editor struct {
	Config    config.Config
	Scene     *scene.Scene
	Camera    *scene.Camera
	Controls  *scene.OrbitControls
	Raycaster *Raycaster
	Selection *Selection
	Menu      *Menu
	Input     *InputManager

	loader  *assets.Loader
	surface Surface
	cmdCtx  CommandContext

	width, height float64 // window coordinates
	mounted       bool
	closed        bool
}

// New builds the scene: camera, lights, background and grid. Nothing is
// loaded and no callbacks are registered until Mount.
func New(cfg config.Config) (*Editor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := scene.NewScene()
	s.Background = core.ColorHex(cfg.Background)

	cc := cfg.Camera
	aspect := float32(cfg.Window.Width) / float32(cfg.Window.Height)
	camera := scene.NewCamera(degToRad(cc.FOV), aspect, cc.Near, cc.Far)
	camera.SetPosition(vec3(cc.Position))
	camera.LookAt(vec3(cc.Target))
	s.SetCamera(camera)

	controls := scene.NewOrbitControls(camera)
	controls.DampingFactor = cfg.Controls.Damping
	controls.MinDistance = cfg.Controls.MinDistance
	controls.MaxDistance = cfg.Controls.MaxDistance
	controls.MaxPolarAngle = degToRad(cfg.Controls.MaxPolarAngle)

	s.AddNode(scene.CreateGridNode(cfg.Grid.Size, cfg.Grid.Divisions))
	s.AddLight(&scene.Light{
		Type:      scene.LightTypeAmbient,
		Color:     core.ColorHex(cfg.Ambient.Color),
		Intensity: cfg.Ambient.Intensity,
	})
	s.AddLight(&scene.Light{
		Type:      scene.LightTypeDirectional,
		Direction: vec3(cfg.Directional.Direction).Normalize(),
		Color:     core.ColorHex(cfg.Directional.Color),
		Intensity: cfg.Directional.Intensity,
	})

	sel := NewSelection()
	e := &Editor{
		Config:    cfg,
		Scene:     s,
		Camera:    camera,
		Controls:  controls,
		Raycaster: NewRaycaster(),
		Selection: sel,
		Menu:      NewMenu(overlay.NewPanel(cfg.Menu.Width, cfg.Menu.RowHeight), assets.Catalog(cfg.Models)),
		Input:     NewInputManager(controls),
		width:     float64(cfg.Window.Width),
		height:    float64(cfg.Window.Height),
	}
	e.cmdCtx = CommandContext{Scene: s, Selection: sel}
	return e, nil
}

// Mount starts the loader, registers the window callbacks and requests the
// logo. width and height are the window size in window coordinates.
func (e *Editor) Mount(ctx context.Context, surface Surface, width, height int) error {
	switch {
	case e.closed:
		return ErrClosed
	case e.mounted:
		return ErrAlreadyMounted
	}
	e.mounted = true
	e.Resize(width, height)

	cfg := e.Config
	e.loader = assets.NewLoader(ctx, assets.LoaderOptions{
		Root:    cfg.AssetRoot,
		Workers: cfg.Loader.Workers,
		Model: assets.ModelOptions{
			Scale:       cfg.Loader.ModelScale,
			HelperColor: core.ColorHex(cfg.Loader.HelperColor),
		},
		Logo: assets.LogoOptions{Width: cfg.Logo.Width, Height: cfg.Logo.Height},
	})
	e.cmdCtx.Loader = e.loader

	e.surface = surface
	surface.SetResizeCallback(e.Resize)
	surface.SetPointerCallback(func(button int, pressed bool, x, y float64) {
		if pressed {
			e.HandlePointerDown(button, x, y)
		} else {
			e.HandlePointerUp(button, x, y)
		}
	})
	surface.SetCursorCallback(e.HandleCursor)
	surface.SetScrollCallback(func(_, yoff float64) {
		e.Input.Scroll(yoff)
	})

	if cfg.Logo.Path != "" {
		logo := assets.Entry{Label: "logo", Path: cfg.Logo.Path, Position: vec3(cfg.Logo.Position)}
		if err := e.loader.LoadLogo(logo); err != nil {
			log.Errf("Error loading logo %s: %v", cfg.Logo.Path, err)
		}
	}
	log.Infof("Editor mounted (%dx%d, assets from %s)", width, height, cfg.AssetRoot)
	return nil
}

// Update runs once per frame: applies finished loads, then advances the
// camera damping.
func (e *Editor) Update() {
	if e.closed {
		return
	}
	if e.loader != nil {
		for _, res := range e.loader.Drain() {
			e.apply(res)
		}
	}
	e.Controls.Update()
	e.Menu.Refresh(e.Selection)
}

func (e *Editor) apply(res assets.Result) {
	if res.Err != nil {
		log.Errf("Error loading %s: %v", res.Request.Kind, res.Err)
		return
	}
	if res.Request.Kind == assets.RequestModel {
		res.Node.Name = assets.UniqueModelName(func(name string) bool {
			return e.Scene.Root.Find(name) != nil
		})
	}
	e.Scene.AddNode(res.Node)
	log.Infof("Added %s %s to the scene at %+v", res.Request.Kind, res.Node.Name, res.Node.Transform.Position)
}

// Resize tracks the window size and keeps the camera aspect in step.
func (e *Editor) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.width, e.height = float64(width), float64(height)
	e.Camera.UpdateAspectRatio(float32(width), float32(height))
}

// HandlePointerDown routes a press to the menu when it lands on the panel,
// otherwise picks and starts a camera drag.
func (e *Editor) HandlePointerDown(button int, x, y float64) {
	if cmd, inside := e.Menu.HitTest(x, y); inside {
		if cmd != nil {
			e.Dispatch(cmd)
		}
		return
	}
	e.Input.BeginDrag(button, x, y)
	e.Pick(x, y)
}

// HandlePointerUp only ends camera drags; releasing never changes the
// selection.
func (e *Editor) HandlePointerUp(button int, x, y float64) {
	e.Input.EndDrag(button)
}

func (e *Editor) HandleCursor(x, y float64) {
	e.Input.CursorMoved(x, y, e.height)
	e.Menu.SetHover(x, y)
}

// Pick casts a ray through window point (x, y) and selects the top-level
// node owning the nearest hit that is not the grid. It returns the picked
// node, or nil when nothing was hit; a miss leaves the selection alone.
func (e *Editor) Pick(x, y float64) *scene.Node {
	ndc := ScreenToNDC(x, y, e.width, e.height)
	if !ndc.InNDC() {
		return nil
	}
	e.Raycaster.SetFromCamera(ndc, e.Camera)
	root := e.Scene.Root
	for _, hit := range e.Raycaster.IntersectObjects(root.Children, true) {
		if hit.Node.Kind == scene.KindGrid {
			continue
		}
		target := ResolveTopLevel(root, hit.Node)
		if target == nil {
			continue
		}
		if e.Selection.Select(target) {
			log.Infof("Selected %s", target.Name)
			e.Menu.Refresh(e.Selection)
		}
		return target
	}
	log.LogVf("No model under (%.0f, %.0f)", x, y)
	return nil
}

// Dispatch runs a command against the current scene and selection.
func (e *Editor) Dispatch(cmd Command) {
	if e.closed {
		return
	}
	log.LogVf("Command: %s", cmd.Description())
	cmd.Execute(&e.cmdCtx)
	e.Menu.Refresh(e.Selection)
}

// Status is a one-line description for the window title.
func (e *Editor) Status() string {
	if n := e.Selection.Node(); n != nil {
		if !n.IsDescendantOf(e.Scene.Root) {
			return fmt.Sprintf("Selected: %s (removed)", n.Name)
		}
		return "Selected: " + n.Name
	}
	return "Ready"
}

// WaitForLoads blocks until every requested load has finished and applies
// the results, for headless sessions that have no frame loop.
func (e *Editor) WaitForLoads() {
	if e.loader == nil || e.closed {
		return
	}
	for _, res := range e.loader.Wait() {
		e.apply(res)
	}
	e.Update()
}

// Close unregisters the window callbacks and stops the loader; loads still
// in flight are dropped without touching the scene. Safe to call twice.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.surface != nil {
		e.surface.SetResizeCallback(nil)
		e.surface.SetPointerCallback(nil)
		e.surface.SetCursorCallback(nil)
		e.surface.SetScrollCallback(nil)
		e.surface = nil
	}
	if e.loader != nil {
		e.loader.Close()
	}
	log.Infof("Editor closed")
}

func vec3(v config.Vec3) math.Vec3 {
	return math.NewVec3(v[0], v[1], v[2])
}

func degToRad(deg float32) float32 {
	return deg * stdmath.Pi / 180
}
