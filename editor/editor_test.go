package editor

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-editor/assets"
	"grid-editor/config"
	"grid-editor/core"
	"grid-editor/internal/fixtures"
	"grid-editor/math"
	"grid-editor/scene"
)

const (
	centerX, centerY = 640, 360
)

var modelNameRe = regexp.MustCompile(`^model_[0-9a-z]{9}$`)

type fakeSurface struct {
	resize  core.ResizeCallback
	pointer core.PointerCallback
	cursor  core.CursorCallback
	scroll  core.ScrollCallback

	registrations int
}

func (f *fakeSurface) SetResizeCallback(cb core.ResizeCallback) {
	f.resize = cb
	f.count(cb != nil)
}

func (f *fakeSurface) SetPointerCallback(cb core.PointerCallback) {
	f.pointer = cb
	f.count(cb != nil)
}

func (f *fakeSurface) SetCursorCallback(cb core.CursorCallback) {
	f.cursor = cb
	f.count(cb != nil)
}

func (f *fakeSurface) SetScrollCallback(cb core.ScrollCallback) {
	f.scroll = cb
	f.count(cb != nil)
}

func (f *fakeSurface) count(set bool) {
	if set {
		f.registrations++
	}
}

func (f *fakeSurface) click(button int, x, y float64) {
	f.pointer(button, true, x, y)
	f.pointer(button, false, x, y)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.AssetRoot = t.TempDir()
	cfg.Logo.Path = ""
	return cfg
}

func mountEditor(t *testing.T, cfg config.Config) (*Editor, *fakeSurface) {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	surface := &fakeSurface{}
	require.NoError(t, e.Mount(context.Background(), surface, cfg.Window.Width, cfg.Window.Height))
	t.Cleanup(e.Close)
	return e, surface
}

// addModel inserts a model group the way a finished load would, with a
// 100-unit cube once scaled.
func addModel(e *Editor, pos math.Vec3) *scene.Node {
	cube := scene.NewNode("Cube")
	cube.Mesh = scene.CreateCube(2)
	group := assets.BuildModelGroup(&scene.GLTFResult{Roots: []*scene.Node{cube}}, pos, assets.ModelOptions{
		Scale:       e.Config.Loader.ModelScale,
		HelperColor: core.ColorYellow,
	})
	group.Name = assets.NewModelName()
	e.Scene.AddNode(group)
	return group
}

func rowPoint(e *Editor, i int) (float64, float64) {
	r := e.Menu.panel.RowRect(i)
	c := r.Min.Add(r.Max).Div(2)
	return float64(c.X), float64(c.Y)
}

func menuLabels(e *Editor) []string {
	return labels(e.Menu.Items())
}

func TestNewBuildsScene(t *testing.T) {
	e, err := New(config.Default())
	require.NoError(t, err)

	grids := e.Scene.TopLevel(scene.KindGrid)
	require.Len(t, grids, 1)
	assert.Len(t, e.Scene.Root.Children, 1)
	assert.Equal(t, core.ColorHex(0xf0f0f0), e.Scene.Background)
	assert.Equal(t, math.NewVec3(500, 800, 1300), e.Camera.Position)
	assert.InDelta(t, 0.7854, e.Camera.FOV, 1e-4)
	assert.InDelta(t, 1.5708, e.Controls.MaxPolarAngle, 1e-4)
	assert.Equal(t, float32(100), e.Controls.MinDistance)
	assert.Equal(t, float32(5000), e.Controls.MaxDistance)

	require.NotNil(t, e.Scene.DirectionalLight())
	assert.InDelta(t, 1, e.Scene.DirectionalLight().Direction.Length(), 1e-5)
	assert.InDelta(t, 3*float32(0x60)/255, e.Scene.AmbientColor().R, 1e-4)

	assert.Equal(t, []string{"Totem", "Lobby Counter", "Placa Imantada", "Tensa Barrier"}, menuLabels(e))
	assert.Equal(t, "Ready", e.Status())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Menu.Width = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrMenu)
}

func TestMountRegistersCallbacksOnce(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	assert.Equal(t, 4, surface.registrations)
	assert.NotNil(t, surface.resize)
	assert.NotNil(t, surface.pointer)
	assert.NotNil(t, surface.cursor)
	assert.NotNil(t, surface.scroll)

	assert.ErrorIs(t, e.Mount(context.Background(), surface, 800, 600), ErrAlreadyMounted)
	assert.Equal(t, 4, surface.registrations)

	e.Close()
	assert.Nil(t, surface.resize)
	assert.Nil(t, surface.pointer)
	assert.Nil(t, surface.cursor)
	assert.Nil(t, surface.scroll)

	e.Close()
	assert.ErrorIs(t, e.Mount(context.Background(), surface, 800, 600), ErrClosed)
	assert.Equal(t, 4, surface.registrations)
}

func TestPickEmptySpace(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	// The ray through the centre lands on the grid, which is never picked.
	assert.Nil(t, e.Pick(centerX, centerY))
	surface.click(core.MouseLeft, centerX, centerY)
	assert.False(t, e.Selection.HasSelection())
}

func TestPickResolvesToModelGroup(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)

	surface.click(core.MouseLeft, centerX, centerY)
	assert.Same(t, group, e.Selection.Node())
	assert.Equal(t, scene.KindModel, e.Selection.Node().Kind)
	assert.Equal(t, "Selected: "+group.Name, e.Status())
}

func TestPickIsIdempotent(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)

	assert.Same(t, group, e.Pick(centerX, centerY))
	assert.Same(t, group, e.Pick(centerX, centerY))
	assert.Same(t, group, e.Selection.Node())
}

func TestPickMissKeepsSelection(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)
	e.Pick(centerX, centerY)

	assert.Nil(t, e.Pick(1270, 10))
	assert.Same(t, group, e.Selection.Node())
}

func TestPickNearestOfTwo(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	back := addModel(e, math.Vec3Zero)
	// Halfway between the camera and the first model.
	front := addModel(e, math.NewVec3(250, 400, 650))

	assert.Same(t, front, e.Pick(centerX, centerY))
	e.Scene.RemoveNode(front)
	assert.Same(t, back, e.Pick(centerX, centerY))
}

func TestAnyButtonPicks(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)
	surface.click(core.MouseMiddle, centerX, centerY)
	assert.Same(t, group, e.Selection.Node())
}

func TestRotateCommandsAreInverse(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)
	e.Pick(centerX, centerY)

	e.Dispatch(RotateLeft)
	assert.InDelta(t, RotateStep, group.Transform.Yaw(), 1e-5)
	e.Dispatch(RotateRight)
	assert.InDelta(t, 0, group.Transform.Yaw(), 1e-5)

	for i := 0; i < 8; i++ {
		e.Dispatch(RotateLeft)
	}
	assert.InDelta(t, 0, group.Transform.Yaw(), 1e-4)
	assert.InDelta(t, 1, stdAbs(group.Transform.Rotation.W), 1e-4)
}

func TestMoveCommandsAreInverse(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)
	e.Pick(centerX, centerY)
	require.Same(t, group, e.Selection.Node())

	tests := []struct {
		cmd, undo Command
		moved     math.Vec3
	}{
		{MoveUp, MoveDown, math.NewVec3(0, 0, -10)},
		{MoveDown, MoveUp, math.NewVec3(0, 0, 10)},
		{MoveLeft, MoveRight, math.NewVec3(-10, 0, 0)},
		{MoveRight, MoveLeft, math.NewVec3(10, 0, 0)},
	}
	for _, tt := range tests {
		e.Dispatch(tt.cmd)
		assert.Equal(t, tt.moved, group.Transform.Position, tt.cmd.Description())
		e.Dispatch(tt.undo)
		assert.Equal(t, math.Vec3Zero, group.Transform.Position, tt.undo.Description())
	}
}

func TestCommandsWithoutSelectionDoNothing(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)

	for _, cmd := range SelectionCommands() {
		e.Dispatch(cmd)
	}
	assert.Equal(t, math.Vec3Zero, group.Transform.Position)
	assert.InDelta(t, 0, group.Transform.Yaw(), 1e-6)
	assert.Len(t, e.Scene.Root.Children, 2)
	assert.False(t, e.Selection.HasSelection())
}

func TestDeleteKeepsDanglingSelection(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	group := addModel(e, math.Vec3Zero)
	e.Pick(centerX, centerY)

	e.Dispatch(DeleteCommand{})
	assert.Empty(t, e.Scene.TopLevel(scene.KindModel))
	assert.Nil(t, group.Parent)
	assert.Same(t, group, e.Selection.Node())
	assert.Equal(t, "Selected: "+group.Name+" (removed)", e.Status())
	assert.Equal(t, "Clear Selection", menuLabels(e)[0])

	// The detached node still takes transforms, and deleting again is a no-op.
	e.Dispatch(MoveRight)
	assert.Equal(t, math.NewVec3(10, 0, 0), group.Transform.Position)
	e.Dispatch(DeleteCommand{})
	assert.Len(t, e.Scene.Root.Children, 1)

	assert.Nil(t, e.Pick(centerX, centerY))
	assert.Same(t, group, e.Selection.Node())
}

func TestDeleteNeverRemovesGrid(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	grid := e.Scene.TopLevel(scene.KindGrid)[0]
	e.Selection.Select(grid)
	e.Dispatch(DeleteCommand{})
	assert.Same(t, e.Scene.Root, grid.Parent)
}

func TestMenuFollowsSelection(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	addModel(e, math.Vec3Zero)

	loads := menuLabels(e)
	assert.Equal(t, "Totem", loads[0])

	surface.click(core.MouseLeft, centerX, centerY)
	assert.Equal(t, []string{
		"Clear Selection", "Rotate Left", "Rotate Right",
		"Move Up", "Move Down", "Move Left", "Move Right", "Delete",
	}, menuLabels(e))

	x, y := rowPoint(e, 0)
	surface.click(core.MouseLeft, x, y)
	assert.False(t, e.Selection.HasSelection())
	assert.Equal(t, loads, menuLabels(e))
}

func TestMenuConsumesClicks(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))

	// Padding below the last row is still panel. Put a model right behind it.
	bounds := e.Menu.panel.Bounds(len(e.Menu.Items()))
	x, y := float64(bounds.Max.X-6), float64(bounds.Max.Y-2)
	e.Raycaster.SetFromCamera(ScreenToNDC(x, y, 1280, 720), e.Camera)
	group := addModel(e, e.Raycaster.Ray.At(1000))
	require.NotEmpty(t, e.Raycaster.IntersectObjects([]*scene.Node{group}, true))

	surface.pointer(core.MouseLeft, true, x, y)
	assert.False(t, e.Input.Dragging(), "a press on the menu never starts a drag")
	surface.pointer(core.MouseLeft, false, x, y)
	assert.False(t, e.Selection.HasSelection())

	// Just right of the panel the same model is picked.
	assert.Same(t, group, e.Pick(float64(bounds.Max.X+6), y))
}

func TestMenuHoverAndImage(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))

	img, v1 := e.Menu.Image()
	require.NotNil(t, img)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 4*40+8, img.Bounds().Dy())

	_, again := e.Menu.Image()
	assert.Equal(t, v1, again, "unchanged menu keeps its version")

	x, y := rowPoint(e, 1)
	surface.cursor(x, y)
	assert.Equal(t, 1, e.Menu.hover)
	_, v2 := e.Menu.Image()
	assert.Greater(t, v2, v1)

	surface.cursor(centerX, centerY)
	assert.Equal(t, -1, e.Menu.hover)
}

func TestPointerUpDoesNotPick(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	addModel(e, math.Vec3Zero)
	surface.pointer(core.MouseLeft, false, centerX, centerY)
	assert.False(t, e.Selection.HasSelection())
}

func TestDragOrbitsCamera(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	start := e.Camera.Position

	surface.pointer(core.MouseLeft, true, centerX, centerY)
	assert.True(t, e.Input.Dragging())
	surface.cursor(centerX+100, centerY)
	surface.pointer(core.MouseLeft, false, centerX+100, centerY)
	assert.False(t, e.Input.Dragging())

	for i := 0; i < 30; i++ {
		e.Update()
	}
	assert.NotEqual(t, start, e.Camera.Position)
	assert.InDelta(t, start.Length(), e.Camera.Position.Length(), 1e-1)
	assert.InDelta(t, start.Y, e.Camera.Position.Y, 1e-1, "a horizontal drag keeps the elevation")
}

func TestScrollZooms(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	start := e.Camera.Position.Length()
	surface.scroll(0, 2)
	e.Update()
	assert.Less(t, e.Camera.Position.Length(), start)
}

func TestResizeUpdatesAspect(t *testing.T) {
	e, surface := mountEditor(t, testConfig(t))
	surface.resize(800, 800)
	assert.InDelta(t, 1, e.Camera.AspectRatio, 1e-6)
	surface.resize(0, 0)
	assert.InDelta(t, 1, e.Camera.AspectRatio, 1e-6)

	addModel(e, math.Vec3Zero)
	assert.NotNil(t, e.Pick(400, 400))
}

func TestLoadTwiceGivesDistinctModels(t *testing.T) {
	cfg := testConfig(t)
	fixtures.WriteCubeGLB(t, cfg.AssetRoot, "TESTPI_02.gltf")
	e, surface := mountEditor(t, cfg)

	x, y := rowPoint(e, 0)
	surface.click(core.MouseLeft, x, y)
	surface.click(core.MouseLeft, x, y)
	assert.Empty(t, e.Scene.TopLevel(scene.KindModel), "loads land on a later frame")

	e.WaitForLoads()
	models := e.Scene.TopLevel(scene.KindModel)
	require.Len(t, models, 2)
	assert.NotEqual(t, models[0].ID, models[1].ID)
	assert.NotEqual(t, models[0].Name, models[1].Name)
	for _, m := range models {
		assert.Regexp(t, modelNameRe, m.Name)
		assert.Equal(t, math.Vec3Zero, m.Transform.Position)
	}
}

func TestTotemSession(t *testing.T) {
	cfg := testConfig(t)
	fixtures.WriteCubeGLB(t, cfg.AssetRoot, "TESTPI_02.gltf")
	e, surface := mountEditor(t, cfg)

	x, y := rowPoint(e, 0) // Totem
	surface.click(core.MouseLeft, x, y)
	e.WaitForLoads()
	models := e.Scene.TopLevel(scene.KindModel)
	require.Len(t, models, 1)
	totem := models[0]

	surface.click(core.MouseLeft, centerX, centerY)
	require.Same(t, totem, e.Selection.Node())

	x, y = rowPoint(e, 6) // Move Right
	surface.click(core.MouseLeft, x, y)
	assert.Equal(t, math.NewVec3(10, 0, 0), totem.Transform.Position)

	x, y = rowPoint(e, 1) // Rotate Left
	surface.click(core.MouseLeft, x, y)
	assert.InDelta(t, RotateStep, totem.Transform.Yaw(), 1e-5)

	x, y = rowPoint(e, 7) // Delete
	surface.click(core.MouseLeft, x, y)
	assert.Empty(t, e.Scene.TopLevel(scene.KindModel))
	assert.Same(t, totem, e.Selection.Node())

	surface.click(core.MouseLeft, centerX, centerY)
	assert.Same(t, totem, e.Selection.Node())

	x, y = rowPoint(e, 0) // Clear Selection
	surface.click(core.MouseLeft, x, y)
	assert.False(t, e.Selection.HasSelection())
	assert.Equal(t, "Totem", menuLabels(e)[0])
}

func TestFailedLoadLeavesSceneAlone(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	e.Dispatch(LoadModelCommand{Entry: assets.Entry{Label: "Missing", Path: "/missing.gltf"}})
	e.WaitForLoads()
	assert.Len(t, e.Scene.Root.Children, 1)
}

func TestPickOutsideViewport(t *testing.T) {
	e, _ := mountEditor(t, testConfig(t))
	model := addModel(e, math.Vec3Zero)
	require.Same(t, model, e.Pick(640, 360))
	e.Selection.Clear()

	assert.Nil(t, e.Pick(-20, 360))
	assert.Nil(t, e.Pick(640, 900))
	assert.False(t, e.Selection.HasSelection())
}

func TestMalformedModelNeverReachesPicking(t *testing.T) {
	cfg := testConfig(t)
	fixtures.WriteGLB(t, cfg.AssetRoot, "broken.glb", fixtures.CubePositions, []uint16{0, 1, 99})
	e, _ := mountEditor(t, cfg)

	e.Dispatch(LoadModelCommand{Entry: assets.Entry{Label: "Broken", Path: "/broken.glb"}})
	e.WaitForLoads()
	assert.Len(t, e.Scene.Root.Children, 1)
	assert.Empty(t, e.Scene.TopLevel(scene.KindModel))

	var picked *scene.Node
	require.NotPanics(t, func() { picked = e.Pick(640, 360) })
	assert.Nil(t, picked)
	assert.False(t, e.Selection.HasSelection())
}

func TestLogoIsLoadedAndSelectable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logo.Path = "/LATAMLOGO.svg"
	fixtures.WriteFile(t, cfg.AssetRoot, "LATAMLOGO.svg", fixtures.LogoSVG)
	e, _ := mountEditor(t, cfg)
	e.WaitForLoads()

	logos := e.Scene.TopLevel(scene.KindLogo)
	require.Len(t, logos, 1)
	logo := logos[0]
	assert.Equal(t, math.NewVec3(0, 100, -500), logo.Transform.Position)
	require.NotNil(t, logo.Mesh.Material.AlbedoTexture)

	clip := logo.Transform.Position.ToVec4(1).MulMat(e.Camera.GetViewProjectionMatrix())
	ndc := clip.PerspectiveDivide()
	x := float64(ndc.X+1) / 2 * 1280
	y := float64(1-ndc.Y) / 2 * 720
	assert.Same(t, logo, e.Pick(x, y))
}

func TestCloseDropsPendingLoads(t *testing.T) {
	cfg := testConfig(t)
	fixtures.WriteCubeGLB(t, cfg.AssetRoot, "TESTPI_02.gltf")
	e, _ := mountEditor(t, cfg)

	e.Dispatch(LoadModelCommand{Entry: assets.Catalog(cfg.Models)[0]})
	e.Close()
	e.Update()
	e.WaitForLoads()
	assert.Len(t, e.Scene.Root.Children, 1)

	e.Dispatch(LoadModelCommand{Entry: assets.Catalog(cfg.Models)[0]})
	assert.Len(t, e.Scene.Root.Children, 1)
}

func stdAbs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
