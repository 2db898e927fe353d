package scene

import (
	stdmath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-editor/core"
	"grid-editor/internal/fixtures"
	"grid-editor/math"
)

const eps = 1e-3

func assertVec3(t *testing.T, expected, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, got.X, eps, "x")
	assert.InDelta(t, expected.Y, got.Y, eps, "y")
	assert.InDelta(t, expected.Z, got.Z, eps, "z")
}

func TestNodeHierarchy(t *testing.T) {
	root := NewNode("root")
	group := NewNode("group")
	child := NewNode("child")
	root.AddChild(group)
	group.AddChild(child)

	assert.NotEqual(t, group.ID, child.ID)
	assert.True(t, child.IsDescendantOf(root))
	assert.True(t, child.IsDescendantOf(group))
	assert.False(t, root.IsDescendantOf(child))
	assert.Same(t, child, root.Find("child"))

	// re-parenting detaches from the old parent
	root.AddChild(child)
	assert.Empty(t, group.Children)
	assert.Same(t, root, child.Parent)

	assert.True(t, root.RemoveChild(child))
	assert.False(t, root.RemoveChild(child))
	assert.Nil(t, child.Parent)
	assert.False(t, child.IsDescendantOf(root))
}

func TestWorldMatrixAppliesParentAfterChild(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(math.NewVec3(100, 0, 0))
	parent.SetScale(math.Splat(50))

	child := NewNode("child")
	child.SetPosition(math.NewVec3(1, 0, 0))
	parent.AddChild(child)

	// child origin: (1,0,0) scaled by 50 then moved by 100
	assertVec3(t, math.NewVec3(150, 0, 0), child.GetWorldMatrix().MulVec3(math.Vec3Zero))

	parent.Rotate(math.Vec3Up, stdmath.Pi/2)
	// +X rotates to -Z under a +90° yaw
	assertVec3(t, math.NewVec3(100, 0, -50), child.GetWorldMatrix().MulVec3(math.Vec3Zero))

	parent.Translate(math.NewVec3(0, 0, 10))
	assertVec3(t, math.NewVec3(100, 0, -40), child.GetWorldMatrix().MulVec3(math.Vec3Zero))
}

func TestRotateAccumulatesYaw(t *testing.T) {
	n := NewNode("n")
	n.Rotate(math.Vec3Up, stdmath.Pi/4)
	n.Rotate(math.Vec3Up, stdmath.Pi/4)
	assert.InDelta(t, stdmath.Pi/2, n.Transform.Yaw(), eps)
	n.Rotate(math.Vec3Up, -stdmath.Pi/4)
	assert.InDelta(t, stdmath.Pi/4, n.Transform.Yaw(), eps)
}

func TestAABB(t *testing.T) {
	box := AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}
	moved := box.Transform(math.Mat4Scale(math.Splat(2)).Mul(math.Mat4Translation(math.NewVec3(10, 0, 0))))
	assertVec3(t, math.NewVec3(8, -2, -2), moved.Min)
	assertVec3(t, math.NewVec3(12, 2, 2), moved.Max)
	assertVec3(t, math.NewVec3(10, 0, 0), moved.Center())

	assert.True(t, EmptyAABB().IsEmpty())
	assert.Equal(t, box, EmptyAABB().Union(box))
	assert.Equal(t, box, box.Union(EmptyAABB()))
}

func TestBoundsRelativeTo(t *testing.T) {
	group := NewNode("group")
	group.SetPosition(math.NewVec3(300, 0, 0))

	container := NewNode("container")
	container.SetScale(math.Splat(50))
	group.AddChild(container)

	cube := NewNode("cube")
	cube.Mesh = CreateCube(2)
	cube.SetPosition(math.NewVec3(0, 1, 0))
	container.AddChild(cube)

	helper := NewNode("helper")
	helper.Kind = KindHelper
	helper.Mesh = CreateCube(1000)
	group.AddChild(helper)

	// the group's own translation is excluded, helpers are ignored
	b := BoundsRelativeTo(group, group)
	assertVec3(t, math.NewVec3(-50, 0, -50), b.Min)
	assertVec3(t, math.NewVec3(50, 100, 50), b.Max)
}

func TestCreateGrid(t *testing.T) {
	m := CreateGrid(1000, 20)
	require.Equal(t, DrawLines, m.DrawMode)
	// 21 lines per axis, two vertices each
	assert.Len(t, m.Vertices, 2*2*21)
	assert.Len(t, m.Indices, 2*2*21)
	assertVec3(t, math.NewVec3(-500, 0, -500), m.LocalAABB.Min)
	assertVec3(t, math.NewVec3(500, 0, 500), m.LocalAABB.Max)
	assert.True(t, m.Material.Unlit)

	centre := 0
	for _, v := range m.Vertices {
		if v.Color == gridCenterColor {
			centre++
		}
	}
	assert.Equal(t, 4, centre)

	n := CreateGridNode(1000, 20)
	assert.Equal(t, KindGrid, n.Kind)
}

func TestCreateBoxHelper(t *testing.T) {
	box := AABB{Min: math.NewVec3(-1, 0, -2), Max: math.NewVec3(1, 3, 2)}
	m := CreateBoxHelper(box, core.ColorYellow)
	assert.Equal(t, DrawLines, m.DrawMode)
	assert.Len(t, m.Indices, 24)
	assert.Equal(t, box, m.LocalAABB)
	assert.Equal(t, core.ColorYellow, m.Material.Albedo)
}

func TestCreatePlaneAndCube(t *testing.T) {
	plane := CreatePlane(200, 100)
	assertVec3(t, math.NewVec3(-100, -50, 0), plane.LocalAABB.Min)
	assertVec3(t, math.NewVec3(100, 50, 0), plane.LocalAABB.Max)

	cube := CreateCube(2)
	assert.Len(t, cube.Vertices, 24)
	assert.Len(t, cube.Indices, 36)
	assertVec3(t, math.Splat(-1), cube.LocalAABB.Min)
	assertVec3(t, math.Splat(1), cube.LocalAABB.Max)

	// every triangle winds counter-clockwise around its face normal
	for i := 0; i < len(cube.Indices); i += 3 {
		a := cube.Vertices[cube.Indices[i]]
		b := cube.Vertices[cube.Indices[i+1]]
		c := cube.Vertices[cube.Indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Positive(t, n.Dot(a.Normal), "triangle %d", i/3)
	}
}

func TestSceneLights(t *testing.T) {
	s := NewScene()
	s.AddLight(&Light{Type: LightTypeAmbient, Color: core.ColorHex(0x606060), Intensity: 3})
	s.AddLight(&Light{Type: LightTypeDirectional, Direction: math.NewVec3(1, 0.75, 0.5).Normalize(), Color: core.ColorWhite, Intensity: 3})

	amb := s.AmbientColor()
	assert.InDelta(t, float32(0x60)/255*3, amb.R, eps)
	require.NotNil(t, s.DirectionalLight())
	assert.InDelta(t, 3, s.DirectionalLight().Radiance().G, eps)
}

func TestVisibleNodesSkipHiddenSubtrees(t *testing.T) {
	s := NewScene()
	group := NewNode("group")
	shown := NewNode("shown")
	shown.Mesh = CreateCube(1)
	hidden := NewNode("hidden")
	hidden.Mesh = CreateCube(1)
	hidden.Visible = false
	group.AddChild(shown)
	group.AddChild(hidden)
	s.AddNode(group)

	assert.Equal(t, []*Node{shown}, s.GetVisibleNodes())

	group.Visible = false
	assert.Empty(t, s.GetVisibleNodes())
	assert.Empty(t, s.TopLevel(KindModel))
	group.Kind = KindModel
	assert.Equal(t, []*Node{group}, s.TopLevel(KindModel))
}

func newTestOrbit() (*Camera, *OrbitControls) {
	cam := NewCamera(stdmath.Pi/4, 16.0/9.0, 1, 10000)
	cam.SetPosition(math.NewVec3(500, 800, 1300))
	cam.LookAt(math.Vec3Zero)
	o := NewOrbitControls(cam)
	o.DampingFactor = 0.25
	o.MinDistance = 100
	o.MaxDistance = 5000
	o.MaxPolarAngle = stdmath.Pi / 2
	return cam, o
}

func TestOrbitControlsIdleKeepsCamera(t *testing.T) {
	cam, o := newTestOrbit()
	start := cam.Position
	assert.False(t, o.Update())
	assertVec3(t, start, cam.Position)
}

func TestOrbitControlsClampsPolarAngle(t *testing.T) {
	cam, o := newTestOrbit()
	// a huge upward drag tries to swing the camera under the grid
	o.Rotate(0, -10000, 720)
	for i := 0; i < 100; i++ {
		o.Update()
	}
	assert.GreaterOrEqual(t, cam.Position.Y, float32(-eps))
}

func TestOrbitControlsDistanceLimits(t *testing.T) {
	cam, o := newTestOrbit()
	for i := 0; i < 200; i++ {
		o.Dolly(1)
		o.Update()
	}
	assert.InDelta(t, 100, cam.Position.Distance(cam.Target), 0.5)

	for i := 0; i < 200; i++ {
		o.Dolly(-1)
		o.Update()
	}
	assert.InDelta(t, 5000, cam.Position.Distance(cam.Target), 0.5)
}

func TestOrbitControlsDampingSpreadsRotation(t *testing.T) {
	cam, o := newTestOrbit()
	radius := cam.Position.Distance(cam.Target)
	o.Rotate(100, 0, 720)
	require.True(t, o.Update())
	first := cam.Position

	// the remaining delta keeps moving the camera on later frames
	require.True(t, o.Update())
	assert.NotEqual(t, first, cam.Position)
	assert.InDelta(t, radius, cam.Position.Distance(cam.Target), 0.5)
}

func TestOrbitControlsPanMovesTarget(t *testing.T) {
	cam, o := newTestOrbit()
	o.DampingFactor = 0
	o.Pan(50, 0, 720)
	o.Update()
	// dragging right drags the scene right, so the target moves left
	assert.Negative(t, cam.Target.Dot(cam.GetRight()))
}

func TestRasterizeSVG(t *testing.T) {
	tex, err := RasterizeSVG("logo", strings.NewReader(fixtures.LogoSVG), 64)
	require.NoError(t, err)
	assert.Equal(t, 64, tex.Width)
	assert.Equal(t, 32, tex.Height)
	require.Len(t, tex.Pixels, 64*32*4)

	// left half is opaque red, right half transparent
	left := tex.Pixels[(16*64+8)*4:]
	assert.Equal(t, []byte{0xff, 0, 0, 0xff}, left[:4])
	right := tex.Pixels[(16*64+56)*4:]
	assert.Equal(t, byte(0), right[3])
}

func TestLoadTextureErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadTexture(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := fixtures.WriteFile(t, dir, "bad.png", "not an image")
	_, err = LoadTexture(bad)
	assert.ErrorContains(t, err, "decode texture")

	svg := fixtures.WriteFile(t, dir, "logo.SVG", fixtures.LogoSVG)
	tex, err := LoadTexture(svg)
	require.NoError(t, err)
	assert.Equal(t, SVGRasterWidth, tex.Width)
}

func TestLoadGLTF(t *testing.T) {
	path := fixtures.WriteCubeGLB(t, t.TempDir(), "cube.glb")

	result, err := LoadGLTF(path)
	require.NoError(t, err)
	require.Len(t, result.Roots, 1)
	assert.Empty(t, result.Textures)

	root := result.Roots[0]
	assert.Equal(t, "Cube", root.Name)
	require.NotNil(t, root.Mesh)
	assert.Len(t, root.Mesh.Vertices, len(fixtures.CubePositions))
	assert.Len(t, root.Mesh.Indices, 36)
	assertVec3(t, math.Splat(-1), root.Mesh.LocalAABB.Min)

	container := result.Container("container")
	assert.Same(t, container, root.Parent)
}

func TestLoadGLTFErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadGLTF(filepath.Join(dir, "nope.gltf"))
	assert.Error(t, err)

	bad := fixtures.WriteFile(t, dir, "bad.gltf", "{ not json")
	_, err = LoadGLTF(bad)
	assert.ErrorContains(t, err, "gltf open")

	const header = `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],`
	malformed := []struct {
		name string
		body string
	}{
		{"missing accessor", `"meshes":[{"primitives":[{"attributes":{"POSITION":5}}]}]}`},
		{"negative accessor", `"meshes":[{"primitives":[{"attributes":{"POSITION":-1}}]}]}`},
		{"missing buffer view", `"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],
			"accessors":[{"bufferView":3,"componentType":5126,"count":3,"type":"VEC3"}]}`},
		{"missing normal accessor", `"meshes":[{"primitives":[{"attributes":{"POSITION":0,"NORMAL":9}}]}],
			"accessors":[{"componentType":5126,"count":3,"type":"VEC3"}]}`},
		{"missing index accessor", `"meshes":[{"primitives":[{"attributes":{"POSITION":0},"indices":4}]}],
			"accessors":[{"componentType":5126,"count":3,"type":"VEC3"}]}`},
		{"missing image buffer view", `"meshes":[],"textures":[{"source":0}],
			"images":[{"bufferView":7,"mimeType":"image/png"}]}`},
		{"missing image", `"meshes":[],"textures":[{"source":2}]}`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			path := fixtures.WriteFile(t, t.TempDir(), "model.gltf", header+tt.body)
			var res *GLTFResult
			var err error
			require.NotPanics(t, func() { res, err = LoadGLTF(path) })
			assert.ErrorIs(t, err, ErrMalformedGLTF)
			assert.Nil(t, res)
		})
	}

	outOfRange := fixtures.WriteGLB(t, dir, "index.glb", fixtures.CubePositions, []uint16{0, 1, 99})
	_, err = LoadGLTF(outOfRange)
	assert.ErrorIs(t, err, ErrMalformedGLTF)
	assert.ErrorContains(t, err, "index 2 is 99")

	partial := fixtures.WriteGLB(t, dir, "partial.glb", fixtures.CubePositions[:4], nil)
	_, err = LoadGLTF(partial)
	assert.ErrorIs(t, err, ErrMalformedGLTF)
	assert.ErrorContains(t, err, "not a multiple of 3")
}

func TestMeshValidate(t *testing.T) {
	assert.NoError(t, CreateCube(2).Validate())
	assert.NoError(t, CreateGrid(100, 10).Validate())

	m := CreateCube(2)
	m.Indices[5] = uint32(len(m.Vertices))
	assert.ErrorContains(t, m.Validate(), "only 24 vertices")

	lines := CreateBoxHelper(AABB{Max: math.Splat(1)}, core.ColorYellow)
	lines.Indices = lines.Indices[:3]
	assert.ErrorContains(t, lines.Validate(), "not a multiple of 2")
}
