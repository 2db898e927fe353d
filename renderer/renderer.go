// Package renderer draws a scene.Scene with the OpenGL backend: opaque
// geometry in scene order, then transparent geometry back to front, then
// any screen-space overlay.
package renderer

import (
	"fmt"
	"image"
	"sort"

	"fortio.org/log"

	"grid-editor/core"
	"grid-editor/internal/opengl"
	"grid-editor/math"
	"grid-editor/scene"
)

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *core.Window

	fbWidth, fbHeight int

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastVertices  int
	lastTriangles int
}

func NewRenderEngine(window *core.Window) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	re := &RenderEngine{gl: glRenderer, window: window}
	re.Resize(window.GetFramebufferSize())
	log.Infof("Render engine initialized (OpenGL, %dx%d framebuffer)", re.fbWidth, re.fbHeight)
	return re, nil
}

// drawItem is one mesh node with its world matrix for this frame.
type drawItem struct {
	node  *scene.Node
	model math.Mat4
	depth float32 // view-space z of the world bounds centre; more negative is farther
}

// buildDrawList splits the visible nodes into opaque items, kept in scene
// order, and transparent items sorted farthest first.
func buildDrawList(s *scene.Scene, view math.Mat4) (opaque, transparent []drawItem) {
	for _, node := range s.GetVisibleNodes() {
		model := node.GetWorldMatrix()
		item := drawItem{node: node, model: model}
		if mat := node.Mesh.Material; mat != nil && mat.Transparent {
			center := scene.ComputeAABB(node.Mesh, model).Center()
			item.depth = view.MulVec3(center).Z
			transparent = append(transparent, item)
			continue
		}
		opaque = append(opaque, item)
	}
	sort.SliceStable(transparent, func(i, j int) bool {
		return transparent[i].depth < transparent[j].depth
	})
	return opaque, transparent
}

// Render draws every visible mesh of s from its camera.
func (re *RenderEngine) Render(s *scene.Scene) error {
	if s == nil || s.Camera == nil {
		return fmt.Errorf("no scene or camera")
	}
	re.gl.BeginFrame(s.Background, s.AmbientColor(), s.DirectionalLight())

	view := s.Camera.GetViewMatrix()
	proj := s.Camera.GetProjectionMatrix()
	vp := view.Mul(proj)
	opaque, transparent := buildDrawList(s, view)

	objects, vertices, triangles := 0, 0, 0
	for _, list := range [][]drawItem{opaque, transparent} {
		for _, it := range list {
			mesh := it.node.Mesh
			re.gl.DrawMesh(mesh, it.model.Mul(vp), it.model)
			objects++
			vertices += len(mesh.Vertices)
			if mesh.DrawMode == scene.DrawTriangles {
				triangles += mesh.ElementCount() / 3
			}
		}
	}
	re.gl.EndScene()

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles
	return nil
}

// DrawOverlay draws img at rect, given in window coordinates, scaled to
// the framebuffer so it lines up with pointer hit testing on HiDPI screens.
func (re *RenderEngine) DrawOverlay(img *image.RGBA, version uint64, rect image.Rectangle) {
	sx, sy := re.framebufferScale()
	dst := image.Rect(
		int(float64(rect.Min.X)*sx), int(float64(rect.Min.Y)*sy),
		int(float64(rect.Max.X)*sx), int(float64(rect.Max.Y)*sy),
	)
	re.gl.DrawOverlay(img, version, dst)
}

func (re *RenderEngine) framebufferScale() (float64, float64) {
	if re.window.Width <= 0 || re.window.Height <= 0 {
		return 1, 1
	}
	return float64(re.fbWidth) / float64(re.window.Width), float64(re.fbHeight) / float64(re.window.Height)
}

// Present swaps buffers.
func (re *RenderEngine) Present() {
	re.window.SwapBuffers()
}

// Resize sets the viewport to the framebuffer size in pixels.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.fbWidth, re.fbHeight = width, height
	re.gl.SetViewport(width, height)
}

// SyncFramebuffer picks up framebuffer size changes, which GLFW reports
// separately from window size changes.
func (re *RenderEngine) SyncFramebuffer() {
	w, h := re.window.GetFramebufferSize()
	if w != re.fbWidth || h != re.fbHeight {
		re.Resize(w, h)
	}
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles
}
