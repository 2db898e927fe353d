package scene

import (
	"grid-editor/core"
	"grid-editor/math"
)

// Light types
const (
	LightTypeAmbient = iota
	LightTypeDirectional
)

// Light is not a scene-graph node, so it can never be picked or deleted.
type Light struct {
	Type      int
	Direction math.Vec3 // towards the light, directional only
	Color     core.Color
	Intensity float32
}

// Radiance is the light color scaled by its intensity.
func (l *Light) Radiance() core.Color {
	return l.Color.Scale(l.Intensity)
}

// Scene manages a collection of nodes and the active camera
type Scene struct {
	Root       *Node
	Camera     *Camera
	Lights     []*Light
	Background core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.ColorBlack,
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

// RemoveNode detaches a direct child of the root. It reports false when
// node is not currently attached there.
func (s *Scene) RemoveNode(node *Node) bool {
	return s.Root.RemoveChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// AmbientColor sums all ambient lights.
func (s *Scene) AmbientColor() core.Color {
	var c core.Color
	for _, l := range s.Lights {
		if l.Type == LightTypeAmbient {
			r := l.Radiance()
			c.R, c.G, c.B = c.R+r.R, c.G+r.G, c.B+r.B
		}
	}
	c.A = 1
	return c
}

// DirectionalLight returns the first directional light, or nil.
func (s *Scene) DirectionalLight() *Light {
	for _, l := range s.Lights {
		if l.Type == LightTypeDirectional {
			return l
		}
	}
	return nil
}

// GetVisibleNodes returns all nodes with meshes whose whole ancestor chain
// is visible.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return visible
}

// TopLevel lists the root's direct children of the given kind.
func (s *Scene) TopLevel(kind NodeKind) []*Node {
	var out []*Node
	for _, c := range s.Root.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}
