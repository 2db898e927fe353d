package assets

import (
	"grid-editor/core"
	"grid-editor/math"
	"grid-editor/scene"
)

// ModelOptions shapes the group built around a loaded model.
type ModelOptions struct {
	Scale       float32
	HelperColor core.Color
}

// LogoOptions places the logo plane.
type LogoOptions struct {
	Width, Height float32
	Position      math.Vec3
}

// BuildModelGroup wraps a loaded model in a KindModel group at pos:
//
//	group (pos)
//	├── container (scale)
//	│   └── model roots...
//	└── box helper (hidden, fitted to the scaled model)
//
// The group is detached and unnamed; the caller names it when inserting.
func BuildModelGroup(res *scene.GLTFResult, pos math.Vec3, opts ModelOptions) *scene.Node {
	group := scene.NewNode("")
	group.Kind = scene.KindModel
	group.SetPosition(pos)

	container := res.Container("gltf_scene")
	container.SetScale(math.Splat(opts.Scale))
	group.AddChild(container)

	// a model with no geometry still gets its helper, collapsed on the origin
	box := scene.BoundsRelativeTo(container, group)
	if box.IsEmpty() {
		box = scene.AABB{}
	}
	helper := scene.NewNode("box_helper")
	helper.Kind = scene.KindHelper
	helper.Mesh = scene.CreateBoxHelper(box, opts.HelperColor)
	helper.Visible = false
	group.AddChild(helper)
	return group
}

// BuildLogo puts tex on an unlit, double-sided, transparent plane.
func BuildLogo(tex *scene.Texture, opts LogoOptions) *scene.Node {
	mat := scene.NewMaterial("LogoMaterial", core.ColorWhite)
	mat.Unlit = true
	mat.Transparent = true
	mat.DoubleSided = true
	tex.Wrap = scene.WrapClamp
	mat.AlbedoTexture = tex

	n := scene.NewNode("logo")
	n.Kind = scene.KindLogo
	n.Mesh = scene.CreatePlane(opts.Width, opts.Height)
	n.Mesh.Material = mat
	n.SetPosition(opts.Position)
	return n
}
