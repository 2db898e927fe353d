package scene

import "grid-editor/core"

// Material describes surface appearance for a mesh: a base color, optionally
// modulated by a texture, lit by the scene's ambient and directional light
// unless Unlit is set.
type Material struct {
	Name   string
	Albedo core.Color
	Unlit  bool

	// Transparent meshes are alpha blended and drawn after opaque ones.
	Transparent bool
	// DoubleSided disables back-face culling.
	DoubleSided bool

	// Optional albedo texture; if set, it is multiplied with Albedo.
	// Upload via the render engine before drawing.
	AlbedoTexture *Texture
}

// DefaultMaterial returns a plain white lit material.
func DefaultMaterial() *Material {
	return &Material{
		Name:   "Default",
		Albedo: core.ColorWhite,
	}
}

func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:   name,
		Albedo: albedo,
	}
}

// NewLineMaterial is an unlit material for helper line meshes.
func NewLineMaterial(name string, color core.Color) *Material {
	return &Material{
		Name:   name,
		Albedo: color,
		Unlit:  true,
	}
}
