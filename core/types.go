package core

import (
	"grid-editor/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite  = Color{1, 1, 1, 1}
	ColorBlack  = Color{0, 0, 0, 1}
	ColorYellow = Color{1, 1, 0, 1}
)

// ColorHex builds an opaque color from a 0xRRGGBB literal.
func ColorHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

// Scale multiplies the RGB channels by s and leaves alpha alone.
func (c Color) Scale(s float32) Color {
	return Color{R: c.R * s, G: c.G * s, B: c.B * s, A: c.A}
}

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// GetMatrix composes scale, then rotation, then translation (row vectors).
func (t Transform) GetMatrix() math.Mat4 {
	scale := math.Mat4Scale(t.Scale)
	rotation := t.Rotation.ToMat4()
	translation := math.Mat4Translation(t.Position)
	return scale.Mul(rotation).Mul(translation)
}

// Yaw is the heading about the vertical axis in radians.
func (t Transform) Yaw() float32 {
	return t.Rotation.Yaw()
}
