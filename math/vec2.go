package math

// Vec2 is a pair on a flat surface: texture coordinates on a mesh, or a
// pointer position in normalised device coordinates.
type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Vec2FromArray converts the [2]float32 layout glTF accessors decode to.
func Vec2FromArray(a [2]float32) Vec2 {
	return Vec2{X: a[0], Y: a[1]}
}

// InNDC reports whether v lies inside the visible -1..1 square.
func (v Vec2) InNDC() bool {
	return v.X >= -1 && v.X <= 1 && v.Y >= -1 && v.Y <= 1
}
