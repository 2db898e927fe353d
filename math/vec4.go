package math

// Vec4 is a homogeneous point, used on the way from world to clip space.
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// MulMat multiplies the row vector v by m.
func (v Vec4) MulMat(m Mat4) Vec4 {
	var out [4]float32
	in := [4]float32{v.X, v.Y, v.Z, v.W}
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			out[col] += in[row] * m[row][col]
		}
	}
	return Vec4{X: out[0], Y: out[1], Z: out[2], W: out[3]}
}

// ToVec3 drops W without dividing.
func (v Vec4) ToVec3() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// PerspectiveDivide maps a clip-space point to NDC. Points at infinity
// (W == 0) come back undivided.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.ToVec3()
	}
	return v.ToVec3().Mul(1 / v.W)
}
