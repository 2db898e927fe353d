package scene

import "grid-editor/math"

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// EmptyAABB returns an inverted box that any Expand call will replace.
func EmptyAABB() AABB {
	const big = 3.4e38
	return AABB{Min: math.Splat(big), Max: math.Splat(-big)}
}

func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b AABB) Expand(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

func (b AABB) Union(other AABB) AABB {
	if other.IsEmpty() {
		return b
	}
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Corners lists the eight corners, min corner first.
func (b AABB) Corners() [8]math.Vec3 {
	mn, mx := b.Min, b.Max
	return [8]math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
}

// Transform returns the box enclosing b's corners after m.
func (b AABB) Transform(m math.Mat4) AABB {
	if b.IsEmpty() {
		return b
	}
	out := EmptyAABB()
	for _, c := range b.Corners() {
		out = out.Expand(m.MulVec3(c))
	}
	return out
}

// ComputeAABB computes the world-space AABB for a mesh transformed by worldMatrix.
func ComputeAABB(mesh *Mesh, worldMatrix math.Mat4) AABB {
	if mesh.HasLocalAABB {
		return mesh.LocalAABB.Transform(worldMatrix)
	}
	out := EmptyAABB()
	for _, v := range mesh.Vertices {
		out = out.Expand(worldMatrix.MulVec3(v.Position))
	}
	return out
}

// BoundsRelativeTo returns the bounds of every mesh under root (inclusive),
// expressed in frame's local space. frame must be root or one of its
// ancestors. Helper nodes are skipped.
func BoundsRelativeTo(root, frame *Node) AABB {
	out := EmptyAABB()
	root.Traverse(func(n *Node) {
		if n.Mesh == nil || n.Kind == KindHelper {
			return
		}
		m, ok := n.matrixRelativeTo(frame)
		if !ok {
			return
		}
		out = out.Union(ComputeAABB(n.Mesh, m))
	})
	return out
}
