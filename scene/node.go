package scene

import (
	"sync/atomic"

	"grid-editor/core"
	"grid-editor/math"
)

// NodeKind tags nodes the editor treats specially during picking and
// deletion. Everything loaded from a model file is KindDefault.
type NodeKind int

const (
	KindDefault NodeKind = iota
	KindGrid
	KindModel  // group created per loaded model, the unit of selection
	KindHelper // bounding box helpers
	KindLogo
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Kind      NodeKind
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool
	ID        uint32

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIDCounter atomic.Uint32

// NewNode is safe to call from loader goroutines; the returned node is not
// attached to anything.
func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Visible:          true,
		ID:               nodeIDCounter.Add(1),
		worldMatrixDirty: true,
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

// RemoveChild detaches child and reports whether it was a direct child.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return true
		}
	}
	return false
}

// IsDescendantOf reports whether ancestor appears on n's parent chain.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// GetWorldMatrix returns local * parentWorld (row vectors).
func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		local := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = local.Mul(n.Parent.GetWorldMatrix())
		} else {
			n.worldMatrix = local
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

// Rotate applies a rotation about axis in the parent's frame.
func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = rotation.Mul(n.Transform.Rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// matrixRelativeTo folds local transforms from n up to, but excluding,
// ancestor. Returns false when ancestor is not on the chain.
func (n *Node) matrixRelativeTo(ancestor *Node) (math.Mat4, bool) {
	m := math.Mat4Identity()
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return m, true
		}
		m = m.Mul(cur.Transform.GetMatrix())
	}
	return m, ancestor == nil
}
