package scene

import (
	"grid-editor/core"
	"grid-editor/math"
)

var (
	gridCenterColor = core.ColorHex(0x444444)
	gridLineColor   = core.ColorHex(0x888888)
)

type lineBuilder struct {
	vertices []core.Vertex
	indices  []uint32
}

func (b *lineBuilder) add(a, c math.Vec3, color core.Color) {
	base := uint32(len(b.vertices))
	b.vertices = append(b.vertices,
		core.Vertex{Position: a, Normal: math.Vec3Up, Color: color},
		core.Vertex{Position: c, Normal: math.Vec3Up, Color: color},
	)
	b.indices = append(b.indices, base, base+1)
}

func (b *lineBuilder) mesh(name string, mat *Material) *Mesh {
	m := CreateMeshFromData(name, b.vertices, b.indices)
	m.DrawMode = DrawLines
	m.Material = mat
	return m
}

// CreateGrid builds a flat grid on y=0 drawn as lines, spanning -size/2 to
// +size/2 on X and Z with the given number of cells per axis. The two
// centre lines are darker.
func CreateGrid(size float32, divisions int) *Mesh {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float32(divisions)

	var b lineBuilder
	for i := 0; i <= divisions; i++ {
		k := -half + float32(i)*step
		color := gridLineColor
		if i*2 == divisions {
			color = gridCenterColor
		}
		b.add(math.NewVec3(k, 0, -half), math.NewVec3(k, 0, half), color)
		b.add(math.NewVec3(-half, 0, k), math.NewVec3(half, 0, k), color)
	}
	// vertex colors carry the shading; the material stays white
	return b.mesh("Grid", NewLineMaterial("GridMaterial", core.ColorWhite))
}

// CreateGridNode wraps CreateGrid in a node tagged KindGrid.
func CreateGridNode(size float32, divisions int) *Node {
	n := NewNode("Grid")
	n.Kind = KindGrid
	n.Mesh = CreateGrid(size, divisions)
	return n
}

// CreateBoxHelper builds the 12 edges of box as a line mesh.
func CreateBoxHelper(box AABB, color core.Color) *Mesh {
	c := box.Corners()
	edges := [12][2]int{
		{0, 1}, {1, 3}, {3, 2}, {2, 0}, // z = min
		{4, 5}, {5, 7}, {7, 6}, {6, 4}, // z = max
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	var b lineBuilder
	for _, e := range edges {
		b.add(c[e[0]], c[e[1]], core.ColorWhite)
	}
	return b.mesh("BoxHelper", NewLineMaterial("BoxHelperMaterial", color))
}
