package scene

import (
	"grid-editor/core"
	"grid-editor/math"
)

// CreatePlane builds a width x height quad in the XY plane facing +Z,
// centred on the origin.
func CreatePlane(width, height float32) *Mesh {
	w, h := width/2, height/2
	normal := math.Vec3Front
	vertices := []core.Vertex{
		{Position: math.NewVec3(-w, -h, 0), Normal: normal, UV: math.NewVec2(0, 1), Color: core.ColorWhite},
		{Position: math.NewVec3(w, -h, 0), Normal: normal, UV: math.NewVec2(1, 1), Color: core.ColorWhite},
		{Position: math.NewVec3(w, h, 0), Normal: normal, UV: math.NewVec2(1, 0), Color: core.ColorWhite},
		{Position: math.NewVec3(-w, h, 0), Normal: normal, UV: math.NewVec2(0, 0), Color: core.ColorWhite},
	}
	return CreateMeshFromData("Plane", vertices, []uint32{0, 1, 2, 2, 3, 0})
}

// CreateCube builds an axis-aligned cube of edge length size.
func CreateCube(size float32) *Mesh {
	s := size / 2
	faces := []struct {
		normal, u, v math.Vec3
	}{
		{math.Vec3Front, math.Vec3Right, math.Vec3Up},
		{math.Vec3Front.Negate(), math.Vec3Right.Negate(), math.Vec3Up},
		{math.Vec3Right, math.Vec3Front.Negate(), math.Vec3Up},
		{math.Vec3Right.Negate(), math.Vec3Front, math.Vec3Up},
		{math.Vec3Up, math.Vec3Right, math.Vec3Front.Negate()},
		{math.Vec3Up.Negate(), math.Vec3Right, math.Vec3Front},
	}

	var vertices []core.Vertex
	var indices []uint32
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(s)
			vertices = append(vertices, core.Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       math.NewVec2((c[0]+1)/2, (1-c[1])/2),
				Color:    core.ColorWhite,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return CreateMeshFromData("Cube", vertices, indices)
}
