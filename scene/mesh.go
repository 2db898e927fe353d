package scene

import (
	"fmt"

	"grid-editor/core"
)

// DrawMode controls the OpenGL primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // gl.TRIANGLES (default)
	DrawLines                     // index pairs form segments
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32
	DrawMode DrawMode

	// Cached local-space AABB (computed by CreateMeshFromData).
	LocalAABB    AABB
	HasLocalAABB bool

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
// Meshes without indices are drawn as a plain vertex list.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	if len(vertices) > 0 {
		box := EmptyAABB()
		for _, v := range vertices {
			box = box.Expand(v.Position)
		}
		m.LocalAABB = box
		m.HasLocalAABB = true
	}
	return m
}

// ElementCount is the number of indices, or vertices for unindexed meshes.
func (m *Mesh) ElementCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices)
	}
	return len(m.Vertices)
}

// Index returns the i-th element's vertex index.
func (m *Mesh) Index(i int) uint32 {
	if len(m.Indices) > 0 {
		return m.Indices[i]
	}
	return uint32(i)
}

// Validate checks that every index names a vertex and that the elements
// form whole triangles or segments for the draw mode.
func (m *Mesh) Validate() error {
	per := 3
	if m.DrawMode == DrawLines {
		per = 2
	}
	if n := m.ElementCount(); n%per != 0 {
		return fmt.Errorf("mesh %q: %d elements is not a multiple of %d", m.Name, n, per)
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("mesh %q: index %d is %d, only %d vertices", m.Name, i, idx, len(m.Vertices))
		}
	}
	return nil
}
