// Package fixtures writes small asset files for package tests.
package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// CubePositions are the corners of a cube spanning -1..1 on every axis.
var CubePositions = [][3]float32{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var cubeIndices = []uint16{
	4, 5, 6, 6, 7, 4, // +z
	1, 0, 3, 3, 2, 1, // -z
	5, 1, 2, 2, 6, 5, // +x
	0, 4, 7, 7, 3, 0, // -x
	7, 6, 2, 2, 3, 7, // +y
	0, 1, 5, 5, 4, 0, // -y
}

// WriteCubeGLB saves a binary glTF holding one node with a 2-unit cube mesh
// under dir and returns its path.
func WriteCubeGLB(t testing.TB, dir, name string) string {
	t.Helper()
	return WriteGLB(t, dir, name, CubePositions, cubeIndices)
}

// WriteGLB saves a single-node binary glTF with the given triangle data.
// Nothing checks indices against positions, so broken meshes can be written
// on purpose.
func WriteGLB(t testing.TB, dir, name string, positions [][3]float32, indices []uint16) string {
	t.Helper()
	doc := gltf.NewDocument()
	prim := &gltf.Primitive{
		Attributes: map[string]int{"POSITION": modeler.WritePosition(doc, positions)},
	}
	if len(indices) > 0 {
		prim.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
	}
	doc.Meshes = []*gltf.Mesh{{Name: "Cube", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "Cube", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}

// WriteFile saves raw content under dir, for malformed-asset cases.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// LogoSVG is a 2:1 SVG with an opaque red rectangle on the left half.
const LogoSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100" width="200" height="100">
<rect x="0" y="0" width="100" height="100" fill="#ff0000"/>
</svg>`
