package scene

import (
	"errors"
	"fmt"
	"path/filepath"

	"fortio.org/log"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"grid-editor/core"
	"grid-editor/math"
)

// ErrMalformedGLTF marks a document whose indices point outside the arrays
// they reference. Loading such a file fails as a whole.
var ErrMalformedGLTF = errors.New("malformed gltf")

// GLTFResult holds the nodes and textures loaded from a .glb / .gltf file.
// Textures still need a GPU upload before the first frame that draws them.
type GLTFResult struct {
	Roots    []*Node
	Textures []*Texture
}

// Container parents every root under a single new node.
func (r *GLTFResult) Container(name string) *Node {
	c := NewNode(name)
	for _, n := range r.Roots {
		c.AddChild(n)
	}
	return c
}

// LoadGLTF opens a .glb or .gltf file and builds a detached node hierarchy
// with geometry, base color materials and textures. It touches no shared
// state and may run off the main thread.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	result := &GLTFResult{}

	texCache, err := loadGLTFTextures(doc, filepath.Dir(path), result)
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}
	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		matCache[i] = convertGLTFMaterial(gm, texCache)
	}

	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if errors.Is(err, ErrMalformedGLTF) {
				return nil, fmt.Errorf("gltf %q: mesh %d prim %d: %w", path, mi, pi, err)
			}
			if err != nil {
				log.Warnf("gltf %s: mesh %d prim %d skipped: %v", path, mi, pi, err)
				continue
			}
			if prim.Material != nil && inRange(*prim.Material, len(matCache)) {
				m.Material = matCache[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodes[i] = convertGLTFNode(i, gn, meshPrims)
	}
	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if inRange(childIdx, len(nodes)) && !hasParent[childIdx] && childIdx != i {
				nodes[i].AddChild(nodes[childIdx])
				hasParent[childIdx] = true
			}
		}
	}

	switch {
	case len(doc.Scenes) > 0:
		sceneIdx := 0
		if doc.Scene != nil && inRange(*doc.Scene, len(doc.Scenes)) {
			sceneIdx = *doc.Scene
		}
		for _, rootIdx := range doc.Scenes[sceneIdx].Nodes {
			if inRange(rootIdx, len(nodes)) {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	default:
		for i, n := range nodes {
			if !hasParent[i] {
				result.Roots = append(result.Roots, n)
			}
		}
	}
	if len(result.Roots) == 0 {
		return nil, fmt.Errorf("gltf %q: no nodes to display", path)
	}
	return result, nil
}

func loadGLTFTextures(doc *gltf.Document, dir string, result *GLTFResult) ([]*Texture, error) {
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		if !inRange(*gt.Source, len(doc.Images)) || doc.Images[*gt.Source] == nil {
			return nil, fmt.Errorf("%w: texture %d uses image %d of %d", ErrMalformedGLTF, i, *gt.Source, len(doc.Images))
		}
		img := doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", *gt.Source)
		}

		var tex *Texture
		var err error
		switch {
		case img.BufferView != nil:
			view, verr := gltfBufferView(doc, *img.BufferView)
			if verr != nil {
				return nil, fmt.Errorf("image %d: %w", *gt.Source, verr)
			}
			var raw []byte
			raw, err = modeler.ReadBufferView(doc, view)
			if err == nil {
				tex, err = decodeImageBytes(name, raw)
			}
		case img.IsEmbeddedResource():
			var raw []byte
			raw, err = img.MarshalData()
			if err == nil {
				tex, err = decodeImageBytes(name, raw)
			}
		case img.URI != "":
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
		}
		if err != nil {
			log.Warnf("gltf: image %d (%s) skipped: %v", *gt.Source, name, err)
			continue
		}
		if tex != nil {
			if gt.Sampler != nil && inRange(*gt.Sampler, len(doc.Samplers)) &&
				doc.Samplers[*gt.Sampler] != nil && doc.Samplers[*gt.Sampler].WrapS == gltf.WrapClampToEdge {
				tex.Wrap = WrapClamp
			}
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}
	return texCache, nil
}

func convertGLTFMaterial(gm *gltf.Material, texCache []*Texture) *Material {
	mat := DefaultMaterial()
	mat.Name = gm.Name
	mat.DoubleSided = gm.DoubleSided
	mat.Transparent = gm.AlphaMode == gltf.AlphaBlend
	_, mat.Unlit = gm.Extensions["KHR_materials_unlit"]

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		mat.Albedo = core.Color{
			R: float32(cf[0]), G: float32(cf[1]),
			B: float32(cf[2]), A: float32(cf[3]),
		}
		if pbr.BaseColorTexture != nil {
			idx := pbr.BaseColorTexture.Index
			if inRange(idx, len(texCache)) && texCache[idx] != nil {
				mat.AlbedoTexture = texCache[idx]
			}
		}
	}
	return mat
}

func convertGLTFNode(i int, gn *gltf.Node, meshPrims [][]*Mesh) *Node {
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	n := NewNode(name)

	t := gn.TranslationOrDefault()
	n.SetPosition(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])})
	sc := gn.ScaleOrDefault()
	n.SetScale(math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])})
	r := gn.RotationOrDefault() // [x, y, z, w]
	n.SetRotation(math.Quaternion{
		X: float32(r[0]), Y: float32(r[1]),
		Z: float32(r[2]), W: float32(r[3]),
	})

	if gn.Mesh == nil || !inRange(*gn.Mesh, len(meshPrims)) {
		return n
	}
	prims := meshPrims[*gn.Mesh]
	if len(prims) == 1 {
		n.Mesh = prims[0]
		return n
	}
	for pi, p := range prims {
		child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
		child.Mesh = p
		n.AddChild(child)
	}
	return n
}

// loadGLTFPrimitive converts one glTF mesh primitive into a scene.Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	var mode DrawMode
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		mode = DrawTriangles
	case gltf.PrimitiveLines:
		mode = DrawLines
	default:
		return nil, fmt.Errorf("unsupported primitive mode %d", prim.Mode)
	}

	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	posAcc, err := gltfAccessor(doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	var normAcc, uvAcc, idxAcc *gltf.Accessor
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normAcc, err = gltfAccessor(doc, idx); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvAcc, err = gltfAccessor(doc, idx); err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
	}
	if prim.Indices != nil {
		if idxAcc, err = gltfAccessor(doc, *prim.Indices); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	var normals [][3]float32
	var uvs [][2]float32
	if normAcc != nil {
		normals, _ = modeler.ReadNormal(doc, normAcc, nil)
	}
	if uvAcc != nil {
		uvs, _ = modeler.ReadTextureCoord(doc, uvAcc, nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3FromArray(p),
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = math.Vec3FromArray(normals[i])
		}
		if i < len(uvs) {
			v.UV = math.Vec2FromArray(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if idxAcc != nil {
		if indices, err = modeler.ReadIndices(doc, idxAcc, nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	m.DrawMode = mode
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGLTF, err)
	}
	return m, nil
}

// gltfAccessor returns accessor idx once it and the buffer view and buffer
// behind it are known to exist.
func gltfAccessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if !inRange(idx, len(doc.Accessors)) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%w: accessor %d of %d", ErrMalformedGLTF, idx, len(doc.Accessors))
	}
	acc := doc.Accessors[idx]
	if acc.BufferView != nil {
		if _, err := gltfBufferView(doc, *acc.BufferView); err != nil {
			return nil, fmt.Errorf("accessor %d: %w", idx, err)
		}
	}
	return acc, nil
}

func gltfBufferView(doc *gltf.Document, idx int) (*gltf.BufferView, error) {
	if !inRange(idx, len(doc.BufferViews)) || doc.BufferViews[idx] == nil {
		return nil, fmt.Errorf("%w: buffer view %d of %d", ErrMalformedGLTF, idx, len(doc.BufferViews))
	}
	view := doc.BufferViews[idx]
	if !inRange(view.Buffer, len(doc.Buffers)) {
		return nil, fmt.Errorf("%w: buffer view %d uses buffer %d of %d", ErrMalformedGLTF, idx, view.Buffer, len(doc.Buffers))
	}
	return view, nil
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
