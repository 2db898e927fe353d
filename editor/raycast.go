package editor

import (
	stdmath "math"
	"sort"

	"grid-editor/math"
	"grid-editor/scene"
)

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // unit length
}

func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Intersection is one ray hit, in world space.
type Intersection struct {
	Distance float32
	Point    math.Vec3
	Node     *scene.Node
	FaceIdx  int // triangle or segment index in the mesh
}

// Raycaster tests a ray against scene nodes. Visibility is ignored, like a
// pointer ray that also finds hidden helpers.
type Raycaster struct {
	Ray  Ray
	Near float32
	Far  float32
	// LineThreshold is how close, in world units, a ray must pass to a line
	// segment to hit it.
	LineThreshold float32
}

func NewRaycaster() *Raycaster {
	return &Raycaster{
		Near:          0,
		Far:           float32(stdmath.Inf(1)),
		LineThreshold: 1,
	}
}

// ScreenToNDC converts window coordinates to normalized device coordinates,
// -1..1 on both axes with +Y up.
func ScreenToNDC(x, y, width, height float64) math.Vec2 {
	if width <= 0 || height <= 0 {
		return math.Vec2{}
	}
	return math.Vec2{
		X: float32(x/width*2 - 1),
		Y: float32(-(y/height)*2 + 1),
	}
}

// SetFromCamera aims the ray from the camera through an NDC point.
func (rc *Raycaster) SetFromCamera(ndc math.Vec2, camera *scene.Camera) {
	invViewProj := camera.GetViewProjectionMatrix().Inverse()
	onNear := invViewProj.MulVec3(math.NewVec3(ndc.X, ndc.Y, -1))
	onFar := invViewProj.MulVec3(math.NewVec3(ndc.X, ndc.Y, 1))
	rc.Ray = Ray{
		Origin:    camera.Position,
		Direction: onFar.Sub(onNear).Normalize(),
	}
}

// IntersectObjects tests every node (and, if recursive, their descendants)
// and returns the hits ordered by distance, nearest first.
func (rc *Raycaster) IntersectObjects(nodes []*scene.Node, recursive bool) []Intersection {
	var hits []Intersection
	for _, n := range nodes {
		if recursive {
			n.Traverse(func(c *scene.Node) {
				hits = rc.intersectNode(c, hits)
			})
		} else {
			hits = rc.intersectNode(n, hits)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

func (rc *Raycaster) intersectNode(node *scene.Node, hits []Intersection) []Intersection {
	mesh := node.Mesh
	if mesh == nil || len(mesh.Vertices) == 0 {
		return hits
	}
	world := node.GetWorldMatrix()

	// Broad phase: AABB test, grown by the line threshold for line meshes
	box := scene.ComputeAABB(mesh, world)
	if mesh.DrawMode == scene.DrawLines {
		pad := math.Splat(rc.LineThreshold)
		box = scene.AABB{Min: box.Min.Sub(pad), Max: box.Max.Add(pad)}
	}
	if _, ok := rayAABBIntersect(rc.Ray, box); !ok {
		return hits
	}

	switch mesh.DrawMode {
	case scene.DrawLines:
		return rc.intersectLines(node, world, hits)
	default:
		return rc.intersectTriangles(node, world, hits)
	}
}

// intersectTriangles reports the nearest triangle hit of the node, both
// faces counted.
func (rc *Raycaster) intersectTriangles(node *scene.Node, world math.Mat4, hits []Intersection) []Intersection {
	mesh := node.Mesh
	if mesh.Validate() != nil {
		return hits
	}
	best := Intersection{Distance: float32(stdmath.Inf(1))}
	found := false
	for i := 0; i+2 < mesh.ElementCount(); i += 3 {
		v0 := world.MulVec3(mesh.Vertices[mesh.Index(i)].Position)
		v1 := world.MulVec3(mesh.Vertices[mesh.Index(i+1)].Position)
		v2 := world.MulVec3(mesh.Vertices[mesh.Index(i+2)].Position)

		t, ok := mollerTrumbore(rc.Ray, v0, v1, v2)
		if !ok || t < rc.Near || t > rc.Far || t >= best.Distance {
			continue
		}
		best = Intersection{Distance: t, Point: rc.Ray.At(t), Node: node, FaceIdx: i / 3}
		found = true
	}
	if found {
		hits = append(hits, best)
	}
	return hits
}

// intersectLines reports every segment passing within LineThreshold.
func (rc *Raycaster) intersectLines(node *scene.Node, world math.Mat4, hits []Intersection) []Intersection {
	mesh := node.Mesh
	if mesh.Validate() != nil {
		return hits
	}
	thresholdSq := rc.LineThreshold * rc.LineThreshold
	for i := 0; i+1 < mesh.ElementCount(); i += 2 {
		a := world.MulVec3(mesh.Vertices[mesh.Index(i)].Position)
		b := world.MulVec3(mesh.Vertices[mesh.Index(i+1)].Position)

		onRay, onSeg, distSq := raySegmentClosest(rc.Ray, a, b)
		if distSq > thresholdSq {
			continue
		}
		t := rc.Ray.Origin.Distance(onRay)
		if t < rc.Near || t > rc.Far {
			continue
		}
		hits = append(hits, Intersection{Distance: t, Point: onSeg, Node: node, FaceIdx: i / 2})
	}
	return hits
}

// raySegmentClosest returns the closest points between the ray (t >= 0) and
// segment ab, and their squared distance.
func raySegmentClosest(ray Ray, a, b math.Vec3) (onRay, onSeg math.Vec3, distSq float32) {
	segCenter := a.Add(b).Mul(0.5)
	segDir := b.Sub(a)
	segExtent := segDir.Length() / 2
	segDir = segDir.Normalize()
	diff := ray.Origin.Sub(segCenter)

	a01 := -ray.Direction.Dot(segDir)
	b0 := diff.Dot(ray.Direction)
	b1 := -diff.Dot(segDir)
	det := float32(stdmath.Abs(float64(1 - a01*a01)))

	var s0, s1 float32
	if det > 1e-8 {
		s0 = a01*b1 - b0
		s1 = a01*b0 - b1
		extDet := segExtent * det
		if s0 >= 0 && s1 >= -extDet && s1 <= extDet {
			s0 /= det
			s1 /= det
		} else {
			s1 = clampf(s1/det, -segExtent, segExtent)
			s0 = max(0, -(a01*s1 + b0))
		}
	} else {
		// parallel
		s1 = clampf(-b1, -segExtent, segExtent)
		s0 = max(0, -(a01*s1 + b0))
	}
	// re-solve the segment parameter for the clamped ray parameter
	onRay = ray.At(s0)
	s1 = clampf(onRay.Sub(segCenter).Dot(segDir), -segExtent, segExtent)
	onSeg = segCenter.Add(segDir.Mul(s1))
	return onRay, onSeg, onRay.Sub(onSeg).LengthSqr()
}

// rayAABBIntersect tests ray-AABB intersection
func rayAABBIntersect(ray Ray, aabb scene.AABB) (float32, bool) {
	invDir := math.Vec3{
		X: 1.0 / ray.Direction.X,
		Y: 1.0 / ray.Direction.Y,
		Z: 1.0 / ray.Direction.Z,
	}

	t1 := (aabb.Min.X - ray.Origin.X) * invDir.X
	t2 := (aabb.Max.X - ray.Origin.X) * invDir.X
	t3 := (aabb.Min.Y - ray.Origin.Y) * invDir.Y
	t4 := (aabb.Max.Y - ray.Origin.Y) * invDir.Y
	t5 := (aabb.Min.Z - ray.Origin.Z) * invDir.Z
	t6 := (aabb.Max.Z - ray.Origin.Z) * invDir.Z

	tmin := max(max(min(t1, t2), min(t3, t4)), min(t5, t6))
	tmax := min(min(max(t1, t2), max(t3, t4)), max(t5, t6))

	if tmax < 0 || tmin > tmax {
		return 0, false
	}
	return tmin, true
}

// mollerTrumbore implements the Möller–Trumbore ray-triangle intersection
// algorithm without back-face rejection.
func mollerTrumbore(ray Ray, v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -epsilon && a < epsilon {
		return 0, false // parallel
	}

	f := 1.0 / a
	s := ray.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	return t, t > epsilon
}

func clampf(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
