package scene

import (
	"math"

	reMath "grid-editor/math"
)

// Camera is a perspective camera aimed at Target.
type Camera struct {
	Position    reMath.Vec3
	Target      reMath.Vec3
	Up          reMath.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    reMath.NewVec3(0, 0, 1),
		Target:      reMath.Vec3Zero,
		Up:          reMath.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
	}
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
}

func (c *Camera) LookAt(target reMath.Vec3) {
	c.Target = target
}

func (c *Camera) GetViewMatrix() reMath.Mat4 {
	return reMath.Mat4LookAt(c.Position, c.Target, c.Up)
}

func (c *Camera) GetProjectionMatrix() reMath.Mat4 {
	return reMath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
}

// GetViewProjectionMatrix returns view * projection (row vectors).
func (c *Camera) GetViewProjectionMatrix() reMath.Mat4 {
	return c.GetViewMatrix().Mul(c.GetProjectionMatrix())
}

func (c *Camera) GetForward() reMath.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

func (c *Camera) GetRight() reMath.Vec3 {
	return c.GetForward().Cross(c.Up).Normalize()
}

// GetUp returns the camera's true up, orthogonal to forward and right.
func (c *Camera) GetUp() reMath.Vec3 {
	return c.GetRight().Cross(c.GetForward())
}

const polarEpsilon = 1e-6

// OrbitControls orbits a Camera around its Target. Input accumulates
// deltas; Update applies a damped fraction of them every frame.
type OrbitControls struct {
	Camera *Camera

	DampingFactor  float32
	MinDistance    float32
	MaxDistance    float32
	MinPolarAngle  float32
	MaxPolarAngle  float32
	RotateSpeed    float32
	ZoomScale      float32 // per wheel notch
	ScreenSpacePan bool

	thetaDelta float32
	phiDelta   float32
	scale      float32
	panOffset  reMath.Vec3
}

func NewOrbitControls(camera *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:         camera,
		DampingFactor:  0.05,
		MinDistance:    0,
		MaxDistance:    float32(math.Inf(1)),
		MinPolarAngle:  0,
		MaxPolarAngle:  math.Pi,
		RotateSpeed:    1,
		ZoomScale:      0.95,
		ScreenSpacePan: true,
		scale:          1,
	}
}

// Rotate converts a pointer drag of (dx, dy) pixels on a viewport of the
// given height into orbit angles. A drag across the full height is one turn.
func (o *OrbitControls) Rotate(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	o.thetaDelta -= 2 * math.Pi * dx / viewportHeight * o.RotateSpeed
	o.phiDelta -= 2 * math.Pi * dy / viewportHeight * o.RotateSpeed
}

// Pan moves the target so the point under the cursor follows the drag.
func (o *OrbitControls) Pan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	cam := o.Camera
	offset := cam.Position.Sub(cam.Target)
	targetDistance := offset.Length() * float32(math.Tan(float64(cam.FOV)/2))

	right := cam.GetRight()
	up := cam.GetUp()
	if !o.ScreenSpacePan {
		up = reMath.Vec3Up.Cross(right).Normalize()
	}
	o.panOffset = o.panOffset.
		Add(right.Mul(-2 * dx * targetDistance / viewportHeight)).
		Add(up.Mul(2 * dy * targetDistance / viewportHeight))
}

// Dolly zooms by wheel notches; positive steps move the camera closer.
func (o *OrbitControls) Dolly(steps float32) {
	if steps == 0 {
		return
	}
	o.scale *= float32(math.Pow(float64(o.ZoomScale), float64(steps)))
}

// Update moves the camera by the damped share of accumulated input and
// reports whether it moved.
func (o *OrbitControls) Update() bool {
	cam := o.Camera
	offset := cam.Position.Sub(cam.Target)

	radius := offset.Length()
	theta := float32(math.Atan2(float64(offset.X), float64(offset.Z)))
	phi := float32(0)
	if radius > 0 {
		phi = float32(math.Acos(float64(clamp(offset.Y/radius, -1, 1))))
	}

	damping := o.DampingFactor
	if damping <= 0 {
		damping = 1
	}
	theta += o.thetaDelta * damping
	phi += o.phiDelta * damping
	phi = clamp(phi, o.MinPolarAngle, o.MaxPolarAngle)
	phi = clamp(phi, polarEpsilon, math.Pi-polarEpsilon)

	radius = clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	pan := o.panOffset.Mul(damping)
	cam.Target = cam.Target.Add(pan)

	sinPhi := float32(math.Sin(float64(phi)))
	offset = reMath.Vec3{
		X: radius * sinPhi * float32(math.Sin(float64(theta))),
		Y: radius * float32(math.Cos(float64(phi))),
		Z: radius * sinPhi * float32(math.Cos(float64(theta))),
	}
	newPos := cam.Target.Add(offset)
	moved := newPos.Sub(cam.Position).LengthSqr() > 1e-4 || pan.LengthSqr() > 0
	cam.Position = newPos

	o.thetaDelta *= 1 - damping
	o.phiDelta *= 1 - damping
	o.panOffset = o.panOffset.Mul(1 - damping)
	o.scale = 1
	return moved
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(hi, v))
}
