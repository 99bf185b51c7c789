package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world up axis.
var Up = mgl32.Vec3{0, 0, 1}

const (
	minDistance = 0.5
	maxDistance = 500
	maxPitch    = math.Pi/2 - 0.01
)

// TurntableCamera orbits a look-at point. AngleZ turns around the world Z
// axis, AngleY tilts above the horizon.
type TurntableCamera struct {
	LookAt   mgl32.Vec3
	Distance float32
	AngleZ   float32
	AngleY   float32

	FOV       float32 // degrees
	NearPlane float32
	FarPlane  float32

	aspect float32
}

// NewTurntableCamera returns a camera looking at the origin from the -Y side.
func NewTurntableCamera() *TurntableCamera {
	return &TurntableCamera{
		Distance:  10,
		AngleZ:    -math.Pi / 2,
		AngleY:    0.3,
		FOV:       75,
		NearPlane: 0.01,
		FarPlane:  512,
		aspect:    1,
	}
}

// Preset moves the camera to a stored viewpoint.
type Preset struct {
	Distance float32
	AngleZ   float32
	AngleY   float32
	LookAt   mgl32.Vec3
}

// SetPreset applies p.
func (c *TurntableCamera) SetPreset(p Preset) {
	c.Distance = clampDistance(p.Distance)
	c.AngleZ = p.AngleZ
	c.AngleY = clampPitch(p.AngleY)
	c.LookAt = p.LookAt
}

// UpdateFormatRatio sets the projection aspect ratio from the framebuffer size.
func (c *TurntableCamera) UpdateFormatRatio(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// AspectRatio returns the current projection aspect ratio.
func (c *TurntableCamera) AspectRatio() float32 {
	return c.aspect
}

// Position returns the eye position in world space.
func (c *TurntableCamera) Position() mgl32.Vec3 {
	cy, sy := cos(c.AngleY), sin(c.AngleY)
	cz, sz := cos(c.AngleZ), sin(c.AngleZ)
	return c.LookAt.Add(mgl32.Vec3{cy * cz, cy * sz, sy}.Mul(c.Distance))
}

// View returns the world-to-view matrix.
func (c *TurntableCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.LookAt, Up)
}

// Projection returns the perspective projection matrix.
func (c *TurntableCamera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.aspect, c.NearPlane, c.FarPlane)
}

// Rotate turns the camera by dz around Z and tilts it by dy.
func (c *TurntableCamera) Rotate(dz, dy float32) {
	c.AngleZ += dz
	c.AngleY = clampPitch(c.AngleY + dy)
}

// Pan slides the look-at point in the view plane. Offsets are scaled by the
// orbit distance so panning feels the same at any zoom level.
func (c *TurntableCamera) Pan(dx, dy float32) {
	forward := c.LookAt.Sub(c.Position()).Normalize()
	right := forward.Cross(Up).Normalize()
	up := right.Cross(forward)
	c.LookAt = c.LookAt.Add(right.Mul(-dx * c.Distance)).Add(up.Mul(dy * c.Distance))
}

// Zoom multiplies the orbit distance by factor.
func (c *TurntableCamera) Zoom(factor float32) {
	c.Distance = clampDistance(c.Distance * factor)
}

// ComputeMatrices rebuilds cache for frame using the camera view.
func (c *TurntableCamera) ComputeMatrices(cache *MatrixCache, frame uint64, objects []*Object) {
	cache.Compute(frame, c.View(), c.Projection(), objects)
}

func clampDistance(d float32) float32 {
	return mgl32.Clamp(d, minDistance, maxDistance)
}

func clampPitch(a float32) float32 {
	return mgl32.Clamp(a, -maxPitch, maxPitch)
}

func cos(a float32) float32 { return float32(math.Cos(float64(a))) }
func sin(a float32) float32 { return float32(math.Sin(float64(a))) }
