package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	maxPitch = 89.0
	minFOV   = 20.0
	maxFOV   = 110.0
)

// Camera is a free-flying perspective camera. Yaw and Pitch are in degrees;
// yaw 0 looks down -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32
	Sensitivity float32
}

func New(width, height int, fov float32) *Camera {
	c := &Camera{
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Sensitivity: 0.1,
	}
	c.SetFOV(fov)
	c.SetViewport(width, height)
	return c
}

func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) SetFOV(fov float32) {
	if fov <= 0 {
		return
	}
	c.FOV = mgl32.Clamp(fov, minFOV, maxFOV)
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(-math.Cos(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Right is the unit strafe direction, always horizontal.
func (c *Camera) Right() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	return mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(math.Sin(yaw))}
}

// Look turns the camera by a mouse delta in pixels.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dx*c.Sensitivity), 360))
	c.Pitch = mgl32.Clamp(c.Pitch-dy*c.Sensitivity, -maxPitch, maxPitch)
}

// Move translates along the view axes: forward follows Front, right follows
// Right and up is world +Y.
func (c *Camera) Move(forward, right, up float32) {
	c.Position = c.Position.
		Add(c.Front().Mul(forward)).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

// Frustum returns the clip planes of the current view.
func (c *Camera) Frustum() Frustum {
	return NewFrustum(c.ProjectionMatrix().Mul4(c.ViewMatrix()))
}
