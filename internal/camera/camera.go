package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Key identifies a movement key understood by the camera.
type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Input supplies per-frame mouse movement and key state. The windowing
// layer implements it; a nil Input leaves the camera still.
type Input interface {
	MouseDelta() (dx, dy float32)
	KeyDown(k Key) bool
}

var (
	worldUp  = mgl32.Vec3{0, 1, 0}
	maxPitch = mgl32.DegToRad(89)
)

const tau = 2 * math.Pi

// Camera is a free-fly camera described by a position and yaw/pitch angles.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Speed       float32 // units per second
	Sensitivity float32 // radians per mouse unit
}

func New(position mgl32.Vec3, speed, sensitivity float32) *Camera {
	return &Camera{Position: position, Speed: speed, Sensitivity: sensitivity}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(c.Yaw))
	sp, cp := math.Sincos(float64(c.Pitch))
	return mgl32.Vec3{float32(cp * sy), float32(sp), float32(cp * cy)}
}

// wrapAngle maps a to [0, tau).
func wrapAngle(a float32) float32 {
	w := math.Mod(float64(a), tau)
	if w < 0 {
		w += tau
	}
	if r := float32(w); r < tau {
		return r
	}
	return 0
}

// Update applies mouse look and movement for a frame lasting dt seconds.
func (c *Camera) Update(dt float32, in Input) {
	if in == nil {
		return
	}
	dx, dy := in.MouseDelta()
	c.Yaw -= dx * c.Sensitivity
	c.Pitch -= dy * c.Sensitivity
	c.Yaw = wrapAngle(c.Yaw)
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)

	forward := c.Forward()
	right := forward.Cross(worldUp).Normalize()
	step := c.Speed * dt

	move := func(k Key, dir mgl32.Vec3) {
		if in.KeyDown(k) {
			c.Position = c.Position.Add(dir.Mul(step))
		}
	}
	move(KeyForward, forward)
	move(KeyBack, forward.Mul(-1))
	move(KeyRight, right)
	move(KeyLeft, right.Mul(-1))
	move(KeyUp, worldUp)
	move(KeyDown, worldUp.Mul(-1))
}

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), worldUp)
}

// Projection returns a perspective projection with a vertical field of
// view in degrees.
func Projection(fovDegrees, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDegrees), aspect, near, far)
}

// ViewProjection returns projection · view.
func (c *Camera) ViewProjection(fovDegrees, aspect, near, far float32) mgl32.Mat4 {
	return Projection(fovDegrees, aspect, near, far).Mul4(c.View())
}
