package behaviour

import (
	"math"

	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type Key int

const (
	KeyForward Key = iota
	KeyBack
	KeyLeft
	KeyRight
	KeyBoost
)

// Input is the per-frame state a FlyCamera reads.
type Input interface {
	Pressed(k Key) bool
	// LookDelta returns the cursor movement in pixels since the previous
	// frame, or zero while mouse look is not active.
	LookDelta() (dx, dy float64)
}

const boostFactor = 2.5

// FlyCamera moves a camera with WASD style keys and turns it with the mouse.
// Sensitivity is in degrees per pixel.
type FlyCamera struct {
	Camera      *scene.CameraNode
	Input       Input
	Speed       float32
	Sensitivity float32

	yaw, pitch float32
}

func NewFlyCamera(camera *scene.CameraNode, input Input) *FlyCamera {
	return &FlyCamera{Camera: camera, Input: input, Speed: 10, Sensitivity: 0.1}
}

// Start reads yaw and pitch back from the camera's current rotation.
func (f *FlyCamera) Start() {
	front := f.Camera.Rotation().Rotate(mgl32.Vec3{0, 0, -1})
	f.pitch = float32(math.Asin(float64(mgl32.Clamp(front.Y(), -1, 1))))
	f.yaw = float32(math.Atan2(float64(-front.X()), float64(-front.Z())))
}

func (f *FlyCamera) Update(deltaTime float64) {
	dx, dy := f.Input.LookDelta()
	if dx != 0 || dy != 0 {
		f.yaw -= mgl32.DegToRad(float32(dx) * f.Sensitivity)
		f.pitch -= mgl32.DegToRad(float32(dy) * f.Sensitivity)
		limit := mgl32.DegToRad(89)
		f.pitch = mgl32.Clamp(f.pitch, -limit, limit)
	}
	rotation := mgl32.QuatRotate(f.yaw, mgl32.Vec3{0, 1, 0}).Mul(mgl32.QuatRotate(f.pitch, mgl32.Vec3{1, 0, 0}))
	f.Camera.SetRotation(rotation)

	velocity := f.Speed * float32(deltaTime)
	if f.Input.Pressed(KeyBoost) {
		velocity *= boostFactor
	}
	front := rotation.Rotate(mgl32.Vec3{0, 0, -1})
	right := rotation.Rotate(mgl32.Vec3{1, 0, 0})

	var move mgl32.Vec3
	if f.Input.Pressed(KeyForward) {
		move = move.Add(front)
	}
	if f.Input.Pressed(KeyBack) {
		move = move.Sub(front)
	}
	if f.Input.Pressed(KeyRight) {
		move = move.Add(right)
	}
	if f.Input.Pressed(KeyLeft) {
		move = move.Sub(right)
	}
	if move.Len() > 0 {
		f.Camera.Translate(move.Normalize().Mul(velocity))
	}
}

func (f *FlyCamera) UpdateFixed() {}
