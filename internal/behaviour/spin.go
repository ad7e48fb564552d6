package behaviour

import (
	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

var DefaultSpinAxis = mgl32.Vec3{0, 1, 0}

const DefaultSpinSpeed = 0.5

// Spin rotates a pivot around an axis at a constant speed in radians per
// second.
type Spin struct {
	Target *scene.PivotNode
	Axis   mgl32.Vec3
	Speed  float32
}

func NewSpin(target *scene.PivotNode, axis mgl32.Vec3, speed float32) *Spin {
	return &Spin{Target: target, Axis: axis.Normalize(), Speed: speed}
}

func (s *Spin) Start() {}

func (s *Spin) Update(deltaTime float64) {
	if s.Target == nil {
		return
	}
	s.Target.Rotate(s.Axis, s.Speed*float32(deltaTime))
}

func (s *Spin) UpdateFixed() {}
