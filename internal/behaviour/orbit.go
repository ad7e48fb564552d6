package behaviour

import (
	"math"

	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit moves a pivot on a horizontal circle around Center, keeping its
// height.
type Orbit struct {
	Target *scene.PivotNode
	Center mgl32.Vec3
	Radius float32
	Speed  float32
	angle  float64
}

func NewOrbit(target *scene.PivotNode, center mgl32.Vec3, radius, speed float32) *Orbit {
	return &Orbit{Target: target, Center: center, Radius: radius, Speed: speed}
}

func (o *Orbit) Start() { o.place() }

func (o *Orbit) Update(deltaTime float64) {
	o.angle += deltaTime * float64(o.Speed)
	o.place()
}

func (o *Orbit) UpdateFixed() {}

func (o *Orbit) place() {
	if o.Target == nil {
		return
	}
	x := float32(math.Cos(o.angle)) * o.Radius
	z := float32(math.Sin(o.angle)) * o.Radius
	o.Target.SetPosition(mgl32.Vec3{o.Center.X() + x, o.Target.Position().Y(), o.Center.Z() + z})
}
