package behaviour

import (
	"sort"

	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

// Constructor builds a behaviour acting on target.
type Constructor func(target *scene.PivotNode) Behaviour

var registry = map[string]Constructor{
	"spin":  func(target *scene.PivotNode) Behaviour { return NewSpin(target, DefaultSpinAxis, DefaultSpinSpeed) },
	"orbit": func(target *scene.PivotNode) Behaviour { return NewOrbit(target, mgl32.Vec3{}, 10, 1) },
}

func Register(name string, constructor Constructor) {
	registry[name] = constructor
}

// Available returns the registered names in sorted order.
func Available() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create returns nil for an unknown name.
func Create(name string, target *scene.PivotNode) Behaviour {
	if constructor, ok := registry[name]; ok {
		return constructor(target)
	}
	return nil
}
