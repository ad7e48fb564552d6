package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type MVP struct {
	Model      mgl32.Mat4
	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// RenderContext is threaded through a render traversal. Backend carries the
// active renderer's per-frame state.
type RenderContext struct {
	MVP            MVP
	CameraPosition mgl32.Vec3
	Backend        any

	models []mgl32.Mat4
}

func NewRenderContext() *RenderContext {
	return &RenderContext{
		MVP: MVP{
			Model:      mgl32.Ident4(),
			View:       mgl32.Ident4(),
			Projection: mgl32.Ident4(),
		},
	}
}

// PushModel multiplies local into the model matrix, saving the previous one.
func (c *RenderContext) PushModel(local mgl32.Mat4) {
	c.models = append(c.models, c.MVP.Model)
	c.MVP.Model = c.MVP.Model.Mul4(local)
}

func (c *RenderContext) PopModel() {
	n := len(c.models)
	if n == 0 {
		return
	}
	c.MVP.Model = c.models[n-1]
	c.models = c.models[:n-1]
}

func (c *RenderContext) Depth() int { return len(c.models) }
