package vulkan

import (
	"StoneEngine/internal/scene"

	"github.com/xlab/linmath"
)

type TextureBinding struct {
	Location scene.Location
	Image    Resource
}

type ScalarBinding struct {
	Location scene.Location
	Value    float32
}

type VectorBinding struct {
	Location scene.Location
	Value    linmath.Vec3
}

// DrawCommand is one indexed draw with everything a command buffer needs to
// bind for it. Matrices are column major.
type DrawCommand struct {
	Node     string
	MeshType scene.MeshType

	Vertex   Resource
	Fragment Resource

	VertexBuffer   Resource
	IndexBuffer    Resource
	IndexCount     int32
	InstanceBuffer Resource
	InstanceCount  int32

	Model          linmath.Mat4x4
	View           linmath.Mat4x4
	Projection     linmath.Mat4x4
	MVP            linmath.Mat4x4
	CameraPosition linmath.Vec3
	Bones          []linmath.Mat4x4

	Textures []TextureBinding
	Scalars  []ScalarBinding
	Vectors  []VectorBinding
}

// LineCommand draws the point ranges of a wireframe shape.
type LineCommand struct {
	Node        string
	Points      Resource
	Ranges      [][2]int32
	Strip       bool
	Color       linmath.Vec3
	Thickness   float32
	IgnoreDepth bool
	MVP         linmath.Mat4x4
}

// Frame collects the draws of one RenderWorld call. It is carried by
// RenderContext.Backend.
type Frame struct {
	renderer *Renderer

	Width      int32
	Height     int32
	ClearColor linmath.Vec3
	Targets    *Targets
	Draws      []DrawCommand
	Lines      []LineCommand
	// Failures counts draws dropped because a per-frame resource could not
	// be created.
	Failures int
}

func frameOf(ctx *scene.RenderContext) *Frame {
	f, _ := ctx.Backend.(*Frame)
	return f
}

// FrameSink consumes finished frames, typically by recording and submitting
// a command buffer.
type FrameSink interface {
	Submit(frame *Frame) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(frame *Frame) error

func (f FrameSinkFunc) Submit(frame *Frame) error { return f(frame) }

// Targets are the offscreen images a frame renders into.
type Targets struct {
	Position   Resource
	Normal     Resource
	AlbedoSpec Resource
	Depth      Resource
	Width      int32
	Height     int32
}

func newTargets(device Device, width, height int32) (*Targets, error) {
	t := &Targets{Width: width, Height: height}
	specs := []struct {
		dst   *Resource
		usage ImageUsage
	}{
		{&t.Position, ImageHDRTarget},
		{&t.Normal, ImageHDRTarget},
		{&t.AlbedoSpec, ImageColorTarget},
		{&t.Depth, ImageDepthTarget},
	}
	for _, s := range specs {
		img, err := device.CreateImage(ImageDesc{Width: width, Height: height, Usage: s.usage})
		if err != nil {
			t.Release()
			return nil, err
		}
		*s.dst = img
	}
	return t, nil
}

func (t *Targets) Release() {
	for _, r := range []*Resource{&t.Position, &t.Normal, &t.AlbedoSpec, &t.Depth} {
		if *r != nil {
			(*r).Destroy()
			*r = nil
		}
	}
}
