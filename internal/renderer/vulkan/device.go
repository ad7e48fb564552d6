// Package vulkan synchronizes scene entities with Vulkan resources and
// collects each rendered world into a Frame of draw records.
package vulkan

import (
	"unsafe"

	"StoneEngine/internal/image"
	"StoneEngine/internal/scene"
)

// Resource is a device object owned by exactly one renderer object or cache.
type Resource interface {
	Destroy()
}

type BufferUsage int

const (
	BufferVertex BufferUsage = iota
	BufferIndex
	BufferInstance
	BufferStorage
)

func (u BufferUsage) String() string {
	switch u {
	case BufferVertex:
		return "vertex"
	case BufferIndex:
		return "index"
	case BufferInstance:
		return "instance"
	case BufferStorage:
		return "storage"
	}
	return "unknown"
}

type ImageUsage int

const (
	// ImageSampled is a texture read through a sampler.
	ImageSampled ImageUsage = iota
	ImageColorTarget
	ImageHDRTarget
	ImageDepthTarget
)

// ImageDesc describes an image to create. Pixels is only read for sampled
// images; render targets start undefined.
type ImageDesc struct {
	Width     int32
	Height    int32
	Channels  image.Channel
	Pixels    []byte
	Usage     ImageUsage
	MinFilter scene.TextureFilter
	MagFilter scene.TextureFilter
	Wrap      scene.TextureWrap
}

// Device creates the Vulkan objects the renderer needs. Implementations are
// not safe for concurrent use.
type Device interface {
	CreateShaderModule(code []uint32) (Resource, error)
	CreateBuffer(usage BufferUsage, data []byte) (Resource, error)
	CreateImage(desc ImageDesc) (Resource, error)
	WaitIdle()
}

func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
