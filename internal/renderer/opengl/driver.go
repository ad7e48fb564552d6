package opengl

import (
	"StoneEngine/internal/image"
	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// TextureParams describes how a texture is sampled.
type TextureParams struct {
	MinFilter scene.TextureFilter
	MagFilter scene.TextureFilter
	Wrap      scene.TextureWrap
	Mipmap    bool
}

// MeshBuffers names the GL objects holding one uploaded mesh.
type MeshBuffers struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// LineBuffers holds flattened polylines. Ranges gives the first vertex and the
// vertex count of each polyline.
type LineBuffers struct {
	VAO    uint32
	VBO    uint32
	Ranges [][2]int32
}

// GBufferTargets names the framebuffer and attachments of a G-buffer.
type GBufferTargets struct {
	Framebuffer uint32
	Position    uint32
	Normal      uint32
	AlbedoSpec  uint32
	Depth       uint32
	Width       int32
	Height      int32
}

// Driver is every GL call the renderer makes. gldriver implements it on a
// current OpenGL 4.1 core context.
type Driver interface {
	Init() error

	CompileShader(stage ShaderStage, source string) (uint32, error)
	DeleteShader(id uint32)
	LinkProgram(vertex, fragment uint32) (uint32, error)
	DeleteProgram(id uint32)
	UseProgram(id uint32)

	UniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, v mgl32.Vec3)
	UniformMatrix3(location int32, m mgl32.Mat3)
	UniformMatrix4(location int32, m mgl32.Mat4)
	UniformMatrix4Array(location int32, m []mgl32.Mat4)

	CreateTexture(data *image.Data, params TextureParams) (uint32, error)
	DeleteTexture(id uint32)
	BindTexture(unit uint32, id uint32)

	UploadMesh(vertices []scene.Vertex, indices []uint32) (MeshBuffers, error)
	UploadSkinMesh(vertices []scene.WeightVertex, indices []uint32) (MeshBuffers, error)
	DeleteMeshBuffers(b MeshBuffers)
	DrawElements(mesh MeshBuffers)

	CreateBuffer() (uint32, error)
	UploadInstances(buffer uint32, instances []mgl32.Mat4)
	DrawElementsInstanced(mesh MeshBuffers, instanceBuffer uint32, count int32)
	DeleteBuffer(id uint32)

	UploadLines(lines [][]mgl32.Vec3) (LineBuffers, error)
	DrawLines(b LineBuffers, strip bool)
	DeleteLineBuffers(b LineBuffers)
	SetLineWidth(width float32)
	SetDepthTest(enabled bool)

	CreateGBuffer(width, height int32) (GBufferTargets, error)
	DeleteGBuffer(g GBufferTargets)
	BindFramebuffer(id uint32)
	// PresentGBuffer copies the albedo attachment of g to the default framebuffer.
	PresentGBuffer(g GBufferTargets)
	Clear(color mgl32.Vec3)
	Viewport(width, height int32)
	SetWireframe(enabled bool)
}
