// Package gldriver implements opengl.Driver on an OpenGL 4.1 core context
// with go-gl. Every method must run on the thread owning the context.
package gldriver

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"StoneEngine/internal/image"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/renderer/opengl"
	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	vertexSize       = int32(unsafe.Sizeof(scene.Vertex{}))
	weightVertexSize = int32(unsafe.Sizeof(scene.WeightVertex{}))
	mat4Size         = int32(unsafe.Sizeof(mgl32.Mat4{}))
)

type Driver struct{}

var _ opengl.Driver = (*Driver)(nil)

func New() *Driver { return &Driver{} }

func (d *Driver) Init() error {
	if err := gl.Init(); err != nil {
		return err
	}
	logger.Log.Info("OpenGL context ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))
	return nil
}

func (d *Driver) CompileShader(stage opengl.ShaderStage, source string) (uint32, error) {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == opengl.StageFragment {
		shaderType = gl.FRAGMENT_SHADER
	}
	id := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, cSources, nil)
	free()
	gl.CompileShader(id)

	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(id, logLength, nil, gl.Str(log))
		gl.DeleteShader(id)

		log = strings.TrimRight(log, "\x00")
		logger.Log.Error("Failed to compile", zap.Stringer("stage", stage), zap.String("log", log))
		return 0, fmt.Errorf("compile %s shader: %s", stage, log)
	}
	return id, nil
}

func (d *Driver) DeleteShader(id uint32) { gl.DeleteShader(id) }

func (d *Driver) LinkProgram(vertex, fragment uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertex)
	gl.AttachShader(program, fragment)
	gl.LinkProgram(program)
	gl.DetachShader(program, vertex)
	gl.DetachShader(program, fragment)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		log = strings.TrimRight(log, "\x00")
		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("link program: %s", log)
	}
	return program, nil
}

func (d *Driver) DeleteProgram(id uint32) { gl.DeleteProgram(id) }
func (d *Driver) UseProgram(id uint32)    { gl.UseProgram(id) }

func (d *Driver) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Driver) Uniform1i(location int32, v int32)      { gl.Uniform1i(location, v) }
func (d *Driver) Uniform1f(location int32, v float32)    { gl.Uniform1f(location, v) }
func (d *Driver) Uniform3f(location int32, v mgl32.Vec3) { gl.Uniform3f(location, v[0], v[1], v[2]) }

func (d *Driver) UniformMatrix3(location int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(location, 1, false, &m[0])
}

func (d *Driver) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Driver) UniformMatrix4Array(location int32, m []mgl32.Mat4) {
	if len(m) == 0 {
		return
	}
	gl.UniformMatrix4fv(location, int32(len(m)), false, &m[0][0])
}

func textureFormat(c image.Channel) (internal int32, format uint32) {
	switch c {
	case image.Grey:
		return gl.R8, gl.RED
	case image.Dual:
		return gl.RG8, gl.RG
	case image.RGB:
		return gl.RGB8, gl.RGB
	default:
		return gl.RGBA8, gl.RGBA
	}
}

func textureFilter(f scene.TextureFilter, mipmap bool) int32 {
	switch f {
	case scene.FilterNearest:
		if mipmap {
			return gl.NEAREST_MIPMAP_NEAREST
		}
		return gl.NEAREST
	default:
		if mipmap {
			return gl.LINEAR_MIPMAP_LINEAR
		}
		return gl.LINEAR
	}
}

func textureWrap(w scene.TextureWrap) int32 {
	switch w {
	case scene.WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case scene.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case scene.WrapClampToBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.REPEAT
	}
}

func (d *Driver) CreateTexture(data *image.Data, params opengl.TextureParams) (uint32, error) {
	size := data.Size()
	if size.Empty() || len(data.Pixels()) == 0 {
		return 0, errors.New("empty image")
	}
	internal, format := textureFormat(data.Channels())

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D, 0, internal,
		int32(size.Width), int32(size.Height),
		0, format, gl.UNSIGNED_BYTE, gl.Ptr(data.Pixels()))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, textureFilter(params.MinFilter, params.Mipmap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, textureFilter(params.MagFilter, false))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, textureWrap(params.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, textureWrap(params.Wrap))
	if params.Mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return textureID, nil
}

func (d *Driver) DeleteTexture(id uint32) { gl.DeleteTextures(1, &id) }

func (d *Driver) BindTexture(unit uint32, id uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, id)
}

func floatAttrib(index uint32, size int32, stride int32, offset uintptr) {
	gl.VertexAttribPointer(index, size, gl.FLOAT, false, stride, gl.PtrOffset(int(offset)))
	gl.EnableVertexAttribArray(index)
}

func vertexAttribs(stride int32) {
	var v scene.Vertex
	floatAttrib(shader.AttribPosition, 3, stride, unsafe.Offsetof(v.Position))
	floatAttrib(shader.AttribNormal, 3, stride, unsafe.Offsetof(v.Normal))
	floatAttrib(shader.AttribTangent, 3, stride, unsafe.Offsetof(v.Tangent))
	floatAttrib(shader.AttribBitangent, 3, stride, unsafe.Offsetof(v.Bitangent))
	floatAttrib(shader.AttribUV, 2, stride, unsafe.Offsetof(v.UV))
}

func (d *Driver) uploadElements(vertexData unsafe.Pointer, vertexBytes int, indices []uint32) opengl.MeshBuffers {
	var b opengl.MeshBuffers
	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)

	gl.GenBuffers(1, &b.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, vertexBytes, vertexData, gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.EBO)
	if len(indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	}
	b.IndexCount = int32(len(indices))
	return b
}

func (d *Driver) UploadMesh(vertices []scene.Vertex, indices []uint32) (opengl.MeshBuffers, error) {
	var data unsafe.Pointer
	if len(vertices) > 0 {
		data = unsafe.Pointer(&vertices[0])
	}
	b := d.uploadElements(data, len(vertices)*int(vertexSize), indices)
	vertexAttribs(vertexSize)
	gl.BindVertexArray(0)
	return b, nil
}

func (d *Driver) UploadSkinMesh(vertices []scene.WeightVertex, indices []uint32) (opengl.MeshBuffers, error) {
	var data unsafe.Pointer
	if len(vertices) > 0 {
		data = unsafe.Pointer(&vertices[0])
	}
	b := d.uploadElements(data, len(vertices)*int(weightVertexSize), indices)
	vertexAttribs(weightVertexSize)

	var v scene.WeightVertex
	floatAttrib(shader.AttribBoneWeights, 4, weightVertexSize, unsafe.Offsetof(v.Weights))
	gl.VertexAttribIPointer(shader.AttribBoneIDs, 4, gl.UNSIGNED_INT, weightVertexSize, gl.PtrOffset(int(unsafe.Offsetof(v.BoneIDs))))
	gl.EnableVertexAttribArray(shader.AttribBoneIDs)
	gl.BindVertexArray(0)
	return b, nil
}

func (d *Driver) DeleteMeshBuffers(b opengl.MeshBuffers) {
	gl.DeleteBuffers(1, &b.VBO)
	gl.DeleteBuffers(1, &b.EBO)
	gl.DeleteVertexArrays(1, &b.VAO)
}

func (d *Driver) DrawElements(mesh opengl.MeshBuffers) {
	gl.BindVertexArray(mesh.VAO)
	gl.DrawElements(gl.TRIANGLES, mesh.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Driver) CreateBuffer() (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, errors.New("glGenBuffers returned no buffer")
	}
	return id, nil
}

func (d *Driver) UploadInstances(buffer uint32, instances []mgl32.Mat4) {
	if len(instances) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.BufferData(gl.ARRAY_BUFFER, len(instances)*int(mat4Size), gl.Ptr(instances), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// DrawElementsInstanced points the instance attributes of the mesh VAO at
// instanceBuffer before drawing, so several nodes can share one mesh.
func (d *Driver) DrawElementsInstanced(mesh opengl.MeshBuffers, instanceBuffer uint32, count int32) {
	gl.BindVertexArray(mesh.VAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, instanceBuffer)
	for i := uint32(0); i < 4; i++ {
		index := shader.AttribInstance + i
		gl.EnableVertexAttribArray(index)
		gl.VertexAttribPointer(index, 4, gl.FLOAT, false, mat4Size, gl.PtrOffset(int(i)*16))
		gl.VertexAttribDivisor(index, 1)
	}
	gl.DrawElementsInstanced(gl.TRIANGLES, mesh.IndexCount, gl.UNSIGNED_INT, nil, count)
	gl.BindVertexArray(0)
}

func (d *Driver) DeleteBuffer(id uint32) { gl.DeleteBuffers(1, &id) }

func (d *Driver) UploadLines(lines [][]mgl32.Vec3) (opengl.LineBuffers, error) {
	var points []mgl32.Vec3
	b := opengl.LineBuffers{}
	for _, line := range lines {
		b.Ranges = append(b.Ranges, [2]int32{int32(len(points)), int32(len(line))})
		points = append(points, line...)
	}

	gl.GenVertexArrays(1, &b.VAO)
	gl.BindVertexArray(b.VAO)
	gl.GenBuffers(1, &b.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.VBO)
	if len(points) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(points)*12, gl.Ptr(points), gl.STATIC_DRAW)
	}
	floatAttrib(shader.AttribPosition, 3, 12, 0)
	gl.BindVertexArray(0)
	return b, nil
}

func (d *Driver) DrawLines(b opengl.LineBuffers, strip bool) {
	mode := uint32(gl.POINTS)
	if strip {
		mode = gl.LINE_STRIP
	}
	gl.BindVertexArray(b.VAO)
	for _, r := range b.Ranges {
		gl.DrawArrays(mode, r[0], r[1])
	}
	gl.BindVertexArray(0)
}

func (d *Driver) DeleteLineBuffers(b opengl.LineBuffers) {
	gl.DeleteBuffers(1, &b.VBO)
	gl.DeleteVertexArrays(1, &b.VAO)
}

func (d *Driver) SetLineWidth(width float32) {
	gl.LineWidth(width)
	gl.PointSize(width)
}

func (d *Driver) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LESS)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}

func gbufferTarget(internal int32, format, xtype uint32, width, height int32, attachment uint32) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, width, height, 0, format, xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, id, 0)
	return id
}

func (d *Driver) CreateGBuffer(width, height int32) (opengl.GBufferTargets, error) {
	g := opengl.GBufferTargets{Width: width, Height: height}
	gl.GenFramebuffers(1, &g.Framebuffer)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.Framebuffer)

	g.Position = gbufferTarget(gl.RGB16F, gl.RGB, gl.FLOAT, width, height, gl.COLOR_ATTACHMENT0)
	g.Normal = gbufferTarget(gl.RGB16F, gl.RGB, gl.FLOAT, width, height, gl.COLOR_ATTACHMENT1)
	g.AlbedoSpec = gbufferTarget(gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, width, height, gl.COLOR_ATTACHMENT2)
	attachments := []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1, gl.COLOR_ATTACHMENT2}
	gl.DrawBuffers(int32(len(attachments)), &attachments[0])

	gl.GenRenderbuffers(1, &g.Depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.Depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, width, height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, g.Depth)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		d.DeleteGBuffer(g)
		return opengl.GBufferTargets{}, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return g, nil
}

func (d *Driver) DeleteGBuffer(g opengl.GBufferTargets) {
	textures := []uint32{g.Position, g.Normal, g.AlbedoSpec}
	gl.DeleteTextures(int32(len(textures)), &textures[0])
	gl.DeleteRenderbuffers(1, &g.Depth)
	gl.DeleteFramebuffers(1, &g.Framebuffer)
}

func (d *Driver) BindFramebuffer(id uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, id) }

func (d *Driver) PresentGBuffer(g opengl.GBufferTargets) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, g.Framebuffer)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT2)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, g.Width, g.Height, 0, 0, g.Width, g.Height, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *Driver) Clear(color mgl32.Vec3) {
	gl.ClearColor(color[0], color[1], color[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Driver) Viewport(width, height int32) { gl.Viewport(0, 0, width, height) }

func (d *Driver) SetWireframe(enabled bool) {
	if enabled {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}
