package vulkan

import (
	"fmt"
	"os"

	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/linmath"
)

// Texture is a sampled image created from a texture's image source.
type Texture struct {
	image Resource
}

func newTexture(device Device, tex *scene.Texture) (*Texture, error) {
	if tex.Image() == nil {
		return nil, fmt.Errorf("%w: texture has no image", scene.ErrResourceCreation)
	}
	data, err := tex.Image().LoadedImage(true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scene.ErrResourceCreation, err)
	}
	size := data.Size()
	if size.Empty() {
		return nil, fmt.Errorf("%w: image %s is empty", scene.ErrResourceCreation, tex.Image().Path())
	}
	img, err := device.CreateImage(ImageDesc{
		Width:     int32(size.Width),
		Height:    int32(size.Height),
		Channels:  data.Channels(),
		Pixels:    data.Pixels(),
		Usage:     ImageSampled,
		MinFilter: tex.MinFilter(),
		MagFilter: tex.MagFilter(),
		Wrap:      tex.Wrap(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create image: %v", scene.ErrResourceCreation, err)
	}
	return &Texture{image: img}, nil
}

func (t *Texture) Image() Resource             { return t.image }
func (t *Texture) Render(*scene.RenderContext) {}

func (t *Texture) Release() {
	if t.image != nil {
		t.image.Destroy()
		t.image = nil
	}
}

// Shader is the module of a user fragment shader. WGSL source is compiled;
// compiled content must already be SPIR-V.
type Shader struct {
	module Resource
}

func shaderCode(compile Compiler, s *scene.AShader) ([]uint32, error) {
	kind, content := s.Content()
	switch kind {
	case scene.ShaderSourceCode:
		return compile(content)
	case scene.ShaderSourceFile:
		source, err := os.ReadFile(content)
		if err != nil {
			return nil, err
		}
		return compile(string(source))
	case scene.ShaderCompiledCode:
		return SPIRVWords(s.CompiledCode())
	case scene.ShaderCompiledFile:
		code, err := os.ReadFile(content)
		if err != nil {
			return nil, err
		}
		return SPIRVWords(code)
	}
	return nil, fmt.Errorf("unknown shader content %s", kind)
}

func newShader(device Device, compile Compiler, fs *scene.FragmentShader) (*Shader, error) {
	code, err := shaderCode(compile, &fs.AShader)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment shader %d: %v", scene.ErrResourceCreation, fs.ID(), err)
	}
	module, err := device.CreateShaderModule(code)
	if err != nil {
		return nil, fmt.Errorf("%w: shader module: %v", scene.ErrResourceCreation, err)
	}
	return &Shader{module: module}, nil
}

func (s *Shader) Module() Resource            { return s.module }
func (s *Shader) Render(*scene.RenderContext) {}

func (s *Shader) Release() {
	if s.module != nil {
		s.module.Destroy()
		s.module = nil
	}
}

// Material selects the fragment module a material draws with and records its
// values into draw commands.
type Material struct {
	material *scene.Material
	params   shader.Parameters
	variant  Resource
}

func newMaterial(shaders *ShaderCache, m *scene.Material) (*Material, error) {
	obj := &Material{material: m, params: shader.FromMaterial(m)}
	if fs := m.FragmentShader(); fs != nil {
		if scene.GetRendererObject[*Shader](fs) == nil {
			return nil, fmt.Errorf("%w: fragment shader %d is not built", scene.ErrResourceCreation, fs.ID())
		}
		return obj, nil
	}
	variant, err := shaders.Fragment(obj.params)
	if err != nil {
		return nil, err
	}
	obj.variant = variant
	return obj, nil
}

// Module returns the explicit shader's module when the material has one and
// the generated variant otherwise.
func (m *Material) Module() Resource {
	if fs := m.material.FragmentShader(); fs != nil {
		if obj := scene.GetRendererObject[*Shader](fs); obj != nil {
			return obj.module
		}
		return nil
	}
	return m.variant
}

func (m *Material) Parameters() shader.Parameters { return m.params }

func (m *Material) record(cmd *DrawCommand) {
	m.material.ForEachVectors(func(loc scene.Location, v mgl32.Vec3) {
		cmd.Vectors = append(cmd.Vectors, VectorBinding{Location: loc, Value: linmath.Vec3{v[0], v[1], v[2]}})
	})
	m.material.ForEachScalars(func(loc scene.Location, v float32) {
		cmd.Scalars = append(cmd.Scalars, ScalarBinding{Location: loc, Value: v})
	})
	m.material.ForEachTextures(func(loc scene.Location, tex *scene.Texture) {
		if obj := scene.GetRendererObject[*Texture](tex); obj != nil {
			cmd.Textures = append(cmd.Textures, TextureBinding{Location: loc, Image: obj.image})
		}
	})
}

func (m *Material) Render(*scene.RenderContext) {}
func (m *Material) Release()                    {}

// Mesh holds the vertex and index buffers of a mesh or skin mesh.
type Mesh struct {
	vertices   Resource
	indices    Resource
	indexCount int32
	revision   uint64
}

func uploadGeometry(device Device, vertexData []byte, indices []uint32, revision uint64) (*Mesh, error) {
	if len(vertexData) == 0 || len(indices) == 0 {
		return &Mesh{revision: revision}, nil
	}
	vb, err := device.CreateBuffer(BufferVertex, vertexData)
	if err != nil {
		return nil, fmt.Errorf("%w: vertex buffer: %v", scene.ErrResourceCreation, err)
	}
	ib, err := device.CreateBuffer(BufferIndex, sliceBytes(indices))
	if err != nil {
		vb.Destroy()
		return nil, fmt.Errorf("%w: index buffer: %v", scene.ErrResourceCreation, err)
	}
	return &Mesh{vertices: vb, indices: ib, indexCount: int32(len(indices)), revision: revision}, nil
}

func newMesh(device Device, mesh scene.Mesh) (*Mesh, error) {
	return uploadGeometry(device, sliceBytes(mesh.Vertices()), mesh.Indices(), mesh.Revision())
}

func newSkinMesh(device Device, mesh scene.SkinMesh) (*Mesh, error) {
	return uploadGeometry(device, sliceBytes(mesh.Vertices()), mesh.Indices(), mesh.Revision())
}

func (m *Mesh) Revision() uint64            { return m.revision }
func (m *Mesh) IndexCount() int32           { return m.indexCount }
func (m *Mesh) Render(*scene.RenderContext) {}

func (m *Mesh) Release() {
	if m.vertices != nil {
		m.vertices.Destroy()
		m.indices.Destroy()
	}
	m.vertices, m.indices, m.indexCount = nil, nil, 0
}

func toLinmath(m mgl32.Mat4) linmath.Mat4x4 {
	var out linmath.Mat4x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = m[i*4+j]
		}
	}
	return out
}

// drawCommand resolves the bindings of a mesh-bearing node into a draw
// record. It returns false when anything needed is missing.
func drawCommand(ctx *scene.RenderContext, name string, geometry scene.Geometry, material *scene.Material, meshType scene.MeshType) (*Frame, DrawCommand, bool) {
	frame := frameOf(ctx)
	if frame == nil || geometry == nil {
		return nil, DrawCommand{}, false
	}
	mesh := scene.GetRendererObject[*Mesh](geometry)
	if mesh == nil || mesh.indexCount == 0 {
		return nil, DrawCommand{}, false
	}
	shaders := frame.renderer.shaders
	vertex := shaders.vertex[meshType]

	var fragment Resource
	var materialObj *Material
	if material != nil {
		if materialObj = scene.GetRendererObject[*Material](material); materialObj == nil {
			return nil, DrawCommand{}, false
		}
		fragment = materialObj.Module()
	} else {
		fragment = shaders.fragments[shader.Parameters{}]
	}
	if vertex == nil || fragment == nil {
		return nil, DrawCommand{}, false
	}

	cmd := DrawCommand{
		Node:           name,
		MeshType:       meshType,
		Vertex:         vertex,
		Fragment:       fragment,
		VertexBuffer:   mesh.vertices,
		IndexBuffer:    mesh.indices,
		IndexCount:     mesh.indexCount,
		InstanceCount:  1,
		Model:          toLinmath(ctx.MVP.Model),
		View:           toLinmath(ctx.MVP.View),
		Projection:     toLinmath(ctx.MVP.Projection),
		CameraPosition: linmath.Vec3{ctx.CameraPosition[0], ctx.CameraPosition[1], ctx.CameraPosition[2]},
	}
	var viewProjection linmath.Mat4x4
	viewProjection.Mult(&cmd.Projection, &cmd.View)
	cmd.MVP.Mult(&viewProjection, &cmd.Model)
	if materialObj != nil {
		materialObj.record(&cmd)
	}
	return frame, cmd, true
}

// MeshNode records a standard mesh draw.
type MeshNode struct {
	node *scene.MeshNode
}

func (n *MeshNode) Render(ctx *scene.RenderContext) {
	mesh := n.node.Mesh()
	if mesh == nil {
		return
	}
	frame, cmd, ok := drawCommand(ctx, n.node.Name(), mesh, n.node.EffectiveMaterial(), scene.MeshTypeStandard)
	if !ok {
		return
	}
	frame.Draws = append(frame.Draws, cmd)
}

func (n *MeshNode) Release() {}

// InstancedMeshNode owns the instance buffer of its node, recreated whenever
// the node's instance list changed since the last upload.
type InstancedMeshNode struct {
	node     *scene.InstancedMeshNode
	device   Device
	buffer   Resource
	uploaded uint64
}

func (n *InstancedMeshNode) Render(ctx *scene.RenderContext) {
	mesh := n.node.Mesh()
	if mesh == nil || n.node.InstanceCount() == 0 {
		return
	}
	frame, cmd, ok := drawCommand(ctx, n.node.Name(), mesh, n.node.EffectiveMaterial(), scene.MeshTypeInstanced)
	if !ok {
		return
	}
	if n.buffer == nil || n.uploaded != n.node.InstancesRevision() {
		buffer, err := n.device.CreateBuffer(BufferInstance, sliceBytes(n.node.Instances()))
		if err != nil {
			frame.Failures++
			return
		}
		n.Release()
		n.buffer = buffer
		n.uploaded = n.node.InstancesRevision()
	}
	cmd.InstanceBuffer = n.buffer
	cmd.InstanceCount = int32(n.node.InstanceCount())
	frame.Draws = append(frame.Draws, cmd)
}

func (n *InstancedMeshNode) Release() {
	if n.buffer != nil {
		n.buffer.Destroy()
		n.buffer = nil
	}
}

// SkinMeshNode records a skin mesh draw with the skeleton's bone matrices.
type SkinMeshNode struct {
	node *scene.SkinMeshNode
}

func (n *SkinMeshNode) Render(ctx *scene.RenderContext) {
	mesh := n.node.SkinMesh()
	if mesh == nil {
		return
	}
	frame, cmd, ok := drawCommand(ctx, n.node.Name(), mesh, n.node.EffectiveMaterial(), scene.MeshTypeSkin)
	if !ok {
		return
	}
	if skeleton := n.node.Skeleton(); skeleton != nil {
		bones := skeleton.BoneMatrices()
		if len(bones) > shader.MaxBones {
			bones = bones[:shader.MaxBones]
		}
		cmd.Bones = make([]linmath.Mat4x4, len(bones))
		for i, b := range bones {
			cmd.Bones[i] = toLinmath(b)
		}
	}
	frame.Draws = append(frame.Draws, cmd)
}

func (n *SkinMeshNode) Release() {}

// WireframeShape owns the point buffer of a wireframe shape.
type WireframeShape struct {
	shape  *scene.WireframeShape
	points Resource
	ranges [][2]int32
}

func newWireframeShape(device Device, shape *scene.WireframeShape) (*WireframeShape, error) {
	var points []mgl32.Vec3
	w := &WireframeShape{shape: shape}
	for _, line := range shape.Points() {
		w.ranges = append(w.ranges, [2]int32{int32(len(points)), int32(len(line))})
		points = append(points, line...)
	}
	if len(points) == 0 {
		return w, nil
	}
	buffer, err := device.CreateBuffer(BufferVertex, sliceBytes(points))
	if err != nil {
		return nil, fmt.Errorf("%w: line buffer: %v", scene.ErrResourceCreation, err)
	}
	w.points = buffer
	return w, nil
}

func (w *WireframeShape) Render(ctx *scene.RenderContext) {
	frame := frameOf(ctx)
	if frame == nil || w.points == nil {
		return
	}
	c := w.shape.Color()
	cmd := LineCommand{
		Node:        w.shape.Name(),
		Points:      w.points,
		Ranges:      w.ranges,
		Strip:       w.shape.DrawLine(),
		Color:       linmath.Vec3{c[0], c[1], c[2]},
		Thickness:   w.shape.Thickness(),
		IgnoreDepth: w.shape.IgnoreDepth(),
	}
	model := toLinmath(ctx.MVP.Model)
	view := toLinmath(ctx.MVP.View)
	projection := toLinmath(ctx.MVP.Projection)
	var viewProjection linmath.Mat4x4
	viewProjection.Mult(&projection, &view)
	cmd.MVP.Mult(&viewProjection, &model)
	frame.Lines = append(frame.Lines, cmd)
}

func (w *WireframeShape) Release() {
	if w.points != nil {
		w.points.Destroy()
		w.points = nil
	}
}
