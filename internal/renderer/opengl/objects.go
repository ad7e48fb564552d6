package opengl

import (
	"fmt"

	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Frame is the OpenGL state of one RenderWorld call, carried by
// RenderContext.Backend.
type Frame struct {
	renderer  *Renderer
	DrawCalls int
}

func frameOf(ctx *scene.RenderContext) *Frame {
	f, _ := ctx.Backend.(*Frame)
	return f
}

// Texture is a GL texture from the renderer's texture cache.
type Texture struct {
	cache *TextureCache
	id    uint32
}

func newTexture(resources *Resources, tex *scene.Texture) (*Texture, error) {
	if tex.Image() == nil {
		return nil, fmt.Errorf("%w: texture has no image", scene.ErrResourceCreation)
	}
	params := TextureParams{
		MinFilter: tex.MinFilter(),
		MagFilter: tex.MagFilter(),
		Wrap:      tex.Wrap(),
		Mipmap:    true,
	}
	id, err := resources.Textures().Acquire(tex.Image(), params)
	if err != nil {
		return nil, err
	}
	return &Texture{cache: resources.Textures(), id: id}, nil
}

func (t *Texture) ID() uint32                  { return t.id }
func (t *Texture) Render(*scene.RenderContext) {}

func (t *Texture) Release() {
	t.cache.Release(t.id)
	t.id = 0
}

// FragmentShader is a user shader compiled and wrapped in its own collection.
type FragmentShader struct {
	resources  *Resources
	collection *ShaderCollection
}

func newFragmentShader(resources *Resources, fs *scene.FragmentShader) (*FragmentShader, error) {
	compiled, err := CompileShader(resources.driver, StageFragment, &fs.AShader)
	if err != nil {
		return nil, err
	}
	return &FragmentShader{
		resources:  resources,
		collection: resources.NewCustomCollection(compiled),
	}, nil
}

func (f *FragmentShader) Collection() *ShaderCollection { return f.collection }
func (f *FragmentShader) Render(*scene.RenderContext)   {}

func (f *FragmentShader) Release() {
	f.resources.ReleaseCustomCollection(f.collection)
}

// Material uploads a material's values to the program drawing it.
type Material struct {
	material   *scene.Material
	params     shader.Parameters
	collection *ShaderCollection
	maxUnits   int
}

func newMaterial(resources *Resources, m *scene.Material, maxUnits int) (*Material, error) {
	obj := &Material{
		material: m,
		params:   shader.FromMaterial(m),
		maxUnits: maxUnits,
	}
	if fs := m.FragmentShader(); fs != nil {
		if scene.GetRendererObject[*FragmentShader](fs) == nil {
			return nil, fmt.Errorf("%w: fragment shader %d is not built", scene.ErrResourceCreation, fs.ID())
		}
		return obj, nil
	}
	c, err := resources.Collection(obj.params)
	if err != nil {
		return nil, err
	}
	obj.collection = c
	return obj, nil
}

// Collection returns the collection of the explicit fragment shader when the
// material has one, or else the generated variant for its parameters.
func (m *Material) Collection() *ShaderCollection {
	if fs := m.material.FragmentShader(); fs != nil {
		if obj := scene.GetRendererObject[*FragmentShader](fs); obj != nil {
			return obj.collection
		}
		return nil
	}
	return m.collection
}

func (m *Material) Parameters() shader.Parameters { return m.params }

// SetUniforms uploads vectors, scalars and textures to program. Textures take
// units in iteration order; the ones past the unit limit are skipped.
func (m *Material) SetUniforms(program *GlShaderProgram) {
	m.material.ForEachVectors(func(loc scene.Location, v mgl32.Vec3) {
		program.SetVec3At(loc, v)
	})
	m.material.ForEachScalars(func(loc scene.Location, v float32) {
		program.SetFloatAt(loc, v)
	})

	unit := 0
	m.material.ForEachTextures(func(loc scene.Location, tex *scene.Texture) {
		obj := scene.GetRendererObject[*Texture](tex)
		if obj == nil {
			return
		}
		if unit >= m.maxUnits {
			if unit == m.maxUnits {
				logger.Log.Warn("Material uses more textures than available units",
					zap.String("material", m.material.Name()),
					zap.Int("units", m.maxUnits))
			}
			unit++
			return
		}
		program.BindTexture(loc, uint32(unit), obj.ID())
		unit++
	})
}

func (m *Material) Render(*scene.RenderContext) {}
func (m *Material) Release()                    {}

// Mesh holds the buffers of an uploaded mesh or skin mesh.
type Mesh struct {
	driver   Driver
	buffers  MeshBuffers
	revision uint64
}

func newMesh(driver Driver, mesh scene.Mesh) (*Mesh, error) {
	buffers, err := driver.UploadMesh(mesh.Vertices(), mesh.Indices())
	if err != nil {
		return nil, fmt.Errorf("%w: upload mesh: %v", scene.ErrResourceCreation, err)
	}
	return &Mesh{driver: driver, buffers: buffers, revision: mesh.Revision()}, nil
}

func newSkinMesh(driver Driver, mesh scene.SkinMesh) (*Mesh, error) {
	buffers, err := driver.UploadSkinMesh(mesh.Vertices(), mesh.Indices())
	if err != nil {
		return nil, fmt.Errorf("%w: upload skin mesh: %v", scene.ErrResourceCreation, err)
	}
	return &Mesh{driver: driver, buffers: buffers, revision: mesh.Revision()}, nil
}

// Revision is the content revision the buffers were uploaded from.
func (m *Mesh) Revision() uint64            { return m.revision }
func (m *Mesh) Buffers() MeshBuffers        { return m.buffers }
func (m *Mesh) Render(*scene.RenderContext) {}

func (m *Mesh) Release() {
	m.driver.DeleteMeshBuffers(m.buffers)
	m.buffers = MeshBuffers{}
}

// drawSetup resolves what a mesh-bearing node needs to draw. It returns false
// when any binding is missing, in which case nothing is drawn.
func drawSetup(ctx *scene.RenderContext, geometry scene.Geometry, material *scene.Material, meshType scene.MeshType) (*Frame, *Mesh, *GlShaderProgram, bool) {
	frame := frameOf(ctx)
	if frame == nil || geometry == nil {
		return nil, nil, nil, false
	}
	mesh := scene.GetRendererObject[*Mesh](geometry)
	if mesh == nil || mesh.buffers.IndexCount == 0 {
		return nil, nil, nil, false
	}

	var program *GlShaderProgram
	var materialObj *Material
	if material != nil {
		materialObj = scene.GetRendererObject[*Material](material)
		if materialObj == nil {
			return nil, nil, nil, false
		}
		if c := materialObj.Collection(); c != nil {
			program = c.Program(meshType)
		}
	} else if c, err := frame.renderer.resources.DefaultCollection(); err == nil {
		program = c.Program(meshType)
	}
	if program == nil {
		return nil, nil, nil, false
	}

	program.Use()
	if materialObj != nil {
		materialObj.SetUniforms(program)
	}
	setFrameUniforms(program, ctx)
	frame.renderer.driver.SetDepthTest(true)
	return frame, mesh, program, true
}

func setFrameUniforms(program *GlShaderProgram, ctx *scene.RenderContext) {
	program.SetMat4(shader.UniformModel, ctx.MVP.Model)
	program.SetMat4(shader.UniformView, ctx.MVP.View)
	program.SetMat4(shader.UniformProjection, ctx.MVP.Projection)
	program.SetMat3(shader.UniformNormalMatrix, ctx.MVP.Model.Mat3().Inv().Transpose())
	program.SetVec3(shader.UniformCameraPosition, ctx.CameraPosition)
}

// MeshNode draws a standard mesh.
type MeshNode struct {
	node *scene.MeshNode
}

func (n *MeshNode) Render(ctx *scene.RenderContext) {
	mesh := n.node.Mesh()
	if mesh == nil {
		return
	}
	frame, m, _, ok := drawSetup(ctx, mesh, n.node.EffectiveMaterial(), scene.MeshTypeStandard)
	if !ok {
		return
	}
	frame.renderer.driver.DrawElements(m.buffers)
	frame.DrawCalls++
}

func (n *MeshNode) Release() {}

// InstancedMeshNode draws its mesh once per instance. The instance buffer is
// refreshed whenever the node's instance list changed since the last upload.
type InstancedMeshNode struct {
	node     *scene.InstancedMeshNode
	driver   Driver
	buffer   uint32
	uploaded uint64
}

func newInstancedMeshNode(driver Driver, node *scene.InstancedMeshNode) (*InstancedMeshNode, error) {
	buffer, err := driver.CreateBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: instance buffer: %v", scene.ErrResourceCreation, err)
	}
	return &InstancedMeshNode{node: node, driver: driver, buffer: buffer}, nil
}

func (n *InstancedMeshNode) Render(ctx *scene.RenderContext) {
	mesh := n.node.Mesh()
	if mesh == nil || n.node.InstanceCount() == 0 {
		return
	}
	frame, m, _, ok := drawSetup(ctx, mesh, n.node.EffectiveMaterial(), scene.MeshTypeInstanced)
	if !ok {
		return
	}
	if n.uploaded != n.node.InstancesRevision() {
		n.driver.UploadInstances(n.buffer, n.node.Instances())
		n.uploaded = n.node.InstancesRevision()
	}
	n.driver.DrawElementsInstanced(m.buffers, n.buffer, int32(n.node.InstanceCount()))
	frame.DrawCalls++
}

func (n *InstancedMeshNode) Release() {
	n.driver.DeleteBuffer(n.buffer)
	n.buffer = 0
}

// SkinMeshNode draws a skin mesh posed by the node's skeleton.
type SkinMeshNode struct {
	node *scene.SkinMeshNode
}

func (n *SkinMeshNode) Render(ctx *scene.RenderContext) {
	mesh := n.node.SkinMesh()
	if mesh == nil {
		return
	}
	frame, m, program, ok := drawSetup(ctx, mesh, n.node.EffectiveMaterial(), scene.MeshTypeSkin)
	if !ok {
		return
	}
	program.SetMat4Array(shader.UniformBones, frame.renderer.boneMatrices(n.node.Skeleton()))
	frame.renderer.driver.DrawElements(m.buffers)
	frame.DrawCalls++
}

func (n *SkinMeshNode) Release() {}

// WireframeShape draws the shape's polylines with the line program.
type WireframeShape struct {
	shape   *scene.WireframeShape
	driver  Driver
	program *GlShaderProgram
	lines   LineBuffers
}

func newWireframeShape(resources *Resources, shape *scene.WireframeShape) (*WireframeShape, error) {
	program, err := resources.LineProgram()
	if err != nil {
		return nil, err
	}
	lines, err := resources.driver.UploadLines(shape.Points())
	if err != nil {
		return nil, fmt.Errorf("%w: upload lines: %v", scene.ErrResourceCreation, err)
	}
	return &WireframeShape{shape: shape, driver: resources.driver, program: program, lines: lines}, nil
}

func (w *WireframeShape) Render(ctx *scene.RenderContext) {
	frame := frameOf(ctx)
	if frame == nil || len(w.lines.Ranges) == 0 {
		return
	}
	w.program.Use()
	w.program.SetMat4(shader.UniformModel, ctx.MVP.Model)
	w.program.SetMat4(shader.UniformView, ctx.MVP.View)
	w.program.SetMat4(shader.UniformProjection, ctx.MVP.Projection)
	w.program.SetVec3(shader.UniformLineColor, w.shape.Color())

	w.driver.SetLineWidth(w.shape.Thickness())
	w.driver.SetDepthTest(!w.shape.IgnoreDepth())
	w.driver.DrawLines(w.lines, w.shape.DrawLine())
	w.driver.SetDepthTest(true)
	frame.DrawCalls++
}

func (w *WireframeShape) Release() {
	w.driver.DeleteLineBuffers(w.lines)
	w.lines = LineBuffers{}
}
