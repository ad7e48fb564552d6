package opengl

import (
	"errors"
	"fmt"

	"StoneEngine/internal/config"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var errNotInitialized = errors.New("opengl renderer is not initialized")

// Renderer draws worlds into a G-buffer with OpenGL 4.1 and presents it.
type Renderer struct {
	driver    Driver
	settings  config.RendererSettings
	resources *Resources
	manager   *scene.RendererObjectManager
	gbuffer   *GBuffer
	frame     Frame

	identityBones []mgl32.Mat4
	initialized   bool
}

var _ scene.Renderer = (*Renderer)(nil)
var _ scene.RendererObjectBuilder = (*Renderer)(nil)

func New(driver Driver, settings config.RendererSettings) *Renderer {
	r := &Renderer{
		driver:    driver,
		settings:  settings,
		resources: NewResources(driver, settings.VertexShaderDir),
	}
	r.manager = scene.NewRendererObjectManager(r)
	r.identityBones = make([]mgl32.Mat4, shader.MaxBones)
	for i := range r.identityBones {
		r.identityBones[i] = mgl32.Ident4()
	}
	return r
}

// Initialize sets up the GL state and the G-buffer. The GL context must be
// current on the calling thread.
func (r *Renderer) Initialize() error {
	if err := r.driver.Init(); err != nil {
		return fmt.Errorf("OpenGL initialization failed: %w", err)
	}
	r.driver.SetWireframe(r.settings.Wireframe)
	r.initialized = true
	if err := r.UpdateFrameSize(r.settings.FrameWidth, r.settings.FrameHeight); err != nil {
		r.initialized = false
		return err
	}
	logger.Log.Info("OpenGL renderer initialized",
		zap.Int32("width", r.settings.FrameWidth),
		zap.Int32("height", r.settings.FrameHeight))
	return nil
}

func (r *Renderer) Resources() *Resources                 { return r.resources }
func (r *Renderer) Manager() *scene.RendererObjectManager { return r.manager }
func (r *Renderer) GBuffer() *GBuffer                     { return r.gbuffer }

// UpdateDataForWorld brings every renderable reachable from world in sync.
func (r *Renderer) UpdateDataForWorld(world *scene.WorldNode) error {
	if !r.initialized {
		return errNotInitialized
	}
	return scene.SyncWorld(world, r.manager)
}

// RenderWorld draws world into the G-buffer and presents it. Entities that
// are not synchronized are skipped.
func (r *Renderer) RenderWorld(world *scene.WorldNode) error {
	if !r.initialized || r.gbuffer == nil {
		return errNotInitialized
	}
	r.gbuffer.Bind()
	c := r.settings.ClearColor
	r.driver.Clear(mgl32.Vec3{c[0], c[1], c[2]})

	r.frame = Frame{renderer: r}
	ctx := scene.NewRenderContext()
	ctx.Backend = &r.frame
	scene.RenderNodes(world, ctx)

	r.gbuffer.Present()
	return nil
}

// LastFrame returns the state of the latest RenderWorld call.
func (r *Renderer) LastFrame() Frame { return r.frame }

// UpdateFrameSize recreates the G-buffer at the new size.
func (r *Renderer) UpdateFrameSize(width, height int32) error {
	if !r.initialized {
		return errNotInitialized
	}
	gbuffer, err := NewGBuffer(r.driver, width, height)
	if err != nil {
		return err
	}
	if r.gbuffer != nil {
		r.gbuffer.Release()
	}
	r.gbuffer = gbuffer
	r.settings.FrameWidth = width
	r.settings.FrameHeight = height
	r.driver.Viewport(width, height)
	return nil
}

// Close releases every renderer object and shared resource. Entities become
// unbound and dirty, so a later sync on a new renderer rebuilds them.
func (r *Renderer) Close() {
	if r.settings.LogTextureStats {
		r.resources.LogStats()
		r.manager.LogStats()
	}
	r.manager.Reset()
	r.resources.Release()
	if r.gbuffer != nil {
		r.gbuffer.Release()
		r.gbuffer = nil
	}
	r.initialized = false
	logger.Log.Info("OpenGL renderer closed")
}

func (r *Renderer) boneMatrices(skeleton *scene.SkeletonNode) []mgl32.Mat4 {
	if skeleton == nil {
		return r.identityBones
	}
	bones := skeleton.BoneMatrices()
	if len(bones) > shader.MaxBones {
		bones = bones[:shader.MaxBones]
	}
	return bones
}

func (r *Renderer) maxTextureUnits() int {
	if r.settings.MaxTextureUnits <= 0 {
		return 32
	}
	return r.settings.MaxTextureUnits
}

func (r *Renderer) BuildMeshNode(node *scene.MeshNode) (scene.RendererObject, error) {
	return &MeshNode{node: node}, nil
}

func (r *Renderer) BuildInstancedMeshNode(node *scene.InstancedMeshNode) (scene.RendererObject, error) {
	obj, err := newInstancedMeshNode(r.driver, node)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildSkinMeshNode(node *scene.SkinMeshNode) (scene.RendererObject, error) {
	return &SkinMeshNode{node: node}, nil
}

func (r *Renderer) BuildWireframeShape(shape *scene.WireframeShape) (scene.RendererObject, error) {
	obj, err := newWireframeShape(r.resources, shape)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildMaterial(material *scene.Material) (scene.RendererObject, error) {
	obj, err := newMaterial(r.resources, material, r.maxTextureUnits())
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildTexture(texture *scene.Texture) (scene.RendererObject, error) {
	obj, err := newTexture(r.resources, texture)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildFragmentShader(fs *scene.FragmentShader) (scene.RendererObject, error) {
	obj, err := newFragmentShader(r.resources, fs)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildMesh(mesh scene.Mesh) (scene.RendererObject, error) {
	obj, err := newMesh(r.driver, mesh)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildSkinMesh(mesh scene.SkinMesh) (scene.RendererObject, error) {
	obj, err := newSkinMesh(r.driver, mesh)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// PrepareProgram links the program for meshType in the collection material
// draws with, the default collection when material is nil.
func (r *Renderer) PrepareProgram(material *scene.Material, meshType scene.MeshType) error {
	var collection *ShaderCollection
	if material == nil {
		c, err := r.resources.DefaultCollection()
		if err != nil {
			return err
		}
		collection = c
	} else {
		obj := scene.GetRendererObject[*Material](material)
		if obj == nil {
			return fmt.Errorf("%w: material %d is not built", scene.ErrResourceCreation, material.ID())
		}
		collection = obj.Collection()
		if collection == nil {
			return fmt.Errorf("%w: material %d has no shader collection", scene.ErrResourceCreation, material.ID())
		}
	}
	_, err := collection.MakeProgram(meshType)
	return err
}
