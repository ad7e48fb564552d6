package vulkan

import (
	"errors"
	"fmt"

	"StoneEngine/internal/config"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"github.com/xlab/linmath"
	"go.uber.org/zap"
)

var errNotInitialized = errors.New("vulkan renderer is not initialized")

// Renderer keeps scene entities in sync with Vulkan resources and turns each
// rendered world into a Frame handed to the frame sink.
type Renderer struct {
	device   Device
	settings config.RendererSettings
	shaders  *ShaderCache
	manager  *scene.RendererObjectManager
	targets  *Targets
	sink     FrameSink
	frame    Frame

	initialized bool
}

var _ scene.Renderer = (*Renderer)(nil)
var _ scene.RendererObjectBuilder = (*Renderer)(nil)

// New creates a renderer on device. A nil compile uses NagaCompiler.
func New(device Device, compile Compiler, settings config.RendererSettings) *Renderer {
	r := &Renderer{
		device:   device,
		settings: settings,
		shaders:  NewShaderCache(device, compile, settings.VertexShaderDir),
	}
	r.manager = scene.NewRendererObjectManager(r)
	return r
}

func (r *Renderer) SetFrameSink(sink FrameSink) { r.sink = sink }

func (r *Renderer) Shaders() *ShaderCache                 { return r.shaders }
func (r *Renderer) Manager() *scene.RendererObjectManager { return r.manager }
func (r *Renderer) Targets() *Targets                     { return r.targets }

func (r *Renderer) Initialize() error {
	if r.device == nil {
		return errors.New("vulkan renderer has no device")
	}
	r.initialized = true
	if err := r.UpdateFrameSize(r.settings.FrameWidth, r.settings.FrameHeight); err != nil {
		r.initialized = false
		return err
	}
	logger.Log.Info("Vulkan renderer initialized",
		zap.Int32("width", r.settings.FrameWidth),
		zap.Int32("height", r.settings.FrameHeight))
	return nil
}

// UpdateDataForWorld brings every renderable reachable from world in sync.
func (r *Renderer) UpdateDataForWorld(world *scene.WorldNode) error {
	if !r.initialized {
		return errNotInitialized
	}
	return scene.SyncWorld(world, r.manager)
}

// RenderWorld collects the draws of world and submits them to the frame
// sink when one is set.
func (r *Renderer) RenderWorld(world *scene.WorldNode) error {
	if !r.initialized || r.targets == nil {
		return errNotInitialized
	}
	c := r.settings.ClearColor
	r.frame = Frame{
		renderer:   r,
		Width:      r.targets.Width,
		Height:     r.targets.Height,
		ClearColor: linmath.Vec3{c[0], c[1], c[2]},
		Targets:    r.targets,
	}
	ctx := scene.NewRenderContext()
	ctx.Backend = &r.frame
	scene.RenderNodes(world, ctx)

	if r.sink == nil {
		return nil
	}
	if err := r.sink.Submit(&r.frame); err != nil {
		return fmt.Errorf("submit frame: %w", err)
	}
	return nil
}

// LastFrame returns the frame built by the latest RenderWorld call.
func (r *Renderer) LastFrame() *Frame { return &r.frame }

// UpdateFrameSize recreates the offscreen targets. The old targets are kept
// when the new ones cannot be created.
func (r *Renderer) UpdateFrameSize(width, height int32) error {
	if !r.initialized {
		return errNotInitialized
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	r.device.WaitIdle()
	targets, err := newTargets(r.device, width, height)
	if err != nil {
		return fmt.Errorf("%w: frame targets: %v", scene.ErrResourceCreation, err)
	}
	if r.targets != nil {
		r.targets.Release()
	}
	r.targets = targets
	r.settings.FrameWidth = width
	r.settings.FrameHeight = height
	return nil
}

// Close releases every renderer object and module. Entities become unbound
// and dirty.
func (r *Renderer) Close() {
	if r.device != nil {
		r.device.WaitIdle()
	}
	if r.settings.LogTextureStats {
		r.manager.LogStats()
		logger.Log.Info("Vulkan shader cache", zap.Int("fragmentVariants", r.shaders.FragmentCount()))
	}
	r.manager.Reset()
	r.shaders.Release()
	if r.targets != nil {
		r.targets.Release()
		r.targets = nil
	}
	r.initialized = false
	logger.Log.Info("Vulkan renderer closed")
}

func (r *Renderer) BuildMeshNode(node *scene.MeshNode) (scene.RendererObject, error) {
	return &MeshNode{node: node}, nil
}

func (r *Renderer) BuildInstancedMeshNode(node *scene.InstancedMeshNode) (scene.RendererObject, error) {
	return &InstancedMeshNode{node: node, device: r.device}, nil
}

func (r *Renderer) BuildSkinMeshNode(node *scene.SkinMeshNode) (scene.RendererObject, error) {
	return &SkinMeshNode{node: node}, nil
}

func (r *Renderer) BuildWireframeShape(shape *scene.WireframeShape) (scene.RendererObject, error) {
	obj, err := newWireframeShape(r.device, shape)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildMaterial(material *scene.Material) (scene.RendererObject, error) {
	obj, err := newMaterial(r.shaders, material)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildTexture(texture *scene.Texture) (scene.RendererObject, error) {
	obj, err := newTexture(r.device, texture)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildFragmentShader(fs *scene.FragmentShader) (scene.RendererObject, error) {
	obj, err := newShader(r.device, r.shaders.compile, fs)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildMesh(mesh scene.Mesh) (scene.RendererObject, error) {
	obj, err := newMesh(r.device, mesh)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *Renderer) BuildSkinMesh(mesh scene.SkinMesh) (scene.RendererObject, error) {
	obj, err := newSkinMesh(r.device, mesh)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// PrepareProgram makes sure the vertex module for meshType and the fragment
// module material draws with exist.
func (r *Renderer) PrepareProgram(material *scene.Material, meshType scene.MeshType) error {
	if _, err := r.shaders.Vertex(meshType); err != nil {
		return err
	}
	if material == nil {
		_, err := r.shaders.Fragment(shader.Parameters{})
		return err
	}
	obj := scene.GetRendererObject[*Material](material)
	if obj == nil {
		return fmt.Errorf("%w: material %d is not built", scene.ErrResourceCreation, material.ID())
	}
	if obj.Module() == nil {
		return fmt.Errorf("%w: material %d has no fragment module", scene.ErrResourceCreation, material.ID())
	}
	return nil
}
