// Package engine owns the window and drives the per-frame loop around a
// scene.Renderer.
package engine

import (
	"fmt"
	"runtime"
	"strings"

	"StoneEngine/internal/behaviour"
	"StoneEngine/internal/config"
	"StoneEngine/internal/logger"
	"StoneEngine/internal/renderer/opengl"
	"StoneEngine/internal/renderer/opengl/gldriver"
	"StoneEngine/internal/renderer/vulkan"
	"StoneEngine/internal/renderer/vulkan/vkdevice"
	"StoneEngine/internal/scene"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

type Backend int

const (
	OPENGL Backend = iota
	VULKAN
)

func (b Backend) String() string {
	switch b {
	case OPENGL:
		return config.BackendOpenGL
	case VULKAN:
		return config.BackendVulkan
	}
	return fmt.Sprintf("Backend(%d)", int(b))
}

func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case config.BackendOpenGL, "gl":
		return OPENGL, nil
	case config.BackendVulkan, "vk":
		return VULKAN, nil
	}
	return 0, fmt.Errorf("unknown renderer backend %q", name)
}

// fixedUpdateFrames is how many rendered frames pass between fixed updates.
const fixedUpdateFrames = 2

type Engine struct {
	Settings   config.Settings
	World      *scene.WorldNode
	Behaviours *behaviour.Manager
	// EnableCameraInput attaches a FlyCamera to the active camera on Run.
	EnableCameraInput bool

	backend          Backend
	renderer         scene.Renderer
	window           *glfw.Window
	device           *vkdevice.Device
	width            int32
	height           int32
	frameTrackID     int
	onRenderCallback func(deltaTime float64)
}

func New(settings config.Settings, world *scene.WorldNode) (*Engine, error) {
	backend, err := ParseBackend(settings.Renderer.Backend)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Settings:   settings,
		World:      world,
		Behaviours: behaviour.NewManager(),
		backend:    backend,
		width:      settings.Renderer.FrameWidth,
		height:     settings.Renderer.FrameHeight,

		EnableCameraInput: true,
	}, nil
}

func (e *Engine) Backend() Backend          { return e.backend }
func (e *Engine) Renderer() scene.Renderer  { return e.renderer }
func (e *Engine) Window() *glfw.Window      { return e.window }
func (e *Engine) FrameSize() (int32, int32) { return e.width, e.height }

// SetOnRenderCallback sets a function called after each rendered frame.
func (e *Engine) SetOnRenderCallback(callback func(deltaTime float64)) {
	e.onRenderCallback = callback
}

// Run opens the window, creates the renderer and loops until the window is
// closed. It must be called from the main goroutine.
func (e *Engine) Run() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("could not initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	switch e.backend {
	case VULKAN:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	case OPENGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		glfw.WindowHint(glfw.DepthBits, 24)
	}

	window, err := glfw.CreateWindow(int(e.width), int(e.height), e.Settings.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("could not create glfw window: %w", err)
	}
	e.window = window
	defer window.Destroy()
	window.SetPos(e.Settings.Window.X, e.Settings.Window.Y)
	styleWindow(window, e.Settings.Renderer.ClearColor)

	if e.backend == OPENGL {
		window.MakeContextCurrent()
	}
	if err := e.createRenderer(); err != nil {
		return err
	}
	defer e.close()

	if camera := e.World.ActiveCamera(); camera != nil && e.EnableCameraInput {
		e.Behaviours.Add(behaviour.NewFlyCamera(camera, newWindowInput(window)))
	}

	logger.Log.Info("Engine running",
		zap.Stringer("backend", e.backend),
		zap.Int32("width", e.width),
		zap.Int32("height", e.height))

	lastTime := glfw.GetTime()
	for !window.ShouldClose() {
		currentTime := glfw.GetTime()
		deltaTime := currentTime - lastTime
		lastTime = currentTime

		fbWidth, fbHeight := window.GetFramebufferSize()
		if err := e.step(int32(fbWidth), int32(fbHeight), deltaTime); err != nil {
			logger.Log.Error("Frame failed", zap.Error(err))
		}
		if e.backend == OPENGL {
			window.SwapBuffers()
		}
		glfw.PollEvents()
	}
	return nil
}

func (e *Engine) createRenderer() error {
	settings := e.Settings.Renderer
	settings.FrameWidth, settings.FrameHeight = e.width, e.height

	switch e.backend {
	case OPENGL:
		r := opengl.New(gldriver.New(), settings)
		if err := r.Initialize(); err != nil {
			return err
		}
		e.renderer = r
	case VULKAN:
		device, err := vkdevice.New(e.Settings.Window.Title)
		if err != nil {
			return err
		}
		r := vulkan.New(device, nil, settings)
		r.SetFrameSink(vulkan.FrameSinkFunc(logFrame))
		if err := r.Initialize(); err != nil {
			device.Close()
			return err
		}
		e.device = device
		e.renderer = r
	}
	return nil
}

func logFrame(frame *vulkan.Frame) error {
	logger.Log.Debug("Frame recorded",
		zap.Int("draws", len(frame.Draws)),
		zap.Int("lines", len(frame.Lines)),
		zap.Int("failures", frame.Failures))
	return nil
}

func (e *Engine) close() {
	if e.renderer != nil {
		e.renderer.Close()
		e.renderer = nil
	}
	if e.device != nil {
		e.device.Close()
		e.device = nil
	}
}

// step advances one frame: resize, behaviours, sync, render, callback.
// A zero size means the window is minimized and the resize is skipped.
func (e *Engine) step(width, height int32, deltaTime float64) error {
	if width > 0 && height > 0 && (width != e.width || height != e.height) {
		if err := e.renderer.UpdateFrameSize(width, height); err != nil {
			logger.Log.Error("Frame resize failed",
				zap.Int32("width", width),
				zap.Int32("height", height),
				zap.Error(err))
		} else {
			e.width, e.height = width, height
			if camera := e.World.ActiveCamera(); camera != nil {
				camera.SetAspect(float32(width) / float32(height))
			}
		}
	}

	if e.frameTrackID >= fixedUpdateFrames {
		e.Behaviours.UpdateAllFixed()
		e.frameTrackID = 0
	}
	e.Behaviours.UpdateAll(deltaTime)

	// Failed entities stay dirty and are retried next frame.
	if err := e.renderer.UpdateDataForWorld(e.World); err != nil {
		logger.Log.Warn("World sync incomplete", zap.Error(err))
	}
	if err := e.renderer.RenderWorld(e.World); err != nil {
		return err
	}

	if e.onRenderCallback != nil {
		e.onRenderCallback(deltaTime)
	}
	e.frameTrackID++
	return nil
}
