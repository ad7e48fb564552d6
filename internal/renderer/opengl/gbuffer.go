package opengl

import (
	"fmt"

	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"

	"go.uber.org/zap"
)

// GBuffer is the offscreen target the scene is drawn into: world position,
// normal and albedo with specular in alpha.
type GBuffer struct {
	driver  Driver
	targets GBufferTargets
}

func NewGBuffer(driver Driver, width, height int32) (*GBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid G-buffer size %dx%d", scene.ErrResourceCreation, width, height)
	}
	targets, err := driver.CreateGBuffer(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: G-buffer %dx%d: %v", scene.ErrResourceCreation, width, height, err)
	}
	logger.Log.Debug("G-buffer created",
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Uint32("framebuffer", targets.Framebuffer))
	return &GBuffer{driver: driver, targets: targets}, nil
}

func (g *GBuffer) Targets() GBufferTargets { return g.targets }

func (g *GBuffer) Width() int32  { return g.targets.Width }
func (g *GBuffer) Height() int32 { return g.targets.Height }

func (g *GBuffer) Bind() {
	g.driver.BindFramebuffer(g.targets.Framebuffer)
	g.driver.Viewport(g.targets.Width, g.targets.Height)
}

// Present draws the albedo target on the default framebuffer.
func (g *GBuffer) Present() {
	g.driver.BindFramebuffer(0)
	g.driver.PresentGBuffer(g.targets)
}

func (g *GBuffer) Release() {
	if g.targets.Framebuffer != 0 {
		g.driver.DeleteGBuffer(g.targets)
		g.targets = GBufferTargets{}
	}
}
