package opengl

import (
	"fmt"
	"os"

	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"

	"go.uber.org/zap"
)

// GlShader is one compiled shader stage.
type GlShader struct {
	driver Driver
	id     uint32
	stage  ShaderStage
}

// CompileSource compiles GLSL source for stage.
func CompileSource(driver Driver, stage ShaderStage, source string) (*GlShader, error) {
	id, err := driver.CompileShader(stage, source)
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s shader: %v", scene.ErrResourceCreation, stage, err)
	}
	return &GlShader{driver: driver, id: id, stage: stage}, nil
}

// CompileShader compiles the content of s. Source files are read from disk.
// Compiled content is rejected: an OpenGL 4.1 core context cannot ingest
// shader binaries.
func CompileShader(driver Driver, stage ShaderStage, s *scene.AShader) (*GlShader, error) {
	kind, content := s.Content()
	switch kind {
	case scene.ShaderSourceCode:
		return CompileSource(driver, stage, content)
	case scene.ShaderSourceFile:
		source, err := os.ReadFile(content)
		if err != nil {
			return nil, fmt.Errorf("%w: read shader %s: %v", scene.ErrResourceCreation, content, err)
		}
		return CompileSource(driver, stage, string(source))
	default:
		logger.Log.Warn("Unsupported shader content for OpenGL",
			zap.Uint32("shader", s.ID()),
			zap.String("content", kind.String()))
		return nil, fmt.Errorf("%w: %s shaders are not supported by OpenGL", scene.ErrResourceCreation, kind)
	}
}

func (s *GlShader) ID() uint32         { return s.id }
func (s *GlShader) Stage() ShaderStage { return s.stage }

func (s *GlShader) Release() {
	if s.id != 0 {
		s.driver.DeleteShader(s.id)
		s.id = 0
	}
}

// GlShaderProgram is a linked vertex + fragment program with its uniform cache.
type GlShaderProgram struct {
	*UniformCache
	driver Driver
	id     uint32
}

// LinkProgram links vertex and fragment. The shaders stay owned by the caller
// so they can be linked into other programs.
func LinkProgram(driver Driver, vertex, fragment *GlShader) (*GlShaderProgram, error) {
	id, err := driver.LinkProgram(vertex.ID(), fragment.ID())
	if err != nil {
		return nil, fmt.Errorf("%w: link program: %v", scene.ErrResourceCreation, err)
	}
	return &GlShaderProgram{
		UniformCache: NewUniformCache(driver, id),
		driver:       driver,
		id:           id,
	}, nil
}

func (p *GlShaderProgram) ID() uint32 { return p.id }

func (p *GlShaderProgram) Use() {
	p.driver.UseProgram(p.id)
}

// BindTexture binds texture to unit and points the sampler at loc to it.
func (p *GlShaderProgram) BindTexture(loc scene.Location, unit uint32, texture uint32) {
	p.driver.BindTexture(unit, texture)
	p.SetIntAt(loc, int32(unit))
}

func (p *GlShaderProgram) Release() {
	if p.id != 0 {
		p.driver.DeleteProgram(p.id)
		p.id = 0
		p.Clear()
	}
}
