package vulkan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"StoneEngine/internal/logger"
	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"go.uber.org/zap"
)

var builtinVertexWGSL = map[scene.MeshType]string{
	scene.MeshTypeStandard:  shader.StandardVertexWGSL,
	scene.MeshTypeSkin:      shader.SkinVertexWGSL,
	scene.MeshTypeInstanced: shader.InstancedVertexWGSL,
}

// ShaderCache owns the vertex modules per mesh type and one generated
// fragment module per distinct parameter set.
type ShaderCache struct {
	device    Device
	compile   Compiler
	vertexDir string
	vertex    map[scene.MeshType]Resource
	fragments map[shader.Parameters]Resource
}

func NewShaderCache(device Device, compile Compiler, vertexDir string) *ShaderCache {
	if compile == nil {
		compile = NagaCompiler
	}
	return &ShaderCache{
		device:    device,
		compile:   compile,
		vertexDir: vertexDir,
		vertex:    make(map[scene.MeshType]Resource),
		fragments: make(map[shader.Parameters]Resource),
	}
}

// Vertex returns the module for meshType, read from <dir>/<type>.spv when
// the file exists and compiled from the built-in WGSL otherwise.
func (c *ShaderCache) Vertex(meshType scene.MeshType) (Resource, error) {
	if m, ok := c.vertex[meshType]; ok {
		return m, nil
	}
	code, err := c.vertexCode(meshType)
	if err != nil {
		return nil, fmt.Errorf("%s vertex shader: %w", meshType, err)
	}
	m, err := c.device.CreateShaderModule(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s vertex module: %v", scene.ErrResourceCreation, meshType, err)
	}
	c.vertex[meshType] = m
	return m, nil
}

func (c *ShaderCache) vertexCode(meshType scene.MeshType) ([]uint32, error) {
	if c.vertexDir != "" {
		path := filepath.Join(c.vertexDir, meshType.String()+".spv")
		data, err := os.ReadFile(path)
		if err == nil {
			return SPIRVWords(data)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: read %s: %v", scene.ErrResourceCreation, path, err)
		}
	}
	source, ok := builtinVertexWGSL[meshType]
	if !ok {
		return nil, fmt.Errorf("%w: no vertex shader for %s", scene.ErrResourceCreation, meshType)
	}
	code, err := c.compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scene.ErrResourceCreation, err)
	}
	return code, nil
}

// Fragment returns the generated module for params, compiling it once.
func (c *ShaderCache) Fragment(params shader.Parameters) (Resource, error) {
	if m, ok := c.fragments[params]; ok {
		return m, nil
	}
	code, err := c.compile(shader.GenerateWGSL(params))
	if err != nil {
		return nil, fmt.Errorf("%w: fragment variant %s: %v", scene.ErrResourceCreation, params, err)
	}
	m, err := c.device.CreateShaderModule(code)
	if err != nil {
		return nil, fmt.Errorf("%w: fragment module: %v", scene.ErrResourceCreation, err)
	}
	c.fragments[params] = m
	logger.Log.Debug("Fragment variant compiled",
		zap.Stringer("parameters", params),
		zap.Int("variants", len(c.fragments)))
	return m, nil
}

func (c *ShaderCache) FragmentCount() int { return len(c.fragments) }

func (c *ShaderCache) Release() {
	for t, m := range c.vertex {
		m.Destroy()
		delete(c.vertex, t)
	}
	for p, m := range c.fragments {
		m.Destroy()
		delete(c.fragments, p)
	}
}
