package opengl

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

var builtinVertexSources = map[scene.MeshType]string{
	scene.MeshTypeStandard:  shader.StandardVertexGLSL,
	scene.MeshTypeSkin:      shader.SkinVertexGLSL,
	scene.MeshTypeInstanced: shader.InstancedVertexGLSL,
}

const meshTypeCount = 3

// ShaderCollection is a fragment shader and the programs linking it with each
// vertex stage. Programs are linked on first use.
type ShaderCollection struct {
	resources *Resources
	fragment  *GlShader
	// owned collections release their fragment shader; cached ones share it
	owned    bool
	programs [meshTypeCount]*GlShaderProgram
}

// MakeProgram links the program for meshType if it is not linked yet.
func (c *ShaderCollection) MakeProgram(meshType scene.MeshType) (*GlShaderProgram, error) {
	if meshType < 0 || int(meshType) >= meshTypeCount {
		return nil, fmt.Errorf("%w: unknown mesh type %d", scene.ErrResourceCreation, meshType)
	}
	if p := c.programs[meshType]; p != nil {
		return p, nil
	}
	vertex, err := c.resources.VertexShader(meshType)
	if err != nil {
		return nil, err
	}
	p, err := LinkProgram(c.resources.driver, vertex, c.fragment)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", meshType, err)
	}
	c.programs[meshType] = p
	return p, nil
}

func (c *ShaderCollection) MakeMeshProgram() (*GlShaderProgram, error) {
	return c.MakeProgram(scene.MeshTypeStandard)
}

func (c *ShaderCollection) MakeSkinMeshProgram() (*GlShaderProgram, error) {
	return c.MakeProgram(scene.MeshTypeSkin)
}

func (c *ShaderCollection) MakeInstancedMeshProgram() (*GlShaderProgram, error) {
	return c.MakeProgram(scene.MeshTypeInstanced)
}

// Program returns the linked program for meshType, or nil before MakeProgram.
func (c *ShaderCollection) Program(meshType scene.MeshType) *GlShaderProgram {
	if meshType < 0 || int(meshType) >= meshTypeCount {
		return nil
	}
	return c.programs[meshType]
}

func (c *ShaderCollection) Release() {
	for i, p := range c.programs {
		if p != nil {
			p.Release()
			c.programs[i] = nil
		}
	}
	if c.owned && c.fragment != nil {
		c.fragment.Release()
		c.fragment = nil
	}
}

// Resources holds the shaders shared by every renderer object: the vertex
// stages per mesh type, the generated fragment variants keyed by their
// parameters, the line program and the texture cache.
type Resources struct {
	driver    Driver
	vertexDir string

	vertexShaders   [meshTypeCount]*GlShader
	fragmentShaders map[shader.Parameters]*GlShader
	collections     map[shader.Parameters]*ShaderCollection
	custom          map[*ShaderCollection]struct{}
	lineProgram     *GlShaderProgram
	textures        *TextureCache
}

// NewResources creates an empty set. vertexDir, when not empty, is searched
// for "<mesh type>.vert" overrides of the builtin vertex stages.
func NewResources(driver Driver, vertexDir string) *Resources {
	return &Resources{
		driver:          driver,
		vertexDir:       vertexDir,
		fragmentShaders: make(map[shader.Parameters]*GlShader),
		collections:     make(map[shader.Parameters]*ShaderCollection),
		custom:          make(map[*ShaderCollection]struct{}),
		textures:        NewTextureCache(driver),
	}
}

func (r *Resources) Textures() *TextureCache { return r.textures }

// VertexShader compiles the vertex stage for meshType once.
func (r *Resources) VertexShader(meshType scene.MeshType) (*GlShader, error) {
	if s := r.vertexShaders[meshType]; s != nil {
		return s, nil
	}
	source, err := r.vertexSource(meshType)
	if err != nil {
		return nil, err
	}
	s, err := CompileSource(r.driver, StageVertex, source)
	if err != nil {
		return nil, fmt.Errorf("%s vertex shader: %w", meshType, err)
	}
	r.vertexShaders[meshType] = s
	logger.Log.Debug("Vertex shader compiled", zap.Stringer("meshType", meshType))
	return s, nil
}

func (r *Resources) vertexSource(meshType scene.MeshType) (string, error) {
	if r.vertexDir != "" {
		path := filepath.Join(r.vertexDir, meshType.String()+".vert")
		data, err := os.ReadFile(path)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: read %s: %v", scene.ErrResourceCreation, path, err)
		}
	}
	return builtinVertexSources[meshType], nil
}

// FragmentShader returns the generated fragment variant for params, compiling
// it on first request. Every later request for the same params returns the
// same shader.
func (r *Resources) FragmentShader(params shader.Parameters) (*GlShader, error) {
	if s, ok := r.fragmentShaders[params]; ok {
		return s, nil
	}
	s, err := CompileSource(r.driver, StageFragment, shader.GenerateGLSL(params))
	if err != nil {
		return nil, fmt.Errorf("fragment variant %s: %w", params, err)
	}
	r.fragmentShaders[params] = s
	logger.Log.Debug("Fragment variant compiled",
		zap.String("parameters", params.String()),
		zap.Uint32("key", params.Key()))
	return s, nil
}

// Collection returns the shared collection for the generated variant of params.
func (r *Resources) Collection(params shader.Parameters) (*ShaderCollection, error) {
	if c, ok := r.collections[params]; ok {
		return c, nil
	}
	fragment, err := r.FragmentShader(params)
	if err != nil {
		return nil, err
	}
	c := &ShaderCollection{resources: r, fragment: fragment}
	r.collections[params] = c
	return c, nil
}

// DefaultCollection is the collection for a material with no parameters.
func (r *Resources) DefaultCollection() (*ShaderCollection, error) {
	return r.Collection(shader.Parameters{})
}

// NewCustomCollection wraps a user fragment shader. The collection owns it.
func (r *Resources) NewCustomCollection(fragment *GlShader) *ShaderCollection {
	c := &ShaderCollection{resources: r, fragment: fragment, owned: true}
	r.custom[c] = struct{}{}
	return c
}

// ReleaseCustomCollection releases a collection from NewCustomCollection.
func (r *Resources) ReleaseCustomCollection(c *ShaderCollection) {
	if _, ok := r.custom[c]; !ok {
		return
	}
	delete(r.custom, c)
	c.Release()
}

// LineProgram links the wireframe program once.
func (r *Resources) LineProgram() (*GlShaderProgram, error) {
	if r.lineProgram != nil {
		return r.lineProgram, nil
	}
	vertex, err := CompileSource(r.driver, StageVertex, shader.LineVertexGLSL)
	if err != nil {
		return nil, fmt.Errorf("line vertex shader: %w", err)
	}
	defer vertex.Release()
	fragment, err := CompileSource(r.driver, StageFragment, shader.LineFragmentGLSL)
	if err != nil {
		return nil, fmt.Errorf("line fragment shader: %w", err)
	}
	defer fragment.Release()
	p, err := LinkProgram(r.driver, vertex, fragment)
	if err != nil {
		return nil, fmt.Errorf("line program: %w", err)
	}
	r.lineProgram = p
	return p, nil
}

func (r *Resources) FragmentVariantCount() int { return len(r.fragmentShaders) }

// Release frees every shader, program and texture held by r.
func (r *Resources) Release() {
	for c := range r.custom {
		c.Release()
	}
	clear(r.custom)
	for params, c := range r.collections {
		c.Release()
		delete(r.collections, params)
	}
	for params, s := range r.fragmentShaders {
		s.Release()
		delete(r.fragmentShaders, params)
	}
	for i, s := range r.vertexShaders {
		if s != nil {
			s.Release()
			r.vertexShaders[i] = nil
		}
	}
	if r.lineProgram != nil {
		r.lineProgram.Release()
		r.lineProgram = nil
	}
	r.textures.Clear()
}

func (r *Resources) LogStats() {
	logger.Log.Info("OpenGL shader resources",
		zap.Int("fragmentVariants", len(r.fragmentShaders)),
		zap.Int("collections", len(r.collections)),
		zap.Int("customCollections", len(r.custom)))
	r.textures.LogStats()
}
