package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Material holds texture, vector and scalar parameters keyed by Location and
// an optional fragment shader. Without a fragment shader the renderer
// generates one from the shape of the parameters.
type Material struct {
	RenderableBase

	name           string
	textures       map[Location]*Texture
	vectors        map[Location]mgl32.Vec3
	scalars        map[Location]float32
	fragmentShader *FragmentShader
}

func NewMaterial(name string) *Material {
	return &Material{
		RenderableBase: newRenderableBase(),
		name:           name,
		textures:       make(map[Location]*Texture),
		vectors:        make(map[Location]mgl32.Vec3),
		scalars:        make(map[Location]float32),
	}
}

func (m *Material) Name() string { return m.name }

// SetTextureParameter binds tex at loc. A nil texture removes the parameter.
func (m *Material) SetTextureParameter(loc Location, tex *Texture) {
	if tex == nil {
		delete(m.textures, loc)
	} else {
		m.textures[loc] = tex
	}
	m.MarkDirty()
}

func (m *Material) TextureParameter(loc Location) (*Texture, bool) {
	tex, ok := m.textures[loc]
	return tex, ok
}

func (m *Material) SetVectorParameter(loc Location, v mgl32.Vec3) {
	m.vectors[loc] = v
	m.MarkDirty()
}

func (m *Material) VectorParameter(loc Location) (mgl32.Vec3, bool) {
	v, ok := m.vectors[loc]
	return v, ok
}

func (m *Material) SetScalarParameter(loc Location, v float32) {
	m.scalars[loc] = v
	m.MarkDirty()
}

func (m *Material) ScalarParameter(loc Location) (float32, bool) {
	v, ok := m.scalars[loc]
	return v, ok
}

func (m *Material) RemoveVectorParameter(loc Location) {
	delete(m.vectors, loc)
	m.MarkDirty()
}

func (m *Material) RemoveScalarParameter(loc Location) {
	delete(m.scalars, loc)
	m.MarkDirty()
}

// ForEachTextures visits texture parameters, named locations first by name,
// then indexed locations ascending.
func (m *Material) ForEachTextures(fn func(Location, *Texture)) {
	for _, loc := range sortedKeys(m.textures) {
		fn(loc, m.textures[loc])
	}
}

func (m *Material) ForEachVectors(fn func(Location, mgl32.Vec3)) {
	for _, loc := range sortedKeys(m.vectors) {
		fn(loc, m.vectors[loc])
	}
}

func (m *Material) ForEachScalars(fn func(Location, float32)) {
	for _, loc := range sortedKeys(m.scalars) {
		fn(loc, m.scalars[loc])
	}
}

func (m *Material) TextureCount() int { return len(m.textures) }

// SetFragmentShader replaces the generated shader. nil restores it.
func (m *Material) SetFragmentShader(shader *FragmentShader) {
	m.fragmentShader = shader
	m.MarkDirty()
}

func (m *Material) FragmentShader() *FragmentShader { return m.fragmentShader }
