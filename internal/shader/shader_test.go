package shader

import (
	"strings"
	"testing"

	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMaterialDiffuseTextureRoughnessScalar(t *testing.T) {
	m := scene.NewMaterial("m")
	m.SetTextureParameter(scene.NamedLocation("diffuse"), scene.NewTexture(nil))
	m.SetScalarParameter(scene.NamedLocation("roughness"), 0.3)

	p := FromMaterial(m)
	for c := Channel(0); c < ChannelCount; c++ {
		switch c {
		case Diffuse:
			assert.Equal(t, Texture, p.Get(c))
		case Roughness:
			assert.Equal(t, Scalar, p.Get(c))
		default:
			assert.Equal(t, None, p.Get(c), c.String())
		}
	}
	assert.Equal(t, 2, p.Count())
	assert.Equal(t, "diffuse=texture,roughness=scalar", p.String())
}

func TestFromMaterialIgnoresIndexedAndUnknown(t *testing.T) {
	m := scene.NewMaterial("m")
	m.SetScalarParameter(scene.IndexLocation(int(Diffuse)), 1)
	m.SetVectorParameter(scene.NamedLocation("tint"), mgl32.Vec3{1, 1, 1})
	assert.Equal(t, Parameters{}, FromMaterial(m))
	assert.Equal(t, Parameters{}, FromMaterial(nil))
}

func TestFromMaterialTextureWinsOverScalar(t *testing.T) {
	m := scene.NewMaterial("m")
	m.SetScalarParameter(scene.NamedLocation("normal"), 1)
	m.SetTextureParameter(scene.NamedLocation("normal"), scene.NewTexture(nil))
	assert.Equal(t, Texture, FromMaterial(m).Get(Normal))
}

func TestSameShapeSameKey(t *testing.T) {
	a := scene.NewMaterial("a")
	a.SetVectorParameter(scene.NamedLocation("specular"), mgl32.Vec3{1, 0, 0})
	a.SetScalarParameter(scene.NamedLocation("metallic"), 0.1)
	b := scene.NewMaterial("b")
	b.SetScalarParameter(scene.NamedLocation("metallic"), 0.9)
	b.SetVectorParameter(scene.NamedLocation("specular"), mgl32.Vec3{0, 0, 1})

	assert.Equal(t, FromMaterial(a), FromMaterial(b))
	assert.Equal(t, FromMaterial(a).Key(), FromMaterial(b).Key())
	assert.Equal(t, FromMaterial(a), FromMaterial(a), "derivation is deterministic")
}

func TestKeyPacking(t *testing.T) {
	var p Parameters
	assert.Zero(t, p.Key())

	p.Set(Diffuse, Texture)
	assert.Equal(t, uint32(0b11), p.Key())

	p.Set(Height, Scalar)
	assert.Equal(t, uint32(0b11)|uint32(1)<<20, p.Key())

	var q Parameters
	q.Set(Specular, Scalar)
	assert.NotEqual(t, p.Key(), q.Key())

	p.Set(Channel(42), Texture)
	assert.Equal(t, None, p.Get(Channel(42)))
}

func TestSetByName(t *testing.T) {
	var p Parameters
	assert.True(t, p.SetByName("occlusion", Vector))
	assert.False(t, p.SetByName("albedo", Vector))
	assert.Equal(t, Vector, p.Get(Occlusion))
	assert.Equal(t, 1, p.Count())
}

func TestGenerateGLSLDeterministic(t *testing.T) {
	var p Parameters
	p.Set(Roughness, Scalar)
	p.Set(Diffuse, Texture)
	p.Set(Specular, Vector)

	src := GenerateGLSL(p)
	assert.Equal(t, src, GenerateGLSL(p))
	assert.True(t, strings.HasPrefix(src, "#version 400 core"))

	diffuse := strings.Index(src, "uniform sampler2D diffuse;")
	specular := strings.Index(src, "uniform vec3 specular;")
	roughness := strings.Index(src, "uniform float roughness;")
	require.True(t, diffuse > 0 && specular > 0 && roughness > 0, src)
	assert.Less(t, diffuse, specular)
	assert.Less(t, specular, roughness)
	assert.Equal(t, 3, strings.Count(src, "uniform "))
	assert.Contains(t, src, "gAlbedoSpec = vec4(1.0, 0.0, 0.0, 1.0);")
	assert.Contains(t, src, "layout (location = 2) out vec4 gAlbedoSpec;")
}

func TestGenerateGLSLNoParameters(t *testing.T) {
	src := GenerateGLSL(Parameters{})
	assert.NotContains(t, src, "uniform ")
	assert.Contains(t, src, "void main()")
}

func TestGenerateWGSL(t *testing.T) {
	var p Parameters
	p.Set(Diffuse, Texture)
	p.Set(Emissive, Vector)
	p.Set(Opacity, Scalar)
	p.Set(Normal, Texture)

	src := GenerateWGSL(p)
	assert.Equal(t, src, GenerateWGSL(p))
	for _, want := range []string{
		"@fragment",
		"fn fs_main(",
		"struct MaterialParams {\n    emissive: vec3<f32>,\n    opacity: f32,\n}",
		"@group(1) @binding(0) var<uniform> material: MaterialParams;",
		"@group(1) @binding(1) var diffuse_texture: texture_2d<f32>;",
		"@group(1) @binding(2) var diffuse_sampler: sampler;",
		"@group(1) @binding(3) var normal_texture: texture_2d<f32>;",
		"@group(1) @binding(4) var normal_sampler: sampler;",
	} {
		assert.Contains(t, src, want)
	}
	assert.Equal(t, 5, MaterialBindingCount(p))
}

func TestGenerateWGSLWithoutUniforms(t *testing.T) {
	var p Parameters
	p.Set(Diffuse, Texture)
	src := GenerateWGSL(p)
	assert.NotContains(t, src, "MaterialParams")
	assert.Contains(t, src, "@group(1) @binding(0) var diffuse_texture")
	assert.Equal(t, 2, MaterialBindingCount(p))
	assert.Zero(t, MaterialBindingCount(Parameters{}))
}

func TestVertexSourcesShareFragmentInterface(t *testing.T) {
	for name, src := range map[string]string{
		"standard":  StandardVertexGLSL,
		"skin":      SkinVertexGLSL,
		"instanced": InstancedVertexGLSL,
	} {
		assert.Contains(t, src, "out FRAG_DATA", name)
		assert.Contains(t, src, UniformModel, name)
	}
	for name, src := range map[string]string{
		"standard":  StandardVertexWGSL,
		"skin":      SkinVertexWGSL,
		"instanced": InstancedVertexWGSL,
	} {
		assert.Contains(t, src, "fn "+WGSLEntryVertex+"(", name)
	}
	assert.Contains(t, SkinVertexGLSL, UniformBones)
}
