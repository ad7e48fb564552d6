package scene

import (
	"testing"

	"StoneEngine/internal/image"
	"StoneEngine/internal/logger"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func allRenderables() map[string]Renderable {
	dyn := NewDynamicMesh()
	dynSkin := NewDynamicSkinMesh()
	return map[string]Renderable{
		"material":        NewMaterial("m"),
		"texture":         NewTexture(nil),
		"fragmentShader":  NewFragmentShader("void main() {}"),
		"dynamicMesh":     dyn,
		"staticMesh":      NewStaticMesh(dyn),
		"dynamicSkinMesh": dynSkin,
		"staticSkinMesh":  NewStaticSkinMesh(dynSkin),
		"meshNode":        NewMeshNode("n"),
		"instancedMesh":   NewInstancedMeshNode("i"),
		"skinMeshNode":    NewSkinMeshNode("s"),
		"wireframeShape":  NewWireframeShape("w"),
	}
}

func TestEntitiesStartDirty(t *testing.T) {
	for name, r := range allRenderables() {
		assert.True(t, r.IsDirty(), name)
		assert.False(t, HasRendererObject(r), name)
		assert.False(t, IsSynchronized(r), name)
	}
}

func TestIDsIncreaseAndAreUnique(t *testing.T) {
	a := NewMaterial("a")
	b := NewTexture(nil)
	c := NewMeshNode("c")
	assert.Less(t, a.ID(), b.ID())
	assert.Less(t, b.ID(), c.ID())
	assert.NotZero(t, a.ID())
}

func TestSettersMarkDirty(t *testing.T) {
	mat := NewMaterial("m")
	tex := NewTexture(nil)
	shader := NewFragmentShader("void main() {}")
	dyn := NewDynamicMesh()
	static := NewStaticMesh(dyn)
	skin := NewDynamicSkinMesh()
	node := NewMeshNode("n")
	inst := NewInstancedMeshNode("i")
	skinNode := NewSkinMeshNode("s")
	wire := NewWireframeShape("w")

	tests := []struct {
		name   string
		entity Renderable
		set    func()
	}{
		{"material texture", mat, func() { mat.SetTextureParameter(NamedLocation("diffuse"), tex) }},
		{"material vector", mat, func() { mat.SetVectorParameter(NamedLocation("specular"), mgl32.Vec3{1, 1, 1}) }},
		{"material scalar", mat, func() { mat.SetScalarParameter(IndexLocation(3), 0.5) }},
		{"material remove scalar", mat, func() { mat.RemoveScalarParameter(IndexLocation(3)) }},
		{"material shader", mat, func() { mat.SetFragmentShader(shader) }},
		{"texture image", tex, func() { tex.SetImage(image.NewSource("x.png", image.RGBA)) }},
		{"texture filter", tex, func() { tex.SetMinFilter(FilterNearest) }},
		{"texture mag filter", tex, func() { tex.SetMagFilter(FilterCubic) }},
		{"texture wrap", tex, func() { tex.SetWrap(WrapClampToEdge) }},
		{"shader location", shader, func() { shader.SetLocation("albedo", 2) }},
		{"shader function", shader, func() { shader.SetFunction("fs_main") }},
		{"shader content", shader, func() { shader.SetContent(ShaderSourceFile, "a.glsl") }},
		{"mesh vertices", dyn, func() { dyn.SetVertices([]Vertex{{}}) }},
		{"mesh elements", dyn, func() { dyn.WithElementsRef(func(v *[]Vertex, i *[]uint32) {}) }},
		{"mesh default material", dyn, func() { dyn.SetDefaultMaterial(mat) }},
		{"static default material", static, func() { static.SetDefaultMaterial(mat) }},
		{"skin elements", skin, func() { skin.SetIndices([]uint32{0}) }},
		{"node mesh", node, func() { node.SetMesh(dyn) }},
		{"node material", node, func() { node.SetMaterial(mat) }},
		{"instance add", inst, func() { inst.AddInstance(mgl32.Ident4()) }},
		{"instance clear", inst, func() { inst.ClearInstances() }},
		{"skin node skeleton", skinNode, func() { skinNode.SetSkeleton(NewSkeletonNode("sk")) }},
		{"wire color", wire, func() { wire.SetColor(mgl32.Vec3{1, 0, 0}) }},
		{"wire line", wire, func() { wire.AddLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}) }},
		{"wire depth", wire, func() { wire.SetIgnoreDepth(true) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.entity.MarkUndirty()
			tt.set()
			assert.True(t, tt.entity.IsDirty())
		})
	}
}

func TestSetRendererObjectToBindsAndCleans(t *testing.T) {
	tex := NewTexture(nil)
	obj := &fakeObject{kind: "texture"}
	SetRendererObjectTo(tex, obj)

	assert.False(t, tex.IsDirty())
	assert.Same(t, obj, GetRendererObject[*fakeObject](tex))
	assert.True(t, IsSynchronized(tex))

	ClearRendererObject(tex)
	assert.True(t, tex.IsDirty())
	assert.Nil(t, GetRendererObject[*fakeObject](tex))
}

func TestGetRendererObjectUnboundIsNil(t *testing.T) {
	assert.Nil(t, GetRendererObject[*fakeObject](NewMaterial("m")))
}

func TestGetRendererObjectTypeMismatch(t *testing.T) {
	defer func() { logger.Log = zap.NewNop() }()
	mat := NewMaterial("m")
	SetRendererObjectTo(mat, otherObject{})

	logger.Log = zap.NewNop()
	assert.Nil(t, GetRendererObject[*fakeObject](mat))

	dev, err := zap.NewDevelopment()
	require.NoError(t, err)
	logger.Log = dev
	assert.Panics(t, func() { GetRendererObject[*fakeObject](mat) })
}

func TestLocationKindsNeverCollide(t *testing.T) {
	assert.NotEqual(t, NamedLocation("a"), IndexLocation(0))
	assert.NotEqual(t, NamedLocation("0"), IndexLocation(0))
	assert.NotEqual(t, NamedLocation(""), IndexLocation(0))
	assert.Equal(t, NamedLocation("a"), NamedLocation("a"))
	assert.Equal(t, IndexLocation(2), IndexLocation(2))

	mat := NewMaterial("m")
	mat.SetScalarParameter(NamedLocation("a"), 1)
	mat.SetScalarParameter(IndexLocation(0), 2)
	a, ok := mat.ScalarParameter(NamedLocation("a"))
	require.True(t, ok)
	zero, ok := mat.ScalarParameter(IndexLocation(0))
	require.True(t, ok)
	assert.Equal(t, float32(1), a)
	assert.Equal(t, float32(2), zero)
}

func TestMaterialIterationOrder(t *testing.T) {
	mat := NewMaterial("m")
	for _, loc := range []Location{IndexLocation(4), NamedLocation("roughness"), IndexLocation(1), NamedLocation("diffuse")} {
		mat.SetScalarParameter(loc, 1)
	}
	var got []string
	mat.ForEachScalars(func(loc Location, _ float32) { got = append(got, loc.String()) })
	assert.Equal(t, []string{"diffuse", "roughness", "#1", "#4"}, got)
}

func TestMaterialRemoveTexture(t *testing.T) {
	mat := NewMaterial("m")
	mat.SetTextureParameter(NamedLocation("diffuse"), NewTexture(nil))
	assert.Equal(t, 1, mat.TextureCount())
	mat.SetTextureParameter(NamedLocation("diffuse"), nil)
	assert.Equal(t, 0, mat.TextureCount())
}

func TestShaderMaxLocation(t *testing.T) {
	s := NewFragmentShader("void main() {}")
	assert.Equal(t, -1, s.MaxLocation())
	s.SetLocation("a", 3)
	s.SetLocation("b", 1)
	assert.Equal(t, 3, s.MaxLocation())
	s.SetLocation("a", 0)
	assert.Equal(t, 3, s.MaxLocation())
	loc, ok := s.Location("a")
	assert.True(t, ok)
	assert.Equal(t, 0, loc)
}

func TestShaderMaxLocationNegative(t *testing.T) {
	s := NewFragmentShader("void main() {}")
	s.SetLocation("x", -5)
	assert.Equal(t, -5, s.MaxLocation())
	s.SetLocation("y", -7)
	assert.Equal(t, -5, s.MaxLocation())
	s.SetLocation("z", 2)
	assert.Equal(t, 2, s.MaxLocation())
}

func TestFragmentShaderContentSniffing(t *testing.T) {
	tests := []struct {
		content string
		want    ShaderContent
	}{
		{"shaders/lit.glsl", ShaderSourceFile},
		{"shaders/lit.wgsl", ShaderSourceFile},
		{"shaders/lit.spv", ShaderCompiledFile},
		{"shaders/lit.metal", ShaderCompiledFile},
		{"#version 400 core\nvoid main() {}", ShaderSourceCode},
		{"\x03\x02\x23\x07\x00\x00\x01\x00", ShaderCompiledCode},
	}
	for _, tt := range tests {
		s := NewFragmentShader(tt.content)
		assert.Equal(t, tt.want, s.ContentType(), tt.content)
		assert.Equal(t, "main", s.Function())
	}

	bin := NewFragmentShader("\x03\x02\x23\x07\x00\x00\x01\x00")
	assert.Len(t, bin.CompiledCode(), 8)
}
