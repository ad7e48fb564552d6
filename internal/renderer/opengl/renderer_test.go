package opengl

import (
	stdimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"StoneEngine/internal/config"
	"StoneEngine/internal/image"
	"StoneEngine/internal/scene"
	"StoneEngine/internal/shader"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, mutate ...func(*config.RendererSettings)) (*Renderer, *fakeDriver) {
	t.Helper()
	settings := config.Default().Renderer
	for _, m := range mutate {
		m(&settings)
	}
	d := newFakeDriver()
	r := New(d, settings)
	require.NoError(t, r.Initialize())
	t.Cleanup(r.Close)
	return r, d
}

func checkerSource(name string) *image.Source {
	return image.NewSourceFromImage(name, stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2)), image.RGBA)
}

func solidSource(name string, c color.RGBA) *image.Source {
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return image.NewSourceFromImage(name, img, image.RGBA)
}

func triangleMesh() *scene.DynamicMesh {
	m := scene.NewDynamicMesh()
	m.AddTriangle(
		scene.Vertex{Position: mgl32.Vec3{0, 0, 0}},
		scene.Vertex{Position: mgl32.Vec3{1, 0, 0}},
		scene.Vertex{Position: mgl32.Vec3{0, 1, 0}},
	)
	return m
}

func newWorld() *scene.WorldNode {
	world := scene.NewWorldNode("world")
	cam := scene.NewCameraNode("camera")
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	world.AddChild(cam)
	world.SetActiveCamera(cam)
	return world
}

func meshNode(name string, mesh scene.Mesh, material *scene.Material) *scene.MeshNode {
	n := scene.NewMeshNode(name)
	n.SetMesh(mesh)
	n.SetMaterial(material)
	return n
}

func TestSyncAndRenderMeshNode(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	tex := scene.NewTexture(checkerSource("checker"))
	mat := scene.NewMaterial("textured")
	mat.SetTextureParameter(scene.NamedLocation("diffuse"), tex)
	mat.SetScalarParameter(scene.NamedLocation("roughness"), 0.25)
	mesh := triangleMesh()
	node := meshNode("node", mesh, mat)
	world.AddChild(node)

	require.NoError(t, r.UpdateDataForWorld(world))
	for _, e := range []scene.Renderable{node, mesh, mat, tex} {
		assert.True(t, scene.IsSynchronized(e), "entity %d", e.ID())
	}
	assert.Equal(t, 1, d.compiled[StageVertex])
	assert.Equal(t, 1, d.compiled[StageFragment])
	assert.Equal(t, 1, d.linked)

	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, 1, d.draws)
	assert.Equal(t, 1, r.LastFrame().DrawCalls)
	assert.Equal(t, float32(0.25), d.uniform("roughness"))
	assert.Equal(t, int32(0), d.uniform("diffuse"))
	assert.Contains(t, d.textures, d.bound[0])
	assert.Equal(t, mgl32.Vec3{0, 0, 5}, d.uniform(shader.UniformCameraPosition))
	assert.Equal(t, 1, d.presented)
}

func TestSecondSyncCreatesNothing(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	mat := scene.NewMaterial("m")
	mat.SetTextureParameter(scene.NamedLocation("diffuse"), scene.NewTexture(checkerSource("checker")))
	world.AddChild(meshNode("node", triangleMesh(), mat))

	require.NoError(t, r.UpdateDataForWorld(world))
	built := r.Manager().Stats().Built
	compiled := d.compiled[StageVertex] + d.compiled[StageFragment]
	uploads, textures := d.meshUploads, d.texturesMade

	require.NoError(t, r.UpdateDataForWorld(world))
	assert.Equal(t, built, r.Manager().Stats().Built)
	assert.Equal(t, compiled, d.compiled[StageVertex]+d.compiled[StageFragment])
	assert.Equal(t, uploads, d.meshUploads)
	assert.Equal(t, textures, d.texturesMade)
}

func TestMaterialsWithSameShapeShareVariant(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	a := scene.NewMaterial("a")
	a.SetVectorParameter(scene.NamedLocation("diffuse"), mgl32.Vec3{1, 0, 0})
	a.SetScalarParameter(scene.NamedLocation("metallic"), 0.1)
	b := scene.NewMaterial("b")
	b.SetVectorParameter(scene.NamedLocation("diffuse"), mgl32.Vec3{0, 0, 1})
	b.SetScalarParameter(scene.NamedLocation("metallic"), 0.9)
	mesh := triangleMesh()
	world.AddChild(meshNode("a", mesh, a))
	world.AddChild(meshNode("b", mesh, b))

	require.NoError(t, r.UpdateDataForWorld(world))
	assert.Equal(t, 1, r.Resources().FragmentVariantCount())
	assert.Equal(t, 1, d.compiled[StageFragment])
	assert.Equal(t, 1, d.linked)
	assert.Equal(t, 1, d.compiledContaining("uniform float metallic;"))

	inst := scene.NewInstancedMeshNode("inst")
	inst.SetMesh(mesh)
	inst.SetMaterial(a)
	world.AddChild(inst)
	require.NoError(t, r.UpdateDataForWorld(world))
	assert.Equal(t, 1, d.compiled[StageFragment], "variant reused for another mesh type")
	assert.Equal(t, 2, d.linked)
}

func TestMeshRevisionReuploadsWithoutRebuildingNode(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	mesh := triangleMesh()
	node := meshNode("node", mesh, nil)
	world.AddChild(node)
	require.NoError(t, r.UpdateDataForWorld(world))
	nodeObj := scene.GetRendererObject[*MeshNode](node)
	require.NotNil(t, nodeObj)

	mesh.AddTriangle(scene.Vertex{}, scene.Vertex{}, scene.Vertex{})
	assert.True(t, scene.NeedsSync(node))
	require.NoError(t, r.UpdateDataForWorld(world))

	assert.Equal(t, 2, d.meshUploads)
	assert.Len(t, d.meshes, 1, "old buffers released")
	assert.Equal(t, 1, r.Manager().Stats().Revised)
	assert.Same(t, nodeObj, scene.GetRendererObject[*MeshNode](node))
	assert.Equal(t, int32(6), scene.GetRendererObject[*Mesh](mesh).Buffers().IndexCount)
	assert.Equal(t, mesh.Revision(), scene.GetRendererObject[*Mesh](mesh).Revision())
}

func TestBinaryShaderRejectedAndRetried(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	fs := scene.NewFragmentShaderFromCode([]byte{0x03, 0x02, 0x23, 0x07})
	mat := scene.NewMaterial("custom")
	mat.SetFragmentShader(fs)
	bad := meshNode("bad", triangleMesh(), mat)
	good := meshNode("good", triangleMesh(), nil)
	world.AddChild(bad)
	world.AddChild(good)

	err := r.UpdateDataForWorld(world)
	require.Error(t, err)
	assert.ErrorIs(t, err, scene.ErrResourceCreation)
	assert.False(t, scene.HasRendererObject(bad))
	assert.False(t, scene.HasRendererObject(mat))
	assert.True(t, mat.IsDirty())
	assert.True(t, fs.IsDirty())
	assert.True(t, scene.IsSynchronized(good), "siblings keep syncing")

	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, 1, d.draws, "only the synchronized node draws")

	fs.SetContent(scene.ShaderSourceCode, "#version 400 core\n// custom\nvoid main() {}\n")
	require.NoError(t, r.UpdateDataForWorld(world))
	assert.True(t, scene.IsSynchronized(bad))
	assert.True(t, scene.IsSynchronized(mat))
	assert.Equal(t, 1, d.compiledContaining("// custom"))
}

func TestShaderRebuildKeepsMaterial(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	fs := scene.NewFragmentShaderWithContent(scene.ShaderSourceCode, "#version 400 core\n// v1\nvoid main() {}\n")
	mat := scene.NewMaterial("custom")
	mat.SetFragmentShader(fs)
	world.AddChild(meshNode("node", triangleMesh(), mat))
	require.NoError(t, r.UpdateDataForWorld(world))

	matObj := scene.GetRendererObject[*Material](mat)
	require.NotNil(t, matObj)
	linked := d.linked

	fs.SetContent(scene.ShaderSourceCode, "#version 400 core\n// v2\nvoid main() {}\n")
	require.NoError(t, r.UpdateDataForWorld(world))
	assert.Same(t, matObj, scene.GetRendererObject[*Material](mat))
	assert.Same(t, scene.GetRendererObject[*FragmentShader](fs).Collection(), matObj.Collection())
	assert.Equal(t, linked+1, d.linked)
	assert.Zero(t, r.Resources().FragmentVariantCount(), "custom shaders do not create variants")
}

func TestMissingTextureImageRetried(t *testing.T) {
	r, _ := newTestRenderer(t)
	world := newWorld()
	tex := scene.NewTexture(image.NewSource(filepath.Join(t.TempDir(), "missing.png"), image.RGBA))
	mat := scene.NewMaterial("m")
	mat.SetTextureParameter(scene.NamedLocation("diffuse"), tex)
	node := meshNode("node", triangleMesh(), mat)
	world.AddChild(node)

	err := r.UpdateDataForWorld(world)
	assert.ErrorIs(t, err, scene.ErrResourceCreation)
	assert.True(t, tex.IsDirty())
	assert.False(t, scene.HasRendererObject(tex))
	assert.False(t, scene.HasRendererObject(node))

	tex.SetImage(checkerSource("checker"))
	require.NoError(t, r.UpdateDataForWorld(world))
	assert.True(t, scene.IsSynchronized(node))
}

func TestTextureUnitLimit(t *testing.T) {
	r, d := newTestRenderer(t, func(s *config.RendererSettings) { s.MaxTextureUnits = 2 })
	world := newWorld()
	mat := scene.NewMaterial("m")
	for _, name := range []string{"specular", "diffuse", "normal"} {
		mat.SetTextureParameter(scene.NamedLocation(name), scene.NewTexture(checkerSource(name)))
	}
	world.AddChild(meshNode("node", triangleMesh(), mat))

	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Len(t, d.bound, 2)
	assert.Equal(t, int32(0), d.uniform("diffuse"))
	assert.Equal(t, int32(1), d.uniform("normal"))
	assert.Nil(t, d.uniform("specular"))
}

func TestTexturesShareCacheEntry(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	src := checkerSource("shared")
	a := scene.NewMaterial("a")
	a.SetTextureParameter(scene.NamedLocation("diffuse"), scene.NewTexture(src))
	b := scene.NewMaterial("b")
	b.SetTextureParameter(scene.NamedLocation("diffuse"), scene.NewTexture(src))
	world.AddChild(meshNode("a", triangleMesh(), a))
	world.AddChild(meshNode("b", triangleMesh(), b))

	require.NoError(t, r.UpdateDataForWorld(world))
	assert.Equal(t, 1, d.texturesMade)
	stats := r.Resources().Textures().GetStats()
	assert.Equal(t, 1, stats.CacheHits)
	assert.Equal(t, 1, stats.ActiveTextures)
}

func TestInstancesUploadedWhenChanged(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	inst := scene.NewInstancedMeshNode("inst")
	inst.SetMesh(triangleMesh())
	inst.AddInstance(mgl32.Ident4())
	inst.AddInstance(mgl32.Translate3D(2, 0, 0))
	world.AddChild(inst)

	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, 1, d.instanceUploads)
	assert.Equal(t, []int32{2, 2}, d.instancedDraws)

	built := r.Manager().Stats().Built
	inst.AddInstance(mgl32.Translate3D(4, 0, 0))
	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, built, r.Manager().Stats().Built, "node object reused")
	assert.Equal(t, 2, d.instanceUploads)
	assert.Equal(t, int32(3), d.instancedDraws[2])

	inst.ClearInstances()
	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Len(t, d.instancedDraws, 3, "no draw without instances")
}

func TestSkinMeshNodeWithoutSkeletonUsesBindPose(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	mesh := scene.NewDynamicSkinMesh()
	mesh.SetVertices(make([]scene.WeightVertex, 3))
	mesh.SetIndices([]uint32{0, 1, 2})
	node := scene.NewSkinMeshNode("skin")
	node.SetSkinMesh(mesh)
	world.AddChild(node)

	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, 1, d.compiledContaining("uniform mat4 u_bones[MAX_BONES];"))
	bones, ok := d.uniform(shader.UniformBones).([]mgl32.Mat4)
	require.True(t, ok)
	assert.Len(t, bones, shader.MaxBones)
	assert.Equal(t, 1, d.draws)

	skeleton := scene.NewSkeletonNode("skeleton")
	bone := scene.NewPivotNode("bone")
	skeleton.AddChild(bone)
	skeleton.AddBone(bone, mgl32.Ident4())
	node.SetSkeleton(skeleton)
	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	bones = d.uniform(shader.UniformBones).([]mgl32.Mat4)
	assert.Len(t, bones, 1)
}

func TestWireframeShapeIgnoresDepth(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	shape := scene.NewWireframeShape("axes")
	shape.AddLine(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0})
	shape.AddLine(mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	shape.SetIgnoreDepth(true)
	shape.SetColor(mgl32.Vec3{1, 0, 0})
	world.AddChild(shape)

	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, 1, d.lineDraws)
	assert.Equal(t, []bool{false}, d.lineDepth)
	assert.True(t, d.depthTest, "depth test restored")
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, d.uniform(shader.UniformLineColor))

	shape.SetIgnoreDepth(false)
	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, []bool{false, true}, d.lineDepth)
	assert.Len(t, d.lines, 1, "rebuilt shape released its old buffers")
}

func TestUpdateFrameSizeRecreatesGBuffer(t *testing.T) {
	r, d := newTestRenderer(t)
	require.NoError(t, r.UpdateFrameSize(640, 480))
	assert.Equal(t, 2, d.gbuffersMade)
	assert.Len(t, d.gbuffers, 1)
	assert.Equal(t, int32(640), r.GBuffer().Width())
	assert.Equal(t, [2]int32{640, 480}, d.viewport)

	err := r.UpdateFrameSize(0, 480)
	assert.ErrorIs(t, err, scene.ErrResourceCreation)
	assert.Equal(t, int32(640), r.GBuffer().Width(), "previous target kept")
}

func TestCloseUnbindsEverything(t *testing.T) {
	d := newFakeDriver()
	r := New(d, config.Default().Renderer)
	require.NoError(t, r.Initialize())

	world := newWorld()
	tex := scene.NewTexture(checkerSource("checker"))
	mat := scene.NewMaterial("m")
	mat.SetTextureParameter(scene.NamedLocation("diffuse"), tex)
	mesh := triangleMesh()
	node := meshNode("node", mesh, mat)
	world.AddChild(node)
	require.NoError(t, r.UpdateDataForWorld(world))

	r.Close()
	for _, e := range []scene.Renderable{node, mesh, mat, tex} {
		assert.False(t, scene.HasRendererObject(e))
		assert.True(t, e.IsDirty())
	}
	assert.Empty(t, d.textures)
	assert.Empty(t, d.meshes)
	assert.Empty(t, d.livePrograms)
	assert.Empty(t, d.liveShaders)
	assert.Empty(t, d.gbuffers)
	assert.ErrorIs(t, r.RenderWorld(world), errNotInitialized)

	other, _ := newTestRenderer(t)
	require.NoError(t, other.UpdateDataForWorld(world))
	assert.True(t, scene.IsSynchronized(node))
}

func TestInitializeFailure(t *testing.T) {
	d := newFakeDriver()
	d.failInit = true
	r := New(d, config.Default().Renderer)
	assert.Error(t, r.Initialize())
	assert.ErrorIs(t, r.UpdateDataForWorld(newWorld()), errNotInitialized)
}

func TestVertexShaderOverride(t *testing.T) {
	dir := t.TempDir()
	src := "#version 400 core\n// custom standard\nvoid main() {}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "standard.vert"), []byte(src), 0o644))

	r, d := newTestRenderer(t, func(s *config.RendererSettings) { s.VertexShaderDir = dir })
	world := newWorld()
	world.AddChild(meshNode("node", triangleMesh(), nil))
	inst := scene.NewInstancedMeshNode("inst")
	inst.SetMesh(triangleMesh())
	world.AddChild(inst)

	require.NoError(t, r.UpdateDataForWorld(world))
	assert.Equal(t, 1, d.compiledContaining("// custom standard"))
	assert.Equal(t, 1, d.compiledContaining("in mat4 instanceModel;"), "builtin used when no override")
}

func TestUniformCacheLooksUpOnce(t *testing.T) {
	d := newFakeDriver()
	cache := NewUniformCache(d, 1)

	first := cache.GetLocation("u_color")
	assert.Equal(t, first, cache.GetLocation("u_color"))
	assert.Equal(t, 1, d.locationLookups)

	assert.Equal(t, int32(7), cache.Resolve(scene.IndexLocation(7)))
	assert.Equal(t, 1, d.locationLookups)

	cache.Clear()
	cache.GetLocation("u_color")
	assert.Equal(t, 2, d.locationLookups)
}

func TestTextureCacheRefCounts(t *testing.T) {
	d := newFakeDriver()
	cache := NewTextureCache(d)
	src := checkerSource("shared")

	a, err := cache.Acquire(src, TextureParams{})
	require.NoError(t, err)
	b, err := cache.Acquire(src, TextureParams{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, cache.RefCount(a))

	c, err := cache.Acquire(src, TextureParams{MinFilter: scene.FilterNearest})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, d.texturesMade)

	cache.Release(a)
	assert.Contains(t, d.textures, a)
	cache.Release(b)
	assert.NotContains(t, d.textures, a)

	stats := cache.GetStats()
	assert.Equal(t, 1, stats.ActiveTextures)
	assert.Equal(t, 1, stats.CacheHits)
	assert.Equal(t, 2, stats.CacheMisses)

	cache.Release(a)
	assert.Equal(t, 1, cache.GetStats().ActiveTextures, "unknown ids are ignored")
}

func TestCompileShaderFromFile(t *testing.T) {
	d := newFakeDriver()
	path := filepath.Join(t.TempDir(), "custom.frag")
	require.NoError(t, os.WriteFile(path, []byte("// from file\n"), 0o644))

	fs := scene.NewFragmentShader(path)
	require.Equal(t, scene.ShaderSourceFile, fs.ContentType())
	s, err := CompileShader(d, StageFragment, &fs.AShader)
	require.NoError(t, err)
	assert.NotZero(t, s.ID())
	assert.Equal(t, 1, d.compiledContaining("// from file"))

	missing := scene.NewFragmentShader(filepath.Join(t.TempDir(), "nope.frag"))
	_, err = CompileShader(d, StageFragment, &missing.AShader)
	assert.ErrorIs(t, err, scene.ErrResourceCreation)
}

func TestCollectionLinksEachMeshTypeOnce(t *testing.T) {
	d := newFakeDriver()
	res := NewResources(d, "")
	c, err := res.DefaultCollection()
	require.NoError(t, err)
	assert.Nil(t, c.Program(scene.MeshTypeSkin))

	mesh, err := c.MakeMeshProgram()
	require.NoError(t, err)
	skin, err := c.MakeSkinMeshProgram()
	require.NoError(t, err)
	instanced, err := c.MakeInstancedMeshProgram()
	require.NoError(t, err)
	again, err := c.MakeMeshProgram()
	require.NoError(t, err)

	assert.Same(t, mesh, again)
	assert.Same(t, skin, c.Program(scene.MeshTypeSkin))
	assert.Same(t, instanced, c.Program(scene.MeshTypeInstanced))
	assert.Equal(t, 3, d.linked)
	assert.Equal(t, 3, d.compiled[StageVertex])
	assert.Equal(t, 1, d.compiled[StageFragment])
	res.Release()
}

func TestSharedMaterialVariantChangeKeepsSiblingsDrawing(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	mat := scene.NewMaterial("shared")
	mat.SetScalarParameter(scene.NamedLocation("roughness"), 0.5)
	world.AddChild(meshNode("plain", triangleMesh(), mat))
	inst := scene.NewInstancedMeshNode("inst")
	inst.SetMesh(triangleMesh())
	inst.SetMaterial(mat)
	inst.AddInstance(mgl32.Ident4())
	inst.AddInstance(mgl32.Translate3D(2, 0, 0))
	world.AddChild(inst)

	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	require.Equal(t, 1, d.draws)
	require.Equal(t, []int32{2}, d.instancedDraws)

	mat.SetScalarParameter(scene.NamedLocation("metallic"), 1)
	require.NoError(t, r.UpdateDataForWorld(world))
	require.NoError(t, r.RenderWorld(world))
	assert.Equal(t, 2, d.draws)
	assert.Equal(t, []int32{2, 2}, d.instancedDraws)
	assert.Equal(t, 2, r.Resources().FragmentVariantCount())
}

func TestSetImageWithSameNameUploadsNewPixels(t *testing.T) {
	r, d := newTestRenderer(t)
	world := newWorld()
	tex := scene.NewTexture(solidSource("tile", color.RGBA{R: 255, A: 255}))
	mat := scene.NewMaterial("m")
	mat.SetTextureParameter(scene.NamedLocation("diffuse"), tex)
	world.AddChild(meshNode("node", triangleMesh(), mat))

	require.NoError(t, r.UpdateDataForWorld(world))
	red := scene.GetRendererObject[*Texture](tex).ID()

	tex.SetImage(solidSource("tile", color.RGBA{B: 255, A: 255}))
	require.NoError(t, r.UpdateDataForWorld(world))
	blue := scene.GetRendererObject[*Texture](tex).ID()

	assert.NotEqual(t, red, blue)
	assert.Equal(t, 2, d.texturesMade)
	require.Contains(t, d.textures, blue)
	assert.Equal(t, []byte{0, 0, 255, 255}, d.textures[blue].Pixels()[:4])
}

func TestTextureCacheSharesFilesByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tile.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	d := newFakeDriver()
	cache := NewTextureCache(d)
	a, err := cache.Acquire(image.NewSource(path, image.RGBA), TextureParams{})
	require.NoError(t, err)
	b, err := cache.Acquire(image.NewSource(path, image.RGBA), TextureParams{})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := cache.Acquire(checkerSource(path), TextureParams{})
	require.NoError(t, err)
	other, err := cache.Acquire(checkerSource(path), TextureParams{})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, c, other)
	assert.Equal(t, 3, d.texturesMade)
}

func TestBuildMaterialErrorReturnsNilObject(t *testing.T) {
	r, _ := newTestRenderer(t)
	mat := scene.NewMaterial("custom")
	mat.SetFragmentShader(scene.NewFragmentShader("void main() {}"))

	obj, err := r.BuildMaterial(mat)
	assert.ErrorIs(t, err, scene.ErrResourceCreation)
	assert.True(t, obj == nil, "error must not wrap a typed nil")
}
