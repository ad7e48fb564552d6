package opengl

import (
	"errors"
	"strings"

	"StoneEngine/internal/image"
	"StoneEngine/internal/scene"

	"github.com/go-gl/mathgl/mgl32"
)

var errFake = errors.New("fake driver failure")

// fakeDriver records GL calls without a context. Ids are never reused.
type fakeDriver struct {
	nextID uint32

	compiled        map[ShaderStage]int
	sources         []string
	liveShaders     map[uint32]bool
	linked          int
	livePrograms    map[uint32]bool
	used            []uint32
	locationLookups int
	locations       map[string]int32
	uniforms        map[int32]any

	textures     map[uint32]*image.Data
	texturesMade int
	bound        map[uint32]uint32

	meshes          map[uint32]MeshBuffers
	meshUploads     int
	buffers         map[uint32]bool
	instanceUploads int
	lines           map[uint32]LineBuffers
	gbuffers        map[uint32]GBufferTargets
	gbuffersMade    int

	draws          int
	instancedDraws []int32
	lineDraws      int
	lineDepth      []bool
	presented      int
	depthTest      bool
	lineWidth      float32
	wireframe      bool
	viewport       [2]int32
	framebuffer    uint32

	failCompile  func(source string) bool
	failLink     bool
	failTextures bool
	failUploads  bool
	failInit     bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		compiled:     make(map[ShaderStage]int),
		liveShaders:  make(map[uint32]bool),
		livePrograms: make(map[uint32]bool),
		locations:    make(map[string]int32),
		uniforms:     make(map[int32]any),
		textures:     make(map[uint32]*image.Data),
		bound:        make(map[uint32]uint32),
		meshes:       make(map[uint32]MeshBuffers),
		buffers:      make(map[uint32]bool),
		lines:        make(map[uint32]LineBuffers),
		gbuffers:     make(map[uint32]GBufferTargets),
	}
}

func (d *fakeDriver) id() uint32 {
	d.nextID++
	return d.nextID
}

func (d *fakeDriver) Init() error {
	if d.failInit {
		return errFake
	}
	return nil
}

func (d *fakeDriver) CompileShader(stage ShaderStage, source string) (uint32, error) {
	if d.failCompile != nil && d.failCompile(source) {
		return 0, errFake
	}
	d.compiled[stage]++
	d.sources = append(d.sources, source)
	id := d.id()
	d.liveShaders[id] = true
	return id, nil
}

func (d *fakeDriver) DeleteShader(id uint32) { delete(d.liveShaders, id) }

func (d *fakeDriver) LinkProgram(vertex, fragment uint32) (uint32, error) {
	if d.failLink || !d.liveShaders[vertex] || !d.liveShaders[fragment] {
		return 0, errFake
	}
	d.linked++
	id := d.id()
	d.livePrograms[id] = true
	return id, nil
}

func (d *fakeDriver) DeleteProgram(id uint32) { delete(d.livePrograms, id) }
func (d *fakeDriver) UseProgram(id uint32)    { d.used = append(d.used, id) }

// UniformLocation gives every name one stable location, shared by programs.
func (d *fakeDriver) UniformLocation(_ uint32, name string) int32 {
	d.locationLookups++
	if loc, ok := d.locations[name]; ok {
		return loc
	}
	loc := int32(len(d.locations))
	d.locations[name] = loc
	return loc
}

func (d *fakeDriver) Uniform1i(loc int32, v int32)                  { d.uniforms[loc] = v }
func (d *fakeDriver) Uniform1f(loc int32, v float32)                { d.uniforms[loc] = v }
func (d *fakeDriver) Uniform3f(loc int32, v mgl32.Vec3)             { d.uniforms[loc] = v }
func (d *fakeDriver) UniformMatrix3(loc int32, m mgl32.Mat3)        { d.uniforms[loc] = m }
func (d *fakeDriver) UniformMatrix4(loc int32, m mgl32.Mat4)        { d.uniforms[loc] = m }
func (d *fakeDriver) UniformMatrix4Array(loc int32, m []mgl32.Mat4) { d.uniforms[loc] = m }

func (d *fakeDriver) uniform(name string) any {
	loc, ok := d.locations[name]
	if !ok {
		return nil
	}
	return d.uniforms[loc]
}

func (d *fakeDriver) CreateTexture(data *image.Data, _ TextureParams) (uint32, error) {
	if d.failTextures {
		return 0, errFake
	}
	d.texturesMade++
	id := d.id()
	d.textures[id] = data
	return id, nil
}

func (d *fakeDriver) DeleteTexture(id uint32)            { delete(d.textures, id) }
func (d *fakeDriver) BindTexture(unit uint32, id uint32) { d.bound[unit] = id }

func (d *fakeDriver) UploadMesh(vertices []scene.Vertex, indices []uint32) (MeshBuffers, error) {
	return d.upload(len(indices))
}

func (d *fakeDriver) UploadSkinMesh(vertices []scene.WeightVertex, indices []uint32) (MeshBuffers, error) {
	return d.upload(len(indices))
}

func (d *fakeDriver) upload(indexCount int) (MeshBuffers, error) {
	if d.failUploads {
		return MeshBuffers{}, errFake
	}
	d.meshUploads++
	b := MeshBuffers{VAO: d.id(), VBO: d.id(), EBO: d.id(), IndexCount: int32(indexCount)}
	d.meshes[b.VAO] = b
	return b, nil
}

func (d *fakeDriver) DeleteMeshBuffers(b MeshBuffers) { delete(d.meshes, b.VAO) }
func (d *fakeDriver) DrawElements(MeshBuffers)        { d.draws++ }

func (d *fakeDriver) CreateBuffer() (uint32, error) {
	if d.failUploads {
		return 0, errFake
	}
	id := d.id()
	d.buffers[id] = true
	return id, nil
}

func (d *fakeDriver) UploadInstances(uint32, []mgl32.Mat4) { d.instanceUploads++ }

func (d *fakeDriver) DrawElementsInstanced(_ MeshBuffers, _ uint32, count int32) {
	d.instancedDraws = append(d.instancedDraws, count)
}

func (d *fakeDriver) DeleteBuffer(id uint32) { delete(d.buffers, id) }

func (d *fakeDriver) UploadLines(lines [][]mgl32.Vec3) (LineBuffers, error) {
	if d.failUploads {
		return LineBuffers{}, errFake
	}
	b := LineBuffers{VAO: d.id(), VBO: d.id()}
	first := int32(0)
	for _, l := range lines {
		b.Ranges = append(b.Ranges, [2]int32{first, int32(len(l))})
		first += int32(len(l))
	}
	d.lines[b.VAO] = b
	return b, nil
}

func (d *fakeDriver) DrawLines(LineBuffers, bool) {
	d.lineDraws++
	d.lineDepth = append(d.lineDepth, d.depthTest)
}

func (d *fakeDriver) DeleteLineBuffers(b LineBuffers) { delete(d.lines, b.VAO) }
func (d *fakeDriver) SetLineWidth(width float32)      { d.lineWidth = width }
func (d *fakeDriver) SetDepthTest(enabled bool)       { d.depthTest = enabled }

func (d *fakeDriver) CreateGBuffer(width, height int32) (GBufferTargets, error) {
	d.gbuffersMade++
	g := GBufferTargets{
		Framebuffer: d.id(),
		Position:    d.id(),
		Normal:      d.id(),
		AlbedoSpec:  d.id(),
		Depth:       d.id(),
		Width:       width,
		Height:      height,
	}
	d.gbuffers[g.Framebuffer] = g
	return g, nil
}

func (d *fakeDriver) DeleteGBuffer(g GBufferTargets) { delete(d.gbuffers, g.Framebuffer) }
func (d *fakeDriver) BindFramebuffer(id uint32)      { d.framebuffer = id }
func (d *fakeDriver) PresentGBuffer(GBufferTargets)  { d.presented++ }
func (d *fakeDriver) Clear(mgl32.Vec3)               {}
func (d *fakeDriver) Viewport(width, height int32)   { d.viewport = [2]int32{width, height} }
func (d *fakeDriver) SetWireframe(enabled bool)      { d.wireframe = enabled }

func (d *fakeDriver) compiledContaining(fragment string) int {
	n := 0
	for _, s := range d.sources {
		if strings.Contains(s, fragment) {
			n++
		}
	}
	return n
}
