package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type fakeObject struct {
	kind     string
	revision uint64
	released int
	renders  int
	models   []mgl32.Mat4
}

func (o *fakeObject) Render(ctx *RenderContext) {
	o.renders++
	o.models = append(o.models, ctx.MVP.Model)
}

func (o *fakeObject) Release()         { o.released++ }
func (o *fakeObject) Revision() uint64 { return o.revision }

type otherObject struct{}

func (otherObject) Render(*RenderContext) {}
func (otherObject) Release()              {}

type programRequest struct {
	material *Material
	meshType MeshType
}

// fakeBuilder counts creations per kind and fails the kinds listed in fail.
type fakeBuilder struct {
	built    map[string]int
	fail     map[string]bool
	programs []programRequest
	objects  []*fakeObject
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{built: make(map[string]int), fail: make(map[string]bool)}
}

func (b *fakeBuilder) total() int {
	n := 0
	for _, c := range b.built {
		n += c
	}
	return n
}

func (b *fakeBuilder) make(kind string, revision uint64) (RendererObject, error) {
	if b.fail[kind] {
		return nil, fmt.Errorf("%w: fake %s", ErrResourceCreation, kind)
	}
	b.built[kind]++
	obj := &fakeObject{kind: kind, revision: revision}
	b.objects = append(b.objects, obj)
	return obj, nil
}

func (b *fakeBuilder) BuildMeshNode(*MeshNode) (RendererObject, error) {
	return b.make("meshNode", 0)
}

func (b *fakeBuilder) BuildInstancedMeshNode(*InstancedMeshNode) (RendererObject, error) {
	return b.make("instancedMeshNode", 0)
}

func (b *fakeBuilder) BuildSkinMeshNode(*SkinMeshNode) (RendererObject, error) {
	return b.make("skinMeshNode", 0)
}

func (b *fakeBuilder) BuildWireframeShape(*WireframeShape) (RendererObject, error) {
	return b.make("wireframe", 0)
}

func (b *fakeBuilder) BuildMaterial(*Material) (RendererObject, error) {
	return b.make("material", 0)
}

func (b *fakeBuilder) BuildTexture(*Texture) (RendererObject, error) {
	return b.make("texture", 0)
}

func (b *fakeBuilder) BuildFragmentShader(*FragmentShader) (RendererObject, error) {
	return b.make("shader", 0)
}

func (b *fakeBuilder) BuildMesh(m Mesh) (RendererObject, error) {
	return b.make("mesh", m.Revision())
}

func (b *fakeBuilder) BuildSkinMesh(m SkinMesh) (RendererObject, error) {
	return b.make("skinMesh", m.Revision())
}

func (b *fakeBuilder) PrepareProgram(material *Material, meshType MeshType) error {
	if b.fail["program"] {
		return fmt.Errorf("%w: fake program", ErrResourceCreation)
	}
	b.programs = append(b.programs, programRequest{material: material, meshType: meshType})
	return nil
}
