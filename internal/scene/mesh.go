package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
	UV        mgl32.Vec2
}

// WeightVertex is a vertex influenced by up to four bones.
type WeightVertex struct {
	Vertex
	BoneIDs [4]uint32
	Weights [4]float32
}

// Geometry is the common part of meshes and skin meshes. Revision changes
// only when the vertex or index content changes.
type Geometry interface {
	Renderable
	DefaultMaterial() *Material
	SetDefaultMaterial(*Material)
	Revision() uint64
}

type Mesh interface {
	Geometry
	Vertices() []Vertex
	Indices() []uint32
}

type SkinMesh interface {
	Geometry
	Vertices() []WeightVertex
	Indices() []uint32
}

type geometryBase struct {
	RenderableBase
	defaultMaterial *Material
	revision        uint64
}

func newGeometryBase() geometryBase {
	return geometryBase{RenderableBase: newRenderableBase(), revision: 1}
}

func (g *geometryBase) DefaultMaterial() *Material { return g.defaultMaterial }

func (g *geometryBase) SetDefaultMaterial(m *Material) {
	g.defaultMaterial = m
	g.MarkDirty()
}

func (g *geometryBase) Revision() uint64 { return g.revision }

func (g *geometryBase) contentChanged() {
	g.revision++
	g.MarkDirty()
}

// DynamicMesh is an editable triangle mesh.
type DynamicMesh struct {
	geometryBase
	vertices []Vertex
	indices  []uint32
}

func NewDynamicMesh() *DynamicMesh {
	return &DynamicMesh{geometryBase: newGeometryBase()}
}

func (m *DynamicMesh) Vertices() []Vertex { return m.vertices }
func (m *DynamicMesh) Indices() []uint32  { return m.indices }

func (m *DynamicMesh) SetVertices(vertices []Vertex) {
	m.vertices = vertices
	m.contentChanged()
}

func (m *DynamicMesh) SetIndices(indices []uint32) {
	m.indices = indices
	m.contentChanged()
}

// WithElementsRef gives fn mutable access to the vertex and index slices.
// The mesh is always marked dirty afterwards.
func (m *DynamicMesh) WithElementsRef(fn func(vertices *[]Vertex, indices *[]uint32)) {
	fn(&m.vertices, &m.indices)
	m.contentChanged()
}

// AddTriangle appends three vertices and their indices.
func (m *DynamicMesh) AddTriangle(a, b, c Vertex) {
	base := uint32(len(m.vertices))
	m.vertices = append(m.vertices, a, b, c)
	m.indices = append(m.indices, base, base+1, base+2)
	m.contentChanged()
}

// StaticMesh is uploaded once from a snapshot of a dynamic mesh.
type StaticMesh struct {
	geometryBase
	vertices []Vertex
	indices  []uint32
}

func NewStaticMesh(source *DynamicMesh) *StaticMesh {
	m := &StaticMesh{
		geometryBase: newGeometryBase(),
		vertices:     append([]Vertex(nil), source.vertices...),
		indices:      append([]uint32(nil), source.indices...),
	}
	m.defaultMaterial = source.defaultMaterial
	return m
}

func (m *StaticMesh) Vertices() []Vertex { return m.vertices }
func (m *StaticMesh) Indices() []uint32  { return m.indices }

type DynamicSkinMesh struct {
	geometryBase
	vertices []WeightVertex
	indices  []uint32
}

func NewDynamicSkinMesh() *DynamicSkinMesh {
	return &DynamicSkinMesh{geometryBase: newGeometryBase()}
}

func (m *DynamicSkinMesh) Vertices() []WeightVertex { return m.vertices }
func (m *DynamicSkinMesh) Indices() []uint32        { return m.indices }

func (m *DynamicSkinMesh) SetVertices(vertices []WeightVertex) {
	m.vertices = vertices
	m.contentChanged()
}

func (m *DynamicSkinMesh) SetIndices(indices []uint32) {
	m.indices = indices
	m.contentChanged()
}

func (m *DynamicSkinMesh) WithElementsRef(fn func(vertices *[]WeightVertex, indices *[]uint32)) {
	fn(&m.vertices, &m.indices)
	m.contentChanged()
}

type StaticSkinMesh struct {
	geometryBase
	vertices []WeightVertex
	indices  []uint32
}

func NewStaticSkinMesh(source *DynamicSkinMesh) *StaticSkinMesh {
	m := &StaticSkinMesh{
		geometryBase: newGeometryBase(),
		vertices:     append([]WeightVertex(nil), source.vertices...),
		indices:      append([]uint32(nil), source.indices...),
	}
	m.defaultMaterial = source.defaultMaterial
	return m
}

func (m *StaticSkinMesh) Vertices() []WeightVertex { return m.vertices }
func (m *StaticSkinMesh) Indices() []uint32        { return m.indices }
