package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MeshType selects the vertex stage a mesh-bearing node is drawn with.
type MeshType int

const (
	MeshTypeStandard MeshType = iota
	MeshTypeSkin
	MeshTypeInstanced
)

func (t MeshType) String() string {
	switch t {
	case MeshTypeStandard:
		return "standard"
	case MeshTypeSkin:
		return "skin"
	case MeshTypeInstanced:
		return "instanced"
	}
	return "unknown"
}

// RenderableNode is a pivot that draws its bound renderer object before its
// children. Unbound nodes draw nothing.
type RenderableNode struct {
	PivotNode
	RenderableBase
}

func (n *RenderableNode) initRenderable(name string, self Node) {
	n.initPivot(name, self)
	n.RenderableBase = newRenderableBase()
}

func (n *RenderableNode) Render(ctx *RenderContext) {
	ctx.PushModel(n.LocalTransform())
	if n.object != nil {
		n.object.Render(ctx)
	}
	n.renderChildren(ctx)
	ctx.PopModel()
}

// MeshNode draws a mesh with a material.
type MeshNode struct {
	RenderableNode
	mesh     Mesh
	material *Material
}

func NewMeshNode(name string) *MeshNode {
	n := &MeshNode{}
	n.initRenderable(name, n)
	return n
}

func (n *MeshNode) Mesh() Mesh { return n.mesh }

// SetMesh also drops the node's renderer object so the next sync rebuilds it.
func (n *MeshNode) SetMesh(mesh Mesh) {
	n.mesh = mesh
	ClearRendererObject(n)
}

func (n *MeshNode) Material() *Material { return n.material }

// SetMaterial also drops the node's renderer object.
func (n *MeshNode) SetMaterial(material *Material) {
	n.material = material
	ClearRendererObject(n)
}

// EffectiveMaterial is the node material, or else the mesh default material.
func (n *MeshNode) EffectiveMaterial() *Material {
	if n.material != nil {
		return n.material
	}
	if n.mesh != nil {
		return n.mesh.DefaultMaterial()
	}
	return nil
}

// InstancedMeshNode draws its mesh once per instance transform.
type InstancedMeshNode struct {
	MeshNode
	instances        []mgl32.Mat4
	instanceRevision uint64
}

func NewInstancedMeshNode(name string) *InstancedMeshNode {
	n := &InstancedMeshNode{instanceRevision: 1}
	n.initRenderable(name, n)
	return n
}

func (n *InstancedMeshNode) Instances() []mgl32.Mat4 { return n.instances }
func (n *InstancedMeshNode) InstanceCount() int      { return len(n.instances) }

// InstancesRevision changes every time the instance list is edited.
func (n *InstancedMeshNode) InstancesRevision() uint64 { return n.instanceRevision }

func (n *InstancedMeshNode) AddInstance(transform mgl32.Mat4) int {
	n.instances = append(n.instances, transform)
	n.instancesChanged()
	return len(n.instances) - 1
}

func (n *InstancedMeshNode) SetInstance(i int, transform mgl32.Mat4) {
	if i < 0 || i >= len(n.instances) {
		return
	}
	n.instances[i] = transform
	n.instancesChanged()
}

func (n *InstancedMeshNode) RemoveInstance(i int) {
	if i < 0 || i >= len(n.instances) {
		return
	}
	n.instances = append(n.instances[:i], n.instances[i+1:]...)
	n.instancesChanged()
}

func (n *InstancedMeshNode) ClearInstances() {
	n.instances = n.instances[:0]
	n.instancesChanged()
}

func (n *InstancedMeshNode) WithInstancesRef(fn func(instances *[]mgl32.Mat4)) {
	fn(&n.instances)
	n.instancesChanged()
}

func (n *InstancedMeshNode) instancesChanged() {
	n.instanceRevision++
	n.MarkDirty()
}

// SkinMeshNode draws a skin mesh deformed by a skeleton. The skeleton is not
// owned and may be nil, in which case the bind pose is drawn.
type SkinMeshNode struct {
	RenderableNode
	skinMesh SkinMesh
	material *Material
	skeleton *SkeletonNode
}

func NewSkinMeshNode(name string) *SkinMeshNode {
	n := &SkinMeshNode{}
	n.initRenderable(name, n)
	return n
}

func (n *SkinMeshNode) SkinMesh() SkinMesh { return n.skinMesh }

func (n *SkinMeshNode) SetSkinMesh(mesh SkinMesh) {
	n.skinMesh = mesh
	ClearRendererObject(n)
}

func (n *SkinMeshNode) Material() *Material { return n.material }

func (n *SkinMeshNode) SetMaterial(material *Material) {
	n.material = material
	ClearRendererObject(n)
}

func (n *SkinMeshNode) Skeleton() *SkeletonNode { return n.skeleton }

func (n *SkinMeshNode) SetSkeleton(skeleton *SkeletonNode) {
	n.skeleton = skeleton
	ClearRendererObject(n)
}

func (n *SkinMeshNode) EffectiveMaterial() *Material {
	if n.material != nil {
		return n.material
	}
	if n.skinMesh != nil {
		return n.skinMesh.DefaultMaterial()
	}
	return nil
}

// WireframeShape draws polylines in a flat color.
type WireframeShape struct {
	RenderableNode
	points      [][]mgl32.Vec3
	color       mgl32.Vec3
	thickness   float32
	drawLine    bool
	ignoreDepth bool
}

func NewWireframeShape(name string) *WireframeShape {
	w := &WireframeShape{color: mgl32.Vec3{1, 1, 1}, thickness: 1, drawLine: true}
	w.initRenderable(name, w)
	return w
}

func (w *WireframeShape) Points() [][]mgl32.Vec3 { return w.points }

func (w *WireframeShape) SetPoints(points [][]mgl32.Vec3) {
	w.points = points
	w.MarkDirty()
}

func (w *WireframeShape) AddLine(points ...mgl32.Vec3) {
	w.points = append(w.points, points)
	w.MarkDirty()
}

func (w *WireframeShape) Color() mgl32.Vec3 { return w.color }

func (w *WireframeShape) SetColor(c mgl32.Vec3) {
	w.color = c
	w.MarkDirty()
}

func (w *WireframeShape) Thickness() float32 { return w.thickness }

func (w *WireframeShape) SetThickness(t float32) {
	w.thickness = t
	w.MarkDirty()
}

// DrawLine reports whether points are joined as strips rather than drawn as points.
func (w *WireframeShape) DrawLine() bool { return w.drawLine }

func (w *WireframeShape) SetDrawLine(v bool) {
	w.drawLine = v
	w.MarkDirty()
}

func (w *WireframeShape) IgnoreDepth() bool { return w.ignoreDepth }

func (w *WireframeShape) SetIgnoreDepth(v bool) {
	w.ignoreDepth = v
	w.MarkDirty()
}
