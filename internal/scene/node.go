package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Node is an element of the scene tree.
type Node interface {
	Name() string
	Parent() Node
	Children() []Node
	AddChild(child Node)
	RemoveChild(child Node) bool
	// Render draws the node and its subtree.
	Render(ctx *RenderContext)
	base() *NodeBase
}

// NodeBase implements the tree links. Concrete nodes embed it and call
// initNode with themselves so children see the outer type as parent.
type NodeBase struct {
	name     string
	self     Node
	parent   Node
	children []Node
}

func (n *NodeBase) initNode(name string, self Node) {
	n.name = name
	n.self = self
}

func (n *NodeBase) base() *NodeBase { return n }

func (n *NodeBase) Name() string     { return n.name }
func (n *NodeBase) Parent() Node     { return n.parent }
func (n *NodeBase) Children() []Node { return n.children }

func (n *NodeBase) SetName(name string) { n.name = name }

// AddChild reparents child under n.
func (n *NodeBase) AddChild(child Node) {
	cb := child.base()
	if cb.parent != nil {
		cb.parent.RemoveChild(child)
	}
	cb.parent = n.self
	n.children = append(n.children, child)
}

func (n *NodeBase) RemoveChild(child Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.base().parent = nil
			return true
		}
	}
	return false
}

func (n *NodeBase) Render(ctx *RenderContext) {
	n.renderChildren(ctx)
}

func (n *NodeBase) renderChildren(ctx *RenderContext) {
	for _, c := range n.children {
		c.Render(ctx)
	}
}

// Find returns the first node named name in the subtree, depth first.
func Find(root Node, name string) Node {
	var found Node
	TraverseTopDown(root, func(n Node) {
		if found == nil && n.Name() == name {
			found = n
		}
	})
	return found
}

// TraverseTopDown visits root and then each subtree in child order.
func TraverseTopDown(root Node, visit func(Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, c := range root.Children() {
		TraverseTopDown(c, visit)
	}
}

// Transformable is implemented by nodes that carry a local transform.
type Transformable interface {
	LocalTransform() mgl32.Mat4
}

// WorldTransform accumulates local transforms from the root down to n.
func WorldTransform(n Node) mgl32.Mat4 {
	m := mgl32.Ident4()
	for cur := n; cur != nil; cur = cur.Parent() {
		if t, ok := cur.(Transformable); ok {
			m = t.LocalTransform().Mul4(m)
		}
	}
	return m
}

// PivotNode is a node with a translation, rotation and scale.
type PivotNode struct {
	NodeBase
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

func NewPivotNode(name string) *PivotNode {
	p := &PivotNode{}
	p.initPivot(name, p)
	return p
}

func (p *PivotNode) initPivot(name string, self Node) {
	p.initNode(name, self)
	p.rotation = mgl32.QuatIdent()
	p.scale = mgl32.Vec3{1, 1, 1}
}

func (p *PivotNode) Position() mgl32.Vec3 { return p.position }
func (p *PivotNode) Rotation() mgl32.Quat { return p.rotation }
func (p *PivotNode) Scale() mgl32.Vec3    { return p.scale }

func (p *PivotNode) SetPosition(v mgl32.Vec3) { p.position = v }
func (p *PivotNode) SetRotation(q mgl32.Quat) { p.rotation = q.Normalize() }
func (p *PivotNode) SetScale(v mgl32.Vec3)    { p.scale = v }

func (p *PivotNode) Translate(v mgl32.Vec3) { p.position = p.position.Add(v) }

// Rotate applies an axis-angle rotation after the current one.
func (p *PivotNode) Rotate(axis mgl32.Vec3, radians float32) {
	p.rotation = mgl32.QuatRotate(radians, axis.Normalize()).Mul(p.rotation).Normalize()
}

func (p *PivotNode) LocalTransform() mgl32.Mat4 {
	t := mgl32.Translate3D(p.position.X(), p.position.Y(), p.position.Z())
	r := p.rotation.Mat4()
	s := mgl32.Scale3D(p.scale.X(), p.scale.Y(), p.scale.Z())
	return t.Mul4(r).Mul4(s)
}

func (p *PivotNode) Render(ctx *RenderContext) {
	ctx.PushModel(p.LocalTransform())
	p.renderChildren(ctx)
	ctx.PopModel()
}
