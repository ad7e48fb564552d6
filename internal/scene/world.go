package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// WorldNode is the root of a renderable scene.
type WorldNode struct {
	NodeBase
	activeCamera *CameraNode
}

func NewWorldNode(name string) *WorldNode {
	w := &WorldNode{}
	w.initNode(name, w)
	return w
}

func (w *WorldNode) ActiveCamera() *CameraNode { return w.activeCamera }

func (w *WorldNode) SetActiveCamera(c *CameraNode) { w.activeCamera = c }

// InitializeRenderContext resets ctx to identity and fills view, projection
// and camera position from the active camera, if any.
func (w *WorldNode) InitializeRenderContext(ctx *RenderContext) {
	ctx.models = ctx.models[:0]
	ctx.MVP.Model = mgl32.Ident4()
	ctx.MVP.View = mgl32.Ident4()
	ctx.MVP.Projection = mgl32.Ident4()
	ctx.CameraPosition = mgl32.Vec3{}
	if w.activeCamera == nil {
		return
	}
	world := WorldTransform(w.activeCamera)
	ctx.MVP.View = world.Inv()
	ctx.MVP.Projection = w.activeCamera.ProjectionMatrix()
	ctx.CameraPosition = world.Col(3).Vec3()
}

// CameraNode is a perspective camera looking down its local -Z axis.
type CameraNode struct {
	PivotNode
	fovY   float32
	aspect float32
	near   float32
	far    float32
}

func NewCameraNode(name string) *CameraNode {
	c := &CameraNode{fovY: mgl32.DegToRad(45), aspect: 4.0 / 3.0, near: 0.1, far: 1000}
	c.initPivot(name, c)
	return c
}

func (c *CameraNode) SetPerspective(fovYRadians, aspect, near, far float32) {
	c.fovY, c.aspect, c.near, c.far = fovYRadians, aspect, near, far
}

func (c *CameraNode) SetAspect(aspect float32) { c.aspect = aspect }
func (c *CameraNode) Aspect() float32          { return c.aspect }

func (c *CameraNode) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(c.fovY, c.aspect, c.near, c.far)
}

// LookAt rotates the camera so that its -Z axis points at target.
func (c *CameraNode) LookAt(target, up mgl32.Vec3) {
	view := mgl32.LookAtV(c.position, target, up)
	c.rotation = mgl32.Mat4ToQuat(view).Inverse()
}

// Bone ties a pivot in the scene to its inverse bind pose.
type Bone struct {
	Node        *PivotNode
	InverseBind mgl32.Mat4
}

// SkeletonNode owns the bone list of a skinned mesh.
type SkeletonNode struct {
	PivotNode
	bones []Bone
}

func NewSkeletonNode(name string) *SkeletonNode {
	s := &SkeletonNode{}
	s.initPivot(name, s)
	return s
}

func (s *SkeletonNode) AddBone(node *PivotNode, inverseBind mgl32.Mat4) int {
	s.bones = append(s.bones, Bone{Node: node, InverseBind: inverseBind})
	return len(s.bones) - 1
}

func (s *SkeletonNode) Bones() []Bone { return s.bones }

// BoneMatrices returns, per bone, the transform from bind pose to the current
// pose expressed in the skeleton's space.
func (s *SkeletonNode) BoneMatrices() []mgl32.Mat4 {
	toSkeleton := WorldTransform(s).Inv()
	out := make([]mgl32.Mat4, len(s.bones))
	for i, b := range s.bones {
		if b.Node == nil {
			out[i] = mgl32.Ident4()
			continue
		}
		out[i] = toSkeleton.Mul4(WorldTransform(b.Node)).Mul4(b.InverseBind)
	}
	return out
}
