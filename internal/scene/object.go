package scene

import (
	"fmt"
	"sync/atomic"

	"StoneEngine/internal/logger"

	"go.uber.org/zap"
)

var lastObjectID atomic.Uint32

// Object carries the identity of a scene entity. Ids start at 1, increase
// monotonically and are never reused within a process.
type Object struct {
	id uint32
}

func newObject() Object {
	return Object{id: lastObjectID.Add(1)}
}

func (o *Object) ID() uint32 {
	return o.id
}

// RendererObject is a back-end GPU resource bound to one entity.
type RendererObject interface {
	Render(ctx *RenderContext)
	// Release frees the GPU resources. The owning renderer calls it exactly once.
	Release()
}

// RevisionTracker is implemented by renderer objects that remember which
// content revision of their entity they uploaded.
type RevisionTracker interface {
	Revision() uint64
}

// Renderable is an entity that participates in dirty tracking and can be
// bound to a RendererObject.
type Renderable interface {
	ID() uint32
	MarkDirty()
	MarkUndirty()
	IsDirty() bool
	renderable() *RenderableBase
}

// RenderableBase is embedded by every renderable entity. It starts dirty.
type RenderableBase struct {
	Object
	dirty  bool
	object RendererObject
}

func newRenderableBase() RenderableBase {
	return RenderableBase{Object: newObject(), dirty: true}
}

func (r *RenderableBase) MarkDirty()    { r.dirty = true }
func (r *RenderableBase) MarkUndirty()  { r.dirty = false }
func (r *RenderableBase) IsDirty() bool { return r.dirty }

func (r *RenderableBase) renderable() *RenderableBase { return r }

// HasRendererObject reports whether r is currently bound.
func HasRendererObject(r Renderable) bool {
	return r.renderable().object != nil
}

// IsSynchronized reports whether r is clean and bound.
func IsSynchronized(r Renderable) bool {
	return !r.IsDirty() && HasRendererObject(r)
}

// GetRendererObject returns the object bound to r as T, or the zero T when
// nothing is bound. Asking for a type that does not match the bound object is
// a programming error: it panics in development and returns zero otherwise.
func GetRendererObject[T RendererObject](r Renderable) T {
	var zero T
	obj := r.renderable().object
	if obj == nil {
		return zero
	}
	typed, ok := obj.(T)
	if !ok {
		logger.Log.DPanic("Renderer object type mismatch",
			zap.Uint32("entity", r.ID()),
			zap.String("requested", fmt.Sprintf("%T", zero)),
			zap.String("bound", fmt.Sprintf("%T", obj)))
		return zero
	}
	return typed
}

// SetRendererObjectTo binds obj to r and marks r clean in one step.
func SetRendererObjectTo(r Renderable, obj RendererObject) {
	base := r.renderable()
	base.object = obj
	base.dirty = false
}

// ClearRendererObject unbinds r and marks it dirty so the next sync rebuilds it.
// It does not release the object; that belongs to the binding table.
func ClearRendererObject(r Renderable) {
	base := r.renderable()
	base.object = nil
	base.dirty = true
}

func boundObject(r Renderable) RendererObject {
	return r.renderable().object
}
