package scene

import (
	"StoneEngine/internal/logger"

	"go.uber.org/zap"
)

type binding struct {
	entity Renderable
	object RendererObject
}

// BindingTable owns the renderer objects of one renderer, keyed by entity id.
// Entities only hold a reference; dropping the table entry unbinds them.
type BindingTable struct {
	bindings map[uint32]binding
}

func NewBindingTable() *BindingTable {
	return &BindingTable{bindings: make(map[uint32]binding)}
}

// Bind stores obj for r, releasing any object r had before, then binds it to
// r and marks r clean.
func (t *BindingTable) Bind(r Renderable, obj RendererObject) {
	if old, ok := t.bindings[r.ID()]; ok && old.object != obj {
		old.object.Release()
	}
	t.bindings[r.ID()] = binding{entity: r, object: obj}
	SetRendererObjectTo(r, obj)
}

func (t *BindingTable) Lookup(r Renderable) (RendererObject, bool) {
	b, ok := t.bindings[r.ID()]
	return b.object, ok
}

// Drop releases the object owned for r and unbinds r.
func (t *BindingTable) Drop(r Renderable) {
	b, ok := t.bindings[r.ID()]
	if !ok {
		return
	}
	delete(t.bindings, r.ID())
	b.object.Release()
	if boundObject(r) == b.object {
		ClearRendererObject(r)
	}
}

// Clear releases every object and unbinds every entity.
func (t *BindingTable) Clear() {
	for id, b := range t.bindings {
		b.object.Release()
		if boundObject(b.entity) == b.object {
			ClearRendererObject(b.entity)
		}
		delete(t.bindings, id)
	}
	logger.Log.Debug("Binding table cleared")
}

func (t *BindingTable) Len() int { return len(t.bindings) }

func (t *BindingTable) logStats() {
	logger.Log.Info("Renderer objects bound", zap.Int("count", len(t.bindings)))
}
