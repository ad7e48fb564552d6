package scene

import (
	"StoneEngine/internal/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Renderer turns a world into GPU work in two phases per frame:
// UpdateDataForWorld then RenderWorld.
type Renderer interface {
	UpdateDataForWorld(world *WorldNode) error
	RenderWorld(world *WorldNode) error
	// UpdateFrameSize rebuilds every size-dependent offscreen target.
	UpdateFrameSize(width, height int32) error
	Close()
}

// SyncWorld walks world top down and hands every renderable that needs sync to
// the manager. Bound mesh nodes that are in sync still get their program
// prepared, since a shared material may have switched shader collections. A failing entity is logged and skipped; it stays dirty and is
// retried on the next call. The returned error combines all failures.
func SyncWorld(world Node, manager *RendererObjectManager) error {
	var errs error
	TraverseTopDown(world, func(n Node) {
		r, ok := n.(Renderable)
		if !ok {
			return
		}
		update := manager.RefreshProgram
		if NeedsSync(r) {
			update = manager.UpdateRenderable
		}
		if err := update(r); err != nil {
			logger.Log.Error("Renderer object sync failed",
				zap.String("node", n.Name()),
				zap.Uint32("entity", r.ID()),
				zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	})
	return errs
}

// RenderNodes prepares ctx from world's camera and renders the tree.
func RenderNodes(world *WorldNode, ctx *RenderContext) {
	world.InitializeRenderContext(ctx)
	world.Render(ctx)
}
