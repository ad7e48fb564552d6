package scene

import (
	"fmt"

	"StoneEngine/internal/logger"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RendererObjectBuilder creates the back-end objects for each entity kind.
// Every Build method returns an error wrapping ErrResourceCreation on failure
// and must not leave anything bound.
type RendererObjectBuilder interface {
	BuildMeshNode(node *MeshNode) (RendererObject, error)
	BuildInstancedMeshNode(node *InstancedMeshNode) (RendererObject, error)
	BuildSkinMeshNode(node *SkinMeshNode) (RendererObject, error)
	BuildWireframeShape(shape *WireframeShape) (RendererObject, error)
	BuildMaterial(material *Material) (RendererObject, error)
	BuildTexture(texture *Texture) (RendererObject, error)
	BuildFragmentShader(shader *FragmentShader) (RendererObject, error)
	BuildMesh(mesh Mesh) (RendererObject, error)
	BuildSkinMesh(mesh SkinMesh) (RendererObject, error)

	// PrepareProgram makes sure the program drawing meshType with material
	// (nil for the default material) is linked.
	PrepareProgram(material *Material, meshType MeshType) error
}

type ManagerStats struct {
	Built   int
	Revised int
	Failed  int
}

// RendererObjectManager brings dirty entities back in sync with the GPU.
type RendererObjectManager struct {
	builder RendererObjectBuilder
	table   *BindingTable
	stats   ManagerStats
}

func NewRendererObjectManager(builder RendererObjectBuilder) *RendererObjectManager {
	return &RendererObjectManager{
		builder: builder,
		table:   NewBindingTable(),
	}
}

func (m *RendererObjectManager) Table() *BindingTable { return m.table }
func (m *RendererObjectManager) Stats() ManagerStats  { return m.stats }

// UpdateRenderable runs the sync rule for r's kind. Kinds the manager does
// not know are left alone.
func (m *RendererObjectManager) UpdateRenderable(r Renderable) error {
	switch e := r.(type) {
	case *MeshNode:
		return m.updateMeshNode(e, e.mesh, e.EffectiveMaterial(), MeshTypeStandard, func() (RendererObject, error) {
			return m.builder.BuildMeshNode(e)
		})
	case *InstancedMeshNode:
		return m.updateMeshNode(e, e.mesh, e.EffectiveMaterial(), MeshTypeInstanced, func() (RendererObject, error) {
			return m.builder.BuildInstancedMeshNode(e)
		})
	case *SkinMeshNode:
		return m.updateMeshNode(e, e.skinMesh, e.EffectiveMaterial(), MeshTypeSkin, func() (RendererObject, error) {
			return m.builder.BuildSkinMeshNode(e)
		})
	case *WireframeShape:
		return m.updateWireframeShape(e)
	case *Material:
		return m.updateMaterial(e)
	case *Texture:
		return m.updateTexture(e)
	case *FragmentShader:
		return m.updateFragmentShader(e)
	case *DynamicMesh:
		return m.updateGeometry(e)
	case *StaticMesh:
		return m.updateGeometry(e)
	case *DynamicSkinMesh:
		return m.updateGeometry(e)
	case *StaticSkinMesh:
		return m.updateGeometry(e)
	}
	return nil
}

// RefreshProgram re-runs PrepareProgram for a bound mesh-bearing node that
// did not need sync. A material rebuilt for a sibling node may now draw with
// a collection that has no program for this node's mesh type yet.
func (m *RendererObjectManager) RefreshProgram(r Renderable) error {
	var material *Material
	var meshType MeshType
	switch e := r.(type) {
	case *MeshNode:
		material, meshType = e.EffectiveMaterial(), MeshTypeStandard
	case *InstancedMeshNode:
		material, meshType = e.EffectiveMaterial(), MeshTypeInstanced
	case *SkinMeshNode:
		material, meshType = e.EffectiveMaterial(), MeshTypeSkin
	default:
		return nil
	}
	if !HasRendererObject(r) {
		return nil
	}
	if err := m.builder.PrepareProgram(material, meshType); err != nil {
		m.stats.Failed++
		return fmt.Errorf("node %d %s program: %w", r.ID(), meshType, err)
	}
	return nil
}

// updateMeshNode syncs geometry and material first. The node object is only
// built when missing; material changes are picked up by PrepareProgram.
func (m *RendererObjectManager) updateMeshNode(node Renderable, geometry Geometry, material *Material, meshType MeshType, build func() (RendererObject, error)) error {
	var errs error
	if geometry != nil && NeedsSync(geometry) {
		errs = multierr.Append(errs, m.updateGeometry(geometry))
	}
	if material != nil && NeedsSync(material) {
		errs = multierr.Append(errs, m.updateMaterial(material))
	}
	if errs != nil {
		return fmt.Errorf("node %d dependencies: %w", node.ID(), errs)
	}

	if err := m.builder.PrepareProgram(material, meshType); err != nil {
		m.stats.Failed++
		return fmt.Errorf("node %d %s program: %w", node.ID(), meshType, err)
	}

	if HasRendererObject(node) {
		node.MarkUndirty()
		return nil
	}
	return m.build(node, "mesh node", build)
}

func (m *RendererObjectManager) updateWireframeShape(shape *WireframeShape) error {
	if !shape.IsDirty() && HasRendererObject(shape) {
		return nil
	}
	return m.build(shape, "wireframe shape", func() (RendererObject, error) {
		return m.builder.BuildWireframeShape(shape)
	})
}

// updateMaterial syncs the explicit shader and every dirty texture, then
// rebuilds the material object when the material itself changed.
func (m *RendererObjectManager) updateMaterial(material *Material) error {
	if shader := material.FragmentShader(); shader != nil && NeedsSync(shader) {
		if err := m.updateFragmentShader(shader); err != nil {
			return fmt.Errorf("material %d shader: %w", material.ID(), err)
		}
	}

	var errs error
	material.ForEachTextures(func(loc Location, tex *Texture) {
		if tex == nil || !NeedsSync(tex) {
			return
		}
		if err := m.updateTexture(tex); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("material %d texture %s: %w", material.ID(), loc, err))
		}
	})
	if errs != nil {
		return errs
	}

	if !material.IsDirty() && HasRendererObject(material) {
		return nil
	}
	return m.build(material, "material", func() (RendererObject, error) {
		return m.builder.BuildMaterial(material)
	})
}

func (m *RendererObjectManager) updateTexture(tex *Texture) error {
	if !tex.IsDirty() && HasRendererObject(tex) {
		return nil
	}
	return m.build(tex, "texture", func() (RendererObject, error) {
		return m.builder.BuildTexture(tex)
	})
}

func (m *RendererObjectManager) updateFragmentShader(shader *FragmentShader) error {
	if !shader.IsDirty() && HasRendererObject(shader) {
		return nil
	}
	return m.build(shader, "fragment shader", func() (RendererObject, error) {
		return m.builder.BuildFragmentShader(shader)
	})
}

// updateGeometry syncs the default material, then uploads the buffers only
// when the content revision differs from the one already uploaded.
func (m *RendererObjectManager) updateGeometry(g Geometry) error {
	if dm := g.DefaultMaterial(); dm != nil && NeedsSync(dm) {
		if err := m.updateMaterial(dm); err != nil {
			return fmt.Errorf("mesh %d default material: %w", g.ID(), err)
		}
	}
	if !g.IsDirty() && HasRendererObject(g) {
		return nil
	}
	if rt, ok := boundObject(g).(RevisionTracker); ok && rt.Revision() == g.Revision() {
		g.MarkUndirty()
		return nil
	}

	var build func() (RendererObject, error)
	switch mesh := g.(type) {
	case Mesh:
		build = func() (RendererObject, error) { return m.builder.BuildMesh(mesh) }
	case SkinMesh:
		build = func() (RendererObject, error) { return m.builder.BuildSkinMesh(mesh) }
	default:
		return nil
	}
	if HasRendererObject(g) {
		m.stats.Revised++
	}
	return m.build(g, "mesh", build)
}

func (m *RendererObjectManager) build(r Renderable, kind string, build func() (RendererObject, error)) error {
	obj, err := build()
	if err != nil {
		m.stats.Failed++
		return fmt.Errorf("%s %d: %w", kind, r.ID(), err)
	}
	if obj == nil {
		m.stats.Failed++
		return fmt.Errorf("%s %d: %w: builder returned no object", kind, r.ID(), ErrResourceCreation)
	}
	m.table.Bind(r, obj)
	m.stats.Built++
	logger.Log.Debug("Renderer object built",
		zap.String("kind", kind),
		zap.Uint32("entity", r.ID()))
	return nil
}

// Reset releases every renderer object. All entities become unbound and dirty.
func (m *RendererObjectManager) Reset() {
	m.table.Clear()
}

func (m *RendererObjectManager) LogStats() {
	m.table.logStats()
	logger.Log.Info("Renderer object manager stats",
		zap.Int("built", m.stats.Built),
		zap.Int("revised", m.stats.Revised),
		zap.Int("failed", m.stats.Failed))
}
