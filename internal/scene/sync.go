package scene

// NeedsSync reports whether r or anything it references is dirty or unbound
// in a way the manager would act on. It never changes any flag.
func NeedsSync(r Renderable) bool {
	if r == nil {
		return false
	}
	if r.IsDirty() {
		return true
	}
	switch e := r.(type) {
	case *Material:
		return materialNeedsSync(e)
	case *DynamicMesh, *StaticMesh, *DynamicSkinMesh, *StaticSkinMesh:
		return materialNeedsSync(e.(Geometry).DefaultMaterial())
	case *MeshNode:
		return geometryNeedsSync(e.mesh) || materialNeedsSync(e.EffectiveMaterial())
	case *InstancedMeshNode:
		return geometryNeedsSync(e.mesh) || materialNeedsSync(e.EffectiveMaterial())
	case *SkinMeshNode:
		return geometryNeedsSync(e.skinMesh) || materialNeedsSync(e.EffectiveMaterial())
	}
	return false
}

func materialNeedsSync(m *Material) bool {
	if m == nil {
		return false
	}
	if m.IsDirty() {
		return true
	}
	if m.fragmentShader != nil && m.fragmentShader.IsDirty() {
		return true
	}
	for _, tex := range m.textures {
		if tex != nil && tex.IsDirty() {
			return true
		}
	}
	return false
}

func geometryNeedsSync(g Geometry) bool {
	if g == nil {
		return false
	}
	return g.IsDirty() || materialNeedsSync(g.DefaultMaterial())
}
