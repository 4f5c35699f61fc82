package component

// MeshInstance references an entry in the asset registry. It owns no geometry.
type MeshInstance struct {
	AssetID uint32
}
