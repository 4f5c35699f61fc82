package component

import "github.com/gatha/engine/internal/core/ecs"

// MaxNameLen bounds display names; longer names are truncated on load.
const MaxNameLen = 63

// HierarchyNode names an entity and links it to a parent for organisation.
// Parent is ecs.InvalidEntity for roots. Transforms are not composed along
// the parent chain.
type HierarchyNode struct {
	Parent ecs.Entity
	Name   string
}
