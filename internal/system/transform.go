package system

import (
	"time"

	"github.com/gatha/engine/internal/component"
	"github.com/gatha/engine/internal/core/ecs"
	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/geom"
	"github.com/gatha/engine/internal/world"
)

// ResolveTransforms recomputes the cached world matrix of every transform
// from its position, rotation and scale, and returns how many it touched.
// Parents do not contribute: each world matrix is local-to-world on its own.
func ResolveTransforms(store *ecs.ComponentStore[component.Transform]) int {
	data := store.Data()
	for i := range data {
		t := &data[i]
		t.World = geom.Compose(t.Position, t.Rotation, t.Scale)
	}
	return len(data)
}

// TransformSystem resolves world matrices once per frame, after scripts
// have mutated the world and before extraction reads it. Phase 2 (Transform).
type TransformSystem struct {
	world *world.World
}

func NewTransformSystem(w *world.World) *TransformSystem {
	return &TransformSystem{world: w}
}

func (s *TransformSystem) Phase() coresys.Phase { return coresys.PhaseTransform }

func (s *TransformSystem) Update(_ time.Duration) {
	ResolveTransforms(s.world.Transforms)
}
