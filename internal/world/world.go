package world

import (
	"github.com/gatha/engine/internal/component"
	"github.com/gatha/engine/internal/core/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

// World is the long-lived container for one loaded scene: an entity pool
// and one component store per component type. It is owned by the frame
// loop; mutation from other goroutines must be marshalled onto that loop.
type World struct {
	ecs *ecs.World

	Transforms    *ecs.ComponentStore[component.Transform]
	MeshInstances *ecs.ComponentStore[component.MeshInstance]
	Hierarchy     *ecs.ComponentStore[component.HierarchyNode]
}

// New creates a world whose entity universe holds capacity entities.
func New(capacity int) *World {
	w := ecs.NewWorld(capacity)
	return &World{
		ecs:           w,
		Transforms:    ecs.NewStore[component.Transform](w),
		MeshInstances: ecs.NewStore[component.MeshInstance](w),
		Hierarchy:     ecs.NewStore[component.HierarchyNode](w),
	}
}

func (w *World) Pool() *ecs.EntityPool { return w.ecs.Pool() }

// CreateEntity returns ecs.InvalidEntity once the universe is full.
func (w *World) CreateEntity() ecs.Entity {
	return w.ecs.CreateEntity()
}

func (w *World) Alive(e ecs.Entity) bool {
	return w.ecs.Alive(e)
}

// DestroyEntity removes every component of e and releases it immediately.
func (w *World) DestroyEntity(e ecs.Entity) {
	w.ecs.DestroyEntity(e)
}

// MarkForDestruction defers destruction of e to the end of the frame.
func (w *World) MarkForDestruction(e ecs.Entity) {
	w.ecs.MarkForDestruction(e)
}

// FlushDestroyQueue destroys queued entities and returns how many died.
func (w *World) FlushDestroyQueue() int {
	return w.ecs.FlushDestroyQueue()
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.ecs.Pool().Len()
}

// WorldMatrix returns e's cached world matrix, or identity if e has no
// transform.
func (w *World) WorldMatrix(e ecs.Entity) mgl32.Mat4 {
	if t, ok := w.Transforms.Get(e); ok {
		return t.World
	}
	return mgl32.Ident4()
}

// Name returns e's display name, or "" when e has no hierarchy node.
func (w *World) Name(e ecs.Entity) string {
	if n, ok := w.Hierarchy.Get(e); ok {
		return n.Name
	}
	return ""
}

// Children returns the entities whose hierarchy parent is e, in dense order.
func (w *World) Children(e ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	w.Hierarchy.Each(func(child ecs.Entity, n *component.HierarchyNode) {
		if n.Parent == e {
			out = append(out, child)
		}
	})
	return out
}

// Teardown releases every entity and its components. The world stays
// usable and empty afterwards.
func (w *World) Teardown() {
	w.ecs.Clear()
}
