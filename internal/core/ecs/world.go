package ecs

// World is the generic ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed at the end of each frame.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []Entity
}

func NewWorld(capacity int) *World {
	return &World{
		pool:         NewEntityPool(capacity),
		registry:     NewRegistry(),
		destroyQueue: make([]Entity, 0, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// NewStore creates a component store sized to w's universe and registers it.
func NewStore[T any](w *World) *ComponentStore[T] {
	s := NewComponentStore[T](w.pool.Capacity())
	w.registry.Register(s)
	return s
}

// CreateEntity returns InvalidEntity when the universe is exhausted.
func (w *World) CreateEntity() Entity {
	return w.pool.Create()
}

func (w *World) Alive(e Entity) bool {
	return w.pool.Alive(e)
}

// DestroyEntity strips e from every registered store, then releases it.
// Dead or out-of-range entities are ignored.
func (w *World) DestroyEntity(e Entity) {
	if !w.pool.Alive(e) {
		return
	}
	w.registry.RemoveAll(e)
	w.pool.Release(e)
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (w *World) MarkForDestruction(e Entity) {
	if !w.pool.Alive(e) {
		return
	}
	w.destroyQueue = append(w.destroyQueue, e)
}

// Pending returns the number of entities queued for destruction.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and clears their components.
// Duplicate queue entries are harmless.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, e := range w.destroyQueue {
		if w.pool.Alive(e) {
			w.DestroyEntity(e)
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

// Clear destroys every live entity and drops the pending queue.
func (w *World) Clear() {
	w.pool.EachAlive(w.DestroyEntity)
	w.destroyQueue = w.destroyQueue[:0]
}
