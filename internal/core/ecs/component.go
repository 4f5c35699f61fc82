package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(e Entity)
	Has(e Entity) bool
	Len() int
}

const absent = ^uint32(0)

// ComponentStore is a sparse set mapping entities to values of T.
// Values live in a dense slice index-aligned with a dense entity slice;
// the sparse slice maps an entity to its dense index or absent.
//
// Pointers returned by Add and Get are invalidated by the next Add or
// Remove on the same store.
type ComponentStore[T any] struct {
	data     []T
	entities []Entity
	sparse   []uint32
}

// NewComponentStore creates a store for entities in [0, capacity).
func NewComponentStore[T any](capacity int) *ComponentStore[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	sparse := make([]uint32, capacity)
	for i := range sparse {
		sparse[i] = absent
	}
	return &ComponentStore[T]{
		data:     make([]T, 0, 256),
		entities: make([]Entity, 0, 256),
		sparse:   sparse,
	}
}

func (s *ComponentStore[T]) inRange(e Entity) bool {
	return int64(e) < int64(len(s.sparse))
}

func (s *ComponentStore[T]) Has(e Entity) bool {
	return s.inRange(e) && s.sparse[e] != absent
}

// Get returns e's component, or nil and false when e has none.
func (s *ComponentStore[T]) Get(e Entity) (*T, bool) {
	if !s.Has(e) {
		return nil, false
	}
	return &s.data[s.sparse[e]], true
}

// Add attaches c to e and returns a pointer to the stored value. If e
// already has a component the existing one is returned untouched.
// Entities outside the universe yield nil.
func (s *ComponentStore[T]) Add(e Entity, c T) *T {
	if !s.inRange(e) {
		return nil
	}
	if idx := s.sparse[e]; idx != absent {
		return &s.data[idx]
	}
	idx := uint32(len(s.data))
	s.data = append(s.data, c)
	s.entities = append(s.entities, e)
	s.sparse[e] = idx
	return &s.data[idx]
}

// Remove detaches e's component by moving the last dense element into its
// slot. Relative order of the remaining components is not preserved.
func (s *ComponentStore[T]) Remove(e Entity) {
	if !s.Has(e) {
		return
	}
	idx := s.sparse[e]
	last := uint32(len(s.data) - 1)
	if idx != last {
		moved := s.entities[last]
		s.data[idx] = s.data[last]
		s.entities[idx] = moved
		s.sparse[moved] = idx
	}
	var zero T
	s.data[last] = zero
	s.data = s.data[:last]
	s.entities = s.entities[:last]
	s.sparse[e] = absent
}

func (s *ComponentStore[T]) Len() int {
	return len(s.data)
}

// Entities returns the dense entity slice, index-aligned with Data.
// The slice aliases store memory and must not be modified.
func (s *ComponentStore[T]) Entities() []Entity {
	return s.entities
}

// Data returns the dense component slice, index-aligned with Entities.
// Elements may be modified in place.
func (s *ComponentStore[T]) Data() []T {
	return s.data
}

// Each calls fn for every component in dense order.
func (s *ComponentStore[T]) Each(fn func(Entity, *T)) {
	for i := range s.data {
		fn(s.entities[i], &s.data[i])
	}
}

// Clear removes every component.
func (s *ComponentStore[T]) Clear() {
	for _, e := range s.entities {
		s.sparse[e] = absent
	}
	clear(s.data)
	s.data = s.data[:0]
	s.entities = s.entities[:0]
}
