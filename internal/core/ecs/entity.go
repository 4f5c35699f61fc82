package ecs

// Entity is an opaque index into a fixed-capacity entity universe.
// It carries no data itself; components are looked up through stores.
type Entity uint32

// InvalidEntity is returned when no entity could be allocated and is used
// as the "no parent" marker in hierarchy nodes.
const InvalidEntity Entity = ^Entity(0)

// DefaultCapacity is the size of the entity universe used when a
// non-positive capacity is requested.
const DefaultCapacity = 65536

// Valid reports whether e is not the invalid sentinel.
func (e Entity) Valid() bool { return e != InvalidEntity }

// EntityPool allocates and recycles entity ids within a fixed universe.
// Capacity never grows: once every slot is live, Create returns InvalidEntity.
type EntityPool struct {
	alive    []bool
	freeList []Entity
	nextID   uint32
	count    int
}

func NewEntityPool(capacity int) *EntityPool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EntityPool{
		alive:    make([]bool, capacity),
		freeList: make([]Entity, 0, 256),
	}
}

// Create returns a recycled id if one is available, otherwise the next
// never-used id. It returns InvalidEntity once the universe is exhausted.
func (p *EntityPool) Create() Entity {
	var e Entity
	if n := len(p.freeList); n > 0 {
		e = p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
	} else {
		if int(p.nextID) >= len(p.alive) {
			return InvalidEntity
		}
		e = Entity(p.nextID)
		p.nextID++
	}
	p.alive[e] = true
	p.count++
	return e
}

// Release frees e for reuse. Out-of-range or already free ids are ignored.
func (p *EntityPool) Release(e Entity) {
	if !p.Alive(e) {
		return
	}
	p.alive[e] = false
	p.freeList = append(p.freeList, e)
	p.count--
}

func (p *EntityPool) Alive(e Entity) bool {
	return int64(e) < int64(len(p.alive)) && p.alive[e]
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.count }

// Capacity returns the size of the entity universe.
func (p *EntityPool) Capacity() int { return len(p.alive) }

// HighWater returns the number of ids ever handed out from the fresh range.
func (p *EntityPool) HighWater() int { return int(p.nextID) }

// EachAlive calls fn for every live entity in ascending id order.
func (p *EntityPool) EachAlive(fn func(Entity)) {
	for i := uint32(0); i < p.nextID; i++ {
		if p.alive[i] {
			fn(Entity(i))
		}
	}
}
