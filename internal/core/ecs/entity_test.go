package ecs

import "testing"

func TestEntityPoolLifecycle(t *testing.T) {
	cases := []struct {
		name     string
		capacity int
		create   int
		release  []int // indexes into created entities
		wantLen  int
	}{
		{"single", 4, 1, nil, 1},
		{"release_middle", 4, 3, []int{1}, 2},
		{"release_all", 4, 4, []int{0, 1, 2, 3}, 0},
		{"double_release", 4, 2, []int{0, 0}, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := NewEntityPool(c.capacity)
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				e := p.Create()
				if !e.Valid() {
					t.Fatalf("create %d returned invalid entity", i)
				}
				ents = append(ents, e)
			}
			for _, idx := range c.release {
				p.Release(ents[idx])
				if p.Alive(ents[idx]) {
					t.Fatalf("entity %d alive after release", ents[idx])
				}
			}
			if p.Len() != c.wantLen {
				t.Fatalf("expected %d live entities, got %d", c.wantLen, p.Len())
			}
		})
	}
}

func TestEntityPoolRecyclesReleasedID(t *testing.T) {
	p := NewEntityPool(8)
	a := p.Create()
	_ = p.Create()
	p.Release(a)
	if p.Alive(a) {
		t.Fatalf("released entity reported alive")
	}
	if got := p.Create(); got != a {
		t.Fatalf("expected recycled id %d, got %d", a, got)
	}
	if p.HighWater() != 2 {
		t.Fatalf("recycling must not advance the high-water mark, got %d", p.HighWater())
	}
}

func TestEntityPoolExhaustion(t *testing.T) {
	p := NewEntityPool(3)
	for i := 0; i < 3; i++ {
		if e := p.Create(); e != Entity(i) {
			t.Fatalf("expected id %d, got %d", i, e)
		}
	}
	for i := 0; i < 2; i++ {
		if e := p.Create(); e != InvalidEntity {
			t.Fatalf("expected InvalidEntity after exhaustion, got %d", e)
		}
	}
	if p.Len() != 3 {
		t.Fatalf("failed creates must not change live count, got %d", p.Len())
	}

	p.Release(1)
	if e := p.Create(); e != 1 {
		t.Fatalf("expected freed id 1 to be reusable at capacity, got %d", e)
	}
}

func TestEntityPoolOutOfRange(t *testing.T) {
	p := NewEntityPool(2)
	for _, e := range []Entity{2, 100, InvalidEntity} {
		if p.Alive(e) {
			t.Fatalf("out of range id %d reported alive", e)
		}
		p.Release(e)
	}
	if p.Len() != 0 {
		t.Fatalf("releasing out-of-range ids changed live count to %d", p.Len())
	}
	if e := p.Create(); e != 0 {
		t.Fatalf("pool corrupted by out-of-range release, got %d", e)
	}
}

func TestEntityPoolNeverAliveAboveHighWater(t *testing.T) {
	p := NewEntityPool(16)
	p.Create()
	p.Create()
	for e := Entity(p.HighWater()); e < 16; e++ {
		if p.Alive(e) {
			t.Fatalf("id %d above high-water reported alive", e)
		}
	}
}
