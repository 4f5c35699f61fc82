package system

import (
	"time"

	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at frame end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.World
	last  int
}

func NewCleanupSystem(w *world.World) *CleanupSystem {
	return &CleanupSystem{world: w}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.last = s.world.FlushDestroyQueue()
}

// Destroyed returns how many entities the last flush released.
func (s *CleanupSystem) Destroyed() int { return s.last }
