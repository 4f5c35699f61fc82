package system

import (
	"time"

	"github.com/gatha/engine/internal/core/event"
	coresys "github.com/gatha/engine/internal/core/system"
)

// EventSystem delivers the events emitted during the previous frame.
// Phase 0 (Input), registered first so handlers run before anything else.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
