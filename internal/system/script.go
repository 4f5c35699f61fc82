package system

import (
	"time"

	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/scripting"
)

// ScriptSystem runs the scene script's on_frame hook. Phase 1 (Update).
type ScriptSystem struct {
	engine *scripting.Engine
	frames uint64
}

func NewScriptSystem(engine *scripting.Engine) *ScriptSystem {
	return &ScriptSystem{engine: engine}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) Update(dt time.Duration) {
	s.frames++
	s.engine.OnFrame(dt, s.frames)
}
