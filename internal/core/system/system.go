package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain input, hot-reload and collaborator events
	PhaseUpdate                 // 1: scripted and editor mutations of the world
	PhaseTransform              // 2: recompute cached world matrices
	PhaseExtract                // 3: cull + batch visible instances
	PhaseRender                 // 4: hand the frame to the renderer
	PhaseCleanup                // 5: destroy queued entities
)

var phaseNames = [...]string{"input", "update", "transform", "extract", "render", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every frame system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
