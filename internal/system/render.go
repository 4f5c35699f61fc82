package system

import (
	"time"

	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/render"
)

// FrameSource supplies the frame extracted earlier in the same tick.
type FrameSource interface {
	Frame() *render.Frame
}

// RenderSystem hands the extracted frame to the renderer. Phase 4 (Render).
type RenderSystem struct {
	source   FrameSource
	renderer render.Renderer
}

func NewRenderSystem(source FrameSource, renderer render.Renderer) *RenderSystem {
	return &RenderSystem{source: source, renderer: renderer}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	if f := s.source.Frame(); f != nil {
		s.renderer.Submit(f)
	}
}
