package system

import (
	"time"

	"github.com/gatha/engine/internal/camera"
	"github.com/gatha/engine/internal/config"
	"github.com/gatha/engine/internal/core/event"
	coresys "github.com/gatha/engine/internal/core/system"
	"github.com/gatha/engine/internal/render"
	"github.com/gatha/engine/internal/world"
)

// ExtractSystem culls the world against the camera frustum and lays out the
// frame's instance batches. Phase 3 (Extract).
type ExtractSystem struct {
	world    *world.World
	assets   render.AssetResolver
	cam      *camera.Camera
	lens     config.RenderConfig
	pipeline *render.Pipeline
	bus      *event.Bus

	frame      *render.Frame
	truncating bool
}

func NewExtractSystem(
	w *world.World,
	assets render.AssetResolver,
	cam *camera.Camera,
	lens config.RenderConfig,
	pipeline *render.Pipeline,
	bus *event.Bus,
) *ExtractSystem {
	return &ExtractSystem{
		world:    w,
		assets:   assets,
		cam:      cam,
		lens:     lens,
		pipeline: pipeline,
		bus:      bus,
	}
}

func (s *ExtractSystem) Phase() coresys.Phase { return coresys.PhaseExtract }

func (s *ExtractSystem) Update(_ time.Duration) {
	viewProj := s.cam.ViewProjection(s.lens.FovDegrees, s.lens.Aspect(), s.lens.Near, s.lens.Far)
	s.frame = s.pipeline.Extract(render.Stores{
		MeshInstances: s.world.MeshInstances,
		Transforms:    s.world.Transforms,
	}, s.assets, viewProj)

	truncating := s.frame.Truncated > 0
	if truncating && !s.truncating && s.bus != nil {
		event.Emit(s.bus, event.InstancesTruncated{
			Visible: s.frame.Visible,
			Cap:     s.pipeline.MaxInstances(),
		})
	}
	s.truncating = truncating
}

// Frame returns the most recent extraction, nil before the first frame.
// It is valid until the next Update.
func (s *ExtractSystem) Frame() *render.Frame { return s.frame }

// SetLens replaces the projection parameters, e.g. after a window resize.
func (s *ExtractSystem) SetLens(lens config.RenderConfig) { s.lens = lens }
