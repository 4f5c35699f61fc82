package system

import (
	"time"

	"github.com/gatha/engine/internal/camera"
	coresys "github.com/gatha/engine/internal/core/system"
)

// CameraSystem applies window input to the camera. Phase 0 (Input).
type CameraSystem struct {
	cam   *camera.Camera
	input camera.Input
}

func NewCameraSystem(cam *camera.Camera, input camera.Input) *CameraSystem {
	return &CameraSystem{cam: cam, input: input}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *CameraSystem) Update(dt time.Duration) {
	s.cam.Update(float32(dt.Seconds()), s.input)
}
