package component

import "github.com/go-gl/mathgl/mgl32"

// Transform stores an entity's placement. Pure data: World is the cached
// local-to-world matrix, rewritten every frame by the transform system and
// never edited by hand.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // euler radians: X=yaw (about Y), Y=pitch (about X), Z=roll (about Z)
	Scale    mgl32.Vec3
	World    mgl32.Mat4
}

// NewTransform returns a transform at position with no rotation and unit scale.
func NewTransform(position mgl32.Vec3) Transform {
	return Transform{
		Position: position,
		Scale:    mgl32.Vec3{1, 1, 1},
		World:    mgl32.Ident4(),
	}
}
