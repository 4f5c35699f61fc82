package geom

import "github.com/go-gl/mathgl/mgl32"

// Compose builds a local-to-world matrix applying, to a point, scale first,
// then roll about Z, pitch about X, yaw about Y, then translation:
//
//	T(position) · Ry(rot[0]) · Rx(rot[1]) · Rz(rot[2]) · S(scale)
//
// rot holds yaw, pitch, roll in radians. The order matches serialized
// scenes and must not change.
func Compose(position, rot, scale mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(position[0], position[1], position[2])
	m = m.Mul4(mgl32.HomogRotate3DY(rot[0]))
	m = m.Mul4(mgl32.HomogRotate3DX(rot[1]))
	m = m.Mul4(mgl32.HomogRotate3DZ(rot[2]))
	return m.Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}
