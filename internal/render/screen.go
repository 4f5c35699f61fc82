package render

import "github.com/go-gl/mathgl/mgl32"

// ScreenPoint is an instance origin projected into pixel coordinates.
type ScreenPoint struct {
	X, Y    float32
	Depth   float32 // NDC z in [-1, 1]
	AssetID uint32
}

// ScreenPoints projects the origin of every instance in f through its
// view-projection onto a width x height viewport with y growing downwards.
// Origins behind the eye or outside the clip volume are skipped; an
// instance can pass culling by its bounds while its origin is off screen.
func ScreenPoints(f *Frame, width, height int, dst []ScreenPoint) []ScreenPoint {
	dst = dst[:0]
	if f.Empty() || width <= 0 || height <= 0 {
		return dst
	}
	w, h := float32(width), float32(height)
	for _, b := range f.Batches {
		for _, m := range f.Transforms[b.Offset : b.Offset+b.Count] {
			clip := f.ViewProj.Mul4x1(m.Col(3))
			if clip[3] <= 0 {
				continue
			}
			ndc := clip.Vec3().Mul(1 / clip[3])
			if ndc[0] < -1 || ndc[0] > 1 || ndc[1] < -1 || ndc[1] > 1 || ndc[2] < -1 || ndc[2] > 1 {
				continue
			}
			dst = append(dst, ScreenPoint{
				X:       (ndc[0] + 1) * 0.5 * w,
				Y:       (1 - ndc[1]) * 0.5 * h,
				Depth:   ndc[2],
				AssetID: b.AssetID,
			})
		}
	}
	return dst
}

// Origin returns the translation of a world matrix.
func Origin(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}
