package geom

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box given by its minimum and maximum corners.
type AABB struct {
	Min mgl32.Vec3 `yaml:"min"`
	Max mgl32.Vec3 `yaml:"max"`
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-size along each axis.
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Empty reports whether any max component is below its min component.
func (b AABB) Empty() bool {
	return b.Max.X() < b.Min.X() || b.Max.Y() < b.Min.Y() || b.Max.Z() < b.Min.Z()
}

// Transform returns the axis-aligned box enclosing b after the affine
// transform m. The centre is transformed as a point and each world extent
// is the absolute row sum of m's linear part against the local extents.
// The result is exact for axis-preserving transforms and conservative
// under rotation.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	c := b.Center()
	e := b.Extents()
	wc := m.Mul4x1(c.Vec4(1)).Vec3()
	var we mgl32.Vec3
	for row := 0; row < 3; row++ {
		we[row] = mgl32.Abs(m.At(row, 0))*e[0] +
			mgl32.Abs(m.At(row, 1))*e[1] +
			mgl32.Abs(m.At(row, 2))*e[2]
	}
	return AABB{Min: wc.Sub(we), Max: wc.Add(we)}
}

// PositiveVertex returns the corner of b furthest along n.
func (b AABB) PositiveVertex(n mgl32.Vec3) mgl32.Vec3 {
	p := b.Min
	for i := 0; i < 3; i++ {
		if n[i] >= 0 {
			p[i] = b.Max[i]
		}
	}
	return p
}
