package geom

import "github.com/go-gl/mathgl/mgl32"

// PlaneEpsilon is the smallest normal length that is normalised. Shorter
// normals come from degenerate matrices and are left as extracted.
const PlaneEpsilon = 1e-6

// Plane is the set of points p where Normal·p + D = 0. Points with a
// positive signed distance are inside.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

func planeFromRow(v mgl32.Vec4) Plane {
	p := Plane{Normal: v.Vec3(), D: v.W()}
	if l := p.Normal.Len(); l > PlaneEpsilon {
		p.Normal = p.Normal.Mul(1 / l)
		p.D /= l
	}
	return p
}

// Distance returns the signed distance of p from the plane.
func (pl Plane) Distance(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.D
}

// Frustum plane indices.
const (
	Left = iota
	Right
	Bottom
	Top
	Near
	Far
)

// Frustum holds six inward-facing planes.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the clip planes of a view-projection matrix by
// combining its rows (OpenGL clip space, -w <= x,y,z <= w).
func FrustumFromMatrix(m mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	var f Frustum
	f.Planes[Left] = planeFromRow(r3.Add(r0))
	f.Planes[Right] = planeFromRow(r3.Sub(r0))
	f.Planes[Bottom] = planeFromRow(r3.Add(r1))
	f.Planes[Top] = planeFromRow(r3.Sub(r1))
	f.Planes[Near] = planeFromRow(r3.Add(r2))
	f.Planes[Far] = planeFromRow(r3.Sub(r2))
	return f
}

// IntersectsAABB reports whether b is at least partly inside f. A box is
// rejected only when its positive vertex is behind some plane, so boxes
// straddling a plane are kept.
func (f *Frustum) IntersectsAABB(b AABB) bool {
	for i := range f.Planes {
		pl := &f.Planes[i]
		if pl.Distance(b.PositiveVertex(pl.Normal)) < 0 {
			return false
		}
	}
	return true
}

func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}
