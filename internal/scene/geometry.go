package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const rayEpsilon = 1e-7

// Face is one triangle in world or local space, depending on where it hangs
// in the graph.
type Face struct {
	V [3]mgl32.Vec3
}

func (f Face) Bounds() AABB {
	b := EmptyAABB()
	for _, v := range f.V {
		b = b.Extend(v)
	}
	return b
}

func (f Face) Centroid() mgl32.Vec3 {
	return f.V[0].Add(f.V[1]).Add(f.V[2]).Mul(1.0 / 3)
}

// Normal is the unit normal by the right-hand rule, or zero for a
// degenerate face.
func (f Face) Normal() mgl32.Vec3 {
	n := f.V[1].Sub(f.V[0]).Cross(f.V[2].Sub(f.V[0]))
	if n.Len() < rayEpsilon {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

func (f Face) transformed(m mgl32.Mat4) Face {
	var out Face
	for i, v := range f.V {
		out.V[i] = mgl32.TransformCoordinate(v, m)
	}
	return out
}

// compareFaces orders faces lexicographically by vertex coordinates.
func compareFaces(a, b Face) int {
	for i := range a.V {
		for k := 0; k < 3; k++ {
			switch {
			case a.V[i][k] < b.V[i][k]:
				return -1
			case a.V[i][k] > b.V[i][k]:
				return 1
			}
		}
	}
	return 0
}

// AABB is an axis-aligned box. The zero value is the degenerate box at the
// origin; use EmptyAABB to start a union.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

func (b AABB) Union(o AABB) AABB {
	if o.Empty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

func (b AABB) Size() mgl32.Vec3 {
	if b.Empty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Intersects(o AABB) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// LongestAxis returns 0, 1 or 2 for X, Y or Z; ties go to the lower axis.
func (b AABB) LongestAxis() int {
	size := b.Size()
	axis := 0
	if size[1] > size[axis] {
		axis = 1
	}
	if size[2] > size[axis] {
		axis = 2
	}
	return axis
}

func boundsOf(faces []Face) AABB {
	b := EmptyAABB()
	for _, f := range faces {
		b = b.Union(f.Bounds())
	}
	return b
}

type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Hit is the nearest surface a ray reached.
type Hit struct {
	Distance float32
	Point    mgl32.Vec3
	// Normal faces against the ray.
	Normal mgl32.Vec3
	Face   Face
}

// slab reports whether r enters b within [0, maxDist] and the entry
// distance.
func (b AABB) slab(r Ray, maxDist float32) (float32, bool) {
	if b.Empty() {
		return 0, false
	}
	tmin, tmax := float32(0), maxDist
	for i := 0; i < 3; i++ {
		if r.Dir[i] == 0 {
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Dir[i]
		t1 := (b.Min[i] - r.Origin[i]) * inv
		t2 := (b.Max[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// intersect runs Möller-Trumbore and returns the distance along r.
func (f Face) intersect(r Ray) (float32, bool) {
	edge1 := f.V[1].Sub(f.V[0])
	edge2 := f.V[2].Sub(f.V[0])
	h := r.Dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -rayEpsilon && a < rayEpsilon {
		return 0, false
	}
	inv := 1 / a
	s := r.Origin.Sub(f.V[0])
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := inv * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := inv * edge2.Dot(q)
	if t < 0 {
		return 0, false
	}
	return t, true
}
