package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// QueryBox returns every face under root whose bounds overlap box, in
// canonical vertex order so the result does not depend on how the tree is
// partitioned.
func QueryBox(root Node, box AABB) []Face {
	var out []Face
	walk(root, mgl32.Ident4(), func(n Node, m mgl32.Mat4) bool {
		identity := m == mgl32.Ident4()
		switch n := n.(type) {
		case *Quad:
			return !identity || n.Bounds.Intersects(box)
		case *Geometry:
			for _, f := range n.Faces {
				if !identity {
					f = f.transformed(m)
				}
				if f.Bounds().Intersects(box) {
					out = append(out, f)
				}
			}
		case *BSP:
			n.Root.queryBox(box, m, identity, &out)
		}
		return true
	})
	slices.SortFunc(out, compareFaces)
	return out
}

func (n *BSPNode) queryBox(box AABB, m mgl32.Mat4, identity bool, out *[]Face) {
	if n == nil {
		return
	}
	if identity && !n.Bounds.Intersects(box) {
		return
	}
	for _, f := range n.Faces {
		if !identity {
			f = f.transformed(m)
		}
		if f.Bounds().Intersects(box) {
			*out = append(*out, f)
		}
	}
	n.Back.queryBox(box, m, identity, out)
	n.Front.queryBox(box, m, identity, out)
}

// Raycast finds the nearest face under root hit by r within maxDist. r.Dir
// need not be unit length; distances are in units of r.Dir. Equal distances
// resolve to the face that sorts first, so every partition of the same
// faces returns the same hit.
func Raycast(root Node, r Ray, maxDist float32) (Hit, bool) {
	c := rayCollector{ray: r, best: maxDist}
	walk(root, mgl32.Ident4(), func(n Node, m mgl32.Mat4) bool {
		identity := m == mgl32.Ident4()
		switch n := n.(type) {
		case *Quad:
			if !identity {
				return true
			}
			_, ok := n.Bounds.slab(r, c.best)
			return ok
		case *Geometry:
			for _, f := range n.Faces {
				if !identity {
					f = f.transformed(m)
				}
				c.consider(f)
			}
		case *BSP:
			c.descend(n.Root, m, identity)
		}
		return true
	})
	if !c.found {
		return Hit{}, false
	}
	normal := c.face.Normal()
	if normal.Dot(r.Dir) > 0 {
		normal = normal.Mul(-1)
	}
	return Hit{
		Distance: c.best,
		Point:    r.At(c.best),
		Normal:   normal,
		Face:     c.face,
	}, true
}

type rayCollector struct {
	ray   Ray
	best  float32
	face  Face
	found bool
}

func (c *rayCollector) consider(f Face) {
	t, ok := f.intersect(c.ray)
	if !ok || t > c.best {
		return
	}
	if c.found && t == c.best && compareFaces(f, c.face) >= 0 {
		return
	}
	c.best = t
	c.face = f
	c.found = true
}

// descend visits the child on the ray origin's side of the split first so
// the far side is usually pruned by the shrinking best distance.
func (c *rayCollector) descend(n *BSPNode, m mgl32.Mat4, identity bool) {
	if n == nil {
		return
	}
	if identity {
		if _, ok := n.Bounds.slab(c.ray, c.best); !ok {
			return
		}
	}
	for _, f := range n.Faces {
		if !identity {
			f = f.transformed(m)
		}
		c.consider(f)
	}
	if n.Leaf() {
		return
	}
	first, second := n.Back, n.Front
	if identity && c.ray.Origin[n.Axis] > n.Split {
		first, second = second, first
	}
	c.descend(first, m, identity)
	c.descend(second, m, identity)
}
