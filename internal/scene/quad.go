package scene

const (
	DefaultMaxFaceCount = 500
	DefaultMaxQuadSize  = 100

	maxQuadDepth = 24
)

// QuadPartition splits geometry into a quad tree over the XZ plane. A cell
// is subdivided while it holds more than MaxFaceCount faces or either side
// is longer than MaxQuadSize.
type QuadPartition struct {
	MaxFaceCount int
	MaxQuadSize  float32
}

func DefaultQuadPartition() QuadPartition {
	return QuadPartition{MaxFaceCount: DefaultMaxFaceCount, MaxQuadSize: DefaultMaxQuadSize}
}

// Transform replaces every Geometry below root with a Quad tree whose leaves
// each hold one Geometry.
func (p QuadPartition) Transform(root *Group) {
	if root == nil {
		return
	}
	if p.MaxFaceCount <= 0 {
		p.MaxFaceCount = DefaultMaxFaceCount
	}
	if p.MaxQuadSize <= 0 {
		p.MaxQuadSize = DefaultMaxQuadSize
	}
	replaceGeometry(root, func(g *Geometry) Node {
		bounds := g.Bounds()
		cell := squareCell(bounds)
		return p.build(g.Faces, cell, 0)
	})
}

func (p QuadPartition) build(faces []Face, cell AABB, depth int) *Quad {
	q := &Quad{Cell: cell, Bounds: boundsOf(faces)}
	size := cell.Size()
	large := max(size[0], size[2]) > p.MaxQuadSize
	crowded := len(faces) > p.MaxFaceCount
	if (!large && !crowded) || depth >= maxQuadDepth || len(faces) == 0 {
		q.Nodes = []Node{&Geometry{Faces: faces}}
		return q
	}

	center := cell.Center()
	var buckets [4][]Face
	for _, f := range faces {
		c := f.Centroid()
		i := 0
		if c[0] > center[0] {
			i |= 1
		}
		if c[2] > center[2] {
			i |= 2
		}
		buckets[i] = append(buckets[i], f)
	}

	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		sub := cell
		if i&1 == 0 {
			sub.Max[0] = center[0]
		} else {
			sub.Min[0] = center[0]
		}
		if i&2 == 0 {
			sub.Max[2] = center[2]
		} else {
			sub.Min[2] = center[2]
		}
		q.Nodes = append(q.Nodes, p.build(bucket, sub, depth+1))
	}
	return q
}

// squareCell grows b to a square over XZ around its center so subdivided
// cells stay square.
func squareCell(b AABB) AABB {
	if b.Empty() {
		return AABB{}
	}
	size := b.Size()
	half := max(size[0], size[2]) / 2
	c := b.Center()
	b.Min[0], b.Max[0] = c[0]-half, c[0]+half
	b.Min[2], b.Max[2] = c[2]-half, c[2]+half
	return b
}
