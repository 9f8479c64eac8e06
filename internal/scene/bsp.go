package scene

const (
	DefaultMaxLeafFaces = 16
	DefaultMaxDepth     = 24
)

// BSPPartition builds a BSP tree over each Geometry with axis-aligned
// planes through the middle of the longest axis of the node bounds.
type BSPPartition struct {
	MaxLeafFaces int
	MaxDepth     int
}

func DefaultBSPPartition() BSPPartition {
	return BSPPartition{MaxLeafFaces: DefaultMaxLeafFaces, MaxDepth: DefaultMaxDepth}
}

// Transform replaces every Geometry below root, loose or inside quad cells,
// with a BSP.
func (p BSPPartition) Transform(root *Group) {
	if root == nil {
		return
	}
	if p.MaxLeafFaces <= 0 {
		p.MaxLeafFaces = DefaultMaxLeafFaces
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = DefaultMaxDepth
	}
	replaceGeometry(root, func(g *Geometry) Node {
		return &BSP{Root: p.build(g.Faces, 0)}
	})
}

func (p BSPPartition) build(faces []Face, depth int) *BSPNode {
	bounds := boundsOf(faces)
	if len(faces) <= p.MaxLeafFaces || depth >= p.MaxDepth {
		return &BSPNode{Faces: faces, Bounds: bounds}
	}

	axis := bounds.LongestAxis()
	split := (bounds.Min[axis] + bounds.Max[axis]) * 0.5

	back := make([]Face, 0, len(faces)/2)
	front := make([]Face, 0, len(faces)/2)
	for _, f := range faces {
		if f.Centroid()[axis] > split {
			front = append(front, f)
		} else {
			back = append(back, f)
		}
	}
	if len(front) == 0 || len(back) == 0 {
		return &BSPNode{Faces: faces, Bounds: bounds}
	}

	return &BSPNode{
		Axis:   axis,
		Split:  split,
		Back:   p.build(back, depth+1),
		Front:  p.build(front, depth+1),
		Bounds: bounds,
	}
}
