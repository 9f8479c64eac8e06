package scene

import "github.com/go-gl/mathgl/mgl32"

// Node is an element of the scene graph. Inner nodes expose their children;
// Geometry and BSP are leaves.
type Node interface {
	Children() []Node
}

// Group is a plain container. The root of every loaded scene is a Group.
type Group struct {
	Name  string
	Nodes []Node
}

func NewGroup(name string, children ...Node) *Group {
	return &Group{Name: name, Nodes: children}
}

func (g *Group) Children() []Node { return g.Nodes }

func (g *Group) Add(n Node) {
	g.Nodes = append(g.Nodes, n)
}

// Transform places its children with Matrix.
type Transform struct {
	Matrix mgl32.Mat4
	Nodes  []Node
}

func NewTransform(m mgl32.Mat4, children ...Node) *Transform {
	return &Transform{Matrix: m, Nodes: children}
}

func Translate(x, y, z float32, children ...Node) *Transform {
	return NewTransform(mgl32.Translate3D(x, y, z), children...)
}

func (t *Transform) Children() []Node { return t.Nodes }

// Geometry holds a triangle soup.
type Geometry struct {
	Faces []Face
}

func (g *Geometry) Children() []Node { return nil }

func (g *Geometry) Bounds() AABB {
	return boundsOf(g.Faces)
}

// Quad is a cell of a quad tree over the XZ plane. Cell is the region the
// cell owns; Bounds encloses every face below it, which may reach outside
// Cell because faces are placed by centroid.
type Quad struct {
	Cell   AABB
	Bounds AABB
	Nodes  []Node
}

func (q *Quad) Children() []Node { return q.Nodes }

// BSP wraps a binary space partition over one Geometry's faces.
type BSP struct {
	Root *BSPNode
}

func (b *BSP) Children() []Node { return nil }

// BSPNode is an inner node when Front and Back are set, a leaf otherwise.
// Inner nodes split on Axis at Split: faces whose centroid lies above the
// plane go Front.
type BSPNode struct {
	Axis   int
	Split  float32
	Front  *BSPNode
	Back   *BSPNode
	Faces  []Face
	Bounds AABB
}

func (n *BSPNode) Leaf() bool {
	return n.Front == nil && n.Back == nil
}

// walk visits every node below and including root in depth-first order with
// the accumulated transform. fn returns false to skip a node's children.
func walk(root Node, m mgl32.Mat4, fn func(n Node, m mgl32.Mat4) bool) {
	if root == nil {
		return
	}
	if !fn(root, m) {
		return
	}
	if t, ok := root.(*Transform); ok {
		m = m.Mul4(t.Matrix)
	}
	for _, child := range root.Children() {
		walk(child, m, fn)
	}
}

// replaceGeometry rewrites every Geometry below root in place with the node
// build returns.
func replaceGeometry(root Node, build func(*Geometry) Node) {
	var nodes []Node
	switch n := root.(type) {
	case *Group:
		nodes = n.Nodes
	case *Transform:
		nodes = n.Nodes
	case *Quad:
		nodes = n.Nodes
	default:
		return
	}
	for i, child := range nodes {
		if g, ok := child.(*Geometry); ok {
			nodes[i] = build(g)
			continue
		}
		replaceGeometry(child, build)
	}
}
