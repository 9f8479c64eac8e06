package scene

import "github.com/go-gl/mathgl/mgl32"

// CollectGeometry flattens every face under root into a single Geometry
// child in world space. Transforms are baked into the vertices and
// partition structures are dissolved. Face order follows a depth-first walk.
func CollectGeometry(root *Group) {
	if root == nil {
		return
	}
	faces := gatherFaces(root, mgl32.Ident4())
	root.Nodes = []Node{&Geometry{Faces: faces}}
}

func gatherFaces(root Node, base mgl32.Mat4) []Face {
	var faces []Face
	walk(root, base, func(n Node, m mgl32.Mat4) bool {
		switch n := n.(type) {
		case *Geometry:
			faces = appendTransformed(faces, n.Faces, m)
		case *BSP:
			var leaves []Face
			n.Root.collect(&leaves)
			faces = appendTransformed(faces, leaves, m)
		}
		return true
	})
	return faces
}

func appendTransformed(dst, faces []Face, m mgl32.Mat4) []Face {
	if m == mgl32.Ident4() {
		return append(dst, faces...)
	}
	for _, f := range faces {
		dst = append(dst, f.transformed(m))
	}
	return dst
}

func (n *BSPNode) collect(out *[]Face) {
	if n == nil {
		return
	}
	*out = append(*out, n.Faces...)
	n.Back.collect(out)
	n.Front.collect(out)
}
