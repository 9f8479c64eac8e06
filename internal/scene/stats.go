package scene

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// Stats counts what a scene tree holds, for log lines.
type Stats struct {
	Groups     int
	Transforms int
	Geometries int
	Quads      int
	BSPs       int
	BSPNodes   int
	BSPLeaves  int
	BSPDepth   int
	Faces      int
}

func Count(root Node) Stats {
	var s Stats
	walk(root, mgl32.Ident4(), func(n Node, _ mgl32.Mat4) bool {
		switch n := n.(type) {
		case *Group:
			s.Groups++
		case *Transform:
			s.Transforms++
		case *Geometry:
			s.Geometries++
			s.Faces += len(n.Faces)
		case *Quad:
			s.Quads++
		case *BSP:
			s.BSPs++
			s.countBSP(n.Root, 1)
		}
		return true
	})
	return s
}

func (s *Stats) countBSP(n *BSPNode, depth int) {
	if n == nil {
		return
	}
	s.BSPNodes++
	s.Faces += len(n.Faces)
	s.BSPDepth = max(s.BSPDepth, depth)
	if n.Leaf() {
		s.BSPLeaves++
		return
	}
	s.countBSP(n.Back, depth+1)
	s.countBSP(n.Front, depth+1)
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("faces", s.Faces),
		slog.Int("geometries", s.Geometries),
		slog.Int("quads", s.Quads),
		slog.Int("bsp_nodes", s.BSPNodes),
		slog.Int("bsp_leaves", s.BSPLeaves),
		slog.Int("bsp_depth", s.BSPDepth),
	)
}
