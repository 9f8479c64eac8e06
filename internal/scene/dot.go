package scene

import (
	"bufio"
	"fmt"
	"io"
)

// WriteDot writes root as a Graphviz digraph, one vertex per scene node.
// BSP trees are summarized by their stats.
func WriteDot(w io.Writer, root Node) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph scene {")
	fmt.Fprintln(bw, "\tnode [shape=box];")
	var next int
	var emit func(n Node) int
	emit = func(n Node) int {
		id := next
		next++
		fmt.Fprintf(bw, "\tn%d [label=%q];\n", id, dotLabel(n))
		for _, child := range n.Children() {
			childID := emit(child)
			fmt.Fprintf(bw, "\tn%d -> n%d;\n", id, childID)
		}
		return id
	}
	if root != nil {
		emit(root)
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

func dotLabel(n Node) string {
	switch n := n.(type) {
	case *Group:
		if n.Name != "" {
			return "Group " + n.Name
		}
		return "Group"
	case *Transform:
		t := n.Matrix.Col(3)
		return fmt.Sprintf("Transform (%.1f, %.1f, %.1f)", t[0], t[1], t[2])
	case *Geometry:
		return fmt.Sprintf("Geometry %d faces", len(n.Faces))
	case *Quad:
		s := n.Cell.Size()
		return fmt.Sprintf("Quad %.1fx%.1f", s[0], s[2])
	case *BSP:
		s := Count(n)
		return fmt.Sprintf("BSP %d nodes, %d faces, depth %d", s.BSPNodes, s.Faces, s.BSPDepth)
	default:
		return fmt.Sprintf("%T", n)
	}
}
