package scene

import (
	"fmt"
	"io"

	"github.com/Versifine/racer/internal/nbt"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	kindGroup     = "group"
	kindTransform = "transform"
	kindGeometry  = "geometry"
	kindQuad      = "quad"
	kindBSP       = "bsp"

	rootTagName = "scene"
	maxBSPDepth = 256
)

// Encode writes root as a named NBT compound.
func Encode(w io.Writer, root Node) error {
	tag, err := ToNBT(root)
	if err != nil {
		return err
	}
	return nbt.WriteNamed(w, rootTagName, tag)
}

// Decode reads a tree written by Encode.
func Decode(r io.Reader) (Node, error) {
	_, tag, err := nbt.ReadNamed(r)
	if err != nil {
		return nil, fmt.Errorf("read scene tag: %w", err)
	}
	return FromNBT(tag)
}

// ToNBT maps a scene tree to compounds tagged with a "kind" string.
func ToNBT(n Node) (*nbt.Node, error) {
	switch n := n.(type) {
	case *Group:
		children, err := childrenToNBT(n.Nodes)
		if err != nil {
			return nil, err
		}
		return nbt.Compound(map[string]*nbt.Node{
			"kind":     nbt.String(kindGroup),
			"name":     nbt.String(n.Name),
			"children": children,
		}), nil
	case *Transform:
		children, err := childrenToNBT(n.Nodes)
		if err != nil {
			return nil, err
		}
		return nbt.Compound(map[string]*nbt.Node{
			"kind":     nbt.String(kindTransform),
			"matrix":   nbt.FloatList(n.Matrix[:]),
			"children": children,
		}), nil
	case *Geometry:
		return nbt.Compound(map[string]*nbt.Node{
			"kind":  nbt.String(kindGeometry),
			"faces": facesToNBT(n.Faces),
		}), nil
	case *Quad:
		children, err := childrenToNBT(n.Nodes)
		if err != nil {
			return nil, err
		}
		return nbt.Compound(map[string]*nbt.Node{
			"kind":     nbt.String(kindQuad),
			"cell":     aabbToNBT(n.Cell),
			"bounds":   aabbToNBT(n.Bounds),
			"children": children,
		}), nil
	case *BSP:
		fields := map[string]*nbt.Node{"kind": nbt.String(kindBSP)}
		if n.Root != nil {
			fields["root"] = bspToNBT(n.Root)
		}
		return nbt.Compound(fields), nil
	default:
		return nil, fmt.Errorf("scene: cannot encode node %T", n)
	}
}

func childrenToNBT(nodes []Node) (*nbt.Node, error) {
	items := make([]*nbt.Node, 0, len(nodes))
	for _, child := range nodes {
		tag, err := ToNBT(child)
		if err != nil {
			return nil, err
		}
		items = append(items, tag)
	}
	return nbt.List(items...), nil
}

func facesToNBT(faces []Face) *nbt.Node {
	flat := make([]float32, 0, len(faces)*9)
	for _, f := range faces {
		for _, v := range f.V {
			flat = append(flat, v[0], v[1], v[2])
		}
	}
	return nbt.FloatList(flat)
}

func aabbToNBT(b AABB) *nbt.Node {
	return nbt.FloatList([]float32{b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2]})
}

func bspToNBT(n *BSPNode) *nbt.Node {
	fields := map[string]*nbt.Node{
		"bounds": aabbToNBT(n.Bounds),
		"faces":  facesToNBT(n.Faces),
	}
	if !n.Leaf() {
		fields["axis"] = nbt.Byte(byte(n.Axis))
		fields["split"] = nbt.Float(n.Split)
		fields["back"] = bspToNBT(n.Back)
		fields["front"] = bspToNBT(n.Front)
	}
	return nbt.Compound(fields)
}

// FromNBT rebuilds a tree from ToNBT output. Any structural mismatch is
// reported as nbt.ErrMalformed.
func FromNBT(tag *nbt.Node) (Node, error) {
	kind, err := tag.Str("kind")
	if err != nil {
		return nil, err
	}
	switch kind {
	case kindGroup:
		name, err := tag.Str("name")
		if err != nil {
			return nil, err
		}
		children, err := childrenFromNBT(tag)
		if err != nil {
			return nil, err
		}
		return &Group{Name: name, Nodes: children}, nil
	case kindTransform:
		values, err := floatsField(tag, "matrix", 16)
		if err != nil {
			return nil, err
		}
		var m mgl32.Mat4
		copy(m[:], values)
		children, err := childrenFromNBT(tag)
		if err != nil {
			return nil, err
		}
		return &Transform{Matrix: m, Nodes: children}, nil
	case kindGeometry:
		faces, err := facesFromNBT(tag)
		if err != nil {
			return nil, err
		}
		return &Geometry{Faces: faces}, nil
	case kindQuad:
		cell, err := aabbFromNBT(tag, "cell")
		if err != nil {
			return nil, err
		}
		bounds, err := aabbFromNBT(tag, "bounds")
		if err != nil {
			return nil, err
		}
		children, err := childrenFromNBT(tag)
		if err != nil {
			return nil, err
		}
		return &Quad{Cell: cell, Bounds: bounds, Nodes: children}, nil
	case kindBSP:
		fields, err := tag.Fields()
		if err != nil {
			return nil, err
		}
		rootTag, ok := fields["root"]
		if !ok {
			return &BSP{}, nil
		}
		root, err := bspFromNBT(rootTag, 0)
		if err != nil {
			return nil, err
		}
		return &BSP{Root: root}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind %q", nbt.ErrMalformed, kind)
	}
}

func childrenFromNBT(tag *nbt.Node) ([]Node, error) {
	list, err := tag.Field("children", nbt.TagList)
	if err != nil {
		return nil, err
	}
	items, err := list.Items()
	if err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		child, err := FromNBT(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return nodes, nil
}

func floatsField(tag *nbt.Node, name string, want int) ([]float32, error) {
	list, err := tag.Field(name, nbt.TagList)
	if err != nil {
		return nil, err
	}
	values, err := list.Floats()
	if err != nil {
		return nil, err
	}
	if want >= 0 && len(values) != want {
		return nil, fmt.Errorf("%w: field %q has %d floats, want %d", nbt.ErrMalformed, name, len(values), want)
	}
	return values, nil
}

func facesFromNBT(tag *nbt.Node) ([]Face, error) {
	flat, err := floatsField(tag, "faces", -1)
	if err != nil {
		return nil, err
	}
	if len(flat)%9 != 0 {
		return nil, fmt.Errorf("%w: %d face floats is not a multiple of 9", nbt.ErrMalformed, len(flat))
	}
	faces := make([]Face, len(flat)/9)
	for i := range faces {
		base := flat[i*9:]
		for k := 0; k < 3; k++ {
			faces[i].V[k] = mgl32.Vec3{base[k*3], base[k*3+1], base[k*3+2]}
		}
	}
	return faces, nil
}

func aabbFromNBT(tag *nbt.Node, name string) (AABB, error) {
	v, err := floatsField(tag, name, 6)
	if err != nil {
		return AABB{}, err
	}
	return AABB{Min: mgl32.Vec3{v[0], v[1], v[2]}, Max: mgl32.Vec3{v[3], v[4], v[5]}}, nil
}

func bspFromNBT(tag *nbt.Node, depth int) (*BSPNode, error) {
	if depth > maxBSPDepth {
		return nil, fmt.Errorf("%w: bsp deeper than %d", nbt.ErrMalformed, maxBSPDepth)
	}
	bounds, err := aabbFromNBT(tag, "bounds")
	if err != nil {
		return nil, err
	}
	faces, err := facesFromNBT(tag)
	if err != nil {
		return nil, err
	}
	n := &BSPNode{Bounds: bounds, Faces: faces}

	fields, err := tag.Fields()
	if err != nil {
		return nil, err
	}
	if _, inner := fields["axis"]; !inner {
		return n, nil
	}
	axis, err := tag.Field("axis", nbt.TagByte)
	if err != nil {
		return nil, err
	}
	n.Axis = int(axis.Value.(byte))
	if n.Axis > 2 {
		return nil, fmt.Errorf("%w: bsp axis %d", nbt.ErrMalformed, n.Axis)
	}
	if n.Split, err = tag.Float32("split"); err != nil {
		return nil, err
	}
	back, err := tag.Field("back", nbt.TagCompound)
	if err != nil {
		return nil, err
	}
	front, err := tag.Field("front", nbt.TagCompound)
	if err != nil {
		return nil, err
	}
	if n.Back, err = bspFromNBT(back, depth+1); err != nil {
		return nil, err
	}
	if n.Front, err = bspFromNBT(front, depth+1); err != nil {
		return nil, err
	}
	return n, nil
}
