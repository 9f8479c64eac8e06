package nbt

import (
	"errors"
	"fmt"
)

const (
	TagEnd       = 0
	TagByte      = 1
	TagShort     = 2
	TagInt       = 3
	TagLong      = 4
	TagFloat     = 5
	TagDouble    = 6
	TagByteArray = 7
	TagString    = 8
	TagList      = 9
	TagCompound  = 10
	TagIntArray  = 11
	TagLongArray = 12
)

var ErrMalformed = errors.New("nbt: malformed data")

// Node is one tag payload. Value holds byte, int16, int32, int64, float32,
// float64, []byte, string, []*Node, map[string]*Node, []int32 or []int64
// according to Type.
type Node struct {
	Type  byte
	Value any
}

func (n *Node) String() string {
	switch n.Type {
	case TagByte:
		return fmt.Sprintf("Byte(%d)", n.Value.(byte))
	case TagShort:
		return fmt.Sprintf("Short(%d)", n.Value.(int16))
	case TagInt:
		return fmt.Sprintf("Int(%d)", n.Value.(int32))
	case TagLong:
		return fmt.Sprintf("Long(%d)", n.Value.(int64))
	case TagFloat:
		return fmt.Sprintf("Float(%f)", n.Value.(float32))
	case TagDouble:
		return fmt.Sprintf("Double(%f)", n.Value.(float64))
	case TagByteArray:
		return fmt.Sprintf("ByteArray(%d)", len(n.Value.([]byte)))
	case TagString:
		return fmt.Sprintf("String(%s)", n.Value.(string))
	case TagList:
		return fmt.Sprintf("List(%d)", len(n.Value.([]*Node)))
	case TagCompound:
		return fmt.Sprintf("Compound(%d)", len(n.Value.(map[string]*Node)))
	case TagIntArray:
		return fmt.Sprintf("IntArray(%d)", len(n.Value.([]int32)))
	case TagLongArray:
		return fmt.Sprintf("LongArray(%d)", len(n.Value.([]int64)))
	default:
		return "Unknown"
	}
}

func Byte(v byte) *Node { return &Node{Type: TagByte, Value: v} }
func Short(v int16) *Node { return &Node{Type: TagShort, Value: v} }
func Int(v int32) *Node { return &Node{Type: TagInt, Value: v} }
func Long(v int64) *Node { return &Node{Type: TagLong, Value: v} }
func Float(v float32) *Node { return &Node{Type: TagFloat, Value: v} }
func Double(v float64) *Node { return &Node{Type: TagDouble, Value: v} }
func String(v string) *Node { return &Node{Type: TagString, Value: v} }
func IntArray(v []int32) *Node { return &Node{Type: TagIntArray, Value: v} }

func List(items ...*Node) *Node {
	return &Node{Type: TagList, Value: items}
}

func Compound(fields map[string]*Node) *Node {
	if fields == nil {
		fields = make(map[string]*Node)
	}
	return &Node{Type: TagCompound, Value: fields}
}

// FloatList packs vs as a list of Float tags.
func FloatList(vs []float32) *Node {
	items := make([]*Node, len(vs))
	for i, v := range vs {
		items[i] = Float(v)
	}
	return List(items...)
}

// Field returns the child called name of a compound, checking its type.
func (n *Node) Field(name string, tag byte) (*Node, error) {
	fields, err := n.Fields()
	if err != nil {
		return nil, err
	}
	child, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformed, name)
	}
	if child.Type != tag {
		return nil, fmt.Errorf("%w: field %q has tag %d, want %d", ErrMalformed, name, child.Type, tag)
	}
	return child, nil
}

func (n *Node) Fields() (map[string]*Node, error) {
	if n == nil || n.Type != TagCompound {
		return nil, fmt.Errorf("%w: not a compound", ErrMalformed)
	}
	return n.Value.(map[string]*Node), nil
}

func (n *Node) Items() ([]*Node, error) {
	if n == nil || n.Type != TagList {
		return nil, fmt.Errorf("%w: not a list", ErrMalformed)
	}
	return n.Value.([]*Node), nil
}

// Floats unpacks a list built by FloatList. An empty list of any element
// type is accepted.
func (n *Node) Floats() ([]float32, error) {
	items, err := n.Items()
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(items))
	for i, item := range items {
		if item.Type != TagFloat {
			return nil, fmt.Errorf("%w: list element %d has tag %d, want float", ErrMalformed, i, item.Type)
		}
		out[i] = item.Value.(float32)
	}
	return out, nil
}

func (n *Node) Int32(name string) (int32, error) {
	f, err := n.Field(name, TagInt)
	if err != nil {
		return 0, err
	}
	return f.Value.(int32), nil
}

func (n *Node) Int64(name string) (int64, error) {
	f, err := n.Field(name, TagLong)
	if err != nil {
		return 0, err
	}
	return f.Value.(int64), nil
}

func (n *Node) Float32(name string) (float32, error) {
	f, err := n.Field(name, TagFloat)
	if err != nil {
		return 0, err
	}
	return f.Value.(float32), nil
}

func (n *Node) Str(name string) (string, error) {
	f, err := n.Field(name, TagString)
	if err != nil {
		return "", err
	}
	return f.Value.(string), nil
}
