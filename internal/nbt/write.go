package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// WriteNamed writes node as a named root tag.
func WriteNamed(w io.Writer, name string, node *Node) error {
	if err := WriteByte(w, node.Type); err != nil {
		return err
	}
	if node.Type == TagEnd {
		return nil
	}
	if err := WriteString(w, name); err != nil {
		return err
	}
	return writePayload(w, node)
}

// WriteAnonymous writes node as a root tag without a name.
func WriteAnonymous(w io.Writer, node *Node) error {
	if err := WriteByte(w, node.Type); err != nil {
		return err
	}
	if node.Type == TagEnd {
		return nil
	}
	return writePayload(w, node)
}

func writePayload(w io.Writer, n *Node) error {
	switch n.Type {
	case TagByte:
		return WriteByte(w, n.Value.(byte))
	case TagShort:
		return WriteInt16(w, n.Value.(int16))
	case TagInt:
		return WriteInt32(w, n.Value.(int32))
	case TagLong:
		return WriteInt64(w, n.Value.(int64))
	case TagFloat:
		return WriteFloat(w, n.Value.(float32))
	case TagDouble:
		return WriteDouble(w, n.Value.(float64))
	case TagByteArray:
		data := n.Value.([]byte)
		if err := WriteInt32(w, int32(len(data))); err != nil {
			return err
		}
		_, err := w.Write(data)
		return err
	case TagString:
		return WriteString(w, n.Value.(string))
	case TagList:
		return writeList(w, n.Value.([]*Node))
	case TagCompound:
		return writeCompound(w, n.Value.(map[string]*Node))
	case TagIntArray:
		data := n.Value.([]int32)
		if err := WriteInt32(w, int32(len(data))); err != nil {
			return err
		}
		for _, v := range data {
			if err := WriteInt32(w, v); err != nil {
				return err
			}
		}
		return nil
	case TagLongArray:
		data := n.Value.([]int64)
		if err := WriteInt32(w, int32(len(data))); err != nil {
			return err
		}
		for _, v := range data {
			if err := WriteInt64(w, v); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("nbt: cannot write tag type %d", n.Type)
	}
}

func writeList(w io.Writer, items []*Node) error {
	var elementType byte = TagEnd
	if len(items) > 0 {
		elementType = items[0].Type
	}
	if err := WriteByte(w, elementType); err != nil {
		return err
	}
	if err := WriteInt32(w, int32(len(items))); err != nil {
		return err
	}
	for i, item := range items {
		if item.Type != elementType {
			return fmt.Errorf("nbt: list element %d has tag %d, want %d", i, item.Type, elementType)
		}
		if err := writePayload(w, item); err != nil {
			return err
		}
	}
	return nil
}

// writeCompound emits fields in name order so equal trees encode to equal
// bytes.
func writeCompound(w io.Writer, fields map[string]*Node) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		field := fields[name]
		if err := WriteByte(w, field.Type); err != nil {
			return err
		}
		if err := WriteString(w, name); err != nil {
			return err
		}
		if err := writePayload(w, field); err != nil {
			return err
		}
	}
	return WriteByte(w, TagEnd)
}

func WriteByte(w io.Writer, value byte) error {
	_, err := w.Write([]byte{value})
	return err
}

func WriteInt16(w io.Writer, value int16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(value))
	_, err := w.Write(buf[:])
	return err
}

func WriteInt32(w io.Writer, value int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(value))
	_, err := w.Write(buf[:])
	return err
}

func WriteInt64(w io.Writer, value int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(value))
	_, err := w.Write(buf[:])
	return err
}

func WriteFloat(w io.Writer, value float32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(value))
	_, err := w.Write(buf[:])
	return err
}

func WriteDouble(w io.Writer, value float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(value))
	_, err := w.Write(buf[:])
	return err
}

func WriteString(w io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("nbt: string of %d bytes too long", len(s))
	}
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(len(s)))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}
