package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	maxArrayLen = 1 << 26
	maxDepth    = 512
)

// ReadNamed reads a root tag with its name, as written by WriteNamed.
func ReadNamed(r io.Reader) (string, *Node, error) {
	typeByte, err := ReadByte(r)
	if err != nil {
		return "", nil, err
	}
	if typeByte == TagEnd {
		return "", &Node{Type: TagEnd}, nil
	}
	name, err := ReadString(r)
	if err != nil {
		return "", nil, err
	}
	node, err := readPayload(r, typeByte, 0)
	if err != nil {
		return "", nil, err
	}
	return name, node, nil
}

// ReadAnonymous reads a root tag that carries no name.
func ReadAnonymous(r io.Reader) (*Node, error) {
	typeByte, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	if typeByte == TagEnd {
		return &Node{Type: TagEnd}, nil
	}
	return readPayload(r, typeByte, 0)
}

func readPayload(r io.Reader, typeByte byte, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxDepth)
	}
	switch typeByte {
	case TagByte:
		b, err := ReadByte(r)
		if err != nil {
			return nil, err
		}
		return Byte(b), nil
	case TagShort:
		s, err := ReadInt16(r)
		if err != nil {
			return nil, err
		}
		return Short(s), nil
	case TagInt:
		i, err := ReadInt32(r)
		if err != nil {
			return nil, err
		}
		return Int(i), nil
	case TagLong:
		l, err := ReadInt64(r)
		if err != nil {
			return nil, err
		}
		return Long(l), nil
	case TagFloat:
		f, err := ReadFloat32(r)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case TagDouble:
		d, err := ReadFloat64(r)
		if err != nil {
			return nil, err
		}
		return Double(d), nil
	case TagByteArray:
		arr, err := ReadByteArray(r)
		if err != nil {
			return nil, err
		}
		return &Node{Type: TagByteArray, Value: arr}, nil
	case TagString:
		s, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case TagList:
		list, err := readList(r, depth)
		if err != nil {
			return nil, err
		}
		return &Node{Type: TagList, Value: list}, nil
	case TagCompound:
		compound, err := readCompound(r, depth)
		if err != nil {
			return nil, err
		}
		return &Node{Type: TagCompound, Value: compound}, nil
	case TagIntArray:
		arr, err := ReadIntArray(r)
		if err != nil {
			return nil, err
		}
		return IntArray(arr), nil
	case TagLongArray:
		arr, err := ReadLongArray(r)
		if err != nil {
			return nil, err
		}
		return &Node{Type: TagLongArray, Value: arr}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported tag type %d", ErrMalformed, typeByte)
	}
}

func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func ReadInt16(r io.Reader) (int16, error) {
	var buf [2]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(buf[:])), nil
}

func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func ReadFloat32(r io.Reader) (float32, error) {
	var buf [4]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf[:])), nil
}

func ReadFloat64(r io.Reader) (float64, error) {
	var buf [8]byte
	_, err := io.ReadFull(r, buf[:])
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
}

func ReadString(r io.Reader) (string, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", err
	}
	strBytes := make([]byte, binary.BigEndian.Uint16(buf[:]))
	if _, err := io.ReadFull(r, strBytes); err != nil {
		return "", err
	}
	return string(strBytes), nil
}

func readLength(r io.Reader) (int, error) {
	length, err := ReadInt32(r)
	if err != nil {
		return 0, err
	}
	if length < 0 || length > maxArrayLen {
		return 0, fmt.Errorf("%w: length %d out of range", ErrMalformed, length)
	}
	return int(length), nil
}

func ReadByteArray(r io.Reader) ([]byte, error) {
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func ReadIntArray(r io.Reader) ([]int32, error) {
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	data := make([]int32, 0, min(length, 4096))
	for i := 0; i < length; i++ {
		val, err := ReadInt32(r)
		if err != nil {
			return nil, err
		}
		data = append(data, val)
	}
	return data, nil
}

func ReadLongArray(r io.Reader) ([]int64, error) {
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	data := make([]int64, 0, min(length, 4096))
	for i := 0; i < length; i++ {
		val, err := ReadInt64(r)
		if err != nil {
			return nil, err
		}
		data = append(data, val)
	}
	return data, nil
}

func readList(r io.Reader, depth int) ([]*Node, error) {
	elementType, err := ReadByte(r)
	if err != nil {
		return nil, err
	}
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if elementType == TagEnd && length > 0 {
		return nil, fmt.Errorf("%w: non-empty list of end tags", ErrMalformed)
	}
	list := make([]*Node, 0, min(length, 4096))
	for i := 0; i < length; i++ {
		element, err := readPayload(r, elementType, depth+1)
		if err != nil {
			return nil, err
		}
		list = append(list, element)
	}
	return list, nil
}

func readCompound(r io.Reader, depth int) (map[string]*Node, error) {
	compound := make(map[string]*Node)
	for {
		typeByte, err := ReadByte(r)
		if err != nil {
			return nil, err
		}
		if typeByte == TagEnd {
			return compound, nil
		}
		name, err := ReadString(r)
		if err != nil {
			return nil, err
		}
		payload, err := readPayload(r, typeByte, depth+1)
		if err != nil {
			return nil, err
		}
		compound[name] = payload
	}
}
