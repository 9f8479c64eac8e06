package resource

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Versifine/racer/internal/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// ParseOBJ reads the vertex and face records of a Wavefront OBJ stream.
// Polygons are fan-triangulated; texture and normal references are
// ignored, as is every other record type.
func ParseOBJ(r io.Reader) (*scene.Geometry, error) {
	var (
		vertices []mgl32.Vec3
		geom     = &scene.Geometry{}
		lineNo   int
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			vertices = append(vertices, v)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj line %d: face needs at least 3 vertices", lineNo)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				i, err := parseIndex(ref, len(vertices))
				if err != nil {
					return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				geom.Faces = append(geom.Faces, scene.Face{V: [3]mgl32.Vec3{
					vertices[idx[0]], vertices[idx[k]], vertices[idx[k+1]],
				}})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	return geom, nil
}

func parseVertex(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var v mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("vertex coordinate %q: %w", fields[i], err)
		}
		v[i] = float32(f)
	}
	return v, nil
}

// parseIndex resolves a 1-based or negative (relative) OBJ vertex reference
// such as "3", "3/1" or "-1//2" to a 0-based index.
func parseIndex(ref string, count int) (int, error) {
	head, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("face index %q: %w", ref, err)
	}
	i := n - 1
	if n < 0 {
		i = count + n
	}
	if n == 0 || i < 0 || i >= count {
		return 0, fmt.Errorf("face index %q out of range (have %d vertices)", ref, count)
	}
	return i, nil
}
