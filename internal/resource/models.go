package resource

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Models lists model paths per scene section of a models file.
//
//	# comment
//	dynamic
//	car.obj
//	static
//	track.obj
//	physic
//	track-collision.obj
//
// Entries before the first section header land in Loose; they are drawn
// with the dynamic scene but never become the vehicle.
type Models struct {
	Loose   []string
	Dynamic []string
	Static  []string
	Physic  []string
}

// Vehicle returns the model driven by the player: the last dynamic entry.
func (m Models) Vehicle() (string, bool) {
	if len(m.Dynamic) == 0 {
		return "", false
	}
	return m.Dynamic[len(m.Dynamic)-1], true
}

func ParseModels(r io.Reader) (Models, error) {
	var m Models
	current := &m.Loose
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch line {
		case "dynamic":
			current = &m.Dynamic
		case "static":
			current = &m.Static
		case "physic":
			current = &m.Physic
		default:
			*current = append(*current, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Models{}, fmt.Errorf("read models list: %w", err)
	}
	return m, nil
}
