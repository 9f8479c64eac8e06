package resource

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Versifine/racer/internal/scene"
)

var ErrNotFound = errors.New("resource not found")

// Loader resolves resource names against a list of data directories.
type Loader struct {
	dirs []string
}

func NewLoader(dirs ...string) *Loader {
	l := &Loader{}
	for _, d := range dirs {
		l.AddDataDirectory(d)
	}
	return l
}

func (l *Loader) AddDataDirectory(dir string) {
	if dir == "" {
		return
	}
	l.dirs = append(l.dirs, dir)
}

// Find returns the first existing path for name: name itself when absolute,
// otherwise name under each data directory in order.
func (l *Loader) Find(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return name, nil
	}
	for _, dir := range l.dirs {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(l.dirs, ", "))
}

func (l *Loader) LoadModels(name string) (Models, error) {
	p, err := l.Find(name)
	if err != nil {
		return Models{}, err
	}
	f, err := os.Open(p)
	if err != nil {
		return Models{}, err
	}
	defer f.Close()
	return ParseModels(f)
}

// LoadModel reads an OBJ model into a geometry node.
func (l *Loader) LoadModel(name string) (*scene.Geometry, error) {
	p, err := l.Find(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	geom, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	slog.Info("Successfully loaded model", "model", name, "faces", len(geom.Faces))
	return geom, nil
}
