package scenecache

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Versifine/racer/internal/nbt"
	"github.com/Versifine/racer/internal/physics"
	"github.com/Versifine/racer/internal/scene"
	"github.com/cespare/xxhash/v2"
)

// PipelineVersion tags artifacts; bump it whenever the pipeline output for
// the same input changes.
const PipelineVersion int32 = 1

const DefaultPath = "oeracer-physics-scene.bin"

const artifactTagName = "racer-physics"

var (
	ErrConfiguration = errors.New("scenecache: physics dependencies are not satisfied")
	ErrCorruptCache  = errors.New("scenecache: corrupt cache artifact")
)

// Pipeline turns a raw physics scene into its partitioned form in place.
type Pipeline interface {
	Run(root *scene.Group)
}

// StandardPipeline collects all geometry, quad-partitions it and builds a
// BSP in every quad cell.
type StandardPipeline struct {
	Quad scene.QuadPartition
	BSP  scene.BSPPartition
}

func DefaultPipeline() StandardPipeline {
	return StandardPipeline{Quad: scene.DefaultQuadPartition(), BSP: scene.DefaultBSPPartition()}
}

func (p StandardPipeline) Run(root *scene.Group) {
	scene.CollectGeometry(root)
	p.Quad.Transform(root)
	p.BSP.Transform(root)
}

// Params feeds the partition limits into the artifact fingerprint.
func (p StandardPipeline) Params() []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(p.Quad.MaxFaceCount))
	buf = binary.BigEndian.AppendUint32(buf, uint32(int32(p.Quad.MaxQuadSize*1000)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(p.BSP.MaxLeafFaces))
	buf = binary.BigEndian.AppendUint32(buf, uint32(p.BSP.MaxDepth))
	return buf
}

type paramsProvider interface {
	Params() []byte
}

// Manager prepares the physics scene once at startup, loading the
// partitioned tree from its cache file when one exists.
type Manager struct {
	path     string
	validate bool
	pipeline Pipeline
}

type Option func(*Manager)

func WithPath(path string) Option {
	return func(m *Manager) {
		if path != "" {
			m.path = path
		}
	}
}

// WithValidation makes the manager compare the artifact's pipeline version
// and input fingerprint and rebuild on mismatch. Without it, an existing
// artifact is always trusted.
func WithValidation(on bool) Option {
	return func(m *Manager) { m.validate = on }
}

func WithPipeline(p Pipeline) Option {
	return func(m *Manager) {
		if p != nil {
			m.pipeline = p
		}
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		path:     DefaultPath,
		validate: true,
		pipeline: DefaultPipeline(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Path() string {
	return m.path
}

// Prepare returns the partitioned physics scene for raw. With a readable
// artifact it returns a freshly decoded tree and leaves raw untouched;
// otherwise it runs the pipeline on raw, persists it and returns raw.
// A nil raw scene or body is ErrConfiguration.
func (m *Manager) Prepare(raw *scene.Group, body *physics.RigidBox) (*scene.Group, error) {
	if raw == nil || body == nil {
		return nil, ErrConfiguration
	}

	var fingerprint uint64
	if m.validate {
		fp, err := m.fingerprint(raw)
		if err != nil {
			return nil, fmt.Errorf("fingerprint physics scene: %w", err)
		}
		fingerprint = fp
	}

	f, err := os.Open(m.path)
	if err == nil {
		tree, fresh, err := m.load(f, fingerprint)
		f.Close()
		if err != nil {
			return nil, err
		}
		if fresh {
			return tree, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Cannot open physics tree cache, rebuilding", "path", m.path, "error", err)
	}

	return m.build(raw, fingerprint), nil
}

func (m *Manager) load(r io.Reader, fingerprint uint64) (*scene.Group, bool, error) {
	slog.Info("Loading the physics tree from file: started", "path", m.path)

	_, root, err := nbt.ReadNamed(bufio.NewReader(r))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCorruptCache, m.path, err)
	}
	version, err := root.Int32("version")
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCorruptCache, m.path, err)
	}
	stored, err := root.Int64("fingerprint")
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCorruptCache, m.path, err)
	}
	if m.validate && (version != PipelineVersion || uint64(stored) != fingerprint) {
		slog.Warn("Physics tree cache is stale, rebuilding",
			"path", m.path,
			"version", version,
			"want_version", PipelineVersion,
		)
		return nil, false, nil
	}

	tag, err := root.Field("scene", nbt.TagCompound)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCorruptCache, m.path, err)
	}
	node, err := scene.FromNBT(tag)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrCorruptCache, m.path, err)
	}
	tree, ok := node.(*scene.Group)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s: root is %T, want group", ErrCorruptCache, m.path, node)
	}

	slog.Info("Loading the physics tree from file: done", "stats", scene.Count(tree))
	return tree, true, nil
}

func (m *Manager) build(raw *scene.Group, fingerprint uint64) *scene.Group {
	slog.Info("Creating and serializing the physics tree: started", "input", scene.Count(raw))
	m.pipeline.Run(raw)

	if err := m.store(raw, fingerprint); err != nil {
		slog.Warn("Cannot write physics tree cache", "path", m.path, "error", err)
	}
	slog.Info("Creating and serializing the physics tree: done", "stats", scene.Count(raw))
	return raw
}

// store writes the artifact next to its final path and renames it into
// place, so readers never see a half-written file.
func (m *Manager) store(tree *scene.Group, fingerprint uint64) error {
	tag, err := scene.ToNBT(tree)
	if err != nil {
		return err
	}
	root := nbt.Compound(map[string]*nbt.Node{
		"version":     nbt.Int(PipelineVersion),
		"fingerprint": nbt.Long(int64(fingerprint)),
		"scene":       tag,
	})

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := nbt.WriteNamed(w, artifactTagName, root); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.path)
}

// fingerprint hashes the raw scene encoding together with the pipeline
// parameters.
func (m *Manager) fingerprint(raw *scene.Group) (uint64, error) {
	d := xxhash.New()
	if err := scene.Encode(d, raw); err != nil {
		return 0, err
	}
	if p, ok := m.pipeline.(paramsProvider); ok {
		if _, err := d.Write(p.Params()); err != nil {
			return 0, err
		}
	}
	return d.Sum64(), nil
}
