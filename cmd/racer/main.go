package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Versifine/racer/internal/camera"
	"github.com/Versifine/racer/internal/config"
	"github.com/Versifine/racer/internal/control"
	"github.com/Versifine/racer/internal/device"
	"github.com/Versifine/racer/internal/engine"
	"github.com/Versifine/racer/internal/input"
	"github.com/Versifine/racer/internal/logger"
	"github.com/Versifine/racer/internal/physics"
	"github.com/Versifine/racer/internal/resource"
	"github.com/Versifine/racer/internal/scene"
	"github.com/Versifine/racer/internal/scenecache"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// scenes holds the graphs built from the models list.
type scenes struct {
	rendering *scene.Group
	dynamic   *scene.Group
	static    *scene.Group
	physic    *scene.Group
	vehicle   *physics.RigidBox
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	dotDir := flag.String("dot", "", "write Graphviz dumps of the scene graphs to this directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
		slog.Info("No config file, using defaults", "path", *configPath)
	} else if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	interactive := cfg.Input.Terminal && device.IsTerminal()
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		CRLF:   interactive,
	}); err != nil {
		slog.Error("Failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := run(cfg, interactive, *dotDir); err != nil {
		slog.Error("Racer stopped", "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, interactive bool, dotDir string) error {
	printUsage()

	s, err := setupScene(cfg)
	if err != nil {
		return err
	}

	cache := scenecache.New(
		scenecache.WithPath(cfg.Scene.Cache.Path),
		scenecache.WithValidation(cfg.Scene.Cache.Validate),
		scenecache.WithPipeline(scenecache.StandardPipeline{
			Quad: scene.QuadPartition{MaxFaceCount: cfg.Scene.Quad.MaxFaceCount, MaxQuadSize: cfg.Scene.Quad.MaxQuadSize},
			BSP:  scene.BSPPartition{MaxLeafFaces: cfg.Scene.BSP.MaxLeafFaces, MaxDepth: cfg.Scene.BSP.MaxDepth},
		}),
	)
	s.physic, err = cache.Prepare(s.physic, s.vehicle)
	if err != nil {
		return fmt.Errorf("setup physics: %w", err)
	}

	if dotDir != "" {
		writeDots(dotDir, s)
	}

	integrator := physics.NewFixedTimeStep(scene.NewCollider(s.physic),
		physics.WithTimeStep(cfg.Physics.TimeStep),
		physics.WithMinTimeStep(cfg.Physics.MinTimeStep),
		physics.WithClock(engine.NewTimer()),
	)
	integrator.AddRigidBody(s.vehicle)

	eng := engine.New(nil, engine.WithTickInterval(cfg.Engine.TickInterval))
	bus := eng.Bus()
	bus.Attach(integrator)

	mapper, err := newMapper(cfg.Input)
	if err != nil {
		return err
	}
	cam := camera.NewFollowCamera()
	cam.Follow(s.vehicle)
	bus.Attach(cam)

	controller, err := control.New(control.Config{
		Speed: cfg.Controller.Speed,
		Turn:  cfg.Controller.Turn,
		Spawn: mgl32.Vec3(cfg.Controller.Spawn),
	}, eng,
		control.WithBody(s.vehicle),
		control.WithIntegrator(integrator),
		control.WithCamera(cam),
		control.WithMapper(mapper),
	)
	if err != nil {
		return err
	}
	bus.Attach(controller)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if interactive {
		status := bus.Attach(device.NewStatusLine(os.Stdout, s.vehicle, mapper))
		term := device.NewTerminal(eng, device.WithKeyPulse(cfg.Input.KeyPulse))
		// Not part of g: a read on stdin can not be interrupted.
		go func() {
			defer bus.Detach(status)
			if err := term.Run(ctx); err != nil {
				slog.Warn("Keyboard input stopped", "error", err)
			}
		}()
	}
	if cfg.Input.Joystick != "" {
		js := device.NewJoystick(eng, cfg.Input.Joystick)
		g.Go(func() error {
			if err := js.Run(ctx); err != nil {
				slog.Warn("Joystick input stopped", "error", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return eng.Start(ctx)
	})
	return g.Wait()
}

func printUsage() {
	slog.Info("========= Running the racer demo =========")
	slog.Info("Vehicle controls:")
	slog.Info("  drive forwards:  up-arrow")
	slog.Info("  drive backwards: down-arrow")
	slog.Info("  turn left:       left-arrow")
	slog.Info("  turn right:      right-arrow")
	slog.Info("  reset vehicle:   r")
	slog.Info("  pause physics:   space")
	slog.Info("  physics step:    + / -")
	slog.Info("  camera position: c")
	slog.Info("  quit:            escape")
}

// setupScene loads every model named in the models list into the dynamic,
// static and physic graphs. The last dynamic model becomes the vehicle.
func setupScene(cfg *config.Config) (*scenes, error) {
	loader := resource.NewLoader(cfg.Scene.DataDir)
	models, err := loader.LoadModels(cfg.Scene.ModelsFile)
	if err != nil {
		return nil, fmt.Errorf("load models list: %w", err)
	}

	s := &scenes{
		dynamic: scene.NewGroup("dynamic"),
		static:  scene.NewGroup("static"),
		physic:  scene.NewGroup("physic"),
	}
	s.rendering = scene.NewGroup("rendering", s.dynamic, s.static)

	load := func(names []string, into *scene.Group) error {
		for _, name := range names {
			geom, err := loader.LoadModel(name)
			if err != nil {
				return err
			}
			into.Add(scene.NewTransform(mgl32.Ident4(), geom))
		}
		return nil
	}
	dynamic := models.Dynamic
	vehicle, hasVehicle := models.Vehicle()
	if hasVehicle {
		dynamic = dynamic[:len(dynamic)-1]
	}
	for _, part := range []struct {
		names []string
		into  *scene.Group
	}{
		{models.Loose, s.dynamic},
		{dynamic, s.dynamic},
		{models.Static, s.static},
		{models.Physic, s.physic},
	} {
		if err := load(part.names, part.into); err != nil {
			return nil, err
		}
	}

	if hasVehicle {
		geom, err := loader.LoadModel(vehicle)
		if err != nil {
			return nil, err
		}
		s.dynamic.Add(scene.NewTransform(mgl32.Ident4(), geom))
		s.vehicle = newVehicle(cfg, geom)
	} else {
		slog.Warn("Models list has no dynamic model, nothing to drive")
	}

	scene.QuadPartition{
		MaxFaceCount: cfg.Scene.Static.MaxFaceCount,
		MaxQuadSize:  cfg.Scene.Static.MaxQuadSize,
	}.Transform(s.static)
	slog.Info("Scene ready",
		"dynamic", scene.Count(s.dynamic),
		"static", scene.Count(s.static),
		"physic", scene.Count(s.physic),
	)
	return s, nil
}

// newVehicle wraps the vehicle model's bounds in a rigid box.
func newVehicle(cfg *config.Config, geom *scene.Geometry) *physics.RigidBox {
	bounds := geom.Bounds()
	half := bounds.Size().Mul(0.5)
	box := physics.NewRigidBox(half, cfg.Physics.Mass)
	box.SetCenter(mgl32.Vec3(cfg.Physics.Vehicle))
	box.SetGravity(mgl32.Vec3(cfg.Physics.Gravity))
	return box
}

func writeDots(dir string, s *scenes) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("Can not create graph directory", "dir", dir, "error", err)
		return
	}
	graphs := []struct {
		name string
		root scene.Node
	}{
		{"renderingScene", s.rendering},
		{"dynamicScene", s.dynamic},
		{"staticScene", s.static},
		{"physicScene", s.physic},
	}
	for _, g := range graphs {
		path := filepath.Join(dir, g.name+".dot")
		f, err := os.Create(path)
		if err != nil {
			slog.Error("Can not open graph file for output", "path", path, "error", err)
			continue
		}
		err = scene.WriteDot(f, g.root)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			slog.Error("Can not write graph", "path", path, "error", err)
			continue
		}
		slog.Info("Saved scene graph", "path", path)
	}
}

func newMapper(cfg config.InputConfig) (*input.Mapper, error) {
	policy, err := input.ParsePolicy(cfg.Priority)
	if err != nil {
		return nil, err
	}
	bindings, err := input.BindingsFromConfig(cfg.Bindings)
	if err != nil {
		return nil, err
	}
	return input.NewMapper(
		input.WithPolicy(policy),
		input.WithDeadZone(cfg.DeadZone),
		input.WithStepDelta(cfg.StepDelta),
		input.WithBindings(bindings),
	), nil
}
