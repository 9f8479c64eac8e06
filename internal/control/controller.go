package control

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Versifine/racer/internal/engine"
	"github.com/Versifine/racer/internal/event"
	"github.com/Versifine/racer/internal/input"
	"github.com/Versifine/racer/internal/physics"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrConfiguration = errors.New("control: configuration error")

const (
	DefaultSpeed float32 = 1750
	DefaultTurn  float32 = 550
)

var DefaultSpawn = mgl32.Vec3{2, 1, 2}

// Stopper is the part of the hosting engine the quit key needs.
type Stopper interface {
	Stop()
}

// Integrator is the physics stepper the reset and pause keys drive.
type Integrator interface {
	Initialize()
	TogglePause()
}

// StepAdjuster is implemented by integrators whose time step can be nudged
// at runtime.
type StepAdjuster interface {
	AdjustTimeStep(delta float32)
}

type Camera interface {
	Position() mgl32.Vec3
}

type Config struct {
	Speed float32
	Turn  float32
	Spawn mgl32.Vec3
}

func DefaultConfig() Config {
	return Config{Speed: DefaultSpeed, Turn: DefaultTurn, Spawn: DefaultSpawn}
}

// ForceController turns the mapped command state into corner forces on the
// vehicle body once per engine tick and handles the utility keys.
type ForceController struct {
	cfg        Config
	engine     Stopper
	body       physics.RigidBody
	integrator Integrator
	camera     Camera
	mapper     *input.Mapper
	clock      physics.Clock
	started    bool
}

type Option func(*ForceController)

func WithBody(b physics.RigidBody) Option {
	return func(c *ForceController) { c.body = b }
}

func WithIntegrator(i Integrator) Option {
	return func(c *ForceController) { c.integrator = i }
}

func WithCamera(cam Camera) Option {
	return func(c *ForceController) { c.camera = cam }
}

func WithMapper(m *input.Mapper) Option {
	return func(c *ForceController) {
		if m != nil {
			c.mapper = m
		}
	}
}

func WithClock(clk physics.Clock) Option {
	return func(c *ForceController) {
		if clk != nil {
			c.clock = clk
		}
	}
}

func New(cfg Config, eng Stopper, opts ...Option) (*ForceController, error) {
	if eng == nil {
		return nil, fmt.Errorf("%w: force controller needs an engine", ErrConfiguration)
	}
	if cfg.Speed < 0 || cfg.Turn < 0 {
		return nil, fmt.Errorf("%w: speed %v and turn %v must be non-negative", ErrConfiguration, cfg.Speed, cfg.Turn)
	}
	c := &ForceController{
		cfg:    cfg,
		engine: eng,
		mapper: input.NewMapper(),
		clock:  engine.NewTimer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetBody swaps the controlled body; nil detaches it.
func (c *ForceController) SetBody(b physics.RigidBody) {
	c.body = b
}

func (c *ForceController) Mapper() *input.Mapper {
	return c.mapper
}

func (c *ForceController) OnInit(event.InitEvent) {
	c.mapper.Clear()
	if !c.started {
		c.clock.Start()
		c.started = true
	}
}

func (c *ForceController) OnProcess(event.ProcessEvent) {
	delta := float32(c.clock.ElapsedAndReset().Seconds())
	if c.body == nil {
		return
	}
	state := c.mapper.State()

	if state.BoostModifier {
		if s, ok := c.integrator.(StepAdjuster); ok {
			s.AdjustTimeStep(state.BoostStep)
		}
	}
	if state.Idle() {
		return
	}
	c.applyForces(state, delta)
}

func (c *ForceController) OnDeinit(event.DeinitEvent) {}

func (c *ForceController) OnJoystickAxis(evt event.JoystickAxisEvent) {
	c.mapper.JoystickAxis(evt.Vertical, evt.Horizontal)
}

func (c *ForceController) OnKey(evt event.KeyEvent) {
	if !evt.Pressed {
		c.mapper.KeyUp(evt.Key)
		return
	}
	action, ok := c.mapper.KeyDown(evt.Key)
	if !ok {
		return
	}
	switch action {
	case input.ActionReset:
		c.Reset()
	case input.ActionPause:
		if c.integrator != nil {
			c.integrator.TogglePause()
		}
	case input.ActionLogCamera:
		if c.camera != nil {
			pos := c.camera.Position()
			slog.Info("Camera position", "x", pos.X(), "y", pos.Y(), "z", pos.Z())
		}
	case input.ActionQuit:
		c.engine.Stop()
	}
}

// Reset re-initializes the integrator and puts the body back at the spawn
// point with no forces, whatever the current input.
func (c *ForceController) Reset() {
	if c.integrator != nil {
		c.integrator.Initialize()
	}
	if c.body != nil {
		c.body.ResetForces()
		c.body.SetCenter(c.cfg.Spawn)
	}
	slog.Info("Reset Physics")
}

func (c *ForceController) applyForces(state input.CommandState, delta float32) {
	rot := c.body.RotationMatrix()
	forward := rot.Row(0)
	left := rot.Row(2)

	if state.Forward > 0 {
		f := forward.Mul(delta * c.cfg.Speed * state.Forward)
		for _, corner := range physics.FrontCorners {
			c.body.AddForce(f, corner)
		}
	}
	if state.Backward > 0 {
		f := forward.Mul(-delta * c.cfg.Speed * state.Backward)
		for _, corner := range physics.RearCorners {
			c.body.AddForce(f, corner)
		}
	}
	if state.SteerLeft > 0 {
		f := left.Mul(-delta * c.cfg.Turn * state.SteerLeft)
		for _, corner := range physics.LeftCorners {
			c.body.AddForce(f, corner)
		}
	}
	if state.SteerRight > 0 {
		f := left.Mul(delta * c.cfg.Turn * state.SteerRight)
		for _, corner := range physics.RightCorners {
			c.body.AddForce(f, corner)
		}
	}
}
