package physics

import (
	"log/slog"
	"time"

	"github.com/Versifine/racer/internal/event"
)

// Clock is a reset-on-read timer.
type Clock interface {
	Start()
	ElapsedAndReset() time.Duration
}

// FixedTimeStep advances its bodies in whole steps of a fixed length against
// a static scene. Forces added between steps are consumed by the next step.
type FixedTimeStep struct {
	scene       StaticScene
	bodies      []*RigidBox
	clock       Clock
	timeStep    float32
	minTimeStep float32
	accumulator float32
	paused      bool
	steps       uint64
}

type Option func(*FixedTimeStep)

func WithTimeStep(step float32) Option {
	return func(p *FixedTimeStep) {
		if step > 0 {
			p.timeStep = step
		}
	}
}

func WithMinTimeStep(step float32) Option {
	return func(p *FixedTimeStep) {
		if step > 0 {
			p.minTimeStep = step
		}
	}
}

func WithClock(c Clock) Option {
	return func(p *FixedTimeStep) { p.clock = c }
}

func NewFixedTimeStep(scene StaticScene, opts ...Option) *FixedTimeStep {
	p := &FixedTimeStep{
		scene:       scene,
		timeStep:    DefaultTimeStep,
		minTimeStep: DefaultMinTimeStep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *FixedTimeStep) AddRigidBody(b *RigidBox) {
	if b == nil {
		return
	}
	p.bodies = append(p.bodies, b)
}

// Initialize restarts the simulation clock and resumes a paused simulation.
func (p *FixedTimeStep) Initialize() {
	p.accumulator = 0
	p.paused = false
	if p.clock != nil {
		p.clock.Start()
	}
	slog.Debug("Physics initialized", "bodies", len(p.bodies), "time_step", p.timeStep)
}

func (p *FixedTimeStep) TogglePause() {
	p.paused = !p.paused
	slog.Info("Physics pause toggled", "paused", p.paused)
}

func (p *FixedTimeStep) Paused() bool {
	return p.paused
}

func (p *FixedTimeStep) TimeStep() float32 {
	return p.timeStep
}

// AdjustTimeStep changes the step length by delta, never below the minimum.
func (p *FixedTimeStep) AdjustTimeStep(delta float32) {
	next := p.timeStep + delta
	if next < p.minTimeStep {
		next = p.minTimeStep
	}
	p.timeStep = next
}

// Steps reports how many fixed steps have run.
func (p *FixedTimeStep) Steps() uint64 {
	return p.steps
}

// Advance runs as many whole steps as fit in the accumulated time and
// returns how many ran. A paused simulation discards the elapsed time.
func (p *FixedTimeStep) Advance(elapsed time.Duration) int {
	if p.paused {
		return 0
	}
	p.accumulator += float32(elapsed.Seconds())

	n := 0
	for p.accumulator >= p.timeStep {
		if n == maxStepsPerAdvance {
			p.accumulator = 0
			break
		}
		for _, b := range p.bodies {
			b.step(p.timeStep, p.scene)
		}
		p.accumulator -= p.timeStep
		p.steps++
		n++
	}
	return n
}

func (p *FixedTimeStep) OnInit(event.InitEvent) {
	p.Initialize()
}

func (p *FixedTimeStep) OnProcess(event.ProcessEvent) {
	if p.clock == nil {
		return
	}
	p.Advance(p.clock.ElapsedAndReset())
}

func (p *FixedTimeStep) OnDeinit(event.DeinitEvent) {
	slog.Debug("Physics stopped", "steps", p.steps)
}
