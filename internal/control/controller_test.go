package control

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Versifine/racer/internal/event"
	"github.com/Versifine/racer/internal/input"
	"github.com/Versifine/racer/internal/physics"
	"github.com/go-gl/mathgl/mgl32"
)

type mockBody struct {
	rot    mgl32.Mat3
	forces map[physics.Corner]mgl32.Vec3
	center mgl32.Vec3
	resets int
}

func newMockBody() *mockBody {
	return &mockBody{rot: mgl32.Ident3(), forces: make(map[physics.Corner]mgl32.Vec3)}
}

func (b *mockBody) RotationMatrix() mgl32.Mat3 { return b.rot }

func (b *mockBody) AddForce(f mgl32.Vec3, c physics.Corner) { b.forces[c] = b.forces[c].Add(f) }

func (b *mockBody) ResetForces() {
	b.resets++
	b.forces = make(map[physics.Corner]mgl32.Vec3)
}

func (b *mockBody) SetCenter(p mgl32.Vec3) { b.center = p }

func (b *mockBody) Center() mgl32.Vec3 { return b.center }

type mockEngine struct{ stops int }

func (e *mockEngine) Stop() { e.stops++ }

type mockIntegrator struct {
	inits   int
	toggles int
	steps   []float32
}

func (i *mockIntegrator) Initialize()                  { i.inits++ }
func (i *mockIntegrator) TogglePause()                 { i.toggles++ }
func (i *mockIntegrator) AdjustTimeStep(delta float32) { i.steps = append(i.steps, delta) }

type fixedClock struct {
	elapsed time.Duration
	started int
}

func (c *fixedClock) Start()                         { c.started++ }
func (c *fixedClock) ElapsedAndReset() time.Duration { return c.elapsed }

func newController(t *testing.T, opts ...Option) (*ForceController, *mockEngine, *fixedClock) {
	t.Helper()
	eng := &mockEngine{}
	clk := &fixedClock{elapsed: 20 * time.Millisecond}
	c, err := New(DefaultConfig(), eng, append([]Option{WithClock(clk)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	c.OnInit(event.InitEvent{})
	return c, eng, clk
}

func press(c *ForceController, k input.Key) {
	c.OnKey(event.KeyEvent{Key: k, Pressed: true})
}

func release(c *ForceController, k input.Key) {
	c.OnKey(event.KeyEvent{Key: k, Pressed: false})
}

// vecApprox compares per component with an absolute tolerance; rotated
// axes carry float noise where the exact value is zero.
func vecApprox(t *testing.T, got, want mgl32.Vec3, what string) {
	t.Helper()
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-3 {
			t.Errorf("%s = %v, want %v", what, got, want)
			return
		}
	}
}

func TestNewRequiresEngine(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("New(nil engine) error = %v, want ErrConfiguration", err)
	}
}

func TestNewRejectsNegativeGains(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Speed = -1
	_, err := New(cfg, &mockEngine{})
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("New(negative speed) error = %v, want ErrConfiguration", err)
	}
}

func TestOnInitStartsClockOnce(t *testing.T) {
	c, _, clk := newController(t)
	c.OnInit(event.InitEvent{})
	if clk.started != 1 {
		t.Fatalf("clock started %d times, want 1", clk.started)
	}
}

func TestProcessWithoutBodyAddsNoForce(t *testing.T) {
	for _, elapsed := range []time.Duration{0, time.Millisecond, time.Second} {
		t.Run(elapsed.String(), func(t *testing.T) {
			body := newMockBody()
			integ := &mockIntegrator{}
			c, _, clk := newController(t, WithBody(body), WithIntegrator(integ))
			c.SetBody(nil)
			clk.elapsed = elapsed

			for _, k := range []input.Key{input.KeyUp, input.KeyDown, input.KeyLeft, input.KeyRight, input.KeyPlus} {
				press(c, k)
			}
			c.OnProcess(event.ProcessEvent{Tick: 1})
			c.OnProcess(event.ProcessEvent{Tick: 2})

			if len(body.forces) != 0 {
				t.Fatalf("forces = %v, want none without a body", body.forces)
			}
			if len(integ.steps) != 0 {
				t.Fatalf("time step adjusted %v without a body", integ.steps)
			}
		})
	}
}

func TestProcessIdleAddsNoForce(t *testing.T) {
	body := newMockBody()
	c, _, _ := newController(t, WithBody(body))
	c.OnProcess(event.ProcessEvent{Tick: 1})
	if len(body.forces) != 0 {
		t.Fatalf("idle tick added forces: %v", body.forces)
	}
}

func TestProcessForwardPushesFrontCorners(t *testing.T) {
	body := newMockBody()
	c, _, _ := newController(t, WithBody(body))
	press(c, input.KeyUp)
	c.OnProcess(event.ProcessEvent{Tick: 1})

	want := mgl32.Vec3{1750 * 0.02, 0, 0}
	if len(body.forces) != 4 {
		t.Fatalf("forces on %d corners, want 4", len(body.forces))
	}
	for _, corner := range physics.FrontCorners {
		vecApprox(t, body.forces[corner], want, corner.String())
	}
}

func TestProcessBackwardPushesRearCorners(t *testing.T) {
	body := newMockBody()
	c, _, _ := newController(t, WithBody(body))
	press(c, input.KeyDown)
	c.OnProcess(event.ProcessEvent{Tick: 1})

	want := mgl32.Vec3{-1750 * 0.02, 0, 0}
	for _, corner := range physics.RearCorners {
		vecApprox(t, body.forces[corner], want, corner.String())
	}
	for _, corner := range physics.FrontCorners {
		if _, ok := body.forces[corner]; ok {
			t.Errorf("unexpected force on %s", corner)
		}
	}
}

func TestProcessSteering(t *testing.T) {
	tests := []struct {
		name       string
		horizontal int16
		corners    []physics.Corner
		want       mgl32.Vec3
	}{
		{"half left", -16384, physics.LeftCorners, mgl32.Vec3{0, 0, -550 * 0.02 * 0.5}},
		{"full right", 32767, physics.RightCorners, mgl32.Vec3{0, 0, 550 * 0.02 * 32767.0 / 32768.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newMockBody()
			c, _, _ := newController(t, WithBody(body))
			c.OnJoystickAxis(event.JoystickAxisEvent{Horizontal: tt.horizontal})
			c.OnProcess(event.ProcessEvent{Tick: 1})

			if len(body.forces) != 2 {
				t.Fatalf("forces on %d corners, want 2", len(body.forces))
			}
			for _, corner := range tt.corners {
				vecApprox(t, body.forces[corner], tt.want, corner.String())
			}
		})
	}
}

func TestProcessFollowsBodyOrientation(t *testing.T) {
	body := newMockBody()
	// Heading along -Z: forward row (0,0,-1), right row (1,0,0).
	body.rot = mgl32.Mat3FromRows(
		mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{0, 1, 0},
		mgl32.Vec3{1, 0, 0},
	)
	c, _, _ := newController(t, WithBody(body))
	press(c, input.KeyUp)
	c.OnProcess(event.ProcessEvent{Tick: 1})

	vecApprox(t, body.forces[physics.FrontRightTop], mgl32.Vec3{0, 0, -1750 * 0.02}, "front right top")
}

func TestReleaseStopsForces(t *testing.T) {
	body := newMockBody()
	c, _, _ := newController(t, WithBody(body))
	press(c, input.KeyUp)
	release(c, input.KeyUp)
	c.OnProcess(event.ProcessEvent{Tick: 1})
	if len(body.forces) != 0 {
		t.Fatalf("released key still adds forces: %v", body.forces)
	}
}

func TestResetKey(t *testing.T) {
	body := newMockBody()
	integ := &mockIntegrator{}
	c, _, _ := newController(t, WithBody(body), WithIntegrator(integ))
	press(c, input.KeyUp)
	c.OnProcess(event.ProcessEvent{Tick: 1})
	body.center = mgl32.Vec3{40, -3, 7}

	press(c, input.LetterKey('r'))

	if integ.inits != 1 {
		t.Errorf("integrator initialized %d times, want 1", integ.inits)
	}
	if body.resets != 1 || len(body.forces) != 0 {
		t.Errorf("forces not reset: resets=%d forces=%v", body.resets, body.forces)
	}
	vecApprox(t, body.center, DefaultSpawn, "center")
}

func TestPauseKeyTogglesIntegrator(t *testing.T) {
	body := newMockBody()
	integ := &mockIntegrator{}
	c, _, _ := newController(t, WithBody(body), WithIntegrator(integ))
	body.AddForce(mgl32.Vec3{1, 0, 0}, physics.FrontRightTop)

	press(c, input.KeySpace)
	press(c, input.KeySpace)

	if integ.toggles != 2 {
		t.Errorf("toggles = %d, want 2", integ.toggles)
	}
	if body.resets != 0 || len(body.forces) != 1 {
		t.Errorf("pause touched forces: %v", body.forces)
	}
}

func TestQuitKeyStopsEngine(t *testing.T) {
	c, eng, _ := newController(t)
	press(c, input.KeyEscape)
	if eng.stops != 1 {
		t.Fatalf("engine stopped %d times, want 1", eng.stops)
	}
}

func TestStepKeysAdjustTimeStepWhileHeld(t *testing.T) {
	integ := &mockIntegrator{}
	c, _, _ := newController(t, WithBody(newMockBody()), WithIntegrator(integ))

	press(c, input.KeyPlus)
	c.OnProcess(event.ProcessEvent{Tick: 1})
	c.OnProcess(event.ProcessEvent{Tick: 2})
	release(c, input.KeyPlus)
	c.OnProcess(event.ProcessEvent{Tick: 3})
	press(c, input.KeyMinus)
	c.OnProcess(event.ProcessEvent{Tick: 4})

	want := []float32{0.001, 0.001, -0.001}
	if len(integ.steps) != len(want) {
		t.Fatalf("steps = %v, want %v", integ.steps, want)
	}
	for i := range want {
		if integ.steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", integ.steps, want)
		}
	}
}

func TestUtilityKeysWithoutCollaborators(t *testing.T) {
	c, _, _ := newController(t)
	press(c, input.LetterKey('r'))
	press(c, input.KeySpace)
	press(c, input.LetterKey('c'))
}
