package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Versifine/racer/internal/event"
	"github.com/Versifine/racer/internal/input"
)

type recorder struct {
	calls []string
	onKey func(event.KeyEvent)
}

func (r *recorder) OnInit(event.InitEvent) { r.calls = append(r.calls, "init") }

func (r *recorder) OnProcess(evt event.ProcessEvent) { r.calls = append(r.calls, "process") }

func (r *recorder) OnDeinit(event.DeinitEvent) { r.calls = append(r.calls, "deinit") }

func (r *recorder) OnKey(evt event.KeyEvent) {
	r.calls = append(r.calls, "key:"+evt.Key.String())
	if r.onKey != nil {
		r.onKey(evt)
	}
}

func (r *recorder) OnJoystickAxis(event.JoystickAxisEvent) { r.calls = append(r.calls, "axis") }

func TestRunTickDeliversQueuedEventsBeforeProcess(t *testing.T) {
	e := New(nil)
	r := &recorder{}
	e.Bus().Attach(r)

	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: true})
	e.Post(event.JoystickAxisEvent{Vertical: -100})
	e.RunTick()

	want := []string{"key:up", "axis", "process"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", r.calls, want)
		}
	}
}

func TestPostDropsWhenQueueFull(t *testing.T) {
	e := New(nil, WithQueueSize(1))
	r := &recorder{}
	e.Bus().Attach(r)

	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: true})
	e.Post(event.KeyEvent{Key: input.KeyDown, Pressed: true})
	e.RunTick()

	if len(r.calls) != 2 || r.calls[0] != "key:up" {
		t.Fatalf("calls = %v, want [key:up process]", r.calls)
	}
}

func TestPostKeepsKeyReleasesWhenQueueFull(t *testing.T) {
	e := New(nil, WithQueueSize(1))
	r := &recorder{}
	e.Bus().Attach(r)

	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: true})
	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: false})
	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: false})
	e.Post(event.KeyEvent{Key: input.KeyLeft, Pressed: true})
	e.Post(event.KeyEvent{Key: input.KeyDown, Pressed: false})
	e.RunTick()

	want := []string{"key:up", "key:up", "key:down", "process"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", r.calls, want)
		}
	}

	// Held releases are flushed; the queue is usable again.
	e.Post(event.KeyEvent{Key: input.KeyRight, Pressed: true})
	e.RunTick()
	if got := r.calls[len(r.calls)-2]; got != "key:right" {
		t.Fatalf("calls = %v, want key:right delivered on the next tick", r.calls)
	}
}

func TestKeyReleaseIsNotLostUnderLoad(t *testing.T) {
	e := New(nil, WithQueueSize(2))
	var pressed bool
	r := &recorder{onKey: func(evt event.KeyEvent) { pressed = evt.Pressed }}
	e.Bus().Attach(r)

	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: true})
	for i := 0; i < 10; i++ {
		e.Post(event.JoystickAxisEvent{Vertical: int16(i)})
	}
	e.Post(event.KeyEvent{Key: input.KeyUp, Pressed: false})
	e.RunTick()

	if pressed {
		t.Fatal("key still held after its release was posted to a full queue")
	}
}

func TestStartStopFromHandler(t *testing.T) {
	e := New(nil, WithTickInterval(time.Millisecond))
	r := &recorder{}
	r.onKey = func(evt event.KeyEvent) {
		if evt.Key == input.KeyEscape {
			e.Stop()
		}
	}
	e.Bus().Attach(r)
	e.Post(event.KeyEvent{Key: input.KeyEscape, Pressed: true})

	done := make(chan error, 1)
	go func() { done <- e.Start(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop")
	}

	if r.calls[0] != "init" {
		t.Fatalf("first call = %q, want init", r.calls[0])
	}
	if r.calls[len(r.calls)-1] != "deinit" {
		t.Fatalf("last call = %q, want deinit", r.calls[len(r.calls)-1])
	}
	e.Stop()
}

func TestStartReturnsOnContextCancel(t *testing.T) {
	e := New(nil, WithTickInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
}

func TestTimerElapsedAndReset(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	timer := NewTimerWithClock(func() time.Time { return now })

	if d := timer.ElapsedAndReset(); d != 0 {
		t.Fatalf("unstarted timer = %v, want 0", d)
	}

	timer.Start()
	now = now.Add(16 * time.Millisecond)
	if d := timer.ElapsedAndReset(); d != 16*time.Millisecond {
		t.Fatalf("elapsed = %v, want 16ms", d)
	}
	now = now.Add(4 * time.Millisecond)
	if d := timer.ElapsedAndReset(); d != 4*time.Millisecond {
		t.Fatalf("elapsed after reset = %v, want 4ms", d)
	}
	if d := timer.ElapsedAndReset(); d != 0 {
		t.Fatalf("immediate re-read = %v, want 0", d)
	}
}
