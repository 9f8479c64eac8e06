package device

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Versifine/racer/internal/event"
	"github.com/Versifine/racer/internal/input"
	"github.com/go-gl/mathgl/mgl32"
)

type recordingPoster struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPoster) Post(evt any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPoster) keys() []event.KeyEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.KeyEvent
	for _, e := range p.events {
		if k, ok := e.(event.KeyEvent); ok {
			out = append(out, k)
		}
	}
	return out
}

func TestReadKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []input.Key
	}{
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []input.Key{input.KeyUp, input.KeyDown, input.KeyRight, input.KeyLeft}},
		{"application arrows", "\x1bOA", []input.Key{input.KeyUp}},
		{"letters fold case", "rR c", []input.Key{input.LetterKey('r'), input.LetterKey('r'), input.KeySpace, input.LetterKey('c')}},
		{"step keys", "+=-", []input.Key{input.KeyPlus, input.KeyPlus, input.KeyMinus}},
		{"lone escape", "\x1b", []input.Key{input.KeyEscape}},
		{"ctrl-c quits", "\x03", []input.Key{input.KeyEscape}},
		{"escape then letter", "\x1bx", []input.Key{input.KeyEscape, input.LetterKey('x')}},
		{"unknown bytes", "\x01\x1b[Z", []input.Key{input.KeyUnknown, input.KeyUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			var got []input.Key
			for {
				k, err := readKey(r)
				if err != nil {
					break
				}
				got = append(got, k)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("keys = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("keys = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTerminalRunPostsPressAndReleases(t *testing.T) {
	p := &recordingPoster{}
	term := NewTerminal(p, WithInput(strings.NewReader("\x1b[Ar")), WithKeyPulse(time.Hour))

	if err := term.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	keys := p.keys()
	if len(keys) != 4 {
		t.Fatalf("events = %v, want 2 presses and 2 releases", keys)
	}
	if keys[0] != (event.KeyEvent{Key: input.KeyUp, Pressed: true}) {
		t.Errorf("first event = %v", keys[0])
	}
	if keys[1] != (event.KeyEvent{Key: input.LetterKey('r'), Pressed: true}) {
		t.Errorf("second event = %v", keys[1])
	}
	for _, k := range keys[2:] {
		if k.Pressed {
			t.Errorf("want release at end of input, got %v", k)
		}
	}
}

func TestTerminalPulseRelease(t *testing.T) {
	p := &recordingPoster{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	term := NewTerminal(p, WithKeyPulse(180*time.Millisecond))
	term.now = func() time.Time { return now }

	term.press(input.KeyUp)
	now = now.Add(100 * time.Millisecond)
	term.press(input.KeyUp)
	term.releaseExpired(now.Add(150 * time.Millisecond))
	if got := len(p.keys()); got != 2 {
		t.Fatalf("repeat within pulse released early: %v", p.keys())
	}

	term.releaseExpired(now.Add(180 * time.Millisecond))
	keys := p.keys()
	if len(keys) != 3 || keys[2] != (event.KeyEvent{Key: input.KeyUp, Pressed: false}) {
		t.Fatalf("events = %v, want release after pulse", keys)
	}

	term.releaseExpired(now.Add(time.Second))
	if len(p.keys()) != 3 {
		t.Fatal("key released twice")
	}
}

func jsRecord(value int16, typ, number byte) []byte {
	buf := make([]byte, jsEventSize)
	binary.LittleEndian.PutUint32(buf[0:4], 1234)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(value))
	buf[6] = typ
	buf[7] = number
	return buf
}

func TestDecodeJSEvent(t *testing.T) {
	e := decodeJSEvent(jsRecord(-32768, jsEventAxis|jsEventInit, 1))
	want := jsEvent{Time: 1234, Value: -32768, Type: jsEventAxis | jsEventInit, Number: 1}
	if e != want {
		t.Fatalf("decodeJSEvent() = %+v, want %+v", e, want)
	}
}

func TestJoystickReadEvents(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(jsRecord(0, jsEventAxis|jsEventInit, 0))
	stream.Write(jsRecord(-32768, jsEventAxis, 1))
	stream.Write(jsRecord(1, 0x01, 0))
	stream.Write(jsRecord(500, jsEventAxis, 3))
	stream.Write(jsRecord(16384, jsEventAxis, 0))

	p := &recordingPoster{}
	j := NewJoystick(p, "")
	if err := j.ReadEvents(&stream); err != nil {
		t.Fatalf("ReadEvents() error: %v", err)
	}

	want := []event.JoystickAxisEvent{
		{Vertical: 0, Horizontal: 0},
		{Vertical: -32768, Horizontal: 0},
		{Vertical: -32768, Horizontal: 16384},
	}
	if len(p.events) != len(want) {
		t.Fatalf("events = %v, want %v", p.events, want)
	}
	for i, w := range want {
		if p.events[i] != w {
			t.Errorf("event %d = %v, want %v", i, p.events[i], w)
		}
	}
}

func TestJoystickTruncatedRecord(t *testing.T) {
	j := NewJoystick(&recordingPoster{}, "")
	if err := j.ReadEvents(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Fatal("want error for truncated record")
	}
}

func TestJoystickMissingDevice(t *testing.T) {
	j := NewJoystick(&recordingPoster{}, t.TempDir()+"/js9")
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("Run() on missing device = %v, want nil", err)
	}
}

type stubVehicle struct{}

func (stubVehicle) Center() mgl32.Vec3   { return mgl32.Vec3{2, 1, 2} }
func (stubVehicle) Velocity() mgl32.Vec3 { return mgl32.Vec3{3, 0, 4} }
func (stubVehicle) OnGround() bool       { return true }

func TestStatusLineThrottles(t *testing.T) {
	var buf bytes.Buffer
	m := input.NewMapper()
	m.KeyDown(input.KeyUp)
	s := NewStatusLine(&buf, stubVehicle{}, m)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.OnProcess(event.ProcessEvent{Tick: 1})
	first := buf.String()
	for _, want := range []string{"FWD:1.00", "X:2.00", "speed:5.00", "ground:true"} {
		if !strings.Contains(first, want) {
			t.Errorf("status %q missing %q", first, want)
		}
	}

	now = now.Add(10 * time.Millisecond)
	s.OnProcess(event.ProcessEvent{Tick: 2})
	if buf.String() != first {
		t.Fatal("status redrawn before interval")
	}

	now = now.Add(time.Second)
	s.OnProcess(event.ProcessEvent{Tick: 3})
	if buf.Len() == len(first) {
		t.Fatal("status not redrawn after interval")
	}

	s.OnDeinit(event.DeinitEvent{})
	if !strings.HasSuffix(buf.String(), "\r\n") {
		t.Fatal("deinit should end the status line")
	}
}
