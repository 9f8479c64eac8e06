package input

import "fmt"

// Channel indexes the four continuous driving channels.
type Channel int

const (
	Forward Channel = iota
	Backward
	SteerLeft
	SteerRight
	numChannels
)

// CommandState is the driving intent read once per tick. Channels are in [0,1].
type CommandState struct {
	Forward       float32
	Backward      float32
	SteerLeft     float32
	SteerRight    float32
	BoostModifier bool
	BoostStep     float32
}

// Idle reports whether all four channels are zero.
func (s CommandState) Idle() bool {
	return s.Forward == 0 && s.Backward == 0 && s.SteerLeft == 0 && s.SteerRight == 0
}

// Policy decides which source wins when keyboard and joystick both drive a channel.
type Policy int

const (
	// PolicyLatest keeps whatever was written last.
	PolicyLatest Policy = iota
	// PolicyKeyboard lets a held key override the joystick reading.
	PolicyKeyboard
	// PolicyJoystick lets a non-zero joystick reading override the keyboard.
	PolicyJoystick
)

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "latest":
		return PolicyLatest, nil
	case "keyboard":
		return PolicyKeyboard, nil
	case "joystick":
		return PolicyJoystick, nil
	default:
		return PolicyLatest, fmt.Errorf("unknown input priority %q", s)
	}
}

const (
	DefaultDeadZone  = 0.1
	DefaultStepDelta = 0.001

	// axisRange maps a signed 16-bit axis reading onto [-1,1].
	axisRange = 1 << 15
)

// Mapper turns key and joystick events into a CommandState.
// It is not safe for concurrent use; the engine loop is its only caller.
type Mapper struct {
	deadZone  float32
	stepDelta float32
	policy    Policy
	bindings  Bindings

	keyboard [numChannels]float32
	joystick [numChannels]float32
	latest   [numChannels]float32

	boost bool
	step  float32
}

type MapperOption func(*Mapper)

func WithDeadZone(v float32) MapperOption {
	return func(m *Mapper) { m.deadZone = v }
}

func WithStepDelta(v float32) MapperOption {
	return func(m *Mapper) { m.stepDelta = v }
}

func WithPolicy(p Policy) MapperOption {
	return func(m *Mapper) { m.policy = p }
}

func WithBindings(b Bindings) MapperOption {
	return func(m *Mapper) { m.bindings = b }
}

func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		deadZone:  DefaultDeadZone,
		stepDelta: DefaultStepDelta,
		policy:    PolicyLatest,
		bindings:  DefaultBindings(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// KeyDown applies a key press and returns the action bound to the key.
func (m *Mapper) KeyDown(k Key) (Action, bool) {
	action, ok := m.bindings.Lookup(k)
	if !ok {
		return "", false
	}
	if ch, isChannel := actionChannel(action); isChannel {
		m.writeKey(ch, 1)
		return action, true
	}
	switch action {
	case ActionStepUp:
		m.boost = true
		m.step = m.stepDelta
	case ActionStepDown:
		m.boost = true
		m.step = -m.stepDelta
	}
	return action, true
}

// KeyUp applies a key release and returns the action bound to the key.
func (m *Mapper) KeyUp(k Key) (Action, bool) {
	action, ok := m.bindings.Lookup(k)
	if !ok {
		return "", false
	}
	if ch, isChannel := actionChannel(action); isChannel {
		m.writeKey(ch, 0)
		return action, true
	}
	switch action {
	case ActionStepUp, ActionStepDown:
		m.boost = false
	}
	return action, true
}

// JoystickAxis overwrites all four channels from two raw readings in
// [-32768, 32767]. Negative vertical drives forward, negative horizontal
// steers left. Readings under the dead zone floor to zero.
func (m *Mapper) JoystickAxis(vertical, horizontal int16) {
	v := float32(vertical) / axisRange
	h := float32(horizontal) / axisRange

	m.joystick[Forward] = m.filter(-v)
	m.joystick[Backward] = m.filter(v)
	m.joystick[SteerLeft] = m.filter(-h)
	m.joystick[SteerRight] = m.filter(h)
	m.latest = m.joystick
}

// State resolves the current channels under the configured policy.
func (m *Mapper) State() CommandState {
	var ch [numChannels]float32
	for i := range ch {
		ch[i] = m.resolve(Channel(i))
	}
	return CommandState{
		Forward:       ch[Forward],
		Backward:      ch[Backward],
		SteerLeft:     ch[SteerLeft],
		SteerRight:    ch[SteerRight],
		BoostModifier: m.boost,
		BoostStep:     m.step,
	}
}

// Clear drops all held input, e.g. when the terminal loses focus.
func (m *Mapper) Clear() {
	m.keyboard = [numChannels]float32{}
	m.joystick = [numChannels]float32{}
	m.latest = [numChannels]float32{}
	m.boost = false
}

func (m *Mapper) writeKey(ch Channel, v float32) {
	m.keyboard[ch] = v
	m.latest[ch] = v
}

func (m *Mapper) resolve(ch Channel) float32 {
	switch m.policy {
	case PolicyKeyboard:
		if m.keyboard[ch] > 0 {
			return m.keyboard[ch]
		}
		return m.joystick[ch]
	case PolicyJoystick:
		if m.joystick[ch] > 0 {
			return m.joystick[ch]
		}
		return m.keyboard[ch]
	default:
		return m.latest[ch]
	}
}

func (m *Mapper) filter(v float32) float32 {
	if v < m.deadZone {
		return 0
	}
	return clamp01(v)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func actionChannel(a Action) (Channel, bool) {
	switch a {
	case ActionThrottle:
		return Forward, true
	case ActionBrake:
		return Backward, true
	case ActionSteerLeft:
		return SteerLeft, true
	case ActionSteerRight:
		return SteerRight, true
	}
	return 0, false
}
