package event

import "github.com/Versifine/racer/internal/input"

const (
	TopicInit         = "engine.init"
	TopicProcess      = "engine.process"
	TopicDeinit       = "engine.deinit"
	TopicKey          = "device.key"
	TopicJoystickAxis = "device.joystick_axis"
)

type InitEvent struct{}

type ProcessEvent struct {
	Tick uint64
}

type DeinitEvent struct{}

type KeyEvent struct {
	Key     input.Key
	Pressed bool
}

// JoystickAxisEvent carries the two stick readings in [-32768, 32767].
type JoystickAxisEvent struct {
	Vertical   int16
	Horizontal int16
}

type InitHandler interface {
	OnInit(InitEvent)
}

type ProcessHandler interface {
	OnProcess(ProcessEvent)
}

type DeinitHandler interface {
	OnDeinit(DeinitEvent)
}

type KeyHandler interface {
	OnKey(KeyEvent)
}

type JoystickAxisHandler interface {
	OnJoystickAxis(JoystickAxisEvent)
}
