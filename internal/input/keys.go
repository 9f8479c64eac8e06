package input

import (
	"fmt"
	"strings"
)

// Key is an engine-neutral key symbol.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyEscape
	KeyPlus
	KeyMinus
	KeyEnter
	KeyBackspace
)

// KeyA is the first letter key; letters are KeyA+('x'-'a').
const KeyA Key = 100

func LetterKey(r rune) Key {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	if r < 'a' || r > 'z' {
		return KeyUnknown
	}
	return KeyA + Key(r-'a')
}

var namedKeys = map[Key]string{
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeySpace:     "space",
	KeyEscape:    "escape",
	KeyPlus:      "plus",
	KeyMinus:     "minus",
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
}

func (k Key) String() string {
	if name, ok := namedKeys[k]; ok {
		return name
	}
	if k >= KeyA && k <= KeyA+25 {
		return string(rune('a' + int(k-KeyA)))
	}
	return "unknown"
}

// ParseKey accepts the names produced by Key.String plus "+" and "-".
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "+":
		return KeyPlus, nil
	case "-":
		return KeyMinus, nil
	case "esc":
		return KeyEscape, nil
	}
	for k, n := range namedKeys {
		if n == name {
			return k, nil
		}
	}
	if len(name) == 1 {
		if k := LetterKey(rune(name[0])); k != KeyUnknown {
			return k, nil
		}
	}
	return KeyUnknown, fmt.Errorf("unknown key %q", name)
}

// Action is a logical binding target.
type Action string

const (
	ActionThrottle   Action = "throttle"
	ActionBrake      Action = "brake"
	ActionSteerLeft  Action = "steer_left"
	ActionSteerRight Action = "steer_right"
	ActionReset      Action = "reset"
	ActionPause      Action = "pause"
	ActionLogCamera  Action = "log_camera"
	ActionStepUp     Action = "step_up"
	ActionStepDown   Action = "step_down"
	ActionQuit       Action = "quit"
)

// Bindings maps keys to the action they trigger.
type Bindings map[Key]Action

func DefaultBindings() Bindings {
	return Bindings{
		KeyUp:          ActionThrottle,
		KeyDown:        ActionBrake,
		KeyLeft:        ActionSteerLeft,
		KeyRight:       ActionSteerRight,
		LetterKey('r'): ActionReset,
		KeySpace:       ActionPause,
		LetterKey('c'): ActionLogCamera,
		KeyPlus:        ActionStepUp,
		KeyMinus:       ActionStepDown,
		KeyEscape:      ActionQuit,
	}
}

// BindingsFromConfig starts from DefaultBindings and rebinds each action named
// in overrides (action -> key name). The previous key of a rebound action is
// released.
func BindingsFromConfig(overrides map[string]string) (Bindings, error) {
	b := DefaultBindings()
	for action, keyName := range overrides {
		a := Action(action)
		if !a.valid() {
			return nil, fmt.Errorf("unknown action %q", action)
		}
		k, err := ParseKey(keyName)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", action, err)
		}
		for old, bound := range b {
			if bound == a {
				delete(b, old)
			}
		}
		b[k] = a
	}
	return b, nil
}

func (b Bindings) Lookup(k Key) (Action, bool) {
	a, ok := b[k]
	return a, ok
}

func (a Action) valid() bool {
	switch a {
	case ActionThrottle, ActionBrake, ActionSteerLeft, ActionSteerRight,
		ActionReset, ActionPause, ActionLogCamera, ActionStepUp, ActionStepDown, ActionQuit:
		return true
	}
	return false
}
