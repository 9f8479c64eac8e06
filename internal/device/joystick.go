package device

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Versifine/racer/internal/event"
)

const (
	DefaultJoystick = "/dev/input/js0"

	jsEventSize = 8
	jsEventAxis = 0x02
	jsEventInit = 0x80

	axisHorizontal = 0
	axisVertical   = 1
)

// jsEvent is one record of the Linux joystick API:
// u32 time (ms), s16 value, u8 type, u8 number, little endian.
type jsEvent struct {
	Time   uint32
	Value  int16
	Type   byte
	Number byte
}

func decodeJSEvent(buf []byte) jsEvent {
	return jsEvent{
		Time:   binary.LittleEndian.Uint32(buf[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(buf[4:6])),
		Type:   buf[6],
		Number: buf[7],
	}
}

// Joystick forwards the first stick of a Linux joystick device as
// joystick-axis events.
type Joystick struct {
	poster Poster
	path   string

	vertical   int16
	horizontal int16
}

func NewJoystick(poster Poster, path string) *Joystick {
	if path == "" {
		path = DefaultJoystick
	}
	return &Joystick{poster: poster, path: path}
}

// Run streams events until ctx is done. A missing device is logged and
// Run returns nil.
func (j *Joystick) Run(ctx context.Context) error {
	if j == nil || j.poster == nil {
		return fmt.Errorf("joystick has no event sink")
	}
	f, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("No joystick found", "path", j.path)
			return nil
		}
		slog.Warn("Cannot open joystick", "path", j.path, "error", err)
		return nil
	}
	defer f.Close()

	stop := context.AfterFunc(ctx, func() { f.Close() })
	defer stop()

	slog.Info("Joystick attached", "path", j.path)
	err = j.ReadEvents(f)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// ReadEvents consumes raw event records from r until it ends.
func (j *Joystick) ReadEvents(r io.Reader) error {
	var buf [jsEventSize]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read joystick event: %w", err)
		}
		j.handle(decodeJSEvent(buf[:]))
	}
}

func (j *Joystick) handle(e jsEvent) {
	if e.Type&^jsEventInit != jsEventAxis {
		return
	}
	switch e.Number {
	case axisHorizontal:
		j.horizontal = e.Value
	case axisVertical:
		j.vertical = e.Value
	default:
		return
	}
	j.poster.Post(event.JoystickAxisEvent{Vertical: j.vertical, Horizontal: j.horizontal})
}
