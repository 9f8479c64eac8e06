package device

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Versifine/racer/internal/event"
	"github.com/Versifine/racer/internal/input"
	"github.com/go-gl/mathgl/mgl32"
)

const defaultStatusInterval = 100 * time.Millisecond

// Vehicle is what the status line reports about the body.
type Vehicle interface {
	Center() mgl32.Vec3
	Velocity() mgl32.Vec3
	OnGround() bool
}

// StatusLine redraws a one-line summary of the vehicle on the terminal
// during process ticks.
type StatusLine struct {
	w        io.Writer
	vehicle  Vehicle
	mapper   *input.Mapper
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	last  time.Time
	width int
}

func NewStatusLine(w io.Writer, vehicle Vehicle, mapper *input.Mapper) *StatusLine {
	return &StatusLine{
		w:        w,
		vehicle:  vehicle,
		mapper:   mapper,
		interval: defaultStatusInterval,
		now:      time.Now,
	}
}

func (s *StatusLine) OnProcess(event.ProcessEvent) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.last.IsZero() && now.Sub(s.last) < s.interval {
		return
	}
	s.last = now
	s.render()
}

func (s *StatusLine) OnDeinit(event.DeinitEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprint(s.w, "\r\n")
	}
}

func (s *StatusLine) render() {
	var cmd input.CommandState
	if s.mapper != nil {
		cmd = s.mapper.State()
	}
	line := fmt.Sprintf("[FWD:%.2f BWD:%.2f L:%.2f R:%.2f", cmd.Forward, cmd.Backward, cmd.SteerLeft, cmd.SteerRight)
	if s.vehicle != nil {
		pos := s.vehicle.Center()
		vel := s.vehicle.Velocity()
		line += fmt.Sprintf(" | X:%.2f Y:%.2f Z:%.2f speed:%.2f ground:%t",
			pos.X(), pos.Y(), pos.Z(), vel.Len(), s.vehicle.OnGround())
	}
	line += "]"

	padding := ""
	if s.width > len(line) {
		padding = strings.Repeat(" ", s.width-len(line))
	}
	fmt.Fprintf(s.w, "\r%s%s", line, padding)
	s.width = max(s.width, len(line))
}
