package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Versifine/racer/internal/event"
	"github.com/Versifine/racer/internal/input"
	"golang.org/x/term"
)

const (
	DefaultKeyPulse = 180 * time.Millisecond

	keyEscape = 27
	keyCtrlC  = 3
)

// Poster accepts device events for the engine loop.
type Poster interface {
	Post(evt any)
}

// Terminal reads keys from a raw-mode terminal. Terminals report presses
// only, so every press is followed by a synthetic release once the key has
// not repeated for the pulse duration.
type Terminal struct {
	poster Poster
	in     io.Reader
	pulse  time.Duration
	now    func() time.Time

	mu   sync.Mutex
	held map[input.Key]time.Time
}

type TerminalOption func(*Terminal)

func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) {
		if r != nil {
			t.in = r
		}
	}
}

func WithKeyPulse(d time.Duration) TerminalOption {
	return func(t *Terminal) {
		if d > 0 {
			t.pulse = d
		}
	}
}

func NewTerminal(poster Poster, opts ...TerminalOption) *Terminal {
	t := &Terminal{
		poster: poster,
		in:     os.Stdin,
		pulse:  DefaultKeyPulse,
		now:    time.Now,
		held:   make(map[input.Key]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IsTerminal reports whether stdin is an interactive terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Run reads keys until ctx is done or input ends. When reading stdin from a
// terminal it switches to raw mode and restores it on return.
func (t *Terminal) Run(ctx context.Context) error {
	if t == nil || t.poster == nil {
		return fmt.Errorf("terminal has no event sink")
	}
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("set terminal raw mode: %w", err)
		}
		// A blocked read outlives ctx, so the mode is restored as soon as
		// ctx ends rather than when the read returns.
		var once sync.Once
		restore := func() {
			once.Do(func() {
				_ = term.Restore(fd, oldState)
				fmt.Print("\r\n")
			})
		}
		stop := context.AfterFunc(ctx, restore)
		defer func() {
			stop()
			restore()
		}()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go t.releaseLoop(loopCtx)
	defer t.releaseAll()

	reader := bufio.NewReader(t.in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		k, err := readKey(reader)
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read terminal input: %w", err)
		}
		if k == input.KeyUnknown {
			continue
		}
		t.press(k)
	}
}

func (t *Terminal) press(k input.Key) {
	t.mu.Lock()
	t.held[k] = t.now().Add(t.pulse)
	t.mu.Unlock()
	t.poster.Post(event.KeyEvent{Key: k, Pressed: true})
}

func (t *Terminal) releaseLoop(ctx context.Context) {
	ticker := time.NewTicker(max(t.pulse/4, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.releaseExpired(t.now())
		}
	}
}

// releaseExpired posts a release for every key whose pulse ended by now.
func (t *Terminal) releaseExpired(now time.Time) {
	t.mu.Lock()
	var expired []input.Key
	for k, until := range t.held {
		if !now.Before(until) {
			expired = append(expired, k)
			delete(t.held, k)
		}
	}
	t.mu.Unlock()
	for _, k := range expired {
		t.poster.Post(event.KeyEvent{Key: k, Pressed: false})
	}
}

func (t *Terminal) releaseAll() {
	t.mu.Lock()
	keys := make([]input.Key, 0, len(t.held))
	for k := range t.held {
		keys = append(keys, k)
	}
	clear(t.held)
	t.mu.Unlock()
	for _, k := range keys {
		t.poster.Post(event.KeyEvent{Key: k, Pressed: false})
	}
}

// readKey decodes one key from raw terminal bytes. Arrow keys arrive as
// ESC [ A..D; an ESC with nothing buffered behind it is the escape key.
func readKey(r *bufio.Reader) (input.Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return input.KeyUnknown, err
	}
	switch {
	case b == keyEscape:
		if r.Buffered() == 0 {
			return input.KeyEscape, nil
		}
		next, err := r.ReadByte()
		if err != nil {
			return input.KeyEscape, nil
		}
		if next != '[' && next != 'O' {
			_ = r.UnreadByte()
			return input.KeyEscape, nil
		}
		arrow, err := r.ReadByte()
		if err != nil {
			return input.KeyUnknown, nil
		}
		switch arrow {
		case 'A':
			return input.KeyUp, nil
		case 'B':
			return input.KeyDown, nil
		case 'C':
			return input.KeyRight, nil
		case 'D':
			return input.KeyLeft, nil
		}
		slog.Debug("Ignoring terminal escape sequence", "final", string(rune(arrow)))
		return input.KeyUnknown, nil
	case b == keyCtrlC:
		return input.KeyEscape, nil
	case b == ' ':
		return input.KeySpace, nil
	case b == '+' || b == '=':
		return input.KeyPlus, nil
	case b == '-' || b == '_':
		return input.KeyMinus, nil
	case b == '\r' || b == '\n':
		return input.KeyEnter, nil
	case b == 8 || b == 127:
		return input.KeyBackspace, nil
	case (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z'):
		return input.LetterKey(rune(b)), nil
	}
	return input.KeyUnknown, nil
}
