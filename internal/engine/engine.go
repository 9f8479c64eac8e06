package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Versifine/racer/internal/event"
)

const (
	defaultTickInterval = 10 * time.Millisecond
	defaultQueueSize    = 256
)

// Engine drives the init/process/deinit lifecycle on a single goroutine.
// Devices hand events to Post from their own goroutines; the loop delivers
// them before the next process tick.
type Engine struct {
	bus          *event.Bus
	tickInterval time.Duration
	queue        chan any

	// releases holds key releases that found the queue full. While it is
	// non-empty every later event goes through it too, so order is kept.
	mu       sync.Mutex
	releases []event.KeyEvent

	stopOnce sync.Once
	stopped  chan struct{}
	running  bool
	tick     uint64
}

type Option func(*Engine)

func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

func WithQueueSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.queue = make(chan any, n)
		}
	}
}

func New(bus *event.Bus, opts ...Option) *Engine {
	if bus == nil {
		bus = event.NewBus()
	}
	e := &Engine{
		bus:          bus,
		tickInterval: defaultTickInterval,
		queue:        make(chan any, defaultQueueSize),
		stopped:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Post queues a device event. It never blocks. When the queue is full,
// key releases are held back for the next drain and other events are
// dropped; a lost release would leave its channel held.
func (e *Engine) Post(evt any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.releases) == 0 {
		select {
		case e.queue <- evt:
			return
		default:
		}
	}
	if ke, ok := evt.(event.KeyEvent); ok && !ke.Pressed {
		if !slices.Contains(e.releases, ke) {
			e.releases = append(e.releases, ke)
		}
		return
	}
	slog.Warn("Engine event queue full, dropping event", "event", fmt.Sprintf("%T", evt))
}

// Stop asks the loop to finish after the current tick. Safe to call more
// than once and from any goroutine.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopped)
	})
}

// Start runs the engine until Stop is called or ctx is done.
func (e *Engine) Start(ctx context.Context) error {
	if e.running {
		return fmt.Errorf("engine already running")
	}
	e.running = true
	defer func() { e.running = false }()

	e.bus.Publish(event.TopicInit, event.InitEvent{})
	slog.Debug("Engine initialized", "tick_interval", e.tickInterval)

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.deinit()
			return nil
		case <-e.stopped:
			e.deinit()
			return nil
		case <-ticker.C:
			e.RunTick()
		}
	}
}

// RunTick delivers every queued device event and then one process event.
func (e *Engine) RunTick() {
	e.drain()
	e.tick++
	e.bus.Publish(event.TopicProcess, event.ProcessEvent{Tick: e.tick})
}

func (e *Engine) drain() {
	for {
		select {
		case evt := <-e.queue:
			e.publish(evt)
		default:
			e.mu.Lock()
			held := e.releases
			e.releases = nil
			e.mu.Unlock()
			for _, evt := range held {
				e.publish(evt)
			}
			return
		}
	}
}

func (e *Engine) publish(evt any) {
	topic, ok := event.TopicOf(evt)
	if !ok {
		slog.Warn("Dropping event without topic", "event", fmt.Sprintf("%T", evt))
		return
	}
	e.bus.Publish(topic, evt)
}

func (e *Engine) deinit() {
	e.drain()
	e.bus.Publish(event.TopicDeinit, event.DeinitEvent{})
	slog.Debug("Engine stopped", "ticks", e.tick)
}
