package event

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

type HandlerFunc func(raw any)

type subscription struct {
	id string
	fn HandlerFunc
}

// Bus dispatches events synchronously, in subscription order, on the
// caller's goroutine. Subscribing is safe from any goroutine; publishing is
// meant for the engine loop only.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]subscription),
	}
}

// Subscribe appends handler to eventName and returns an id for Unsubscribe.
func (b *Bus) Subscribe(eventName string, handler HandlerFunc) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := uuid.NewString()
	b.handlers[eventName] = append(b.handlers[eventName], subscription{id: id, fn: handler})
	return id
}

// Unsubscribe removes the subscription with the given id from every topic.
// It reports whether one was found.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, subs := range b.handlers {
		for i, s := range subs {
			if s.id != id {
				continue
			}
			// Copy so a Publish holding the old slice is unaffected.
			b.handlers[name] = append(append([]subscription{}, subs[:i]...), subs[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Bus) Publish(eventName string, evt any) {
	b.mu.RLock()
	subs := b.handlers[eventName]
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(eventName, s.fn, evt)
	}
}

func (b *Bus) dispatch(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}

// Attach subscribes h to every lifecycle and device topic whose handler
// interface it implements and returns the subscription ids.
func (b *Bus) Attach(h any) []string {
	var ids []string
	if ih, ok := h.(InitHandler); ok {
		ids = append(ids, b.AttachInit(ih))
	}
	if ph, ok := h.(ProcessHandler); ok {
		ids = append(ids, b.AttachProcess(ph))
	}
	if dh, ok := h.(DeinitHandler); ok {
		ids = append(ids, b.AttachDeinit(dh))
	}
	if kh, ok := h.(KeyHandler); ok {
		ids = append(ids, b.AttachKey(kh))
	}
	if jh, ok := h.(JoystickAxisHandler); ok {
		ids = append(ids, b.AttachJoystickAxis(jh))
	}
	return ids
}

// Detach removes subscriptions returned by Attach.
func (b *Bus) Detach(ids []string) {
	for _, id := range ids {
		b.Unsubscribe(id)
	}
}

func (b *Bus) AttachInit(h InitHandler) string {
	return b.Subscribe(TopicInit, func(raw any) {
		if evt, ok := raw.(InitEvent); ok {
			h.OnInit(evt)
		}
	})
}

func (b *Bus) AttachProcess(h ProcessHandler) string {
	return b.Subscribe(TopicProcess, func(raw any) {
		if evt, ok := raw.(ProcessEvent); ok {
			h.OnProcess(evt)
		}
	})
}

func (b *Bus) AttachDeinit(h DeinitHandler) string {
	return b.Subscribe(TopicDeinit, func(raw any) {
		if evt, ok := raw.(DeinitEvent); ok {
			h.OnDeinit(evt)
		}
	})
}

func (b *Bus) AttachKey(h KeyHandler) string {
	return b.Subscribe(TopicKey, func(raw any) {
		if evt, ok := raw.(KeyEvent); ok {
			h.OnKey(evt)
		}
	})
}

func (b *Bus) AttachJoystickAxis(h JoystickAxisHandler) string {
	return b.Subscribe(TopicJoystickAxis, func(raw any) {
		if evt, ok := raw.(JoystickAxisEvent); ok {
			h.OnJoystickAxis(evt)
		}
	})
}

// TopicOf returns the topic a lifecycle or device event is published under.
func TopicOf(evt any) (string, bool) {
	switch evt.(type) {
	case InitEvent:
		return TopicInit, true
	case ProcessEvent:
		return TopicProcess, true
	case DeinitEvent:
		return TopicDeinit, true
	case KeyEvent:
		return TopicKey, true
	case JoystickAxisEvent:
		return TopicJoystickAxis, true
	}
	return "", false
}
