// Package bus provides the in-process event bus every widget component hangs
// off, plus the cross-instance change feed that replays remote store writes
// as local events. The bus is an explicitly constructed instance owned by the
// composition root and passed to consumers; there is no package-level state.
package bus

import "sync"

type Handler func(event string)

// Subscription identifies one registered handler for later removal.
type Subscription struct {
	event string
	id    uint64
}

type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string]map[uint64]Handler)}
}

func (b *Bus) Subscribe(event string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	if b.handlers[event] == nil {
		b.handlers[event] = make(map[uint64]Handler)
	}
	b.handlers[event][b.nextID] = h
	return Subscription{event: event, id: b.nextID}
}

func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hs, ok := b.handlers[sub.event]; ok {
		delete(hs, sub.id)
		if len(hs) == 0 {
			delete(b.handlers, sub.event)
		}
	}
}

// Emit invokes every subscriber synchronously in the caller's goroutine, so
// in-process subscribers always observe post-write store state. No events are
// queued or replayed for late subscribers; a component subscribing after a
// change must re-fetch current store state first.
func (b *Bus) Emit(event string) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.handlers[event]))
	for _, h := range b.handlers[event] {
		hs = append(hs, h)
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(event)
	}
}
