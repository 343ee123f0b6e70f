package bus

import (
	"strings"
	"sync"
)

// Bus is an in-process publish/subscribe event bus. Subscribers match
// events either by namespace prefix or by exact kind.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	pattern string
	exact   bool
	ch      chan Event
}

func (s *subscription) matches(kind string) bool {
	if s.exact {
		return kind == s.pattern
	}
	return strings.HasPrefix(kind, s.pattern)
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
	}
}

// Publish sends an event to every matching subscriber.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if sub.matches(evt.Kind) {
			select {
			case sub.ch <- evt:
			default:
				// Drop event if subscriber is full (non-blocking).
			}
		}
	}
}

// Subscribe returns a channel that receives events whose kind starts with
// namespace. The returned func unsubscribes and closes the channel.
func (b *Bus) Subscribe(namespace string, bufSize int) (<-chan Event, func()) {
	return b.add(&subscription{pattern: namespace, ch: make(chan Event, bufSize)})
}

// SubscribeExact is like Subscribe but only delivers events whose kind
// equals kind.
func (b *Bus) SubscribeExact(kind string, bufSize int) (<-chan Event, func()) {
	return b.add(&subscription{pattern: kind, exact: true, ch: make(chan Event, bufSize)})
}

func (b *Bus) subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) add(sub *subscription) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(sub.ch)
			b.mu.Unlock()
		})
	}
}
