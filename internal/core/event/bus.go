package event

import (
	"reflect"
	"sync"
)

// Bus delivers typed events to subscribers. Publish dispatches immediately;
// Emit queues an event until the next Flush. Queued events are delivered in
// emission order regardless of type.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	queue    []queued
	handlers map[reflect.Type][]any
}

type queued struct {
	t  reflect.Type
	ev any
}

func NewBus() *Bus {
	return &Bus{
		queue:    make([]queued, 0, 32),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish delivers event to every handler of T before returning.
func Publish[T any](b *Bus, event T) {
	for _, h := range b.handlers[typeKey[T]()] {
		h.(func(T))(event)
	}
}

// Emit queues an event for the next Flush.
func Emit[T any](b *Bus, event T) {
	b.queue = append(b.queue, queued{t: typeKey[T](), ev: event})
}

// Pending returns the number of queued events.
func (b *Bus) Pending() int {
	return len(b.queue)
}

// Flush delivers queued events. Events emitted by handlers during the flush are
// delivered in the same flush.
func (b *Bus) Flush() {
	for i := 0; i < len(b.queue); i++ {
		q := b.queue[i]
		for _, h := range b.handlers[q.t] {
			callHandler(h, q.ev)
		}
	}
	b.queue = b.queue[:0]
}

// Drop discards queued events without delivering them.
func (b *Bus) Drop() {
	b.queue = b.queue[:0]
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
