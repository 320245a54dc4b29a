// Package event provides a small synchronous publish/subscribe emitter.
//
// The emitter delivers payloads to handlers on the emitting goroutine, in
// subscription order. Handler panics are recovered and counted so a single
// misbehaving subscriber cannot take down the publisher.
package event

import (
	"sync"
	"sync/atomic"
)

// Topic identifies an event stream.
type Topic string

// Handler receives event payloads for a topic.
type Handler func(payload any)

// Subscription represents an active handler registration.
type Subscription struct {
	id      uint64
	topic   Topic
	emitter *Emitter
}

// Unsubscribe removes this subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s.emitter != nil {
		s.emitter.unsubscribe(s.topic, s.id)
	}
}

// Stats reports emitter counters.
type Stats struct {
	Emitted       uint64
	Delivered     uint64
	HandlerPanics uint64
}

type registration struct {
	id      uint64
	handler Handler
	once    bool
}

// Emitter routes payloads from Emit to topic subscribers.
// The zero value is not usable; create with New.
type Emitter struct {
	mu     sync.RWMutex
	subs   map[Topic][]registration
	nextID uint64

	emitted       atomic.Uint64
	delivered     atomic.Uint64
	handlerPanics atomic.Uint64
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{subs: make(map[Topic][]registration)}
}

// Subscribe registers a handler for a topic.
func (e *Emitter) Subscribe(topic Topic, h Handler) *Subscription {
	return e.subscribe(topic, h, false)
}

// Once registers a handler removed automatically after its first delivery.
func (e *Emitter) Once(topic Topic, h Handler) *Subscription {
	return e.subscribe(topic, h, true)
}

func (e *Emitter) subscribe(topic Topic, h Handler, once bool) *Subscription {
	if h == nil {
		return &Subscription{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	e.subs[topic] = append(e.subs[topic], registration{id: id, handler: h, once: once})
	return &Subscription{id: id, topic: topic, emitter: e}
}

func (e *Emitter) unsubscribe(topic Topic, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	regs := e.subs[topic]
	for i, r := range regs {
		if r.id == id {
			e.subs[topic] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Emit delivers payload to every subscriber of topic, synchronously and in
// subscription order. A panicking handler is recovered and counted; later
// handlers still run.
func (e *Emitter) Emit(topic Topic, payload any) {
	e.mu.RLock()
	regs := make([]registration, len(e.subs[topic]))
	copy(regs, e.subs[topic])
	e.mu.RUnlock()

	e.emitted.Add(1)
	for _, r := range regs {
		e.deliver(r.handler, payload)
		if r.once {
			e.unsubscribe(topic, r.id)
		}
	}
}

func (e *Emitter) deliver(h Handler, payload any) {
	defer func() {
		if recover() != nil {
			e.handlerPanics.Add(1)
		}
	}()
	h(payload)
	e.delivered.Add(1)
}

// SubscriberCount returns the number of active subscriptions for topic.
func (e *Emitter) SubscriberCount(topic Topic) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[topic])
}

// Stats returns current counters.
func (e *Emitter) Stats() Stats {
	return Stats{
		Emitted:       e.emitted.Load(),
		Delivered:     e.delivered.Load(),
		HandlerPanics: e.handlerPanics.Load(),
	}
}
