// Package events provides the string-keyed notification source that scenes
// use to announce their lifecycle.
//
// Listeners are called synchronously on the emitting goroutine, in the order
// they subscribed. A listener registered with Once is removed before it is
// called, so it fires at most once even if it re-emits the same event.
package events

import (
	"sync"
)

// Listener receives the arguments passed to Emit.
type Listener func(args ...interface{})

// Subscription identifies one registered listener. Closures are not
// comparable, so removal goes through the handle rather than the function.
type Subscription struct {
	emitter *Emitter
	event   string
	id      uint64
}

// Event returns the event name the subscription is bound to.
func (s Subscription) Event() string { return s.event }

// Valid reports whether the handle came from a successful subscribe call.
func (s Subscription) Valid() bool { return s.emitter != nil && s.id != 0 }

// Unsubscribe removes the listener. It returns false when the listener was
// already removed, has fired as a once-listener, or the handle is invalid.
func (s Subscription) Unsubscribe() bool {
	if !s.Valid() {
		return false
	}
	return s.emitter.Off(s)
}

type entry struct {
	id   uint64
	fn   Listener
	once bool
}

// Emitter is a thread-safe publish/subscribe hub keyed by event name.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*entry
	// order keeps event names in first-subscription order for EventNames.
	order     []string
	nextID    uint64
	destroyed bool
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{listeners: make(map[string][]*entry)}
}

// On subscribes fn to every future emission of event.
func (e *Emitter) On(event string, fn Listener) Subscription {
	return e.add(event, fn, false)
}

// Once subscribes fn to the next emission of event only.
func (e *Emitter) Once(event string, fn Listener) Subscription {
	return e.add(event, fn, true)
}

func (e *Emitter) add(event string, fn Listener, once bool) Subscription {
	if fn == nil {
		return Subscription{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return Subscription{}
	}

	e.nextID++
	if _, ok := e.listeners[event]; !ok {
		e.order = append(e.order, event)
	}
	e.listeners[event] = append(e.listeners[event], &entry{id: e.nextID, fn: fn, once: once})
	return Subscription{emitter: e, event: event, id: e.nextID}
}

// Off removes the listener behind sub.
func (e *Emitter) Off(sub Subscription) bool {
	if sub.emitter != e || sub.id == 0 {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.removeLocked(sub.event, sub.id)
}

func (e *Emitter) removeLocked(event string, id uint64) bool {
	entries := e.listeners[event]
	for i, en := range entries {
		if en.id != id {
			continue
		}
		rest := make([]*entry, 0, len(entries)-1)
		rest = append(rest, entries[:i]...)
		rest = append(rest, entries[i+1:]...)
		e.setLocked(event, rest)
		return true
	}
	return false
}

func (e *Emitter) setLocked(event string, entries []*entry) {
	if len(entries) > 0 {
		e.listeners[event] = entries
		return
	}
	delete(e.listeners, event)
	for i, name := range e.order {
		if name == event {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}
}

// Emit calls every listener of event with args and reports whether there
// was at least one. The listener set is captured before the first call:
// listeners added during the emit wait for the next one.
func (e *Emitter) Emit(event string, args ...interface{}) bool {
	e.mu.Lock()
	entries := e.listeners[event]
	if len(entries) == 0 {
		e.mu.Unlock()
		return false
	}

	snapshot := make([]*entry, len(entries))
	copy(snapshot, entries)

	kept := entries[:0:0]
	for _, en := range entries {
		if !en.once {
			kept = append(kept, en)
		}
	}
	if len(kept) != len(entries) {
		e.setLocked(event, kept)
	}
	e.mu.Unlock()

	for _, en := range snapshot {
		en.fn(args...)
	}
	return true
}

// ListenerCount returns the number of listeners subscribed to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners[event])
}

// EventNames returns the events that currently have listeners.
func (e *Emitter) EventNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]string, len(e.order))
	copy(result, e.order)
	return result
}

// RemoveAllListeners drops the listeners of the named events, or of every
// event when none are named.
func (e *Emitter) RemoveAllListeners(events ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(events) == 0 {
		e.listeners = make(map[string][]*entry)
		e.order = nil
		return
	}
	for _, event := range events {
		if _, ok := e.listeners[event]; ok {
			e.setLocked(event, nil)
		}
	}
}

// Shutdown removes every listener. The emitter remains usable.
func (e *Emitter) Shutdown() {
	e.RemoveAllListeners()
}

// Destroy removes every listener and rejects further subscriptions.
func (e *Emitter) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners = make(map[string][]*entry)
	e.order = nil
	e.destroyed = true
}

// Destroyed reports whether Destroy has been called.
func (e *Emitter) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}
