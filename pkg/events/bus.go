package events

import (
	"sync"

	"github.com/icrus-dev/irsplugin/pkg/world"
)

// Subscriber receives events from the bus.
type Subscriber interface {
	Receive(ev Event)
	Closed() bool
}

// Bus is a per-user pub/sub event bus with support for global subscribers.
// The plugin emits structured events; each subscriber (websocket feed,
// audit writer, logger) encodes them its own way.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[world.UserID][]Subscriber
	global      []Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[world.UserID][]Subscriber),
	}
}

// Subscribe registers a subscriber for a specific user's events.
func (b *Bus) Subscribe(user world.UserID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[user] = append(b.subscribers[user], sub)
}

// Unsubscribe removes a subscriber for a specific user.
func (b *Bus) Unsubscribe(user world.UserID, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subscribers[user]
	for i, s := range subs {
		if s == sub {
			b.subscribers[user] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[user]) == 0 {
		delete(b.subscribers, user)
	}
}

// SubscribeGlobal registers a subscriber that receives all events.
func (b *Bus) SubscribeGlobal(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, sub)
}

// Emit sends an event to the subscribers of ev.User and to all global
// subscribers.
func (b *Bus) Emit(ev Event) {
	b.mu.RLock()
	subs := b.subscribers[ev.User]
	globals := b.global
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
	for _, s := range globals {
		if !s.Closed() {
			s.Receive(ev)
		}
	}
}

// EmitToUser sends an event to a specific user (overriding ev.User).
func (b *Bus) EmitToUser(user world.UserID, ev Event) {
	ev.User = user
	b.Emit(ev)
}

// UserSubscribers returns the number of subscribers for a user.
func (b *Bus) UserSubscribers(user world.UserID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[user])
}

// Cleanup removes closed subscribers from all lists.
func (b *Bus) Cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for user, subs := range b.subscribers {
		var active []Subscriber
		for _, s := range subs {
			if !s.Closed() {
				active = append(active, s)
			}
		}
		if len(active) == 0 {
			delete(b.subscribers, user)
		} else {
			b.subscribers[user] = active
		}
	}

	var activeGlobal []Subscriber
	for _, s := range b.global {
		if !s.Closed() {
			activeGlobal = append(activeGlobal, s)
		}
	}
	b.global = activeGlobal
}
