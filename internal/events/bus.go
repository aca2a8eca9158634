// Package events carries hardware press notifications between the live room
// feed and whichever admin views are open, as an in-process
// publish/subscribe channel.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer bounds each subscriber channel. Publish never blocks: a
// notification to a full subscriber is dropped, presses are advisory display
// events and the registry remains the source of truth for press counts.
const subscriberBuffer = 8

// PressEvent is the payload of a hardware press notification.
type PressEvent struct {
	TeamID    string `json:"teamId"`
	TeamName  string `json:"teamName"`
	TeamColor string `json:"teamColor"`
}

// Bus is an in-process press-notification channel. Subscribers receive every
// published event on their own channel until they unsubscribe.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]chan PressEvent
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]chan PressEvent),
	}
}

// Subscribe registers a new subscriber and returns its token and receive
// channel. The caller must Unsubscribe with the token on teardown.
func (b *Bus) Subscribe() (string, <-chan PressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	token := uuid.NewString()
	ch := make(chan PressEvent, subscriberBuffer)
	b.subs[token] = ch
	return token, ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown tokens are
// ignored.
func (b *Bus) Unsubscribe(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[token]; ok {
		delete(b.subs, token)
		close(ch)
	}
}

// Publish delivers an event to every current subscriber without blocking.
func (b *Bus) Publish(ev PressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close tears down all subscribers.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for token, ch := range b.subs {
		delete(b.subs, token)
		close(ch)
	}
}
