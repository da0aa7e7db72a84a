// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package events provides the console's in-process broadcast registry,
// feeding the server-sent-events stream that keeps browser sessions
// informed of imports and connection changes.
//
// The Broker is an explicitly owned object with a lifecycle: created at
// startup, closed at shutdown. Subscribers are registered channels;
// publishing never blocks, a subscriber that cannot keep up loses events
// rather than stalling the publisher.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Event is one broadcast message.
type Event struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// Event types published by the console.
const (
	TypeConnected    = "connected"
	TypeDisconnected = "disconnected"
	TypeImportStart  = "import-start"
	TypeImportBatch  = "import-batch"
	TypeImportDone   = "import-done"
	TypeCacheCleared = "cache-cleared"
)

// subscriberBuffer is how many undelivered events a subscriber may hold
// before it starts losing them.
const subscriberBuffer = 16

// Broker fans events out to subscribers. Safe for concurrent use.
type Broker struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
	logger      *slog.Logger
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
		logger:      slog.Default().With("component", "event-broker"),
	}
}

// Subscribe registers a new subscriber and returns its channel. The
// channel is closed by Unsubscribe or by Close. After Close, Subscribe
// returns an already-closed channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown
// channels are ignored.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; !ok {
		return
	}
	delete(b.subscribers, ch)
	close(ch)
}

// Publish delivers an event to every subscriber without blocking. A full
// subscriber buffer drops the event for that subscriber only.
func (b *Broker) Publish(eventType string, data any) {
	event := Event{Type: eventType, Data: data, At: time.Now()}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.logger.Debug("subscriber buffer full, dropping event", "type", eventType)
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel and rejects further use.
// Idempotent.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}
