// Copyright 2026 The Caddy Fleet Controller Authors
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

// Package events provides an event bus for component coordination in the
// fleet controller.
//
// Components publish fire-and-forget events (instance lifecycle, probe
// outcomes, bulk operation progress) and observers such as the metrics
// collector subscribe to them.
package events

import (
	"sync"
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// EventType returns a unique identifier for this event type.
	// Convention: dot-notation like "instance.probed" or "bulk.completed"
	EventType() string

	// Timestamp returns when this event occurred.
	Timestamp() time.Time
}

// EventBus provides centralized pub/sub coordination for controller
// components. It is safe for concurrent use.
//
// Startup coordination: events published before Start() is called are
// buffered and replayed after Start(). This prevents events from being lost
// while components are still wiring up their subscriptions.
type EventBus struct {
	subscribers []chan Event
	mu          sync.RWMutex

	started        bool
	startMu        sync.Mutex
	preStartBuffer []Event
}

// NewEventBus creates a new EventBus.
//
// The bus starts in buffering mode. The capacity parameter sets the initial
// buffer size for pre-start events; 100 is a reasonable default.
func NewEventBus(capacity int) *EventBus {
	return &EventBus{
		subscribers:    make([]chan Event, 0),
		preStartBuffer: make([]Event, 0, capacity),
	}
}

// Publish sends an event to all subscribers.
//
// Before Start() the event is buffered for replay. After Start() this is
// non-blocking: if a subscriber's channel is full the event is dropped for
// that subscriber so slow consumers cannot stall publishers.
//
// Returns the number of subscribers that received the event, or 0 when the
// event was buffered.
func (b *EventBus) Publish(event Event) int {
	b.startMu.Lock()
	if !b.started {
		b.preStartBuffer = append(b.preStartBuffer, event)
		b.startMu.Unlock()
		return 0
	}
	b.startMu.Unlock()

	b.mu.RLock()
	defer b.mu.RUnlock()

	sent := 0
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
			sent++
		default:
			// Channel full, subscriber is lagging - drop event
		}
	}
	return sent
}

// Subscribe creates a new subscription to the event bus.
//
// The returned channel receives all events published after subscription
// (plus any buffered pre-start events once Start() runs). Subscribers must
// keep reading to avoid dropped events; a bufferSize of 100 suits most
// consumers. The channel is never closed.
func (b *EventBus) Subscribe(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Start releases all buffered events and switches the bus to normal
// operation. Call it once every component has subscribed. Idempotent and
// safe to call concurrently with Publish() and Subscribe().
func (b *EventBus) Start() {
	b.startMu.Lock()
	defer b.startMu.Unlock()

	if b.started {
		return
	}
	b.started = true

	if len(b.preStartBuffer) == 0 {
		return
	}

	b.mu.RLock()
	subscribers := b.subscribers
	b.mu.RUnlock()

	for _, event := range b.preStartBuffer {
		for _, ch := range subscribers {
			select {
			case ch <- event:
			default:
				// Channel full - drop, same as normal Publish
			}
		}
	}

	b.preStartBuffer = nil
}
