// Package session coordinates components of one exploration run.
package session

import (
	"sync"

	"gapscope/internal/model"
)

// TypeChange announces a confirmed data-type edit so every open feature
// table resyncs from the same trigger.
type TypeChange struct {
	Feature  string
	DataType model.DataType
}

// Bus is a small publish-subscribe channel for cross-table resync.
// Subscribers register explicitly and must release their subscription
// when they tear down.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan TypeChange
	next int
}

// NewBus builds an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]chan TypeChange{}}
}

// Subscribe registers a listener and returns its channel plus a release
// function. The channel is buffered; a slow listener drops signals rather
// than blocking the publisher.
func (b *Bus) Subscribe() (<-chan TypeChange, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan TypeChange, 8)
	b.subs[id] = ch
	release := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
	}
	return ch, release
}

// Publish delivers the change to every current subscriber.
func (b *Bus) Publish(change TypeChange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
