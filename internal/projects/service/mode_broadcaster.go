package service

import (
	"sync"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// ModeBroadcaster fans mode transitions out to any number of subscribers.
// Slow subscribers lose intermediate transitions but always keep the latest one.
type ModeBroadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan domain.PersistenceMode
	next   int
	closed bool
}

func NewModeBroadcaster() *ModeBroadcaster {
	return &ModeBroadcaster{subs: make(map[int]chan domain.PersistenceMode)}
}

// Publish has the ModeListener signature so it can be passed to OnModeChange.
func (b *ModeBroadcaster) Publish(mode domain.PersistenceMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- mode:
		default:
			// drop the stale value and keep the newest
			select {
			case <-ch:
			default:
			}
			ch <- mode
		}
	}
}

// Subscribe returns a channel of transitions and a cancel func that closes it.
func (b *ModeBroadcaster) Subscribe() (<-chan domain.PersistenceMode, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.PersistenceMode, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Subscribers reports how many subscriptions are open.
func (b *ModeBroadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Later subscriptions receive an already closed channel.
func (b *ModeBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
