// Package broker fans out change notifications to the subscribers of a key,
// such as the owner of the orders that changed.
//
// Notifications carry no payload: a subscriber re-reads whatever it shows.
// Each subscription has a one-slot buffer, so bursts of writes coalesce into
// a single pending notification and Publish never blocks.
package broker

import "sync"

type subscription[K comparable] struct {
	key K
	ch  chan struct{}
}

// Broker is safe for concurrent use. The zero value is not usable; call New.
type Broker[K comparable] struct {
	mu   sync.Mutex
	next uint64
	subs map[uint64]*subscription[K]
}

func New[K comparable]() *Broker[K] {
	return &Broker[K]{subs: make(map[uint64]*subscription[K])}
}

// Subscribe registers interest in key. The returned cancel func removes the
// subscription and closes the channel; calling it twice is fine.
func (b *Broker[K]) Subscribe(key K) (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	sub := &subscription[K]{key: key, ch: make(chan struct{}, 1)}
	b.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish notifies every subscriber of key.
func (b *Broker[K]) Publish(key K) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.key != key {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Broker[K]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
