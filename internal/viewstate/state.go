// Package viewstate adapts the credential store and the order aggregator
// into observable state for a UI shell.
package viewstate

import "sync"

// State is an observable value. Subscribers always see the latest value;
// intermediate values may be skipped when a subscriber is slow.
type State[T any] struct {
	mu   sync.RWMutex
	v    T
	next int
	subs map[int]chan T
}

func NewState[T any](initial T) *State[T] {
	return &State[T]{v: initial, subs: make(map[int]chan T)}
}

func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

func (s *State[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v = v
	for _, ch := range s.subs {
		replace(ch, v)
	}
}

// Subscribe returns a channel that immediately holds the current value and
// then each new one. cancel closes the channel.
func (s *State[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan T, 1)
	ch <- s.v
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// replace swaps whatever ch buffers for v. Only called with s.mu held, so
// the send never blocks.
func replace[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Events delivers one-shot notifications, such as "order placed", to the
// subscribers present at the time of Emit. Events are dropped for
// subscribers whose buffer is full.
type Events[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]chan T
}

const eventBuffer = 16

func NewEvents[T any]() *Events[T] {
	return &Events[T]{subs: make(map[int]chan T)}
}

func (e *Events[T]) Emit(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

func (e *Events[T]) Subscribe() (<-chan T, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++
	ch := make(chan T, eventBuffer)
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
			close(ch)
		})
	}
}
