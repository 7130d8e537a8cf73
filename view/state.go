// Package view holds the state-publishing primitive shared by all adapters.
// Each adapter owns one State value, republishes it whenever a backend
// snapshot arrives, and lets the presentation layer read the latest value or
// watch for changes. Publishing is last-write-wins: a superseded in-flight
// result simply overwrites the current value.
package view

import "sync"

// State is the published value of a single adapter.
type State[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[int]chan T
	next int
}

// NewState returns a State initialised to the given value.
func NewState[T any](initial T) *State[T] {
	return &State[T]{cur: initial, subs: make(map[int]chan T)}
}

// Current returns the most recently published value.
func (s *State[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Publish replaces the current value and notifies every watcher. A watcher
// that has not drained its channel loses intermediate values, keeping only
// the latest, which matches the whole-snapshot republish model.
func (s *State[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = v
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Watch registers a watcher. The returned cancel func deregisters it; callers
// must cancel when done or the channel leaks.
func (s *State[T]) Watch() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	ch := make(chan T, 1)
	s.subs[id] = ch
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
