// Package authstate publishes session presence to its subscribers.
package authstate

import (
	"slices"
	"sync"
	"time"
)

// State is what subscribers observe; a zero UserID means signed out.
type State struct {
	UserID    int
	Email     string
	SessionID string
	ExpiresAt time.Time
}

func (s State) SignedIn() bool {
	return s.UserID != 0
}

type Subject struct {
	// deliver serializes publishing, so subscribers see states in the order they were stored
	deliver sync.Mutex

	mu      sync.Mutex
	current State
	nextID  int
	subs    map[int]func(State)
}

func NewSubject() *Subject {
	return &Subject{subs: map[int]func(State){}}
}

// Subscribe calls fn with the current state right away and on every Publish.
// The returned func unsubscribes; calling it twice is harmless.
func (s *Subject) Subscribe(fn func(State)) func() {
	s.deliver.Lock()
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(current)
	s.deliver.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Publish stores st and delivers it to subscribers in subscription order.
// Concurrent publishes are delivered one at a time, in the order they were stored.
// Subscribers must not call Publish or Subscribe.
func (s *Subject) Publish(st State) {
	s.deliver.Lock()
	defer s.deliver.Unlock()
	s.mu.Lock()
	s.current = st
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(State), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Subject) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Subject) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
