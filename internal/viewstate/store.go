// Package viewstate keeps the last good result of each dashboard view so a
// slow, superseded fetch can never overwrite a newer one.
package viewstate

import (
	"strings"
	"sync"
	"time"
)

// Snapshot is the state a view would display.
type Snapshot[T any] struct {
	Data      T
	Loaded    bool
	Seq       uint64
	UpdatedAt time.Time
	// Err is the most recent failure since the last successful load.
	Err error
}

// Store guards one view. Begin issues a sequence number for a fetch; only the
// most recently issued number may commit or fail.
type Store[T any] struct {
	mu      sync.Mutex
	issued  uint64
	current Snapshot[T]
}

func (s *Store[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit stores data if seq is still the latest fetch. It reports whether
// the result was kept.
func (s *Store[T]) Commit(seq uint64, data T, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued {
		return false
	}
	s.current = Snapshot[T]{Data: data, Loaded: true, Seq: seq, UpdatedAt: at}
	return true
}

// Fail records err for the latest fetch and keeps the previous data.
func (s *Store[T]) Fail(seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued {
		return false
	}
	s.current.Err = err
	return true
}

func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Registry holds one Store per session and view.
type Registry[T any] struct {
	mu     sync.Mutex
	stores map[string]*Store[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{stores: make(map[string]*Store[T])}
}

func (r *Registry[T]) Store(session, view string) *Store[T] {
	key := session + "|" + view
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[key]
	if !ok {
		s = &Store[T]{}
		r.stores[key] = s
	}
	return s
}

// Forget drops every view of a session, used on logout or expiry.
func (r *Registry[T]) Forget(session string) {
	prefix := session + "|"
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.stores {
		if strings.HasPrefix(key, prefix) {
			delete(r.stores, key)
		}
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
