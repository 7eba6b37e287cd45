// Package scope runs one keyed asynchronous task at a time and discards
// results that arrive after the key has changed or the scope was closed.
package scope

import (
	"context"
	"sync"
)

// Result is the outcome of the task for Key. Done is false while it runs.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
	Done  bool
}

// Scope owns at most one live task. Starting a task for a new key cancels
// the previous one; a result is stored only while its generation is current.
type Scope[T any] struct {
	mu      sync.Mutex
	gen     uint64
	active  bool
	closed  bool
	cancel  context.CancelFunc
	result  Result[T]
	settled chan struct{}
}

// New returns an idle scope.
func New[T any]() *Scope[T] {
	settled := make(chan struct{})
	close(settled)
	return &Scope[T]{result: Result[T]{Done: true}, settled: settled}
}

// Run starts fn for key unless a task for the same key is running or has
// succeeded. A key whose task failed runs again. The task's context derives
// from parent and is cancelled when the key changes, Clear runs or the scope
// closes. Run reports whether it started fn.
func (s *Scope[T]) Run(parent context.Context, key string, fn func(ctx context.Context) (T, error)) bool {
	s.mu.Lock()
	failed := s.result.Done && s.result.Err != nil
	if s.closed || (s.active && s.result.Key == key && !failed) {
		s.mu.Unlock()
		return false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(parent)
	settled := make(chan struct{})
	s.cancel = cancel
	s.active = true
	s.result = Result[T]{Key: key}
	s.settled = settled
	s.mu.Unlock()

	go func() {
		defer close(settled)
		defer cancel()
		v, err := fn(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.gen != gen {
			return
		}
		s.result = Result[T]{Key: key, Value: v, Err: err, Done: true}
	}()
	return true
}

// Clear cancels the active task and leaves the scope idle with no key.
func (s *Scope[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.active = false
	s.result = Result[T]{Done: true}
	settled := make(chan struct{})
	close(settled)
	s.settled = settled
}

// Snapshot returns the current result without blocking.
func (s *Scope[T]) Snapshot() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Wait blocks until the current task settles or ctx ends, then returns the
// current result. A key change while waiting moves the wait to the new task.
func (s *Scope[T]) Wait(ctx context.Context) (Result[T], error) {
	for {
		s.mu.Lock()
		if s.result.Done || s.closed {
			r := s.result
			s.mu.Unlock()
			return r, nil
		}
		settled := s.settled
		s.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		}
	}
}

// Close cancels the active task. Results arriving afterwards are dropped.
func (s *Scope[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
}
