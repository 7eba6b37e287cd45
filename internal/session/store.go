// Package session tracks, per visitor, whether sign-in state is still being
// resolved and which user (if any) is signed in.
package session

import (
	"sync"
	"time"

	"liftlog/internal/auth"
	"liftlog/internal/cache"
)

// Source is the authentication state-change stream.
type Source interface {
	Subscribe(fn func(auth.StateChange)) (unsubscribe func())
}

// State is a visitor's session. Loading is true until the first state
// change for the visitor arrives; afterwards User is authoritative.
type State struct {
	Loading bool           `json:"loading"`
	User    *auth.Identity `json:"user"`
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil
}

func (s State) equal(o State) bool {
	if s.Loading != o.Loading {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == nil && o.User == nil
	}
	return *s.User == *o.User
}

// Options configures a Store.
type Options struct {
	// TTL expires idle visitor states. Zero means one hour.
	TTL time.Duration
	// MaxVisitors bounds memory. Zero means 100000.
	MaxVisitors int
	// SweepInterval is how often expired states are dropped. Zero means
	// TTL/2, negative disables the janitor.
	SweepInterval time.Duration
	Now           func() time.Time
}

// Store is the process-wide session provider.
type Store struct {
	states *cache.Memory[State]

	mu          sync.Mutex
	closed      bool
	subs        map[uint64]func(string, State)
	nextID      uint64
	unsubscribe func()

	stop chan struct{}
	done chan struct{}
}

// NewStore subscribes to source and starts tracking visitors.
func NewStore(source Source, opts Options) *Store {
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	if opts.MaxVisitors == 0 {
		opts.MaxVisitors = 100000
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = opts.TTL / 2
	}

	s := &Store{
		states: cache.NewMemory(cache.MemoryConfig[State]{
			TTL:     opts.TTL,
			MaxSize: opts.MaxVisitors,
			Now:     opts.Now,
		}),
		subs: make(map[uint64]func(string, State)),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.unsubscribe = source.Subscribe(s.apply)

	if opts.SweepInterval > 0 {
		go s.janitor(opts.SweepInterval)
	} else {
		close(s.done)
	}
	return s
}

// Get returns the visitor's state; unseen visitors are loading.
func (s *Store) Get(visitor string) State {
	if st, ok := s.states.Get(visitor); ok {
		return st
	}
	return State{Loading: true}
}

// Subscribe registers fn for every effective state change. fn runs on the
// goroutine that delivered the change, after the state is stored.
func (s *Store) Subscribe(fn func(visitor string, st State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Forget drops a visitor's state.
func (s *Store) Forget(visitor string) {
	s.states.Delete(visitor)
}

// Len returns the number of tracked visitors.
func (s *Store) Len() int {
	return s.states.Len()
}

// Close detaches from the source. Changes delivered afterwards are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsubscribe := s.unsubscribe
	s.subs = map[uint64]func(string, State){}
	s.mu.Unlock()

	unsubscribe()
	close(s.stop)
	<-s.done
}

func (s *Store) apply(change auth.StateChange) {
	next := State{Loading: false, User: change.Identity}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if prev, ok := s.states.Get(change.Visitor); ok && prev.equal(next) {
		s.mu.Unlock()
		return
	}
	s.states.Set(change.Visitor, next)
	fns := make([]func(string, State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(change.Visitor, next)
	}
}

func (s *Store) janitor(every time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.states.Sweep()
		}
	}
}
