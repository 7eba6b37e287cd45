package app

import (
	"context"
	"sync"
	"time"

	"liftlog/internal/cache"
	"liftlog/internal/observability"
	"liftlog/internal/session"
)

// Sessions is the session provider as seen by the registry.
type Sessions interface {
	Get(visitor string) session.State
	Subscribe(fn func(visitor string, st session.State)) (unsubscribe func())
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// TTL expires idle visitors. Zero means one hour.
	TTL time.Duration
	// MaxVisitors bounds memory. Zero means 100000.
	MaxVisitors int
	// SweepInterval defaults to TTL/2; negative disables the janitor.
	SweepInterval time.Duration
	Now           func() time.Time
}

// Registry owns every live Visitor and keeps their profile loads in step
// with the session provider.
type Registry struct {
	visitors *cache.Memory[*Visitor]
	sessions Sessions
	profiles ProfileStore

	bg     context.Context
	cancel context.CancelFunc
	unsub  func()

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewRegistry creates a registry and subscribes it to sessions.
func NewRegistry(sessions Sessions, profiles ProfileStore, opts RegistryOptions) *Registry {
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	if opts.MaxVisitors == 0 {
		opts.MaxVisitors = 100000
	}
	if opts.SweepInterval == 0 {
		opts.SweepInterval = opts.TTL / 2
	}

	bg, cancel := context.WithCancel(context.Background())
	r := &Registry{
		sessions: sessions,
		profiles: profiles,
		bg:       bg,
		cancel:   cancel,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	r.visitors = cache.NewMemory(cache.MemoryConfig[*Visitor]{
		TTL:     opts.TTL,
		MaxSize: opts.MaxVisitors,
		Now:     opts.Now,
		OnEvict: func(_ string, v *Visitor) {
			v.close()
			observability.ActiveVisitors.Dec()
		},
	})
	r.unsub = sessions.Subscribe(r.onSession)

	if opts.SweepInterval > 0 {
		go r.janitor(opts.SweepInterval)
	} else {
		close(r.done)
	}
	return r
}

// Visitor returns the state for id, creating it on first use.
func (r *Registry) Visitor(id string) *Visitor {
	created := false
	v := r.visitors.GetOrCreate(id, func() *Visitor {
		created = true
		return newVisitor(r.bg, id, r.profiles)
	})
	if created {
		observability.ActiveVisitors.Inc()
		if st := r.sessions.Get(id); st.User != nil {
			v.SyncUser(st.User.UserID)
		}
	}
	return v
}

// Lookup returns the visitor without creating or refreshing it.
func (r *Registry) Lookup(id string) (*Visitor, bool) {
	return r.visitors.Get(id)
}

// Len returns the number of live visitors.
func (r *Registry) Len() int {
	return r.visitors.Len()
}

func (r *Registry) onSession(visitor string, st session.State) {
	v, ok := r.visitors.Get(visitor)
	if !ok {
		return
	}
	if st.User == nil {
		v.SyncUser("")
		return
	}
	v.SyncUser(st.User.UserID)
}

// Close unsubscribes, cancels running profile loads and drops every
// visitor after their background writes finish.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		r.unsub()
		close(r.stop)
		<-r.done

		var all []*Visitor
		r.visitors.Range(func(_ string, v *Visitor) { all = append(all, v) })
		for _, v := range all {
			v.wait()
		}
		r.cancel()
		r.visitors.Clear()
	})
}

func (r *Registry) janitor(every time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.visitors.Sweep()
		}
	}
}
