package cache

import (
	"sync"
	"time"
)

// Memory is an in-process TTL map. Entries expire after ttl without access
// (every Get or GetOrCreate refreshes them). When full, the least recently
// touched entry is evicted.
type Memory[V any] struct {
	mu      sync.Mutex
	items   map[string]*memoryItem[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	onEvict func(key string, v V)
}

type memoryItem[V any] struct {
	value   V
	touched time.Time
}

// MemoryConfig configures a Memory cache.
type MemoryConfig[V any] struct {
	TTL     time.Duration
	MaxSize int
	// OnEvict runs outside the lock for every entry removed by expiry,
	// eviction, Delete or Clear.
	OnEvict func(key string, v V)
	Now     func() time.Time
}

// NewMemory creates a Memory cache. Zero TTL means 30 minutes, zero MaxSize
// means 10000 entries.
func NewMemory[V any](c MemoryConfig[V]) *Memory[V] {
	if c.TTL == 0 {
		c.TTL = 30 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 10000
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return &Memory[V]{
		items:   make(map[string]*memoryItem[V]),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     c.Now,
		onEvict: c.OnEvict,
	}
}

type evicted[V any] struct {
	key   string
	value V
}

// Get returns the live value for key and refreshes its TTL.
func (m *Memory[V]) Get(key string) (V, bool) {
	var gone []evicted[V]
	m.mu.Lock()
	v, ok := m.getLocked(key, &gone)
	m.mu.Unlock()
	m.notify(gone)
	return v, ok
}

// GetOrCreate returns the live value for key, creating it with create when
// absent or expired. create runs under the cache lock and must not call back
// into the cache.
func (m *Memory[V]) GetOrCreate(key string, create func() V) V {
	var gone []evicted[V]
	m.mu.Lock()
	v, ok := m.getLocked(key, &gone)
	if !ok {
		if len(m.items) >= m.maxSize {
			gone = append(gone, m.evictOldestLocked())
		}
		v = create()
		m.items[key] = &memoryItem[V]{value: v, touched: m.now()}
	}
	m.mu.Unlock()
	m.notify(gone)
	return v
}

// Set stores v under key, replacing any previous value.
func (m *Memory[V]) Set(key string, v V) {
	var gone []evicted[V]
	m.mu.Lock()
	if it, ok := m.items[key]; ok {
		it.value = v
		it.touched = m.now()
	} else {
		if len(m.items) >= m.maxSize {
			gone = append(gone, m.evictOldestLocked())
		}
		m.items[key] = &memoryItem[V]{value: v, touched: m.now()}
	}
	m.mu.Unlock()
	m.notify(gone)
}

// Delete removes key.
func (m *Memory[V]) Delete(key string) {
	var gone []evicted[V]
	m.mu.Lock()
	if it, ok := m.items[key]; ok {
		delete(m.items, key)
		gone = append(gone, evicted[V]{key, it.value})
	}
	m.mu.Unlock()
	m.notify(gone)
}

// Range calls fn for every live entry. fn runs outside the lock.
func (m *Memory[V]) Range(fn func(key string, v V)) {
	m.mu.Lock()
	snapshot := make([]evicted[V], 0, len(m.items))
	for k, it := range m.items {
		snapshot = append(snapshot, evicted[V]{k, it.value})
	}
	m.mu.Unlock()
	for _, e := range snapshot {
		fn(e.key, e.value)
	}
}

// Sweep removes all expired entries and returns how many were removed.
func (m *Memory[V]) Sweep() int {
	var gone []evicted[V]
	m.mu.Lock()
	now := m.now()
	for k, it := range m.items {
		if now.Sub(it.touched) > m.ttl {
			delete(m.items, k)
			gone = append(gone, evicted[V]{k, it.value})
		}
	}
	m.mu.Unlock()
	m.notify(gone)
	return len(gone)
}

// Clear removes every entry.
func (m *Memory[V]) Clear() {
	m.mu.Lock()
	gone := make([]evicted[V], 0, len(m.items))
	for k, it := range m.items {
		gone = append(gone, evicted[V]{k, it.value})
	}
	m.items = make(map[string]*memoryItem[V])
	m.mu.Unlock()
	m.notify(gone)
}

// Len returns the number of entries, expired or not.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) getLocked(key string, gone *[]evicted[V]) (V, bool) {
	var zero V
	it, ok := m.items[key]
	if !ok {
		return zero, false
	}
	now := m.now()
	if now.Sub(it.touched) > m.ttl {
		delete(m.items, key)
		*gone = append(*gone, evicted[V]{key, it.value})
		return zero, false
	}
	it.touched = now
	return it.value, true
}

func (m *Memory[V]) evictOldestLocked() evicted[V] {
	var oldestKey string
	var oldest *memoryItem[V]
	for k, it := range m.items {
		if oldest == nil || it.touched.Before(oldest.touched) {
			oldestKey, oldest = k, it
		}
	}
	delete(m.items, oldestKey)
	return evicted[V]{oldestKey, oldest.value}
}

func (m *Memory[V]) notify(gone []evicted[V]) {
	if m.onEvict == nil {
		return
	}
	for _, e := range gone {
		m.onEvict(e.key, e.value)
	}
}
