package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemory_ExpiresIdleEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var evictedKeys []string
	m := NewMemory(MemoryConfig[int]{
		TTL:     time.Minute,
		Now:     clock.Now,
		OnEvict: func(key string, _ int) { evictedKeys = append(evictedKeys, key) },
	})

	assert.Equal(t, 1, m.GetOrCreate("a", func() int { return 1 }))
	clock.Advance(50 * time.Second)

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Get refreshed the entry.
	clock.Advance(50 * time.Second)
	_, ok = m.Get("a")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, []string{"a"}, evictedKeys)
}

func TestMemory_GetOrCreateKeepsExisting(t *testing.T) {
	m := NewMemory(MemoryConfig[string]{})

	assert.Equal(t, "first", m.GetOrCreate("k", func() string { return "first" }))
	assert.Equal(t, "first", m.GetOrCreate("k", func() string { return "second" }))
}

func TestMemory_EvictsLeastRecentlyTouched(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(MemoryConfig[int]{MaxSize: 2, Now: clock.Now})

	m.GetOrCreate("a", func() int { return 1 })
	clock.Advance(time.Second)
	m.GetOrCreate("b", func() int { return 2 })
	clock.Advance(time.Second)
	m.Get("a")
	clock.Advance(time.Second)
	m.GetOrCreate("c", func() int { return 3 })

	_, okA := m.Get("a")
	_, okB := m.Get("b")
	_, okC := m.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
}

func TestMemory_ClearNotifiesEveryEntry(t *testing.T) {
	seen := map[string]int{}
	m := NewMemory(MemoryConfig[int]{OnEvict: func(k string, v int) { seen[k] = v }})
	m.GetOrCreate("a", func() int { return 1 })
	m.GetOrCreate("b", func() int { return 2 })
	m.Delete("a")
	m.Clear()

	assert.Equal(t, map[string]int{"a": 1, "b": 2}, seen)
	assert.Equal(t, 0, m.Len())
}
