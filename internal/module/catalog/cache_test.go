package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
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

func TestCache_SetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("k", "v")
	v, ok := c.Get("k")

	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCache_Miss(t *testing.T) {
	c := NewCache(time.Minute)

	v, ok := c.Get("missing")

	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestCache_EmptyValueIsHit(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("empty", &MangaList{Data: []Manga{}})
	c.Set("nil", nil)

	v, ok := c.Get("empty")
	require.True(t, ok)
	assert.Empty(t, v.(*MangaList).Data)

	_, ok = c.Get("nil")
	assert.True(t, ok)
}

func TestCache_Overwrite(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(10*time.Second, WithClock(clock.Now))

	c.Set("k", 1)
	clock.Advance(8 * time.Second)
	c.Set("k", 2)
	clock.Advance(8 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ExpiryEvicts(t *testing.T) {
	clock := newFakeClock()
	var evicted []string
	c := NewCache(time.Minute,
		WithClock(clock.Now),
		WithEvictHook(func(key string) { evicted = append(evicted, key) }),
	)

	c.Set("k", "v")
	clock.Advance(time.Minute + time.Millisecond)

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []string{"k"}, evicted)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestCache_ExpiryBoundaryIsInclusive(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(time.Minute, WithClock(clock.Now))

	c.Set("k", "v")
	clock.Advance(time.Minute)

	_, ok := c.Get("k")
	assert.True(t, ok)
}

func TestCache_TTLScenario(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(300*time.Second, WithClock(clock.Now))
	value := &MangaList{Data: []Manga{{ID: "a"}}}

	c.Set("search_{}", value)

	clock.Advance(299 * time.Second)
	v, ok := c.Get("search_{}")
	require.True(t, ok)
	assert.Same(t, value, v)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("search_{}")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(time.Minute)
	keys := []string{"a", "b", "c"}
	for _, k := range keys {
		c.Set(k, k)
	}

	c.Clear()

	assert.Equal(t, 0, c.Len())
	for _, k := range keys {
		_, ok := c.Get(k)
		assert.False(t, ok, k)
	}
}

func TestCache_Stats(t *testing.T) {
	c := NewCache(300 * time.Second)
	c.Set("a", 1)

	c.Get("a")
	c.Get("a")
	c.Get("b")

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 300, stats.TTLSeconds)
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 300*time.Second, c.TTL())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(time.Second, WithClock(clock.Now))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			c.Set("k", 1)
		}()
		go func() {
			defer wg.Done()
			c.Get("k")
		}()
		go func() {
			defer wg.Done()
			clock.Advance(100 * time.Millisecond)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 1)
}
