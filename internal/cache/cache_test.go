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

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestTTL_GetSet(t *testing.T) {
	clock := newClock()
	c := New[string, int](time.Minute, 0).WithClock(clock.Now)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTTL_Expiry(t *testing.T) {
	clock := newClock()
	c := New[string, int](time.Minute, 0).WithClock(clock.Now)

	c.Set("a", 1)
	clock.Advance(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_ZeroTTLDisablesCaching(t *testing.T) {
	c := New[string, int](0, 10)
	c.Set("a", 1)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTL_EvictsOldestWhenFull(t *testing.T) {
	clock := newClock()
	c := New[string, int](time.Hour, 2).WithClock(clock.Now)

	c.Set("a", 1)
	clock.Advance(time.Second)
	c.Set("b", 2)
	clock.Advance(time.Second)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)

	// Overwriting an existing key never evicts.
	c.Set("b", 20)
	assert.Equal(t, 2, c.Len())
}

func TestTTL_EvictsExpiredBeforeOldest(t *testing.T) {
	clock := newClock()
	c := New[string, int](time.Minute, 2).WithClock(clock.Now)

	c.Set("a", 1)
	clock.Advance(30 * time.Second)
	c.Set("b", 2)
	clock.Advance(45 * time.Second) // a expired, b alive
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestTTL_Invalidate(t *testing.T) {
	c := New[string, int](time.Minute, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.InvalidateAll()
	assert.Equal(t, 0, c.Len())
}

func TestTTL_Concurrent(t *testing.T) {
	c := New[int, int](time.Minute, 50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set(base*100+j, j)
				c.Get(base*100 + j)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}
