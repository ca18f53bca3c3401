package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestMemory[V any](t *testing.T, opts Options) (*Memory[V], *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory[V](opts)
	m.now = clock.Now
	t.Cleanup(m.Close)
	return m, clock
}

type record struct {
	ID    string
	Value float64
}

func TestMemory_SetThenGet(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemory[record](t, Options{TTL: time.Minute})
	ctx := context.Background()

	want := record{ID: "abc", Value: 12.5}
	m.Set(ctx, "k", want)

	got, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestMemory_Miss(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemory[string](t, Options{})
	_, ok := m.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemory[string](t, Options{TTL: time.Minute})
	ctx := context.Background()

	m.Set(ctx, "k", "v")
	clock.Advance(59 * time.Second)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemory_OverwriteReplacesWholesale(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemory[record](t, Options{TTL: time.Minute})
	ctx := context.Background()

	m.Set(ctx, "k", record{ID: "first", Value: 1})
	clock.Advance(50 * time.Second)
	m.Set(ctx, "k", record{ID: "second"})
	clock.Advance(50 * time.Second)

	got, ok := m.Get(ctx, "k")
	require.True(t, ok, "overwrite refreshes TTL")
	assert.Equal(t, record{ID: "second"}, got)
}

func TestMemory_Delete(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemory[string](t, Options{})
	ctx := context.Background()

	m.Set(ctx, "k", "v")
	m.Delete(ctx, "k")
	m.Delete(ctx, "never-set")

	_, ok := m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMemory_CapacityEvictsClosestToExpiry(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemory[int](t, Options{TTL: time.Minute, Capacity: 2})
	ctx := context.Background()

	m.Set(ctx, "a", 1)
	clock.Advance(time.Second)
	m.Set(ctx, "b", 2)
	clock.Advance(time.Second)
	m.Set(ctx, "c", 3)

	assert.Equal(t, 2, m.Len())
	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)
	_, ok = m.Get(ctx, "b")
	assert.True(t, ok)
	_, ok = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemory_CapacityPrefersExpired(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemory[int](t, Options{TTL: time.Minute, Capacity: 2})
	ctx := context.Background()

	m.Set(ctx, "a", 1)
	clock.Advance(2 * time.Minute)
	m.Set(ctx, "b", 2)
	m.Set(ctx, "c", 3)

	_, ok := m.Get(ctx, "b")
	assert.True(t, ok)
	_, ok = m.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemory_Sweep(t *testing.T) {
	t.Parallel()

	m, clock := newTestMemory[int](t, Options{TTL: time.Minute})
	ctx := context.Background()

	m.Set(ctx, "a", 1)
	m.Set(ctx, "b", 2)
	clock.Advance(2 * time.Minute)
	m.Set(ctx, "c", 3)

	assert.Equal(t, 2, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestMemory_BackgroundSweeper(t *testing.T) {
	t.Parallel()

	m := NewMemory[int](Options{TTL: time.Millisecond, SweepInterval: 5 * time.Millisecond})
	defer m.Close()

	m.Set(context.Background(), "a", 1)
	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemory_CloseIdempotent(t *testing.T) {
	t.Parallel()

	m := NewMemory[int](Options{SweepInterval: time.Millisecond})
	m.Close()
	m.Close()

	noSweeper := NewMemory[int](Options{})
	noSweeper.Close()
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := NewMemory[record](Options{TTL: time.Minute, Capacity: 50})
	defer m.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", (i*j)%80)
				want := record{ID: key, Value: float64(j)}
				m.Set(ctx, key, want)
				if got, ok := m.Get(ctx, key); ok {
					assert.Equal(t, key, got.ID)
				}
				if j%7 == 0 {
					m.Delete(ctx, key)
				}
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, m.Len(), 50)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := Fingerprint("harris", "123 MAIN ST")
	b := Fingerprint(" Harris ", "123 main st")
	c := Fingerprint("dallas", "123 MAIN ST")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSetFingerprint_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := SetFingerprint([]string{"doc-2", "doc-1", "doc-3"})
	b := SetFingerprint([]string{"doc-1", "doc-3", "doc-2", "doc-1"})
	c := SetFingerprint([]string{"doc-1", "doc-2"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestShortKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", ShortKey("abc"))
	assert.Equal(t, "0123456789ab", ShortKey("0123456789abcdef"))
}
