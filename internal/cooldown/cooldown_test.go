package cooldown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackerRoundTrip(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	tr := NewTracker().WithClock(func() time.Time { return now })

	_, ok := tr.Check("ping", "u1", 5*time.Second)
	assert.True(t, ok)

	now = now.Add(3000 * time.Millisecond)
	remaining, ok := tr.Check("ping", "u1", 5*time.Second)
	assert.False(t, ok)
	assert.Equal(t, int64(2), remaining)

	now = now.Add(1999 * time.Millisecond)
	remaining, ok = tr.Check("ping", "u1", 5*time.Second)
	assert.False(t, ok)
	assert.Equal(t, int64(1), remaining)

	now = now.Add(time.Millisecond)
	_, ok = tr.Check("ping", "u1", 5*time.Second)
	assert.True(t, ok)
}

func TestTrackerRejectionDoesNotExtend(t *testing.T) {
	now := time.UnixMilli(0)
	tr := NewTracker().WithClock(func() time.Time { return now })

	tr.Check("ping", "u1", 5*time.Second)
	now = now.Add(4 * time.Second)
	tr.Check("ping", "u1", 5*time.Second)

	now = now.Add(time.Second)
	_, ok := tr.Check("ping", "u1", 5*time.Second)
	assert.True(t, ok)
}

func TestTrackerScopes(t *testing.T) {
	now := time.UnixMilli(0)
	tr := NewTracker().WithClock(func() time.Time { return now })

	tr.Check("ping", "u1", time.Minute)

	_, ok := tr.Check("ping", "u2", time.Minute)
	assert.True(t, ok, "other user")
	_, ok = tr.Check("help", "u1", time.Minute)
	assert.True(t, ok, "other command")
	assert.Equal(t, 3, tr.Len())
}

func TestTrackerConcurrent(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := tr.Check("ping", "u1", time.Hour); ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}
