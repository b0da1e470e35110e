// Package cooldown enforces a minimum interval between invocations of a
// command by the same user. State lives in memory for the life of the process.
package cooldown

import (
	"sync"
	"time"
)

// Tracker maps command name to user ID to an expiry in Unix milliseconds.
// Entries are overwritten on every accepted check and never evicted.
type Tracker struct {
	mu      sync.Mutex
	now     func() time.Time
	expires map[string]map[string]int64
}

func NewTracker() *Tracker {
	return &Tracker{
		now:     time.Now,
		expires: make(map[string]map[string]int64),
	}
}

// WithClock replaces the time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Check reports whether user may invoke command now. When it may not, the
// whole seconds left (rounded up) are returned. An accepted check records a
// new expiry of now plus cooldown.
func (t *Tracker) Check(command, user string, cooldown time.Duration) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UnixMilli()
	users, ok := t.expires[command]
	if !ok {
		users = make(map[string]int64)
		t.expires[command] = users
	}

	if expiry := users[user]; now < expiry {
		return (expiry - now + 999) / 1000, false
	}

	users[user] = now + cooldown.Milliseconds()
	return 0, true
}

// Len counts tracked (command, user) pairs.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, users := range t.expires {
		n += len(users)
	}
	return n
}
