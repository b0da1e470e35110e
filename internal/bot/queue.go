package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	dg "github.com/bwmarrin/discordgo"
)

type EventType int

const (
	EventTypeMessage EventType = iota
	EventTypeInteraction
)

type GuildEvent struct {
	Type EventType

	Message     *dg.MessageCreate
	Interaction *dg.InteractionCreate
}

type GuildContext struct {
	Context context.Context
	Cancel  context.CancelFunc
	Events  chan GuildEvent
}

// Queues holds one bounded event queue per guild, plus the "" queue for
// direct messages. Each queue has a worker that hands every event to handle
// in its own goroutine, so a slow invocation never holds up the next one.
type Queues struct {
	mu       sync.RWMutex
	ctx      context.Context
	l        *slog.Logger
	size     int
	handle   func(context.Context, GuildEvent)
	contexts map[string]*GuildContext
}

func NewQueues(ctx context.Context, l *slog.Logger, size int, handle func(context.Context, GuildEvent)) *Queues {
	return &Queues{
		ctx:      ctx,
		l:        l,
		size:     size,
		handle:   handle,
		contexts: make(map[string]*GuildContext),
	}
}

// Ensure returns the guild's queue, starting it if needed.
func (q *Queues) Ensure(guildID string) *GuildContext {
	q.mu.RLock()
	if gc, exists := q.contexts[guildID]; exists {
		q.mu.RUnlock()
		return gc
	}
	q.mu.RUnlock()

	q.mu.Lock()
	defer q.mu.Unlock()

	if gc, exists := q.contexts[guildID]; exists {
		return gc
	}

	ctx, cancel := context.WithCancel(q.ctx)
	gc := &GuildContext{
		Context: ctx,
		Cancel:  cancel,
		Events:  make(chan GuildEvent, q.size),
	}
	q.contexts[guildID] = gc

	go q.work(guildID, gc)
	go q.monitor(guildID, gc)

	return gc
}

// Enqueue reports whether the event was accepted. A full queue drops it.
func (q *Queues) Enqueue(guildID string, e GuildEvent) bool {
	gc := q.Ensure(guildID)

	select {
	case gc.Events <- e:
		return true
	case <-gc.Context.Done():
		q.l.Debug("dropped event for cancelled guild context", "guild", guildID)
	default:
		q.l.Warn("event channel full, dropping event", "guild", guildID)
	}
	return false
}

func (q *Queues) Remove(guildID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gc, ok := q.contexts[guildID]; ok {
		gc.Cancel()
		delete(q.contexts, guildID)
	}
}

func (q *Queues) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.contexts)
}

func (q *Queues) work(guildID string, gc *GuildContext) {
	for {
		select {
		case <-gc.Context.Done():
			return
		case e := <-gc.Events:
			go q.run(gc.Context, guildID, e)
		}
	}
}

func (q *Queues) run(ctx context.Context, guildID string, e GuildEvent) {
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			stack = stack[:runtime.Stack(stack, false)]
			q.l.Error("panic recovered", "guild", guildID, "recovered", r, "stack", string(stack))
		}
	}()

	q.handle(ctx, e)
}

func (q *Queues) monitor(guildID string, gc *GuildContext) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	var lastWarning time.Time
	var consecutive int

	for {
		select {
		case <-gc.Context.Done():
			return
		case <-ticker.C:
			size, capacity := len(gc.Events), cap(gc.Events)
			fill := float64(size) / float64(capacity) * 100
			if fill <= 60 {
				continue
			}

			now := time.Now()
			if now.Sub(lastWarning) > 5*time.Minute {
				consecutive = 0
			}
			lastWarning = now
			consecutive++

			q.l.Warn("event channel filling up",
				"guild", guildID,
				"size", size,
				"capacity", capacity,
				"percentage", fmt.Sprintf("%.1f%%", fill),
				"consecutive_warnings", consecutive)

			if consecutive >= 3 {
				q.l.Error("potential stuck worker detected; event channel consistently full",
					"guild", guildID,
					"size", size,
					"capacity", capacity,
					"warnings", consecutive)
			}
		}
	}
}
