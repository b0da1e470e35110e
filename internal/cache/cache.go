package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/glotchimo/warden/internal/models"
	"github.com/graxinc/errutil"
	"github.com/redis/go-redis/v9"
)

const (
	guildTTL      = 10 * time.Minute
	fallbackSize  = 1000
	sweepInterval = time.Minute
)

// GuildStore is the source of truth behind the guild cache.
type GuildStore interface {
	GetGuild(ctx context.Context, id string) (*models.Guild, error)
	SetCommandSetHash(ctx context.Context, guildID, hash string) error
}

// Cache is a read-through cache of guild records. Redis is the shared tier and
// an in-process copy answers while the breaker holds redis off.
type Cache struct {
	c      *redis.Client
	l      *slog.Logger
	d      GuildStore
	cb     *CircuitBreaker
	fb     *FallbackCache[models.Guild]
	cancel context.CancelFunc
}

func NewCache(url string, l *slog.Logger, d GuildStore) (*Cache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errutil.With(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		c:      redis.NewClient(opt),
		l:      l,
		d:      d,
		cb:     NewCircuitBreaker(5, 30*time.Second),
		fb:     NewFallbackCache[models.Guild](fallbackSize),
		cancel: cancel,
	}
	go c.fb.Run(ctx, sweepInterval)

	return c, nil
}

func (c *Cache) Close() error {
	c.cancel()
	return c.c.Close()
}

func guildKey(id string) string {
	return "warden:guild:" + id
}

// GetGuild returns the guild record, loading it from the store on a miss.
func (c *Cache) GetGuild(ctx context.Context, id string) (*models.Guild, error) {
	key := guildKey(id)

	if c.cb.Allow() {
		raw, err := c.c.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			c.cb.RecordSuccess()
			var g models.Guild
			if err := json.Unmarshal(raw, &g); err == nil {
				c.fb.Set(key, g, guildTTL)
				return &g, nil
			}
			c.l.Warn("discarding malformed cached guild", "guild", id)
		case errors.Is(err, redis.Nil):
			c.cb.RecordSuccess()
		default:
			c.failure(err)
			if g, ok := c.fb.Get(key); ok {
				return &g, nil
			}
		}
	} else if g, ok := c.fb.Get(key); ok {
		return &g, nil
	}

	g, err := c.d.GetGuild(ctx, id)
	if err != nil {
		return nil, errutil.With(err)
	}
	c.store(ctx, key, *g)

	return g, nil
}

// SetCommandSetHash writes through to the store and drops the cached record.
func (c *Cache) SetCommandSetHash(ctx context.Context, guildID, hash string) error {
	if err := c.d.SetCommandSetHash(ctx, guildID, hash); err != nil {
		return errutil.With(err)
	}
	c.Invalidate(ctx, guildID)
	return nil
}

func (c *Cache) Invalidate(ctx context.Context, guildID string) {
	key := guildKey(guildID)
	c.fb.Delete(key)

	if !c.cb.Allow() {
		return
	}
	if err := c.c.Del(ctx, key).Err(); err != nil {
		c.failure(err)
		return
	}
	c.cb.RecordSuccess()
}

func (c *Cache) store(ctx context.Context, key string, g models.Guild) {
	c.fb.Set(key, g, guildTTL)

	if !c.cb.Allow() {
		return
	}
	raw, err := json.Marshal(g)
	if err != nil {
		c.l.Error("error marshaling guild for cache", "error", err)
		return
	}
	if err := c.c.Set(ctx, key, raw, guildTTL).Err(); err != nil {
		c.failure(err)
		return
	}
	c.cb.RecordSuccess()
}

func (c *Cache) failure(err error) {
	if c.cb.RecordFailure() {
		c.l.Warn("redis circuit opened", "error", err)
		return
	}
	c.l.Debug("redis call failed", "error", err, "state", c.cb.State().String())
}
