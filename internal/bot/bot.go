package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/cache"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/commands/general"
	"github.com/glotchimo/warden/internal/commands/owner"
	"github.com/glotchimo/warden/internal/conditions"
	"github.com/glotchimo/warden/internal/cooldown"
	"github.com/glotchimo/warden/internal/database"
	"github.com/glotchimo/warden/internal/dispatch"
	"github.com/glotchimo/warden/internal/listeners"
	"github.com/glotchimo/warden/internal/models"
	"github.com/glotchimo/warden/internal/response"
	"github.com/glotchimo/warden/internal/result"
	"github.com/glotchimo/warden/internal/utils"
	"github.com/graxinc/errutil"
	"golang.org/x/time/rate"
)

type Config struct {
	Debug   bool
	Token   string
	Intents int
	Prefix  string
	Owners  []string

	DatabaseURL   string
	CacheURL      string
	MigrationsURL string

	ShardID    int
	ShardCount int

	MessageCommands     bool
	InteractionCommands bool
	RegisterCommands    bool
	RegisterRate        float64
}

// guildStore is satisfied by both the database and the cache in front of it.
type guildStore interface {
	GetGuild(ctx context.Context, id string) (*models.Guild, error)
	SetCommandSetHash(ctx context.Context, guildID, hash string) error
}

type Bot struct {
	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	conf    Config
	started time.Time

	s     *dg.Session
	d     *database.Database
	c     *cache.Cache
	l     *slog.Logger
	store guildStore

	commands  *commands.Registry
	dispatch  *dispatch.Dispatcher
	listeners *listeners.Set
	queues    *Queues
	limiter   *rate.Limiter
}

func NewBot(conf Config) (*Bot, error) {
	b := Bot{conf: conf, started: time.Now()}
	b.ctx, b.cancel = context.WithCancel(context.Background())

	if conf.Debug {
		b.l = slog.Default()
	} else {
		b.l = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}

	if conf.DatabaseURL != "" {
		d, err := database.NewDatabase(b.l, conf.DatabaseURL, conf.MigrationsURL)
		if err != nil {
			return nil, errutil.With(err)
		}
		b.d = d
		b.store = d

		if conf.CacheURL != "" {
			c, err := cache.NewCache(conf.CacheURL, b.l, d)
			if err != nil {
				return nil, errutil.With(err)
			}
			b.c = c
			b.store = c
		}
	} else {
		b.l.Warn("no database configured, invocations will not be recorded")
	}

	session, err := dg.New("Bot " + conf.Token)
	if err != nil {
		return nil, errutil.With(err)
	}
	b.s = session

	b.s.Identify.Intents = dg.Intent(conf.Intents)
	b.s.ShardID = conf.ShardID
	b.s.ShardCount = conf.ShardCount
	b.l.Info("sharding enabled", "shard_id", conf.ShardID, "shard_count", conf.ShardCount)

	conds := conditions.NewRegistry(b.l)
	conditions.Defaults(conds, conf.Owners)
	b.l.Info("conditions loaded", "count", conds.LoadAll())

	b.commands = commands.NewRegistry()
	if err := b.commands.Register(general.Commands(b.commands, conf.Prefix)...); err != nil {
		return nil, errutil.With(err)
	}
	if err := b.commands.Register(owner.Commands(&b)...); err != nil {
		return nil, errutil.With(err)
	}

	opts := []dispatch.Option{
		dispatch.WithPrefix(conf.Prefix),
		dispatch.WithOwners(conf.Owners),
		dispatch.WithSelfID(b.selfID),
		dispatch.WithLogger(b.l),
		dispatch.WithSession(b.s),
		dispatch.WithMessageCommands(conf.MessageCommands),
		dispatch.WithInteractionCommands(conf.InteractionCommands),
	}
	if b.d != nil {
		opts = append(opts, dispatch.WithRecorder(b.d))
	}
	b.dispatch = dispatch.New(
		b.commands,
		conditions.NewRunner(conds, b.l),
		cooldown.NewTracker(),
		response.NewResponder(b.s, b.l),
		opts...,
	)

	b.queues = NewQueues(b.ctx, b.l, 1000, b.handle)
	b.limiter = rate.NewLimiter(rate.Limit(conf.RegisterRate), 1)

	b.listeners = listeners.NewSet(b.l)
	b.attach()

	if err := b.s.Open(); err != nil {
		return nil, errutil.With(err)
	}

	b.queues.Ensure("")
	go b.status()

	return &b, nil
}

func (b *Bot) attach() {
	listeners.Add(b.listeners, b.s, listeners.Listener[dg.Ready]{
		Name: "ready",
		Once: true,
		Run:  b.onReady,
	})
	listeners.Add(b.listeners, b.s, listeners.Listener[dg.GuildCreate]{
		Name: "guild_create",
		Run: func(_ *dg.Session, g *dg.GuildCreate) error {
			return b.register(g.Guild)
		},
	})
	listeners.Add(b.listeners, b.s, listeners.Listener[dg.GuildDelete]{
		Name: "guild_delete",
		Parse: func(_ *dg.Session, g *dg.GuildDelete) result.Result {
			if g.Unavailable {
				return result.Reason("guild outage")
			}
			return result.Ok()
		},
		Run: func(_ *dg.Session, g *dg.GuildDelete) error {
			return b.remove(g.Guild)
		},
	})
	listeners.Add(b.listeners, b.s, listeners.Listener[dg.MessageCreate]{
		Name: "prefix_commands",
		Parse: func(_ *dg.Session, m *dg.MessageCreate) result.Result {
			return b.dispatch.ParseMessage(m)
		},
		Run: func(_ *dg.Session, m *dg.MessageCreate) error {
			b.queues.Enqueue(m.GuildID, GuildEvent{Type: EventTypeMessage, Message: m})
			return nil
		},
	})
	listeners.Add(b.listeners, b.s, listeners.Listener[dg.InteractionCreate]{
		Name: "interaction_commands",
		Parse: func(_ *dg.Session, i *dg.InteractionCreate) result.Result {
			return b.dispatch.ParseInteraction(i)
		},
		Run: func(_ *dg.Session, i *dg.InteractionCreate) error {
			b.queues.Enqueue(i.GuildID, GuildEvent{Type: EventTypeInteraction, Interaction: i})
			return nil
		},
	})
}

func (b *Bot) onReady(s *dg.Session, r *dg.Ready) error {
	b.l.Info("bot connected to gateway",
		"bot", fmt.Sprintf("%s#%s", r.User.Username, r.User.Discriminator),
		"guilds", len(r.Guilds),
		"commands", len(b.commands.All()),
		"listeners", b.listeners.Names(),
		"prefix", b.conf.Prefix,
		"version", utils.GetCommit(),
		"shard_id", b.conf.ShardID,
		"shard_count", b.conf.ShardCount,
	)

	if b.conf.RegisterCommands {
		go b.registerGlobal()
	}
	return nil
}

func (b *Bot) handle(ctx context.Context, e GuildEvent) {
	switch e.Type {
	case EventTypeMessage:
		b.dispatch.HandleMessage(ctx, e.Message)
	case EventTypeInteraction:
		b.dispatch.HandleInteraction(ctx, e.Interaction)
	}
}

func (b *Bot) register(g *dg.Guild) error {
	if b.d != nil {
		if err := b.d.PutGuild(b.ctx, models.Guild{ID: g.ID, Name: g.Name}); err != nil {
			return errutil.With(err)
		}
	}

	b.queues.Ensure(g.ID)
	b.l.Info("registered guild", "id", g.ID, "name", g.Name)

	if b.conf.RegisterCommands {
		go b.registerGuild(g.ID)
	}
	return nil
}

func (b *Bot) remove(g *dg.Guild) error {
	b.queues.Remove(g.ID)
	b.l.Info("removed guild", "id", g.ID)

	if b.d != nil {
		if err := b.d.MarkGuildDeleted(b.ctx, g.ID); err != nil {
			return errutil.With(err)
		}
	}
	if b.c != nil {
		b.c.Invalidate(b.ctx, g.ID)
	}
	return nil
}

func (b *Bot) selfID() string {
	if b.s.State == nil || b.s.State.User == nil {
		return ""
	}
	return b.s.State.User.ID
}

// Guilds, Handled and Started report on the running bot for the admin panel.

func (b *Bot) Guilds() int {
	b.s.State.RLock()
	defer b.s.State.RUnlock()
	return len(b.s.State.Guilds)
}

func (b *Bot) Handled() int64 {
	return b.dispatch.Handled()
}

func (b *Bot) Started() time.Time {
	return b.started
}

func (b *Bot) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancel()
	b.listeners.Close()

	if err := b.s.Close(); err != nil {
		b.l.Error("error closing session", "error", err)
	}
	if b.c != nil {
		if err := b.c.Close(); err != nil {
			b.l.Error("error closing cache", "error", err)
		}
	}
	if b.d != nil {
		if err := b.d.Close(); err != nil {
			b.l.Error("error closing database", "error", err)
		}
	}
}
