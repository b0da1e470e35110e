package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestQueuesRunEventsConcurrently(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	fast := make(chan struct{}, 1)

	q := NewQueues(ctx, discard, 10, func(_ context.Context, e GuildEvent) {
		if e.Message.Content == "slow" {
			<-release
			return
		}
		fast <- struct{}{}
	})

	require.True(t, q.Enqueue("g1", GuildEvent{Type: EventTypeMessage, Message: &dg.MessageCreate{Message: &dg.Message{Content: "slow"}}}))
	require.True(t, q.Enqueue("g1", GuildEvent{Type: EventTypeMessage, Message: &dg.MessageCreate{Message: &dg.Message{Content: "fast"}}}))

	select {
	case <-fast:
	case <-time.After(time.Second):
		t.Fatal("slow event blocked the queue")
	}
}

func TestQueuesRecoverPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handled := make(chan string, 2)
	q := NewQueues(ctx, discard, 10, func(_ context.Context, e GuildEvent) {
		if e.Message.Content == "panic" {
			panic("boom")
		}
		handled <- e.Message.Content
	})

	q.Enqueue("", GuildEvent{Type: EventTypeMessage, Message: &dg.MessageCreate{Message: &dg.Message{Content: "panic"}}})
	q.Enqueue("", GuildEvent{Type: EventTypeMessage, Message: &dg.MessageCreate{Message: &dg.Message{Content: "ok"}}})

	select {
	case got := <-handled:
		assert.Equal(t, "ok", got)
	case <-time.After(time.Second):
		t.Fatal("queue stopped after panic")
	}
}

func TestQueuesLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueues(ctx, discard, 1, func(context.Context, GuildEvent) {})

	a := q.Ensure("g1")
	assert.Same(t, a, q.Ensure("g1"))
	q.Ensure("")
	assert.Equal(t, 2, q.Len())

	q.Remove("g1")
	assert.Equal(t, 1, q.Len())
	assert.Error(t, a.Context.Err())
}

func TestCommandSetHash(t *testing.T) {
	a, err := commandSetHash([]*dg.ApplicationCommand{{Name: "ping"}})
	require.NoError(t, err)
	b, err := commandSetHash([]*dg.ApplicationCommand{{Name: "ping"}})
	require.NoError(t, err)
	c, err := commandSetHash([]*dg.ApplicationCommand{{Name: "pong"}})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestPrepare(t *testing.T) {
	b := &Bot{l: discard}

	defs := b.prepare(nil, "")
	assert.NotNil(t, defs)
	assert.Empty(t, defs)

	orig := &dg.ApplicationCommand{Name: "Ping", Description: "Check latency"}
	defs = b.prepare([]*dg.ApplicationCommand{orig}, "g1")
	assert.Equal(t, "ping", defs[0].Name)
	assert.Equal(t, "Ping", orig.Name)
}

func TestStatusMessageWithoutDatabase(t *testing.T) {
	b := &Bot{
		ctx:      context.Background(),
		s:        &dg.Session{State: dg.NewState()},
		dispatch: dispatch.New(commands.NewRegistry(), nil, nil, nil),
	}
	b.s.State.Guilds = []*dg.Guild{{ID: "1"}, {ID: "2"}}

	msg, err := b.statusMessage(0)
	require.NoError(t, err)
	assert.Equal(t, "Helping 2 servers", msg)

	msg, err = b.statusMessage(1)
	require.NoError(t, err)
	assert.Equal(t, "0 commands handled", msg)
}
