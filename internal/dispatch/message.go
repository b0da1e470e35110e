package dispatch

import (
	"context"
	"strings"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/result"
)

// ParseMessage reports whether m looks like a prefixed command from a person.
func (d *Dispatcher) ParseMessage(m *dg.MessageCreate) result.Result {
	if !d.messages {
		return result.None()
	}
	if m.Author == nil || m.Author.Bot || m.Author.System {
		return result.None()
	}
	if !strings.HasPrefix(m.Content, d.prefix) {
		return result.None()
	}
	return result.Ok()
}

// HandleMessage dispatches a chat message. Unknown commands and commands
// without a message handler are ignored without a reply.
func (d *Dispatcher) HandleMessage(ctx context.Context, m *dg.MessageCreate) {
	if !d.ParseMessage(m).OK() {
		return
	}

	key, args, ok := tokenize(m.Content, d.prefix)
	if !ok {
		return
	}

	cmd, ok := d.commands.Resolve(key)
	if !ok {
		d.l.Debug("ignoring unknown command", "key", key, "user", m.Author.ID)
		return
	}
	if cmd.MessageRun == nil {
		d.l.Debug("ignoring command without message handler", "command", cmd.Name)
		return
	}

	c := handlers.NewMessageContext(m, cmd.Name, args, d.responder, d.l)
	c.Session = d.session

	started := time.Now()
	outcome, reason := d.pipeline(ctx, cmd, c, cmd.MessageRun)
	d.record(ctx, c, started, outcome, reason)
}
