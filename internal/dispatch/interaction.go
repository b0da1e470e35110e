package dispatch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/models"
	"github.com/glotchimo/warden/internal/result"
	"github.com/glotchimo/warden/internal/utils"
)

// ParseInteraction reports whether i is a command interaction from a guild
// member for a registered command.
func (d *Dispatcher) ParseInteraction(i *dg.InteractionCreate) result.Result {
	if !d.interactions {
		return result.None()
	}
	if _, ok := handlers.InteractionKind(i.Interaction); !ok {
		return result.None()
	}
	if i.GuildID == "" {
		return result.None()
	}
	if i.Member == nil || i.Member.User == nil || i.Member.User.Bot || i.Member.User.System {
		return result.None()
	}
	if _, ok := d.commands.Get(i.ApplicationCommandData().Name); !ok {
		return result.None()
	}
	return result.Ok()
}

// HandleInteraction dispatches an application command interaction.
// Autocomplete goes straight to the command's autocomplete handler. Every
// other interaction is deferred ephemerally before any check runs.
func (d *Dispatcher) HandleInteraction(ctx context.Context, i *dg.InteractionCreate) {
	if !d.ParseInteraction(i).OK() {
		return
	}

	kind, _ := handlers.InteractionKind(i.Interaction)
	cmd, _ := d.commands.Get(i.ApplicationCommandData().Name)
	c := handlers.NewInteractionContext(i, kind, d.responder, d.l)
	c.Session = d.session
	c.Logger.Debug("command issued", "user", c.UserID(), "called", utils.FormatInteraction(i))

	if kind == handlers.KindAutocomplete {
		if cmd.AutocompleteRun != nil {
			d.autocomplete(ctx, c, cmd.AutocompleteRun)
		}
		return
	}

	if err := c.Defer(true); err != nil {
		c.Logger.Warn("error deferring interaction", "error", err)
	}

	started := time.Now()
	handler := cmd.HandlerFor(kind)
	if handler == nil {
		if err := c.Fail(utils.Failure{Type: utils.ErrNotFound, Message: reasonNoHandler}); err != nil {
			c.Logger.Warn("error sending failure", "error", err)
		}
		d.record(ctx, c, started, models.OutcomeRejected, reasonNoHandler)
		return
	}

	outcome, reason := d.pipeline(ctx, cmd, c, handler)
	d.record(ctx, c, started, outcome, reason)
}

func (d *Dispatcher) autocomplete(ctx context.Context, c *handlers.Context, run commands.Handler) {
	defer func() {
		if rec := recover(); rec != nil {
			c.Logger.Error("recovered from panic in autocomplete", "error", fmt.Errorf("panic: %v", rec), "stack", stack())
		}
	}()

	if err := run(ctx, c); err != nil {
		c.Logger.Error("error running autocomplete", "error", err)
	}
}

func stack() string {
	buf := make([]byte, 4096)
	return string(buf[:runtime.Stack(buf, false)])
}
