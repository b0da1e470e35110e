// Package dispatch resolves incoming messages and interactions to commands and
// runs each through its precondition pipeline before calling the handler.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/conditions"
	"github.com/glotchimo/warden/internal/cooldown"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/models"
	"github.com/glotchimo/warden/internal/response"
	"github.com/glotchimo/warden/internal/result"
	"github.com/glotchimo/warden/internal/utils"
)

const (
	reasonWrongGuild = "Cannot use this command in this context!"
	reasonOwnerOnly  = "This command can only be used by the owners"
	reasonCondition  = "You cannot use this command."
	reasonGuildOnly  = "This command can only be used in servers"
	reasonNoMember   = "Could not resolve member permissions"
	reasonNoHandler  = "This command cannot be used this way."
)

// Recorder persists the outcome of every resolved invocation.
type Recorder interface {
	Record(ctx context.Context, inv models.Invocation) error
}

type Option func(*Dispatcher)

func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) { d.prefix = prefix }
}

func WithOwners(owners []string) Option {
	return func(d *Dispatcher) { d.owners = slices.Clone(owners) }
}

// WithSelfID supplies the bot's user ID, which is only known once the
// session is ready.
func WithSelfID(f func() string) Option {
	return func(d *Dispatcher) { d.selfID = f }
}

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.l = l }
}

// WithSession attaches the live session to every invocation context.
func WithSession(s *dg.Session) Option {
	return func(d *Dispatcher) { d.session = s }
}

func WithMessageCommands(enabled bool) Option {
	return func(d *Dispatcher) { d.messages = enabled }
}

func WithInteractionCommands(enabled bool) Option {
	return func(d *Dispatcher) { d.interactions = enabled }
}

type Dispatcher struct {
	commands  *commands.Registry
	runner    *conditions.Runner
	cooldowns *cooldown.Tracker
	responder *response.Responder

	l            *slog.Logger
	prefix       string
	owners       []string
	selfID       func() string
	recorder     Recorder
	session      *dg.Session
	messages     bool
	interactions bool

	handled atomic.Int64
}

func New(cmds *commands.Registry, runner *conditions.Runner, cooldowns *cooldown.Tracker, responder *response.Responder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		commands:     cmds,
		runner:       runner,
		cooldowns:    cooldowns,
		responder:    responder,
		l:            slog.Default(),
		prefix:       "!",
		selfID:       func() string { return "" },
		messages:     true,
		interactions: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handled counts invocations that reached their handler.
func (d *Dispatcher) Handled() int64 {
	return d.handled.Load()
}

func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// pipeline runs the checks shared by both paths, then the handler. Rejections
// are answered on c; the returned outcome and reason are for the audit record.
func (d *Dispatcher) pipeline(ctx context.Context, cmd *commands.Command, c *handlers.Context, handler commands.Handler) (outcome models.Outcome, reason string) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			c.Logger.Error("recovered from panic in command", "error", err, "stack", stack())
			d.fail(c, err)
			outcome, reason = models.OutcomeFailed, err.Error()
		}
	}()

	res, err := d.gate(ctx, cmd, c)
	if err != nil {
		c.Logger.Error("error checking command preconditions", "error", err)
		d.fail(c, err)
		return models.OutcomeFailed, err.Error()
	}
	if !res.OK() {
		d.reject(c, res.Reason())
		return models.OutcomeRejected, res.Reason()
	}

	d.handled.Add(1)
	if err := handler(ctx, c); err != nil {
		c.Logger.Error("error running command", "error", err)
		d.fail(c, err)
		return models.OutcomeFailed, err.Error()
	}

	return models.OutcomeExecuted, ""
}

// gate applies, in order: guild allowlist, owner flag, declared conditions,
// cooldown, then bot and caller permissions.
func (d *Dispatcher) gate(ctx context.Context, cmd *commands.Command, c *handlers.Context) (result.Result, error) {
	if !cmd.AllowedIn(c.GuildID()) {
		return result.Reason(reasonWrongGuild), nil
	}

	if cmd.OwnerOnly && !slices.Contains(d.owners, c.UserID()) {
		return result.Reason(reasonOwnerOnly), nil
	}

	if res := d.runner.Run(ctx, cmd.Conditions, c, c.Kind); !res.OK() {
		return result.Reason(res.ReasonOr(reasonCondition)), nil
	}

	if cmd.Cooldown > 0 {
		if remaining, ok := d.cooldowns.Check(cmd.Name, c.UserID(), cmd.Cooldown); !ok {
			return result.Reason(fmt.Sprintf("You must wait %d more second(s) before reusing this command.", remaining)), nil
		}
	}

	if cmd.ClientPermissions != 0 {
		if c.GuildID() == "" {
			return result.Reason(reasonGuildOnly), nil
		}
		perms, err := d.clientPermissions(c)
		if err != nil {
			return result.None(), err
		}
		if missing := missingPermissions(perms, cmd.ClientPermissions); missing != 0 {
			return result.Reason(fmt.Sprintf("I'm missing the %s permission", utils.FormatPermissions(missing))), nil
		}
	}

	if cmd.UserPermissions != 0 {
		if c.GuildID() == "" {
			return result.Reason(reasonGuildOnly), nil
		}
		if c.Member() == nil {
			return result.Reason(reasonNoMember), nil
		}
		perms, err := d.userPermissions(c)
		if err != nil {
			return result.None(), err
		}
		if missing := missingPermissions(perms, cmd.UserPermissions); missing != 0 {
			return result.Reason(fmt.Sprintf("You are missing the %s permission", utils.FormatPermissions(missing))), nil
		}
	}

	return result.Ok(), nil
}

func (d *Dispatcher) clientPermissions(c *handlers.Context) (int64, error) {
	if c.Interaction != nil {
		return c.Interaction.AppPermissions, nil
	}
	return d.responder.Session().UserChannelPermissions(d.selfID(), c.ChannelID())
}

func (d *Dispatcher) userPermissions(c *handlers.Context) (int64, error) {
	if c.Interaction != nil {
		return c.Member().Permissions, nil
	}
	return d.responder.Session().UserChannelPermissions(c.UserID(), c.ChannelID())
}

func missingPermissions(perms, required int64) int64 {
	if utils.HasPermissions(perms, required) {
		return 0
	}
	return required &^ perms
}

func (d *Dispatcher) reject(c *handlers.Context, reason string) {
	c.Logger.Info("command rejected", "reason", reason)

	var err error
	if c.Kind == handlers.KindMessage {
		err = c.Reply(reason)
	} else {
		err = c.ReplyEphemeral(reason)
	}
	if err != nil {
		c.Logger.Warn("error sending rejection", "error", err)
	}
}

func (d *Dispatcher) fail(c *handlers.Context, cause error) {
	err := c.Fail(utils.Failure{
		Type:    utils.ErrInternal,
		Message: "command failed",
		Data:    map[string]any{"error": cause.Error()},
	})
	if err != nil {
		c.Logger.Warn("error sending failure", "error", err)
	}
}

func (d *Dispatcher) record(ctx context.Context, c *handlers.Context, started time.Time, outcome models.Outcome, reason string) {
	elapsed := time.Since(started)
	if outcome == models.OutcomeExecuted {
		c.Logger.Info("command executed", "user", c.UserID(), "guild", c.GuildID(), "duration", elapsed)
	}

	if d.recorder == nil {
		return
	}
	err := d.recorder.Record(ctx, models.Invocation{
		ID:        c.ID,
		Command:   c.Command,
		Kind:      c.Kind.String(),
		UserID:    c.UserID(),
		GuildID:   c.GuildID(),
		ChannelID: c.ChannelID(),
		Outcome:   outcome,
		Reason:    reason,
		Duration:  elapsed,
		Created:   started,
	})
	if err != nil {
		c.Logger.Warn("error recording invocation", "error", err)
	}
}

// tokenize splits a prefixed message into its command key and arguments. It
// reports false when nothing, or whitespace, directly follows the prefix.
func tokenize(content, prefix string) (string, []string, bool) {
	rest := strings.TrimPrefix(content, prefix)
	first, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || unicode.IsSpace(first) {
		return "", nil, false
	}

	fields := strings.Fields(rest)
	return fields[0], fields[1:], true
}
