package handlers

import (
	"log/slog"
	"sync"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/response"
	"github.com/glotchimo/warden/internal/utils"
	"github.com/graxinc/errutil"
)

type Kind int

const (
	KindMessage Kind = iota
	KindChatInput
	KindContextMenu
	KindAutocomplete
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindChatInput:
		return "chat_input"
	case KindContextMenu:
		return "context_menu"
	case KindAutocomplete:
		return "autocomplete"
	default:
		return "unknown"
	}
}

// InteractionKind classifies an interaction. It reports false for interaction
// types that never reach a command.
func InteractionKind(i *dg.Interaction) (Kind, bool) {
	switch i.Type {
	case dg.InteractionApplicationCommandAutocomplete:
		return KindAutocomplete, true
	case dg.InteractionApplicationCommand:
		switch i.ApplicationCommandData().CommandType {
		case dg.UserApplicationCommand, dg.MessageApplicationCommand:
			return KindContextMenu, true
		default:
			return KindChatInput, true
		}
	}
	return 0, false
}

// Context is one invocation of a command, from a chat message or an
// interaction. Exactly one of Message and Interaction is set.
type Context struct {
	Kind    Kind
	ID      string
	Command string
	Logger  *slog.Logger

	// Session is the live gateway session; nil outside a running bot.
	Session *dg.Session

	Message     *dg.MessageCreate
	Interaction *dg.InteractionCreate

	Args    []string
	Options map[string]*dg.ApplicationCommandInteractionDataOption

	r        *response.Responder
	mu       sync.Mutex
	deferred bool
	replied  bool
}

func NewMessageContext(m *dg.MessageCreate, command string, args []string, r *response.Responder, l *slog.Logger) *Context {
	id := utils.GenerateID()
	return &Context{
		Kind:    KindMessage,
		ID:      id,
		Command: command,
		Logger:  l.With("invocation", id, "command", command, "kind", KindMessage.String()),
		Message: m,
		Args:    args,
		r:       r,
	}
}

func NewInteractionContext(i *dg.InteractionCreate, kind Kind, r *response.Responder, l *slog.Logger) *Context {
	id := utils.GenerateID()
	name := i.ApplicationCommandData().Name
	return &Context{
		Kind:        kind,
		ID:          id,
		Command:     name,
		Logger:      l.With("invocation", id, "command", name, "kind", kind.String()),
		Interaction: i,
		Options:     utils.MapOptions(i),
		r:           r,
	}
}

func (c *Context) Responder() *response.Responder {
	return c.r
}

func (c *Context) User() *dg.User {
	if c.Message != nil {
		return c.Message.Author
	}
	if c.Interaction.Member != nil && c.Interaction.Member.User != nil {
		return c.Interaction.Member.User
	}
	return c.Interaction.User
}

func (c *Context) UserID() string {
	if u := c.User(); u != nil {
		return u.ID
	}
	return ""
}

func (c *Context) IsBot() bool {
	u := c.User()
	return u != nil && u.Bot
}

func (c *Context) IsSystem() bool {
	u := c.User()
	return u != nil && u.System
}

func (c *Context) GuildID() string {
	if c.Message != nil {
		return c.Message.GuildID
	}
	return c.Interaction.GuildID
}

func (c *Context) ChannelID() string {
	if c.Message != nil {
		return c.Message.ChannelID
	}
	return c.Interaction.ChannelID
}

// Member is the invoking guild member. On the message path the gateway omits
// the member's user, so callers should use User for identity.
func (c *Context) Member() *dg.Member {
	if c.Message != nil {
		return c.Message.Member
	}
	return c.Interaction.Member
}

func (c *Context) Deferred() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deferred
}

func (c *Context) Replied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replied
}

// Defer acknowledges an interaction. It is a no-op on the message path and
// once the interaction has been acknowledged.
func (c *Context) Defer(ephemeral bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Interaction == nil || c.deferred || c.replied {
		return nil
	}
	if err := c.r.Defer(c.Interaction.Interaction, ephemeral); err != nil {
		return errutil.With(err)
	}
	c.deferred = true
	return nil
}

func (c *Context) Reply(content string) error {
	return c.Send(response.MessageOptions{Content: content})
}

func (c *Context) ReplyEphemeral(content string) error {
	return c.Send(response.MessageOptions{Content: content, Ephemeral: true})
}

func (c *Context) ReplyEmbed(embed *dg.MessageEmbed, ephemeral bool) error {
	return c.Send(response.MessageOptions{Embeds: []*dg.MessageEmbed{embed}, Ephemeral: ephemeral})
}

func (c *Context) Fail(f utils.Failure) error {
	return c.ReplyEmbed(c.r.FailureEmbed(f, c.ID), true)
}

// Send delivers a reply. Interactions get one initial response; once deferred
// or replied, the original response is edited, and a followup is sent if the
// edit fails.
func (c *Context) Send(opts response.MessageOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Message != nil {
		if err := c.r.Reply(c.Message.Message, opts); err != nil {
			return errutil.With(err)
		}
		c.replied = true
		return nil
	}

	i := c.Interaction.Interaction
	if !c.deferred && !c.replied {
		if err := c.r.Respond(i, opts); err != nil {
			return errutil.With(err)
		}
		c.replied = true
		return nil
	}

	if err := c.r.Edit(i, opts); err != nil {
		c.Logger.Warn("error editing reply, sending followup", "error", err)
		if err := c.r.Send(i, opts); err != nil {
			return errutil.With(err)
		}
	}
	c.replied = true
	return nil
}

func (c *Context) Autocomplete(choices []*dg.ApplicationCommandOptionChoice) error {
	if c.Interaction == nil {
		return nil
	}
	if err := c.r.Autocomplete(c.Interaction.Interaction, choices); err != nil {
		return errutil.With(err)
	}
	c.mu.Lock()
	c.replied = true
	c.mu.Unlock()
	return nil
}
