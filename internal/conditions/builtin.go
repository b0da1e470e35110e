package conditions

import (
	"context"
	"slices"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/result"
	"github.com/graxinc/errutil"
)

const (
	reasonGuildOnly   = "This command can only be used in servers"
	reasonOwnerOnly   = "This command can only be used by the bot owner"
	reasonNoMember    = "Could not resolve member permissions"
	reasonAdminNeeded = "This command requires Administrator permission"
)

// Defaults registers the built-in conditions.
func Defaults(r *Registry, owners []string) {
	r.Register(GuildOnly, func() (Condition, error) { return Func(guildOnly), nil })
	r.Register(BotOwnerOnly, func() (Condition, error) { return ownerOnly(owners), nil })
	r.Register(AdminOnly, func() (Condition, error) { return adminOnly{}, nil })
}

func guildOnly(_ context.Context, c *handlers.Context) (result.Result, error) {
	if c.GuildID() == "" {
		return result.Reason(reasonGuildOnly), nil
	}
	return result.Ok(), nil
}

func ownerOnly(owners []string) Func {
	owners = slices.Clone(owners)
	return func(_ context.Context, c *handlers.Context) (result.Result, error) {
		if slices.Contains(owners, c.UserID()) {
			return result.Ok(), nil
		}
		return result.Reason(reasonOwnerOnly), nil
	}
}

type adminOnly struct{}

// Message resolves permissions through the session since message events do
// not carry them.
func (adminOnly) Message(_ context.Context, c *handlers.Context) (result.Result, error) {
	if c.GuildID() == "" {
		return result.Reason(reasonGuildOnly), nil
	}
	if c.Member() == nil {
		return result.Reason(reasonNoMember), nil
	}

	perms, err := c.Responder().Session().UserChannelPermissions(c.UserID(), c.ChannelID())
	if err != nil {
		return result.None(), errutil.With(err)
	}
	return admin(perms), nil
}

func (adminOnly) ChatInput(_ context.Context, c *handlers.Context) (result.Result, error) {
	return interactionAdmin(c), nil
}

func (adminOnly) ContextMenu(_ context.Context, c *handlers.Context) (result.Result, error) {
	return interactionAdmin(c), nil
}

func interactionAdmin(c *handlers.Context) result.Result {
	if c.GuildID() == "" {
		return result.Reason(reasonGuildOnly)
	}
	if c.Member() == nil {
		return result.Reason(reasonNoMember)
	}
	return admin(c.Member().Permissions)
}

func admin(perms int64) result.Result {
	if perms&dg.PermissionAdministrator != 0 {
		return result.Ok()
	}
	return result.Reason(reasonAdminNeeded)
}
