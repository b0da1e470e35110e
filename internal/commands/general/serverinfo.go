package general

import (
	"context"
	"fmt"
	"strings"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/conditions"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/utils"
	"github.com/graxinc/errutil"
)

func ServerInfo() *commands.Command {
	return &commands.Command{
		Name:              "serverinfo",
		Description:       "Get information about the server",
		Category:          Category,
		Aliases:           []string{"si"},
		ClientPermissions: dg.PermissionEmbedLinks,
		Conditions:        []conditions.Name{conditions.GuildOnly},
		Definition: &dg.ApplicationCommand{
			Name:        "serverinfo",
			Description: "Get information about the server",
		},
		MessageRun:   serverInfo,
		ChatInputRun: serverInfo,
	}
}

func serverInfo(_ context.Context, c *handlers.Context) error {
	if c.Session == nil {
		return errutil.With(fmt.Errorf("no session"))
	}

	g, err := c.Session.State.Guild(c.GuildID())
	if err != nil {
		g, err = c.Session.Guild(c.GuildID())
		if err != nil {
			return errutil.With(err)
		}
	}

	return c.ReplyEmbed(guildEmbed(g), false)
}

func guildEmbed(g *dg.Guild) *dg.MessageEmbed {
	var lines []string
	add := func(name string, value any) {
		lines = append(lines, fmt.Sprintf("• %s: %v", name, value))
	}

	add("ID", g.ID)
	add("Owner", utils.FormatUserMention(g.OwnerID))
	add("Members", g.MemberCount)
	if created, err := dg.SnowflakeTimestamp(g.ID); err == nil {
		add("Created", utils.FormatTimestamp(created, utils.TimestampLongDate))
	}
	add("Roles", len(g.Roles))
	add("Channels", len(g.Channels))
	add("Emojis", len(g.Emojis))

	embed := &dg.MessageEmbed{
		Title:       fmt.Sprintf("Server Information: %s", g.Name),
		Description: strings.Join(lines, "\n"),
	}
	if g.Icon != "" {
		embed.Thumbnail = &dg.MessageEmbedThumbnail{URL: g.IconURL("256")}
	}
	return embed
}
