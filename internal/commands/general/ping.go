package general

import (
	"context"
	"fmt"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/handlers"
)

func Ping() *commands.Command {
	return &commands.Command{
		Name:        "ping",
		Description: "Check the bot's latency",
		Category:    Category,
		Aliases:     []string{"p"},
		Cooldown:    3 * time.Second,
		Definition: &dg.ApplicationCommand{
			Name:        "ping",
			Description: "Check the bot's latency",
		},
		MessageRun:   ping,
		ChatInputRun: ping,
	}
}

func ping(_ context.Context, c *handlers.Context) error {
	var id string
	if c.Message != nil {
		id = c.Message.ID
	} else {
		id = c.Interaction.ID
	}

	embed := dg.MessageEmbed{Title: "Pong!"}
	if sent, err := dg.SnowflakeTimestamp(id); err == nil {
		embed.Description = fmt.Sprintf("Round trip: %s", time.Since(sent).Round(time.Millisecond))
	}
	if c.Session != nil {
		embed.Fields = append(embed.Fields, &dg.MessageEmbedField{
			Name:  "Heartbeat",
			Value: c.Session.HeartbeatLatency().Round(time.Millisecond).String(),
		})
	}

	return c.ReplyEmbed(&embed, true)
}
