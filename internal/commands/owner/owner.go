// Package owner holds commands restricted to the bot's owners.
package owner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/conditions"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/utils"
)

const Category = "Owner"

// Stats is what the admin panel reports about the running bot.
type Stats interface {
	Guilds() int
	Handled() int64
	Started() time.Time
}

func Commands(stats Stats) []*commands.Command {
	return []*commands.Command{AdminPanel(stats)}
}

func AdminPanel(stats Stats) *commands.Command {
	run := func(_ context.Context, c *handlers.Context) error {
		return c.ReplyEmbed(panel(stats), true)
	}

	return &commands.Command{
		Name:        "adminpanel",
		Description: "Access the admin panel",
		Category:    Category,
		Conditions:  []conditions.Name{conditions.GuildOnly, conditions.BotOwnerOnly},
		Definition: &dg.ApplicationCommand{
			Name:        "adminpanel",
			Description: "Access the admin panel (requires bot owner and server)",
		},
		MessageRun:   run,
		ChatInputRun: run,
	}
}

func panel(stats Stats) *dg.MessageEmbed {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	commit := utils.GetCommit()
	if commit == "" {
		commit = "unknown"
	}

	field := func(name, value string) *dg.MessageEmbedField {
		return &dg.MessageEmbedField{Name: name, Value: value, Inline: true}
	}

	return &dg.MessageEmbed{
		Title:       "Admin Panel",
		Description: "Welcome to the admin panel! This is a restricted area.",
		Fields: []*dg.MessageEmbedField{
			field("Servers", fmt.Sprint(stats.Guilds())),
			field("Commands Handled", fmt.Sprint(stats.Handled())),
			field("Up Since", utils.FormatTimestamp(stats.Started(), utils.TimestampRelative)),
			field("Goroutines", fmt.Sprint(runtime.NumGoroutine())),
			field("Heap", fmt.Sprintf("%.1f MiB", float64(mem.HeapAlloc)/(1<<20))),
			field("Commit", commit),
		},
	}
}
