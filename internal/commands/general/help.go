package general

import (
	"context"
	"fmt"
	"sort"
	"strings"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/utils"
)

// Help lists the commands in r. It reads r at invocation time, so it can be
// registered alongside the commands it describes.
func Help(r *commands.Registry, prefix string) *commands.Command {
	h := help{r, prefix}
	return &commands.Command{
		Name:        "help",
		Description: "List commands or describe one",
		Category:    Category,
		Aliases:     []string{"h", "commands"},
		Definition: &dg.ApplicationCommand{
			Name:        "help",
			Description: "List commands or describe one",
			Options: []*dg.ApplicationCommandOption{{
				Type:         dg.ApplicationCommandOptionString,
				Name:         "command",
				Description:  "Command to describe",
				Autocomplete: true,
			}},
		},
		MessageRun:      h.message,
		ChatInputRun:    h.chatInput,
		AutocompleteRun: h.autocomplete,
	}
}

type help struct {
	r      *commands.Registry
	prefix string
}

func (h help) message(_ context.Context, c *handlers.Context) error {
	if len(c.Args) > 0 {
		return h.describe(c, c.Args[0])
	}
	return c.ReplyEmbed(h.list(), false)
}

func (h help) chatInput(_ context.Context, c *handlers.Context) error {
	if opt, ok := c.Options["command"]; ok {
		return h.describe(c, opt.StringValue())
	}
	return c.ReplyEmbed(h.list(), true)
}

func (h help) autocomplete(_ context.Context, c *handlers.Context) error {
	typed := ""
	if opt := utils.FocusedOption(c.Options); opt != nil {
		typed = strings.ToLower(opt.StringValue())
	}

	var choices []*dg.ApplicationCommandOptionChoice
	for _, cmd := range h.r.All() {
		if strings.HasPrefix(cmd.Name, typed) {
			choices = append(choices, &dg.ApplicationCommandOptionChoice{Name: cmd.Name, Value: cmd.Name})
		}
	}
	return c.Autocomplete(choices)
}

func (h help) list() *dg.MessageEmbed {
	byCategory := map[string][]string{}
	for _, cmd := range h.r.All() {
		category := cmd.Category
		if category == "" {
			category = "Other"
		}
		byCategory[category] = append(byCategory[category], fmt.Sprintf("`%s`", cmd.Name))
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	embed := &dg.MessageEmbed{
		Title:       "Commands",
		Description: fmt.Sprintf("Use `%shelp <command>` for details.", h.prefix),
	}
	for _, category := range categories {
		embed.Fields = append(embed.Fields, &dg.MessageEmbedField{
			Name:  category,
			Value: strings.Join(byCategory[category], " "),
		})
	}
	return embed
}

func (h help) describe(c *handlers.Context, key string) error {
	cmd, ok := h.r.Resolve(strings.ToLower(key))
	if !ok {
		return c.Fail(utils.Failure{
			Type:    utils.ErrNotFound,
			Message: fmt.Sprintf("No command called `%s`.", key),
		})
	}

	embed := &dg.MessageEmbed{
		Title:       cmd.Name,
		Description: cmd.Description,
	}
	add := func(name, value string) {
		embed.Fields = append(embed.Fields, &dg.MessageEmbedField{Name: name, Value: value, Inline: true})
	}

	if len(cmd.Aliases) > 0 {
		add("Aliases", strings.Join(cmd.Aliases, ", "))
	}
	if cmd.Cooldown > 0 {
		add("Cooldown", cmd.Cooldown.String())
	}
	if cmd.UserPermissions != 0 {
		add("Requires", utils.FormatPermissions(cmd.UserPermissions))
	}
	if len(cmd.Conditions) > 0 {
		names := make([]string, len(cmd.Conditions))
		for i, n := range cmd.Conditions {
			names[i] = string(n)
		}
		add("Conditions", strings.Join(names, ", "))
	}
	var usage []string
	if cmd.MessageRun != nil {
		usage = append(usage, fmt.Sprintf("`%s%s`", h.prefix, cmd.Name))
	}
	if cmd.ChatInputRun != nil && cmd.Definition != nil {
		usage = append(usage, fmt.Sprintf("`/%s`", cmd.Definition.Name))
	}
	if len(usage) > 0 {
		add("Usage", strings.Join(usage, " "))
	}

	return c.ReplyEmbed(embed, c.Kind != handlers.KindMessage)
}
