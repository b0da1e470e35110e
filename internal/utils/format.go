package utils

import (
	"fmt"
	"strings"
	"time"

	dg "github.com/bwmarrin/discordgo"
)

type TimestampType string

const (
	TimestampShort         TimestampType = "t" // e.g., 16:20
	TimestampLongDate      TimestampType = "D" // e.g., 20 April 2021
	TimestampShortDateTime TimestampType = "f" // e.g., 20 April 2021 16:20
	TimestampRelative      TimestampType = "R" // e.g., 2 months ago
)

func FormatTimestamp(t time.Time, style TimestampType) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

func FormatUserMention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

// FormatInteraction renders an application command interaction the way a user
// would have typed it, e.g. "/remind when:10m text:stretch". Option values are
// rendered from the raw payload so no session lookups are needed.
func FormatInteraction(i *dg.InteractionCreate) string {
	if i.Type != dg.InteractionApplicationCommand && i.Type != dg.InteractionApplicationCommandAutocomplete {
		return ""
	}

	data := i.ApplicationCommandData()
	switch data.CommandType {
	case dg.UserApplicationCommand, dg.MessageApplicationCommand:
		return fmt.Sprintf("%s -> %s", data.Name, data.TargetID)
	}

	parts := []string{"/" + data.Name}
	for _, opt := range data.Options {
		parts = append(parts, formatCommandOption(opt))
	}
	return strings.Join(parts, " ")
}

func formatCommandOption(opt *dg.ApplicationCommandInteractionDataOption) string {
	switch opt.Type {
	case dg.ApplicationCommandOptionSubCommand, dg.ApplicationCommandOptionSubCommandGroup:
		subParts := []string{opt.Name}
		for _, subOpt := range opt.Options {
			subParts = append(subParts, formatCommandOption(subOpt))
		}
		return strings.Join(subParts, " ")
	case dg.ApplicationCommandOptionUser:
		return fmt.Sprintf("%s:%s", opt.Name, FormatUserMention(fmt.Sprint(opt.Value)))
	default:
		return fmt.Sprintf("%s:%v", opt.Name, opt.Value)
	}
}
