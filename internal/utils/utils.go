package utils

import (
	"runtime/debug"

	dg "github.com/bwmarrin/discordgo"
	"github.com/rs/xid"
)

func GenerateID() string {
	return xid.New().String()
}

// MapOptions indexes the top-level options of an application command by name,
// descending into a leading subcommand or subcommand group.
func MapOptions(i *dg.InteractionCreate) map[string]*dg.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	for len(opts) == 1 && (opts[0].Type == dg.ApplicationCommandOptionSubCommand || opts[0].Type == dg.ApplicationCommandOptionSubCommandGroup) {
		opts = opts[0].Options
	}

	om := make(map[string]*dg.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		om[opt.Name] = opt
	}
	return om
}

// FocusedOption returns the option the user is typing into during autocomplete.
func FocusedOption(options map[string]*dg.ApplicationCommandInteractionDataOption) *dg.ApplicationCommandInteractionDataOption {
	for _, opt := range options {
		if opt.Focused {
			return opt
		}
	}
	return nil
}

func GetCommit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}
