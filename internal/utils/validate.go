package utils

import (
	"fmt"
	"strings"

	dg "github.com/bwmarrin/discordgo"
)

const (
	maxCommandNameLength        = 32
	maxCommandDescriptionLength = 100
	maxOptionsPerCommand        = 25
	maxChoicesPerOption         = 25
	maxChoiceNameLength         = 100
	maxChoiceValueLength        = 100
)

type ValidationResult struct {
	Command     *dg.ApplicationCommand
	WasModified bool
	Errors      []string
}

// ValidateCommand trims an application command definition to the limits the
// API enforces. The definition is copied first so the caller's value is left
// untouched.
func ValidateCommand(cmd *dg.ApplicationCommand) ValidationResult {
	c := *cmd
	result := ValidationResult{Command: &c}

	// A nil value records a truncation the caller already performed.
	fix := func(field string, value *string, limit int) {
		if value != nil && len(*value) <= limit {
			return
		}
		if value != nil {
			*value = (*value)[:limit]
		}
		result.WasModified = true
		result.Errors = append(result.Errors, fmt.Sprintf("%s was truncated", field))
	}

	if c.Type == 0 || c.Type == dg.ChatApplicationCommand {
		if lower := strings.ToLower(c.Name); lower != c.Name {
			c.Name = lower
			result.WasModified = true
			result.Errors = append(result.Errors, "command name was lowercased")
		}
	}
	fix("command name", &c.Name, maxCommandNameLength)
	fix("command description", &c.Description, maxCommandDescriptionLength)

	if len(c.Options) > maxOptionsPerCommand {
		result.WasModified = true
		result.Errors = append(result.Errors, "excess options were removed")
	}
	c.Options = validateOptions(c.Options, fix)

	return result
}

func validateOptions(opts []*dg.ApplicationCommandOption, fix func(string, *string, int)) []*dg.ApplicationCommandOption {
	if len(opts) > maxOptionsPerCommand {
		opts = opts[:maxOptionsPerCommand]
	}

	out := make([]*dg.ApplicationCommandOption, len(opts))
	for i, opt := range opts {
		o := *opt
		fix("option name", &o.Name, maxCommandNameLength)
		fix("option description", &o.Description, maxCommandDescriptionLength)

		choices := o.Choices
		if len(choices) > maxChoicesPerOption {
			choices = choices[:maxChoicesPerOption]
			fix("option choices", nil, 0)
		}
		o.Choices = make([]*dg.ApplicationCommandOptionChoice, len(choices))
		for j, choice := range choices {
			ch := *choice
			fix("choice name", &ch.Name, maxChoiceNameLength)
			if s, ok := ch.Value.(string); ok {
				fix("choice value", &s, maxChoiceValueLength)
				ch.Value = s
			}
			o.Choices[j] = &ch
		}

		o.Options = validateOptions(o.Options, fix)
		out[i] = &o
	}
	return out
}
