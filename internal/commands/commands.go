// Package commands describes commands and the registry the dispatcher
// resolves them from.
package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/conditions"
	"github.com/glotchimo/warden/internal/handlers"
)

var (
	ErrEmptyName        = errors.New("command name is empty")
	ErrDuplicateName    = errors.New("command name or alias already registered")
	ErrNoHandler        = errors.New("command has no message, chat input or context menu handler")
	ErrUnknownCondition = errors.New("command declares an unknown condition")
)

// Handler runs a command for one invocation.
type Handler func(ctx context.Context, c *handlers.Context) error

// Command is immutable once registered.
type Command struct {
	Name        string
	Description string
	Category    string
	Aliases     []string

	// ClientPermissions are required of the bot, UserPermissions of the caller.
	ClientPermissions int64
	UserPermissions   int64

	Cooldown  time.Duration
	OwnerOnly bool

	// Guilds restricts the command to these guild IDs when non-empty.
	Guilds     []string
	Conditions []conditions.Name

	// Definition is the application command registered with Discord; commands
	// without one are only reachable by prefix.
	Definition *dg.ApplicationCommand

	MessageRun      Handler
	ChatInputRun    Handler
	ContextMenuRun  Handler
	AutocompleteRun Handler
}

// HandlerFor returns the handler for an invocation kind, or nil.
func (c *Command) HandlerFor(kind handlers.Kind) Handler {
	switch kind {
	case handlers.KindMessage:
		return c.MessageRun
	case handlers.KindChatInput:
		return c.ChatInputRun
	case handlers.KindContextMenu:
		return c.ContextMenuRun
	case handlers.KindAutocomplete:
		return c.AutocompleteRun
	}
	return nil
}

func (c *Command) AllowedIn(guildID string) bool {
	return len(c.Guilds) == 0 || slices.Contains(c.Guilds, guildID)
}

// Registry is populated at startup and read-only afterwards.
type Registry struct {
	byName  map[string]*Command
	byAlias map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]*Command),
		byAlias: make(map[string]*Command),
	}
}

// Register adds cmds, stopping at the first invalid one. Names and aliases
// share one namespace.
func (r *Registry) Register(cmds ...*Command) error {
	for _, cmd := range cmds {
		if err := r.register(cmd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) register(cmd *Command) error {
	if cmd.Name == "" {
		return ErrEmptyName
	}
	if cmd.MessageRun == nil && cmd.ChatInputRun == nil && cmd.ContextMenuRun == nil {
		return fmt.Errorf("%w: %s", ErrNoHandler, cmd.Name)
	}
	for _, name := range cmd.Conditions {
		if !conditions.Known(name) {
			return fmt.Errorf("%w: %s declares %q", ErrUnknownCondition, cmd.Name, name)
		}
	}

	keys := append([]string{cmd.Name}, cmd.Aliases...)
	for i, key := range keys {
		if r.taken(key) || slices.Contains(keys[:i], key) {
			return fmt.Errorf("%w: %q (%s)", ErrDuplicateName, key, cmd.Name)
		}
	}

	r.byName[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.byAlias[alias] = cmd
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	_, name := r.byName[key]
	_, alias := r.byAlias[key]
	return name || alias
}

// Get looks up a command by its name only.
func (r *Registry) Get(name string) (*Command, bool) {
	cmd, ok := r.byName[name]
	return cmd, ok
}

// Resolve looks up a command by exact name, then by alias.
func (r *Registry) Resolve(key string) (*Command, bool) {
	if cmd, ok := r.byName[key]; ok {
		return cmd, true
	}
	cmd, ok := r.byAlias[key]
	return cmd, ok
}

// All returns every command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.byName))
	for _, cmd := range r.byName {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Definitions returns the application commands to register for guildID, or
// the global set when guildID is empty.
func (r *Registry) Definitions(guildID string) []*dg.ApplicationCommand {
	var defs []*dg.ApplicationCommand
	for _, cmd := range r.All() {
		if cmd.Definition == nil {
			continue
		}
		if (guildID == "" && len(cmd.Guilds) == 0) || (guildID != "" && len(cmd.Guilds) > 0 && cmd.AllowedIn(guildID)) {
			defs = append(defs, cmd.Definition)
		}
	}
	return defs
}
