// Package conditions holds named preconditions that commands declare and the
// runner that evaluates them.
package conditions

import (
	"context"

	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/result"
)

// Name is the closed set of condition keys a command may declare.
type Name string

const (
	GuildOnly    Name = "GuildOnly"
	BotOwnerOnly Name = "BotOwnerOnly"
	AdminOnly    Name = "AdminOnly"
)

var names = []Name{GuildOnly, BotOwnerOnly, AdminOnly}

func Names() []Name {
	return append([]Name(nil), names...)
}

func Known(n Name) bool {
	for _, k := range names {
		if k == n {
			return true
		}
	}
	return false
}

// Condition checks one invocation, with one method per invocation kind.
type Condition interface {
	Message(ctx context.Context, c *handlers.Context) (result.Result, error)
	ChatInput(ctx context.Context, c *handlers.Context) (result.Result, error)
	ContextMenu(ctx context.Context, c *handlers.Context) (result.Result, error)
}

// Func is a Condition that applies the same check to every kind.
type Func func(ctx context.Context, c *handlers.Context) (result.Result, error)

func (f Func) Message(ctx context.Context, c *handlers.Context) (result.Result, error) {
	return f(ctx, c)
}

func (f Func) ChatInput(ctx context.Context, c *handlers.Context) (result.Result, error) {
	return f(ctx, c)
}

func (f Func) ContextMenu(ctx context.Context, c *handlers.Context) (result.Result, error) {
	return f(ctx, c)
}
