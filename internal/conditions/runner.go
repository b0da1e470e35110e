package conditions

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/result"
)

type Runner struct {
	r *Registry
	l *slog.Logger
}

func NewRunner(r *Registry, l *slog.Logger) *Runner {
	return &Runner{r: r, l: l}
}

// Run evaluates names in order and stops at the first one that does not pass.
// Missing conditions, errors and panics all become rejections naming the
// condition; nothing is returned to the caller as an error.
func (rn *Runner) Run(ctx context.Context, names []Name, c *handlers.Context, kind handlers.Kind) result.Result {
	for _, name := range names {
		cond, ok := rn.r.Get(name)
		if !ok {
			c.Logger.Warn("condition not found", "condition", name)
			return result.Reason(fmt.Sprintf("Condition %q was not found", name))
		}

		res, err := rn.check(ctx, cond, c, kind)
		if err != nil {
			c.Logger.Error("error running condition", "condition", name, "error", err)
			return result.Reason(fmt.Sprintf("Condition %q could not be checked", name))
		}
		if !res.OK() {
			return result.Reason(res.ReasonOr(fmt.Sprintf("Condition %q was not met", name)))
		}
	}

	return result.Ok()
}

func (rn *Runner) check(ctx context.Context, cond Condition, c *handlers.Context, kind handlers.Kind) (res result.Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()

	switch kind {
	case handlers.KindMessage:
		return cond.Message(ctx, c)
	case handlers.KindChatInput:
		return cond.ChatInput(ctx, c)
	case handlers.KindContextMenu:
		return cond.ContextMenu(ctx, c)
	default:
		return result.None(), fmt.Errorf("conditions do not apply to %s invocations", kind)
	}
}
