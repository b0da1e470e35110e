// Package listeners wires gateway events to handlers.
package listeners

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/result"
)

// Attacher is the part of *discordgo.Session that registers event handlers.
type Attacher interface {
	AddHandler(handler any) func()
	AddHandlerOnce(handler any) func()
}

// Listener handles one gateway event type E, such as discordgo.MessageCreate.
// Run is only called when Parse is nil or returns an OK result.
type Listener[E any] struct {
	Name  string
	Once  bool
	Parse func(s *dg.Session, e *E) result.Result
	Run   func(s *dg.Session, e *E) error
}

// Handler wraps Run so that errors and panics are logged and go no further.
func (li Listener[E]) Handler(l *slog.Logger) func(*dg.Session, *E) {
	l = l.With("listener", li.Name)

	return func(s *dg.Session, e *E) {
		defer func() {
			if rec := recover(); rec != nil {
				buf := make([]byte, 4096)
				buf = buf[:runtime.Stack(buf, false)]
				l.Error("recovered from panic in listener", "error", fmt.Errorf("panic: %v", rec), "stack", string(buf))
			}
		}()

		if li.Parse != nil {
			if res := li.Parse(s, e); !res.OK() {
				if res.Rejected() {
					l.Debug("listener skipped", "reason", res.Reason())
				}
				return
			}
		}

		if err := li.Run(s, e); err != nil {
			l.Error("error running listener", "error", err)
		}
	}
}

// Set tracks attached listeners so they can be listed and detached together.
type Set struct {
	l      *slog.Logger
	mu     sync.Mutex
	names  []string
	detach []func()
}

func NewSet(l *slog.Logger) *Set {
	return &Set{l: l}
}

// Add attaches li to a through set. It is a function because methods cannot
// take type parameters.
func Add[E any](set *Set, a Attacher, li Listener[E]) {
	h := li.Handler(set.l)

	var remove func()
	if li.Once {
		remove = a.AddHandlerOnce(h)
	} else {
		remove = a.AddHandler(h)
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	set.names = append(set.names, li.Name)
	set.detach = append(set.detach, remove)
}

func (set *Set) Names() []string {
	set.mu.Lock()
	defer set.mu.Unlock()
	return append([]string(nil), set.names...)
}

// Close detaches every listener.
func (set *Set) Close() {
	set.mu.Lock()
	defer set.mu.Unlock()

	for _, remove := range set.detach {
		if remove != nil {
			remove()
		}
	}
	set.names, set.detach = nil, nil
}
