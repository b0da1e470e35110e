package conditions

import (
	"fmt"
	"log/slog"
	"sync"
)

// Factory builds a condition when the registry loads.
type Factory func() (Condition, error)

type entry struct {
	name    Name
	factory Factory
}

// Registry resolves condition names. Factories are registered during startup;
// the first call to LoadAll or Get builds them once and the set is fixed after.
type Registry struct {
	l *slog.Logger

	mu        sync.Mutex
	factories []entry

	once   sync.Once
	loaded map[Name]Condition
}

func NewRegistry(l *slog.Logger) *Registry {
	return &Registry{l: l}
}

func (r *Registry) Register(name Name, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded != nil {
		r.l.Warn("condition registered after load, ignoring", "condition", name)
		return
	}
	r.factories = append(r.factories, entry{name, f})
}

// LoadAll builds every registered condition and returns how many loaded.
// A factory that fails or panics is skipped; for a repeated name the first
// successful load wins.
func (r *Registry) LoadAll() int {
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		loaded := make(map[Name]Condition, len(r.factories))
		for _, e := range r.factories {
			if _, ok := loaded[e.name]; ok {
				continue
			}

			c, err := build(e.factory)
			if err != nil {
				r.l.Warn("error loading condition, skipping", "condition", e.name, "error", err)
				continue
			}
			loaded[e.name] = c
		}
		r.loaded = loaded
	})

	return len(r.loaded)
}

func build(f Factory) (c Condition, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	if f == nil {
		return nil, fmt.Errorf("nil factory")
	}
	c, err = f()
	if err == nil && c == nil {
		err = fmt.Errorf("factory returned no condition")
	}
	return c, err
}

func (r *Registry) Get(name Name) (Condition, bool) {
	r.LoadAll()
	c, ok := r.loaded[name]
	return c, ok
}
