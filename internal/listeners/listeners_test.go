package listeners

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type attacher struct {
	handlers []any
	once     []any
	removed  int
}

func (a *attacher) AddHandler(h any) func() {
	a.handlers = append(a.handlers, h)
	return func() { a.removed++ }
}

func (a *attacher) AddHandlerOnce(h any) func() {
	a.once = append(a.once, h)
	return func() { a.removed++ }
}

func TestParseGatesRun(t *testing.T) {
	runs := 0
	li := Listener[dg.MessageCreate]{
		Name: "prefix",
		Parse: func(_ *dg.Session, m *dg.MessageCreate) result.Result {
			if m.Content == "" {
				return result.None()
			}
			return result.Ok()
		},
		Run: func(*dg.Session, *dg.MessageCreate) error {
			runs++
			return nil
		},
	}
	h := li.Handler(discard)

	h(nil, &dg.MessageCreate{Message: &dg.Message{}})
	h(nil, &dg.MessageCreate{Message: &dg.Message{Content: "!ping"}})

	assert.Equal(t, 1, runs)
}

func TestHandlerContainsFailures(t *testing.T) {
	failing := Listener[dg.Ready]{Name: "failing", Run: func(*dg.Session, *dg.Ready) error {
		return errors.New("boom")
	}}
	panicking := Listener[dg.Ready]{Name: "panicking", Run: func(*dg.Session, *dg.Ready) error {
		panic("boom")
	}}

	assert.NotPanics(t, func() { failing.Handler(discard)(nil, &dg.Ready{}) })
	assert.NotPanics(t, func() { panicking.Handler(discard)(nil, &dg.Ready{}) })
}

func TestSet(t *testing.T) {
	a := &attacher{}
	set := NewSet(discard)

	Add(set, a, Listener[dg.Ready]{Name: "ready", Once: true, Run: func(*dg.Session, *dg.Ready) error { return nil }})
	Add(set, a, Listener[dg.MessageCreate]{Name: "messages", Run: func(*dg.Session, *dg.MessageCreate) error { return nil }})

	require.Len(t, a.once, 1)
	require.Len(t, a.handlers, 1)
	_, ok := a.handlers[0].(func(*dg.Session, *dg.MessageCreate))
	assert.True(t, ok, "handler must have the concrete event signature")
	assert.Equal(t, []string{"ready", "messages"}, set.Names())

	set.Close()
	assert.Equal(t, 2, a.removed)
	assert.Empty(t, set.Names())
}
