package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuildMap(t *testing.T) {
	g := Guild{ID: "1", Name: "home", Settings: GuildSettings{CommandSetHash: "abc"}}

	m := g.Map()
	assert.Equal(t, "1", m["id"])
	assert.Equal(t, "home", m["name"])
	assert.JSONEq(t, `{"command_set_hash":"abc"}`, m["settings"].(string))
	assert.Equal(t, TableGuilds, g.Table())
}

func TestInvocationMap(t *testing.T) {
	inv := Invocation{
		ID:       "c0ffee",
		Command:  "ping",
		Kind:     "message",
		UserID:   "42",
		Outcome:  OutcomeRejected,
		Reason:   "cooldown",
		Duration: 1500 * time.Millisecond,
	}

	m := inv.Map()
	assert.Equal(t, "rejected", m["outcome"])
	assert.Equal(t, int64(1500), m["duration_ms"])
	assert.Equal(t, "", m["guild_id"])
	assert.Equal(t, TableInvocations, inv.Table())
}
