package models

import "time"

type Outcome string

const (
	OutcomeExecuted Outcome = "executed"
	OutcomeRejected Outcome = "rejected"
	OutcomeFailed   Outcome = "failed"
)

// Invocation is the audit record of one dispatched command.
type Invocation struct {
	ID        string
	Command   string
	Kind      string
	UserID    string
	GuildID   string
	ChannelID string
	Outcome   Outcome
	Reason    string
	Duration  time.Duration
	Created   time.Time
}

func (i Invocation) Map() map[string]any {
	return map[string]any{
		"id":          i.ID,
		"command":     i.Command,
		"kind":        i.Kind,
		"user_id":     i.UserID,
		"guild_id":    i.GuildID,
		"channel_id":  i.ChannelID,
		"outcome":     string(i.Outcome),
		"reason":      i.Reason,
		"duration_ms": i.Duration.Milliseconds(),
	}
}

func (i Invocation) Table() Table {
	return TableInvocations
}
