// Package responsetest provides a recording fake of the gateway session.
package responsetest

import (
	"sync"

	dg "github.com/bwmarrin/discordgo"
)

// Session records every outbound call. Set EditErr to make edits of the
// original response fail, and Perms to answer permission lookups.
type Session struct {
	mu sync.Mutex

	Responses []*dg.InteractionResponse
	Edits     []*dg.WebhookEdit
	Followups []*dg.WebhookParams
	Sends     []*dg.MessageSend

	EditErr  error
	Perms    map[string]int64
	PermsErr error
}

func New() *Session {
	return &Session{Perms: map[string]int64{}}
}

func (s *Session) InteractionRespond(_ *dg.Interaction, r *dg.InteractionResponse, _ ...dg.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Responses = append(s.Responses, r)
	return nil
}

func (s *Session) InteractionResponseEdit(_ *dg.Interaction, e *dg.WebhookEdit, _ ...dg.RequestOption) (*dg.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.EditErr != nil {
		return nil, s.EditErr
	}
	s.Edits = append(s.Edits, e)
	return &dg.Message{}, nil
}

func (s *Session) FollowupMessageCreate(_ *dg.Interaction, _ bool, p *dg.WebhookParams, _ ...dg.RequestOption) (*dg.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Followups = append(s.Followups, p)
	return &dg.Message{}, nil
}

func (s *Session) ChannelMessageSendComplex(_ string, d *dg.MessageSend, _ ...dg.RequestOption) (*dg.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sends = append(s.Sends, d)
	return &dg.Message{}, nil
}

func (s *Session) UserChannelPermissions(userID, _ string, _ ...dg.RequestOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PermsErr != nil {
		return 0, s.PermsErr
	}
	return s.Perms[userID], nil
}

// Total counts every outbound reply of any shape.
func (s *Session) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Responses) + len(s.Edits) + len(s.Followups) + len(s.Sends)
}

// Texts returns the content of every message-shaped reply in call order per
// kind: sends, then followups, then edits, then responses.
func (s *Session) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, m := range s.Sends {
		out = append(out, m.Content)
	}
	for _, f := range s.Followups {
		out = append(out, f.Content)
	}
	for _, e := range s.Edits {
		if e.Content != nil {
			out = append(out, *e.Content)
		}
	}
	for _, r := range s.Responses {
		if r.Data != nil && r.Data.Content != "" {
			out = append(out, r.Data.Content)
		}
	}
	return out
}
