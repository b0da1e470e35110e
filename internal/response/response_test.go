package response

import (
	"io"
	"log/slog"
	"testing"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/response/responsetest"
	"github.com/glotchimo/warden/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResponder() (*Responder, *responsetest.Session) {
	s := responsetest.New()
	return NewResponder(s, slog.New(slog.NewTextHandler(io.Discard, nil))), s
}

func TestDeferEphemeral(t *testing.T) {
	r, s := newTestResponder()

	require.NoError(t, r.Defer(&dg.Interaction{}, true))
	require.Len(t, s.Responses, 1)
	assert.Equal(t, dg.InteractionResponseDeferredChannelMessageWithSource, s.Responses[0].Type)
	assert.Equal(t, dg.MessageFlagsEphemeral, s.Responses[0].Data.Flags)

	require.NoError(t, r.Defer(&dg.Interaction{}, false))
	assert.Nil(t, s.Responses[1].Data)
}

func TestSendEphemeralFollowup(t *testing.T) {
	r, s := newTestResponder()

	require.NoError(t, r.Send(&dg.Interaction{}, MessageOptions{Content: "hi", Ephemeral: true}))
	require.Len(t, s.Followups, 1)
	assert.Equal(t, "hi", s.Followups[0].Content)
	assert.Equal(t, dg.MessageFlagsEphemeral, s.Followups[0].Flags)
}

func TestEditLeavesEmbedsUntouched(t *testing.T) {
	r, s := newTestResponder()

	require.NoError(t, r.Edit(&dg.Interaction{}, MessageOptions{Content: "done"}))
	require.Len(t, s.Edits, 1)
	assert.Equal(t, "done", *s.Edits[0].Content)
	assert.Nil(t, s.Edits[0].Embeds)
}

func TestAutocompleteCapsChoices(t *testing.T) {
	r, s := newTestResponder()

	choices := make([]*dg.ApplicationCommandOptionChoice, 30)
	for i := range choices {
		choices[i] = &dg.ApplicationCommandOptionChoice{Name: "c", Value: i}
	}

	require.NoError(t, r.Autocomplete(&dg.Interaction{}, choices))
	assert.Len(t, s.Responses[0].Data.Choices, 25)
}

func TestReplyReferencesMessage(t *testing.T) {
	r, s := newTestResponder()

	m := &dg.Message{ID: "m1", ChannelID: "c1", GuildID: "g1"}
	require.NoError(t, r.Reply(m, MessageOptions{Content: "pong"}))
	require.Len(t, s.Sends, 1)
	assert.Equal(t, "pong", s.Sends[0].Content)
	assert.Equal(t, "m1", s.Sends[0].Reference.MessageID)
}

func TestFailureEmbedHidesInternalError(t *testing.T) {
	r, _ := newTestResponder()

	embed := r.FailureEmbed(utils.Failure{
		Type:    utils.ErrInternal,
		Message: "db exploded",
		Data:    map[string]any{"error": "connection refused"},
	}, "inv1")

	assert.NotContains(t, embed.Description, "db exploded")
	assert.NotContains(t, embed.Description, "connection refused")
	assert.Contains(t, embed.Footer.Text, "inv1")

	embed = r.FailureEmbed(utils.Failure{Type: utils.ErrNotAllowed, Message: "nope"}, "inv2")
	assert.Equal(t, "nope", embed.Description)
}
