package general

import (
	"context"
	"io"
	"log/slog"
	"testing"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/commands"
	"github.com/glotchimo/warden/internal/handlers"
	"github.com/glotchimo/warden/internal/response"
	"github.com/glotchimo/warden/internal/response/responsetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setup(t *testing.T) (*commands.Registry, *responsetest.Session, *response.Responder) {
	t.Helper()
	r := commands.NewRegistry()
	require.NoError(t, r.Register(Commands(r, "!")...))
	s := responsetest.New()
	return r, s, response.NewResponder(s, discard)
}

func messageContext(rp *response.Responder, command string, args ...string) *handlers.Context {
	m := &dg.MessageCreate{Message: &dg.Message{ID: "175928847299117063", ChannelID: "c1", GuildID: "g1", Author: &dg.User{ID: "u1"}}}
	return handlers.NewMessageContext(m, command, args, rp, discard)
}

func TestPing(t *testing.T) {
	r, s, rp := setup(t)
	cmd, ok := r.Resolve("p")
	require.True(t, ok)

	require.NoError(t, cmd.MessageRun(context.Background(), messageContext(rp, "ping")))
	require.Len(t, s.Sends, 1)
	assert.Equal(t, "Pong!", s.Sends[0].Embeds[0].Title)
	assert.Contains(t, s.Sends[0].Embeds[0].Description, "Round trip")
}

func TestHelpList(t *testing.T) {
	r, s, rp := setup(t)
	cmd, _ := r.Get("help")

	require.NoError(t, cmd.MessageRun(context.Background(), messageContext(rp, "help")))
	require.Len(t, s.Sends, 1)

	embed := s.Sends[0].Embeds[0]
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, Category, embed.Fields[0].Name)
	assert.Equal(t, "`help` `ping` `serverinfo`", embed.Fields[0].Value)
}

func TestHelpDescribe(t *testing.T) {
	r, s, rp := setup(t)
	cmd, _ := r.Get("help")

	require.NoError(t, cmd.MessageRun(context.Background(), messageContext(rp, "help", "SI")))
	embed := s.Sends[0].Embeds[0]
	assert.Equal(t, "serverinfo", embed.Title)

	var fields []string
	for _, f := range embed.Fields {
		fields = append(fields, f.Name)
	}
	assert.Equal(t, []string{"Aliases", "Conditions", "Usage"}, fields)

	require.NoError(t, cmd.MessageRun(context.Background(), messageContext(rp, "help", "nope")))
	assert.Equal(t, "Not Found", s.Sends[1].Embeds[0].Title)
}

func TestHelpAutocomplete(t *testing.T) {
	r, s, rp := setup(t)
	cmd, _ := r.Get("help")

	i := &dg.InteractionCreate{Interaction: &dg.Interaction{
		Type:    dg.InteractionApplicationCommandAutocomplete,
		GuildID: "g1",
		Member:  &dg.Member{User: &dg.User{ID: "u1"}},
		Data: dg.ApplicationCommandInteractionData{
			Name: "help",
			Options: []*dg.ApplicationCommandInteractionDataOption{{
				Name:    "command",
				Type:    dg.ApplicationCommandOptionString,
				Value:   "p",
				Focused: true,
			}},
		},
	}}
	c := handlers.NewInteractionContext(i, handlers.KindAutocomplete, rp, discard)

	require.NoError(t, cmd.AutocompleteRun(context.Background(), c))
	require.Len(t, s.Responses, 1)
	require.Len(t, s.Responses[0].Data.Choices, 1)
	assert.Equal(t, "ping", s.Responses[0].Data.Choices[0].Name)
}

func TestGuildEmbed(t *testing.T) {
	g := &dg.Guild{
		ID:          "175928847299117063",
		Name:        "Home",
		OwnerID:     "42",
		MemberCount: 12,
		Roles:       []*dg.Role{{}, {}},
	}

	embed := guildEmbed(g)
	assert.Equal(t, "Server Information: Home", embed.Title)
	assert.Contains(t, embed.Description, "• Owner: <@42>")
	assert.Contains(t, embed.Description, "• Members: 12")
	assert.Contains(t, embed.Description, "• Roles: 2")
	assert.Contains(t, embed.Description, "• Created: <t:")
	assert.Nil(t, embed.Thumbnail)
}
