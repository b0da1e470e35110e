package response

import (
	"fmt"
	"log/slog"

	dg "github.com/bwmarrin/discordgo"
	"github.com/glotchimo/warden/internal/utils"
)

// Session is the part of *discordgo.Session the bot talks back through.
type Session interface {
	InteractionRespond(i *dg.Interaction, r *dg.InteractionResponse, options ...dg.RequestOption) error
	InteractionResponseEdit(i *dg.Interaction, edit *dg.WebhookEdit, options ...dg.RequestOption) (*dg.Message, error)
	FollowupMessageCreate(i *dg.Interaction, wait bool, params *dg.WebhookParams, options ...dg.RequestOption) (*dg.Message, error)
	ChannelMessageSendComplex(channelID string, data *dg.MessageSend, options ...dg.RequestOption) (*dg.Message, error)
	UserChannelPermissions(userID, channelID string, options ...dg.RequestOption) (int64, error)
}

type MessageOptions struct {
	Content    string
	Embeds     []*dg.MessageEmbed
	Files      []*dg.File
	Components []dg.MessageComponent
	Ephemeral  bool
}

func (o MessageOptions) flags() dg.MessageFlags {
	if o.Ephemeral {
		return dg.MessageFlagsEphemeral
	}
	return 0
}

type Responder struct {
	s Session
	l *slog.Logger
}

func NewResponder(s Session, l *slog.Logger) *Responder {
	return &Responder{s: s, l: l}
}

func (r *Responder) Session() Session {
	return r.s
}

func (r *Responder) Defer(i *dg.Interaction, ephemeral bool) error {
	resp := &dg.InteractionResponse{
		Type: dg.InteractionResponseDeferredChannelMessageWithSource,
	}
	if ephemeral {
		resp.Data = &dg.InteractionResponseData{Flags: dg.MessageFlagsEphemeral}
	}

	return r.s.InteractionRespond(i, resp)
}

// Respond sends the initial response to an interaction that has not been
// acknowledged yet.
func (r *Responder) Respond(i *dg.Interaction, opts MessageOptions) error {
	return r.s.InteractionRespond(i, &dg.InteractionResponse{
		Type: dg.InteractionResponseChannelMessageWithSource,
		Data: &dg.InteractionResponseData{
			Content:    opts.Content,
			Embeds:     opts.Embeds,
			Files:      opts.Files,
			Components: opts.Components,
			Flags:      opts.flags(),
		},
	})
}

// Edit replaces the original (usually deferred) response.
func (r *Responder) Edit(i *dg.Interaction, opts MessageOptions) error {
	edit := &dg.WebhookEdit{
		Content: &opts.Content,
		Files:   opts.Files,
	}
	if opts.Embeds != nil {
		edit.Embeds = &opts.Embeds
	}
	if opts.Components != nil {
		edit.Components = &opts.Components
	}

	_, err := r.s.InteractionResponseEdit(i, edit)
	return err
}

// Send posts a followup message.
func (r *Responder) Send(i *dg.Interaction, opts MessageOptions) error {
	_, err := r.s.FollowupMessageCreate(i, true, &dg.WebhookParams{
		Content:    opts.Content,
		Embeds:     opts.Embeds,
		Files:      opts.Files,
		Components: opts.Components,
		Flags:      opts.flags(),
	})
	return err
}

func (r *Responder) Autocomplete(i *dg.Interaction, choices []*dg.ApplicationCommandOptionChoice) error {
	if len(choices) > 25 {
		choices = choices[:25]
	}

	return r.s.InteractionRespond(i, &dg.InteractionResponse{
		Type: dg.InteractionApplicationCommandAutocompleteResult,
		Data: &dg.InteractionResponseData{Choices: choices},
	})
}

// Reply answers a chat message in its channel, referencing it.
func (r *Responder) Reply(m *dg.Message, opts MessageOptions) error {
	_, err := r.s.ChannelMessageSendComplex(m.ChannelID, &dg.MessageSend{
		Content:    opts.Content,
		Embeds:     opts.Embeds,
		Files:      opts.Files,
		Components: opts.Components,
		Reference:  m.Reference(),
		AllowedMentions: &dg.MessageAllowedMentions{
			Parse: []dg.AllowedMentionType{dg.AllowedMentionTypeUsers},
		},
	})
	return err
}

// FailureEmbed renders a failure for the user. Internal failures never carry
// their underlying error; the invocation ID is shown so it can be matched to logs.
func (r *Responder) FailureEmbed(f utils.Failure, invocationID string) *dg.MessageEmbed {
	r.l.Warn("handler failure", "type", f.Type.String(), "message", f.Message, "data", f.Data, "invocation", invocationID)

	embed := &dg.MessageEmbed{}
	switch f.Type {
	case utils.ErrInternal:
		embed.Title = "Something Went Wrong"
		embed.Description = "An error occurred while running this command."
		embed.Color = 0xFF0000
		embed.Footer = &dg.MessageEmbedFooter{Text: fmt.Sprintf("Reference: %s", invocationID)}

	case utils.ErrNotAllowed:
		embed.Title = "Not Allowed"
		embed.Description = f.Message
		embed.Color = 0xFF0000

	case utils.ErrNotFound:
		embed.Title = "Not Found"
		embed.Description = f.Message
		embed.Color = 0xFFA500
	}

	return embed
}
