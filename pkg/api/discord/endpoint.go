package discord

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/taskmaster/config"
)

const (
	sendMessageResource = "send_message"
	giveRoleResource    = "give_role"
)

type Endpoint struct {
	session           *discordgo.Session
	rateLimitResource *xsync.MapOf[string, *xsync.MapOf[string, time.Time]]
}

func New(cfg config.DiscordConfigs) (*Endpoint, error) {
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}

	// Rate limits are reported back to the caller, the scheduler retries on
	// the next tick instead of blocking inside the client.
	session.ShouldRetryOnRateLimit = false

	return &Endpoint{
		session:           session,
		rateLimitResource: xsync.NewMapOf[*xsync.MapOf[string, time.Time]](),
	}, nil
}

func (e *Endpoint) SendMessage(ctx context.Context, channelID int64, msg Message) (int64, error) {
	if err := e.checkLimitingResource(sendMessageResource, id(channelID)); err != nil {
		return 0, err
	}

	m, err := e.session.ChannelMessageSendComplex(id(channelID), toMessageSend(msg), discordgo.WithContext(ctx))
	if err != nil {
		return 0, e.handleError(err, sendMessageResource, id(channelID))
	}

	return parseID(m.ID)
}

func (e *Endpoint) EditMessage(ctx context.Context, channelID, messageID int64, msg Message) error {
	if msg.Embed == nil {
		_, err := e.session.ChannelMessageEdit(id(channelID), id(messageID), msg.Content, discordgo.WithContext(ctx))
		return e.handleError(err, sendMessageResource, id(channelID))
	}

	_, err := e.session.ChannelMessageEditEmbed(id(channelID), id(messageID), toEmbed(*msg.Embed), discordgo.WithContext(ctx))
	return e.handleError(err, sendMessageResource, id(channelID))
}

// UpsertEmbedField replaces the value of the field with the same name in the
// first embed of the message, or appends the field if it does not exist.
func (e *Endpoint) UpsertEmbedField(ctx context.Context, channelID, messageID int64, field Field) error {
	m, err := e.session.ChannelMessage(id(channelID), id(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return e.handleError(err, sendMessageResource, id(channelID))
	}

	if len(m.Embeds) == 0 {
		return errors.New("message has no embed")
	}

	embed := m.Embeds[0]
	found := false
	for _, f := range embed.Fields {
		if f.Name == field.Name {
			f.Value = field.Value
			f.Inline = field.Inline
			found = true
			break
		}
	}

	if !found {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}

	_, err = e.session.ChannelMessageEditEmbed(id(channelID), id(messageID), embed, discordgo.WithContext(ctx))
	return e.handleError(err, sendMessageResource, id(channelID))
}

func (e *Endpoint) SendDirectMessage(ctx context.Context, userID int64, msg Message) error {
	channel, err := e.session.UserChannelCreate(id(userID), discordgo.WithContext(ctx))
	if err != nil {
		return e.handleError(err, sendMessageResource, id(userID))
	}

	_, err = e.session.ChannelMessageSendComplex(channel.ID, toMessageSend(msg), discordgo.WithContext(ctx))
	return e.handleError(err, sendMessageResource, channel.ID)
}

// GiveRole is idempotent, granting a role the member already holds succeeds.
func (e *Endpoint) GiveRole(ctx context.Context, guildID, userID, roleID int64) error {
	if err := e.checkLimitingResource(giveRoleResource, id(guildID)); err != nil {
		return err
	}

	err := e.session.GuildMemberRoleAdd(id(guildID), id(userID), id(roleID), discordgo.WithContext(ctx))
	return e.handleError(err, giveRoleResource, id(guildID))
}

func (e *Endpoint) handleError(err error, resource, identifier string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *discordgo.RateLimitError
	if errors.As(err, &rateLimitErr) {
		resetAt := time.Now()
		if rateLimitErr.RateLimit != nil && rateLimitErr.TooManyRequests != nil {
			resetAt = resetAt.Add(rateLimitErr.RetryAfter)
		}

		return e.recordRateLimit(resource, identifier, resetAt)
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return errors.Join(ErrNotFound, err)
	}

	return err
}

func (e *Endpoint) checkLimitingResource(resource, identifier string) error {
	if limit, ok := e.rateLimitResource.Load(resource); ok {
		if resetAt, ok := limit.Load(identifier); ok {
			if resetAt.After(time.Now()) {
				return wrapRateLimit(resetAt)
			}

			// If the rate limit is reset, delete the limit for this resource.
			limit.Delete(identifier)
		}
	}

	return nil
}

func (e *Endpoint) recordRateLimit(resource, identifier string, resetAt time.Time) error {
	resourceLimiter, _ := e.rateLimitResource.LoadOrStore(resource, xsync.NewMapOf[time.Time]())
	resourceLimiter.Store(identifier, resetAt)
	return wrapRateLimit(resetAt)
}
