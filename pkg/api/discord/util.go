package discord

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrRateLimit = errors.New("rate limit")
	ErrNotFound  = errors.New("not found")
)

type rateLimitError struct {
	resetAt time.Time
}

func (e rateLimitError) Error() string {
	return fmt.Sprintf("rate limit until %s", e.resetAt.Format(time.RFC3339))
}

func (e rateLimitError) Is(target error) bool {
	return target == ErrRateLimit
}

func wrapRateLimit(resetAt time.Time) error {
	return rateLimitError{resetAt: resetAt}
}

// IsRateLimit returns the time the limited resource becomes available again.
func IsRateLimit(err error) (time.Time, bool) {
	var rl rateLimitError
	if !errors.As(err, &rl) {
		return time.Time{}, false
	}

	return rl.resetAt, true
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func toMessageSend(msg Message) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: msg.Content}
	if msg.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(*msg.Embed)}
	}

	if len(msg.Buttons) > 0 {
		buttons := []discordgo.MessageComponent{}
		for _, b := range msg.Buttons {
			buttons = append(buttons, discordgo.Button{
				Label:    b.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: b.CustomID,
			})
		}

		send.Components = []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
	}

	return send
}

func toEmbed(e Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		URL:         e.URL,
		Color:       e.Color,
	}

	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}

	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}

	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return embed
}
