// Package notify posts rendered announcements to the chat platform.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/api/discord"
)

var (
	// ErrNotConfigured is returned when the target channel or role id is zero.
	ErrNotConfigured = errors.New("target is not configured")

	// ErrMessageNotFound is returned when the message to edit was deleted.
	ErrMessageNotFound = errors.New("message not found")
)

type Dispatcher interface {
	PostAnnouncement(ctx context.Context, channelID int64, a model.Announcement) (int64, error)
	PostReminder(ctx context.Context, channelID int64, a model.Announcement) error
	EditAnnouncement(ctx context.Context, channelID, messageID int64, a model.Announcement) error
	UpdateField(ctx context.Context, channelID, messageID int64, field model.AnnouncementField) error

	// GrantRole is idempotent, granting a role the user already holds is not
	// an error.
	GrantRole(ctx context.Context, userID, roleID int64) error
	SendDirect(ctx context.Context, userID int64, a model.Announcement) error
}

type dispatcher struct {
	guildID  int64
	endpoint discord.IEndpoint
}

func NewDispatcher(guildID int64, endpoint discord.IEndpoint) *dispatcher {
	return &dispatcher{guildID: guildID, endpoint: endpoint}
}

func (d *dispatcher) PostAnnouncement(ctx context.Context, channelID int64, a model.Announcement) (int64, error) {
	if channelID == 0 {
		return 0, ErrNotConfigured
	}

	messageID, err := d.endpoint.SendMessage(ctx, channelID, toMessage(a))
	if err != nil {
		return 0, convertError(err)
	}

	return messageID, nil
}

func (d *dispatcher) PostReminder(ctx context.Context, channelID int64, a model.Announcement) error {
	_, err := d.PostAnnouncement(ctx, channelID, a)
	return err
}

func (d *dispatcher) EditAnnouncement(ctx context.Context, channelID, messageID int64, a model.Announcement) error {
	if channelID == 0 || messageID == 0 {
		return ErrNotConfigured
	}

	return convertError(d.endpoint.EditMessage(ctx, channelID, messageID, toMessage(a)))
}

func (d *dispatcher) UpdateField(ctx context.Context, channelID, messageID int64, field model.AnnouncementField) error {
	if channelID == 0 || messageID == 0 {
		return ErrNotConfigured
	}

	return convertError(d.endpoint.UpsertEmbedField(ctx, channelID, messageID, discord.Field{
		Name:   field.Name,
		Value:  field.Value,
		Inline: field.Inline,
	}))
}

func (d *dispatcher) GrantRole(ctx context.Context, userID, roleID int64) error {
	if d.guildID == 0 || roleID == 0 {
		return ErrNotConfigured
	}

	return convertError(d.endpoint.GiveRole(ctx, d.guildID, userID, roleID))
}

func (d *dispatcher) SendDirect(ctx context.Context, userID int64, a model.Announcement) error {
	return convertError(d.endpoint.SendDirectMessage(ctx, userID, toMessage(a)))
}

func toMessage(a model.Announcement) discord.Message {
	msg := discord.Message{Content: a.Content}
	if a.Title != "" || a.Description != "" || len(a.Fields) > 0 {
		embed := &discord.Embed{
			Title:       a.Title,
			Description: a.Description,
			Color:       a.Color,
			Footer:      a.Footer,
			Timestamp:   time.Now(),
		}

		for _, f := range a.Fields {
			embed.Fields = append(embed.Fields, discord.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}

		msg.Embed = embed
	}

	for _, b := range a.Buttons {
		msg.Buttons = append(msg.Buttons, discord.Button{Label: b.Label, CustomID: b.CustomID})
	}

	return msg
}

func convertError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, discord.ErrNotFound) {
		return errors.Join(ErrMessageNotFound, err)
	}

	return err
}
