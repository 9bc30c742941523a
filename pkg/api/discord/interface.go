package discord

import "context"

type IEndpoint interface {
	SendMessage(ctx context.Context, channelID int64, msg Message) (int64, error)
	EditMessage(ctx context.Context, channelID, messageID int64, msg Message) error
	UpsertEmbedField(ctx context.Context, channelID, messageID int64, field Field) error
	SendDirectMessage(ctx context.Context, userID int64, msg Message) error
	GiveRole(ctx context.Context, guildID, userID, roleID int64) error
}
