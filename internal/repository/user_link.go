package repository

import (
	"context"
	"strings"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserLinkRepository interface {
	Upsert(ctx context.Context, link *entity.UserLink) error
	GetByDiscordID(ctx context.Context, discordID int64) (*entity.UserLink, error)
	GetByExternalName(ctx context.Context, name string) (*entity.UserLink, error)
}

type userLinkRepository struct{}

func NewUserLinkRepository() *userLinkRepository {
	return &userLinkRepository{}
}

func (r *userLinkRepository) Upsert(ctx context.Context, link *entity.UserLink) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "discord_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_name", "updated_at"}),
	}).Create(link).Error
}

func (r *userLinkRepository) GetByDiscordID(ctx context.Context, discordID int64) (*entity.UserLink, error) {
	var result entity.UserLink
	if err := xcontext.DB(ctx).Take(&result, "discord_id=?", discordID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByExternalName matches the leaderboard name case-insensitively.
func (r *userLinkRepository) GetByExternalName(ctx context.Context, name string) (*entity.UserLink, error) {
	var result entity.UserLink
	err := xcontext.DB(ctx).
		Take(&result, "LOWER(external_name)=?", strings.ToLower(strings.TrimSpace(name))).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}
