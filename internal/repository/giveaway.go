package repository

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *entity.Giveaway) error
	GetByMessageID(ctx context.Context, messageID int64) (*entity.Giveaway, error)
	GetByMessageIDForUpdate(ctx context.Context, messageID int64) (*entity.Giveaway, error)
	GetDue(ctx context.Context, now time.Time) ([]entity.Giveaway, error)
	GetRunning(ctx context.Context, now time.Time) ([]entity.Giveaway, error)
	MarkDrawn(ctx context.Context, messageID int64) error
	Deactivate(ctx context.Context, messageID int64) error
	MarkAnnounced(ctx context.Context, messageID int64) error

	// Entry
	CreateEntry(ctx context.Context, entry *entity.GiveawayEntry) (bool, error)
	CountEntries(ctx context.Context, messageID int64) (int64, error)
	GetEntryUserIDs(ctx context.Context, messageID int64) ([]int64, error)

	// Winner
	CreateWinners(ctx context.Context, messageID int64, userIDs []int64) error
	GetWinnerUserIDs(ctx context.Context, messageID int64) ([]int64, error)
}

type giveawayRepository struct{}

func NewGiveawayRepository() *giveawayRepository {
	return &giveawayRepository{}
}

func (r *giveawayRepository) Create(ctx context.Context, giveaway *entity.Giveaway) error {
	return xcontext.DB(ctx).Create(giveaway).Error
}

func (r *giveawayRepository) GetByMessageID(ctx context.Context, messageID int64) (*entity.Giveaway, error) {
	var result entity.Giveaway
	if err := xcontext.DB(ctx).Take(&result, "message_id=?", messageID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByMessageIDForUpdate locks the row until the end of the transaction of
// ctx. The draw updates the same row, so an entry is either seen by the draw
// or rejected.
func (r *giveawayRepository) GetByMessageIDForUpdate(ctx context.Context, messageID int64) (*entity.Giveaway, error) {
	var result entity.Giveaway
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "message_id=?", messageID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetDue returns the active giveaways past their end and the drawn ones whose
// result was not announced yet.
func (r *giveawayRepository) GetDue(ctx context.Context, now time.Time) ([]entity.Giveaway, error) {
	var result []entity.Giveaway
	err := xcontext.DB(ctx).
		Where("(is_active=? AND ends_at<=?) OR (drawn=? AND announced=?)", true, now, true, false).
		Order("ends_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giveawayRepository) GetRunning(ctx context.Context, now time.Time) ([]entity.Giveaway, error) {
	var result []entity.Giveaway
	err := xcontext.DB(ctx).
		Where("is_active=? AND ends_at>?", true, now).
		Order("ends_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MarkDrawn closes an active giveaway and records that winners were chosen.
func (r *giveawayRepository) MarkDrawn(ctx context.Context, messageID int64) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.Giveaway{}).
		Where("message_id=? AND is_active=? AND drawn=?", messageID, true, false).
		Updates(map[string]any{"is_active": false, "drawn": true}))
}

// Deactivate closes an active giveaway without a draw.
func (r *giveawayRepository) Deactivate(ctx context.Context, messageID int64) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.Giveaway{}).
		Where("message_id=? AND is_active=?", messageID, true).
		Update("is_active", false))
}

func (r *giveawayRepository) MarkAnnounced(ctx context.Context, messageID int64) error {
	return compareAndSet(xcontext.DB(ctx), &entity.Giveaway{}, "message_id", messageID, "announced")
}

// CreateEntry returns false if the user already entered.
func (r *giveawayRepository) CreateEntry(ctx context.Context, entry *entity.GiveawayEntry) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *giveawayRepository) CountEntries(ctx context.Context, messageID int64) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.GiveawayEntry{}).
		Where("message_id=?", messageID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *giveawayRepository) GetEntryUserIDs(ctx context.Context, messageID int64) ([]int64, error) {
	var result []int64
	err := xcontext.DB(ctx).Model(&entity.GiveawayEntry{}).
		Where("message_id=?", messageID).
		Order("created_at ASC, user_id ASC").
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *giveawayRepository) CreateWinners(ctx context.Context, messageID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	winners := make([]entity.GiveawayWinner, 0, len(userIDs))
	for _, id := range userIDs {
		winners = append(winners, entity.GiveawayWinner{MessageID: messageID, UserID: id})
	}

	return xcontext.DB(ctx).Create(&winners).Error
}

func (r *giveawayRepository) GetWinnerUserIDs(ctx context.Context, messageID int64) ([]int64, error) {
	var result []int64
	err := xcontext.DB(ctx).Model(&entity.GiveawayWinner{}).
		Where("message_id=?", messageID).
		Order("created_at ASC, user_id ASC").
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
