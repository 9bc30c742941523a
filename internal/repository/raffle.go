package repository

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserTickets struct {
	UserID  int64
	Tickets int64
}

type RaffleRepository interface {
	Create(ctx context.Context, raffle *entity.Raffle) error
	GetByID(ctx context.Context, id int64) (*entity.Raffle, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entity.Raffle, error)
	GetDue(ctx context.Context, now time.Time) ([]entity.Raffle, error)
	GetOpen(ctx context.Context, now time.Time) ([]entity.Raffle, error)
	UpdateMessage(ctx context.Context, id, channelID, messageID int64) error
	CloseNow(ctx context.Context, id int64, now time.Time) error
	SetWinner(ctx context.Context, id, winnerID int64) error
	MarkAnnounced(ctx context.Context, id int64) error

	// Entry
	CreateEntries(ctx context.Context, entries []entity.RaffleEntry) error
	CountEntries(ctx context.Context, raffleID, userID int64, source entity.RaffleEntrySource) (int64, error)
	GetEntryUserIDs(ctx context.Context, raffleID int64) ([]int64, error)
	GetTickets(ctx context.Context, raffleID int64) ([]UserTickets, error)
}

type raffleRepository struct{}

func NewRaffleRepository() *raffleRepository {
	return &raffleRepository{}
}

func (r *raffleRepository) Create(ctx context.Context, raffle *entity.Raffle) error {
	return xcontext.DB(ctx).Create(raffle).Error
}

func (r *raffleRepository) GetByID(ctx context.Context, id int64) (*entity.Raffle, error) {
	var result entity.Raffle
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByIDForUpdate locks the row until the end of the transaction of ctx.
func (r *raffleRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entity.Raffle, error) {
	var result entity.Raffle
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetDue returns the ended raffles which are not drawn or not announced yet.
func (r *raffleRepository) GetDue(ctx context.Context, now time.Time) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).
		Where("ends_at<=? AND (winner_id IS NULL OR announced=?)", now, false).
		Order("ends_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) GetOpen(ctx context.Context, now time.Time) ([]entity.Raffle, error) {
	var result []entity.Raffle
	err := xcontext.DB(ctx).
		Where("ends_at>? AND winner_id IS NULL", now).
		Order("ends_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) UpdateMessage(ctx context.Context, id, channelID, messageID int64) error {
	return xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=?", id).
		Updates(map[string]any{"channel_id": channelID, "message_id": messageID}).Error
}

// CloseNow moves the end of an undrawn raffle to now.
func (r *raffleRepository) CloseNow(ctx context.Context, id int64, now time.Time) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND winner_id IS NULL", id).
		Update("ends_at", now))
}

// SetWinner records the draw result. Only the first call for a raffle
// succeeds, later calls get gorm.ErrRecordNotFound.
func (r *raffleRepository) SetWinner(ctx context.Context, id, winnerID int64) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.Raffle{}).
		Where("id=? AND winner_id IS NULL", id).
		Update("winner_id", winnerID))
}

func (r *raffleRepository) MarkAnnounced(ctx context.Context, id int64) error {
	return compareAndSet(xcontext.DB(ctx), &entity.Raffle{}, "id", id, "announced")
}

func (r *raffleRepository) CreateEntries(ctx context.Context, entries []entity.RaffleEntry) error {
	if len(entries) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Omit(clause.Associations).Create(&entries).Error
}

func (r *raffleRepository) CountEntries(
	ctx context.Context, raffleID, userID int64, source entity.RaffleEntrySource,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.RaffleEntry{}).
		Where("raffle_id=? AND user_id=? AND source=?", raffleID, userID, source).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// GetEntryUserIDs returns one user id per entry, so a user appears once per
// ticket.
func (r *raffleRepository) GetEntryUserIDs(ctx context.Context, raffleID int64) ([]int64, error) {
	var result []int64
	err := xcontext.DB(ctx).Model(&entity.RaffleEntry{}).
		Where("raffle_id=?", raffleID).
		Order("id ASC").
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *raffleRepository) GetTickets(ctx context.Context, raffleID int64) ([]UserTickets, error) {
	var result []UserTickets
	err := xcontext.DB(ctx).Model(&entity.RaffleEntry{}).
		Select("user_id, COUNT(*) AS tickets").
		Where("raffle_id=?", raffleID).
		Group("user_id").
		Order("tickets DESC, user_id ASC").
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
