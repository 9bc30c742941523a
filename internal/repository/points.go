package repository

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PointsRepository interface {
	CreateAccountIfNotExists(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*entity.PointsAccount, error)
	GetForUpdate(ctx context.Context, userID int64) (*entity.PointsAccount, error)
	Increase(ctx context.Context, userID, amount int64) error
	Decrease(ctx context.Context, userID, amount int64) error
	GetLeaderboard(ctx context.Context, limit int) ([]entity.PointsAccount, error)

	CreateTransaction(ctx context.Context, tx *entity.Transaction) error
	GetTransactions(ctx context.Context, userID int64, limit int) ([]entity.Transaction, error)
}

type pointsRepository struct{}

func NewPointsRepository() *pointsRepository {
	return &pointsRepository{}
}

func (r *pointsRepository) CreateAccountIfNotExists(ctx context.Context, userID int64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.PointsAccount{UserID: userID}).Error
}

func (r *pointsRepository) Get(ctx context.Context, userID int64) (*entity.PointsAccount, error) {
	var result entity.PointsAccount
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *pointsRepository) GetForUpdate(ctx context.Context, userID int64) (*entity.PointsAccount, error) {
	var result entity.PointsAccount
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "user_id=?", userID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *pointsRepository) Increase(ctx context.Context, userID, amount int64) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.PointsAccount{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance+?", amount),
			"updated_at": time.Now(),
		}))
}

// Decrease never lets the balance go below zero.
func (r *pointsRepository) Decrease(ctx context.Context, userID, amount int64) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.PointsAccount{}).
		Where("user_id=?", userID).
		Updates(map[string]any{
			"balance":    gorm.Expr("CASE WHEN balance>? THEN balance-? ELSE 0 END", amount, amount),
			"updated_at": time.Now(),
		}))
}

func (r *pointsRepository) GetLeaderboard(ctx context.Context, limit int) ([]entity.PointsAccount, error) {
	var result []entity.PointsAccount
	err := xcontext.DB(ctx).
		Where("balance>?", 0).
		Order("balance DESC, user_id ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointsRepository) CreateTransaction(ctx context.Context, tx *entity.Transaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *pointsRepository) GetTransactions(ctx context.Context, userID int64, limit int) ([]entity.Transaction, error) {
	var result []entity.Transaction
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
