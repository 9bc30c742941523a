package repository

import (
	"context"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

type RewardRepository interface {
	Create(ctx context.Context, reward *entity.Reward) error
	GetByName(ctx context.Context, name string) (*entity.Reward, error)
	GetAll(ctx context.Context) ([]entity.Reward, error)
	DeleteByName(ctx context.Context, name string) error

	CreateRedemption(ctx context.Context, redemption *entity.Redemption) error
	GetRedemptions(ctx context.Context, userID int64, limit int) ([]entity.Redemption, error)
}

type rewardRepository struct{}

func NewRewardRepository() *rewardRepository {
	return &rewardRepository{}
}

func (r *rewardRepository) Create(ctx context.Context, reward *entity.Reward) error {
	return xcontext.DB(ctx).Create(reward).Error
}

// GetByName ignores the case of name.
func (r *rewardRepository) GetByName(ctx context.Context, name string) (*entity.Reward, error) {
	var result entity.Reward
	if err := xcontext.DB(ctx).Take(&result, "LOWER(name)=LOWER(?)", name).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardRepository) GetAll(ctx context.Context) ([]entity.Reward, error) {
	var result []entity.Reward
	if err := xcontext.DB(ctx).Order("cost ASC, name ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardRepository) DeleteByName(ctx context.Context, name string) error {
	return checkAffected(xcontext.DB(ctx).Delete(&entity.Reward{}, "LOWER(name)=LOWER(?)", name))
}

func (r *rewardRepository) CreateRedemption(ctx context.Context, redemption *entity.Redemption) error {
	return xcontext.DB(ctx).Create(redemption).Error
}

func (r *rewardRepository) GetRedemptions(ctx context.Context, userID int64, limit int) ([]entity.Redemption, error) {
	var result []entity.Redemption
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
