package domain

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	kindPointStore = "point_store"

	maxRewardNameLength        = 100
	maxRewardDescriptionLength = 1000
	defaultRedemptionLimit     = 20
	maxRedemptionLimit         = 100
)

type PointStoreDomain interface {
	AddReward(context.Context, *model.AddRewardRequest) (*model.AddRewardResponse, error)
	RemoveReward(context.Context, *model.RemoveRewardRequest) (*model.RemoveRewardResponse, error)
	GetRewards(context.Context, *model.GetRewardsRequest) (*model.GetRewardsResponse, error)
	Redeem(context.Context, *model.RedeemRewardRequest) (*model.RedeemRewardResponse, error)
	GetRedemptions(context.Context, *model.GetRedemptionsRequest) (*model.GetRedemptionsResponse, error)
}

type pointStoreDomain struct {
	rewardRepo repository.RewardRepository
	pointsRepo repository.PointsRepository
	ledger     ledger.Ledger
	dispatcher notify.Dispatcher
}

func NewPointStoreDomain(
	rewardRepo repository.RewardRepository,
	pointsRepo repository.PointsRepository,
	ledger ledger.Ledger,
	dispatcher notify.Dispatcher,
) *pointStoreDomain {
	return &pointStoreDomain{
		rewardRepo: rewardRepo,
		pointsRepo: pointsRepo,
		ledger:     ledger,
		dispatcher: dispatcher,
	}
}

func (d *pointStoreDomain) AddReward(
	ctx context.Context, req *model.AddRewardRequest,
) (*model.AddRewardResponse, error) {
	name, err := checkRewardName(req.Name)
	if err != nil {
		return nil, err
	}

	if req.Cost <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Cost must be a positive number")
	}

	description := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(description) > maxRewardDescriptionLength {
		return nil, errorx.New(errorx.BadRequest, "Description is too long")
	}

	reward := &entity.Reward{
		Name:        name,
		Cost:        req.Cost,
		Description: description,
	}
	if req.RoleID != 0 {
		reward.RoleID = sql.NullInt64{Int64: req.RoleID, Valid: true}
	}

	err = xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		_, err := d.rewardRepo.GetByName(ctx, name)
		if err == nil {
			return errorx.New(errorx.AlreadyExists, "A reward named %s already exists", name)
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get reward: %v", err)
			return errorx.Unknown
		}

		if err := d.rewardRepo.Create(ctx, reward); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create reward: %v", err)
			return errorx.Unknown
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.AddRewardResponse{Reward: convertReward(reward)}, nil
}

func (d *pointStoreDomain) RemoveReward(
	ctx context.Context, req *model.RemoveRewardRequest,
) (*model.RemoveRewardResponse, error) {
	name, err := checkRewardName(req.Name)
	if err != nil {
		return nil, err
	}

	if err := d.rewardRepo.DeleteByName(ctx, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found reward %s", name)
		}

		xcontext.Logger(ctx).Errorf("Cannot remove reward: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RemoveRewardResponse{}, nil
}

func (d *pointStoreDomain) GetRewards(
	ctx context.Context, _ *model.GetRewardsRequest,
) (*model.GetRewardsResponse, error) {
	rewards, err := d.rewardRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get rewards: %v", err)
		return nil, errorx.Unknown
	}

	result := make([]model.Reward, 0, len(rewards))
	for i := range rewards {
		result = append(result, convertReward(&rewards[i]))
	}

	return &model.GetRewardsResponse{Rewards: result}, nil
}

// Redeem spends the points of the member and records the redemption in one
// transaction. The role of the reward is granted after the commit, a failed
// grant does not undo the redemption.
func (d *pointStoreDomain) Redeem(
	ctx context.Context, req *model.RedeemRewardRequest,
) (*model.RedeemRewardResponse, error) {
	if req.UserID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	name, err := checkRewardName(req.Name)
	if err != nil {
		return nil, err
	}

	var reward *entity.Reward
	var balance int64
	err = xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		var err error
		reward, err = d.rewardRepo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.NotFound, "Not found reward %s", name)
			}

			return err
		}

		var current int64
		account, err := d.pointsRepo.GetForUpdate(ctx, req.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			current = account.Balance
		}

		if current < reward.Cost {
			return errorx.New(errorx.InsufficientPoints,
				"You need %d points, but you only have %d", reward.Cost, current)
		}

		balance, err = d.ledger.Deduct(ctx, req.UserID, reward.Cost, "Redeemed "+reward.Name)
		if err != nil {
			return err
		}

		return d.rewardRepo.CreateRedemption(ctx, &entity.Redemption{
			UserID:     req.UserID,
			RewardID:   reward.ID,
			RewardName: reward.Name,
			Cost:       reward.Cost,
		})
	})
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot redeem reward: %v", err)
		return nil, errorx.Unknown
	}

	granted := false
	if reward.RoleID.Valid {
		if err := d.dispatcher.GrantRole(ctx, req.UserID, reward.RoleID.Int64); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot grant role %d of reward %s to %d: %v",
				reward.RoleID.Int64, reward.Name, req.UserID, err)
			notificationFailed(ctx, kindPointStore, err)
		} else {
			granted = true
		}
	}

	return &model.RedeemRewardResponse{
		Reward:      convertReward(reward),
		Balance:     balance,
		RoleGranted: granted,
	}, nil
}

func (d *pointStoreDomain) GetRedemptions(
	ctx context.Context, req *model.GetRedemptionsRequest,
) (*model.GetRedemptionsResponse, error) {
	if req.UserID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	limit, err := checkLimit(req.Limit, defaultRedemptionLimit, maxRedemptionLimit)
	if err != nil {
		return nil, err
	}

	redemptions, err := d.rewardRepo.GetRedemptions(ctx, req.UserID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get redemptions: %v", err)
		return nil, errorx.Unknown
	}

	result := make([]model.Redemption, 0, len(redemptions))
	for _, r := range redemptions {
		result = append(result, convertRedemption(r))
	}

	return &model.GetRedemptionsResponse{Redemptions: result}, nil
}

func checkRewardName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow empty reward name")
	}

	if utf8.RuneCountInString(name) > maxRewardNameLength {
		return "", errorx.New(errorx.BadRequest, "Reward name is too long")
	}

	return name, nil
}
