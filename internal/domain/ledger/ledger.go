// Package ledger owns every mutation of clan points balances.
package ledger

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

type Ledger interface {
	// Award adds amount to the balance of the user, creating the account if
	// needed, and returns the new balance.
	Award(ctx context.Context, userID, amount int64, reason string) (int64, error)

	// Deduct removes amount from the balance of the user. The balance is
	// clamped at zero, an insufficient balance is not an error.
	Deduct(ctx context.Context, userID, amount int64, reason string) (int64, error)

	Balance(ctx context.Context, userID int64) (int64, error)
}

type ledger struct {
	pointsRepo repository.PointsRepository
	node       *snowflake.Node
}

func New(pointsRepo repository.PointsRepository, node *snowflake.Node) *ledger {
	return &ledger{pointsRepo: pointsRepo, node: node}
}

func (l *ledger) Award(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	var balance int64
	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		if err := l.pointsRepo.CreateAccountIfNotExists(ctx, userID); err != nil {
			return err
		}

		if err := l.pointsRepo.Increase(ctx, userID, amount); err != nil {
			return err
		}

		if err := l.appendTransaction(ctx, userID, amount, reason); err != nil {
			return err
		}

		account, err := l.pointsRepo.Get(ctx, userID)
		if err != nil {
			return err
		}

		balance = account.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}

func (l *ledger) Deduct(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	var balance int64
	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		err := l.pointsRepo.Decrease(ctx, userID, amount)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := l.appendTransaction(ctx, userID, -amount, reason); err != nil {
			return err
		}

		if err != nil {
			// No account, nothing to deduct.
			balance = 0
			return nil
		}

		account, err := l.pointsRepo.Get(ctx, userID)
		if err != nil {
			return err
		}

		balance = account.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	return balance, nil
}

func (l *ledger) Balance(ctx context.Context, userID int64) (int64, error) {
	account, err := l.pointsRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return account.Balance, nil
}

func (l *ledger) appendTransaction(ctx context.Context, userID, delta int64, reason string) error {
	return l.pointsRepo.CreateTransaction(ctx, &entity.Transaction{
		ID:     l.node.Generate().Int64(),
		UserID: userID,
		Delta:  delta,
		Reason: reason,
	})
}
