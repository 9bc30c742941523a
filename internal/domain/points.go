package domain

import (
	"context"
	"strings"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

const (
	kindPoints = "points"

	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
	defaultHistoryLimit     = 20
	maxHistoryLimit         = 100
)

type PointsDomain interface {
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	Award(context.Context, *model.AwardPointsRequest) (*model.AwardPointsResponse, error)
	Deduct(context.Context, *model.DeductPointsRequest) (*model.DeductPointsResponse, error)
	GetLeaderboard(context.Context, *model.GetPointsLeaderboardRequest) (*model.GetPointsLeaderboardResponse, error)
	GetHistory(context.Context, *model.GetPointsHistoryRequest) (*model.GetPointsHistoryResponse, error)
}

type pointsDomain struct {
	pointsRepo repository.PointsRepository
	ledger     ledger.Ledger
	writer     announce.Writer
	dispatcher notify.Dispatcher
}

func NewPointsDomain(
	pointsRepo repository.PointsRepository,
	ledger ledger.Ledger,
	writer announce.Writer,
	dispatcher notify.Dispatcher,
) *pointsDomain {
	return &pointsDomain{
		pointsRepo: pointsRepo,
		ledger:     ledger,
		writer:     writer,
		dispatcher: dispatcher,
	}
}

func (d *pointsDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	if req.UserID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	balance, err := d.ledger.Balance(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetBalanceResponse{UserID: req.UserID, Balance: balance}, nil
}

func (d *pointsDomain) Award(
	ctx context.Context, req *model.AwardPointsRequest,
) (*model.AwardPointsResponse, error) {
	reason, err := checkPointsRequest(req.UserID, req.Reason)
	if err != nil {
		return nil, err
	}

	balance, err := d.ledger.Award(ctx, req.UserID, req.Amount, reason)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot award points: %v", err)
		return nil, errorx.Unknown
	}

	a := d.writer.Write(ctx, announce.PointsAward, model.PointsDetails{
		Amount:  req.Amount,
		Reason:  reason,
		Balance: balance,
	})
	if err := d.dispatcher.SendDirect(ctx, req.UserID, a); err != nil {
		notificationFailed(ctx, kindPoints, err)
	}

	return &model.AwardPointsResponse{Balance: balance}, nil
}

func (d *pointsDomain) Deduct(
	ctx context.Context, req *model.DeductPointsRequest,
) (*model.DeductPointsResponse, error) {
	reason, err := checkPointsRequest(req.UserID, req.Reason)
	if err != nil {
		return nil, err
	}

	balance, err := d.ledger.Deduct(ctx, req.UserID, req.Amount, reason)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot deduct points: %v", err)
		return nil, errorx.Unknown
	}

	return &model.DeductPointsResponse{Balance: balance}, nil
}

func (d *pointsDomain) GetLeaderboard(
	ctx context.Context, req *model.GetPointsLeaderboardRequest,
) (*model.GetPointsLeaderboardResponse, error) {
	limit, err := checkLimit(req.Limit, defaultLeaderboardLimit, maxLeaderboardLimit)
	if err != nil {
		return nil, err
	}

	accounts, err := d.pointsRepo.GetLeaderboard(ctx, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get points leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	ranks := make([]model.PointsRank, 0, len(accounts))
	for i, account := range accounts {
		ranks = append(ranks, model.PointsRank{Rank: i + 1, UserID: account.UserID, Balance: account.Balance})
	}

	return &model.GetPointsLeaderboardResponse{Ranks: ranks}, nil
}

func (d *pointsDomain) GetHistory(
	ctx context.Context, req *model.GetPointsHistoryRequest,
) (*model.GetPointsHistoryResponse, error) {
	if req.UserID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	limit, err := checkLimit(req.Limit, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		return nil, err
	}

	txs, err := d.pointsRepo.GetTransactions(ctx, req.UserID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get points history: %v", err)
		return nil, errorx.Unknown
	}

	result := make([]model.PointsTransaction, 0, len(txs))
	for _, tx := range txs {
		result = append(result, convertTransaction(tx))
	}

	return &model.GetPointsHistoryResponse{Transactions: result}, nil
}

func checkPointsRequest(userID int64, reason string) (string, error) {
	if userID == 0 {
		return "", errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow empty reason")
	}

	return reason, nil
}

func checkLimit(limit, defaultLimit, maxLimit int) (int, error) {
	if limit == 0 {
		return defaultLimit, nil
	}

	if limit < 0 {
		return 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > maxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", maxLimit)
	}

	return limit, nil
}
