package lifecycle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

func (e *engine) ProcessRaffles(ctx context.Context) error {
	raffles, err := e.raffleRepo.GetDue(ctx, e.now())
	if err != nil {
		return err
	}

	forEachRow(ctx, KindRaffle, raffles, e.settleRaffle)
	return nil
}

func (e *engine) DrawRaffle(ctx context.Context, raffleID int64) error {
	raffle, err := e.raffleRepo.GetByID(ctx, raffleID)
	if err != nil {
		return err
	}

	return e.settleRaffle(ctx, *raffle)
}

func (e *engine) settleRaffle(ctx context.Context, raffle entity.Raffle) error {
	if !raffle.WinnerID.Valid {
		drawn, err := e.drawRaffle(ctx, raffle.ID)
		if err != nil {
			return err
		}

		raffle = *drawn
	}

	if raffle.Announced {
		return nil
	}

	return e.announceRaffle(ctx, raffle)
}

// drawRaffle picks the winner and awards the prize points in one
// transaction. The row is locked and re-checked first, so the random
// selection never runs for a raffle which already has a winner.
func (e *engine) drawRaffle(ctx context.Context, raffleID int64) (*entity.Raffle, error) {
	var result *entity.Raffle
	var entries int
	drawn := false

	err := xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		raffle, err := e.raffleRepo.GetByIDForUpdate(ctx, raffleID)
		if err != nil {
			return err
		}

		if raffle.WinnerID.Valid {
			result = raffle
			return nil
		}

		pool, err := e.raffleRepo.GetEntryUserIDs(ctx, raffleID)
		if err != nil {
			return err
		}

		winnerID := entity.NoWinner
		if picked := e.chooser(pool, 1); len(picked) > 0 {
			winnerID = picked[0]
		}

		if err := e.raffleRepo.SetWinner(ctx, raffleID, winnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAlreadyClaimed
			}

			return err
		}

		prize := xcontext.Configs(ctx).Rewards.RafflePrize
		if winnerID != entity.NoWinner && prize > 0 {
			if _, err := e.ledger.Award(ctx, winnerID, prize, "Raffle winner: "+raffle.Prize); err != nil {
				return err
			}
		}

		raffle.WinnerID = sql.NullInt64{Int64: winnerID, Valid: true}
		result, entries, drawn = raffle, len(pool), true
		return nil
	})
	if errors.Is(err, errAlreadyClaimed) {
		return e.raffleRepo.GetByID(ctx, raffleID)
	}

	if err != nil {
		return nil, err
	}

	if drawn {
		e.publish(ctx, KindRaffle, raffleID, "drawn", map[string]any{
			"winner_id": result.WinnerID.Int64,
			"entries":   entries,
		})
	}

	return result, nil
}

func (e *engine) announceRaffle(ctx context.Context, raffle entity.Raffle) error {
	release, ok := e.claim(fmt.Sprintf("%s:%d:announce", KindRaffle, raffle.ID))
	if !ok {
		return nil
	}
	defer release()

	fresh, err := e.raffleRepo.GetByID(ctx, raffle.ID)
	if err != nil {
		return err
	}

	if fresh.Announced {
		return nil
	}

	cfg := xcontext.Configs(ctx)

	channelID := raffle.ChannelID
	if channelID == 0 {
		channelID = cfg.Channels.Raffle
	}

	details := model.RaffleDetails{
		Prize:      raffle.Prize,
		EndsAt:     announce.RelativeTime(raffle.EndsAt),
		PrizeValue: pricecache.PrizeValue(e.prices, raffle.Prize),
	}

	var a model.Announcement
	if raffle.HasWinner() {
		winnerID := raffle.WinnerID.Int64
		tickets, err := e.raffleRepo.GetTickets(ctx, raffle.ID)
		if err != nil {
			return err
		}

		for _, t := range tickets {
			if t.UserID == winnerID {
				details.Tickets = t.Tickets
			}
		}

		details.Winner = announce.UserMention(winnerID)
		a = e.writer.Write(ctx, announce.RaffleWinner, details)
		a.Content = announce.UserMention(winnerID)
	} else {
		a = e.writer.Write(ctx, announce.RaffleEmpty, details)
	}

	if _, err := e.dispatcher.PostAnnouncement(ctx, channelID, a); err != nil {
		e.notificationFailed(ctx, KindRaffle, err)
		return err
	}

	if err := e.raffleRepo.MarkAnnounced(ctx, raffle.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Raffle %d was already announced", raffle.ID)
			return nil
		}

		return err
	}

	e.publish(ctx, KindRaffle, raffle.ID, "announced", nil)
	e.mirror(ctx, KindRaffle, channelID, a)

	if raffle.HasWinner() && cfg.Rewards.RafflePrize > 0 {
		e.notifyPoints(ctx, KindRaffle, raffle.WinnerID.Int64, cfg.Rewards.RafflePrize,
			fmt.Sprintf("Raffle winner: %s", raffle.Prize))
	}

	return nil
}
