package domain

import (
	"strconv"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/pricecache"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
)

const defaultTimeLayout string = time.RFC3339

func convertRaffle(r *entity.Raffle, now time.Time, prices pricecache.Lookup) model.Raffle {
	result := model.Raffle{
		ID:        r.ID,
		Prize:     r.Prize,
		EndsAt:    r.EndsAt,
		Phase:     string(r.Phase(now)),
		Announced: r.Announced,
	}

	if r.WinnerID.Valid {
		winnerID := r.WinnerID.Int64
		result.WinnerID = &winnerID
	}

	if prices != nil {
		if item, ok := prices.Lookup(r.Prize); ok {
			result.PrizeValue = item.Value
			if item.HighAlch > result.PrizeValue {
				result.PrizeValue = item.HighAlch
			}
		}
	}

	return result
}

func convertGiveaway(g *entity.Giveaway, now time.Time) model.Giveaway {
	return model.Giveaway{
		MessageID:   g.MessageID,
		ChannelID:   g.ChannelID,
		Prize:       g.Prize,
		EndsAt:      g.EndsAt,
		WinnerCount: g.WinnerCount,
		Phase:       string(g.Phase(now)),
	}
}

func convertActivity(a *entity.ScheduledActivity, now time.Time) model.Activity {
	return model.Activity{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		StartsAt:        a.StartsAt,
		DurationMinutes: a.DurationMinutes,
		Phase:           string(a.Phase(now)),
	}
}

func convertCompetition(c *entity.Competition, now time.Time) model.Competition {
	return model.Competition{
		ID:       c.ID,
		Title:    c.Title,
		Metric:   c.Metric,
		StartsAt: c.StartsAt,
		EndsAt:   c.EndsAt,
		Phase:    string(c.Phase(now)),
	}
}

func convertTransaction(tx entity.Transaction) model.PointsTransaction {
	return model.PointsTransaction{
		ID:        tx.ID,
		Delta:     tx.Delta,
		Reason:    tx.Reason,
		CreatedAt: tx.CreatedAt.UTC().Format(defaultTimeLayout),
	}
}

func convertReward(r *entity.Reward) model.Reward {
	result := model.Reward{
		ID:          r.ID,
		Name:        r.Name,
		Cost:        r.Cost,
		Description: r.Description,
	}

	if r.RoleID.Valid {
		roleID := r.RoleID.Int64
		result.RoleID = &roleID
	}

	return result
}

func convertRedemption(r entity.Redemption) model.Redemption {
	return model.Redemption{
		ID:         r.ID,
		RewardName: r.RewardName,
		Cost:       r.Cost,
		CreatedAt:  r.CreatedAt.UTC().Format(defaultTimeLayout),
	}
}

func formatIDs(ids []int64) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, strconv.FormatInt(id, 10))
	}

	return result
}
