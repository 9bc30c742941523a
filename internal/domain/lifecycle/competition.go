package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

const finalReminderWindow = time.Hour

type placement struct {
	Place   int    `json:"place"`
	Name    string `json:"name"`
	Gained  int64  `json:"gained"`
	UserID  int64  `json:"user_id,string"`
	Points  int64  `json:"points"`
	Awarded bool   `json:"awarded"`
}

func (e *engine) ProcessCompetitions(ctx context.Context) error {
	now := e.now()
	competitions, err := e.competitionRepo.GetUnawarded(ctx, now)
	if err != nil {
		return err
	}

	forEachRow(ctx, KindCompetition, competitions, func(ctx context.Context, c entity.Competition) error {
		return e.processCompetition(ctx, c, now)
	})

	return nil
}

func (e *engine) processCompetition(ctx context.Context, c entity.Competition, now time.Time) error {
	switch {
	case !now.Before(c.EndsAt):
		return e.awardCompetition(ctx, c)

	case !c.FinalPingSent && c.EndsAt.Sub(now) <= finalReminderWindow:
		return e.remindCompetition(ctx, c, true)

	case !c.MidwayPingSent && !c.FinalPingSent && !now.Before(c.Midpoint()):
		return e.remindCompetition(ctx, c, false)
	}

	return nil
}

func (e *engine) remindCompetition(ctx context.Context, c entity.Competition, final bool) error {
	release, ok := e.claim(fmt.Sprintf("%s:%d:%t", KindCompetition, c.ID, final))
	if !ok {
		return nil
	}
	defer release()

	fresh, err := e.competitionRepo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}

	eventType, transition := announce.SOTWMidway, "midway_notified"
	mark, sent := e.competitionRepo.MarkMidwayPingSent, fresh.MidwayPingSent
	if final {
		eventType, transition = announce.SOTWFinal, "final_notified"
		mark, sent = e.competitionRepo.MarkFinalPingSent, fresh.FinalPingSent
	}

	if sent {
		return nil
	}

	cfg := xcontext.Configs(ctx)
	a := e.writer.Write(ctx, eventType, competitionDetails(*fresh))
	if cfg.Roles.Competition != 0 {
		a.Content = announce.RoleMention(cfg.Roles.Competition)
	}

	if err := e.dispatcher.PostReminder(ctx, cfg.Channels.Competition, a); err != nil {
		e.notificationFailed(ctx, KindCompetition, err)
		return err
	}

	if err := mark(ctx, c.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Reminder of competition %d was already marked", c.ID)
			return nil
		}

		return err
	}

	e.publish(ctx, KindCompetition, c.ID, transition, nil)
	return nil
}

// awardCompetition fetches the final standings and awards the podium. The
// guard and the awards are committed together, so a competition is awarded
// at most once.
func (e *engine) awardCompetition(ctx context.Context, c entity.Competition) error {
	standings, err := e.leaderboard.GetStandings(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("cannot get standings of competition %d: %w", c.ID, err)
	}

	places := xcontext.Configs(ctx).Rewards.CompetitionPlaces
	var podium []placement
	err = xcontext.RunInDBTransaction(ctx, func(ctx context.Context) error {
		podium = nil
		if err := e.competitionRepo.MarkWinnersAwarded(ctx, c.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errAlreadyClaimed
			}

			return err
		}

		for i, standing := range standings {
			if i >= len(places) || standing.Gained <= 0 {
				break
			}

			p := placement{Place: i + 1, Name: standing.Name, Gained: standing.Gained, Points: places[i]}
			link, err := e.userLinkRepo.GetByExternalName(ctx, standing.Name)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			if err == nil && p.Points > 0 {
				reason := fmt.Sprintf("%s: place %d", c.Title, p.Place)
				if _, err := e.ledger.Award(ctx, link.DiscordID, p.Points, reason); err != nil {
					return err
				}

				p.UserID, p.Awarded = link.DiscordID, true
			} else if err != nil {
				xcontext.Logger(ctx).Infof("Place %d of competition %d (%s) is not linked", p.Place, c.ID, p.Name)
			}

			podium = append(podium, p)
		}

		return nil
	})
	if errors.Is(err, errAlreadyClaimed) {
		return nil
	}

	if err != nil {
		return err
	}

	e.publish(ctx, KindCompetition, c.ID, "awarded", map[string]any{"podium": podium})
	e.announceResults(ctx, c, podium)
	return nil
}

func (e *engine) announceResults(ctx context.Context, c entity.Competition, podium []placement) {
	cfg := xcontext.Configs(ctx)

	lines := []string{}
	awarded := []int64{}
	for _, p := range podium {
		line := fmt.Sprintf("%d. **%s** (+%d)", p.Place, p.Name, p.Gained)
		if p.Awarded {
			line += fmt.Sprintf(" %s earns %d points", announce.UserMention(p.UserID), p.Points)
			awarded = append(awarded, p.UserID)
		}

		lines = append(lines, line)
	}

	details := competitionDetails(c)
	details.Winners = strings.Join(lines, "\n")
	a := e.writer.Write(ctx, announce.SOTWResults, details)
	a.Content = mentions(awarded, " ")

	if _, err := e.dispatcher.PostAnnouncement(ctx, cfg.Channels.Competition, a); err != nil {
		e.notificationFailed(ctx, KindCompetition, err)
	}
	e.mirror(ctx, KindCompetition, cfg.Channels.Competition, a)

	for _, p := range podium {
		if !p.Awarded {
			continue
		}

		e.notifyPoints(ctx, KindCompetition, p.UserID, p.Points, fmt.Sprintf("%s: place %d", c.Title, p.Place))
	}
}

func competitionDetails(c entity.Competition) model.CompetitionDetails {
	return model.CompetitionDetails{
		Title:    c.Title,
		Metric:   c.Metric,
		StartsAt: announce.RelativeTime(c.StartsAt),
		EndsAt:   announce.RelativeTime(c.EndsAt),
	}
}
