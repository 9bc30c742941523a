package domain

import (
	"context"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/api/wom"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"golang.org/x/exp/slices"
)

const defaultCompetitionDuration = "7d"

var skillMetrics = []string{
	"overall", "attack", "defence", "strength", "hitpoints", "ranged", "prayer",
	"magic", "cooking", "woodcutting", "fletching", "fishing", "firemaking",
	"crafting", "smithing", "mining", "herblore", "agility", "thieving",
	"slayer", "farming", "runecrafting", "hunter", "construction",
}

type CompetitionDomain interface {
	Start(context.Context, *model.StartCompetitionRequest) (*model.StartCompetitionResponse, error)
}

type competitionDomain struct {
	competitionRepo repository.CompetitionRepository
	leaderboard     wom.IEndpoint
	writer          announce.Writer
	dispatcher      notify.Dispatcher
}

func NewCompetitionDomain(
	competitionRepo repository.CompetitionRepository,
	leaderboard wom.IEndpoint,
	writer announce.Writer,
	dispatcher notify.Dispatcher,
) *competitionDomain {
	return &competitionDomain{
		competitionRepo: competitionRepo,
		leaderboard:     leaderboard,
		writer:          writer,
		dispatcher:      dispatcher,
	}
}

// Start is called when the skill poll closes. It creates the competition on
// the leaderboard service and announces it.
func (d *competitionDomain) Start(
	ctx context.Context, req *model.StartCompetitionRequest,
) (*model.StartCompetitionResponse, error) {
	metric := strings.ToLower(strings.TrimSpace(req.Metric))
	if metric == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty metric")
	}

	if !slices.Contains(skillMetrics, metric) {
		return nil, errorx.New(errorx.BadRequest, "Unsupported metric %s", metric)
	}

	if req.Duration == "" {
		req.Duration = defaultCompetitionDuration
	}

	now := time.Now().UTC()
	startsAt := now.Truncate(time.Second)
	if !req.StartsAt.IsZero() {
		startsAt = req.StartsAt.UTC().Truncate(time.Second)
	}

	endsAt, err := endTime(startsAt, req.Duration)
	if err != nil {
		return nil, err
	}

	created, err := d.leaderboard.CreateCompetition(ctx, metric, startsAt, endsAt)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create competition on the leaderboard: %v", err)
		return nil, errorx.New(errorx.Unavailable, "The leaderboard service is unavailable")
	}

	competition := &entity.Competition{
		ID:       created.ID,
		Title:    created.Title,
		Metric:   metric,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}
	if !created.StartsAt.IsZero() {
		competition.StartsAt = created.StartsAt.UTC()
		competition.EndsAt = created.EndsAt.UTC()
	}

	if err := d.competitionRepo.Create(ctx, competition); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create competition: %v", err)
		return nil, errorx.Unknown
	}

	cfg := xcontext.Configs(ctx)
	a := d.writer.Write(ctx, announce.SOTWStart, model.CompetitionDetails{
		Title:    competition.Title,
		Metric:   competition.Metric,
		StartsAt: announce.RelativeTime(competition.StartsAt),
		EndsAt:   announce.RelativeTime(competition.EndsAt),
	})
	if cfg.Roles.Competition != 0 {
		a.Content = announce.RoleMention(cfg.Roles.Competition)
	}

	// The competition runs on the leaderboard service even without the post.
	_, _ = postAnnouncement(ctx, d.dispatcher, lifecycle.KindCompetition, cfg.Channels.Competition, a)

	return &model.StartCompetitionResponse{Competition: convertCompetition(competition, now)}, nil
}
