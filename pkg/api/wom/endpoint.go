package wom

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/config"
	"github.com/questx-lab/taskmaster/pkg/api"
	"github.com/questx-lab/taskmaster/pkg/retry"
)

type Standing struct {
	Name   string
	Gained int64
}

type Competition struct {
	ID       int64
	Title    string
	Metric   string
	StartsAt time.Time
	EndsAt   time.Time
}

type IEndpoint interface {
	GetStandings(ctx context.Context, competitionID int64) ([]Standing, error)
	GetWeeklyGains(ctx context.Context, groupID int64) ([]Standing, error)
	CreateCompetition(ctx context.Context, metric string, startsAt, endsAt time.Time) (Competition, error)
}

type Endpoint struct {
	cfg          config.LeaderboardConfigs
	retry        retry.Policy
	apiGenerator api.Generator
}

func New(cfg config.LeaderboardConfigs, policy config.RetryConfigs) *Endpoint {
	return &Endpoint{
		cfg:          cfg,
		retry:        retry.Policy{Attempts: policy.Attempts, Backoff: policy.Backoff, Timeout: cfg.Timeout},
		apiGenerator: api.NewGenerator(strings.TrimSuffix(cfg.URL, "/")),
	}
}

// GetStandings returns the participants of a competition ordered by gained
// amount, highest first.
func (e *Endpoint) GetStandings(ctx context.Context, competitionID int64) ([]Standing, error) {
	body, err := e.getJSON(ctx, "/competitions/%d", competitionID)
	if err != nil {
		return nil, err
	}

	participations, err := body.GetArray("participations")
	if err != nil {
		return nil, err
	}

	return toStandings(participations, "progress.gained")
}

func (e *Endpoint) GetWeeklyGains(ctx context.Context, groupID int64) ([]Standing, error) {
	var resp *api.Response
	err := retry.Do(ctx, e.retry, func(ctx context.Context) error {
		var err error
		resp, err = e.apiGenerator.New("/groups/%d/gained", groupID).
			Query(api.Parameter{"period": "week", "metric": "overall"}).
			GET(ctx)
		return checkResponse(resp, err)
	})
	if err != nil {
		return nil, err
	}

	gains, ok := resp.Body.(api.Array)
	if !ok {
		return nil, fmt.Errorf("invalid weekly gains body (%T)", resp.Body)
	}

	return toStandings(gains, "data.gained")
}

func (e *Endpoint) CreateCompetition(ctx context.Context, metric string, startsAt, endsAt time.Time) (Competition, error) {
	days := int(endsAt.Sub(startsAt).Round(24*time.Hour) / (24 * time.Hour))
	title := fmt.Sprintf("%s SOTW (%d days)", capitalize(metric), days)

	var resp *api.Response
	err := retry.Do(ctx, e.retry, func(ctx context.Context) error {
		var err error
		resp, err = e.apiGenerator.New("/competitions").
			Body(api.JSON{
				"title":                 title,
				"metric":                metric,
				"startsAt":              startsAt.UTC().Format(time.RFC3339),
				"endsAt":                endsAt.UTC().Format(time.RFC3339),
				"groupId":               e.cfg.GroupID,
				"groupVerificationCode": e.cfg.VerificationCode,
			}).
			POST(ctx)
		return checkResponse(resp, err)
	})
	if err != nil {
		return Competition{}, err
	}

	body, err := resp.JSON()
	if err != nil {
		return Competition{}, err
	}

	competitionID, err := body.GetInt("competition.id")
	if err != nil {
		return Competition{}, err
	}

	return Competition{
		ID:       competitionID,
		Title:    title,
		Metric:   metric,
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}, nil
}

func (e *Endpoint) getJSON(ctx context.Context, path string, args ...any) (api.JSON, error) {
	var resp *api.Response
	err := retry.Do(ctx, e.retry, func(ctx context.Context) error {
		var err error
		resp, err = e.apiGenerator.New(path, args...).GET(ctx)
		return checkResponse(resp, err)
	})
	if err != nil {
		return nil, err
	}

	return resp.JSON()
}

func checkResponse(resp *api.Response, err error) error {
	if err != nil {
		return err
	}

	switch {
	case resp.IsSuccess():
		return nil
	case resp.Code == http.StatusTooManyRequests || resp.Code >= http.StatusInternalServerError:
		return fmt.Errorf("leaderboard responded %d", resp.Code)
	default:
		return retry.Permanent(fmt.Errorf("leaderboard responded %d: %s", resp.Code, string(resp.RawBody)))
	}
}

func toStandings(items api.Array, gainedKey string) ([]Standing, error) {
	standings := []Standing{}
	for _, item := range items {
		name, err := item.GetString("player.displayName")
		if err != nil {
			return nil, err
		}

		gained, err := item.GetFloat(gainedKey)
		if err != nil {
			return nil, err
		}

		standings = append(standings, Standing{Name: name, Gained: int64(gained)})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Gained > standings[j].Gained
	})

	return standings, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
