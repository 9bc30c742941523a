package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/pkg/api/osrsprices"
	"github.com/questx-lab/taskmaster/pkg/api/wom"
	"github.com/questx-lab/taskmaster/pkg/errorx"
)

type MockLeaderboard struct {
	GetStandingsFunc      func(ctx context.Context, competitionID int64) ([]wom.Standing, error)
	GetWeeklyGainsFunc    func(ctx context.Context, groupID int64) ([]wom.Standing, error)
	CreateCompetitionFunc func(ctx context.Context, metric string, startsAt, endsAt time.Time) (wom.Competition, error)
}

func (m *MockLeaderboard) GetStandings(ctx context.Context, competitionID int64) ([]wom.Standing, error) {
	if m.GetStandingsFunc != nil {
		return m.GetStandingsFunc(ctx, competitionID)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockLeaderboard) GetWeeklyGains(ctx context.Context, groupID int64) ([]wom.Standing, error) {
	if m.GetWeeklyGainsFunc != nil {
		return m.GetWeeklyGainsFunc(ctx, groupID)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}

func (m *MockLeaderboard) CreateCompetition(
	ctx context.Context, metric string, startsAt, endsAt time.Time,
) (wom.Competition, error) {
	if m.CreateCompetitionFunc != nil {
		return m.CreateCompetitionFunc(ctx, metric, startsAt, endsAt)
	}

	return wom.Competition{}, errorx.New(errorx.NotImplemented, "Not implemented")
}

type MockTextGenerator struct {
	GenerateTextFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if m.GenerateTextFunc != nil {
		return m.GenerateTextFunc(ctx, prompt)
	}

	return "", errorx.New(errorx.NotImplemented, "Not implemented")
}

type MockPriceEndpoint struct {
	GetMappingFunc func(ctx context.Context) ([]osrsprices.Item, error)
}

func (m *MockPriceEndpoint) GetMapping(ctx context.Context) ([]osrsprices.Item, error) {
	if m.GetMappingFunc != nil {
		return m.GetMappingFunc(ctx)
	}

	return nil, errorx.New(errorx.NotImplemented, "Not implemented")
}
