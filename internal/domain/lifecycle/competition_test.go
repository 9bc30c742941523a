package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/api/wom"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func createCompetition(t *testing.T, te *testEngine, id int64, startsAt, endsAt time.Time) {
	require.NoError(t, te.competitionRepo.Create(te.ctx, &entity.Competition{
		ID:       id,
		Title:    "Woodcutting SOTW",
		Metric:   "woodcutting",
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}))
}

func linkUser(t *testing.T, te *testEngine, discordID int64, name string) {
	require.NoError(t, te.userLinkRepo.Upsert(te.ctx, &entity.UserLink{DiscordID: discordID, ExternalName: name}))
}

func TestEngine_AwardCompetitionOnce(t *testing.T) {
	te := newTestEngine(t)
	createCompetition(t, te, 7, te.now.Add(-7*24*time.Hour), te.now.Add(-time.Minute))

	linkUser(t, te, 11, "Alice")
	linkUser(t, te, 12, "bob")
	linkUser(t, te, 13, "Carol")

	te.leaderboard.GetStandingsFunc = func(ctx context.Context, competitionID int64) ([]wom.Standing, error) {
		if competitionID != 7 {
			return nil, errors.New("unknown competition")
		}

		return []wom.Standing{
			{Name: "Alice", Gained: 5000},
			{Name: "Bob", Gained: 3000},
			{Name: "Carol", Gained: 1000},
			{Name: "Dave", Gained: 500},
		}, nil
	}

	// Overlapping ticks.
	errs := make([]error, 3)
	wg := sync.WaitGroup{}
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = te.ProcessCompetitions(te.ctx)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	require.Equal(t, int64(100), te.balance(t, 11))
	require.Equal(t, int64(50), te.balance(t, 12))
	require.Equal(t, int64(25), te.balance(t, 13))
	require.Equal(t, int64(3), te.transactionCount(t))

	results := te.dispatcher.PostedTo(testutil.CompetitionChannel)
	require.Len(t, results, 1)
	require.Equal(t, "<@11> <@12> <@13>", results[0].Announcement.Content)
	require.Len(t, te.dispatcher.PostedTo(testutil.AnnouncementsChannel), 1)
	require.Len(t, te.dispatcher.Direct, 3)
	require.Equal(t, 1, te.transitions(t, KindCompetition, "awarded"))

	c, err := te.competitionRepo.GetByID(te.ctx, 7)
	require.NoError(t, err)
	require.Equal(t, entity.CompetitionAwarded, c.Phase(te.now))
}

func TestEngine_AwardCompetitionSkipsUnlinked(t *testing.T) {
	te := newTestEngine(t)
	createCompetition(t, te, 7, te.now.Add(-7*24*time.Hour), te.now.Add(-time.Minute))
	linkUser(t, te, 12, "Bob")

	te.leaderboard.GetStandingsFunc = func(ctx context.Context, competitionID int64) ([]wom.Standing, error) {
		return []wom.Standing{
			{Name: "Alice", Gained: 5000},
			{Name: "Bob", Gained: 3000},
			{Name: "Carol", Gained: 0},
		}, nil
	}

	require.NoError(t, te.ProcessCompetitions(te.ctx))

	require.Equal(t, int64(0), te.balance(t, 11))
	require.Equal(t, int64(50), te.balance(t, 12))
	require.Equal(t, int64(1), te.transactionCount(t))
	require.Len(t, te.dispatcher.Direct, 1)
	require.Equal(t, int64(12), te.dispatcher.Direct[0].UserID)
}

func TestEngine_AwardCompetitionLeaderboardFailure(t *testing.T) {
	te := newTestEngine(t)
	createCompetition(t, te, 7, te.now.Add(-7*24*time.Hour), te.now.Add(-time.Minute))

	te.leaderboard.GetStandingsFunc = func(ctx context.Context, competitionID int64) ([]wom.Standing, error) {
		return nil, errors.New("service unavailable")
	}

	require.NoError(t, te.ProcessCompetitions(te.ctx))

	c, err := te.competitionRepo.GetByID(te.ctx, 7)
	require.NoError(t, err)
	require.False(t, c.WinnersAwarded)
	require.Empty(t, te.dispatcher.Posted)

	// The next tick retries.
	te.leaderboard.GetStandingsFunc = func(ctx context.Context, competitionID int64) ([]wom.Standing, error) {
		return []wom.Standing{}, nil
	}
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	c, err = te.competitionRepo.GetByID(te.ctx, 7)
	require.NoError(t, err)
	require.True(t, c.WinnersAwarded)
}

func TestEngine_CompetitionReminders(t *testing.T) {
	te := newTestEngine(t)
	startsAt := te.now
	createCompetition(t, te, 7, startsAt, startsAt.Add(7*24*time.Hour))

	// Before the midpoint.
	te.now = startsAt.Add(24 * time.Hour)
	require.NoError(t, te.ProcessCompetitions(te.ctx))
	require.Empty(t, te.dispatcher.Posted)

	te.now = startsAt.Add(84 * time.Hour)
	require.NoError(t, te.ProcessCompetitions(te.ctx))
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	reminders := te.dispatcher.PostedTo(testutil.CompetitionChannel)
	require.Len(t, reminders, 1)
	require.Equal(t, "<@&2001>", reminders[0].Announcement.Content)
	require.Equal(t, 1, te.transitions(t, KindCompetition, "midway_notified"))

	te.now = startsAt.Add(7*24*time.Hour - 30*time.Minute)
	require.NoError(t, te.ProcessCompetitions(te.ctx))
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	require.Len(t, te.dispatcher.PostedTo(testutil.CompetitionChannel), 2)
	require.Equal(t, 1, te.transitions(t, KindCompetition, "final_notified"))

	c, err := te.competitionRepo.GetByID(te.ctx, 7)
	require.NoError(t, err)
	require.Equal(t, entity.CompetitionFinalNotified, c.Phase(te.now))
}

func TestEngine_CompetitionFinalReminderTakesPrecedence(t *testing.T) {
	te := newTestEngine(t)
	startsAt := te.now.Add(-2 * time.Hour)
	createCompetition(t, te, 7, startsAt, te.now.Add(30*time.Minute))

	require.NoError(t, te.ProcessCompetitions(te.ctx))
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	require.Len(t, te.dispatcher.PostedTo(testutil.CompetitionChannel), 1)
	require.Equal(t, 0, te.transitions(t, KindCompetition, "midway_notified"))
	require.Equal(t, 1, te.transitions(t, KindCompetition, "final_notified"))
}

func TestEngine_CompetitionReminderSendFailure(t *testing.T) {
	te := newTestEngine(t)
	startsAt := te.now.Add(-4 * 24 * time.Hour)
	createCompetition(t, te, 7, startsAt, startsAt.Add(7*24*time.Hour))

	te.dispatcher.PostAnnouncementFunc = func(ctx context.Context, channelID int64, a model.Announcement) (int64, error) {
		return 0, errors.New("discord is down")
	}
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	c, err := te.competitionRepo.GetByID(te.ctx, 7)
	require.NoError(t, err)
	require.False(t, c.MidwayPingSent)

	te.dispatcher.PostAnnouncementFunc = nil
	require.NoError(t, te.ProcessCompetitions(te.ctx))

	c, err = te.competitionRepo.GetByID(te.ctx, 7)
	require.NoError(t, err)
	require.True(t, c.MidwayPingSent)
	require.Len(t, te.dispatcher.Posted, 1)
}
