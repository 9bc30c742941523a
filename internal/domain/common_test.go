package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/ledger"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) announce.Writer {
	writer, err := announce.NewWriter(nil)
	require.NoError(t, err)
	return writer
}

func newTestLedger(t *testing.T) ledger.Ledger {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return ledger.New(repository.NewPointsRepository(), node)
}

func newTestEngine(t *testing.T, dispatcher *testutil.MockDispatcher) lifecycle.Engine {
	return lifecycle.NewEngine(
		repository.NewCompetitionRepository(),
		repository.NewRaffleRepository(),
		repository.NewGiveawayRepository(),
		repository.NewActivityRepository(),
		repository.NewUserLinkRepository(),
		repository.NewSettingRepository(),
		newTestLedger(t),
		&testutil.MockLeaderboard{},
		newTestWriter(t),
		dispatcher,
		&testutil.MockPublisher{},
		nil,
		nil,
	)
}

func requireCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errorx.Is(err, code), "got %v", err)
}

func Test_postAnnouncement(t *testing.T) {
	ctx := testutil.MockContext()
	dispatcher := &testutil.MockDispatcher{}
	writer := newTestWriter(t)

	a := writer.Write(ctx, announce.Bulletin, model.BulletinDetails{Raffles: 1})
	messageID, err := postAnnouncement(ctx, dispatcher, lifecycle.KindRaffle, testutil.RaffleChannel, a)
	require.NoError(t, err)
	require.NotZero(t, messageID)
	require.Len(t, dispatcher.PostedTo(testutil.RaffleChannel), 1)
	require.Len(t, dispatcher.PostedTo(testutil.AnnouncementsChannel), 1)

	// Posting to the announcements channel itself is not mirrored.
	_, err = postAnnouncement(ctx, dispatcher, lifecycle.KindRaffle, testutil.AnnouncementsChannel, a)
	require.NoError(t, err)
	require.Len(t, dispatcher.PostedTo(testutil.AnnouncementsChannel), 2)

	dispatcher.PostAnnouncementFunc = func(ctx context.Context, channelID int64, _ model.Announcement) (int64, error) {
		return 0, errors.New("discord is down")
	}
	_, err = postAnnouncement(ctx, dispatcher, lifecycle.KindRaffle, testutil.RaffleChannel, a)
	require.Error(t, err)
}

func Test_endTime(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 500, time.UTC)

	got, err := endTime(now, "2d")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), got)

	_, err = endTime(now, "soon")
	requireCode(t, err, errorx.BadRequest)

	// Would wrap around to a time in the past.
	_, err = endTime(now, "200000d")
	requireCode(t, err, errorx.BadRequest)
}

func Test_checkPrize(t *testing.T) {
	prize, err := checkPrize("  Twisted bow ")
	require.NoError(t, err)
	require.Equal(t, "Twisted bow", prize)

	_, err = checkPrize("   ")
	requireCode(t, err, errorx.BadRequest)
}
