package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func createActivity(t *testing.T, te *testEngine, startsAt time.Time, signups ...int64) *entity.ScheduledActivity {
	activity := &entity.ScheduledActivity{
		Title:           "Corporeal Beast mass",
		Description:     "Bring a spear",
		StartsAt:        startsAt,
		DurationMinutes: 90,
		IsActive:        true,
	}
	require.NoError(t, te.activityRepo.Create(te.ctx, activity))

	for _, userID := range signups {
		created, err := te.activityRepo.CreateSignup(te.ctx, &entity.ActivitySignup{ActivityID: activity.ID, UserID: userID})
		require.NoError(t, err)
		require.True(t, created)
	}

	return activity
}

func TestEngine_RemindActivityOnce(t *testing.T) {
	te := newTestEngine(t)
	activity := createActivity(t, te, te.now.Add(45*time.Minute), 51, 52)

	require.NoError(t, te.ProcessActivities(te.ctx))
	te.now = te.now.Add(5 * time.Minute)
	require.NoError(t, te.ProcessActivities(te.ctx))

	posted := te.dispatcher.PostedTo(testutil.ActivityChannel)
	require.Len(t, posted, 1)
	require.Equal(t, "<@51> <@52>", posted[0].Announcement.Content)
	require.Equal(t, "Starting Soon: Corporeal Beast mass", posted[0].Announcement.Title)
	require.Equal(t, 1, te.transitions(t, KindActivity, "reminded"))

	fresh, err := te.activityRepo.GetByID(te.ctx, activity.ID)
	require.NoError(t, err)
	require.True(t, fresh.ReminderSent)
	require.Equal(t, entity.ActivityReminded, fresh.Phase(te.now))

	// Closed once started.
	te.now = activity.StartsAt
	require.NoError(t, te.ProcessActivities(te.ctx))

	fresh, err = te.activityRepo.GetByID(te.ctx, activity.ID)
	require.NoError(t, err)
	require.False(t, fresh.IsActive)
	require.Len(t, te.dispatcher.Posted, 1)
}

func TestEngine_RemindActivityTooEarly(t *testing.T) {
	te := newTestEngine(t)
	activity := createActivity(t, te, te.now.Add(2*time.Hour))

	require.NoError(t, te.ProcessActivities(te.ctx))

	fresh, err := te.activityRepo.GetByID(te.ctx, activity.ID)
	require.NoError(t, err)
	require.False(t, fresh.ReminderSent)
	require.True(t, fresh.IsActive)
	require.Equal(t, entity.ActivityUpcoming, fresh.Phase(te.now))
	require.Empty(t, te.dispatcher.Posted)
}

func TestEngine_RemindActivityMissedWindow(t *testing.T) {
	te := newTestEngine(t)
	activity := createActivity(t, te, te.now.Add(-10*time.Minute), 51)

	require.NoError(t, te.ProcessActivities(te.ctx))

	fresh, err := te.activityRepo.GetByID(te.ctx, activity.ID)
	require.NoError(t, err)
	require.False(t, fresh.IsActive)
	require.False(t, fresh.ReminderSent)
	require.Equal(t, entity.ActivityClosed, fresh.Phase(te.now))
	require.Empty(t, te.dispatcher.Posted)
	require.Equal(t, 1, te.transitions(t, KindActivity, "missed"))
}

func TestEngine_RemindActivitySendFailure(t *testing.T) {
	te := newTestEngine(t)
	activity := createActivity(t, te, te.now.Add(30*time.Minute))

	te.dispatcher.PostAnnouncementFunc = func(ctx context.Context, channelID int64, a model.Announcement) (int64, error) {
		return 0, errors.New("discord is down")
	}
	require.NoError(t, te.ProcessActivities(te.ctx))

	fresh, err := te.activityRepo.GetByID(te.ctx, activity.ID)
	require.NoError(t, err)
	require.False(t, fresh.ReminderSent)

	te.dispatcher.PostAnnouncementFunc = nil
	require.NoError(t, te.ProcessActivities(te.ctx))

	fresh, err = te.activityRepo.GetByID(te.ctx, activity.ID)
	require.NoError(t, err)
	require.True(t, fresh.ReminderSent)
	require.Len(t, te.dispatcher.PostedTo(testutil.ActivityChannel), 1)
}
