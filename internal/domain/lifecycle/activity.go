package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

func (e *engine) ProcessActivities(ctx context.Context) error {
	now := e.now()
	due, err := e.activityRepo.GetDueReminders(ctx, now, entity.ActivityReminderWindow)
	if err != nil {
		return err
	}

	forEachRow(ctx, KindActivity, due, func(ctx context.Context, a entity.ScheduledActivity) error {
		return e.remindActivity(ctx, a, now)
	})

	closed, err := e.activityRepo.DeactivateStarted(ctx, now)
	if err != nil {
		return err
	}

	if closed > 0 {
		xcontext.Logger(ctx).Infof("Closed %d started activities", closed)
	}

	return nil
}

// remindActivity sends the reminder of an activity starting within the
// reminder window. An activity whose window was missed is closed silently, a
// late reminder is never sent.
func (e *engine) remindActivity(ctx context.Context, activity entity.ScheduledActivity, now time.Time) error {
	if !now.Before(activity.StartsAt) {
		if err := e.activityRepo.Deactivate(ctx, activity.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}

			return err
		}

		e.publish(ctx, KindActivity, activity.ID, "missed", nil)
		return nil
	}

	release, ok := e.claim(fmt.Sprintf("%s:%d", KindActivity, activity.ID))
	if !ok {
		return nil
	}
	defer release()

	fresh, err := e.activityRepo.GetByID(ctx, activity.ID)
	if err != nil {
		return err
	}

	if fresh.ReminderSent || !fresh.IsActive {
		return nil
	}

	signups, err := e.activityRepo.GetSignupUserIDs(ctx, activity.ID)
	if err != nil {
		return err
	}

	details := activityDetails(*fresh)
	details.Signups = mentions(signups, ", ")
	a := e.writer.Write(ctx, announce.ActivityReminder, details)
	a.Content = mentions(signups, " ")

	channelID := fresh.ChannelID
	if channelID == 0 {
		channelID = xcontext.Configs(ctx).Channels.Activity
	}

	if err := e.dispatcher.PostReminder(ctx, channelID, a); err != nil {
		e.notificationFailed(ctx, KindActivity, err)
		return err
	}

	if err := e.activityRepo.MarkReminderSent(ctx, activity.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Warnf("Reminder of activity %d was already marked", activity.ID)
			return nil
		}

		return err
	}

	e.publish(ctx, KindActivity, activity.ID, "reminded", map[string]any{"signups": len(signups)})
	return nil
}

func activityDetails(a entity.ScheduledActivity) model.ActivityDetails {
	return model.ActivityDetails{
		Title:       a.Title,
		Description: a.Description,
		StartsAt:    announce.RelativeTime(a.StartsAt),
		Duration:    a.DurationMinutes,
	}
}
