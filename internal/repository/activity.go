package repository

import (
	"context"
	"time"

	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.ScheduledActivity) error
	GetByID(ctx context.Context, id int64) (*entity.ScheduledActivity, error)
	GetUpcoming(ctx context.Context, now time.Time) ([]entity.ScheduledActivity, error)
	GetDueReminders(ctx context.Context, now time.Time, window time.Duration) ([]entity.ScheduledActivity, error)
	UpdateMessage(ctx context.Context, id, channelID, messageID int64) error
	MarkReminderSent(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	DeactivateStarted(ctx context.Context, now time.Time) (int64, error)

	// Signup
	CreateSignup(ctx context.Context, signup *entity.ActivitySignup) (bool, error)
	DeleteSignup(ctx context.Context, activityID, userID int64) (bool, error)
	GetSignupUserIDs(ctx context.Context, activityID int64) ([]int64, error)
}

type activityRepository struct{}

func NewActivityRepository() *activityRepository {
	return &activityRepository{}
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.ScheduledActivity) error {
	return xcontext.DB(ctx).Create(activity).Error
}

func (r *activityRepository) GetByID(ctx context.Context, id int64) (*entity.ScheduledActivity, error) {
	var result entity.ScheduledActivity
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *activityRepository) GetUpcoming(ctx context.Context, now time.Time) ([]entity.ScheduledActivity, error) {
	var result []entity.ScheduledActivity
	err := xcontext.DB(ctx).
		Where("is_active=? AND starts_at>?", true, now).
		Order("starts_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetDueReminders returns the active activities starting within window whose
// reminder was not sent. Activities already started are included so that the
// caller can close them.
func (r *activityRepository) GetDueReminders(
	ctx context.Context, now time.Time, window time.Duration,
) ([]entity.ScheduledActivity, error) {
	var result []entity.ScheduledActivity
	err := xcontext.DB(ctx).
		Where("is_active=? AND reminder_sent=? AND starts_at<=?", true, false, now.Add(window)).
		Order("starts_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *activityRepository) UpdateMessage(ctx context.Context, id, channelID, messageID int64) error {
	return xcontext.DB(ctx).Model(&entity.ScheduledActivity{}).
		Where("id=?", id).
		Updates(map[string]any{"channel_id": channelID, "message_id": messageID}).Error
}

func (r *activityRepository) MarkReminderSent(ctx context.Context, id int64) error {
	return compareAndSet(xcontext.DB(ctx), &entity.ScheduledActivity{}, "id", id, "reminder_sent")
}

func (r *activityRepository) Deactivate(ctx context.Context, id int64) error {
	return checkAffected(xcontext.DB(ctx).Model(&entity.ScheduledActivity{}).
		Where("id=? AND is_active=?", id, true).
		Update("is_active", false))
}

// DeactivateStarted closes every active activity whose start time passed and
// returns how many were closed.
func (r *activityRepository) DeactivateStarted(ctx context.Context, now time.Time) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.ScheduledActivity{}).
		Where("is_active=? AND starts_at<=?", true, now).
		Update("is_active", false)
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (r *activityRepository) CreateSignup(ctx context.Context, signup *entity.ActivitySignup) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(signup)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *activityRepository) DeleteSignup(ctx context.Context, activityID, userID int64) (bool, error) {
	tx := xcontext.DB(ctx).
		Where("activity_id=? AND user_id=?", activityID, userID).
		Delete(&entity.ActivitySignup{})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *activityRepository) GetSignupUserIDs(ctx context.Context, activityID int64) ([]int64, error) {
	var result []int64
	err := xcontext.DB(ctx).Model(&entity.ActivitySignup{}).
		Where("activity_id=?", activityID).
		Order("created_at ASC, user_id ASC").
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
