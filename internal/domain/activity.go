package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/internal/repository"
	"github.com/questx-lab/taskmaster/pkg/customid"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	defaultActivityDuration = 60
	maxActivityTitle        = 100
)

type ActivityDomain interface {
	Create(context.Context, *model.CreateActivityRequest) (*model.CreateActivityResponse, error)
	Signup(context.Context, *model.SignupActivityRequest) (*model.SignupActivityResponse, error)
	Leave(context.Context, *model.LeaveActivityRequest) (*model.LeaveActivityResponse, error)
	Cancel(context.Context, *model.CancelActivityRequest) (*model.CancelActivityResponse, error)
	GetParticipants(context.Context, *model.GetActivityParticipantsRequest) (*model.GetActivityParticipantsResponse, error)
}

type activityDomain struct {
	activityRepo repository.ActivityRepository
	writer       announce.Writer
	dispatcher   notify.Dispatcher
}

func NewActivityDomain(
	activityRepo repository.ActivityRepository,
	writer announce.Writer,
	dispatcher notify.Dispatcher,
) *activityDomain {
	return &activityDomain{
		activityRepo: activityRepo,
		writer:       writer,
		dispatcher:   dispatcher,
	}
}

func (d *activityDomain) Create(
	ctx context.Context, req *model.CreateActivityRequest,
) (*model.CreateActivityResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty title")
	}

	if len(title) > maxActivityTitle {
		return nil, errorx.New(errorx.BadRequest, "Title too long (at most %d characters)", maxActivityTitle)
	}

	now := time.Now().UTC()
	startsAt := req.StartsAt.UTC().Truncate(time.Second)
	if !startsAt.After(now) {
		return nil, errorx.New(errorx.BadRequest, "The activity must start in the future")
	}

	if req.DurationMinutes == 0 {
		req.DurationMinutes = defaultActivityDuration
	}

	if req.DurationMinutes < 0 {
		return nil, errorx.New(errorx.BadRequest, "Duration must be positive")
	}

	channelID := req.ChannelID
	if channelID == 0 {
		channelID = xcontext.Configs(ctx).Channels.Activity
	}

	activity := &entity.ScheduledActivity{
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		StartsAt:        startsAt,
		DurationMinutes: req.DurationMinutes,
		ChannelID:       channelID,
		CreatedBy:       req.CreatedBy,
		IsActive:        true,
	}
	if err := d.activityRepo.Create(ctx, activity); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create activity: %v", err)
		return nil, errorx.Unknown
	}

	a := d.writer.Write(ctx, announce.ActivityStart, model.ActivityDetails{
		Title:       activity.Title,
		Description: activity.Description,
		StartsAt:    announce.RelativeTime(activity.StartsAt),
		Duration:    activity.DurationMinutes,
	})
	a.Buttons = []model.AnnouncementButton{
		{Label: "Sign up", CustomID: customid.New(lifecycle.KindActivity, ActionSignup, activity.ID).String()},
		{Label: "Leave", CustomID: customid.New(lifecycle.KindActivity, ActionLeave, activity.ID).String()},
	}

	messageID, err := postAnnouncement(ctx, d.dispatcher, lifecycle.KindActivity, channelID, a)
	if err == nil {
		if err := d.activityRepo.UpdateMessage(ctx, activity.ID, channelID, messageID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot save message of activity %d: %v", activity.ID, err)
		}
		activity.MessageID = messageID
	}

	return &model.CreateActivityResponse{Activity: convertActivity(activity, now)}, nil
}

func (d *activityDomain) Signup(
	ctx context.Context, req *model.SignupActivityRequest,
) (*model.SignupActivityResponse, error) {
	if req.UserID == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	if _, err := d.getOpen(ctx, req.ActivityID); err != nil {
		return nil, err
	}

	created, err := d.activityRepo.CreateSignup(ctx, &entity.ActivitySignup{
		ActivityID: req.ActivityID,
		UserID:     req.UserID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create activity signup: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SignupActivityResponse{SignedUp: created}, nil
}

func (d *activityDomain) Leave(
	ctx context.Context, req *model.LeaveActivityRequest,
) (*model.LeaveActivityResponse, error) {
	if _, err := d.getOpen(ctx, req.ActivityID); err != nil {
		return nil, err
	}

	deleted, err := d.activityRepo.DeleteSignup(ctx, req.ActivityID, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete activity signup: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LeaveActivityResponse{Left: deleted}, nil
}

func (d *activityDomain) Cancel(
	ctx context.Context, req *model.CancelActivityRequest,
) (*model.CancelActivityResponse, error) {
	activity, err := d.getOpen(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}

	if err := d.activityRepo.Deactivate(ctx, activity.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.EventClosed, "The activity is already closed")
		}

		xcontext.Logger(ctx).Errorf("Cannot cancel activity: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CancelActivityResponse{}, nil
}

func (d *activityDomain) GetParticipants(
	ctx context.Context, req *model.GetActivityParticipantsRequest,
) (*model.GetActivityParticipantsResponse, error) {
	activity, err := d.activityRepo.GetByID(ctx, req.ActivityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found activity")
		}

		xcontext.Logger(ctx).Errorf("Cannot get activity: %v", err)
		return nil, errorx.Unknown
	}

	userIDs, err := d.activityRepo.GetSignupUserIDs(ctx, req.ActivityID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get activity signups: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetActivityParticipantsResponse{
		Activity: convertActivity(activity, time.Now()),
		UserIDs:  formatIDs(userIDs),
	}, nil
}

// getOpen returns the activity if it is active and has not started yet.
func (d *activityDomain) getOpen(ctx context.Context, activityID int64) (*entity.ScheduledActivity, error) {
	activity, err := d.activityRepo.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found activity")
		}

		xcontext.Logger(ctx).Errorf("Cannot get activity: %v", err)
		return nil, errorx.Unknown
	}

	switch activity.Phase(time.Now()) {
	case entity.ActivityStarted, entity.ActivityClosed:
		return nil, errorx.New(errorx.EventClosed, "%s is not open anymore", activity.Title)
	}

	return activity, nil
}
