package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/internal/common"
	"github.com/questx-lab/taskmaster/internal/domain/notify"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/dateutil"
	"github.com/questx-lab/taskmaster/pkg/errorx"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
)

const maxPrizeLength = 256

// postAnnouncement posts a to channelID and copies it to the announcements
// channel. Only the first post is required to succeed.
func postAnnouncement(
	ctx context.Context, dispatcher notify.Dispatcher, kind string, channelID int64, a model.Announcement,
) (int64, error) {
	messageID, err := dispatcher.PostAnnouncement(ctx, channelID, a)
	if err != nil {
		notificationFailed(ctx, kind, err)
		return 0, err
	}

	mirrorID := xcontext.Configs(ctx).Channels.Announcements
	if mirrorID != 0 && mirrorID != channelID {
		if _, err := dispatcher.PostAnnouncement(ctx, mirrorID, a); err != nil {
			notificationFailed(ctx, kind, err)
		}
	}

	return messageID, nil
}

func notificationFailed(ctx context.Context, kind string, err error) {
	common.PromCounters[common.NotificationFailureTotal].WithLabelValues(kind).Inc()
	if errors.Is(err, notify.ErrNotConfigured) {
		xcontext.Logger(ctx).Warnf("Skip %s notification, the target is not configured", kind)
		return
	}

	xcontext.Logger(ctx).Warnf("Cannot send %s notification: %v", kind, err)
}

func checkPrize(prize string) (string, error) {
	prize = strings.TrimSpace(prize)
	if prize == "" {
		return "", errorx.New(errorx.BadRequest, "Not allow empty prize")
	}

	if len(prize) > maxPrizeLength {
		return "", errorx.New(errorx.BadRequest, "Prize too long (at most %d characters)", maxPrizeLength)
	}

	return prize, nil
}

// endTime returns the end of an event lasting duration from now. Times are
// stored in UTC with a precision of one second.
func endTime(now time.Time, duration string) (time.Time, error) {
	d, err := dateutil.ParseDuration(duration)
	if err != nil {
		return time.Time{}, errorx.New(errorx.BadRequest, "Invalid duration, use a number followed by m, h or d, at most 366d")
	}

	return now.UTC().Truncate(time.Second).Add(d), nil
}

// isDomainError reports whether err is meant to be returned to the caller as
// is.
func isDomainError(err error) bool {
	var errx errorx.Error
	return errors.As(err, &errx)
}
