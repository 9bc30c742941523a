package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/questx-lab/taskmaster/internal/domain/announce"
	"github.com/questx-lab/taskmaster/internal/entity"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/dateutil"
	"github.com/questx-lab/taskmaster/pkg/xcontext"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	recapTopGainers = 10

	// A recap is not sent anymore when the scheduler comes back later than
	// this after the scheduled time.
	recapGrace = 6 * time.Hour
)

// ProcessRecap posts the weekly recap once per occurrence of the recap
// schedule. The last sent time stored in the settings is the guard.
func (e *engine) ProcessRecap(ctx context.Context) error {
	cfg := xcontext.Configs(ctx)
	schedule, err := cron.ParseStandard(cfg.Scheduler.RecapSchedule)
	if err != nil {
		return fmt.Errorf("invalid recap schedule %q: %w", cfg.Scheduler.RecapSchedule, err)
	}

	// Schedules without CRON_TZ are read in UTC.
	now := e.now().UTC()
	occurrence, ok := dateutil.PreviousOccurrence(schedule, now, 8*24*time.Hour)
	if !ok || now.Sub(occurrence) > recapGrace {
		return nil
	}

	last, err := e.lastRecapSent(ctx)
	if err != nil {
		return err
	}

	lastTime, err := time.Parse(time.RFC3339, last)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Invalid last recap time %q, treat as never sent", last)
		lastTime = time.Time{}
	}

	if !lastTime.Before(occurrence) {
		return nil
	}

	if cfg.Channels.Recap == 0 {
		xcontext.Logger(ctx).Warnf("Skip the weekly recap, the recap channel is not configured")
		return nil
	}

	gains, err := e.leaderboard.GetWeeklyGains(ctx, cfg.Leaderboard.GroupID)
	if err != nil {
		return fmt.Errorf("cannot get weekly gains: %w", err)
	}

	sentAt := now.Format(time.RFC3339)
	if err := e.settingRepo.CompareAndSet(ctx, entity.SettingLastRecapSent, last, sentAt); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		return err
	}

	lines := []string{}
	fields := []model.AnnouncementField{}
	for i, gain := range gains {
		if i >= recapTopGainers {
			break
		}

		lines = append(lines, fmt.Sprintf("%d. %s +%d xp", i+1, gain.Name, gain.Gained))
		fields = append(fields, model.AnnouncementField{
			Name:  fmt.Sprintf("#%d %s", i+1, gain.Name),
			Value: fmt.Sprintf("+%d xp", gain.Gained),
		})
	}

	_, week := occurrence.ISOWeek()
	a := e.writer.Write(ctx, announce.WeeklyRecap, model.RecapDetails{
		Week:    fmt.Sprint(week),
		Gainers: strings.Join(lines, "\n"),
	})
	a.Fields = append(a.Fields, fields...)

	if _, err := e.dispatcher.PostAnnouncement(ctx, cfg.Channels.Recap, a); err != nil {
		e.notificationFailed(ctx, KindRecap, err)

		// Give the recap back to the next tick.
		if err := e.settingRepo.CompareAndSet(ctx, entity.SettingLastRecapSent, sentAt, last); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot restore the last recap time: %v", err)
		}

		return err
	}

	e.publish(ctx, KindRecap, occurrence.Unix(), "sent", map[string]any{"gainers": len(lines)})
	return nil
}

func (e *engine) lastRecapSent(ctx context.Context) (string, error) {
	last, err := e.settingRepo.Get(ctx, entity.SettingLastRecapSent)
	if err == nil {
		return last, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	last = time.Time{}.Format(time.RFC3339)
	if err := e.settingRepo.CreateIfNotExists(ctx, entity.SettingLastRecapSent, last); err != nil {
		return "", err
	}

	return e.settingRepo.Get(ctx, entity.SettingLastRecapSent)
}
