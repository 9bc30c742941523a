package entity

import (
	"time"

	"github.com/questx-lab/taskmaster/pkg/enum"
)

const ActivityReminderWindow = time.Hour

type ActivityPhase string

var (
	ActivityUpcoming  = enum.New(ActivityPhase("upcoming"))
	ActivityReminding = enum.New(ActivityPhase("reminding"))
	ActivityReminded  = enum.New(ActivityPhase("reminded"))
	ActivityStarted   = enum.New(ActivityPhase("started"))
	ActivityClosed    = enum.New(ActivityPhase("closed"))
)

// ScheduledActivity is a one-shot clan activity, e.g. a group boss trip.
type ScheduledActivity struct {
	Base

	Title           string
	Description     string
	StartsAt        time.Time `gorm:"index"`
	DurationMinutes int
	ChannelID       int64
	MessageID       int64
	CreatedBy       int64

	ReminderSent bool
	IsActive     bool `gorm:"index"`
}

func (a ScheduledActivity) Phase(now time.Time) ActivityPhase {
	switch {
	case !a.IsActive:
		return ActivityClosed
	case !now.Before(a.StartsAt):
		return ActivityStarted
	case a.ReminderSent:
		return ActivityReminded
	case !now.Before(a.StartsAt.Add(-ActivityReminderWindow)):
		return ActivityReminding
	default:
		return ActivityUpcoming
	}
}

type ActivitySignup struct {
	ActivityID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID     int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt  time.Time
}
