package entity

import (
	"time"

	"github.com/questx-lab/taskmaster/pkg/enum"
)

type CompetitionPhase string

var (
	CompetitionScheduled      = enum.New(CompetitionPhase("scheduled"))
	CompetitionRunning        = enum.New(CompetitionPhase("running"))
	CompetitionMidwayNotified = enum.New(CompetitionPhase("midway_notified"))
	CompetitionFinalNotified  = enum.New(CompetitionPhase("final_notified"))
	CompetitionEnded          = enum.New(CompetitionPhase("ended"))
	CompetitionAwarded        = enum.New(CompetitionPhase("awarded"))
)

// Competition is identified by the id of the competition on the leaderboard
// service.
type Competition struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Title    string
	Metric   string
	StartsAt time.Time `gorm:"index"`
	EndsAt   time.Time `gorm:"index"`

	MidwayPingSent bool
	FinalPingSent  bool
	WinnersAwarded bool `gorm:"index"`
}

func (c Competition) Midpoint() time.Time {
	return c.StartsAt.Add(c.EndsAt.Sub(c.StartsAt) / 2)
}

// Phase is derived from the time and the guard flags, it is never stored.
func (c Competition) Phase(now time.Time) CompetitionPhase {
	switch {
	case c.WinnersAwarded:
		return CompetitionAwarded
	case now.Before(c.StartsAt):
		return CompetitionScheduled
	case !now.Before(c.EndsAt):
		return CompetitionEnded
	case c.FinalPingSent:
		return CompetitionFinalNotified
	case c.MidwayPingSent:
		return CompetitionMidwayNotified
	default:
		return CompetitionRunning
	}
}
