package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/taskmaster/pkg/enum"
)

type GiveawayPhase string

var (
	GiveawayActive  = enum.New(GiveawayPhase("active"))
	GiveawayClosing = enum.New(GiveawayPhase("closing"))
	GiveawayEnded   = enum.New(GiveawayPhase("ended"))
)

// Giveaway is tied to its announcement message.
type Giveaway struct {
	MessageID int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChannelID   int64
	HostID      int64
	Prize       string
	EndsAt      time.Time `gorm:"index"`
	WinnerCount int
	RoleID      sql.NullInt64

	IsActive  bool `gorm:"index"`
	Drawn     bool
	Announced bool
}

func (g Giveaway) Phase(now time.Time) GiveawayPhase {
	switch {
	case !g.IsActive:
		return GiveawayEnded
	case now.Before(g.EndsAt):
		return GiveawayActive
	default:
		return GiveawayClosing
	}
}

type GiveawayEntry struct {
	MessageID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

type GiveawayWinner struct {
	MessageID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}
