package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/taskmaster/pkg/enum"
)

// NoWinner is the winner id recorded when a raffle was drawn without entries.
const NoWinner int64 = 0

type RafflePhase string

var (
	RaffleOpen    = enum.New(RafflePhase("open"))
	RaffleClosing = enum.New(RafflePhase("closing"))
	RaffleDrawn   = enum.New(RafflePhase("drawn"))
)

type Raffle struct {
	Base

	Prize     string
	EndsAt    time.Time `gorm:"index"`
	ChannelID int64
	MessageID int64
	CreatedBy int64

	// WinnerID is NULL until the draw, NoWinner if nobody entered.
	WinnerID  sql.NullInt64 `gorm:"index"`
	Announced bool
}

func (r Raffle) Phase(now time.Time) RafflePhase {
	switch {
	case r.WinnerID.Valid:
		return RaffleDrawn
	case now.Before(r.EndsAt):
		return RaffleOpen
	default:
		return RaffleClosing
	}
}

func (r Raffle) HasWinner() bool {
	return r.WinnerID.Valid && r.WinnerID.Int64 != NoWinner
}

type RaffleEntrySource string

var (
	RaffleEntrySelf  = enum.New(RaffleEntrySource("self"))
	RaffleEntryAdmin = enum.New(RaffleEntrySource("admin"))
)

// RaffleEntry is one ticket. A user holding several rows has proportionally
// more chance to win.
type RaffleEntry struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	RaffleID int64  `gorm:"index:idx_raffle_entries_raffle_user"`
	Raffle   Raffle `gorm:"foreignKey:RaffleID"`
	UserID   int64  `gorm:"index:idx_raffle_entries_raffle_user"`
	Source   RaffleEntrySource
}
