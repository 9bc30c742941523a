package entity

import "time"

// UserLink maps a Discord user to the player name used on the leaderboard.
type UserLink struct {
	DiscordID    int64  `gorm:"primaryKey;autoIncrement:false"`
	ExternalName string `gorm:"uniqueIndex"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
