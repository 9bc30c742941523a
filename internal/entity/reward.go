package entity

import (
	"database/sql"
	"time"
)

// Reward is an item of the point store. A reward with a role grants that role
// to the member who redeems it.
type Reward struct {
	Base

	Name        string `gorm:"uniqueIndex"`
	Cost        int64
	Description string
	RoleID      sql.NullInt64
}

// Redemption keeps the name and cost of the reward at the time it was
// redeemed, the reward itself may be removed later.
type Redemption struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID     int64 `gorm:"index"`
	RewardID   int64
	RewardName string
	Cost       int64
}
