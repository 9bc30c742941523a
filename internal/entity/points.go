package entity

import "time"

type PointsAccount struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Balance   int64 `gorm:"check:balance >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is an append-only audit row of the points ledger. The balance of
// PointsAccount stays the source of truth.
type Transaction struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time

	UserID int64 `gorm:"index"`
	Delta  int64
	Reason string
}
