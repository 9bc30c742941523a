package entity

import "time"

const SettingLastRecapSent = "last_recap_sent"

type BotSetting struct {
	Name      string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}
