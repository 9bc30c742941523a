package model

import "time"

type Giveaway struct {
	MessageID   int64     `json:"message_id,string"`
	ChannelID   int64     `json:"channel_id,string"`
	Prize       string    `json:"prize"`
	EndsAt      time.Time `json:"ends_at"`
	WinnerCount int       `json:"winner_count"`
	Phase       string    `json:"phase"`
}

type CreateGiveawayRequest struct {
	Prize       string `json:"prize"`
	Duration    string `json:"duration"`
	WinnerCount int    `json:"winner_count"`
	ChannelID   int64  `json:"channel_id,string"`
	HostID      int64  `json:"host_id,string"`
	RoleID      int64  `json:"role_id,string"`
}

type CreateGiveawayResponse struct {
	Giveaway Giveaway `json:"giveaway"`
}

type EnterGiveawayRequest struct {
	MessageID int64 `json:"message_id,string"`
	UserID    int64 `json:"user_id,string"`
}

type EnterGiveawayResponse struct {
	Entered bool `json:"entered"`
}

type GetGiveawayEntriesRequest struct {
	MessageID int64 `form:"message_id"`
}

type GetGiveawayEntriesResponse struct {
	Giveaway Giveaway `json:"giveaway"`
	UserIDs  []string `json:"user_ids"`
	Winners  []string `json:"winners"`
}
