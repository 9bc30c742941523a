package model

import "time"

type Activity struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Phase           string    `json:"phase"`
}

type CreateActivityRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	DurationMinutes int       `json:"duration_minutes"`
	ChannelID       int64     `json:"channel_id,string"`
	CreatedBy       int64     `json:"created_by,string"`
}

type CreateActivityResponse struct {
	Activity Activity `json:"activity"`
}

type SignupActivityRequest struct {
	ActivityID int64 `json:"activity_id,string"`
	UserID     int64 `json:"user_id,string"`
}

type SignupActivityResponse struct {
	SignedUp bool `json:"signed_up"`
}

type CancelActivityRequest struct {
	ActivityID int64 `json:"activity_id,string"`
}

type CancelActivityResponse struct{}

type GetActivityParticipantsRequest struct {
	ActivityID int64 `form:"activity_id"`
}

type GetActivityParticipantsResponse struct {
	Activity Activity `json:"activity"`
	UserIDs  []string `json:"user_ids"`
}

type LeaveActivityRequest struct {
	ActivityID int64 `json:"activity_id,string"`
	UserID     int64 `json:"user_id,string"`
}

type LeaveActivityResponse struct {
	Left bool `json:"left"`
}
