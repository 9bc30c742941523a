package model

import "time"

type Competition struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Metric   string    `json:"metric"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Phase    string    `json:"phase"`
}

// StartCompetitionRequest is sent when a skill poll closes, Metric is the
// winning option.
type StartCompetitionRequest struct {
	Metric   string    `json:"metric"`
	StartsAt time.Time `json:"starts_at"`
	Duration string    `json:"duration"`
}

type StartCompetitionResponse struct {
	Competition Competition `json:"competition"`
}
