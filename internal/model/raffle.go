package model

import "time"

type Raffle struct {
	ID         int64     `json:"id"`
	Prize      string    `json:"prize"`
	EndsAt     time.Time `json:"ends_at"`
	Phase      string    `json:"phase"`
	WinnerID   *int64    `json:"winner_id,omitempty"`
	Announced  bool      `json:"announced"`
	PrizeValue int64     `json:"prize_value,omitempty"`
}

type CreateRaffleRequest struct {
	Prize     string `json:"prize"`
	Duration  string `json:"duration"`
	ChannelID int64  `json:"channel_id,string"`
	CreatedBy int64  `json:"created_by,string"`
}

type CreateRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}

type EnterRaffleRequest struct {
	RaffleID int64 `json:"raffle_id,string"`
	UserID   int64 `json:"user_id,string"`
	Tickets  int   `json:"tickets"`
}

type EnterRaffleResponse struct {
	Tickets int64 `json:"tickets"`
}

type GiveRaffleTicketsRequest struct {
	RaffleID int64 `json:"raffle_id,string"`
	UserID   int64 `json:"user_id,string"`
	Tickets  int   `json:"tickets"`
}

type GiveRaffleTicketsResponse struct {
	Tickets int64 `json:"tickets"`
}

type GetRaffleTicketsRequest struct {
	RaffleID int64 `form:"raffle_id"`
}

type RaffleTickets struct {
	UserID  int64 `json:"user_id,string"`
	Tickets int64 `json:"tickets"`
}

type GetRaffleTicketsResponse struct {
	Raffle  Raffle          `json:"raffle"`
	Tickets []RaffleTickets `json:"tickets"`
}

type DrawRaffleRequest struct {
	RaffleID int64 `json:"raffle_id,string"`
}

type DrawRaffleResponse struct {
	Raffle Raffle `json:"raffle"`
}
