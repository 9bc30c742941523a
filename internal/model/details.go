package model

// The details below are the inputs of announcement rendering. Their structs
// tags are the keys used in prompts and fallback templates.

type RaffleDetails struct {
	Prize      string `structs:"prize"`
	EndsAt     string `structs:"ends_at"`
	PrizeValue string `structs:"prize_value,omitempty"`
	Winner     string `structs:"winner,omitempty"`
	Tickets    int64  `structs:"tickets,omitempty"`
}

type GiveawayDetails struct {
	Prize       string `structs:"prize"`
	EndsAt      string `structs:"ends_at"`
	WinnerCount int    `structs:"winner_count"`
	PrizeValue  string `structs:"prize_value,omitempty"`
	Host        string `structs:"host,omitempty"`
	Winners     string `structs:"winners,omitempty"`
	Entries     int64  `structs:"entries,omitempty"`
}

type CompetitionDetails struct {
	Title    string `structs:"title"`
	Metric   string `structs:"metric"`
	StartsAt string `structs:"starts_at"`
	EndsAt   string `structs:"ends_at"`
	Winners  string `structs:"winners,omitempty"`
}

type ActivityDetails struct {
	Title       string `structs:"title"`
	Description string `structs:"description"`
	StartsAt    string `structs:"starts_at"`
	Duration    int    `structs:"duration"`
	Signups     string `structs:"signups,omitempty"`
}

type PointsDetails struct {
	Amount  int64  `structs:"amount"`
	Reason  string `structs:"reason"`
	Balance int64  `structs:"balance"`
}

type RecapDetails struct {
	Week    string `structs:"week"`
	Gainers string `structs:"gainers"`
}

type BulletinDetails struct {
	Competitions int `structs:"competitions"`
	Raffles      int `structs:"raffles"`
	Giveaways    int `structs:"giveaways"`
	Activities   int `structs:"activities"`
}
