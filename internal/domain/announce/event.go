package announce

import (
	"fmt"
	"time"
)

type EventType string

const (
	RaffleStart      EventType = "raffle_start"
	RaffleWinner     EventType = "raffle_winner"
	RaffleEmpty      EventType = "raffle_empty"
	GiveawayStart    EventType = "giveaway_start"
	GiveawayWinner   EventType = "giveaway_winner"
	GiveawayEmpty    EventType = "giveaway_empty"
	SOTWStart        EventType = "sotw_start"
	SOTWMidway       EventType = "sotw_midway"
	SOTWFinal        EventType = "sotw_final"
	SOTWResults      EventType = "sotw_results"
	PointsAward      EventType = "points_award"
	ActivityStart    EventType = "pvm_event_start"
	ActivityReminder EventType = "pvm_event_reminder"
	WeeklyRecap      EventType = "weekly_recap"
	Bulletin         EventType = "bulletin"
)

// RelativeTime renders t with the chat client's relative time markup.
func RelativeTime(t time.Time) string {
	return fmt.Sprintf("<t:%d:R>", t.Unix())
}

func UserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

func RoleMention(roleID int64) string {
	return fmt.Sprintf("<@&%d>", roleID)
}
