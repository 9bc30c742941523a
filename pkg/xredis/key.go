package xredis

import "fmt"

const ItemMappingKey = "taskmaster:item_mapping"

func GiveawayEntryCountKey(messageID int64) string {
	return fmt.Sprintf("taskmaster:giveaway:%d:entries", messageID)
}
