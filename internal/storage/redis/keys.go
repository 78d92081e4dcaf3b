package redis

import (
	"fmt"

	"github.com/hllops/seedbank/internal/model"
)

// Key prefix for all seeding-related data
const keyPrefix = "seedbank"

// playerKey returns the Redis key for a PlayerRecord
func playerKey(id model.SteamID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// discordIndexKey returns the Redis key for the discord_id -> steam_id index
func discordIndexKey(id model.DiscordID) string {
	return fmt.Sprintf("%s:idx:discord:%s", keyPrefix, id)
}
