package model

import (
	"encoding/json"
	"time"
)

// SteamID is a player's steam64 identity, assigned by the game platform
type SteamID string

// DiscordID identifies the discord account a player linked via registration
type DiscordID string

// PlayerRecord is the authoritative accrual/spend state for one player.
// A record is created the first time a player is seen seeding, or when
// they register; it is never deleted.
type PlayerRecord struct {
	SteamID     SteamID
	DiscordID   DiscordID // empty until the player registers
	DisplayName string

	// SeedingBalance is unspent accrued seeding time. Never negative.
	SeedingBalance time.Duration
	// TotalSeedingTime is lifetime accrual. Only ever increases; spends
	// do not reduce it.
	TotalSeedingTime time.Duration

	LastSeedCheck time.Time
}

// BalanceHours returns the number of whole hours of unspent balance
func (p *PlayerRecord) BalanceHours() int {
	return int(p.SeedingBalance / time.Hour)
}

// Registered reports whether the record is linked to a discord account
func (p *PlayerRecord) Registered() bool {
	return p.DiscordID != ""
}

// playerRecordJSON is the persisted form: durations as integer seconds,
// timestamps as UTC with second precision.
type playerRecordJSON struct {
	SteamID          string    `json:"steam_id"`
	DiscordID        string    `json:"discord_id,omitempty"`
	DisplayName      string    `json:"display_name"`
	SeedingBalance   int64     `json:"seeding_balance_secs"`
	TotalSeedingTime int64     `json:"total_seeding_secs"`
	LastSeedCheck    time.Time `json:"last_seed_check"`
}

// MarshalJSON implements json.Marshaler
func (p *PlayerRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(playerRecordJSON{
		SteamID:          string(p.SteamID),
		DiscordID:        string(p.DiscordID),
		DisplayName:      p.DisplayName,
		SeedingBalance:   int64(p.SeedingBalance / time.Second),
		TotalSeedingTime: int64(p.TotalSeedingTime / time.Second),
		LastSeedCheck:    p.LastSeedCheck.UTC().Truncate(time.Second),
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PlayerRecord) UnmarshalJSON(data []byte) error {
	var raw playerRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.SteamID = SteamID(raw.SteamID)
	p.DiscordID = DiscordID(raw.DiscordID)
	p.DisplayName = raw.DisplayName
	p.SeedingBalance = time.Duration(raw.SeedingBalance) * time.Second
	p.TotalSeedingTime = time.Duration(raw.TotalSeedingTime) * time.Second
	p.LastSeedCheck = raw.LastSeedCheck.UTC()
	return nil
}
