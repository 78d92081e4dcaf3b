package response

import (
	"time"

	"github.com/hllops/seedbank/internal/model"
)

// PlayerResponse is the API shape of a player record. Durations are
// integer seconds, timestamps UTC.
type PlayerResponse struct {
	SteamID          string    `json:"steam_id"`
	DiscordID        string    `json:"discord_id,omitempty"`
	DisplayName      string    `json:"display_name"`
	SeedingBalance   int64     `json:"seeding_balance_secs"`
	TotalSeedingTime int64     `json:"total_seeding_secs"`
	BalanceHours     int       `json:"balance_hours"`
	LastSeedCheck    time.Time `json:"last_seed_check"`
}

// PlayerFromModel converts a record to its API shape
func PlayerFromModel(p *model.PlayerRecord) PlayerResponse {
	return PlayerResponse{
		SteamID:          string(p.SteamID),
		DiscordID:        string(p.DiscordID),
		DisplayName:      p.DisplayName,
		SeedingBalance:   int64(p.SeedingBalance / time.Second),
		TotalSeedingTime: int64(p.TotalSeedingTime / time.Second),
		BalanceHours:     p.BalanceHours(),
		LastSeedCheck:    p.LastSeedCheck.UTC(),
	}
}

// StatsResponse is a player record together with the active conversion
// rate, so the front-end can render what a claim would buy
type StatsResponse struct {
	PlayerResponse
	VIPHoursPerSeedHour float64 `json:"vip_hours_per_seed_hour"`
}

// VIPResponse is the reconciled VIP status across all servers
type VIPResponse struct {
	HasVIP       bool       `json:"has_vip"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	NeverExpires bool       `json:"never_expires"`
	Expired      bool       `json:"expired"`
}

// VIPFromStatus converts a reconciled status to its API shape
func VIPFromStatus(status model.VIPStatus, now time.Time) VIPResponse {
	resp := VIPResponse{
		HasVIP:       status.HasVIP(),
		NeverExpires: status.Indefinite(),
		Expired:      status.Expired(now),
	}
	if status.ExpiresAt != nil {
		expires := status.ExpiresAt.UTC()
		resp.ExpiresAt = &expires
	}
	return resp
}

// ClaimResponse is the outcome of a successful claim
type ClaimResponse struct {
	Player       PlayerResponse `json:"player"`
	ExpiresAt    time.Time      `json:"expires_at"`
	GrantedHours float64        `json:"granted_hours"`
	NeverExpires bool           `json:"never_expires"`
}

// StatusResponse is the monitor's latest per-endpoint summary
type StatusResponse struct {
	Servers []model.ServerStatus `json:"servers"`
}
