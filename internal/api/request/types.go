package request

// RegisterRequest links a steam id to a discord account
type RegisterRequest struct {
	SteamID     string `json:"steam_id"`
	DiscordID   string `json:"discord_id"`
	DisplayName string `json:"display_name"`
}

// ClaimRequest converts banked seeding hours into VIP time
type ClaimRequest struct {
	Hours int `json:"hours"`
}
