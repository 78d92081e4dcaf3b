package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case VIP:
		o.printVIP(v)
	case Claim:
		o.printClaim(v)
	case Status:
		o.printStatus(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	SteamID          string    `json:"steam_id"`
	DiscordID        string    `json:"discord_id,omitempty"`
	DisplayName      string    `json:"display_name"`
	SeedingBalance   int64     `json:"seeding_balance_secs"`
	TotalSeedingTime int64     `json:"total_seeding_secs"`
	BalanceHours     int       `json:"balance_hours"`
	LastSeedCheck    time.Time `json:"last_seed_check"`
	// Only present on stats responses
	VIPHoursPerSeedHour float64 `json:"vip_hours_per_seed_hour,omitempty"`
}

// VIP response type
type VIP struct {
	HasVIP       bool       `json:"has_vip"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	NeverExpires bool       `json:"never_expires"`
	Expired      bool       `json:"expired"`
}

// Claim response type
type Claim struct {
	Player       Player    `json:"player"`
	ExpiresAt    time.Time `json:"expires_at"`
	GrantedHours float64   `json:"granted_hours"`
	NeverExpires bool      `json:"never_expires"`
}

// ServerStatus response type
type ServerStatus struct {
	Endpoint    string    `json:"endpoint"`
	State       string    `json:"state"`
	PlayerCount int       `json:"player_count"`
	Threshold   int       `json:"threshold"`
	CheckedAt   time.Time `json:"checked_at"`
}

// Status response type
type Status struct {
	Servers []ServerStatus `json:"servers"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.DisplayName, p.SteamID)
	if p.DiscordID != "" {
		fmt.Printf("Discord: %s\n", p.DiscordID)
	}
	fmt.Printf("Banked: %s (%d claimable hours)\n", formatDuration(p.SeedingBalance), p.BalanceHours)
	fmt.Printf("Lifetime: %s\n", formatDuration(p.TotalSeedingTime))
	fmt.Printf("Last seen seeding: %s\n", p.LastSeedCheck.Format(time.RFC3339))
	if p.VIPHoursPerSeedHour > 0 {
		fmt.Printf("Conversion rate: %.1f VIP hours per seeding hour\n", p.VIPHoursPerSeedHour)
	}
}

func (o *Output) printVIP(v VIP) {
	switch {
	case !v.HasVIP:
		fmt.Println("VIP: none")
	case v.NeverExpires:
		fmt.Println("VIP: active (never expires)")
	case v.Expired:
		fmt.Printf("VIP: expired %s\n", v.ExpiresAt.Format(time.RFC3339))
	default:
		fmt.Printf("VIP: active until %s\n", v.ExpiresAt.Format(time.RFC3339))
	}
}

func (o *Output) printClaim(c Claim) {
	fmt.Printf("Granted %.1f VIP hours\n", c.GrantedHours)
	fmt.Printf("VIP active until %s\n", c.ExpiresAt.Format(time.RFC3339))
	fmt.Printf("Remaining banked: %s (%d claimable hours)\n",
		formatDuration(c.Player.SeedingBalance), c.Player.BalanceHours)
}

func (o *Output) printStatus(s Status) {
	if len(s.Servers) == 0 {
		fmt.Println("No server status yet")
		return
	}
	for _, srv := range s.Servers {
		fmt.Printf("%s: %s (%d/%d players, checked %s)\n",
			srv.Endpoint, srv.State, srv.PlayerCount, srv.Threshold,
			srv.CheckedAt.Format(time.RFC3339))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}

func formatDuration(secs int64) string {
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
