package gameserver

import (
	"context"
	"time"

	"github.com/hllops/seedbank/internal/model"
)

// PlayerInfo is one player currently connected to a game server
type PlayerInfo struct {
	SteamID model.SteamID
	Name    string
}

// Client is the game-server query/control collaborator. It spans every
// configured endpoint; callers address operations to one endpoint at a
// time so that per-endpoint failures stay isolated.
//
// Implementations own timeouts and connection handling. Any failure is
// returned as an error, never an indefinite wait.
type Client interface {
	// Endpoints lists the configured endpoint names, in config order
	Endpoints() []string

	// ListPlayers returns the players currently on the endpoint
	ListPlayers(ctx context.Context, endpoint string) ([]PlayerInfo, error)

	// GetVIP returns the endpoint's VIP record for a player; an absent
	// record is a legitimate zero VIPStatus, not an error
	GetVIP(ctx context.Context, endpoint string, steamID model.SteamID) (model.VIPStatus, error)

	// GrantVIP adds or updates the endpoint's VIP record
	GrantVIP(ctx context.Context, endpoint string, steamID model.SteamID, name string, expiresAt time.Time) error

	// MessagePlayer sends an in-game message to a player on the endpoint
	MessagePlayer(ctx context.Context, endpoint string, steamID model.SteamID, text string) error
}
