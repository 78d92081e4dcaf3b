package storage

import (
	"context"

	"github.com/hllops/seedbank/internal/model"
)

// Storage defines the interface for player record persistence.
//
// Implementations keep a secondary index from discord id to steam id so
// registered players can be found from command traffic. A write is
// all-or-nothing per record: a failed save must not leave a record
// half-written.
type Storage interface {
	// SavePlayer persists a record and, when the record is registered,
	// its discord index entry
	SavePlayer(ctx context.Context, player *model.PlayerRecord) error

	// GetPlayer returns the record for a steam id, or
	// model.ErrPlayerNotFound
	GetPlayer(ctx context.Context, id model.SteamID) (*model.PlayerRecord, error)

	// GetPlayerByDiscord resolves the discord index. If the index names a
	// record whose DiscordID does not match, that is a data-integrity
	// fault reported as model.ErrDuplicateIdentity, never repaired here.
	GetPlayerByDiscord(ctx context.Context, id model.DiscordID) (*model.PlayerRecord, error)
}
