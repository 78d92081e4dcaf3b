package memory

import (
	"context"
	"sync"

	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players      map[model.SteamID]*model.PlayerRecord
	discordIndex map[model.DiscordID]model.SteamID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:      make(map[model.SteamID]*model.PlayerRecord),
		discordIndex: make(map[model.DiscordID]model.SteamID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *player
	s.players[player.SteamID] = &cp
	if player.DiscordID != "" {
		s.discordIndex[player.DiscordID] = player.SteamID
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.SteamID) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	cp := *player
	return &cp, nil
}

func (s *Storage) GetPlayerByDiscord(ctx context.Context, id model.DiscordID) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	steamID, ok := s.discordIndex[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	player, ok := s.players[steamID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	if player.DiscordID != id {
		// The index names a record that belongs to someone else
		return nil, model.ErrDuplicateIdentity
	}
	cp := *player
	return &cp, nil
}
