// Package ledger owns the per-player accrual/spend state and its
// mutation invariants.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hllops/seedbank/internal/dependencies/clock"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/storage"
)

// Service is the authoritative player balance ledger. Balance-mutating
// operations for a single steam id are serialized with a per-player
// mutex, so an accrual from the periodic tick and a spend from a claim
// can never interleave on the same record.
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.SteamID]*sync.Mutex
}

// New creates a new ledger service
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger,
		locks:   make(map[model.SteamID]*sync.Mutex),
	}
}

// lockPlayer acquires the per-player mutex and returns its unlock func.
// Locks are never removed; the set of distinct players is small and
// records live forever anyway.
func (s *Service) lockPlayer(id model.SteamID) func() {
	s.mu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Accrue credits seeding time to a player, creating the record on first
// sighting. The second return reports whether the whole-hour count of the
// unspent balance increased, which callers use to fire the once-per-hour
// reward notification; it cannot re-fire for the same hour because the
// comparison is against the pre-increment balance.
func (s *Service) Accrue(ctx context.Context, steamID model.SteamID, displayName string, increment time.Duration) (*model.PlayerRecord, bool, error) {
	if increment < 0 {
		return nil, false, fmt.Errorf("accrual increment must not be negative, got %v", increment)
	}

	unlock := s.lockPlayer(steamID)
	defer unlock()

	now := s.clock.Now()

	player, err := s.storage.GetPlayer(ctx, steamID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		player = &model.PlayerRecord{
			SteamID:          steamID,
			DisplayName:      displayName,
			SeedingBalance:   increment,
			TotalSeedingTime: increment,
			LastSeedCheck:    now,
		}
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return nil, false, fmt.Errorf("saving new seeder record for %s: %w", steamID, err)
		}
		s.logger.Info("new seeder record",
			slog.String("steam_id", string(steamID)),
			slog.String("display_name", displayName),
		)
		return player, player.BalanceHours() > 0, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading player %s: %w", steamID, err)
	}

	hoursBefore := player.BalanceHours()

	player.SeedingBalance += increment
	player.TotalSeedingTime += increment
	player.LastSeedCheck = now
	if displayName != "" {
		player.DisplayName = displayName
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, false, fmt.Errorf("saving seeding accrual for %s: %w", steamID, err)
	}

	return player, player.BalanceHours() > hoursBefore, nil
}

// Spend debits unspent balance. It fails with model.ErrInsufficientBalance
// when the amount exceeds the balance, leaving the record untouched.
// Callers converting balance into an external grant must only call Spend
// after every grant has succeeded.
func (s *Service) Spend(ctx context.Context, steamID model.SteamID, amount time.Duration) (*model.PlayerRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("spend amount must be positive, got %v", amount)
	}

	unlock := s.lockPlayer(steamID)
	defer unlock()

	player, err := s.storage.GetPlayer(ctx, steamID)
	if err != nil {
		return nil, err
	}

	if amount > player.SeedingBalance {
		return nil, model.ErrInsufficientBalance
	}

	player.SeedingBalance -= amount
	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("saving spend for %s: %w", steamID, err)
	}

	s.logger.Info("balance spent",
		slog.String("steam_id", string(steamID)),
		slog.Duration("amount", amount),
		slog.Duration("remaining", player.SeedingBalance),
	)

	return player, nil
}

// Register links a steam id to a discord account. Linking is set-once
// on both sides: re-registering the same pair succeeds idempotently, a
// steam id already linked to a different discord account fails with
// model.ErrAlreadyRegistered, and a discord account that already owns a
// different steam id fails with model.ErrDiscordAlreadyLinked. At most
// one record ever carries a given discord id.
func (s *Service) Register(ctx context.Context, steamID model.SteamID, discordID model.DiscordID, displayName string) (*model.PlayerRecord, error) {
	unlock := s.lockPlayer(steamID)
	defer unlock()

	owner, err := s.storage.GetPlayerByDiscord(ctx, discordID)
	if err == nil && owner.SteamID != steamID {
		return nil, model.ErrDiscordAlreadyLinked
	}
	if err != nil && !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, fmt.Errorf("checking discord link for %s: %w", discordID, err)
	}

	player, err := s.storage.GetPlayer(ctx, steamID)
	if errors.Is(err, model.ErrPlayerNotFound) {
		player = &model.PlayerRecord{
			SteamID:       steamID,
			DiscordID:     discordID,
			DisplayName:   displayName,
			LastSeedCheck: s.clock.Now(),
		}
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("saving registration for %s: %w", steamID, err)
		}
		s.logger.Info("player registered",
			slog.String("steam_id", string(steamID)),
			slog.String("discord_id", string(discordID)),
		)
		return player, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading player %s: %w", steamID, err)
	}

	switch player.DiscordID {
	case "":
		player.DiscordID = discordID
		if displayName != "" {
			player.DisplayName = displayName
		}
		if err := s.storage.SavePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("saving registration for %s: %w", steamID, err)
		}
		s.logger.Info("existing seeder linked to discord",
			slog.String("steam_id", string(steamID)),
			slog.String("discord_id", string(discordID)),
		)
		return player, nil
	case discordID:
		// Already registered to this caller
		return player, nil
	default:
		return nil, model.ErrAlreadyRegistered
	}
}

// Lookup returns the record for a steam id
func (s *Service) Lookup(ctx context.Context, steamID model.SteamID) (*model.PlayerRecord, error) {
	return s.storage.GetPlayer(ctx, steamID)
}

// LookupByDiscord returns the record a discord account is registered to
func (s *Service) LookupByDiscord(ctx context.Context, discordID model.DiscordID) (*model.PlayerRecord, error) {
	return s.storage.GetPlayerByDiscord(ctx, discordID)
}
