package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Records never expire: a player's seeding history persists indefinitely.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePlayer(ctx context.Context, player *model.PlayerRecord) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	if player.DiscordID == "" {
		return s.client.Set(ctx, playerKey(player.SteamID), data, 0).Err()
	}

	// Use pipeline for atomic record + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.SteamID), data, 0)
	pipe.Set(ctx, discordIndexKey(player.DiscordID), string(player.SteamID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPlayer(ctx context.Context, id model.SteamID) (*model.PlayerRecord, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.PlayerRecord
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) GetPlayerByDiscord(ctx context.Context, id model.DiscordID) (*model.PlayerRecord, error) {
	steamIDStr, err := s.client.Get(ctx, discordIndexKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	player, err := s.GetPlayer(ctx, model.SteamID(steamIDStr))
	if err != nil {
		return nil, err
	}
	if player.DiscordID != id {
		// The index names a record registered to someone else; surface
		// the integrity fault rather than picking a side
		return nil, model.ErrDuplicateIdentity
	}
	return player, nil
}
