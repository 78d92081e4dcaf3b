package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/hllops/seedbank/internal/config"
	"github.com/hllops/seedbank/internal/dependencies/clock"
	"github.com/hllops/seedbank/internal/gameserver"
	"github.com/hllops/seedbank/internal/services/ledger"
	"github.com/hllops/seedbank/internal/services/seeding"
	"github.com/hllops/seedbank/internal/services/vip"
	"github.com/hllops/seedbank/internal/services/window"
	"github.com/hllops/seedbank/internal/storage"
	"github.com/hllops/seedbank/internal/storage/memory"
	redisstorage "github.com/hllops/seedbank/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Client gameserver.Client

	// Services
	Ledger      *ledger.Service
	VIPService  *vip.Service
	Monitor     *seeding.Monitor
	StatusBoard *seeding.StatusBoard
}

// Config holds configuration for the application factory
type Config struct {
	// App is the loaded application configuration (required)
	App *config.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Client overrides the game server client (optional)
	// If nil, a CRCON client is built from App.GameServers
	Client gameserver.Client
	// Clock overrides the time source (optional)
	Clock clock.Clock
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.App == nil {
		return nil, errors.New("application config is required")
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	switch cfg.App.Storage.Type {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		redisStore, err := redisstorage.New(redisstorage.Config{
			URL:          cfg.App.Storage.Redis.URL,
			PoolSize:     cfg.App.Storage.Redis.PoolSize,
			MinIdleConns: cfg.App.Storage.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid storage type: must be 'memory' or 'redis'")
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	client := cfg.Client
	if client == nil {
		endpoints := make([]gameserver.EndpointConfig, 0, len(cfg.App.GameServers))
		for _, gs := range cfg.App.GameServers {
			endpoints = append(endpoints, gameserver.EndpointConfig{
				Name:     gs.Name,
				URL:      gs.URL,
				Username: gs.Username,
				Password: gs.Password,
			})
		}
		crcon, err := gameserver.NewCRCONClient(endpoints, logger)
		if err != nil {
			return nil, err
		}
		client = crcon
	}

	return newWithDependencies(cfg.App, store, clk, client, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(appCfg *config.Config, store storage.Storage, clk clock.Clock, client gameserver.Client, logger *slog.Logger) *App {
	ledgerService := ledger.New(store, clk, logger)

	vipService := vip.New(ledgerService, client, clk, vip.Config{
		HoursPerSeedHour: appCfg.Seeding.VIPHoursPerSeedHour,
	}, logger)

	board := seeding.NewStatusBoard()
	monitor := seeding.NewMonitor(seeding.Config{
		Threshold:    appCfg.Seeding.Threshold,
		PollInterval: appCfg.Seeding.PollInterval,
		Window: window.Gate{
			Start: appCfg.Seeding.StartTimeUTC,
			End:   appCfg.Seeding.EndTimeUTC,
		},
		RewardMessageEnabled: appCfg.Seeding.RewardMessageEnabled,
		RewardMessage:        appCfg.Seeding.RewardMessage,
	}, client, ledgerService, clk, logger, board.Update)

	return &App{
		Storage:     store,
		Clock:       clk,
		Client:      client,
		Ledger:      ledgerService,
		VIPService:  vipService,
		Monitor:     monitor,
		StatusBoard: board,
	}
}
