package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	LogLevel    string        `yaml:"log_level"`
	Server      ServerConfig  `yaml:"server"`
	Storage     StorageConfig `yaml:"storage"`
	Seeding     SeedingConfig `yaml:"seeding"`
	GameServers []GameServer  `yaml:"game_servers"`
}

// ServerConfig holds HTTP API server settings
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Port       int    `yaml:"port"`
	// APIToken is the shared bearer token the command front-end presents.
	// Overridable via SEEDBANK_API_TOKEN.
	APIToken string `yaml:"api_token"`
}

// StorageConfig selects and configures the player store backend
type StorageConfig struct {
	Type  string      `yaml:"type"` // "memory" or "redis"
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings
type RedisConfig struct {
	URL          string `yaml:"url"`
	PoolSize     int    `yaml:"pool_size"`
	MinIdleConns int    `yaml:"min_idle_conns"`
}

// SeedingConfig holds the accrual and reward conversion settings
type SeedingConfig struct {
	// Threshold is the player count below which a server counts as seeding
	Threshold int `yaml:"threshold"`
	// PollInterval is how often servers are polled; it is also the
	// accrual increment credited per tick to each present player
	PollInterval time.Duration `yaml:"poll_interval"`
	// StartTimeUTC/EndTimeUTC bound the daily seeding window ("HH:MM:SS",
	// UTC). Leave both empty for an always-active window. The window may
	// wrap past midnight.
	StartTimeUTC string `yaml:"start_time_utc"`
	EndTimeUTC   string `yaml:"end_time_utc"`

	RewardMessageEnabled bool   `yaml:"reward_message_enabled"`
	RewardMessage        string `yaml:"reward_message"`

	// VIPHoursPerSeedHour is the conversion rate applied when claiming
	VIPHoursPerSeedHour float64 `yaml:"vip_hours_per_seed_hour"`
}

// GameServer describes one CRCON endpoint to monitor and grant against
type GameServer struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Environment overrides for secrets
	if token := os.Getenv("SEEDBANK_API_TOKEN"); token != "" {
		cfg.Server.APIToken = token
	}
	if url := os.Getenv("SEEDBANK_REDIS_URL"); url != "" {
		cfg.Storage.Redis.URL = url
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Type == "" {
		c.Storage.Type = "memory"
	}
	if c.Storage.Redis.URL == "" {
		c.Storage.Redis.URL = "redis://localhost:6379"
	}
	if c.Storage.Redis.PoolSize == 0 {
		c.Storage.Redis.PoolSize = 10
	}
	if c.Storage.Redis.MinIdleConns == 0 {
		c.Storage.Redis.MinIdleConns = 2
	}
	if c.Seeding.Threshold == 0 {
		c.Seeding.Threshold = 40
	}
	if c.Seeding.PollInterval == 0 {
		c.Seeding.PollInterval = 3 * time.Minute
	}
	if c.Seeding.VIPHoursPerSeedHour == 0 {
		c.Seeding.VIPHoursPerSeedHour = 1.0
	}
}

func (c *Config) validate() error {
	if len(c.GameServers) == 0 {
		return fmt.Errorf("at least one game server must be configured")
	}
	for i, gs := range c.GameServers {
		if gs.Name == "" {
			return fmt.Errorf("game_servers[%d]: name is required", i)
		}
		if gs.URL == "" {
			return fmt.Errorf("game_servers[%d] (%s): url is required", i, gs.Name)
		}
	}
	if c.Seeding.Threshold < 0 {
		return fmt.Errorf("seeding threshold must not be negative")
	}
	if c.Seeding.VIPHoursPerSeedHour < 0 {
		return fmt.Errorf("vip_hours_per_seed_hour must not be negative")
	}
	// Window strings are deliberately not validated here: a malformed
	// window is surfaced by the monitor on each tick, which proceeds
	// permissively rather than refusing to start.
	return nil
}
