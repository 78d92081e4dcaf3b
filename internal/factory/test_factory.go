package factory

import (
	"time"

	"github.com/hllops/seedbank/internal/config"
	"github.com/hllops/seedbank/internal/dependencies/mocks"
	"github.com/hllops/seedbank/internal/gameserver"
	"github.com/hllops/seedbank/internal/storage/memory"
	"github.com/hllops/seedbank/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Fixture   *gameserver.FixtureClient
}

// TestConfig returns an application config suitable for integration tests
func TestConfig() *config.Config {
	return &config.Config{
		Seeding: config.SeedingConfig{
			Threshold:            40,
			PollInterval:         3 * time.Minute,
			RewardMessageEnabled: true,
			RewardMessage:        "Thanks for seeding! You have banked another hour of VIP time.",
			VIPHoursPerSeedHour:  1.0,
		},
		GameServers: []config.GameServer{
			{Name: "alpha", URL: "http://alpha.example"},
			{Name: "bravo", URL: "http://bravo.example"},
		},
	}
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(cfg *config.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	endpoints := make([]string, 0, len(cfg.GameServers))
	for _, gs := range cfg.GameServers {
		endpoints = append(endpoints, gs.Name)
	}
	fixture := gameserver.NewFixtureClient(endpoints...)

	app := newWithDependencies(cfg, store, mockClock, fixture, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Fixture:   fixture,
	}
}
