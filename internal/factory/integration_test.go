package factory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hllops/seedbank/internal/gameserver"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/vip"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp(TestConfig())
	s.ctx = context.Background()
}

// tick advances the mock clock by one poll interval and runs one pass
func (s *IntegrationSuite) tick() {
	s.app.MockClock.Advance(3 * time.Minute)
	s.app.Monitor.Tick(s.ctx)
}

func (s *IntegrationSuite) seedPlayers(endpoint string, n int) []gameserver.PlayerInfo {
	players := make([]gameserver.PlayerInfo, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, gameserver.PlayerInfo{
			SteamID: model.SteamID(fmt.Sprintf("7656119800000%04d", i)),
			Name:    fmt.Sprintf("Player%d", i),
		})
	}
	s.app.Fixture.SetPlayers(endpoint, players...)
	return players
}

// Test: players on an under-threshold server accrue one poll interval per tick
func (s *IntegrationSuite) TestAccrualOverTicks() {
	players := s.seedPlayers("alpha", 10)

	s.tick()
	s.tick()

	for _, p := range players {
		record, err := s.app.Ledger.Lookup(s.ctx, p.SteamID)
		s.Require().NoError(err)
		s.Equal(6*time.Minute, record.SeedingBalance)
		s.Equal(6*time.Minute, record.TotalSeedingTime)
		s.Equal(0, record.BalanceHours())
	}

	// Nobody has completed an hour yet
	s.Empty(s.app.Fixture.Messages("alpha"))

	board := s.app.StatusBoard.Snapshot()
	s.Require().Len(board, 2)
	s.Equal(model.ServerStateSeeding, board[0].State)
	s.Equal(10, board[0].PlayerCount)
}

// Test: a full server accrues nothing
func (s *IntegrationSuite) TestFullServerAccruesNothing() {
	players := s.seedPlayers("alpha", 40)

	s.tick()

	_, err := s.app.Ledger.Lookup(s.ctx, players[0].SteamID)
	s.ErrorIs(err, model.ErrPlayerNotFound)

	board := s.app.StatusBoard.Snapshot()
	s.Equal(model.ServerStateDone, board[0].State)
}

// Test: completing an hour sends the reward message exactly once
func (s *IntegrationSuite) TestRewardMessageOnHourBoundary() {
	s.seedPlayers("alpha", 1)

	// 19 ticks = 57 minutes, still short of the hour
	for i := 0; i < 19; i++ {
		s.tick()
	}
	s.Empty(s.app.Fixture.Messages("alpha"))

	// Tick 20 crosses 60 minutes
	s.tick()
	s.Require().Len(s.app.Fixture.Messages("alpha"), 1)

	// The next tick must not re-announce the same hour
	s.tick()
	s.Len(s.app.Fixture.Messages("alpha"), 1)
}

// Test: full claim flow from registration through grant and spend
func (s *IntegrationSuite) TestClaimFlow() {
	_, err := s.app.Ledger.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	_, _, err = s.app.Ledger.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Hour)
	s.Require().NoError(err)

	result, err := s.app.VIPService.Claim(s.ctx, "discord-1", 2)
	s.Require().NoError(err)

	wantExpiry := s.app.MockClock.Now().Add(2 * time.Hour)
	s.True(result.ExpiresAt.Equal(wantExpiry))
	s.Equal(2.0, result.GrantedHours)
	s.Equal(time.Hour, result.Player.SeedingBalance)
	// Total lifetime rank is never spent down
	s.Equal(3*time.Hour, result.Player.TotalSeedingTime)

	// Both endpoints hold the new expiration
	for _, endpoint := range []string{"alpha", "bravo"} {
		status := s.app.Fixture.VIP(endpoint, "76561198000000001")
		s.Require().NotNil(status.ExpiresAt)
		s.True(status.ExpiresAt.Equal(wantExpiry))
	}
}

// Test: claiming on top of an active VIP extends from its expiry
func (s *IntegrationSuite) TestClaimExtendsActiveVIP() {
	_, err := s.app.Ledger.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	_, _, err = s.app.Ledger.Accrue(s.ctx, "76561198000000001", "Alice", 2*time.Hour)
	s.Require().NoError(err)

	existing := s.app.MockClock.Now().Add(5 * time.Hour)
	for _, endpoint := range []string{"alpha", "bravo"} {
		s.app.Fixture.SetVIP(endpoint, "76561198000000001", model.VIPStatus{ExpiresAt: &existing})
	}

	result, err := s.app.VIPService.Claim(s.ctx, "discord-1", 2)
	s.Require().NoError(err)
	s.True(result.ExpiresAt.Equal(existing.Add(2 * time.Hour)))
}

// Test: an expired VIP resets its baseline to now instead of extending
func (s *IntegrationSuite) TestClaimResetsExpiredVIP() {
	_, err := s.app.Ledger.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	_, _, err = s.app.Ledger.Accrue(s.ctx, "76561198000000001", "Alice", 2*time.Hour)
	s.Require().NoError(err)

	stale := s.app.MockClock.Now().Add(-48 * time.Hour)
	for _, endpoint := range []string{"alpha", "bravo"} {
		s.app.Fixture.SetVIP(endpoint, "76561198000000001", model.VIPStatus{ExpiresAt: &stale})
	}

	result, err := s.app.VIPService.Claim(s.ctx, "discord-1", 1)
	s.Require().NoError(err)
	s.True(result.ExpiresAt.Equal(s.app.MockClock.Now().Add(time.Hour)))
}

// Test: a grant failure on any endpoint leaves the balance untouched
func (s *IntegrationSuite) TestClaimGrantFailureSpendsNothing() {
	_, err := s.app.Ledger.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	_, _, err = s.app.Ledger.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Hour)
	s.Require().NoError(err)

	s.app.Fixture.FailGrant("bravo", errors.New("rcon down"))

	_, err = s.app.VIPService.Claim(s.ctx, "discord-1", 2)
	var pge *vip.PartialGrantError
	s.Require().ErrorAs(err, &pge)
	s.Equal([]string{"alpha"}, pge.Granted)
	s.Contains(pge.Failed, "bravo")

	record, err := s.app.Ledger.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(3*time.Hour, record.SeedingBalance)
}

// Test: VIP drift between endpoints refuses the claim
func (s *IntegrationSuite) TestClaimRefusesVIPDrift() {
	_, err := s.app.Ledger.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	_, _, err = s.app.Ledger.Accrue(s.ctx, "76561198000000001", "Alice", 2*time.Hour)
	s.Require().NoError(err)

	expires := s.app.MockClock.Now().Add(time.Hour)
	s.app.Fixture.SetVIP("alpha", "76561198000000001", model.VIPStatus{ExpiresAt: &expires})

	_, err = s.app.VIPService.Claim(s.ctx, "discord-1", 1)
	s.ErrorIs(err, model.ErrVIPMismatch)
}

// Test: an unreachable endpoint does not stop accrual on the others
func (s *IntegrationSuite) TestUnreachableEndpointIsIsolated() {
	s.seedPlayers("alpha", 5)
	s.app.Fixture.FailList("bravo", errors.New("connection refused"))

	s.tick()

	record, err := s.app.Ledger.Lookup(s.ctx, "76561198000000000")
	s.Require().NoError(err)
	s.Equal(3*time.Minute, record.SeedingBalance)

	board := s.app.StatusBoard.Snapshot()
	s.Require().Len(board, 2)
	s.Equal(model.ServerStateSeeding, board[0].State)
	s.Equal(model.ServerStateUnreachable, board[1].State)
}

// Test: the window gate suspends accrual outside the configured hours
func (s *IntegrationSuite) TestWindowSuspendsAccrual() {
	cfg := TestConfig()
	cfg.Seeding.StartTimeUTC = "20:00:00"
	cfg.Seeding.EndTimeUTC = "23:00:00"
	s.app = NewTestApp(cfg)

	s.seedPlayers("alpha", 5)

	// Clock starts at 12:00 UTC, outside the window
	s.tick()

	_, err := s.app.Ledger.Lookup(s.ctx, "76561198000000000")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	board := s.app.StatusBoard.Snapshot()
	s.Require().Len(board, 2)
	s.Equal(model.ServerStateIdle, board[0].State)

	// Move inside the window
	s.app.MockClock.Set(time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC))
	s.app.Monitor.Tick(s.ctx)

	record, err := s.app.Ledger.Lookup(s.ctx, "76561198000000000")
	s.Require().NoError(err)
	s.Equal(3*time.Minute, record.SeedingBalance)
}
