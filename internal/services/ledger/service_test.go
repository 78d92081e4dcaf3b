package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hllops/seedbank/internal/dependencies/mocks"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/storage/memory"
	"github.com/hllops/seedbank/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

// Accrue tests

func (s *ServiceSuite) TestAccrueCreatesRecordOnFirstSighting() {
	player, crossed, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Minute)
	s.Require().NoError(err)

	s.False(crossed)
	s.Equal(model.SteamID("76561198000000001"), player.SteamID)
	s.Equal("Alice", player.DisplayName)
	s.Equal(3*time.Minute, player.SeedingBalance)
	s.Equal(3*time.Minute, player.TotalSeedingTime)
	s.Equal(s.clock.CurrentTime, player.LastSeedCheck)
	s.False(player.Registered())
}

func (s *ServiceSuite) TestAccrueAddsToBothBalances() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Minute)
	s.Require().NoError(err)

	s.clock.Advance(3 * time.Minute)
	player, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Minute)
	s.Require().NoError(err)

	s.Equal(6*time.Minute, player.SeedingBalance)
	s.Equal(6*time.Minute, player.TotalSeedingTime)
	s.Equal(s.clock.CurrentTime, player.LastSeedCheck)
}

func (s *ServiceSuite) TestAccrueTotalUnaffectedBySpend() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 2*time.Hour)
	s.Require().NoError(err)

	_, err = s.service.Spend(s.ctx, "76561198000000001", time.Hour)
	s.Require().NoError(err)

	player, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Minute)
	s.Require().NoError(err)

	s.Equal(time.Hour+3*time.Minute, player.SeedingBalance)
	s.Equal(2*time.Hour+3*time.Minute, player.TotalSeedingTime)
}

func (s *ServiceSuite) TestAccrueReportsHourBoundaryCrossing() {
	// 55 minutes banked
	_, crossed, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 55*time.Minute)
	s.Require().NoError(err)
	s.False(crossed)

	// 55 -> 65 minutes crosses the first hour
	_, crossed, err = s.service.Accrue(s.ctx, "76561198000000001", "Alice", 10*time.Minute)
	s.Require().NoError(err)
	s.True(crossed)

	// 65 -> 75 minutes is still inside the first hour
	_, crossed, err = s.service.Accrue(s.ctx, "76561198000000001", "Alice", 10*time.Minute)
	s.Require().NoError(err)
	s.False(crossed)
}

func (s *ServiceSuite) TestAccrueUpdatesDisplayName() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Minute)
	s.Require().NoError(err)

	player, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice2", 3*time.Minute)
	s.Require().NoError(err)
	s.Equal("Alice2", player.DisplayName)
}

func (s *ServiceSuite) TestAccrueRejectsNegativeIncrement() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", -time.Minute)
	s.Error(err)
}

// Spend tests

func (s *ServiceSuite) TestSpendDecrementsBalanceOnly() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", 3*time.Hour)
	s.Require().NoError(err)

	player, err := s.service.Spend(s.ctx, "76561198000000001", 2*time.Hour)
	s.Require().NoError(err)

	s.Equal(time.Hour, player.SeedingBalance)
	s.Equal(3*time.Hour, player.TotalSeedingTime)
}

func (s *ServiceSuite) TestSpendFailsOnInsufficientBalance() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", time.Hour)
	s.Require().NoError(err)

	_, err = s.service.Spend(s.ctx, "76561198000000001", 2*time.Hour)
	s.ErrorIs(err, model.ErrInsufficientBalance)

	// Balance unchanged on failure
	player, err := s.service.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(time.Hour, player.SeedingBalance)
}

func (s *ServiceSuite) TestSpendUnknownPlayer() {
	_, err := s.service.Spend(s.ctx, "76561198000000099", time.Hour)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Register tests

func (s *ServiceSuite) TestRegisterCreatesLinkedRecord() {
	player, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)

	s.Equal(model.DiscordID("discord-1"), player.DiscordID)
	s.Equal(time.Duration(0), player.SeedingBalance)

	found, err := s.service.LookupByDiscord(s.ctx, "discord-1")
	s.Require().NoError(err)
	s.Equal(player.SteamID, found.SteamID)
}

func (s *ServiceSuite) TestRegisterLinksExistingSeeder() {
	_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", time.Hour)
	s.Require().NoError(err)

	player, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)

	// Accrued time survives registration
	s.Equal(time.Hour, player.SeedingBalance)
	s.Equal(model.DiscordID("discord-1"), player.DiscordID)
}

func (s *ServiceSuite) TestRegisterIsIdempotentForSameCaller() {
	_, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)

	player, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	s.Equal(model.DiscordID("discord-1"), player.DiscordID)
}

func (s *ServiceSuite) TestRegisterRefusesSteamIDOwnedByOther() {
	_, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "76561198000000001", "discord-2", "Mallory")
	s.ErrorIs(err, model.ErrAlreadyRegistered)

	// Link untouched
	player, err := s.service.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(model.DiscordID("discord-1"), player.DiscordID)
}

func (s *ServiceSuite) TestRegisterRefusesSecondSteamIDForSameDiscord() {
	_, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	_, _, err = s.service.Accrue(s.ctx, "76561198000000001", "Alice", 5*time.Hour)
	s.Require().NoError(err)

	// The same discord account may not claim a second steam id
	_, err = s.service.Register(s.ctx, "76561198000000002", "discord-1", "Alice")
	s.ErrorIs(err, model.ErrDiscordAlreadyLinked)

	// The original link and its balance stay reachable
	player, err := s.service.LookupByDiscord(s.ctx, "discord-1")
	s.Require().NoError(err)
	s.Equal(model.SteamID("76561198000000001"), player.SteamID)
	s.Equal(5*time.Hour, player.SeedingBalance)

	// No orphan record was created
	_, err = s.service.Lookup(s.ctx, "76561198000000002")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestRegisterRefusesLinkingSeederToTakenDiscord() {
	_, err := s.service.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)

	// An unregistered seeder record exists for the second steam id
	_, _, err = s.service.Accrue(s.ctx, "76561198000000002", "Alice2", time.Hour)
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "76561198000000002", "discord-1", "Alice2")
	s.ErrorIs(err, model.ErrDiscordAlreadyLinked)

	player, err := s.service.Lookup(s.ctx, "76561198000000002")
	s.Require().NoError(err)
	s.False(player.Registered())
}

func (s *ServiceSuite) TestLookupByDiscordNotFound() {
	_, err := s.service.LookupByDiscord(s.ctx, "discord-99")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Concurrency

func (s *ServiceSuite) TestConcurrentAccrualsAreNotLost() {
	const workers = 16

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.service.Accrue(s.ctx, "76561198000000001", "Alice", time.Minute)
			s.NoError(err)
		}()
	}
	wg.Wait()

	player, err := s.service.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(time.Duration(workers)*time.Minute, player.SeedingBalance)
	s.Equal(time.Duration(workers)*time.Minute, player.TotalSeedingTime)
}
