package vip

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/hllops/seedbank/internal/dependencies/mocks"
	"github.com/hllops/seedbank/internal/gameserver"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/ledger"
	"github.com/hllops/seedbank/internal/storage/memory"
	"github.com/hllops/seedbank/internal/testutil"
)

func vipAt(t time.Time) model.VIPStatus {
	return model.VIPStatus{ExpiresAt: &t}
}

// ComputeExpiration tests

type ComputeSuite struct {
	suite.Suite
	now time.Time
}

func TestComputeSuite(t *testing.T) {
	suite.Run(t, new(ComputeSuite))
}

func (s *ComputeSuite) SetupTest() {
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ComputeSuite) TestNoCurrentVIPStartsFromNow() {
	expires, indefinite := ComputeExpiration(model.VIPStatus{}, 2, 1.0, s.now)
	s.False(indefinite)
	s.Equal(s.now.Add(2*time.Hour), expires)
}

func (s *ComputeSuite) TestExpiredVIPResetsBaselineToNow() {
	current := vipAt(s.now.Add(-time.Hour))

	expires, indefinite := ComputeExpiration(current, 2, 1.0, s.now)
	s.False(indefinite)
	s.Equal(s.now.Add(2*time.Hour), expires)
}

func (s *ComputeSuite) TestActiveVIPIsExtended() {
	current := vipAt(s.now.Add(5 * time.Hour))

	expires, indefinite := ComputeExpiration(current, 2, 1.0, s.now)
	s.False(indefinite)
	s.Equal(s.now.Add(7*time.Hour), expires)
}

func (s *ComputeSuite) TestConversionRateApplies() {
	expires, indefinite := ComputeExpiration(model.VIPStatus{}, 4, 1.5, s.now)
	s.False(indefinite)
	s.Equal(s.now.Add(6*time.Hour), expires)
}

func (s *ComputeSuite) TestIndefiniteVIPNeedsNoConversion() {
	current := vipAt(model.NeverExpires)

	_, indefinite := ComputeExpiration(current, 2, 1.0, s.now)
	s.True(indefinite)

	beyond := vipAt(model.NeverExpires.Add(24 * time.Hour))
	_, indefinite = ComputeExpiration(beyond, 2, 1.0, s.now)
	s.True(indefinite)
}

// Service tests

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	client  *gameserver.FixtureClient
	ledger  *ledger.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.client = gameserver.NewFixtureClient("alpha", "bravo")
	s.ledger = ledger.New(s.storage, s.clock, testutil.NopLogger())
	s.service = New(s.ledger, s.client, s.clock, Config{HoursPerSeedHour: 1.0}, testutil.NopLogger())
	s.ctx = context.Background()
}

// seedPlayer registers a player and banks balance for them
func (s *ServiceSuite) seedPlayer(balance time.Duration) *model.PlayerRecord {
	_, err := s.ledger.Register(s.ctx, "76561198000000001", "discord-1", "Alice")
	s.Require().NoError(err)
	player, _, err := s.ledger.Accrue(s.ctx, "76561198000000001", "Alice", balance)
	s.Require().NoError(err)
	return player
}

// Reconcile tests

func (s *ServiceSuite) TestReconcileAgreedValue() {
	expires := s.clock.CurrentTime.Add(48 * time.Hour)
	s.client.SetVIP("alpha", "76561198000000001", vipAt(expires))
	s.client.SetVIP("bravo", "76561198000000001", vipAt(expires))

	status, err := s.service.Reconcile(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Require().True(status.HasVIP())
	s.True(status.ExpiresAt.Equal(expires))
}

func (s *ServiceSuite) TestReconcileAllAbsentIsLegitimate() {
	status, err := s.service.Reconcile(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.False(status.HasVIP())
}

func (s *ServiceSuite) TestReconcileDisagreementIsAFault() {
	s.client.SetVIP("alpha", "76561198000000001", vipAt(s.clock.CurrentTime.Add(time.Hour)))
	s.client.SetVIP("bravo", "76561198000000001", vipAt(s.clock.CurrentTime.Add(2*time.Hour)))

	_, err := s.service.Reconcile(s.ctx, "76561198000000001")
	s.ErrorIs(err, model.ErrVIPMismatch)
}

func (s *ServiceSuite) TestReconcileAbsentVersusExpiredIsDrift() {
	// One endpoint has an expired record, the other has none at all.
	// Strictly unequal, so this must surface as drift.
	s.client.SetVIP("alpha", "76561198000000001", vipAt(s.clock.CurrentTime.Add(-time.Hour)))

	_, err := s.service.Reconcile(s.ctx, "76561198000000001")
	s.ErrorIs(err, model.ErrVIPMismatch)
}

func (s *ServiceSuite) TestReconcileEndpointFailure() {
	s.client.FailVIPQuery("bravo", errors.New("connection refused"))

	_, err := s.service.Reconcile(s.ctx, "76561198000000001")
	s.Error(err)
	s.NotErrorIs(err, model.ErrVIPMismatch)
}

// Claim tests

func (s *ServiceSuite) TestClaimGrantsEverywhereThenSpends() {
	s.seedPlayer(3 * time.Hour)

	result, err := s.service.Claim(s.ctx, "discord-1", 2)
	s.Require().NoError(err)

	s.Equal(time.Hour, result.Player.SeedingBalance)
	s.Equal(2.0, result.GrantedHours)
	s.Equal(s.clock.CurrentTime.Add(2*time.Hour), result.ExpiresAt)

	for _, endpoint := range []string{"alpha", "bravo"} {
		status := s.client.VIP(endpoint, "76561198000000001")
		s.Require().True(status.HasVIP(), endpoint)
		s.True(status.ExpiresAt.Equal(result.ExpiresAt), endpoint)
	}
}

func (s *ServiceSuite) TestClaimFailedGrantSpendsNothing() {
	s.seedPlayer(3 * time.Hour)
	s.client.FailGrant("bravo", errors.New("rcon down"))

	_, err := s.service.Claim(s.ctx, "discord-1", 2)

	var pge *PartialGrantError
	s.Require().ErrorAs(err, &pge)
	s.Equal([]string{"alpha"}, pge.Granted)
	s.Contains(pge.Failed, "bravo")

	// Balance untouched
	player, err := s.ledger.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(3*time.Hour, player.SeedingBalance)
}

func (s *ServiceSuite) TestClaimInsufficientBalance() {
	s.seedPlayer(time.Hour)

	_, err := s.service.Claim(s.ctx, "discord-1", 2)
	s.ErrorIs(err, model.ErrInsufficientBalance)
}

func (s *ServiceSuite) TestConcurrentClaimsCannotDoubleSpend() {
	s.seedPlayer(2 * time.Hour)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.service.Claim(s.ctx, "discord-1", 2)
		}(i)
	}
	wg.Wait()

	// Exactly one claim lands; the other sees the drained balance.
	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, model.ErrInsufficientBalance):
			insufficient++
		default:
			s.FailNowf("unexpected claim error", "%v", err)
		}
	}
	s.Equal(1, ok)
	s.Equal(1, insufficient)

	player, err := s.ledger.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(time.Duration(0), player.SeedingBalance)
}

func (s *ServiceSuite) TestClaimExtendsActiveVIP() {
	s.seedPlayer(3 * time.Hour)
	expires := s.clock.CurrentTime.Add(5 * time.Hour)
	s.client.SetVIP("alpha", "76561198000000001", vipAt(expires))
	s.client.SetVIP("bravo", "76561198000000001", vipAt(expires))

	result, err := s.service.Claim(s.ctx, "discord-1", 2)
	s.Require().NoError(err)
	s.Equal(expires.Add(2*time.Hour), result.ExpiresAt)
}

func (s *ServiceSuite) TestClaimRefusedOnDrift() {
	s.seedPlayer(3 * time.Hour)
	s.client.SetVIP("alpha", "76561198000000001", vipAt(s.clock.CurrentTime.Add(time.Hour)))

	_, err := s.service.Claim(s.ctx, "discord-1", 2)
	s.ErrorIs(err, model.ErrVIPMismatch)

	player, err := s.ledger.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(3*time.Hour, player.SeedingBalance)
}

func (s *ServiceSuite) TestClaimIndefiniteVIPIsANoOp() {
	s.seedPlayer(3 * time.Hour)
	s.client.SetVIP("alpha", "76561198000000001", vipAt(model.NeverExpires))
	s.client.SetVIP("bravo", "76561198000000001", vipAt(model.NeverExpires))

	_, err := s.service.Claim(s.ctx, "discord-1", 2)
	s.ErrorIs(err, model.ErrVIPNeverExpires)

	player, err := s.ledger.Lookup(s.ctx, "76561198000000001")
	s.Require().NoError(err)
	s.Equal(3*time.Hour, player.SeedingBalance)
}

func (s *ServiceSuite) TestClaimUnregisteredCaller() {
	_, err := s.service.Claim(s.ctx, "discord-99", 1)
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ServiceSuite) TestClaimRejectsNonPositiveHours() {
	s.seedPlayer(3 * time.Hour)

	_, err := s.service.Claim(s.ctx, "discord-1", 0)
	s.Error(err)
}

// Status tests

func (s *ServiceSuite) TestStatusReturnsPlayerAndReconciledVIP() {
	s.seedPlayer(2 * time.Hour)
	expires := s.clock.CurrentTime.Add(24 * time.Hour)
	s.client.SetVIP("alpha", "76561198000000001", vipAt(expires))
	s.client.SetVIP("bravo", "76561198000000001", vipAt(expires))

	player, status, err := s.service.Status(s.ctx, "discord-1")
	s.Require().NoError(err)
	s.Equal(model.SteamID("76561198000000001"), player.SteamID)
	s.Require().True(status.HasVIP())
	s.True(status.ExpiresAt.Equal(expires))
}
