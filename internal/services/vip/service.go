// Package vip reconciles privilege state across game servers and
// converts banked seeding time into VIP time.
package vip

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hllops/seedbank/internal/dependencies/clock"
	"github.com/hllops/seedbank/internal/gameserver"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/ledger"
)

// Config holds conversion settings
type Config struct {
	// HoursPerSeedHour is how many VIP hours one banked seeding hour buys
	HoursPerSeedHour float64
}

// Service implements the privilege reconciler and the claim flow. Claims
// for a single discord account are serialized with a per-account mutex,
// so two concurrent claims cannot both pass the balance check and grant
// before one of the spends lands.
type Service struct {
	ledger *ledger.Service
	client gameserver.Client
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	locks map[model.DiscordID]*sync.Mutex
}

// New creates a new VIP service
func New(ledger *ledger.Service, client gameserver.Client, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		ledger: ledger,
		client: client,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
		locks:  make(map[model.DiscordID]*sync.Mutex),
	}
}

// lockClaim acquires the per-account claim mutex and returns its unlock
// func. Locks are never removed; the set of registered accounts is small.
func (s *Service) lockClaim(id model.DiscordID) func() {
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

// Reconcile queries VIP status for a player from every configured
// endpoint and verifies they agree. Disagreement is an operator-visible
// fault (model.ErrVIPMismatch); it is never resolved by picking a side.
// The agreed value may legitimately be "no record" on every endpoint.
func (s *Service) Reconcile(ctx context.Context, steamID model.SteamID) (model.VIPStatus, error) {
	endpoints := s.client.Endpoints()
	if len(endpoints) == 0 {
		return model.VIPStatus{}, fmt.Errorf("no game server endpoints configured")
	}

	var agreed model.VIPStatus
	for i, endpoint := range endpoints {
		status, err := s.client.GetVIP(ctx, endpoint, steamID)
		if err != nil {
			return model.VIPStatus{}, fmt.Errorf("querying vip on %s for %s: %w", endpoint, steamID, err)
		}
		if i == 0 {
			agreed = status
			continue
		}
		if !status.Equal(agreed) {
			s.logger.Warn("vip drift between game servers",
				slog.String("steam_id", string(steamID)),
				slog.String("endpoint", endpoint),
			)
			return model.VIPStatus{}, model.ErrVIPMismatch
		}
	}

	return agreed, nil
}

// ComputeExpiration computes the new expiration from the current agreed
// status, the claimed hours and the conversion rate. The second return is
// true when the current VIP never expires, in which case no conversion is
// meaningful and no grant should be issued.
//
// An expired or absent VIP resets its baseline to now rather than
// extending a stale expiration.
func ComputeExpiration(current model.VIPStatus, hours int, rate float64, now time.Time) (time.Time, bool) {
	if current.Indefinite() {
		return time.Time{}, true
	}

	base := now
	if current.ExpiresAt != nil && current.ExpiresAt.After(now) {
		base = *current.ExpiresAt
	}

	grant := time.Duration(float64(hours) * rate * float64(time.Hour))
	return base.Add(grant), false
}

// PartialGrantError reports a claim that failed mid-grant: some endpoints
// may hold the new expiration while others were never updated. The ledger
// was NOT debited. Operators use the per-endpoint outcomes to reconcile
// the drift by hand.
type PartialGrantError struct {
	Granted []string
	Failed  map[string]error
}

func (e *PartialGrantError) Error() string {
	return fmt.Sprintf("vip grant failed on %d of %d endpoints; granted on %v, no balance was spent",
		len(e.Failed), len(e.Granted)+len(e.Failed), e.Granted)
}

// ClaimResult is the outcome of a successful claim
type ClaimResult struct {
	Player       *model.PlayerRecord
	ExpiresAt    time.Time
	GrantedHours float64
}

// Claim converts hours of banked seeding time into VIP time across every
// endpoint. Ordering is strict: every endpoint's grant must succeed
// before the balance is spent. A grant failure aborts with
// *PartialGrantError and leaves the balance untouched.
func (s *Service) Claim(ctx context.Context, discordID model.DiscordID, hours int) (*ClaimResult, error) {
	if hours < 1 {
		return nil, fmt.Errorf("claim hours must be at least 1, got %d", hours)
	}

	unlock := s.lockClaim(discordID)
	defer unlock()

	player, err := s.ledger.LookupByDiscord(ctx, discordID)
	if err != nil {
		return nil, err
	}

	if hours > player.BalanceHours() {
		return nil, model.ErrInsufficientBalance
	}

	current, err := s.Reconcile(ctx, player.SteamID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt, indefinite := ComputeExpiration(current, hours, s.cfg.HoursPerSeedHour, now)
	if indefinite {
		return nil, model.ErrVIPNeverExpires
	}

	// Phase one: grant on every endpoint, collecting per-endpoint
	// outcomes. Nothing is spent until all of them report success.
	granted := make([]string, 0, len(s.client.Endpoints()))
	failed := make(map[string]error)
	for _, endpoint := range s.client.Endpoints() {
		if err := s.client.GrantVIP(ctx, endpoint, player.SteamID, player.DisplayName, expiresAt); err != nil {
			s.logger.Error("vip grant failed",
				slog.String("endpoint", endpoint),
				slog.String("steam_id", string(player.SteamID)),
				slog.String("error", err.Error()),
			)
			failed[endpoint] = err
			continue
		}
		granted = append(granted, endpoint)
	}
	if len(failed) > 0 {
		return nil, &PartialGrantError{Granted: granted, Failed: failed}
	}

	// Phase two: all grants landed, debit the ledger
	spent, err := s.ledger.Spend(ctx, player.SteamID, time.Duration(hours)*time.Hour)
	if err != nil {
		// Grants are already applied; this is operator-visible drift
		// between the servers and the ledger
		return nil, fmt.Errorf("vip granted on all endpoints but spend failed for %s: %w", player.SteamID, err)
	}
	player = spent

	s.logger.Info("seeding hours claimed",
		slog.String("steam_id", string(player.SteamID)),
		slog.Int("hours", hours),
		slog.Time("expires_at", expiresAt),
	)

	return &ClaimResult{
		Player:       player,
		ExpiresAt:    expiresAt,
		GrantedHours: float64(hours) * s.cfg.HoursPerSeedHour,
	}, nil
}

// Status returns a player's record together with their reconciled VIP
// status across all endpoints
func (s *Service) Status(ctx context.Context, discordID model.DiscordID) (*model.PlayerRecord, model.VIPStatus, error) {
	player, err := s.ledger.LookupByDiscord(ctx, discordID)
	if err != nil {
		return nil, model.VIPStatus{}, err
	}

	status, err := s.Reconcile(ctx, player.SteamID)
	if err != nil {
		return nil, model.VIPStatus{}, err
	}
	return player, status, nil
}
