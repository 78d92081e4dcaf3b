// Package seeding drives the periodic accrual of seeding time.
package seeding

import (
	"context"
	"log/slog"
	"time"

	"github.com/hllops/seedbank/internal/dependencies/clock"
	"github.com/hllops/seedbank/internal/gameserver"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/ledger"
	"github.com/hllops/seedbank/internal/services/window"
)

// IsSeeding reports whether a server's population qualifies it for
// seeding accrual
func IsSeeding(playerCount, threshold int) bool {
	return playerCount < threshold
}

// StatusFunc receives the per-endpoint summary emitted after each tick.
// The consumer owns any rate limiting and may drop values.
type StatusFunc func(model.ServerStatus)

// Config holds monitor behavior settings
type Config struct {
	// Threshold is the player count below which a server is seeding
	Threshold int
	// PollInterval is the tick period; it is also the accrual increment
	// credited per tick to each present player
	PollInterval time.Duration
	// Window optionally bounds ticks to a daily activity window
	Window window.Gate

	RewardMessageEnabled bool
	RewardMessage        string
}

// Monitor polls the configured game servers on a fixed interval and
// accrues seeding time for players present on qualifying servers.
type Monitor struct {
	cfg      Config
	client   gameserver.Client
	ledger   *ledger.Service
	clock    clock.Clock
	logger   *slog.Logger
	statusFn StatusFunc
}

// NewMonitor creates a new seeding monitor. statusFn may be nil.
func NewMonitor(cfg Config, client gameserver.Client, ledger *ledger.Service, clock clock.Clock, logger *slog.Logger, statusFn StatusFunc) *Monitor {
	return &Monitor{
		cfg:      cfg,
		client:   client,
		ledger:   ledger,
		clock:    clock,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Run ticks until ctx is cancelled. Ticks run to completion: cancellation
// is only observed between ticks, and an abandoned in-flight tick leaves
// state the next tick simply accrues on top of.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("seeding monitor started",
		slog.Duration("interval", m.cfg.PollInterval),
		slog.Int("threshold", m.cfg.Threshold),
	)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		m.Tick(ctx)

		select {
		case <-ctx.Done():
			m.logger.Info("seeding monitor stopped")
			return
		case <-ticker.C:
		}
	}
}

// Tick runs one polling pass over every configured endpoint
func (m *Monitor) Tick(ctx context.Context) {
	now := m.clock.Now()

	active, err := m.cfg.Window.Active(now)
	if err != nil {
		// Configuration fault: surface it, then proceed permissively
		m.logger.Error("invalid seeding window configuration",
			slog.String("error", err.Error()),
		)
	}
	if !active {
		m.logger.Debug("outside seeding window")
		for _, endpoint := range m.client.Endpoints() {
			m.emit(model.ServerStatus{
				Endpoint:  endpoint,
				State:     model.ServerStateIdle,
				Threshold: m.cfg.Threshold,
				CheckedAt: now,
			})
		}
		return
	}

	for _, endpoint := range m.client.Endpoints() {
		m.pollEndpoint(ctx, endpoint, now)
	}
}

// pollEndpoint classifies one endpoint and accrues time for its players.
// Failures here never abort the other endpoints.
func (m *Monitor) pollEndpoint(ctx context.Context, endpoint string, now time.Time) {
	players, err := m.client.ListPlayers(ctx, endpoint)
	if err != nil {
		m.logger.Error("failed to poll game server",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		m.emit(model.ServerStatus{
			Endpoint:  endpoint,
			State:     model.ServerStateUnreachable,
			Threshold: m.cfg.Threshold,
			CheckedAt: now,
		})
		return
	}

	if !IsSeeding(len(players), m.cfg.Threshold) {
		m.logger.Debug("server is done seeding",
			slog.String("endpoint", endpoint),
			slog.Int("player_count", len(players)),
		)
		m.emit(model.ServerStatus{
			Endpoint:    endpoint,
			State:       model.ServerStateDone,
			PlayerCount: len(players),
			Threshold:   m.cfg.Threshold,
			CheckedAt:   now,
		})
		return
	}

	for _, player := range players {
		m.accrueFor(ctx, endpoint, player)
	}

	m.logger.Debug("seeding accrual complete",
		slog.String("endpoint", endpoint),
		slog.Int("player_count", len(players)),
	)
	m.emit(model.ServerStatus{
		Endpoint:    endpoint,
		State:       model.ServerStateSeeding,
		PlayerCount: len(players),
		Threshold:   m.cfg.Threshold,
		CheckedAt:   now,
	})
}

// accrueFor credits one tick of seeding time to one player. A save
// failure loses only this player's accrual for this tick.
func (m *Monitor) accrueFor(ctx context.Context, endpoint string, player gameserver.PlayerInfo) {
	_, crossedHour, err := m.ledger.Accrue(ctx, player.SteamID, player.Name, m.cfg.PollInterval)
	if err != nil {
		m.logger.Error("failed to record seeding time",
			slog.String("endpoint", endpoint),
			slog.String("steam_id", string(player.SteamID)),
			slog.String("error", err.Error()),
		)
		return
	}

	if !crossedHour || !m.cfg.RewardMessageEnabled {
		return
	}

	// One notification per completed hour; a send failure is logged,
	// not retried
	if err := m.client.MessagePlayer(ctx, endpoint, player.SteamID, m.cfg.RewardMessage); err != nil {
		m.logger.Error("failed to send seeder reward message",
			slog.String("endpoint", endpoint),
			slog.String("steam_id", string(player.SteamID)),
			slog.String("error", err.Error()),
		)
	}
}

func (m *Monitor) emit(status model.ServerStatus) {
	if m.statusFn != nil {
		m.statusFn(status)
	}
}
