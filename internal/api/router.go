package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hllops/seedbank/internal/api/handler"
	apimiddleware "github.com/hllops/seedbank/internal/api/middleware"
	"github.com/hllops/seedbank/internal/dependencies/clock"
	"github.com/hllops/seedbank/internal/middleware"
	"github.com/hllops/seedbank/internal/services/ledger"
	"github.com/hllops/seedbank/internal/services/vip"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Ledger       *ledger.Service
	VIPService   *vip.Service
	StatusSource handler.StatusSource
	Clock        clock.Clock
	APIToken     string
	// VIPHoursPerSeedHour is surfaced in stats responses
	VIPHoursPerSeedHour float64
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Ledger, cfg.VIPHoursPerSeedHour)
	vipHandler := handler.NewVIPHandler(cfg.VIPService, cfg.Clock)
	statusHandler := handler.NewStatusHandler(cfg.StatusSource)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.APIToken)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Everything else is for the command front-end and requires the
	// shared token
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	protected.HandleFunc("/players/by-discord/{discord_id}", playerHandler.Stats).Methods(http.MethodGet)
	protected.HandleFunc("/players/by-discord/{discord_id}/vip", vipHandler.Status).Methods(http.MethodGet)
	protected.HandleFunc("/players/by-discord/{discord_id}/claim", vipHandler.Claim).Methods(http.MethodPost)
	protected.HandleFunc("/status", statusHandler.Get).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
