package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hllops/seedbank/internal/api/apierr"
	"github.com/hllops/seedbank/internal/api/request"
	"github.com/hllops/seedbank/internal/api/response"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/ledger"
)

// PlayerHandler handles registration and stats endpoints
type PlayerHandler struct {
	ledger *ledger.Service
	rate   float64
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(ledger *ledger.Service, rate float64) *PlayerHandler {
	return &PlayerHandler{
		ledger: ledger,
		rate:   rate,
	}
}

// Register handles POST /api/v1/players/register
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.SteamID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("steam_id is required"))
		return
	}
	if req.DiscordID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("discord_id is required"))
		return
	}

	player, err := h.ledger.Register(r.Context(), model.SteamID(req.SteamID), model.DiscordID(req.DiscordID), req.DisplayName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerFromModel(player))
}

// Stats handles GET /api/v1/players/by-discord/{discord_id}
func (h *PlayerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	discordID := mux.Vars(r)["discord_id"]
	if discordID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("discord_id is required"))
		return
	}

	player, err := h.ledger.LookupByDiscord(r.Context(), model.DiscordID(discordID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsResponse{
		PlayerResponse:      response.PlayerFromModel(player),
		VIPHoursPerSeedHour: h.rate,
	})
}
