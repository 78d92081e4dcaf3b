package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hllops/seedbank/internal/api/apierr"
	"github.com/hllops/seedbank/internal/api/request"
	"github.com/hllops/seedbank/internal/api/response"
	"github.com/hllops/seedbank/internal/dependencies/clock"
	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/vip"
)

// VIPHandler handles VIP status and claim endpoints
type VIPHandler struct {
	vipService *vip.Service
	clock      clock.Clock
}

// NewVIPHandler creates a new VIP handler
func NewVIPHandler(vipService *vip.Service, clock clock.Clock) *VIPHandler {
	return &VIPHandler{
		vipService: vipService,
		clock:      clock,
	}
}

// Status handles GET /api/v1/players/by-discord/{discord_id}/vip
func (h *VIPHandler) Status(w http.ResponseWriter, r *http.Request) {
	discordID := mux.Vars(r)["discord_id"]
	if discordID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("discord_id is required"))
		return
	}

	_, status, err := h.vipService.Status(r.Context(), model.DiscordID(discordID))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.VIPFromStatus(status, h.clock.Now()))
}

// Claim handles POST /api/v1/players/by-discord/{discord_id}/claim
func (h *VIPHandler) Claim(w http.ResponseWriter, r *http.Request) {
	discordID := mux.Vars(r)["discord_id"]
	if discordID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("discord_id is required"))
		return
	}

	var req request.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Hours < 1 {
		apierr.WriteError(w, apierr.NewInvalidRequestError("hours must be at least 1"))
		return
	}

	result, err := h.vipService.Claim(r.Context(), model.DiscordID(discordID), req.Hours)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ClaimResponse{
		Player:       response.PlayerFromModel(result.Player),
		ExpiresAt:    result.ExpiresAt.UTC(),
		GrantedHours: result.GrantedHours,
		NeverExpires: !result.ExpiresAt.Before(model.NeverExpires),
	})
}
