package handler

import (
	"net/http"

	"github.com/hllops/seedbank/internal/api/response"
	"github.com/hllops/seedbank/internal/model"
)

// StatusSource supplies the latest monitor summary per endpoint
type StatusSource interface {
	Snapshot() []model.ServerStatus
}

// StatusHandler serves the monitor's per-endpoint status
type StatusHandler struct {
	source StatusSource
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{
		source: source,
	}
}

// Get handles GET /api/v1/status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.StatusResponse{
		Servers: h.source.Snapshot(),
	})
}
