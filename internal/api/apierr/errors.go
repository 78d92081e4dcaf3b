package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hllops/seedbank/internal/model"
	"github.com/hllops/seedbank/internal/services/vip"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Endpoints carries per-endpoint grant outcomes for GRANT_FAILED so
	// an operator can reconcile drift
	Endpoints map[string]string `json:"endpoints,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeAlreadyRegistered   = "ALREADY_REGISTERED"
	CodeDiscordLinked       = "DISCORD_ALREADY_LINKED"
	CodeDuplicateIdentity   = "DUPLICATE_IDENTITY"
	CodeVIPMismatch         = "VIP_MISMATCH"
	CodeVIPNeverExpires     = "VIP_NEVER_EXPIRES"
	CodeGrantFailed         = "GRANT_FAILED"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// A partial grant carries per-endpoint outcomes the caller must see
	var pge *vip.PartialGrantError
	if errors.As(err, &pge) {
		endpoints := make(map[string]string, len(pge.Granted)+len(pge.Failed))
		for _, endpoint := range pge.Granted {
			endpoints[endpoint] = "granted"
		}
		for endpoint, ferr := range pge.Failed {
			endpoints[endpoint] = ferr.Error()
		}
		return &httpError{http.StatusBadGateway, APIError{
			Code:      CodeGrantFailed,
			Message:   "VIP grant failed on one or more servers; no balance was spent",
			Endpoints: endpoints,
		}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodePlayerNotFound, Message: "Player not found"}}
	case errors.Is(err, model.ErrInsufficientBalance):
		return &httpError{http.StatusConflict, APIError{Code: CodeInsufficientBalance, Message: "Not enough banked seeding time"}}
	case errors.Is(err, model.ErrAlreadyRegistered):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyRegistered, Message: "Steam ID is registered to a different discord account"}}
	case errors.Is(err, model.ErrDiscordAlreadyLinked):
		return &httpError{http.StatusConflict, APIError{Code: CodeDiscordLinked, Message: "Discord account is already linked to a different steam ID"}}
	case errors.Is(err, model.ErrDuplicateIdentity):
		return &httpError{http.StatusConflict, APIError{Code: CodeDuplicateIdentity, Message: "Identity matched more than one player record; contact an administrator"}}
	case errors.Is(err, model.ErrVIPMismatch):
		return &httpError{http.StatusConflict, APIError{Code: CodeVIPMismatch, Message: "VIP status differs between servers; contact an administrator"}}
	case errors.Is(err, model.ErrVIPNeverExpires):
		return &httpError{http.StatusConflict, APIError{Code: CodeVIPNeverExpires, Message: "VIP does not expire; nothing to convert"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewUpstreamError creates an error for failed game-server calls
func NewUpstreamError(message string) error {
	return &httpError{http.StatusBadGateway, APIError{Code: CodeUpstreamError, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
