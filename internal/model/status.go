package model

import "time"

// ServerState is the coarse seeding state of one game server endpoint
type ServerState string

const (
	// ServerStateIdle means the monitor is outside the seeding window
	ServerStateIdle ServerState = "idle"
	// ServerStateSeeding means population is below the threshold and
	// accrual is active
	ServerStateSeeding ServerState = "seeding"
	// ServerStateDone means population reached the threshold
	ServerStateDone ServerState = "done"
	// ServerStateUnreachable means the last poll of this endpoint failed
	ServerStateUnreachable ServerState = "unreachable"
)

// ServerStatus is the per-endpoint summary the monitor emits after a tick.
// Consumers own any rate-limiting of how often it is displayed.
type ServerStatus struct {
	Endpoint    string      `json:"endpoint"`
	State       ServerState `json:"state"`
	PlayerCount int         `json:"player_count"`
	Threshold   int         `json:"threshold"`
	CheckedAt   time.Time   `json:"checked_at"`
}
