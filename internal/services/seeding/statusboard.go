package seeding

import (
	"sort"
	"sync"

	"github.com/hllops/seedbank/internal/model"
)

// StatusBoard keeps the latest emitted status per endpoint for the API's
// status surface. It is safe to update from the monitor goroutine while
// request handlers snapshot it.
type StatusBoard struct {
	mu       sync.RWMutex
	statuses map[string]model.ServerStatus
}

// NewStatusBoard creates an empty status board
func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		statuses: make(map[string]model.ServerStatus),
	}
}

// Update records the latest status for an endpoint. It satisfies
// StatusFunc.
func (b *StatusBoard) Update(status model.ServerStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses[status.Endpoint] = status
}

// Snapshot returns the latest status per endpoint, ordered by endpoint
// name
func (b *StatusBoard) Snapshot() []model.ServerStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.ServerStatus, 0, len(b.statuses))
	for _, status := range b.statuses {
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Endpoint < out[j].Endpoint
	})
	return out
}
