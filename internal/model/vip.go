package model

import "time"

// NeverExpires is the far-future sentinel used by the game server tooling
// for indefinite VIP (vanilla CRCON grants "now + 200 years"). Expirations
// at or beyond this instant are treated as non-expiring.
var NeverExpires = time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)

// VIPStatus is the privilege state one game server reports for a player.
// A nil ExpiresAt means the server has no VIP record for them.
type VIPStatus struct {
	ExpiresAt *time.Time
}

// HasVIP reports whether the server holds any VIP record
func (s VIPStatus) HasVIP() bool {
	return s.ExpiresAt != nil
}

// Indefinite reports whether the VIP record never expires
func (s VIPStatus) Indefinite() bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.Before(NeverExpires)
}

// Expired reports whether the VIP record exists but lapsed before now
func (s VIPStatus) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// Equal compares two statuses by value: both absent, or the same instant.
// An absent record and an expired record are NOT equal; cross-server
// reconciliation deliberately treats them as drift.
func (s VIPStatus) Equal(o VIPStatus) bool {
	if s.ExpiresAt == nil || o.ExpiresAt == nil {
		return s.ExpiresAt == nil && o.ExpiresAt == nil
	}
	return s.ExpiresAt.Equal(*o.ExpiresAt)
}
