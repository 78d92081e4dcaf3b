package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound       = errors.New("player not found")
	ErrInsufficientBalance  = errors.New("insufficient seeding balance")
	ErrAlreadyRegistered    = errors.New("steam id is registered to a different discord account")
	ErrDiscordAlreadyLinked = errors.New("discord account is already linked to a different steam id")
	ErrDuplicateIdentity    = errors.New("identity lookup matched more than one player record")

	// VIP errors
	ErrVIPMismatch     = errors.New("vip status differs between game servers")
	ErrVIPNeverExpires = errors.New("vip does not expire, nothing to convert")
)
