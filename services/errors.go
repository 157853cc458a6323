package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	// Lookup failures
	ErrNotFound            = errors.New("requested resource not found")
	ErrStudioNotFound      = errors.New("studio not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrMatchNotFound       = errors.New("match not found in tournament bracket")
	ErrLeaderboardNotFound = errors.New("leaderboard not found")

	// Validation and business rules
	ErrValidationFailed        = errors.New("validation failed")
	ErrStudioNameRequired      = errors.New("studio name is required")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrLeaderboardNameRequired = errors.New("leaderboard name is required")
	ErrNotEnoughParticipants   = errors.New("at least two participants are required")
	ErrInvalidTier             = errors.New("unknown subscription tier")
	ErrTierLimitReached        = errors.New("subscription tier limit reached")

	// Conflicts
	ErrStudioNameConflict      = errors.New("studio name is already in use")
	ErrTournamentNameConflict  = errors.New("tournament name is already in use")
	ErrLeaderboardNameConflict = errors.New("leaderboard name is already in use")

	// ErrBracketConflict is returned when a bracket write keeps losing the
	// revision check after re-reads; the caller may retry the request.
	ErrBracketConflict = errors.New("bracket was modified concurrently, please retry")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid studio id or api key")
)
