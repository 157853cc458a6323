package models

import "time"

// Tier represents a studio's subscription level. The empty string is the
// free tier; billing manages transitions, this service only reads them.
type Tier string

const (
	TierEnterprise   Tier = "enterprise"
	TierProfessional Tier = "professional"
	TierIndependent  Tier = "independent"
	TierFree         Tier = ""
)

// TierPolicy is the per-tier policy record shared by every tier-aware
// component (retention sweep, capacity checks).
type TierPolicy struct {
	RetentionDays   int
	MaxTournaments  int
	MaxLeaderboards int
}

var tierPolicies = map[Tier]TierPolicy{
	TierEnterprise:   {RetentionDays: 365, MaxTournaments: 100, MaxLeaderboards: 50},
	TierProfessional: {RetentionDays: 90, MaxTournaments: 25, MaxLeaderboards: 10},
	TierIndependent:  {RetentionDays: 30, MaxTournaments: 5, MaxLeaderboards: 3},
}

// Free-tier limits apply to the empty tier and to any unrecognized value.
var defaultTierPolicy = TierPolicy{RetentionDays: 7, MaxTournaments: 1, MaxLeaderboards: 1}

// PolicyForTier returns the policy for a tier, falling back to the
// free-tier policy for absent or unknown tiers.
func PolicyForTier(t Tier) TierPolicy {
	if p, ok := tierPolicies[t]; ok {
		return p
	}
	return defaultTierPolicy
}

// ValidTier reports whether t is a tier this service knows about.
func ValidTier(t Tier) bool {
	switch t {
	case TierEnterprise, TierProfessional, TierIndependent, TierFree:
		return true
	}
	return false
}

type Studio struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Tier       Tier      `json:"tier" db:"tier"`
	APIKeyHash string    `json:"-" db:"api_key_hash"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
