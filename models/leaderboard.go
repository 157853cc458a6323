package models

import "time"

type Leaderboard struct {
	ID        string    `json:"id" db:"id"`
	StudioID  string    `json:"studio_id" db:"studio_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// LeaderboardScore keeps one row per (leaderboard, player); submissions
// only ever raise the stored score.
type LeaderboardScore struct {
	LeaderboardID string    `json:"leaderboard_id" db:"leaderboard_id"`
	PlayerID      string    `json:"player_id" db:"player_id"`
	Score         int64     `json:"score" db:"score"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
