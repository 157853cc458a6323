package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is a single node of a tournament bracket. Generated matches carry
// ids of the form match_r<round>_<index>. Round never changes after
// creation; Winner is set exactly when Status is completed.
type Match struct {
	ID          string          `json:"id"`
	Round       int             `json:"round"`
	Player1     *string         `json:"player1,omitempty"`
	Player2     *string         `json:"player2,omitempty"` // nil for a bye
	Status      MatchStatus     `json:"status"`
	Winner      *string         `json:"winner,omitempty"`
	Score       json.RawMessage `json:"score,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// MatchID builds the canonical generated-match id for a round and a
// 1-based index within that round.
func MatchID(round, index int) string {
	return fmt.Sprintf("match_r%d_%d", round, index)
}

// Tournament holds the full bracket list as one embedded document.
// Revision guards the read-modify-write of Brackets: every persisted
// update increments it, and writers must present the revision they read.
type Tournament struct {
	ID        string    `json:"id" db:"id"`
	StudioID  string    `json:"studio_id" db:"studio_id"`
	Name      string    `json:"name" db:"name"`
	Brackets  []Match   `json:"brackets" db:"-"`
	Revision  int       `json:"-" db:"revision"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
