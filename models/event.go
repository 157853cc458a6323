package models

import (
	"encoding/json"
	"time"
)

// Event is one telemetry record reported by a game client. Events are
// append-only; the retention sweeper deletes them once they fall outside
// the studio tier's retention window.
type Event struct {
	ID        string          `json:"id" db:"id"`
	StudioID  string          `json:"studio_id" db:"studio_id"`
	Name      string          `json:"name" db:"name"`
	Timestamp time.Time       `json:"timestamp" db:"ts"`
	Payload   json.RawMessage `json:"payload,omitempty" db:"payload"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
