package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/boredgamer/platform/models"
	"github.com/lib/pq"
)

type EventRepository interface {
	Insert(ctx context.Context, event *models.Event) error
	// ListExpired returns up to limit events for a studio whose timestamp
	// is strictly before cutoff, oldest first.
	ListExpired(ctx context.Context, studioID string, cutoff time.Time, limit int) ([]models.Event, error)
	// DeleteBatch removes the given events in one statement. Ids that no
	// longer exist are skipped, which keeps repeated sweeps idempotent.
	DeleteBatch(ctx context.Context, ids []string) error
	CountByStudio(ctx context.Context, studioID string) (int, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Insert(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (id, studio_id, name, ts, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	var payload interface{}
	if len(e.Payload) > 0 {
		payload = []byte(e.Payload)
	}

	err := r.db.QueryRowContext(ctx, query, e.ID, e.StudioID, e.Name, e.Timestamp, payload).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) ListExpired(ctx context.Context, studioID string, cutoff time.Time, limit int) ([]models.Event, error) {
	query := `
		SELECT id, studio_id, name, ts, payload, created_at
		FROM events
		WHERE studio_id = $1 AND ts < $2
		ORDER BY ts
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, studioID, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		var payload []byte
		if scanErr := rows.Scan(&e.ID, &e.StudioID, &e.Name, &e.Timestamp, &payload, &e.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to delete event batch: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) CountByStudio(ctx context.Context, studioID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE studio_id = $1`, studioID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events for studio %s: %w", studioID, err)
	}
	return count, nil
}
