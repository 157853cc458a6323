package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/boredgamer/platform/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this studio")
	ErrTournamentInvalidOwner = errors.New("invalid studio reference")

	// ErrBracketsRevisionConflict means the bracket list changed between
	// the caller's read and its conditional write.
	ErrBracketsRevisionConflict = errors.New("tournament brackets were modified concurrently")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	ListByStudio(ctx context.Context, studioID string) ([]models.Tournament, error)
	CountByStudio(ctx context.Context, studioID string) (int, error)
	// UpdateBrackets persists the full bracket list in a single write,
	// conditional on the revision the caller read (compare-and-swap).
	UpdateBrackets(ctx context.Context, id string, brackets []models.Match, expectedRevision int) error
	Delete(ctx context.Context, id string) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	bracketsJSON, err := json.Marshal(t.Brackets)
	if err != nil {
		return fmt.Errorf("failed to encode brackets: %w", err)
	}

	query := `
		INSERT INTO tournaments (id, studio_id, name, brackets, revision)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query, t.ID, t.StudioID, t.Name, bracketsJSON).Scan(&t.CreatedAt)
	if err != nil {
		return r.handleTournamentError(err)
	}
	t.Revision = 0
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := `
		SELECT id, studio_id, name, brackets, revision, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	var bracketsJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.StudioID, &t.Name, &bracketsJSON, &t.Revision, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(bracketsJSON, &t.Brackets); err != nil {
		return nil, fmt.Errorf("failed to decode brackets for tournament %s: %w", id, err)
	}
	if t.Brackets == nil {
		t.Brackets = []models.Match{}
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByStudio(ctx context.Context, studioID string) ([]models.Tournament, error) {
	query := `
		SELECT id, studio_id, name, brackets, revision, created_at
		FROM tournaments
		WHERE studio_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, studioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		var bracketsJSON []byte
		if scanErr := rows.Scan(&t.ID, &t.StudioID, &t.Name, &bracketsJSON, &t.Revision, &t.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		if err := json.Unmarshal(bracketsJSON, &t.Brackets); err != nil {
			return nil, fmt.Errorf("failed to decode brackets for tournament %s: %w", t.ID, err)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) CountByStudio(ctx context.Context, studioID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments WHERE studio_id = $1`, studioID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tournaments for studio %s: %w", studioID, err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) UpdateBrackets(ctx context.Context, id string, brackets []models.Match, expectedRevision int) error {
	bracketsJSON, err := json.Marshal(brackets)
	if err != nil {
		return fmt.Errorf("failed to encode brackets: %w", err)
	}

	query := `
		UPDATE tournaments
		SET brackets = $1, revision = revision + 1
		WHERE id = $2 AND revision = $3`

	result, err := r.db.ExecContext(ctx, query, bracketsJSON, id, expectedRevision)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Zero rows means either the tournament is gone or the revision moved.
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tournaments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return ErrBracketsRevisionConflict
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrTournamentNameConflict
		case "23503":
			return ErrTournamentInvalidOwner
		}
	}
	return err
}
