package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boredgamer/platform/models"
	"github.com/lib/pq"
)

var (
	ErrLeaderboardNotFound     = errors.New("leaderboard not found")
	ErrLeaderboardNameConflict = errors.New("leaderboard name conflict for this studio")
)

type LeaderboardRepository interface {
	Create(ctx context.Context, leaderboard *models.Leaderboard) error
	GetByID(ctx context.Context, id string) (*models.Leaderboard, error)
	CountByStudio(ctx context.Context, studioID string) (int, error)
	// UpsertScore keeps the best score per (leaderboard, player).
	UpsertScore(ctx context.Context, score *models.LeaderboardScore) error
	TopScores(ctx context.Context, leaderboardID string, limit int) ([]models.LeaderboardScore, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) Create(ctx context.Context, l *models.Leaderboard) error {
	query := `
		INSERT INTO leaderboards (id, studio_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, l.ID, l.StudioID, l.Name).Scan(&l.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrLeaderboardNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresLeaderboardRepository) GetByID(ctx context.Context, id string) (*models.Leaderboard, error) {
	query := `
		SELECT id, studio_id, name, created_at
		FROM leaderboards
		WHERE id = $1`

	l := &models.Leaderboard{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.StudioID, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *postgresLeaderboardRepository) CountByStudio(ctx context.Context, studioID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leaderboards WHERE studio_id = $1`, studioID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count leaderboards for studio %s: %w", studioID, err)
	}
	return count, nil
}

func (r *postgresLeaderboardRepository) UpsertScore(ctx context.Context, s *models.LeaderboardScore) error {
	query := `
		INSERT INTO leaderboard_scores (leaderboard_id, player_id, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (leaderboard_id, player_id) DO UPDATE
		SET score = GREATEST(leaderboard_scores.score, EXCLUDED.score),
		    updated_at = now()
		RETURNING score, updated_at`

	err := r.db.QueryRowContext(ctx, query, s.LeaderboardID, s.PlayerID, s.Score).Scan(&s.Score, &s.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrLeaderboardNotFound
		}
		return err
	}
	return nil
}

func (r *postgresLeaderboardRepository) TopScores(ctx context.Context, leaderboardID string, limit int) ([]models.LeaderboardScore, error) {
	query := `
		SELECT leaderboard_id, player_id, score, updated_at
		FROM leaderboard_scores
		WHERE leaderboard_id = $1
		ORDER BY score DESC, updated_at
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, leaderboardID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]models.LeaderboardScore, 0)
	for rows.Next() {
		var s models.LeaderboardScore
		if scanErr := rows.Scan(&s.LeaderboardID, &s.PlayerID, &s.Score, &s.UpdatedAt); scanErr != nil {
			return nil, scanErr
		}
		scores = append(scores, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
