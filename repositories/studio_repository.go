package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/boredgamer/platform/models"
	"github.com/lib/pq"
)

var (
	ErrStudioNotFound     = errors.New("studio not found")
	ErrStudioNameConflict = errors.New("studio name is already in use")
)

type StudioRepository interface {
	Create(ctx context.Context, studio *models.Studio) error
	GetByID(ctx context.Context, id string) (*models.Studio, error)
	// List returns every studio. Unbounded by design: the retention
	// sweeper walks all tenants and the tenant count is expected to stay
	// small enough for a single read.
	List(ctx context.Context) ([]models.Studio, error)
	UpdateTier(ctx context.Context, id string, tier models.Tier) error
}

type postgresStudioRepository struct {
	db *sql.DB
}

func NewPostgresStudioRepository(db *sql.DB) StudioRepository {
	return &postgresStudioRepository{db: db}
}

func (r *postgresStudioRepository) Create(ctx context.Context, s *models.Studio) error {
	query := `
		INSERT INTO studios (id, name, tier, api_key_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.Tier, s.APIKeyHash).Scan(&s.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrStudioNameConflict
		}
		return err
	}
	return nil
}

func (r *postgresStudioRepository) GetByID(ctx context.Context, id string) (*models.Studio, error) {
	query := `
		SELECT id, name, tier, api_key_hash, created_at
		FROM studios
		WHERE id = $1`

	s := &models.Studio{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Name, &s.Tier, &s.APIKeyHash, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudioNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresStudioRepository) List(ctx context.Context) ([]models.Studio, error) {
	query := `
		SELECT id, name, tier, api_key_hash, created_at
		FROM studios
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	studios := make([]models.Studio, 0)
	for rows.Next() {
		var s models.Studio
		if scanErr := rows.Scan(&s.ID, &s.Name, &s.Tier, &s.APIKeyHash, &s.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		studios = append(studios, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return studios, nil
}

func (r *postgresStudioRepository) UpdateTier(ctx context.Context, id string, tier models.Tier) error {
	result, err := r.db.ExecContext(ctx, `UPDATE studios SET tier = $1 WHERE id = $2`, tier, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStudioNotFound)
}
