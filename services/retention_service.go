package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
	"github.com/boredgamer/platform/storage"
	"golang.org/x/sync/errgroup"
)

const (
	// Batch size for expired-event deletes, kept under store operation
	// limits.
	sweepBatchSize = 500

	// How many studios are swept at once.
	sweepConcurrency = 4
)

type RetentionService interface {
	// Sweep deletes every event older than its studio tier's retention
	// window, in bounded batches. A failure for one studio never aborts
	// the others; the sweep is idempotent and re-runs on the schedule.
	Sweep(ctx context.Context) error
}

type retentionService struct {
	studioRepo repositories.StudioRepository
	eventRepo  repositories.EventRepository
	archiver   storage.EventArchiver // nil disables archiving
	logger     *slog.Logger
}

func NewRetentionService(
	studioRepo repositories.StudioRepository,
	eventRepo repositories.EventRepository,
	archiver storage.EventArchiver,
	logger *slog.Logger,
) RetentionService {
	return &retentionService{
		studioRepo: studioRepo,
		eventRepo:  eventRepo,
		archiver:   archiver,
		logger:     logger,
	}
}

func (s *retentionService) Sweep(ctx context.Context) error {
	studios, err := s.studioRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list studios for retention sweep: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, studio := range studios {
		studio := studio
		g.Go(func() error {
			deleted, err := s.sweepStudio(gCtx, studio)
			if err != nil {
				// Per-studio isolation: log and move on.
				s.logger.Error("retention sweep failed for studio",
					slog.String("studio_id", studio.ID),
					slog.Any("error", err))
				return nil
			}
			if deleted > 0 {
				s.logger.Info("retention sweep deleted expired events",
					slog.String("studio_id", studio.ID),
					slog.String("tier", string(studio.Tier)),
					slog.Int("deleted", deleted))
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *retentionService) sweepStudio(ctx context.Context, studio models.Studio) (int, error) {
	policy := models.PolicyForTier(studio.Tier)
	cutoff := time.Now().UTC().AddDate(0, 0, -policy.RetentionDays)

	deleted := 0
	for {
		batch, err := s.eventRepo.ListExpired(ctx, studio.ID, cutoff, sweepBatchSize)
		if err != nil {
			return deleted, fmt.Errorf("failed to query expired events: %w", err)
		}
		if len(batch) == 0 {
			return deleted, nil
		}

		// When archiving is enabled an unarchived batch must not be
		// deleted.
		if s.archiver != nil {
			if err := s.archiver.ArchiveEvents(ctx, studio.ID, batch); err != nil {
				return deleted, fmt.Errorf("failed to archive event batch: %w", err)
			}
		}

		ids := make([]string, len(batch))
		for i, e := range batch {
			ids[i] = e.ID
		}
		if err := s.eventRepo.DeleteBatch(ctx, ids); err != nil {
			return deleted, fmt.Errorf("failed to delete event batch: %w", err)
		}
		deleted += len(batch)
	}
}
