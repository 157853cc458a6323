package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
	"github.com/google/uuid"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type CreateLeaderboardInput struct {
	Name string `json:"name"`
}

type SubmitScoreInput struct {
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}

type LeaderboardService interface {
	Create(ctx context.Context, studioID string, input CreateLeaderboardInput) (*models.Leaderboard, error)
	SubmitScore(ctx context.Context, studioID, leaderboardID string, input SubmitScoreInput) (*models.LeaderboardScore, error)
	Top(ctx context.Context, leaderboardID string, limit int) ([]models.LeaderboardScore, error)
}

type leaderboardService struct {
	leaderboardRepo repositories.LeaderboardRepository
	studioRepo      repositories.StudioRepository
}

func NewLeaderboardService(
	leaderboardRepo repositories.LeaderboardRepository,
	studioRepo repositories.StudioRepository,
) LeaderboardService {
	return &leaderboardService{
		leaderboardRepo: leaderboardRepo,
		studioRepo:      studioRepo,
	}
}

func (s *leaderboardService) Create(ctx context.Context, studioID string, input CreateLeaderboardInput) (*models.Leaderboard, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrLeaderboardNameRequired
	}

	studio, err := s.studioRepo.GetByID(ctx, studioID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudioNotFound) {
			return nil, ErrStudioNotFound
		}
		return nil, fmt.Errorf("failed to load studio %s: %w", studioID, err)
	}

	policy := models.PolicyForTier(studio.Tier)
	count, err := s.leaderboardRepo.CountByStudio(ctx, studioID)
	if err != nil {
		return nil, fmt.Errorf("failed to count leaderboards for studio %s: %w", studioID, err)
	}
	if count >= policy.MaxLeaderboards {
		return nil, fmt.Errorf("%w: tier %q allows %d leaderboards", ErrTierLimitReached, studio.Tier, policy.MaxLeaderboards)
	}

	leaderboard := &models.Leaderboard{
		ID:       uuid.NewString(),
		StudioID: studioID,
		Name:     name,
	}
	if err := s.leaderboardRepo.Create(ctx, leaderboard); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardNameConflict) {
			return nil, ErrLeaderboardNameConflict
		}
		return nil, fmt.Errorf("failed to create leaderboard: %w", err)
	}
	return leaderboard, nil
}

func (s *leaderboardService) SubmitScore(ctx context.Context, studioID, leaderboardID string, input SubmitScoreInput) (*models.LeaderboardScore, error) {
	if strings.TrimSpace(input.PlayerID) == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrValidationFailed)
	}

	leaderboard, err := s.leaderboardRepo.GetByID(ctx, leaderboardID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeaderboardNotFound) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, err
	}
	// Score writes are studio-scoped; a key for studio A cannot write to
	// studio B's leaderboard.
	if leaderboard.StudioID != studioID {
		return nil, ErrLeaderboardNotFound
	}

	score := &models.LeaderboardScore{
		LeaderboardID: leaderboardID,
		PlayerID:      input.PlayerID,
		Score:         input.Score,
	}
	if err := s.leaderboardRepo.UpsertScore(ctx, score); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardNotFound) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, fmt.Errorf("failed to submit score: %w", err)
	}
	return score, nil
}

func (s *leaderboardService) Top(ctx context.Context, leaderboardID string, limit int) ([]models.LeaderboardScore, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	if _, err := s.leaderboardRepo.GetByID(ctx, leaderboardID); err != nil {
		if errors.Is(err, repositories.ErrLeaderboardNotFound) {
			return nil, ErrLeaderboardNotFound
		}
		return nil, err
	}

	scores, err := s.leaderboardRepo.TopScores(ctx, leaderboardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load top scores: %w", err)
	}
	return scores, nil
}
