package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
	"github.com/google/uuid"
)

type CreateTournamentInput struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type TournamentService interface {
	Create(ctx context.Context, studioID string, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error)
	ListByStudio(ctx context.Context, studioID string) ([]models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	studioRepo     repositories.StudioRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	studioRepo repositories.StudioRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		studioRepo:     studioRepo,
	}
}

// Create registers a tournament and generates its first round by pairing
// participants in the order given. An odd trailing participant receives a
// bye match (player2 absent).
func (s *tournamentService) Create(ctx context.Context, studioID string, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if len(input.Participants) < 2 {
		return nil, ErrNotEnoughParticipants
	}
	for _, p := range input.Participants {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: participant ids must not be empty", ErrValidationFailed)
		}
	}

	studio, err := s.studioRepo.GetByID(ctx, studioID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudioNotFound) {
			return nil, ErrStudioNotFound
		}
		return nil, fmt.Errorf("failed to load studio %s: %w", studioID, err)
	}

	policy := models.PolicyForTier(studio.Tier)
	count, err := s.tournamentRepo.CountByStudio(ctx, studioID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tournaments for studio %s: %w", studioID, err)
	}
	if count >= policy.MaxTournaments {
		return nil, fmt.Errorf("%w: tier %q allows %d tournaments", ErrTierLimitReached, studio.Tier, policy.MaxTournaments)
	}

	tournament := &models.Tournament{
		ID:       uuid.NewString(),
		StudioID: studioID,
		Name:     name,
		Brackets: firstRound(input.Participants, time.Now().UTC()),
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListByStudio(ctx context.Context, studioID string) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListByStudio(ctx, studioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for studio %s: %w", studioID, err)
	}
	return tournaments, nil
}

// firstRound pairs consecutive participants into round-1 matches. When the
// participant count is odd the last participant gets a match with player2
// absent.
func firstRound(participants []string, now time.Time) []models.Match {
	matches := make([]models.Match, 0, (len(participants)+1)/2)
	for i := 0; i < len(participants); i += 2 {
		p1 := participants[i]
		match := models.Match{
			ID:        models.MatchID(1, i/2+1),
			Round:     1,
			Player1:   &p1,
			Status:    models.MatchStatusPending,
			CreatedAt: now,
		}
		if i+1 < len(participants) {
			p2 := participants[i+1]
			match.Player2 = &p2
		}
		matches = append(matches, match)
	}
	return matches
}
