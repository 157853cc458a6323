package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
)

// How many times a result write is re-applied after losing the revision
// check before the conflict is surfaced to the caller.
const recordResultAttempts = 3

// BracketBroadcaster pushes bracket updates to live subscribers.
// Implemented by brackets.Hub; nil disables broadcasting.
type BracketBroadcaster interface {
	BroadcastBracketUpdate(tournamentID string, brackets []models.Match)
}

type RecordResultInput struct {
	MatchID  string
	WinnerID string
	Score    json.RawMessage
}

type BracketService interface {
	GetBrackets(ctx context.Context, tournamentID string) ([]models.Match, error)
	RecordResult(ctx context.Context, tournamentID string, input RecordResultInput) ([]models.Match, error)
}

type bracketService struct {
	tournamentRepo repositories.TournamentRepository
	hub            BracketBroadcaster
}

func NewBracketService(tournamentRepo repositories.TournamentRepository, hub BracketBroadcaster) BracketService {
	return &bracketService{
		tournamentRepo: tournamentRepo,
		hub:            hub,
	}
}

func (s *bracketService) GetBrackets(ctx context.Context, tournamentID string) ([]models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
	}
	return tournament.Brackets, nil
}

// RecordResult marks one match completed and, when that completes its
// round, appends the next round's pairings. The whole bracket list is
// written back in a single revision-checked update; a lost revision check
// re-reads and re-applies the result so neither of two concurrent reports
// is dropped.
func (s *bracketService) RecordResult(ctx context.Context, tournamentID string, input RecordResultInput) ([]models.Match, error) {
	for attempt := 0; attempt < recordResultAttempts; attempt++ {
		tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, fmt.Errorf("failed to load tournament %s: %w", tournamentID, err)
		}

		brackets, err := applyResult(tournament.Brackets, input)
		if err != nil {
			return nil, err
		}

		err = s.tournamentRepo.UpdateBrackets(ctx, tournamentID, brackets, tournament.Revision)
		if err != nil {
			if errors.Is(err, repositories.ErrBracketsRevisionConflict) {
				continue
			}
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, fmt.Errorf("failed to save brackets for tournament %s: %w", tournamentID, err)
		}

		if s.hub != nil {
			s.hub.BroadcastBracketUpdate(tournamentID, brackets)
		}
		return brackets, nil
	}
	return nil, ErrBracketConflict
}

// applyResult returns a new bracket list with the target match completed
// and, if its round just finished, the next round appended. Existing
// matches keep their ids and positions; only the target match's result
// fields and the list's length change.
func applyResult(current []models.Match, input RecordResultInput) ([]models.Match, error) {
	brackets := make([]models.Match, len(current))
	copy(brackets, current)

	target := -1
	for i := range brackets {
		if brackets[i].ID == input.MatchID {
			target = i
			break
		}
	}
	if target == -1 {
		return nil, ErrMatchNotFound
	}

	// Round is read from the pre-update record.
	currentRound := brackets[target].Round

	now := time.Now().UTC()
	winner := input.WinnerID
	brackets[target].Status = models.MatchStatusCompleted
	brackets[target].Winner = &winner
	brackets[target].Score = input.Score
	brackets[target].CompletedAt = &now

	roundTotal := 0
	roundCompleted := 0
	winners := make([]string, 0)
	for i := range brackets {
		if brackets[i].Round != currentRound {
			continue
		}
		roundTotal++
		if brackets[i].Status == models.MatchStatusCompleted {
			roundCompleted++
			if brackets[i].Winner != nil {
				// Winners are collected in bracket-list order, which is
				// insertion order, not match-index order.
				winners = append(winners, *brackets[i].Winner)
			}
		}
	}

	// A round of exactly one match is the final: no further rounds.
	if roundCompleted != roundTotal || roundTotal <= 1 {
		return brackets, nil
	}

	nextRound := currentRound + 1
	// Consecutive winners are paired; an odd trailing winner does not
	// advance.
	for i := 0; i+1 < len(winners); i += 2 {
		p1 := winners[i]
		p2 := winners[i+1]
		brackets = append(brackets, models.Match{
			ID:        models.MatchID(nextRound, i/2+1),
			Round:     nextRound,
			Player1:   &p1,
			Player2:   &p2,
			Status:    models.MatchStatusPending,
			CreatedAt: now,
		})
	}
	return brackets, nil
}
