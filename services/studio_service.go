package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const apiKeyPrefix = "bg_"

type RegisterStudioInput struct {
	Name string `json:"name"`
}

type StudioService interface {
	// Register creates a studio on the free tier and returns its API key.
	// The plaintext key is returned exactly once; only its hash is stored.
	Register(ctx context.Context, input RegisterStudioInput) (*models.Studio, string, error)
	GetByID(ctx context.Context, studioID string) (*models.Studio, error)
	Authenticate(ctx context.Context, studioID, apiKey string) (*models.Studio, error)
	UpdateTier(ctx context.Context, studioID string, tier models.Tier) (*models.Studio, error)
}

type studioService struct {
	studioRepo repositories.StudioRepository
}

func NewStudioService(studioRepo repositories.StudioRepository) StudioService {
	return &studioService{studioRepo: studioRepo}
}

func (s *studioService) Register(ctx context.Context, input RegisterStudioInput) (*models.Studio, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", ErrStudioNameRequired
	}

	apiKey := apiKeyPrefix + uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash api key: %w", err)
	}

	studio := &models.Studio{
		ID:         uuid.NewString(),
		Name:       name,
		Tier:       models.TierFree,
		APIKeyHash: string(hash),
	}

	if err := s.studioRepo.Create(ctx, studio); err != nil {
		if errors.Is(err, repositories.ErrStudioNameConflict) {
			return nil, "", ErrStudioNameConflict
		}
		return nil, "", fmt.Errorf("failed to create studio: %w", err)
	}
	return studio, apiKey, nil
}

func (s *studioService) GetByID(ctx context.Context, studioID string) (*models.Studio, error) {
	studio, err := s.studioRepo.GetByID(ctx, studioID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudioNotFound) {
			return nil, ErrStudioNotFound
		}
		return nil, err
	}
	return studio, nil
}

func (s *studioService) Authenticate(ctx context.Context, studioID, apiKey string) (*models.Studio, error) {
	studio, err := s.studioRepo.GetByID(ctx, studioID)
	if err != nil {
		if errors.Is(err, repositories.ErrStudioNotFound) {
			// Same error as a bad key, to avoid confirming studio ids.
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(studio.APIKeyHash), []byte(apiKey)) != nil {
		return nil, ErrInvalidCredentials
	}
	return studio, nil
}

func (s *studioService) UpdateTier(ctx context.Context, studioID string, tier models.Tier) (*models.Studio, error) {
	if !models.ValidTier(tier) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}

	if err := s.studioRepo.UpdateTier(ctx, studioID, tier); err != nil {
		if errors.Is(err, repositories.ErrStudioNotFound) {
			return nil, ErrStudioNotFound
		}
		return nil, fmt.Errorf("failed to update tier for studio %s: %w", studioID, err)
	}
	return s.GetByID(ctx, studioID)
}
