package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boredgamer/platform/models"
	"github.com/boredgamer/platform/repositories"
	"github.com/google/uuid"
)

type IngestEventInput struct {
	Name      string          `json:"name"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type EventService interface {
	Ingest(ctx context.Context, studioID string, input IngestEventInput) (*models.Event, error)
}

type eventService struct {
	eventRepo repositories.EventRepository
}

func NewEventService(eventRepo repositories.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

// Ingest validates and stores one telemetry event. Timestamps are RFC3339
// and normalized to UTC before they hit the store.
func (s *eventService) Ingest(ctx context.Context, studioID string, input IngestEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrValidationFailed)
	}
	if input.Timestamp == "" {
		return nil, fmt.Errorf("%w: event timestamp is required", ErrValidationFailed)
	}

	ts, err := time.Parse(time.RFC3339, input.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp must be RFC3339", ErrValidationFailed)
	}

	event := &models.Event{
		ID:        uuid.NewString(),
		StudioID:  studioID,
		Name:      input.Name,
		Timestamp: ts.UTC(),
		Payload:   input.Payload,
	}

	if err := s.eventRepo.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to store event: %w", err)
	}
	return event, nil
}
