package storage

import (
	"context"

	"github.com/boredgamer/platform/models"
)

// EventArchiver writes a batch of expired events to cold storage before
// the retention sweeper deletes them.
type EventArchiver interface {
	ArchiveEvents(ctx context.Context, studioID string, events []models.Event) error
}
