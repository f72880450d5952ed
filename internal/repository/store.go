// internal/repository/store.go
package repository

import (
	"context"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// FlagStore persists flags. Implementations return copies so callers can
// never mutate stored state in place.
type FlagStore interface {
	// Insert fails with models.ErrConflict when the id already exists.
	Insert(ctx context.Context, flag *models.Flag) error
	Get(ctx context.Context, id string) (*models.Flag, error)
	List(ctx context.Context) ([]*models.Flag, error)
	// Update replaces the stored flag only if its version still equals
	// expected, then stores expected+1.
	Update(ctx context.Context, flag *models.Flag, expected int) error
}

// MonitoringStore keeps the per-step results of listing sessions.
type MonitoringStore interface {
	Append(ctx context.Context, result *models.MonitoringResult) error
	Results(ctx context.Context, productID string) ([]*models.MonitoringResult, error)
}
