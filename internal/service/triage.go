// internal/service/triage.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// TriageController applies operator decisions. It is the only path that
// resolves a flag.
type TriageController struct {
	registry *FlagRegistry
	logger   *zap.Logger
}

func NewTriageController(registry *FlagRegistry, logger *zap.Logger) *TriageController {
	return &TriageController{registry: registry, logger: logger}
}

// ApplyAction resolves a flag with the outcome of action. A flag that is
// already Resolved yields ErrConflict.
func (t *TriageController) ApplyAction(ctx context.Context, id string, action models.TriageAction, note, operator string) (*models.Flag, error) {
	outcome, ok := action.Outcome()
	if !ok {
		return nil, models.NewValidationError("action", fmt.Sprintf("unknown action %q", action))
	}

	flag, err := t.registry.mutate(ctx, id, func(f *models.Flag, now time.Time) (bool, error) {
		if f.Status == models.FlagStatusResolved {
			return false, fmt.Errorf("flag %s already resolved as %s: %w", id, f.Outcome, models.ErrConflict)
		}
		f.Status = models.FlagStatusResolved
		f.Outcome = outcome
		appendNote(f, operatorName(operator), strings.TrimSpace(note), string(action), now)
		return true, nil
	})

	result := "ok"
	switch {
	case errors.Is(err, models.ErrNotFound):
		result = "not_found"
	case errors.Is(err, models.ErrConflict):
		result = "conflict"
	case err != nil:
		result = "error"
	}
	metrics.TriageActions.WithLabelValues(string(action), result).Inc()

	if err != nil {
		return nil, err
	}
	t.logger.Info("flag resolved",
		zap.String("flag_id", id),
		zap.String("action", string(action)),
		zap.String("outcome", string(outcome)),
		zap.String("operator", operatorName(operator)))
	return flag, nil
}

// AddNote appends to the flag's notes in any status.
func (t *TriageController) AddNote(ctx context.Context, id, note, operator string) (*models.Flag, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, models.NewValidationError("note", "required")
	}
	return t.registry.mutate(ctx, id, func(f *models.Flag, now time.Time) (bool, error) {
		appendNote(f, operatorName(operator), note, "", now)
		return true, nil
	})
}
