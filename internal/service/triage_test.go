package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

func newOpenFlag(t *testing.T, reg *FlagRegistry) *models.Flag {
	t.Helper()
	f, err := reg.Create(context.Background(), models.NewFlag{
		Title:    "Suspicious review detected",
		Severity: models.SeverityHigh,
		Evidence: textEvidence("promo"),
	})
	require.NoError(t, err)
	return f
}

func TestApplyAction(t *testing.T) {
	tests := []struct {
		action  models.TriageAction
		outcome models.Outcome
	}{
		{models.ActionSuspend, models.OutcomeSuspended},
		{models.ActionWarn, models.OutcomeWarned},
		{models.ActionDismiss, models.OutcomeDismissed},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			ctx := context.Background()
			reg, _, _ := newTestRegistry()
			tc := NewTriageController(reg, zap.NewNop())
			f := newOpenFlag(t, reg)

			got, err := tc.ApplyAction(ctx, f.ID, tt.action, "confirmed by seller history", "alice")
			require.NoError(t, err)
			assert.Equal(t, models.FlagStatusResolved, got.Status)
			assert.Equal(t, tt.outcome, got.Outcome)
			assert.Equal(t, "confirmed by seller history", got.OperatorNote)
			assert.Equal(t, f.Severity, got.Severity)
			assert.Equal(t, 2, got.Version)

			_, err = tc.ApplyAction(ctx, f.ID, models.ActionWarn, "", "bob")
			assert.ErrorIs(t, err, models.ErrConflict)

			stored, err := reg.Get(ctx, f.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, stored.Outcome)
		})
	}
}

func TestApplyActionErrors(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry()
	tc := NewTriageController(reg, zap.NewNop())
	f := newOpenFlag(t, reg)

	_, err := tc.ApplyAction(ctx, f.ID, "Ban", "", "")
	assert.True(t, models.IsValidation(err))

	_, err = tc.ApplyAction(ctx, "missing", models.ActionDismiss, "", "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	stored, err := reg.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusOpen, stored.Status)
}

func TestMarkInvestigating(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry()
	tc := NewTriageController(reg, zap.NewNop())
	f := newOpenFlag(t, reg)

	got, err := reg.MarkInvestigating(ctx, f.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.FlagStatusInvestigating, got.Status)
	assert.Equal(t, 2, got.Version)

	again, err := reg.MarkInvestigating(ctx, f.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)

	_, err = tc.ApplyAction(ctx, f.ID, models.ActionSuspend, "", "alice")
	require.NoError(t, err)

	_, err = reg.MarkInvestigating(ctx, f.ID, "alice")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAddNoteIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry()
	tc := NewTriageController(reg, zap.NewNop())
	f := newOpenFlag(t, reg)

	_, err := tc.AddNote(ctx, f.ID, "   ", "alice")
	assert.True(t, models.IsValidation(err))

	_, err = tc.AddNote(ctx, f.ID, "first", "alice")
	require.NoError(t, err)
	_, err = tc.ApplyAction(ctx, f.ID, models.ActionDismiss, "explained", "bob")
	require.NoError(t, err)
	got, err := tc.AddNote(ctx, f.ID, "after resolution", "")
	require.NoError(t, err)

	require.Len(t, got.Notes, 3)
	assert.Equal(t, "first", got.Notes[0].Text)
	assert.Equal(t, "Dismiss", got.Notes[1].Action)
	assert.Equal(t, "operator", got.Notes[2].Author)
	assert.Equal(t, "first\nexplained\nafter resolution", got.OperatorNote)
	assert.Equal(t, models.FlagStatusResolved, got.Status)

	_, err = tc.AddNote(ctx, "missing", "x", "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConcurrentActionsOnOneFlag(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry()
	tc := NewTriageController(reg, zap.NewNop())
	f := newOpenFlag(t, reg)

	actions := []models.TriageAction{models.ActionSuspend, models.ActionWarn, models.ActionDismiss}
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := tc.ApplyAction(ctx, f.ID, actions[i%3], fmt.Sprintf("note %d", i), "op")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, models.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 29, conflicts)

	stored, err := reg.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Notes, 1)
	assert.Equal(t, 2, stored.Version)
}

func TestConcurrentNotesAcrossFlags(t *testing.T) {
	ctx := context.Background()
	reg, _, _ := newTestRegistry()
	tc := NewTriageController(reg, zap.NewNop())
	a := newOpenFlag(t, reg)
	b := newOpenFlag(t, reg)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		for _, id := range []string{a.ID, b.ID} {
			wg.Add(1)
			go func(id string, i int) {
				defer wg.Done()
				_, err := tc.AddNote(ctx, id, fmt.Sprintf("note %d", i), "op")
				assert.NoError(t, err)
			}(id, i)
		}
	}
	wg.Wait()

	for _, id := range []string{a.ID, b.ID} {
		f, err := reg.Get(ctx, id)
		require.NoError(t, err)
		assert.Len(t, f.Notes, 20)
		assert.Equal(t, 21, f.Version)
	}
}
