// internal/repository/mongo_integration_test.go
//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

func newMongoTestStore(t *testing.T) *MongoFlagStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("Failed to connect to test mongo: %v", err)
	}
	dbName := "trust_safety_test_" + uuid.New().String()[:8]
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	store := NewMongoFlagStore(client, dbName)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}
	return store
}

func TestMongoFlagStore(t *testing.T) {
	store := newMongoTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	flag := &models.Flag{
		ID:        "FLAG-" + uuid.New().String()[:8],
		Title:     "Suspicious review detected",
		Severity:  models.SeverityHigh,
		Status:    models.FlagStatusOpen,
		FlaggedOn: now.Format(models.FlagDateLayout),
		Evidence:  []models.Evidence{{Type: models.CategoryAccount, Message: "Reviewer is not a verified purchaser"}},
		Notes:     []models.Note{},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.Insert(ctx, flag); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Insert(ctx, flag); err != models.ErrConflict {
		t.Errorf("duplicate Insert() error = %v, want ErrConflict", err)
	}

	got, err := store.Get(ctx, flag.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Severity != models.SeverityHigh || len(got.Evidence) != 1 {
		t.Errorf("Get() = %+v", got)
	}
	if _, err := store.Get(ctx, "FLAG-missing"); err != models.ErrNotFound {
		t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
	}

	got.Status = models.FlagStatusInvestigating
	if err := store.Update(ctx, got, 1); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}

	stale := got.Clone()
	stale.Status = models.FlagStatusResolved
	if err := store.Update(ctx, stale, 1); err != models.ErrConflict {
		t.Errorf("stale Update() error = %v, want ErrConflict", err)
	}

	unknown := flag.Clone()
	unknown.ID = "FLAG-missing"
	if err := store.Update(ctx, unknown, 1); err != models.ErrNotFound {
		t.Errorf("Update(unknown) error = %v, want ErrNotFound", err)
	}

	stored, err := store.Get(ctx, flag.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if stored.Status != models.FlagStatusInvestigating || stored.Version != 2 {
		t.Errorf("stored = status %s version %d, want Investigating 2", stored.Status, stored.Version)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d flags, want 1", len(all))
	}
}

func TestMongoMonitoringStore(t *testing.T) {
	sessions := newMongoTestStore(t).MonitoringStore()
	ctx := context.Background()
	start := time.Now().UTC().Truncate(time.Millisecond)

	for i, step := range []int{1, 2} {
		err := sessions.Append(ctx, &models.MonitoringResult{
			ProductID: "p-1",
			Step:      step,
			RiskScore: 0.1 * float64(step),
			Timestamp: start.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	results, err := sessions.Results(ctx, "p-1")
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if len(results) != 2 || results[0].Step != 1 || results[1].Step != 2 {
		t.Errorf("Results() = %+v", results)
	}

	empty, err := sessions.Results(ctx, "p-none")
	if err != nil {
		t.Fatalf("Results() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Results(p-none) = %+v, want empty", empty)
	}
}
