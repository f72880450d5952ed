package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
)

type fakeClassifier struct {
	text     *models.TextModelScore
	image    *models.ImageModelScore
	textErr  error
	imageErr error
}

func (f *fakeClassifier) ClassifyText(ctx context.Context, req inference.TextRequest) (*models.TextModelScore, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	return f.text, nil
}

func (f *fakeClassifier) ScoreImage(ctx context.Context, req inference.ImageRequest) (*models.ImageModelScore, error) {
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.image, nil
}

type recordingAlerter struct {
	mu    sync.Mutex
	flags []*models.Flag
}

func (a *recordingAlerter) FlagCreated(ctx context.Context, flag *models.Flag) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.flags = append(a.flags, flag)
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.flags)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func day(s string) time.Time {
	t, err := time.Parse(models.FlagDateLayout, s)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

func newTestStore() repository.FlagStore {
	return repository.NewMemoryFlagStore()
}

func newTestRegistry() (*FlagRegistry, *recordingAlerter, *clock) {
	alerts := &recordingAlerter{}
	clk := &clock{now: day("2024-06-10")}
	reg := NewFlagRegistry(newTestStore(), alerts, zap.NewNop()).WithClock(clk.Now)
	return reg, alerts, clk
}

func textEvidence(msg string) []models.Evidence {
	return []models.Evidence{{Type: models.CategoryText, Message: msg}}
}
