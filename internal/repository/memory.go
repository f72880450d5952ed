// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

type MemoryFlagStore struct {
	mu    sync.RWMutex
	flags map[string]*models.Flag
}

func NewMemoryFlagStore() *MemoryFlagStore {
	return &MemoryFlagStore{flags: map[string]*models.Flag{}}
}

func (s *MemoryFlagStore) Insert(ctx context.Context, flag *models.Flag) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.flags[flag.ID]; ok {
		return models.ErrConflict
	}
	s.flags[flag.ID] = flag.Clone()
	return nil
}

func (s *MemoryFlagStore) Get(ctx context.Context, id string) (*models.Flag, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flags[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return f.Clone(), nil
}

func (s *MemoryFlagStore) List(ctx context.Context) ([]*models.Flag, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Flag, 0, len(s.flags))
	for _, f := range s.flags {
		out = append(out, f.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryFlagStore) Update(ctx context.Context, flag *models.Flag, expected int) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.flags[flag.ID]
	if !ok {
		return models.ErrNotFound
	}
	if cur.Version != expected {
		return models.ErrConflict
	}
	next := flag.Clone()
	next.Version = expected + 1
	s.flags[flag.ID] = next
	flag.Version = next.Version
	return nil
}

type MemoryMonitoringStore struct {
	mu       sync.RWMutex
	sessions map[string][]*models.MonitoringResult
}

func NewMemoryMonitoringStore() *MemoryMonitoringStore {
	return &MemoryMonitoringStore{sessions: map[string][]*models.MonitoringResult{}}
}

func (s *MemoryMonitoringStore) Append(ctx context.Context, result *models.MonitoringResult) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *result
	s.sessions[result.ProductID] = append(s.sessions[result.ProductID], &r)
	return nil
}

func (s *MemoryMonitoringStore) Results(ctx context.Context, productID string) ([]*models.MonitoringResult, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.sessions[productID]
	out := make([]*models.MonitoringResult, len(src))
	for i, r := range src {
		c := *r
		out[i] = &c
	}
	return out, nil
}
