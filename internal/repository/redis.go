// internal/repository/redis.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// ListClient is the slice of the redis client the session store needs.
type ListClient interface {
	Append(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Range(ctx context.Context, key string) ([]string, error)
}

// RedisMonitoringStore keeps each session as a redis list of JSON results.
type RedisMonitoringStore struct {
	client ListClient
	ttl    time.Duration
}

func NewRedisMonitoringStore(client ListClient, ttl time.Duration) *RedisMonitoringStore {
	return &RedisMonitoringStore{client: client, ttl: ttl}
}

func sessionKey(productID string) string {
	return fmt.Sprintf("monitoring:%s", productID)
}

func (s *RedisMonitoringStore) Append(ctx context.Context, result *models.MonitoringResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode monitoring result: %w", err)
	}
	return s.client.Append(ctx, sessionKey(result.ProductID), data, s.ttl)
}

func (s *RedisMonitoringStore) Results(ctx context.Context, productID string) ([]*models.MonitoringResult, error) {
	items, err := s.client.Range(ctx, sessionKey(productID))
	if err != nil {
		return nil, err
	}
	out := make([]*models.MonitoringResult, 0, len(items))
	for _, item := range items {
		var r models.MonitoringResult
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decode monitoring result: %w", err)
		}
		out = append(out, &r)
	}
	return out, nil
}
