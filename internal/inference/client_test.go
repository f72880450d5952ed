// internal/inference/client_test.go
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

func TestHTTPClientClassifyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, textPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TextRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "great product", req.Text)

		_ = json.NewEncoder(w).Encode(models.TextModelScore{FakeProbability: 0.12, Label: "genuine"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", time.Second, zap.NewNop())
	got, err := c.ClassifyText(context.Background(), TextRequest{Text: "great product"})
	require.NoError(t, err)
	assert.InDelta(t, 0.12, got.FakeProbability, 1e-9)
	assert.Equal(t, "genuine", got.Label)
}

func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 50*time.Millisecond, zap.NewNop())
	start := time.Now()
	_, err := c.ScoreImage(context.Background(), ImageRequest{ImageURL: "img://a"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCollaboratorTimeout), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPClientRetriesUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(models.ImageModelScore{Authenticity: 0.9})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, zap.NewNop()).WithRetry(RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		RetryableStatuses: []int{http.StatusServiceUnavailable},
	})
	got, err := c.ScoreImage(context.Background(), ImageRequest{ImageURL: "img://a"})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, got.Authenticity, 1e-9)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, zap.NewNop()).WithRetry(RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		RetryableStatuses: []int{http.StatusBadGateway},
	})
	_, err := c.ClassifyText(context.Background(), TextRequest{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.False(t, errors.Is(err, models.ErrCollaboratorTimeout))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, zap.NewNop()).ScoreImage(context.Background(), ImageRequest{})
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestHTTPClientRejectsOutOfRangeScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.TextModelScore{FakeProbability: 7})
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, zap.NewNop()).ClassifyText(context.Background(), TextRequest{Text: "x"})
	assert.Error(t, err)
}

func TestLinearModel(t *testing.T) {
	m := NewLinearModel()
	ctx := context.Background()

	spam, err := m.ClassifyText(ctx, TextRequest{Text: "BEST PRICE!!! Huge discount, click here www.deals.example"})
	require.NoError(t, err)
	plain, err := m.ClassifyText(ctx, TextRequest{Text: "The strap feels sturdy and the colour matches the photos well."})
	require.NoError(t, err)

	assert.Greater(t, spam.FakeProbability, plain.FakeProbability)
	assert.Greater(t, spam.FakeProbability, 0.7)
	assert.Less(t, plain.FakeProbability, 0.3)
	assert.Equal(t, "fake", spam.Label)

	_, err = m.ScoreImage(ctx, ImageRequest{ImageURL: "img://a"})
	assert.ErrorIs(t, err, ErrUnsupported)
}
