package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	reviews, err := repository.LoadReviewFixtures("../../testdata/reviews.json")
	require.NoError(t, err)

	gateway := service.NewModelGateway(inference.NewLinearModel(), log)
	registry := service.NewFlagRegistry(repository.NewMemoryFlagStore(), nil, log).
		WithNarrator(service.NewNarrator(service.TemplateNarrative{}, nil, log))
	triage := service.NewTriageController(registry, log)

	analysis := NewAnalysisHandler(
		service.NewReviewAnalyzer(gateway, registry, reviews, log),
		service.NewStepMonitor(gateway, repository.NewMemoryMonitoringStore(), log),
		service.NewListingAnalyzer(gateway, registry, log),
		service.NewVerificationScanner(gateway, registry, log),
		log,
	)
	flags := NewFlagHandler(registry, triage, log)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), analysis, flags)
	return router
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(OperatorHeader, "alice")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestReviewToTriageFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/analyze/review", gin.H{
		"review_id":         "r-9",
		"review_text":       "Amazing deal!!!! Click here for a huge discount bit.ly/xyz",
		"product_image_url": "https://cdn.example.com/p/1.jpg",
		"review_image_url":  "https://cdn.example.com/r/9.jpg",
		"ratings":           5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var review models.ReviewAnalysisResponse
	decode(t, w, &review)
	assert.Equal(t, models.SeverityCritical, review.Severity)
	assert.Equal(t, models.FakeStatusFake, review.Status)
	require.NotEmpty(t, review.FlagID)

	w = do(t, r, http.MethodGet, "/api/v1/flags/"+review.FlagID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		ID       string          `json:"id"`
		Severity models.Severity `json:"severity"`
		Analysis models.Analysis `json:"analysis"`
	}
	decode(t, w, &detail)
	assert.Equal(t, review.FlagID, detail.ID)
	assert.Equal(t, models.AnalysisNarrative, detail.Analysis.Source)

	w = do(t, r, http.MethodPost, "/api/v1/flags/"+review.FlagID+"/investigate", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/flags/"+review.FlagID+"/actions", gin.H{"action": "Suspend", "note": "spam ring"})
	require.Equal(t, http.StatusOK, w.Code)
	var flag models.Flag
	decode(t, w, &flag)
	assert.Equal(t, models.FlagStatusResolved, flag.Status)
	assert.Equal(t, models.OutcomeSuspended, flag.Outcome)
	assert.Equal(t, "alice", flag.Notes[len(flag.Notes)-1].Author)

	w = do(t, r, http.MethodPost, "/api/v1/flags/"+review.FlagID+"/actions", gin.H{"action": "Warn"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/flags/"+review.FlagID+"/notes", gin.H{"note": "follow-up"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestFlagEndpointErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{"unknown flag", http.MethodGet, "/api/v1/flags/nope", nil, http.StatusNotFound},
		{"bad action", http.MethodPost, "/api/v1/flags/nope/actions", gin.H{"action": "Ban"}, http.StatusBadRequest},
		{"action on unknown flag", http.MethodPost, "/api/v1/flags/nope/actions", gin.H{"action": "Warn"}, http.StatusNotFound},
		{"empty note", http.MethodPost, "/api/v1/flags/nope/notes", gin.H{"note": ""}, http.StatusBadRequest},
		{"bad sort", http.MethodGet, "/api/v1/flags?sort=color", nil, http.StatusBadRequest},
		{"escalate without evidence", http.MethodPost, "/api/v1/flags", gin.H{"title": "x", "severity": "High"}, http.StatusBadRequest},
		{"blank review", http.MethodPost, "/api/v1/analyze/review", gin.H{"review_text": "   "}, http.StatusBadRequest},
		{"step out of range", http.MethodPost, "/api/v1/monitor/step", gin.H{"product_id": "p", "step_number": 9, "step_data": gin.H{}}, http.StatusBadRequest},
		{"empty session", http.MethodGet, "/api/v1/monitor/p-none", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestEscalateAndStats(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/flags/stats/severity", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counts map[string]int
	decode(t, w, &counts)
	assert.Equal(t, map[string]int{"Critical": 0, "High": 0, "Medium": 0, "Low": 0}, counts)

	w = do(t, r, http.MethodPost, "/api/v1/flags", gin.H{
		"title":    "Seller impersonating a brand",
		"severity": "High",
		"note":     "customer report",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/flags?q=impersonating", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Flags []models.Flag `json:"flags"`
		Total int           `json:"total"`
	}
	decode(t, w, &list)
	assert.Equal(t, 1, list.Total)

	w = do(t, r, http.MethodGet, "/api/v1/flags/stats/trends", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var series models.TrendSeries
	decode(t, w, &series)
	assert.Len(t, series.Labels, 1)
	assert.Equal(t, []int{1}, series.Data[models.SeverityHigh])
}

func TestStepAndListingEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/monitor/step", gin.H{
		"product_id":  "p-1",
		"step_number": 3,
		"step_data":   gin.H{"price": 3.5, "category": "electronics"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var step models.StepMonitorResponse
	decode(t, w, &step)
	assert.Equal(t, models.RiskLevelCritical, step.RiskLevel)

	w = do(t, r, http.MethodGet, "/api/v1/monitor/p-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/listings/submit", gin.H{
		"product_id": "p-2",
		"listing_data": gin.H{
			"brandName":          "Fake Rolex",
			"productTitle":       "Luxury replica watch",
			"productDescription": "lorem ipsum",
			"price":              1,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var listing models.ListingAnalysisResponse
	decode(t, w, &listing)
	assert.Equal(t, models.RiskLevelCritical, listing.RiskLevel)
	assert.NotEmpty(t, listing.FlagID)

	w = do(t, r, http.MethodPost, "/api/v1/verify", gin.H{
		"order_id":           "o-1",
		"captured_image_url": "img://p",
		"expected_image_url": "img://p",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/products/p-100/reviews/analysis", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var batch models.ProductReviewsAnalysis
	decode(t, w, &batch)
	assert.Len(t, batch.Reviews, 3)
}
