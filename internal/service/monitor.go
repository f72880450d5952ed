// internal/service/monitor.go
// Listing wizard step monitoring
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/scoring"
)

type StepMonitor struct {
	gateway *ModelGateway
	store   repository.MonitoringStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewStepMonitor(gateway *ModelGateway, store repository.MonitoringStore, logger *zap.Logger) *StepMonitor {
	return &StepMonitor{
		gateway: gateway,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Monitor scores one wizard step, records it in the product's session and
// returns it together with the running overall risk.
func (m *StepMonitor) Monitor(ctx context.Context, req *models.StepMonitorRequest) (*models.StepMonitorResponse, error) {
	if req.StepNumber < models.FirstStep || req.StepNumber > models.LastStep {
		return nil, models.NewValidationError("step_number", fmt.Sprintf("must be between %d and %d", models.FirstStep, models.LastStep))
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, models.NewValidationError("product_id", "required")
	}
	startTime := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("step").Observe(time.Since(startTime).Seconds())
	}()

	data := scoring.NewStepData(req.StepNumber, req.StepData)
	subject := fmt.Sprintf("step:%s:%d", req.ProductID, req.StepNumber)

	var textReq *inference.TextRequest
	if text := data.TextForModel(req.StepNumber); text != "" {
		textReq = &inference.TextRequest{Text: text, Title: data.String("productTitle"), Subject: subject}
	}
	var imageReq *inference.ImageRequest
	if image := data.ImageForModel(req.StepNumber); image != "" {
		imageReq = &inference.ImageRequest{
			ImageURL:     image,
			BrandName:    data.String("brandName"),
			ProductTitle: data.String("productTitle"),
		}
	}
	scores, modelWarnings, partial := m.gateway.Score(ctx, subject, textReq, imageReq)

	signals := scoring.ExtractStep(req.StepNumber, data, scores)
	score := scoring.Aggregate(signals, scoring.NeutralBase)
	level := scoring.ClassifyRisk(score.RiskScore)

	warnings := []string{}
	for _, s := range signals {
		if s.Failed() {
			warnings = append(warnings, s.Detail)
		}
	}
	warnings = append(warnings, modelWarnings...)

	result := &models.MonitoringResult{
		Step:            req.StepNumber,
		ProductID:       req.ProductID,
		Timestamp:       m.now().UTC(),
		Warnings:        warnings,
		RiskScore:       score.RiskScore,
		RiskLevel:       level,
		Recommendations: stepRecommendations(score.RiskScore),
		Evidence:        scoring.Collect(signals),
		PartialAnalysis: partial,
	}
	metrics.ScoringRequests.WithLabelValues("step", string(level.Severity())).Inc()

	if err := m.store.Append(ctx, result); err != nil {
		return nil, fmt.Errorf("record step %d: %w", req.StepNumber, err)
	}
	history, err := m.store.Results(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	overall, overallLevel := scoring.OverallRisk(history)

	if level == models.RiskLevelCritical {
		m.logger.Warn("critical listing step",
			zap.String("product_id", req.ProductID),
			zap.Int("step", req.StepNumber),
			zap.Float64("risk_score", score.RiskScore))
	}

	return &models.StepMonitorResponse{
		MonitoringResult: result,
		OverallRiskScore: overall,
		OverallRiskLevel: overallLevel,
		StepsRecorded:    len(history),
	}, nil
}

// Session returns every recorded step of a product in order.
func (m *StepMonitor) Session(ctx context.Context, productID string) (*models.MonitoringSession, error) {
	results, err := m.store.Results(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no monitoring data for %s: %w", productID, models.ErrNotFound)
	}
	overall, level := scoring.OverallRisk(results)
	return &models.MonitoringSession{
		ProductID:        productID,
		Results:          results,
		OverallRiskScore: overall,
		OverallRiskLevel: level,
	}, nil
}

func stepRecommendations(risk float64) []string {
	switch {
	case risk > 0.7:
		return []string{
			"Review the flagged fields before continuing",
			"This step is likely to be rejected at submission",
		}
	case risk > 0.4:
		return []string{"Consider revising the flagged fields"}
	default:
		return []string{"Step looks good"}
	}
}
