// internal/service/verification.go
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/scoring"
)

type VerificationScanner struct {
	gateway  *ModelGateway
	registry *FlagRegistry
	logger   *zap.Logger
}

func NewVerificationScanner(gateway *ModelGateway, registry *FlagRegistry, logger *zap.Logger) *VerificationScanner {
	return &VerificationScanner{gateway: gateway, registry: registry, logger: logger}
}

// Scan checks a delivery photo. A scan classified High or worse is reported
// as counterfeit and raises a Critical flag; a Medium scan is queued for
// review at its own severity.
func (s *VerificationScanner) Scan(ctx context.Context, req *models.VerificationRequest) (*models.VerificationResponse, error) {
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, models.NewValidationError("order_id", "required")
	}
	if strings.TrimSpace(req.CapturedImageURL) == "" {
		return nil, models.NewValidationError("captured_image_url", "required")
	}
	startTime := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("verification").Observe(time.Since(startTime).Seconds())
	}()

	imageReq := &inference.ImageRequest{
		ImageURL:     req.CapturedImageURL,
		ReferenceURL: req.ExpectedImageURL,
		BrandName:    req.BrandName,
		ProductTitle: req.ProductTitle,
	}
	scores, warnings, partial := s.gateway.Score(ctx, "order:"+req.OrderID, nil, imageReq)

	signals := scoring.ExtractVerification(*req, scores)
	score := scoring.Aggregate(signals, scoring.NeutralBase)
	severity := scoring.ClassifyTrust(score, signals)

	response := &models.VerificationResponse{
		OrderID:         req.OrderID,
		Result:          models.VerificationAuthentic,
		Score:           score,
		Severity:        severity,
		Evidence:        scoring.Collect(signals),
		PartialAnalysis: partial,
		Warnings:        nonNil(warnings),
	}
	metrics.ScoringRequests.WithLabelValues("verification", string(severity)).Inc()

	if !severity.AtLeast(models.SeverityMedium) || len(response.Evidence) == 0 {
		return response, nil
	}
	reasons := flagReasons(scoring.FailureSummary(signals), response.Evidence)

	flag := models.NewFlag{
		Title:     "Delivery Verification Needs Review",
		Severity:  severity,
		Risk:      "Counterfeit",
		Category:  "Verification",
		Evidence:  response.Evidence,
		AISummary: "Delivery verification inconclusive: " + strings.Join(reasons, "; ") + ".",
		Product: &models.ProductRef{
			Title:  req.ProductTitle,
			Images: nonEmpty(req.ExpectedImageURL),
		},
		UserUpload: map[string]interface{}{
			"order_id":           req.OrderID,
			"captured_image_url": req.CapturedImageURL,
			"decoded_barcode":    req.DecodedBarcode,
		},
	}
	if severity.AtLeast(models.SeverityHigh) {
		response.Result = models.VerificationCounterfeit
		flag.Title = "Counterfeit Product Detected"
		flag.Severity = models.SeverityCritical
		flag.AISummary = "Delivery verification failed: " + strings.Join(reasons, "; ") + "."
	}

	created, err := s.registry.Create(ctx, flag)
	if err != nil {
		s.logger.Error("failed to create verification flag",
			zap.Error(err),
			zap.String("order_id", req.OrderID))
		return response, nil
	}
	response.FlagID = created.ID
	return response, nil
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
