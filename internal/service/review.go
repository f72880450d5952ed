// internal/service/review.go
// Review scoring
package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/repository"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/scoring"
)

type ReviewAnalyzer struct {
	gateway  *ModelGateway
	registry *FlagRegistry
	reviews  repository.ReviewSource
	logger   *zap.Logger
}

func NewReviewAnalyzer(gateway *ModelGateway, registry *FlagRegistry, reviews repository.ReviewSource, logger *zap.Logger) *ReviewAnalyzer {
	return &ReviewAnalyzer{
		gateway:  gateway,
		registry: registry,
		reviews:  reviews,
		logger:   logger,
	}
}

// Analyze scores a single review and raises a flag when it is at least
// Medium severity with a concrete reason.
func (a *ReviewAnalyzer) Analyze(ctx context.Context, req *models.ReviewAnalysisRequest) (*models.ReviewAnalysisResponse, error) {
	return a.analyze(ctx, req, true)
}

func (a *ReviewAnalyzer) analyze(ctx context.Context, req *models.ReviewAnalysisRequest, raiseFlag bool) (*models.ReviewAnalysisResponse, error) {
	if strings.TrimSpace(req.ReviewText) == "" {
		return nil, models.NewValidationError("review_text", "required")
	}
	startTime := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("review").Observe(time.Since(startTime).Seconds())
	}()

	textReq := &inference.TextRequest{
		Text:    req.ReviewText,
		Title:   req.ProductTitle,
		Subject: req.ReviewID,
	}
	var imageReq *inference.ImageRequest
	if strings.TrimSpace(req.ReviewImageURL) != "" {
		imageReq = &inference.ImageRequest{
			ImageURL:     req.ReviewImageURL,
			ReferenceURL: req.ProductImageURL,
			ProductTitle: req.ProductTitle,
		}
	}
	scores, warnings, partial := a.gateway.Score(ctx, "review:"+req.ReviewID, textReq, imageReq)

	input := scoring.ReviewInput{
		Text:         req.ReviewText,
		Verified:     req.Verified,
		Rating:       req.Rating,
		ProductImage: req.ProductImageURL,
		ReviewImage:  req.ReviewImageURL,
		History:      req.ReviewerHistory,
		Models:       scores,
	}
	signals := scoring.ExtractReview(input)
	result := scoring.Aggregate(signals, input.Base())
	severity := scoring.ClassifyTrust(result, signals)
	issues := scoring.FailureSummary(signals)

	fakeProbability := result.RiskScore
	if scores.Text != nil {
		fakeProbability = scores.Text.FakeProbability
	}

	response := &models.ReviewAnalysisResponse{
		ReviewID:        req.ReviewID,
		TrustScore:      result.TrustScore,
		RiskScore:       result.RiskScore,
		TextScore:       result.TextScore,
		ImageScore:      result.ImageScore,
		Badge:           result.Badge,
		Severity:        severity,
		FakeProbability: fakeProbability,
		Status:          scoring.ClassifyFake(fakeProbability),
		Recommendation:  reviewRecommendation(result.TrustScore, issues),
		ImageAnalysis:   imageAnalysis(result, scores.Image),
		Evidence:        scoring.Collect(signals),
		PartialAnalysis: partial,
		Warnings:        nonNil(warnings),
	}
	metrics.ScoringRequests.WithLabelValues("review", string(severity)).Inc()

	if raiseFlag && severity.AtLeast(models.SeverityMedium) && len(response.Evidence) > 0 {
		flag, err := a.registry.Create(ctx, reviewFlag(req, response, flagReasons(issues, response.Evidence)))
		if err != nil {
			a.logger.Error("failed to create review flag",
				zap.Error(err),
				zap.String("review_id", req.ReviewID))
		} else {
			response.FlagID = flag.ID
		}
	}
	return response, nil
}

// AnalyzeProduct scores every stored review of a product without raising
// flags.
func (a *ReviewAnalyzer) AnalyzeProduct(ctx context.Context, productID string) (*models.ProductReviewsAnalysis, error) {
	if a.reviews == nil {
		return nil, fmt.Errorf("no review source configured: %w", models.ErrNotFound)
	}
	reviews, err := a.reviews.List(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, fmt.Errorf("no reviews for product %s: %w", productID, models.ErrNotFound)
	}

	out := &models.ProductReviewsAnalysis{
		ProductID: productID,
		Distribution: map[models.Badge]int{
			models.BadgeHighTrust:   0,
			models.BadgeMediumTrust: 0,
			models.BadgeLowTrust:    0,
		},
		Reviews: make([]*models.ReviewAnalysisResponse, 0, len(reviews)),
	}
	total := 0.0
	for _, r := range reviews {
		req := &models.ReviewAnalysisRequest{
			ReviewID:        r.ID,
			ProductID:       r.ProductID,
			Reviewer:        r.Reviewer,
			ReviewText:      r.Text,
			ProductImageURL: r.ProductImage,
			Verified:        r.Verified,
			Rating:          r.Rating,
		}
		if len(r.Images) > 0 {
			req.ReviewImageURL = r.Images[0]
		}
		res, err := a.analyze(ctx, req, false)
		if err != nil {
			a.logger.Warn("skipping review", zap.String("review_id", r.ID), zap.Error(err))
			continue
		}
		out.Reviews = append(out.Reviews, res)
		out.Distribution[res.Badge]++
		total += res.TrustScore
	}
	if n := len(out.Reviews); n > 0 {
		out.AverageTrustScore = math.Round(total/float64(n)*100) / 100
	}
	return out, nil
}

func reviewRecommendation(trust float64, issues []string) string {
	if len(issues) == 0 {
		return fmt.Sprintf("Trust Score: %.0f%%. No issues detected.", trust)
	}
	return fmt.Sprintf("Trust Score: %.0f%%. Issues detected: %s", trust, strings.Join(issues, "; "))
}

func imageAnalysis(result models.ScoreResult, m *models.ImageModelScore) models.ImageAnalysis {
	out := models.ImageAnalysis{}
	if m != nil {
		out.ManipulationDetected = m.ManipulationDetected
		out.SimilarityScore = m.Similarity
	}
	if result.ImageScore != nil {
		if *result.ImageScore < 50 {
			out.ManipulationDetected = true
		}
		if out.SimilarityScore == nil {
			s := *result.ImageScore / 100
			out.SimilarityScore = &s
		}
	}
	return out
}

func reviewFlag(req *models.ReviewAnalysisRequest, res *models.ReviewAnalysisResponse, issues []string) models.NewFlag {
	flag := models.NewFlag{
		Title:     "Suspicious review detected",
		Severity:  res.Severity,
		Risk:      "Fake Review",
		Category:  "Review",
		Evidence:  res.Evidence,
		AISummary: fmt.Sprintf("Trust score %.0f/100 (%s). %s.", res.TrustScore, res.Badge, strings.Join(issues, "; ")),
		UserUpload: map[string]interface{}{
			"review_id":   req.ReviewID,
			"review_text": req.ReviewText,
			"rating":      req.Rating,
			"verified":    req.Verified,
		},
	}
	if req.ReviewImageURL != "" {
		flag.UserUpload["review_image"] = req.ReviewImageURL
	}
	if req.ProductID != "" || req.ProductTitle != "" {
		flag.Product = &models.ProductRef{
			ID:       req.ProductID,
			Title:    req.ProductTitle,
			Category: req.ProductCategory,
		}
		if req.ProductImageURL != "" {
			flag.Product.Images = []string{req.ProductImageURL}
		}
	}
	if req.Reviewer != "" {
		flag.Account = &models.AccountRef{Username: req.Reviewer}
	}
	return flag
}

// flagReasons prefers the failing details and falls back to the evidence
// messages, which also carry the verified-purchase signal.
func flagReasons(issues []string, evidence []models.Evidence) []string {
	if len(issues) > 0 {
		return issues
	}
	out := make([]string, 0, len(evidence))
	for _, e := range evidence {
		out = append(out, e.Message)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
