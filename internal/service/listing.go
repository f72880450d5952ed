// internal/service/listing.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/inference"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/metrics"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/scoring"
)

const (
	ListingApproved      = "approved"
	ListingPendingReview = "pending_review"
	ListingRejected      = "rejected"
)

type ListingAnalyzer struct {
	gateway  *ModelGateway
	registry *FlagRegistry
	logger   *zap.Logger
}

func NewListingAnalyzer(gateway *ModelGateway, registry *FlagRegistry, logger *zap.Logger) *ListingAnalyzer {
	return &ListingAnalyzer{gateway: gateway, registry: registry, logger: logger}
}

// Analyze runs the full listing rule set on a submitted listing.
func (a *ListingAnalyzer) Analyze(ctx context.Context, req *models.ListingSubmitRequest) (*models.ListingAnalysisResponse, error) {
	l := req.ListingData
	if strings.TrimSpace(l.ProductTitle) == "" {
		return nil, models.NewValidationError("productTitle", "required")
	}
	if l.Price < 0 {
		return nil, models.NewValidationError("price", "must not be negative")
	}
	startTime := time.Now()
	defer func() {
		metrics.ScoringDuration.WithLabelValues("listing").Observe(time.Since(startTime).Seconds())
	}()

	productID := req.ProductID
	if productID == "" {
		productID = "listing-" + uuid.New().String()[:8]
	}

	textReq := &inference.TextRequest{
		Text:    strings.TrimSpace(l.ProductTitle + " " + l.ProductDescription),
		Title:   l.ProductTitle,
		Subject: productID,
	}
	var imageReq *inference.ImageRequest
	if strings.TrimSpace(l.MainImage) != "" {
		imageReq = &inference.ImageRequest{
			ImageURL:     l.MainImage,
			BrandName:    l.BrandName,
			ProductTitle: l.ProductTitle,
		}
	}
	scores, warnings, partial := a.gateway.Score(ctx, "listing:"+productID, textReq, imageReq)

	signals := scoring.ExtractListing(l, scores)
	score := scoring.Aggregate(signals, scoring.NeutralBase)
	level := scoring.ClassifyRisk(score.RiskScore)

	response := &models.ListingAnalysisResponse{
		ProductID:       productID,
		SellerID:        req.SellerID,
		Score:           score,
		RiskLevel:       level,
		Evidence:        scoring.Collect(signals),
		Recommendations: listingRecommendations(level),
		PartialAnalysis: partial,
		Warnings:        nonNil(warnings),
		Status:          listingStatus(level),
	}
	metrics.ScoringRequests.WithLabelValues("listing", string(level.Severity())).Inc()

	issues := scoring.FailureSummary(signals)
	if level.Severity().AtLeast(models.SeverityMedium) && len(response.Evidence) > 0 {
		flag, err := a.registry.Create(ctx, listingFlag(productID, req, response, flagReasons(issues, response.Evidence)))
		if err != nil {
			a.logger.Error("failed to create listing flag",
				zap.Error(err),
				zap.String("product_id", productID))
		} else {
			response.FlagID = flag.ID
		}
	}
	return response, nil
}

func listingStatus(level models.RiskLevel) string {
	switch level {
	case models.RiskLevelCritical:
		return ListingRejected
	case models.RiskLevelHigh, models.RiskLevelMedium:
		return ListingPendingReview
	default:
		return ListingApproved
	}
}

func listingRecommendations(level models.RiskLevel) []string {
	switch level {
	case models.RiskLevelCritical:
		return []string{
			"Block publication until brand authorization is verified",
			"Remove counterfeit or placeholder wording",
		}
	case models.RiskLevelHigh:
		return []string{
			"Hold the listing for manual review",
			"Request proof of authenticity from the seller",
		}
	case models.RiskLevelMedium:
		return []string{"Ask the seller to correct the flagged fields"}
	default:
		return []string{"No action required"}
	}
}

func listingFlag(productID string, req *models.ListingSubmitRequest, res *models.ListingAnalysisResponse, issues []string) models.NewFlag {
	l := req.ListingData
	flag := models.NewFlag{
		Title:     fmt.Sprintf("High Risk Product Listing - %s", l.BrandName),
		Severity:  res.RiskLevel.Severity(),
		Risk:      "Counterfeit",
		Category:  "Product",
		Evidence:  res.Evidence,
		AISummary: fmt.Sprintf("Listing risk %.2f (%s). %s.", res.Score.RiskScore, res.RiskLevel, strings.Join(issues, "; ")),
		Product: &models.ProductRef{
			ID:        productID,
			Title:     l.ProductTitle,
			Price:     l.Price,
			Category:  l.Category,
			MarketAvg: l.MarketAverage,
		},
		UserUpload: map[string]interface{}{
			"brandName":          l.BrandName,
			"productTitle":       l.ProductTitle,
			"productDescription": l.ProductDescription,
			"price":              l.Price,
		},
	}
	if l.MainImage != "" {
		flag.Product.Images = append([]string{l.MainImage}, l.AdditionalImages...)
	}
	if req.SellerID != "" {
		flag.Seller = &models.SellerRef{ID: req.SellerID}
	}
	return flag
}
