// internal/scoring/review.go
package scoring

import (
	"fmt"
	"strings"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// ReviewInput is everything known about a review at scoring time.
type ReviewInput struct {
	Text         string
	Verified     bool
	Rating       int
	ProductImage string
	ReviewImage  string
	History      *models.ReviewerHistory
	Models       models.ModelScores
}

// Base returns the starting trust for the review.
func (in ReviewInput) Base() Base {
	return Base{Verified: in.Verified}
}

type reviewRule func(ReviewInput) []models.Signal

// ExtractReview runs every review rule in a fixed order.
func ExtractReview(in ReviewInput) []models.Signal {
	rules := []reviewRule{
		checkVerifiedPurchase,
		checkSuspiciousText,
		checkFakeIndicators,
		checkImageMatch,
		checkReviewImageModel,
		checkReviewTextModel,
		checkReviewerHistory,
		checkUnverifiedFiveStar,
	}

	signals := make([]models.Signal, 0, len(rules))
	for _, rule := range rules {
		signals = append(signals, rule(in)...)
	}
	return signals
}

func checkVerifiedPurchase(in ReviewInput) []models.Signal {
	sig := models.Signal{
		Rule:     RuleVerifiedPurchase,
		Category: models.CategoryAccount,
		Passed:   in.Verified,
		Weight:   VerificationSwing,
		Detail:   "Verified purchase",
	}
	if !in.Verified {
		sig.Detail = "Reviewer is not a verified purchaser"
	}
	return []models.Signal{sig}
}

func checkSuspiciousText(in ReviewInput) []models.Signal {
	hits := MatchTerms(in.Text, SuspiciousTextPatterns)
	if len(hits) == 0 {
		return []models.Signal{{
			Rule:     RuleSuspiciousText,
			Category: models.CategoryText,
			Passed:   true,
			Detail:   "No promotional or suspicious text patterns",
		}}
	}
	return []models.Signal{{
		Rule:     RuleSuspiciousText,
		Category: models.CategoryText,
		Weight:   TextPenalty,
		Impact:   TextImpact,
		Detail:   "Contains promotional or suspicious text patterns: " + strings.Join(hits, ", "),
	}}
}

func checkFakeIndicators(in ReviewInput) []models.Signal {
	hits := MatchTerms(in.Text, FakeIndicators)
	if len(hits) == 0 {
		return nil
	}
	return []models.Signal{{
		Rule:     RuleFakeIndicators,
		Category: models.CategoryPattern,
		Weight:   FakeIndicatorHit,
		Detail:   "Review describes the product as not genuine: " + strings.Join(hits, ", "),
	}}
}

// checkImageMatch compares URIs only. Without a reference image there is
// nothing to compare, so no Visual signal is produced.
func checkImageMatch(in ReviewInput) []models.Signal {
	reference := strings.TrimSpace(in.ProductImage)
	if reference == "" {
		return nil
	}
	candidate := strings.TrimSpace(in.ReviewImage)

	sig := models.Signal{
		Rule:            RuleImageMatch,
		Category:        models.CategoryVisual,
		Weight:          ImagePenalty,
		Impact:          ImageMatchScore - ImageMissScore,
		SupportingImage: candidate,
	}
	switch {
	case candidate == "":
		sig.Detail = "No review image supplied to compare with the product image"
	case candidate == reference:
		sig.Passed = true
		sig.Detail = "Review image matches the product image"
	default:
		sig.Marker = models.MarkerSuspicious
		sig.Detail = "Suspicious review image: does not match the product image"
	}
	return []models.Signal{sig}
}

func checkReviewImageModel(in ReviewInput) []models.Signal {
	return imageModelSignals(in.Models.Image, strings.TrimSpace(in.ReviewImage), 25)
}

func checkReviewTextModel(in ReviewInput) []models.Signal {
	m := in.Models.Text
	if m == nil {
		return nil
	}
	sig := models.Signal{
		Rule:     RuleTextModel,
		Category: models.CategoryAI,
		Passed:   m.FakeProbability <= MaxTextFakeProbablity,
		Detail:   fmt.Sprintf("Text model rates the review as genuine (fake probability %.2f)", m.FakeProbability),
	}
	if !sig.Passed {
		sig.Weight = 20
		sig.Detail = fmt.Sprintf("Text model rates the review as likely fake (fake probability %.2f)", m.FakeProbability)
	}
	return []models.Signal{sig}
}

func checkReviewerHistory(in ReviewInput) []models.Signal {
	h := in.History
	if h == nil {
		return nil
	}
	var out []models.Signal
	if h.FlaggedReviews > 0 {
		out = append(out, models.Signal{
			Rule:     RuleReviewerHistory,
			Category: models.CategoryBehavior,
			Weight:   HistoryPenalty,
			Detail:   fmt.Sprintf("Reviewer has %d previously flagged reviews", h.FlaggedReviews),
		})
	}
	if h.AccountAgeDays > 0 && h.AccountAgeDays < 30 && h.TotalReviews > 10 {
		out = append(out, models.Signal{
			Rule:     RuleReviewerHistory,
			Category: models.CategoryBehavior,
			Weight:   HistoryPenalty,
			Detail:   fmt.Sprintf("Burst of %d reviews from an account %d days old", h.TotalReviews, h.AccountAgeDays),
		})
	}
	if len(out) == 0 {
		out = append(out, models.Signal{
			Rule:     RuleReviewerHistory,
			Category: models.CategoryBehavior,
			Passed:   true,
			Detail:   "Reviewer history shows no prior issues",
		})
	}
	return out
}

func checkUnverifiedFiveStar(in ReviewInput) []models.Signal {
	if in.Verified || in.Rating != 5 {
		return nil
	}
	return []models.Signal{{
		Rule:     RuleUnverifiedFiveStar,
		Category: models.CategoryPattern,
		Weight:   FiveStarPenalty,
		Detail:   "Five-star rating from an unverified purchaser",
	}}
}

// imageModelSignals turns an image verdict into AI signals. Every image
// finding is reported under AI so only URI comparisons move the image
// sub-score.
func imageModelSignals(m *models.ImageModelScore, image string, weight float64) []models.Signal {
	if m == nil {
		return nil
	}
	var out []models.Signal
	if m.Authenticity < MinAuthenticity {
		out = append(out, models.Signal{
			Rule:            RuleImageModel,
			Category:        models.CategoryAI,
			Weight:          weight,
			Detail:          fmt.Sprintf("Image model flagged a likely fake image (authenticity %.2f)", m.Authenticity),
			SupportingImage: image,
			Marker:          models.MarkerFakeImage,
		})
	}
	if m.AIGenerated {
		out = append(out, models.Signal{
			Rule:            RuleImageModel,
			Category:        models.CategoryAI,
			Weight:          weight,
			Detail:          "AI-generated image detected",
			SupportingImage: image,
			Marker:          models.MarkerAIGenerated,
		})
	}
	if m.StockPhoto {
		out = append(out, models.Signal{
			Rule:            RuleImageModel,
			Category:        models.CategoryAI,
			Weight:          weight / 2,
			Detail:          "Image appears to be a stock photo",
			SupportingImage: image,
			Marker:          models.MarkerStockPhoto,
		})
	}
	if m.ManipulationDetected {
		out = append(out, models.Signal{
			Rule:            RuleImageModel,
			Category:        models.CategoryAI,
			Weight:          weight,
			Detail:          "Suspicious image manipulation detected",
			SupportingImage: image,
			Marker:          models.MarkerSuspicious,
		})
	}
	if len(out) == 0 {
		out = append(out, models.Signal{
			Rule:            RuleImageModel,
			Category:        models.CategoryAI,
			Passed:          true,
			Detail:          fmt.Sprintf("Image model found no authenticity issues (authenticity %.2f)", m.Authenticity),
			SupportingImage: image,
		})
	}
	return out
}

// MatchTerms returns every term found in text, case-insensitively, in
// lexicon order without duplicates.
func MatchTerms(text string, lexicon []string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, term := range lexicon {
		if strings.Contains(lower, term) {
			hits = append(hits, term)
		}
	}
	return hits
}
