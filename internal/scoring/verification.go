// internal/scoring/verification.go
package scoring

import (
	"fmt"
	"strings"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// ExtractVerification scores a delivery photo against what the order should
// contain.
func ExtractVerification(req models.VerificationRequest, scores models.ModelScores) []models.Signal {
	var signals []models.Signal
	captured := strings.TrimSpace(req.CapturedImageURL)

	if expected := strings.TrimSpace(req.ExpectedImageURL); expected != "" {
		sig := models.Signal{
			Rule:            RuleImageMatch,
			Category:        models.CategoryVisual,
			Passed:          captured == expected,
			Weight:          40,
			Impact:          ImageMatchScore - ImageMissScore,
			Detail:          "Captured photo matches the expected product image",
			SupportingImage: captured,
		}
		if !sig.Passed {
			sig.Marker = models.MarkerSuspicious
			sig.Detail = "Suspicious delivery photo: does not match the expected product image"
		}
		signals = append(signals, sig)
	}

	if expected := strings.TrimSpace(req.ExpectedBarcode); expected != "" {
		decoded := strings.TrimSpace(req.DecodedBarcode)
		sig := models.Signal{Rule: RuleBarcode, Category: models.CategoryPattern}
		switch {
		case decoded == "":
			sig.Weight = 20
			sig.Detail = "No barcode could be decoded from the captured photo"
		case decoded != expected:
			sig.Weight = 40
			sig.Detail = fmt.Sprintf("Barcode %s does not match the expected %s", decoded, expected)
		default:
			sig.Passed = true
			sig.Detail = "Barcode matches the order"
		}
		signals = append(signals, sig)
	}

	signals = append(signals, imageModelSignals(scores.Image, captured, 50)...)
	if m := scores.Image; m != nil && m.Similarity != nil && *m.Similarity < MinSimilarity {
		signals = append(signals, models.Signal{
			Rule:            RuleImageModel,
			Category:        models.CategoryAI,
			Weight:          20,
			Detail:          fmt.Sprintf("Image model found low similarity to the expected product (%.2f)", *m.Similarity),
			SupportingImage: captured,
		})
	}
	return signals
}
