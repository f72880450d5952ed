// internal/scoring/evidence.go
package scoring

import (
	"strings"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// Collect keeps every failing signal and every media signal, in extraction
// order.
func Collect(signals []models.Signal) []models.Evidence {
	out := make([]models.Evidence, 0, len(signals))
	for _, s := range signals {
		media := s.Category == models.CategoryVisual || s.Category == models.CategoryAI
		if s.Passed && !media {
			continue
		}
		label := s.Marker
		if label == models.MarkerNone && s.Failed() && s.SupportingImage != "" {
			label = LabelFor(s.Detail)
		}
		out = append(out, models.Evidence{
			Type:     s.Category,
			Message:  s.Detail,
			Image:    s.SupportingImage,
			Label:    label,
			Severity: EvidenceSeverity(s),
		})
	}
	return out
}

// LabelFor derives a thumbnail label from message text. Used for image
// evidence that arrives without an explicit marker, such as stored flags.
func LabelFor(message string) models.Marker {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "stock photo"):
		return models.MarkerStockPhoto
	case strings.Contains(lower, "ai-generated"):
		return models.MarkerAIGenerated
	case strings.Contains(lower, "fake"):
		return models.MarkerFakeImage
	case strings.Contains(lower, "suspicious"):
		return models.MarkerSuspicious
	default:
		return models.MarkerNone
	}
}

// FailureSummary joins the details of every failing signal except the
// verified-purchase bookkeeping signal.
func FailureSummary(signals []models.Signal) []string {
	var out []string
	for _, s := range signals {
		if s.Failed() && s.Rule != RuleVerifiedPurchase {
			out = append(out, s.Detail)
		}
	}
	return out
}
