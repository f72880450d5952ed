// internal/scoring/severity.go
package scoring

import "github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"

// ClassifyTrust maps a trust score onto flag severity. Critical additionally
// needs a failing Visual or AI signal, so a low score from text alone tops
// out at High.
func ClassifyTrust(result models.ScoreResult, signals []models.Signal) models.Severity {
	switch {
	case result.TrustScore >= HighTrustFloor:
		return models.SeverityLow
	case result.TrustScore >= MediumTrustFloor:
		return models.SeverityMedium
	case result.TrustScore < CriticalTrustLimit && hasFailingMedia(signals):
		return models.SeverityCritical
	default:
		return models.SeverityHigh
	}
}

func hasFailingMedia(signals []models.Signal) bool {
	for _, s := range signals {
		if s.Failed() && (s.Category == models.CategoryVisual || s.Category == models.CategoryAI) {
			return true
		}
	}
	return false
}

func ClassifyRisk(risk float64) models.RiskLevel {
	switch {
	case risk >= RiskCriticalFloor:
		return models.RiskLevelCritical
	case risk >= RiskHighFloor:
		return models.RiskLevelHigh
	case risk >= RiskMediumFloor:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// OverallRisk is the mean risk of every step recorded so far. An empty
// session has no risk.
func OverallRisk(results []*models.MonitoringResult) (float64, models.RiskLevel) {
	if len(results) == 0 {
		return 0, models.RiskLevelLow
	}
	var sum float64
	for _, r := range results {
		sum += r.RiskScore
	}
	mean := round4(sum / float64(len(results)))
	return mean, ClassifyRisk(mean)
}

// ClassifyFake is independent of the trust ladder.
func ClassifyFake(probability float64) models.FakeStatus {
	switch {
	case probability > FakeThreshold:
		return models.FakeStatusFake
	case probability > SuspiciousThreshold:
		return models.FakeStatusSuspicious
	default:
		return models.FakeStatusGenuine
	}
}

// EvidenceSeverity grades a single signal by its weight.
func EvidenceSeverity(s models.Signal) models.Severity {
	if s.Passed {
		return models.SeverityLow
	}
	switch {
	case s.Weight >= 50:
		return models.SeverityCritical
	case s.Weight >= 30:
		return models.SeverityHigh
	case s.Weight >= 15:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
