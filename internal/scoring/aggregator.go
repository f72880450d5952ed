// internal/scoring/aggregator.go
package scoring

import (
	"math"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// Base selects the starting trust. Neutral wins over Verified and is used
// where no reviewer exists (listing steps, full listings, verification).
type Base struct {
	Verified bool
	Neutral  bool
}

func (b Base) Score() float64 {
	switch {
	case b.Neutral:
		return BaseNeutral
	case b.Verified:
		return BaseVerified
	default:
		return BaseUnverified
	}
}

// NeutralBase is the base for checks without a reviewer.
var NeutralBase = Base{Neutral: true}

// Aggregate folds signals into a score. Failing signals only ever subtract,
// and the running score is clamped after every step.
func Aggregate(signals []models.Signal, base Base) models.ScoreResult {
	trust := base.Score()
	text := 100.0
	image := 100.0
	hasImage := false

	for _, s := range signals {
		if s.Category == models.CategoryVisual {
			hasImage = true
		}
		// Verified purchase already lives in the base.
		if s.Passed || s.Rule == RuleVerifiedPurchase {
			continue
		}
		trust = clamp(trust-math.Max(0, s.Weight), 0, 100)

		switch s.Category {
		case models.CategoryText:
			text = clamp(text-math.Max(0, s.SubScorePenalty()), 0, 100)
		case models.CategoryVisual:
			image = clamp(image-math.Max(0, s.SubScorePenalty()), 0, 100)
		}
	}

	result := models.ScoreResult{
		TrustScore: trust,
		RiskScore:  RiskFromTrust(trust),
		Badge:      BadgeFor(trust),
		TextScore:  text,
	}
	if hasImage {
		result.ImageScore = &image
	}
	return result
}

// RiskFromTrust is the complement of trust on the unit interval.
func RiskFromTrust(trust float64) float64 {
	return round4(clamp(1-trust/100, 0, 1))
}

func BadgeFor(trust float64) models.Badge {
	switch {
	case trust >= HighTrustFloor:
		return models.BadgeHighTrust
	case trust >= MediumTrustFloor:
		return models.BadgeMediumTrust
	default:
		return models.BadgeLowTrust
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
