// internal/models/score.go
package models

type Badge string

const (
	BadgeHighTrust   Badge = "High Trust"
	BadgeMediumTrust Badge = "Medium Trust"
	BadgeLowTrust    Badge = "Low Trust"
)

// ScoreResult is the aggregate of a signal set. ImageScore is nil when no
// image comparison was possible, which is different from a failed match.
type ScoreResult struct {
	TrustScore float64  `json:"trust_score"`
	RiskScore  float64  `json:"risk_score"`
	Badge      Badge    `json:"badge"`
	TextScore  float64  `json:"text_score"`
	ImageScore *float64 `json:"image_score"`
}

// HasImageScore reports whether an image comparison contributed.
func (r ScoreResult) HasImageScore() bool {
	return r.ImageScore != nil
}

// FakeStatus is the tri-state review verdict derived from a fake probability.
type FakeStatus string

const (
	FakeStatusGenuine    FakeStatus = "genuine"
	FakeStatusSuspicious FakeStatus = "suspicious"
	FakeStatusFake       FakeStatus = "fake"
)
