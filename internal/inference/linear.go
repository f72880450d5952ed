// internal/inference/linear.go
package inference

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

const linearModelName = "local-linear-v1"

// LinearModel is an in-process text classifier used when no inference
// service is configured. It has no image capability.
type LinearModel struct {
	weights map[string]float64
	bias    float64
}

func NewLinearModel() *LinearModel {
	return &LinearModel{
		weights: map[string]float64{
			"promo_terms":     2.0,
			"fake_terms":      1.5,
			"exclamations":    0.8,
			"caps_ratio":      1.2,
			"short_text":      0.6,
			"repeated_chars":  0.5,
			"url_like_tokens": 1.0,
		},
		bias: -2.5,
	}
}

func (m *LinearModel) ClassifyText(ctx context.Context, req TextRequest) (*models.TextModelScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := m.Predict(TextFeatures(req.Text))
	label := "genuine"
	if p > 0.5 {
		label = "fake"
	}
	return &models.TextModelScore{FakeProbability: p, Label: label, Model: linearModelName}, nil
}

func (m *LinearModel) ScoreImage(context.Context, ImageRequest) (*models.ImageModelScore, error) {
	return nil, ErrUnsupported
}

// Predict returns the probability in [0, 1] that the features describe fake
// text.
func (m *LinearModel) Predict(features map[string]float64) float64 {
	score := m.bias
	for feature, value := range features {
		if weight, ok := m.weights[feature]; ok {
			score += weight * value
		}
	}
	return sigmoid(score)
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// TextFeatures normalizes every feature into [0, 1].
func TextFeatures(text string) map[string]float64 {
	features := make(map[string]float64)
	lower := strings.ToLower(text)

	features["promo_terms"] = math.Min(float64(countTerms(lower, promoTerms))/3.0, 1.0)
	features["fake_terms"] = math.Min(float64(countTerms(lower, fakeTerms))/2.0, 1.0)
	features["exclamations"] = math.Min(float64(strings.Count(text, "!"))/5.0, 1.0)

	var letters, upper int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters > 0 {
		features["caps_ratio"] = float64(upper) / float64(letters)
	}

	if len(strings.Fields(text)) < 5 {
		features["short_text"] = 1.0
	}
	if hasRepeatedRun(text, 4) {
		features["repeated_chars"] = 1.0
	}
	if strings.Contains(lower, "http") || strings.Contains(lower, "www.") || strings.Contains(lower, "bit.ly") {
		features["url_like_tokens"] = 1.0
	}
	return features
}

var (
	promoTerms = []string{"discount", "cheap", "offer", "best price", "deal", "click here", "limited time", "promo", "coupon"}
	fakeTerms  = []string{"fake", "counterfeit", "scam", "not authentic", "knockoff", "replica"}
)

func countTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if strings.Contains(text, t) {
			n++
		}
	}
	return n
}

func hasRepeatedRun(text string, n int) bool {
	run := 1
	var prev rune
	for i, r := range text {
		if i > 0 && r == prev && !unicode.IsSpace(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 1
		}
		prev = r
	}
	return false
}
