// internal/models/signal.go
package models

type Category string

const (
	CategoryText     Category = "Text"
	CategoryVisual   Category = "Visual"
	CategoryPattern  Category = "Pattern"
	CategoryAccount  Category = "Account"
	CategoryPrice    Category = "Price"
	CategoryMarket   Category = "Market"
	CategoryLogin    Category = "Login"
	CategoryBehavior Category = "Behavior"
	CategoryPolicy   Category = "Policy"
	CategoryPayment  Category = "Payment"
	CategoryAI       Category = "AI"
	CategoryOther    Category = "Other"
)

// Marker names the display label an evidence thumbnail should carry.
type Marker string

const (
	MarkerNone        Marker = ""
	MarkerStockPhoto  Marker = "Stock Photo Detected"
	MarkerAIGenerated Marker = "AI-generated"
	MarkerFakeImage   Marker = "Fake Image"
	MarkerSuspicious  Marker = "Suspicious"
)

// Signal is a single observation produced by a rule. Signals are values and
// are never mutated after extraction.
type Signal struct {
	Rule            string   `json:"rule"`
	Category        Category `json:"category"`
	Passed          bool     `json:"passed"`
	Weight          float64  `json:"weight"`
	Impact          float64  `json:"impact,omitempty"`
	Detail          string   `json:"detail"`
	SupportingImage string   `json:"supporting_image,omitempty"`
	Marker          Marker   `json:"marker,omitempty"`
}

// Failed is the inverse of Passed.
func (s Signal) Failed() bool {
	return !s.Passed
}

// SubScorePenalty is how far a failing signal moves its category sub-score.
func (s Signal) SubScorePenalty() float64 {
	if s.Impact > 0 {
		return s.Impact
	}
	return s.Weight
}
