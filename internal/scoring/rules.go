// internal/scoring/rules.go
package scoring

import "github.com/shopspring/decimal"

// Rule names carried on every Signal.
const (
	RuleVerifiedPurchase   = "verified_purchase"
	RuleSuspiciousText     = "suspicious_text"
	RuleFakeIndicators     = "fake_indicators"
	RuleImageMatch         = "image_match"
	RuleReviewerHistory    = "reviewer_history"
	RuleUnverifiedFiveStar = "unverified_five_star"
	RuleTextModel          = "text_model"
	RuleImageModel         = "image_model"
	RuleCounterfeitTerms   = "counterfeit_keywords"
	RuleBrandConsistency   = "brand_consistency"
	RuleSuspiciousBrand    = "suspicious_brand"
	RulePlaceholderText    = "placeholder_text"
	RuleShortDescription   = "short_description"
	RulePriceBand          = "price_band"
	RuleLowPrice           = "low_price"
	RuleMarketDeviation    = "market_deviation"
	RuleCategoryRelevance  = "category_relevance"
	RuleMainImage          = "main_image"
	RuleVariations         = "variations"
	RuleShippingWeight     = "shipping_weight"
	RuleBarcode            = "barcode"
)

const (
	BaseVerified   = 70.0
	BaseUnverified = 30.0
	BaseNeutral    = 100.0

	// VerificationSwing is the distance between the two verification baselines.
	VerificationSwing = BaseVerified - BaseUnverified

	TextPenalty      = 30.0
	TextImpact       = 70.0
	ImagePenalty     = 20.0
	ImageMatchScore  = 100.0
	ImageMissScore   = 20.0
	FakeIndicatorHit = 15.0
	HistoryPenalty   = 10.0
	FiveStarPenalty  = 10.0

	// Model thresholds.
	MinAuthenticity       = 0.7
	MaxTextFakeProbablity = 0.7
	MinSimilarity         = 0.5

	MinDescriptionLength = 50
	MinStepPrice         = 5.0
)

// Fake-probability tri-state boundaries.
const (
	FakeThreshold       = 0.7
	SuspiciousThreshold = 0.3
)

// Trust ladder boundaries.
const (
	HighTrustFloor     = 80.0
	MediumTrustFloor   = 50.0
	CriticalTrustLimit = 30.0
)

// Risk ladder boundaries.
const (
	RiskCriticalFloor = 0.7
	RiskHighFloor     = 0.5
	RiskMediumFloor   = 0.3
)

// SuspiciousTextPatterns are promotional or spam markers in review text.
var SuspiciousTextPatterns = []string{
	"bit.ly", "discount", "cheap", "link", "offer",
	"best price", "amazing deal", "click here",
	"limited time", "huge discount",
}

// FakeIndicators are phrases reviewers use when describing counterfeits.
var FakeIndicators = []string{"fake", "counterfeit", "not authentic", "not as described", "scam"}

// CounterfeitKeywords mark listing text that advertises non-genuine goods.
var CounterfeitKeywords = []string{
	"replica", "fake", "copy", "imitation", "knockoff", "counterfeit",
	"unauthorized", "unlicensed", "bootleg", "pirated", "duplicate",
	"reproduction", "faux", "knock-off", "knock off", "repro",
}

// SuspiciousBrandTerms never belong in a brand name.
var SuspiciousBrandTerms = []string{"fake", "replica", "copy", "imitation", "knockoff", "counterfeit"}

type PriceBand struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func band(min, max int64) PriceBand {
	return PriceBand{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

// DefaultCategory is the fallback key of CategoryPriceBands.
const DefaultCategory = "default"

// categoryOrder fixes lookup order so matching is deterministic.
var categoryOrder = []string{
	"electronics",
	"clothing, shoes & jewelry",
	"automotive",
	"home & kitchen",
	"office products",
	"beauty & personal care",
	"health & household",
}

var CategoryPriceBands = map[string]PriceBand{
	"electronics":               band(10, 5000),
	"clothing, shoes & jewelry": band(5, 2500),
	"automotive":                band(10, 10000),
	"home & kitchen":            band(5, 3000),
	"office products":           band(1, 1000),
	"beauty & personal care":    band(2, 500),
	"health & household":        band(2, 800),
	DefaultCategory:             band(1, 20000),
}

var CategoryKeywords = map[string][]string{
	"electronics":               {"electronic", "phone", "tv", "camera", "computer", "headphone", "cable", "charger", "laptop", "tablet"},
	"clothing, shoes & jewelry": {"shirt", "pant", "shoe", "dress", "jewelry", "watch", "hat", "sock", "boot", "sandal", "jeans", "coat", "nike", "adidas"},
	"automotive":                {"car", "tire", "motor", "engine", "wheel", "vehicle", "oil", "filter", "brake"},
	"home & kitchen":            {"kitchen", "furniture", "decor", "towel", "pan", "knife", "blender", "sofa", "lamp"},
	"office products":           {"pen", "paper", "desk", "chair", "printer", "stapler", "ink", "toner"},
	"beauty & personal care":    {"lotion", "shampoo", "makeup", "lipstick", "cream", "perfume", "mascara"},
	"health & household":        {"vitamins", "medicine", "cleaner", "soap", "tissue", "supplement"},
}

var (
	// ReferralFeeRate is the marketplace cut a seller pays on each sale.
	ReferralFeeRate = decimal.NewFromFloat(0.15)
	// MaxMarketDeviation is how far from the market average a price may sit
	// before the referral fee widens the band.
	MaxMarketDeviation = decimal.NewFromFloat(0.5)
)
