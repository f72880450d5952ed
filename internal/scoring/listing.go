// internal/scoring/listing.go
package scoring

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// ExtractListing runs the full-listing rule set over a submitted record.
// Listings have no reviewer, so they are scored from the neutral base.
func ExtractListing(l models.ListingData, scores models.ModelScores) []models.Signal {
	var signals []models.Signal
	text := strings.Join(append([]string{l.BrandName, l.ProductTitle, l.ProductDescription}, l.BulletPoints...), " ")

	signals = append(signals, counterfeitTerms(text, 40)...)
	signals = append(signals, brandConsistency(l.BrandName, l.ProductTitle)...)
	signals = append(signals, suspiciousBrand(l.BrandName)...)
	signals = append(signals, placeholderText(l.ProductDescription)...)
	signals = append(signals, shortDescription(l.ProductDescription)...)
	signals = append(signals, priceBand(decimal.NewFromFloat(l.Price), l.Category)...)
	if l.MarketAverage > 0 {
		signals = append(signals, marketDeviation(decimal.NewFromFloat(l.Price), decimal.NewFromFloat(l.MarketAverage))...)
	}
	signals = append(signals, categoryRelevance(l.Category, l.ProductTitle+" "+l.ProductDescription)...)
	signals = append(signals, mainImage(l.MainImage, scores.Image, 40)...)

	if m := scores.Text; m != nil && m.FakeProbability > MaxTextFakeProbablity {
		signals = append(signals, models.Signal{
			Rule:     RuleTextModel,
			Category: models.CategoryAI,
			Weight:   40,
			Detail:   fmt.Sprintf("Text model rates the listing copy as likely fake (fake probability %.2f)", m.FakeProbability),
		})
	}
	return signals
}

func counterfeitTerms(text string, weight float64) []models.Signal {
	hits := MatchTerms(text, CounterfeitKeywords)
	if len(hits) == 0 {
		return nil
	}
	return []models.Signal{{
		Rule:     RuleCounterfeitTerms,
		Category: models.CategoryText,
		Weight:   weight,
		Detail:   "Counterfeit keywords detected: " + strings.Join(hits, ", "),
	}}
}

// brandConsistency needs both a brand and a title; either alone is not a
// contradiction.
func brandConsistency(brand, title string) []models.Signal {
	brand = strings.TrimSpace(brand)
	title = strings.TrimSpace(title)
	if brand == "" || title == "" {
		return nil
	}
	if strings.Contains(strings.ToLower(title), strings.ToLower(brand)) {
		return []models.Signal{{
			Rule:     RuleBrandConsistency,
			Category: models.CategoryText,
			Passed:   true,
			Detail:   fmt.Sprintf("Brand name %q appears in the title", brand),
		}}
	}
	return []models.Signal{{
		Rule:     RuleBrandConsistency,
		Category: models.CategoryText,
		Weight:   30,
		Detail:   fmt.Sprintf("Brand name %q not found in the product title", brand),
	}}
}

func suspiciousBrand(brand string) []models.Signal {
	hits := MatchTerms(brand, SuspiciousBrandTerms)
	if len(hits) == 0 {
		return nil
	}
	return []models.Signal{{
		Rule:     RuleSuspiciousBrand,
		Category: models.CategoryPolicy,
		Weight:   50,
		Detail:   fmt.Sprintf("Suspicious brand name: %s", brand),
	}}
}

func placeholderText(description string) []models.Signal {
	if !strings.Contains(strings.ToLower(description), "lorem ipsum") {
		return nil
	}
	return []models.Signal{{
		Rule:     RulePlaceholderText,
		Category: models.CategoryPattern,
		Weight:   50,
		Detail:   "Placeholder text (Lorem Ipsum) found in the description",
	}}
}

func shortDescription(description string) []models.Signal {
	n := len(strings.TrimSpace(description))
	if n >= MinDescriptionLength {
		return nil
	}
	return []models.Signal{{
		Rule:     RuleShortDescription,
		Category: models.CategoryPattern,
		Weight:   10,
		Detail:   fmt.Sprintf("Description is suspiciously short (%d characters)", n),
	}}
}

// BandFor returns the price band of the first known category that the given
// category names, falling back to the default band.
func BandFor(category string) (string, PriceBand) {
	c := strings.ToLower(strings.TrimSpace(category))
	if c != "" {
		for _, key := range categoryOrder {
			if strings.Contains(c, key) || (len(c) >= 3 && strings.Contains(key, c)) {
				return key, CategoryPriceBands[key]
			}
		}
	}
	return DefaultCategory, CategoryPriceBands[DefaultCategory]
}

func priceBand(price decimal.Decimal, category string) []models.Signal {
	key, b := BandFor(category)
	if price.GreaterThanOrEqual(b.Min) && price.LessThanOrEqual(b.Max) {
		return []models.Signal{{
			Rule:     RulePriceBand,
			Category: models.CategoryPrice,
			Passed:   true,
			Detail:   fmt.Sprintf("Price $%s is within the expected range for %q", price.StringFixed(2), key),
		}}
	}
	return []models.Signal{{
		Rule:     RulePriceBand,
		Category: models.CategoryPrice,
		Weight:   40,
		Detail: fmt.Sprintf("Suspicious price: $%s. Expected range for %q is $%s-$%s",
			price.StringFixed(2), key, b.Min.String(), b.Max.String()),
	}}
}

// marketDeviation flags prices farther from the market average than the
// allowed deviation plus the referral fee.
func marketDeviation(price, average decimal.Decimal) []models.Signal {
	if !average.IsPositive() {
		return nil
	}
	deviation := price.Sub(average).Abs().Div(average)
	limit := MaxMarketDeviation.Add(ReferralFeeRate)
	if deviation.LessThanOrEqual(limit) {
		return nil
	}
	pct := deviation.Mul(decimal.NewFromInt(100)).Round(0)
	return []models.Signal{{
		Rule:     RuleMarketDeviation,
		Category: models.CategoryMarket,
		Weight:   20,
		Detail: fmt.Sprintf("Price $%s deviates %s%% from the market average $%s",
			price.StringFixed(2), pct.String(), average.StringFixed(2)),
	}}
}

func categoryRelevance(category, text string) []models.Signal {
	key, _ := BandFor(category)
	keywords, ok := CategoryKeywords[key]
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	if len(MatchTerms(text, keywords)) > 0 {
		return nil
	}
	return []models.Signal{{
		Rule:     RuleCategoryRelevance,
		Category: models.CategoryPattern,
		Weight:   30,
		Detail:   fmt.Sprintf("Listing text does not look like the %q category", key),
	}}
}

func mainImage(image string, m *models.ImageModelScore, weight float64) []models.Signal {
	image = strings.TrimSpace(image)
	if image == "" {
		// Nothing to compare, so this is a completeness rule and leaves
		// imageScore null.
		return []models.Signal{{
			Rule:     RuleMainImage,
			Category: models.CategoryPolicy,
			Weight:   30,
			Detail:   "No main product image provided",
		}}
	}
	return imageModelSignals(m, image, weight)
}
