// internal/scoring/step.go
package scoring

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mohittaneja156/AI-Powered-Trust-Safety-System/internal/models"
)

// StepFields lists the wizard fields each step is allowed to contribute.
// Anything else in the step payload is ignored.
var StepFields = map[int][]string{
	1: {"brandName", "productTitle", "productDescription", "bulletPoints"},
	2: {"manufacturer", "partNumber", "modelNumber", "countryOfOrigin"},
	3: {"price", "marketAverage", "quantity", "condition", "fulfillmentType", "category"},
	4: {"category", "subcategory", "itemType", "targetAudience", "productTitle", "productDescription"},
	5: {"hasVariations", "variationType", "variations"},
	6: {"mainImage", "additionalImages", "brandName", "productTitle"},
	7: {"shippingTemplate", "handlingTime", "shippingWeight", "shippingDimensions", "shippingService", "freeShipping"},
}

// StepData is a step payload reduced to the fields its step owns.
type StepData map[string]interface{}

// NewStepData filters raw to the step's field list.
func NewStepData(step int, raw map[string]interface{}) StepData {
	out := StepData{}
	for _, field := range StepFields[step] {
		if v, ok := raw[field]; ok && v != nil {
			out[field] = v
		}
	}
	return out
}

func (d StepData) String(field string) string {
	switch v := d[field].(type) {
	case string:
		return strings.TrimSpace(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Number reads a numeric field. Strings are accepted because form inputs
// often submit them that way.
func (d StepData) Number(field string) (decimal.Decimal, bool) {
	switch v := d[field].(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case json.Number:
		n, err := decimal.NewFromString(v.String())
		return n, err == nil
	case string:
		if strings.TrimSpace(v) == "" {
			return decimal.Zero, false
		}
		n, err := decimal.NewFromString(strings.TrimSpace(v))
		return n, err == nil
	default:
		return decimal.Zero, false
	}
}

func (d StepData) Bool(field string) bool {
	switch v := d[field].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (d StepData) Len(field string) int {
	if v, ok := d[field].([]interface{}); ok {
		return len(v)
	}
	return 0
}

// TextForModel is the text a step sends to the text classifier, or "" when
// the step carries no free text.
func (d StepData) TextForModel(step int) string {
	switch step {
	case 1, 4:
		return strings.TrimSpace(d.String("productTitle") + " " + d.String("productDescription"))
	default:
		return ""
	}
}

// ImageForModel is the image a step sends to the image model.
func (d StepData) ImageForModel(step int) string {
	if step == 6 {
		return d.String("mainImage")
	}
	return ""
}

// ExtractStep runs the rules of a single wizard step.
func ExtractStep(step int, data StepData, scores models.ModelScores) []models.Signal {
	var signals []models.Signal
	switch step {
	case 1:
		text := joinFields(data, "brandName", "productTitle", "productDescription", "bulletPoints")
		signals = append(signals, counterfeitTerms(text, 60)...)
		signals = append(signals, brandConsistency(data.String("brandName"), data.String("productTitle"))...)
		signals = append(signals, suspiciousBrand(data.String("brandName"))...)
		if m := scores.Text; m != nil && m.FakeProbability > MaxTextFakeProbablity {
			signals = append(signals, models.Signal{
				Rule:     RuleTextModel,
				Category: models.CategoryAI,
				Weight:   40,
				Detail:   fmt.Sprintf("Text model rates the listing copy as likely fake (fake probability %.2f)", m.FakeProbability),
			})
		}
	case 2:
		signals = append(signals, counterfeitTerms(joinFields(data, "manufacturer", "partNumber", "modelNumber"), 30)...)
	case 3:
		price, ok := data.Number("price")
		if !ok {
			break
		}
		if price.LessThan(decimal.NewFromFloat(MinStepPrice)) {
			signals = append(signals, models.Signal{
				Rule:     RuleLowPrice,
				Category: models.CategoryPrice,
				Weight:   40,
				Detail:   fmt.Sprintf("Suspiciously low price: $%s", price.StringFixed(2)),
			})
		}
		if category := data.String("category"); category != "" {
			signals = append(signals, priceBand(price, category)...)
		}
		if avg, ok := data.Number("marketAverage"); ok {
			signals = append(signals, marketDeviation(price, avg)...)
		}
	case 4:
		if category := data.String("category"); category != "" {
			signals = append(signals, categoryRelevance(category, joinFields(data, "productTitle", "productDescription", "itemType", "subcategory"))...)
		}
	case 5:
		if data.Bool("hasVariations") && data.Len("variations") == 0 {
			signals = append(signals, models.Signal{
				Rule:     RuleVariations,
				Category: models.CategoryPattern,
				Weight:   10,
				Detail:   "Variations are enabled but none are defined",
			})
		}
	case 6:
		signals = append(signals, mainImage(data.String("mainImage"), scores.Image, 50)...)
	case 7:
		if w, ok := data.Number("shippingWeight"); !ok || !w.IsPositive() {
			signals = append(signals, models.Signal{
				Rule:     RuleShippingWeight,
				Category: models.CategoryPattern,
				Weight:   10,
				Detail:   "Shipping weight is missing or zero",
			})
		}
	}
	return signals
}

func joinFields(data StepData, fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if s := data.String(f); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
