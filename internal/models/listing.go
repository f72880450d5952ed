// internal/models/listing.go
package models

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ListingData is the full product record assembled by the listing wizard.
type ListingData struct {
	BrandName          string   `json:"brandName" binding:"required"`
	ProductTitle       string   `json:"productTitle" binding:"required"`
	ProductDescription string   `json:"productDescription"`
	BulletPoints       []string `json:"bulletPoints"`

	Manufacturer    string `json:"manufacturer"`
	PartNumber      string `json:"partNumber"`
	ModelNumber     string `json:"modelNumber"`
	CountryOfOrigin string `json:"countryOfOrigin"`

	Price           float64 `json:"price" binding:"gte=0"`
	MarketAverage   float64 `json:"marketAverage"`
	Quantity        int     `json:"quantity"`
	Condition       string  `json:"condition"`
	FulfillmentType string  `json:"fulfillmentType"`

	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	ItemType       string `json:"itemType"`
	TargetAudience string `json:"targetAudience"`

	HasVariations bool                     `json:"hasVariations"`
	VariationType string                   `json:"variationType"`
	Variations    []map[string]interface{} `json:"variations"`

	MainImage        string   `json:"mainImage"`
	AdditionalImages []string `json:"additionalImages"`

	ShippingTemplate   string     `json:"shippingTemplate"`
	HandlingTime       string     `json:"handlingTime"`
	ShippingWeight     float64    `json:"shippingWeight"`
	ShippingDimensions Dimensions `json:"shippingDimensions"`
	ShippingService    string     `json:"shippingService"`
	FreeShipping       bool       `json:"freeShipping"`
}

type ListingSubmitRequest struct {
	ListingData ListingData `json:"listing_data" binding:"required"`
	SellerID    string      `json:"seller_id"`
	ProductID   string      `json:"product_id"`
}

type ListingAnalysisResponse struct {
	ProductID       string      `json:"product_id"`
	SellerID        string      `json:"seller_id,omitempty"`
	Score           ScoreResult `json:"score"`
	RiskLevel       RiskLevel   `json:"risk_level"`
	Evidence        []Evidence  `json:"evidence"`
	Recommendations []string    `json:"recommendations"`
	PartialAnalysis bool        `json:"partial_analysis"`
	Warnings        []string    `json:"warnings"`
	Status          string      `json:"status"`
	FlagID          string      `json:"flag_id,omitempty"`
}
