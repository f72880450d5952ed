// internal/models/verification.go
package models

type VerificationRequest struct {
	OrderID          string `json:"order_id" binding:"required"`
	CapturedImageURL string `json:"captured_image_url" binding:"required"`
	ExpectedImageURL string `json:"expected_image_url"`
	ExpectedBarcode  string `json:"expected_barcode"`
	DecodedBarcode   string `json:"decoded_barcode"`
	BrandName        string `json:"brand_name"`
	ProductTitle     string `json:"product_title"`
}

type VerificationResponse struct {
	OrderID         string      `json:"order_id"`
	Result          string      `json:"result"`
	Score           ScoreResult `json:"score"`
	Severity        Severity    `json:"severity"`
	Evidence        []Evidence  `json:"evidence"`
	PartialAnalysis bool        `json:"partial_analysis"`
	Warnings        []string    `json:"warnings"`
	FlagID          string      `json:"flag_id,omitempty"`
}

const (
	VerificationAuthentic   = "authentic"
	VerificationCounterfeit = "counterfeit"
)
